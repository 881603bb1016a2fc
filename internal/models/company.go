package models

// Company mirrors the companies table.
type Company struct {
	CompanyID        string `db:"company_id"`
	Name             string `db:"name"`
	Country          string `db:"country"`
	BaseCurrencyCode string `db:"base_currency_code"`
	AuditFields
}
