package domain

// Company represents a tenant. All users and expenses are scoped to exactly one
// company; cross-company access is always forbidden.
type Company struct {
	CompanyID        string `json:"companyID"` // Primary Key (UUID)
	Name             string `json:"name"`      // Unique company name
	Country          string `json:"country"`
	BaseCurrencyCode string `json:"baseCurrencyCode"` // Reporting currency, e.g. "INR"
	AuditFields
}
