package models

// Currency mirrors the currencies table (seeded ISO 4217 entries).
type Currency struct {
	CurrencyCode string `db:"currency_code"`
	Symbol       string `db:"symbol"`
	Name         string `db:"name"`
	AuditFields
}
