package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Expense mirrors the expenses table. base_amount is nullable: submissions are
// accepted even when the conversion service is down.
type Expense struct {
	ExpenseID        string           `db:"expense_id"`
	CompanyID        string           `db:"company_id"`
	UserID           string           `db:"user_id"`
	Amount           decimal.Decimal  `db:"amount"`
	CurrencyCode     string           `db:"currency_code"`
	Category         string           `db:"category"`
	Description      string           `db:"description"`
	Date             time.Time        `db:"date"`
	Status           string           `db:"status"`
	BaseAmount       *decimal.Decimal `db:"base_amount"`
	BaseCurrencyCode string           `db:"base_currency_code"`
	ApproverID       *string          `db:"approver_id"`
	DecidedAt        *time.Time       `db:"decided_at"`
	AuditFields
}
