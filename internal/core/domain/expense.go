package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// ExpenseStatus defines the workflow states of an expense claim.
// Pending is the only non-terminal state; once Approved or Rejected an expense
// never transitions again.
type ExpenseStatus string

const (
	StatusPending  ExpenseStatus = "PENDING"
	StatusApproved ExpenseStatus = "APPROVED"
	StatusRejected ExpenseStatus = "REJECTED"
)

// Terminal reports whether no further status transition is permitted.
func (s ExpenseStatus) Terminal() bool {
	return s == StatusApproved || s == StatusRejected
}

// Decision is the subset of statuses a decide call may target.
func (s ExpenseStatus) ValidDecision() bool {
	return s == StatusApproved || s == StatusRejected
}

// ExpenseCategory classifies an expense claim.
type ExpenseCategory string

const (
	CategoryTravel         ExpenseCategory = "TRAVEL"
	CategoryFood           ExpenseCategory = "FOOD"
	CategoryLodging        ExpenseCategory = "LODGING"
	CategoryMiscellaneous  ExpenseCategory = "MISCELLANEOUS"
	CategoryOfficeSupplies ExpenseCategory = "OFFICE_SUPPLIES"
)

// KnownCategories lists the supported categories in presentation order.
func KnownCategories() []ExpenseCategory {
	return []ExpenseCategory{
		CategoryTravel,
		CategoryFood,
		CategoryLodging,
		CategoryMiscellaneous,
		CategoryOfficeSupplies,
	}
}

// Valid reports whether the category is one of the known categories.
func (c ExpenseCategory) Valid() bool {
	for _, k := range KnownCategories() {
		if c == k {
			return true
		}
	}
	return false
}

// Expense represents a single expense claim. BaseAmount is the amount converted
// to the owning company's base currency at submission time; it is nil when the
// conversion service was unavailable and is reconciled later. Expenses are never
// hard-deleted.
type Expense struct {
	ExpenseID        string           `json:"expenseID"` // Primary Key (UUID)
	CompanyID        string           `json:"companyID"`
	UserID           string           `json:"userID"` // Owning user
	Amount           decimal.Decimal  `json:"amount"`
	CurrencyCode     string           `json:"currencyCode"`
	Category         ExpenseCategory  `json:"category"`
	Description      string           `json:"description,omitempty"`
	Date             time.Time        `json:"date"`
	Status           ExpenseStatus    `json:"status"`
	BaseAmount       *decimal.Decimal `json:"baseAmount,omitempty"`
	BaseCurrencyCode string           `json:"baseCurrencyCode"`
	ApproverID       *string          `json:"approverID,omitempty"` // Set on transition out of Pending
	DecidedAt        *time.Time       `json:"decidedAt,omitempty"`
	AuditFields
}

// ExpenseDecidedEvent is emitted after a decision is durable. Delivery to
// observers is asynchronous and at-least-once.
type ExpenseDecidedEvent struct {
	ExpenseID  string        `json:"expenseID"`
	Decision   ExpenseStatus `json:"decision"`
	ApproverID string        `json:"approverID"`
	OwnerID    string        `json:"ownerID"`
	Timestamp  time.Time     `json:"timestamp"`
}
