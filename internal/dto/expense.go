package dto

import (
	"time"

	"github.com/pravaha-app/expense_backend/internal/core/domain"
	"github.com/shopspring/decimal"
)

// SubmitExpenseRequest creates a new expense claim.
type SubmitExpenseRequest struct {
	Amount       decimal.Decimal `json:"amount" binding:"required"`
	CurrencyCode string          `json:"currencyCode" binding:"required,len=3"`
	Category     string          `json:"category" binding:"required,expensecategory"`
	Description  string          `json:"description"`
	Date         time.Time       `json:"date" binding:"required" time_format:"2006-01-02"`
}

// DecisionRequest approves or rejects a pending expense.
type DecisionRequest struct {
	Decision string `json:"decision" binding:"required,oneof=APPROVED REJECTED"`
}

// ListExpensesParams defines query parameters for listing expenses.
type ListExpensesParams struct {
	UserID string `form:"userID"`
	Limit  int    `form:"limit,default=20"`
	Offset int    `form:"offset,default=0"`
}

// ExpenseResponse is the API representation of an expense claim.
type ExpenseResponse struct {
	ExpenseID        string           `json:"expenseID"`
	UserID           string           `json:"userID"`
	Amount           decimal.Decimal  `json:"amount"`
	CurrencyCode     string           `json:"currencyCode"`
	Category         string           `json:"category"`
	Description      string           `json:"description,omitempty"`
	Date             time.Time        `json:"date"`
	Status           string           `json:"status"`
	BaseAmount       *decimal.Decimal `json:"baseAmount,omitempty"`
	BaseCurrencyCode string           `json:"baseCurrencyCode"`
	ApproverID       *string          `json:"approverID,omitempty"`
	DecidedAt        *time.Time       `json:"decidedAt,omitempty"`
	SubmittedAt      time.Time        `json:"submittedAt"`
}

// ListExpensesResponse wraps a list of expenses.
type ListExpensesResponse struct {
	Expenses []ExpenseResponse `json:"expenses"`
}

// ToExpenseResponse converts a domain.Expense to its response DTO.
func ToExpenseResponse(e *domain.Expense) ExpenseResponse {
	return ExpenseResponse{
		ExpenseID:        e.ExpenseID,
		UserID:           e.UserID,
		Amount:           e.Amount,
		CurrencyCode:     e.CurrencyCode,
		Category:         string(e.Category),
		Description:      e.Description,
		Date:             e.Date,
		Status:           string(e.Status),
		BaseAmount:       e.BaseAmount,
		BaseCurrencyCode: e.BaseCurrencyCode,
		ApproverID:       e.ApproverID,
		DecidedAt:        e.DecidedAt,
		SubmittedAt:      e.CreatedAt,
	}
}

// ToListExpensesResponse converts a slice of domain.Expense to its response DTO.
func ToListExpensesResponse(expenses []domain.Expense) ListExpensesResponse {
	resp := make([]ExpenseResponse, len(expenses))
	for i := range expenses {
		resp[i] = ToExpenseResponse(&expenses[i])
	}
	return ListExpensesResponse{Expenses: resp}
}
