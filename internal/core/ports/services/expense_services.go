package services

import (
	"context"

	"github.com/pravaha-app/expense_backend/internal/core/domain"
	"github.com/pravaha-app/expense_backend/internal/dto"
)

// ExpenseSubmitterSvc defines operations for creating expense records.
type ExpenseSubmitterSvc interface {
	// SubmitExpense creates a new Pending expense for the requester. The
	// amount is converted to the company base currency via the conversion
	// collaborator; if the collaborator is unavailable the expense is still
	// created with a nil base amount.
	SubmitExpense(ctx context.Context, requester domain.Requester, req dto.SubmitExpenseRequest) (*domain.Expense, error)

	// ReconcileBaseAmounts retries conversion for expenses in the requester's
	// company that are missing a base amount. Admin only. Returns the number
	// of expenses reconciled.
	ReconcileBaseAmounts(ctx context.Context, requester domain.Requester) (int, error)
}

// ExpenseDeciderSvc defines the approval workflow operations.
type ExpenseDeciderSvc interface {
	// Decide approves or rejects a Pending expense. Permitted for an Admin of
	// the expense's company, or for the Manager assigned to the expense's
	// owner. Exactly one of two concurrent decisions succeeds; the other fails
	// with apperrors.ErrAlreadyDecided.
	Decide(ctx context.Context, requester domain.Requester, expenseID string, decision domain.ExpenseStatus) (*domain.Expense, error)

	// ListPending lists Pending expenses visible to the requester: all company
	// expenses for an Admin, direct reports' expenses for a Manager. Employees
	// are refused with apperrors.ErrForbidden.
	ListPending(ctx context.Context, requester domain.Requester) ([]domain.Expense, error)
}

// ExpenseReaderSvc defines read operations for expense data.
type ExpenseReaderSvc interface {
	// GetExpense retrieves a single expense, subject to the same visibility
	// rules as listing: owner, owner's manager, or company Admin.
	GetExpense(ctx context.Context, requester domain.Requester, expenseID string) (*domain.Expense, error)

	// ListUserExpenses lists a user's expenses, newest first. Permitted for
	// the user themselves, their assigned manager, or a company Admin.
	ListUserExpenses(ctx context.Context, requester domain.Requester, userID string, limit, offset int) ([]domain.Expense, error)
}

// ExpenseSvcFacade combines all expense-related service interfaces.
type ExpenseSvcFacade interface {
	ExpenseSubmitterSvc
	ExpenseDeciderSvc
	ExpenseReaderSvc
}

// CurrencySvcFacade defines read access to the supported currency table.
type CurrencySvcFacade interface {
	// GetCurrencyByCode retrieves a currency by its ISO 4217 code.
	GetCurrencyByCode(ctx context.Context, code string) (*domain.Currency, error)

	// ListCurrencies retrieves all supported currencies.
	ListCurrencies(ctx context.Context) ([]domain.Currency, error)
}
