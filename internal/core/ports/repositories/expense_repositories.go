package repositories

import (
	"context"
	"time"

	"github.com/pravaha-app/expense_backend/internal/core/domain"
	"github.com/shopspring/decimal"
)

// ExpenseReader defines read operations for expense data
type ExpenseReader interface {
	// FindExpenseByID retrieves a specific expense by its ID.
	FindExpenseByID(ctx context.Context, expenseID string) (*domain.Expense, error)

	// FindExpensesByUser retrieves all expenses owned by a user, newest first.
	FindExpensesByUser(ctx context.Context, userID string, limit int, offset int) ([]domain.Expense, error)

	// FindPendingByCompany retrieves all Pending expenses in a company.
	FindPendingByCompany(ctx context.Context, companyID string) ([]domain.Expense, error)

	// FindPendingByManager retrieves Pending expenses whose owner has the given
	// user as their assigned manager.
	FindPendingByManager(ctx context.Context, companyID string, managerID string) ([]domain.Expense, error)

	// FindUnconvertedByCompany retrieves expenses still missing a base amount.
	FindUnconvertedByCompany(ctx context.Context, companyID string) ([]domain.Expense, error)
}

// ExpenseWriter defines write operations for expense data
type ExpenseWriter interface {
	// SaveExpense persists a new expense.
	SaveExpense(ctx context.Context, expense domain.Expense) error

	// DecideExpense atomically moves an expense from Pending to the decision
	// state. It returns apperrors.ErrAlreadyDecided when the expense exists but
	// is no longer Pending, so exactly one of two concurrent decisions wins.
	DecideExpense(ctx context.Context, expenseID string, decision domain.ExpenseStatus, approverID string, decidedAt time.Time) error

	// SetBaseAmount fills in a missing base amount after reconciliation.
	SetBaseAmount(ctx context.Context, expenseID string, baseAmount decimal.Decimal, updatedAt time.Time, updatedBy string) error
}

// ExpenseRepositoryFacade combines all expense-related repository interfaces.
type ExpenseRepositoryFacade interface {
	ExpenseReader
	ExpenseWriter
}
