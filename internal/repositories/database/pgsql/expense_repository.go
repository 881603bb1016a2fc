package pgsql

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pravaha-app/expense_backend/internal/apperrors"
	"github.com/pravaha-app/expense_backend/internal/core/domain"
	portsrepo "github.com/pravaha-app/expense_backend/internal/core/ports/repositories"
	"github.com/pravaha-app/expense_backend/internal/models"
	"github.com/shopspring/decimal"
)

// PgxExpenseRepository persists expenses in PostgreSQL. Expenses are never
// deleted; the decision update is conditional on the Pending status so that
// concurrent decisions serialize to exactly one winner.
type PgxExpenseRepository struct {
	BaseRepository
}

func NewExpenseRepository(db *pgxpool.Pool) portsrepo.ExpenseRepositoryFacade {
	return &PgxExpenseRepository{BaseRepository{Pool: db}}
}

// Ensure PgxExpenseRepository implements portsrepo.ExpenseRepositoryFacade
var _ portsrepo.ExpenseRepositoryFacade = (*PgxExpenseRepository)(nil)

func toModelExpense(d domain.Expense) models.Expense {
	return models.Expense{
		ExpenseID:        d.ExpenseID,
		CompanyID:        d.CompanyID,
		UserID:           d.UserID,
		Amount:           d.Amount,
		CurrencyCode:     d.CurrencyCode,
		Category:         string(d.Category),
		Description:      d.Description,
		Date:             d.Date,
		Status:           string(d.Status),
		BaseAmount:       d.BaseAmount,
		BaseCurrencyCode: d.BaseCurrencyCode,
		ApproverID:       d.ApproverID,
		DecidedAt:        d.DecidedAt,
		AuditFields: models.AuditFields{
			CreatedAt:     d.CreatedAt,
			CreatedBy:     d.CreatedBy,
			LastUpdatedAt: d.LastUpdatedAt,
			LastUpdatedBy: d.LastUpdatedBy,
		},
	}
}

func toDomainExpense(m models.Expense) domain.Expense {
	return domain.Expense{
		ExpenseID:        m.ExpenseID,
		CompanyID:        m.CompanyID,
		UserID:           m.UserID,
		Amount:           m.Amount,
		CurrencyCode:     m.CurrencyCode,
		Category:         domain.ExpenseCategory(m.Category),
		Description:      m.Description,
		Date:             m.Date,
		Status:           domain.ExpenseStatus(m.Status),
		BaseAmount:       m.BaseAmount,
		BaseCurrencyCode: m.BaseCurrencyCode,
		ApproverID:       m.ApproverID,
		DecidedAt:        m.DecidedAt,
		AuditFields: domain.AuditFields{
			CreatedAt:     m.CreatedAt,
			CreatedBy:     m.CreatedBy,
			LastUpdatedAt: m.LastUpdatedAt,
			LastUpdatedBy: m.LastUpdatedBy,
		},
	}
}

const expenseColumns = `expense_id, company_id, user_id, amount, currency_code, category, description, date, status, base_amount, base_currency_code, approver_id, decided_at, created_at, created_by, last_updated_at, last_updated_by`

func scanExpense(row pgx.Row) (models.Expense, error) {
	var m models.Expense
	err := row.Scan(
		&m.ExpenseID, &m.CompanyID, &m.UserID, &m.Amount, &m.CurrencyCode, &m.Category,
		&m.Description, &m.Date, &m.Status, &m.BaseAmount, &m.BaseCurrencyCode,
		&m.ApproverID, &m.DecidedAt,
		&m.CreatedAt, &m.CreatedBy, &m.LastUpdatedAt, &m.LastUpdatedBy,
	)
	return m, err
}

func (r *PgxExpenseRepository) SaveExpense(ctx context.Context, expense domain.Expense) error {
	m := toModelExpense(expense)
	query := `
        INSERT INTO expenses (` + expenseColumns + `)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17);
    `
	_, err := r.Pool.Exec(ctx, query,
		m.ExpenseID, m.CompanyID, m.UserID, m.Amount, m.CurrencyCode, m.Category,
		m.Description, m.Date, m.Status, m.BaseAmount, m.BaseCurrencyCode,
		m.ApproverID, m.DecidedAt,
		m.CreatedAt, m.CreatedBy, m.LastUpdatedAt, m.LastUpdatedBy,
	)
	if err != nil {
		return fmt.Errorf("failed to save expense: %w", err)
	}
	return nil
}

func (r *PgxExpenseRepository) FindExpenseByID(ctx context.Context, expenseID string) (*domain.Expense, error) {
	query := `SELECT ` + expenseColumns + ` FROM expenses WHERE expense_id = $1;`
	m, err := scanExpense(r.Pool.QueryRow(ctx, query, expenseID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find expense by ID %s: %w", expenseID, err)
	}

	expense := toDomainExpense(m)
	return &expense, nil
}

// DecideExpense is the single decision point: a compare-and-set on status.
// The WHERE clause only matches a Pending row, so of two concurrent decisions
// exactly one affects a row; the other observes zero rows and reports
// ErrAlreadyDecided (or ErrNotFound when the expense never existed).
func (r *PgxExpenseRepository) DecideExpense(ctx context.Context, expenseID string, decision domain.ExpenseStatus, approverID string, decidedAt time.Time) error {
	query := `
        UPDATE expenses
        SET status = $1, approver_id = $2, decided_at = $3, last_updated_at = $3, last_updated_by = $2
        WHERE expense_id = $4 AND status = $5;
    `
	cmdTag, err := r.Pool.Exec(ctx, query, string(decision), approverID, decidedAt, expenseID, string(domain.StatusPending))
	if err != nil {
		return fmt.Errorf("failed to execute decide expense query: %w", err)
	}
	if cmdTag.RowsAffected() == 0 {
		var exists bool
		if err := r.Pool.QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM expenses WHERE expense_id = $1)`, expenseID).Scan(&exists); err != nil {
			return fmt.Errorf("failed to check expense existence: %w", err)
		}
		if exists {
			return apperrors.ErrAlreadyDecided
		}
		return apperrors.ErrNotFound
	}
	return nil
}

func (r *PgxExpenseRepository) SetBaseAmount(ctx context.Context, expenseID string, baseAmount decimal.Decimal, updatedAt time.Time, updatedBy string) error {
	query := `
        UPDATE expenses
        SET base_amount = $1, last_updated_at = $2, last_updated_by = $3
        WHERE expense_id = $4 AND base_amount IS NULL;
    `
	cmdTag, err := r.Pool.Exec(ctx, query, baseAmount, updatedAt, updatedBy, expenseID)
	if err != nil {
		return fmt.Errorf("failed to set base amount: %w", err)
	}
	if cmdTag.RowsAffected() == 0 {
		return fmt.Errorf("expense not found or already converted: %w", apperrors.ErrNotFound)
	}
	return nil
}

func (r *PgxExpenseRepository) FindExpensesByUser(ctx context.Context, userID string, limit int, offset int) ([]domain.Expense, error) {
	if limit <= 0 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}

	query := `
        SELECT ` + expenseColumns + `
        FROM expenses
        WHERE user_id = $1
        ORDER BY created_at DESC
        LIMIT $2 OFFSET $3;
    `
	rows, err := r.Pool.Query(ctx, query, userID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to query expenses by user: %w", err)
	}
	defer rows.Close()

	return collectExpenses(rows)
}

func (r *PgxExpenseRepository) FindPendingByCompany(ctx context.Context, companyID string) ([]domain.Expense, error) {
	query := `
        SELECT ` + expenseColumns + `
        FROM expenses
        WHERE company_id = $1 AND status = $2
        ORDER BY created_at ASC;
    `
	rows, err := r.Pool.Query(ctx, query, companyID, string(domain.StatusPending))
	if err != nil {
		return nil, fmt.Errorf("failed to query pending expenses: %w", err)
	}
	defer rows.Close()

	return collectExpenses(rows)
}

func (r *PgxExpenseRepository) FindPendingByManager(ctx context.Context, companyID string, managerID string) ([]domain.Expense, error) {
	query := `
        SELECT ` + qualifiedExpenseColumns("e") + `
        FROM expenses e
        JOIN users u ON u.user_id = e.user_id
        WHERE e.company_id = $1 AND e.status = $2 AND u.manager_id = $3 AND u.deleted_at IS NULL
        ORDER BY e.created_at ASC;
    `
	rows, err := r.Pool.Query(ctx, query, companyID, string(domain.StatusPending), managerID)
	if err != nil {
		return nil, fmt.Errorf("failed to query pending expenses by manager: %w", err)
	}
	defer rows.Close()

	return collectExpenses(rows)
}

func (r *PgxExpenseRepository) FindUnconvertedByCompany(ctx context.Context, companyID string) ([]domain.Expense, error) {
	query := `
        SELECT ` + expenseColumns + `
        FROM expenses
        WHERE company_id = $1 AND base_amount IS NULL
        ORDER BY created_at ASC;
    `
	rows, err := r.Pool.Query(ctx, query, companyID)
	if err != nil {
		return nil, fmt.Errorf("failed to query unconverted expenses: %w", err)
	}
	defer rows.Close()

	return collectExpenses(rows)
}

func collectExpenses(rows pgx.Rows) ([]domain.Expense, error) {
	expenses := []domain.Expense{}
	for rows.Next() {
		m, err := scanExpense(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan expense row: %w", err)
		}
		expenses = append(expenses, toDomainExpense(m))
	}
	if rows.Err() != nil {
		return nil, fmt.Errorf("error iterating expense rows: %w", rows.Err())
	}
	return expenses, nil
}

func qualifiedExpenseColumns(alias string) string {
	return alias + `.expense_id, ` + alias + `.company_id, ` + alias + `.user_id, ` + alias + `.amount, ` + alias + `.currency_code, ` + alias + `.category, ` + alias + `.description, ` + alias + `.date, ` + alias + `.status, ` + alias + `.base_amount, ` + alias + `.base_currency_code, ` + alias + `.approver_id, ` + alias + `.decided_at, ` + alias + `.created_at, ` + alias + `.created_by, ` + alias + `.last_updated_at, ` + alias + `.last_updated_by`
}
