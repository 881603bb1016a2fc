package pgsql

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pravaha-app/expense_backend/internal/apperrors"
	"github.com/pravaha-app/expense_backend/internal/core/domain"
	portsrepo "github.com/pravaha-app/expense_backend/internal/core/ports/repositories"
	"github.com/pravaha-app/expense_backend/internal/models"
)

// PgxCompanyRepository persists companies in PostgreSQL.
type PgxCompanyRepository struct {
	BaseRepository
}

func NewCompanyRepository(db *pgxpool.Pool) portsrepo.CompanyRepositoryFacade {
	return &PgxCompanyRepository{BaseRepository{Pool: db}}
}

// Ensure PgxCompanyRepository implements portsrepo.CompanyRepositoryFacade
var _ portsrepo.CompanyRepositoryFacade = (*PgxCompanyRepository)(nil)

func toModelCompany(d domain.Company) models.Company {
	return models.Company{
		CompanyID:        d.CompanyID,
		Name:             d.Name,
		Country:          d.Country,
		BaseCurrencyCode: d.BaseCurrencyCode,
		AuditFields: models.AuditFields{
			CreatedAt:     d.CreatedAt,
			CreatedBy:     d.CreatedBy,
			LastUpdatedAt: d.LastUpdatedAt,
			LastUpdatedBy: d.LastUpdatedBy,
		},
	}
}

func toDomainCompany(m models.Company) domain.Company {
	return domain.Company{
		CompanyID:        m.CompanyID,
		Name:             m.Name,
		Country:          m.Country,
		BaseCurrencyCode: m.BaseCurrencyCode,
		AuditFields: domain.AuditFields{
			CreatedAt:     m.CreatedAt,
			CreatedBy:     m.CreatedBy,
			LastUpdatedAt: m.LastUpdatedAt,
			LastUpdatedBy: m.LastUpdatedBy,
		},
	}
}

const saveCompanyQuery = `
    INSERT INTO companies (company_id, name, country, base_currency_code, created_at, created_by, last_updated_at, last_updated_by)
    VALUES ($1, $2, $3, $4, $5, $6, $7, $8);
`

func (r *PgxCompanyRepository) SaveCompany(ctx context.Context, company domain.Company) error {
	m := toModelCompany(company)
	_, err := r.Pool.Exec(ctx, saveCompanyQuery,
		m.CompanyID, m.Name, m.Country, m.BaseCurrencyCode,
		m.CreatedAt, m.CreatedBy, m.LastUpdatedAt, m.LastUpdatedBy,
	)
	if err != nil {
		return mapCompanySaveError(err)
	}
	return nil
}

func (r *PgxCompanyRepository) SaveCompanyInTx(ctx context.Context, tx pgx.Tx, company domain.Company) error {
	m := toModelCompany(company)
	_, err := tx.Exec(ctx, saveCompanyQuery,
		m.CompanyID, m.Name, m.Country, m.BaseCurrencyCode,
		m.CreatedAt, m.CreatedBy, m.LastUpdatedAt, m.LastUpdatedBy,
	)
	if err != nil {
		return mapCompanySaveError(err)
	}
	return nil
}

func mapCompanySaveError(err error) error {
	var pgErr *pgconn.PgError
	// 23505: unique_violation (company name)
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		return fmt.Errorf("%w: company name already taken", apperrors.ErrValidation)
	}
	return fmt.Errorf("failed to save company: %w", err)
}

func (r *PgxCompanyRepository) FindCompanyByID(ctx context.Context, companyID string) (*domain.Company, error) {
	query := `
		SELECT company_id, name, country, base_currency_code, created_at, created_by, last_updated_at, last_updated_by
		FROM companies
		WHERE company_id = $1;
	`
	var m models.Company
	err := r.Pool.QueryRow(ctx, query, companyID).Scan(
		&m.CompanyID, &m.Name, &m.Country, &m.BaseCurrencyCode,
		&m.CreatedAt, &m.CreatedBy, &m.LastUpdatedAt, &m.LastUpdatedBy,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find company by ID %s: %w", companyID, err)
	}

	company := toDomainCompany(m)
	return &company, nil
}

func (r *PgxCompanyRepository) FindCompanyByName(ctx context.Context, name string) (*domain.Company, error) {
	query := `
		SELECT company_id, name, country, base_currency_code, created_at, created_by, last_updated_at, last_updated_by
		FROM companies
		WHERE name = $1;
	`
	var m models.Company
	err := r.Pool.QueryRow(ctx, query, name).Scan(
		&m.CompanyID, &m.Name, &m.Country, &m.BaseCurrencyCode,
		&m.CreatedAt, &m.CreatedBy, &m.LastUpdatedAt, &m.LastUpdatedBy,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find company by name: %w", err)
	}

	company := toDomainCompany(m)
	return &company, nil
}
