package repositories

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/pravaha-app/expense_backend/internal/core/domain"
)

// CompanyReader defines read operations for company data
type CompanyReader interface {
	// FindCompanyByID retrieves a specific company by its ID.
	FindCompanyByID(ctx context.Context, companyID string) (*domain.Company, error)

	// FindCompanyByName retrieves a company by its unique name.
	FindCompanyByName(ctx context.Context, name string) (*domain.Company, error)
}

// CompanyWriter defines write operations for company data
type CompanyWriter interface {
	// SaveCompany persists a new company.
	SaveCompany(ctx context.Context, company domain.Company) error

	// SaveCompanyInTx persists a new company inside an existing transaction.
	SaveCompanyInTx(ctx context.Context, tx pgx.Tx, company domain.Company) error
}

// CompanyRepositoryFacade combines all company-related repository interfaces.
type CompanyRepositoryFacade interface {
	CompanyReader
	CompanyWriter
	TransactionManager
}
