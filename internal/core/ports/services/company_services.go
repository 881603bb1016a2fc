package services

import (
	"context"

	"github.com/pravaha-app/expense_backend/internal/core/domain"
	"github.com/pravaha-app/expense_backend/internal/dto"
)

// CompanySvcFacade defines company (tenant) operations.
type CompanySvcFacade interface {
	// CreateCompany creates a company together with its initial Admin user.
	// Base currency is derived from the country via the country-currency
	// collaborator. Fails with apperrors.ErrDuplicateEmail when the admin email
	// is already registered anywhere in the system.
	CreateCompany(ctx context.Context, req dto.SignupRequest) (*domain.Company, *domain.User, error)

	// GetCompanyByID retrieves a company by its ID.
	GetCompanyByID(ctx context.Context, companyID string) (*domain.Company, error)
}
