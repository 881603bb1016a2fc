package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/pravaha-app/expense_backend/internal/apperrors"
	"github.com/pravaha-app/expense_backend/internal/core/domain"
	portsrepo "github.com/pravaha-app/expense_backend/internal/core/ports/repositories"
	portssvc "github.com/pravaha-app/expense_backend/internal/core/ports/services"
	"github.com/pravaha-app/expense_backend/internal/dto"
	"github.com/pravaha-app/expense_backend/internal/utils"
)

// countryLookupTimeout bounds the country-currency collaborator call during
// signup. On timeout the fallback currency is used rather than failing signup.
const countryLookupTimeout = 5 * time.Second

const fallbackBaseCurrency = "USD"

// companyService implements the CompanySvcFacade interface.
type companyService struct {
	BaseService
	companyRepo     portsrepo.CompanyRepositoryFacade
	userRepo        portsrepo.UserRepositoryFacade
	countryCurrency portssvc.CountryCurrencySvc
}

// NewCompanyService creates a new company service with the provided dependencies.
func NewCompanyService(
	companyRepo portsrepo.CompanyRepositoryFacade,
	userRepo portsrepo.UserRepositoryFacade,
	countryCurrency portssvc.CountryCurrencySvc,
) portssvc.CompanySvcFacade {
	return &companyService{
		companyRepo:     companyRepo,
		userRepo:        userRepo,
		countryCurrency: countryCurrency,
	}
}

// Ensure companyService implements the CompanySvcFacade interface
var _ portssvc.CompanySvcFacade = (*companyService)(nil)

// CreateCompany creates a company and its initial Admin user in one
// transaction. The admin email must be unused anywhere in the system.
func (s *companyService) CreateCompany(ctx context.Context, req dto.SignupRequest) (*domain.Company, *domain.User, error) {
	email := strings.ToLower(strings.TrimSpace(req.Email))

	existing, err := s.userRepo.FindUserByEmail(ctx, email)
	if err != nil && !errors.Is(err, apperrors.ErrNotFound) {
		s.LogError(ctx, err, "Failed to check email uniqueness")
		return nil, nil, fmt.Errorf("failed to check email uniqueness: %w", err)
	}
	if existing != nil {
		return nil, nil, apperrors.ErrDuplicateEmail
	}

	baseCurrency := s.resolveBaseCurrency(ctx, req.Country)

	passwordHash, err := utils.HashPassword(req.Password)
	if err != nil {
		s.LogError(ctx, err, "Failed to hash admin password")
		return nil, nil, fmt.Errorf("failed to hash password: %w", err)
	}

	now := time.Now()
	companyID := uuid.NewString()
	adminID := uuid.NewString()

	company := domain.Company{
		CompanyID:        companyID,
		Name:             req.CompanyName,
		Country:          req.Country,
		BaseCurrencyCode: baseCurrency,
		AuditFields: domain.AuditFields{
			CreatedAt:     now,
			CreatedBy:     adminID,
			LastUpdatedAt: now,
			LastUpdatedBy: adminID,
		},
	}

	admin := domain.User{
		UserID:       adminID,
		CompanyID:    companyID,
		Email:        email,
		PasswordHash: passwordHash,
		FullName:     req.FullName,
		Role:         domain.RoleAdmin,
		AuditFields: domain.AuditFields{
			CreatedAt:     now,
			CreatedBy:     adminID,
			LastUpdatedAt: now,
			LastUpdatedBy: adminID,
		},
	}

	// Company and admin must exist together or not at all.
	tx, err := s.companyRepo.Begin(ctx)
	if err != nil {
		return nil, nil, err
	}
	defer func() { _ = s.companyRepo.Rollback(ctx, tx) }()

	if err := s.companyRepo.SaveCompanyInTx(ctx, tx, company); err != nil {
		s.LogError(ctx, err, "Failed to save company", slog.String("company_name", req.CompanyName))
		if errors.Is(err, apperrors.ErrValidation) {
			return nil, nil, err
		}
		return nil, nil, fmt.Errorf("failed to create company: %w", err)
	}

	if err := s.userRepo.SaveUserInTx(ctx, tx, admin); err != nil {
		s.LogError(ctx, err, "Failed to save admin user", slog.String("company_id", companyID))
		if errors.Is(err, apperrors.ErrDuplicateEmail) {
			return nil, nil, err
		}
		return nil, nil, fmt.Errorf("failed to create admin user: %w", err)
	}

	if err := s.companyRepo.Commit(ctx, tx); err != nil {
		return nil, nil, err
	}

	s.LogInfo(ctx, "Company created successfully",
		slog.String("company_id", companyID),
		slog.String("base_currency", baseCurrency))
	return &company, &admin, nil
}

// GetCompanyByID retrieves a company by its ID.
func (s *companyService) GetCompanyByID(ctx context.Context, companyID string) (*domain.Company, error) {
	company, err := s.companyRepo.FindCompanyByID(ctx, companyID)
	if err != nil {
		if !errors.Is(err, apperrors.ErrNotFound) {
			s.LogError(ctx, err, "Failed to find company by ID", slog.String("company_id", companyID))
		}
		return nil, err
	}
	return company, nil
}

// resolveBaseCurrency asks the country-currency collaborator for the country's
// currency under a bounded timeout. Lookup failure falls back to USD; signup is
// never blocked on the collaborator.
func (s *companyService) resolveBaseCurrency(ctx context.Context, country string) string {
	if country == "" {
		return fallbackBaseCurrency
	}

	lookupCtx, cancel := context.WithTimeout(ctx, countryLookupTimeout)
	defer cancel()

	code, err := s.countryCurrency.CurrencyForCountry(lookupCtx, country)
	if err != nil || code == "" {
		if err != nil {
			s.LogWarn(ctx, "Country currency lookup failed, using fallback",
				slog.String("country", country),
				slog.String("error", err.Error()))
		}
		return fallbackBaseCurrency
	}
	return strings.ToUpper(code)
}
