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
	"github.com/shopspring/decimal"
)

// conversionTimeout bounds the currency-conversion call during submission.
// When the converter does not answer in time the expense is created without a
// base amount; it is reconciled later.
const conversionTimeout = 5 * time.Second

// expenseService implements the ExpenseSvcFacade interface.
type expenseService struct {
	BaseService
	expenseRepo  portsrepo.ExpenseRepositoryFacade
	userRepo     portsrepo.UserReader
	companyRepo  portsrepo.CompanyReader
	currencyRepo portsrepo.CurrencyReader
	converter    portssvc.CurrencyConverterSvc
	dispatcher   *DecisionDispatcher
}

// NewExpenseService creates a new expense service with the provided dependencies.
// dispatcher may be nil; decisions then simply emit no events.
func NewExpenseService(
	expenseRepo portsrepo.ExpenseRepositoryFacade,
	userRepo portsrepo.UserReader,
	companyRepo portsrepo.CompanyReader,
	currencyRepo portsrepo.CurrencyReader,
	converter portssvc.CurrencyConverterSvc,
	dispatcher *DecisionDispatcher,
) portssvc.ExpenseSvcFacade {
	return &expenseService{
		expenseRepo:  expenseRepo,
		userRepo:     userRepo,
		companyRepo:  companyRepo,
		currencyRepo: currencyRepo,
		converter:    converter,
		dispatcher:   dispatcher,
	}
}

// Ensure expenseService implements the ExpenseSvcFacade interface
var _ portssvc.ExpenseSvcFacade = (*expenseService)(nil)

// SubmitExpense creates a new Pending expense for the requester.
func (s *expenseService) SubmitExpense(ctx context.Context, requester domain.Requester, req dto.SubmitExpenseRequest) (*domain.Expense, error) {
	if req.Amount.LessThanOrEqual(decimal.Zero) {
		return nil, apperrors.ErrInvalidAmount
	}

	currencyCode := strings.ToUpper(strings.TrimSpace(req.CurrencyCode))
	if _, err := s.currencyRepo.FindCurrencyByCode(ctx, currencyCode); err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, fmt.Errorf("%w: %s", apperrors.ErrInvalidCurrency, currencyCode)
		}
		s.LogError(ctx, err, "Failed to validate currency", slog.String("currency_code", currencyCode))
		return nil, fmt.Errorf("failed to validate currency: %w", err)
	}

	category := domain.ExpenseCategory(strings.ToUpper(req.Category))
	if !category.Valid() {
		return nil, fmt.Errorf("%w: unknown category %q", apperrors.ErrValidation, req.Category)
	}

	company, err := s.companyRepo.FindCompanyByID(ctx, requester.CompanyID)
	if err != nil {
		s.LogError(ctx, err, "Failed to load company for submission")
		return nil, fmt.Errorf("failed to load company: %w", err)
	}

	now := time.Now()
	expense := domain.Expense{
		ExpenseID:        uuid.NewString(),
		CompanyID:        requester.CompanyID,
		UserID:           requester.UserID,
		Amount:           req.Amount,
		CurrencyCode:     currencyCode,
		Category:         category,
		Description:      req.Description,
		Date:             req.Date,
		Status:           domain.StatusPending,
		BaseCurrencyCode: company.BaseCurrencyCode,
		AuditFields: domain.AuditFields{
			CreatedAt:     now,
			CreatedBy:     requester.UserID,
			LastUpdatedAt: now,
			LastUpdatedBy: requester.UserID,
		},
	}

	// Conversion is best effort: a down or slow converter never blocks the
	// submission, it only leaves BaseAmount empty for later reconciliation.
	if base, ok := s.tryConvert(ctx, req.Amount, currencyCode, company.BaseCurrencyCode, req.Date); ok {
		expense.BaseAmount = &base
	}

	if err := s.expenseRepo.SaveExpense(ctx, expense); err != nil {
		s.LogError(ctx, err, "Failed to save expense")
		return nil, fmt.Errorf("failed to create expense: %w", err)
	}

	s.LogInfo(ctx, "Expense submitted",
		slog.String("expense_id", expense.ExpenseID),
		slog.String("currency", currencyCode),
		slog.Bool("converted", expense.BaseAmount != nil))
	return &expense, nil
}

// tryConvert calls the conversion collaborator under a bounded timeout.
func (s *expenseService) tryConvert(ctx context.Context, amount decimal.Decimal, from, to string, asOf time.Time) (decimal.Decimal, bool) {
	if s.converter == nil {
		return decimal.Decimal{}, false
	}
	convertCtx, cancel := context.WithTimeout(ctx, conversionTimeout)
	defer cancel()

	base, err := s.converter.Convert(convertCtx, amount, from, to, asOf)
	if err != nil {
		s.LogWarn(ctx, "Currency conversion unavailable, submitting without base amount",
			slog.String("from", from),
			slog.String("to", to),
			slog.String("error", err.Error()))
		return decimal.Decimal{}, false
	}
	return base, true
}

// ReconcileBaseAmounts retries conversion for expenses missing a base amount.
func (s *expenseService) ReconcileBaseAmounts(ctx context.Context, requester domain.Requester) (int, error) {
	if !requester.IsAdmin() {
		return 0, apperrors.ErrForbidden
	}

	pending, err := s.expenseRepo.FindUnconvertedByCompany(ctx, requester.CompanyID)
	if err != nil {
		s.LogError(ctx, err, "Failed to list unconverted expenses")
		return 0, fmt.Errorf("failed to list unconverted expenses: %w", err)
	}

	reconciled := 0
	for i := range pending {
		e := &pending[i]
		base, ok := s.tryConvert(ctx, e.Amount, e.CurrencyCode, e.BaseCurrencyCode, e.Date)
		if !ok {
			continue
		}
		if err := s.expenseRepo.SetBaseAmount(ctx, e.ExpenseID, base, time.Now(), requester.UserID); err != nil {
			s.LogError(ctx, err, "Failed to persist reconciled base amount", slog.String("expense_id", e.ExpenseID))
			continue
		}
		reconciled++
	}

	s.LogInfo(ctx, "Base amount reconciliation finished",
		slog.Int("candidates", len(pending)),
		slog.Int("reconciled", reconciled))
	return reconciled, nil
}

// Decide approves or rejects a Pending expense.
func (s *expenseService) Decide(ctx context.Context, requester domain.Requester, expenseID string, decision domain.ExpenseStatus) (*domain.Expense, error) {
	if !decision.ValidDecision() {
		return nil, fmt.Errorf("%w: decision must be APPROVED or REJECTED", apperrors.ErrValidation)
	}

	expense, err := s.expenseRepo.FindExpenseByID(ctx, expenseID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, apperrors.ErrNotFound
		}
		s.LogError(ctx, err, "Failed to load expense for decision", slog.String("expense_id", expenseID))
		return nil, fmt.Errorf("failed to load expense: %w", err)
	}

	if err := s.authorizeDecider(ctx, requester, expense); err != nil {
		return nil, err
	}

	now := time.Now()
	if err := s.expenseRepo.DecideExpense(ctx, expenseID, decision, requester.UserID, now); err != nil {
		if errors.Is(err, apperrors.ErrAlreadyDecided) {
			// Lost the race, or a decision already stands. Either way the
			// single decision point is preserved.
			return nil, apperrors.ErrAlreadyDecided
		}
		s.LogError(ctx, err, "Failed to decide expense", slog.String("expense_id", expenseID))
		return nil, fmt.Errorf("failed to decide expense: %w", err)
	}

	expense.Status = decision
	expense.ApproverID = &requester.UserID
	expense.DecidedAt = &now
	expense.LastUpdatedAt = now
	expense.LastUpdatedBy = requester.UserID

	s.LogInfo(ctx, "Expense decided",
		slog.String("expense_id", expenseID),
		slog.String("decision", string(decision)))

	if s.dispatcher != nil {
		s.dispatcher.Dispatch(domain.ExpenseDecidedEvent{
			ExpenseID:  expenseID,
			Decision:   decision,
			ApproverID: requester.UserID,
			OwnerID:    expense.UserID,
			Timestamp:  now,
		})
	}

	return expense, nil
}

// authorizeDecider checks decision rights: Admin of the expense's company, or
// the Manager assigned to the expense's owner. Cross-tenant requests get the
// same ErrForbidden as in-tenant denials so existence is not disclosed.
func (s *expenseService) authorizeDecider(ctx context.Context, requester domain.Requester, expense *domain.Expense) error {
	if expense.CompanyID != requester.CompanyID {
		return apperrors.ErrForbidden
	}
	if requester.IsAdmin() {
		return nil
	}
	if requester.Role != domain.RoleManager {
		return apperrors.ErrForbidden
	}

	owner, err := s.userRepo.FindUserByID(ctx, expense.UserID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return apperrors.ErrForbidden
		}
		return err
	}
	if owner.ManagerID == nil || *owner.ManagerID != requester.UserID {
		return apperrors.ErrForbidden
	}
	return nil
}

// ListPending lists Pending expenses visible to the requester.
func (s *expenseService) ListPending(ctx context.Context, requester domain.Requester) ([]domain.Expense, error) {
	var (
		expenses []domain.Expense
		err      error
	)

	switch requester.Role {
	case domain.RoleAdmin:
		expenses, err = s.expenseRepo.FindPendingByCompany(ctx, requester.CompanyID)
	case domain.RoleManager:
		expenses, err = s.expenseRepo.FindPendingByManager(ctx, requester.CompanyID, requester.UserID)
	default:
		return nil, apperrors.ErrForbidden
	}

	if err != nil {
		s.LogError(ctx, err, "Failed to list pending expenses")
		return nil, fmt.Errorf("failed to list pending expenses: %w", err)
	}
	if expenses == nil {
		return []domain.Expense{}, nil
	}
	return expenses, nil
}

// GetExpense retrieves a single expense, subject to visibility rules.
func (s *expenseService) GetExpense(ctx context.Context, requester domain.Requester, expenseID string) (*domain.Expense, error) {
	expense, err := s.expenseRepo.FindExpenseByID(ctx, expenseID)
	if err != nil {
		if !errors.Is(err, apperrors.ErrNotFound) {
			s.LogError(ctx, err, "Failed to load expense", slog.String("expense_id", expenseID))
		}
		return nil, err
	}

	if err := s.authorizeViewer(ctx, requester, expense); err != nil {
		return nil, err
	}
	return expense, nil
}

// ListUserExpenses lists a user's expenses, newest first.
func (s *expenseService) ListUserExpenses(ctx context.Context, requester domain.Requester, userID string, limit, offset int) ([]domain.Expense, error) {
	if requester.UserID != userID {
		owner, err := s.userRepo.FindUserByID(ctx, userID)
		if err != nil {
			if errors.Is(err, apperrors.ErrNotFound) {
				return nil, apperrors.ErrForbidden
			}
			return nil, err
		}
		if owner.CompanyID != requester.CompanyID {
			return nil, apperrors.ErrForbidden
		}
		isManagerOf := owner.ManagerID != nil && *owner.ManagerID == requester.UserID
		if !requester.IsAdmin() && !isManagerOf {
			return nil, apperrors.ErrForbidden
		}
	}

	expenses, err := s.expenseRepo.FindExpensesByUser(ctx, userID, limit, offset)
	if err != nil {
		s.LogError(ctx, err, "Failed to list user expenses", slog.String("target_user_id", userID))
		return nil, fmt.Errorf("failed to list expenses: %w", err)
	}
	if expenses == nil {
		return []domain.Expense{}, nil
	}
	return expenses, nil
}

// authorizeViewer checks read access: owner, owner's manager, or company Admin.
func (s *expenseService) authorizeViewer(ctx context.Context, requester domain.Requester, expense *domain.Expense) error {
	if expense.CompanyID != requester.CompanyID {
		return apperrors.ErrForbidden
	}
	if expense.UserID == requester.UserID || requester.IsAdmin() {
		return nil
	}
	if requester.Role != domain.RoleManager {
		return apperrors.ErrForbidden
	}
	owner, err := s.userRepo.FindUserByID(ctx, expense.UserID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return apperrors.ErrForbidden
		}
		return err
	}
	if owner.ManagerID == nil || *owner.ManagerID != requester.UserID {
		return apperrors.ErrForbidden
	}
	return nil
}
