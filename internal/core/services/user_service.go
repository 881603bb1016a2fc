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

// managerChainLimit bounds the manager-chain walk during cycle detection.
// A chain longer than this is treated as a policy violation regardless.
const managerChainLimit = 64

// userService implements the UserSvcFacade interface.
type userService struct {
	BaseService
	userRepo portsrepo.UserRepositoryFacade
}

// NewUserService creates a new user service with the provided dependencies.
func NewUserService(userRepo portsrepo.UserRepositoryFacade) portssvc.UserSvcFacade {
	return &userService{userRepo: userRepo}
}

// Ensure userService implements the UserSvcFacade interface
var _ portssvc.UserSvcFacade = (*userService)(nil)

// CreateUser creates a new Employee or Manager in the requester's company.
func (s *userService) CreateUser(ctx context.Context, requester domain.Requester, req dto.CreateUserRequest) (*domain.User, error) {
	if !requester.IsAdmin() {
		return nil, apperrors.ErrForbidden
	}

	role := domain.UserRole(strings.ToUpper(req.Role))
	if !role.Valid() || role == domain.RoleAdmin {
		// New Admins cannot be created through this operation.
		return nil, fmt.Errorf("%w: role must be EMPLOYEE or MANAGER", apperrors.ErrValidation)
	}

	email := strings.ToLower(strings.TrimSpace(req.Email))
	existing, err := s.userRepo.FindUserByEmail(ctx, email)
	if err != nil && !errors.Is(err, apperrors.ErrNotFound) {
		s.LogError(ctx, err, "Failed to check email uniqueness")
		return nil, fmt.Errorf("failed to check email uniqueness: %w", err)
	}
	if existing != nil {
		return nil, apperrors.ErrDuplicateEmail
	}

	passwordHash, err := utils.HashPassword(req.Password)
	if err != nil {
		s.LogError(ctx, err, "Failed to hash password")
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	now := time.Now()
	user := domain.User{
		UserID:       uuid.NewString(),
		CompanyID:    requester.CompanyID,
		Email:        email,
		PasswordHash: passwordHash,
		FullName:     req.FullName,
		Role:         role,
		AuditFields: domain.AuditFields{
			CreatedAt:     now,
			CreatedBy:     requester.UserID,
			LastUpdatedAt: now,
			LastUpdatedBy: requester.UserID,
		},
	}

	if err := s.userRepo.SaveUser(ctx, user); err != nil {
		if errors.Is(err, apperrors.ErrDuplicateEmail) {
			return nil, err
		}
		s.LogError(ctx, err, "Failed to save user")
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	s.LogInfo(ctx, "User created successfully",
		slog.String("new_user_id", user.UserID),
		slog.String("role", string(role)))
	return &user, nil
}

// AssignManager sets or clears an employee's manager reference.
func (s *userService) AssignManager(ctx context.Context, requester domain.Requester, employeeID string, managerID *string) (*domain.User, error) {
	if !requester.IsAdmin() {
		return nil, apperrors.ErrForbidden
	}

	employee, err := s.userRepo.FindUserByID(ctx, employeeID)
	if err != nil {
		if !errors.Is(err, apperrors.ErrNotFound) {
			s.LogError(ctx, err, "Failed to find employee", slog.String("employee_id", employeeID))
		}
		return nil, err
	}
	if employee.CompanyID != requester.CompanyID {
		// Cross-tenant access never reveals whether the target exists.
		return nil, apperrors.ErrForbidden
	}

	if managerID != nil {
		if err := s.validateAssignment(ctx, employee, *managerID); err != nil {
			return nil, err
		}
	}

	now := time.Now()
	if err := s.userRepo.UpdateManager(ctx, employeeID, managerID, now, requester.UserID); err != nil {
		s.LogError(ctx, err, "Failed to update manager", slog.String("employee_id", employeeID))
		return nil, fmt.Errorf("failed to assign manager: %w", err)
	}

	employee.ManagerID = managerID
	employee.LastUpdatedAt = now
	employee.LastUpdatedBy = requester.UserID

	s.LogInfo(ctx, "Manager assignment updated", slog.String("employee_id", employeeID))
	return employee, nil
}

// validateAssignment enforces the manager-assignment policy: the manager must
// hold a managing role in the employee's company, must not be the employee, and
// linking them must not close a cycle in the manager chain.
func (s *userService) validateAssignment(ctx context.Context, employee *domain.User, managerID string) error {
	if managerID == employee.UserID {
		return fmt.Errorf("%w: cannot assign a user as their own manager", apperrors.ErrInvalidAssignment)
	}

	manager, err := s.userRepo.FindUserByID(ctx, managerID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return fmt.Errorf("%w: manager not found", apperrors.ErrInvalidAssignment)
		}
		return err
	}
	if manager.CompanyID != employee.CompanyID {
		return fmt.Errorf("%w: manager belongs to a different company", apperrors.ErrInvalidAssignment)
	}
	if manager.DeletedAt != nil {
		return fmt.Errorf("%w: manager is deactivated", apperrors.ErrInvalidAssignment)
	}
	if !manager.Role.CanManage() {
		return fmt.Errorf("%w: user lacks manager role", apperrors.ErrInvalidAssignment)
	}

	// Walk up the manager chain from the proposed manager with a visited set.
	// Reaching the employee means the assignment would create a cycle.
	visited := map[string]bool{employee.UserID: true}
	current := manager
	for i := 0; i < managerChainLimit; i++ {
		if visited[current.UserID] {
			return fmt.Errorf("%w: assignment would create a manager cycle", apperrors.ErrInvalidAssignment)
		}
		visited[current.UserID] = true
		if current.ManagerID == nil {
			return nil
		}
		next, err := s.userRepo.FindUserByID(ctx, *current.ManagerID)
		if err != nil {
			if errors.Is(err, apperrors.ErrNotFound) {
				// Dangling reference terminates the chain.
				return nil
			}
			return err
		}
		current = next
	}
	return fmt.Errorf("%w: manager chain too long", apperrors.ErrInvalidAssignment)
}

// DeactivateUser soft-deletes a user so they can no longer authenticate.
func (s *userService) DeactivateUser(ctx context.Context, requester domain.Requester, userID string) error {
	if !requester.IsAdmin() {
		return apperrors.ErrForbidden
	}
	if requester.UserID == userID {
		return fmt.Errorf("%w: admins cannot deactivate themselves", apperrors.ErrValidation)
	}

	user, err := s.userRepo.FindUserByID(ctx, userID)
	if err != nil {
		if !errors.Is(err, apperrors.ErrNotFound) {
			s.LogError(ctx, err, "Failed to find user for deactivation", slog.String("target_user_id", userID))
		}
		return err
	}
	if user.CompanyID != requester.CompanyID {
		return apperrors.ErrForbidden
	}

	if err := s.userRepo.MarkUserDeleted(ctx, userID, time.Now(), requester.UserID); err != nil {
		s.LogError(ctx, err, "Failed to deactivate user", slog.String("target_user_id", userID))
		return fmt.Errorf("failed to deactivate user: %w", err)
	}

	s.LogInfo(ctx, "User deactivated", slog.String("target_user_id", userID))
	return nil
}

// Authenticate verifies email/password credentials.
func (s *userService) Authenticate(ctx context.Context, email, password string) (*domain.User, error) {
	user, err := s.userRepo.FindUserByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, apperrors.ErrInvalidCredentials
		}
		s.LogError(ctx, err, "Failed to look up user for authentication")
		return nil, fmt.Errorf("failed to authenticate: %w", err)
	}
	if user.DeletedAt != nil {
		return nil, apperrors.ErrInvalidCredentials
	}
	if !utils.CheckPasswordHash(password, user.PasswordHash) {
		return nil, apperrors.ErrInvalidCredentials
	}
	return user, nil
}

// ResolveRequester loads the explicit authorization context for a user ID.
func (s *userService) ResolveRequester(ctx context.Context, userID string) (domain.Requester, error) {
	user, err := s.userRepo.FindUserByID(ctx, userID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return domain.Requester{}, apperrors.ErrUnauthorized
		}
		return domain.Requester{}, err
	}
	return domain.Requester{
		UserID:    user.UserID,
		CompanyID: user.CompanyID,
		Role:      user.Role,
	}, nil
}

// GetUserByID retrieves a user for the user themselves or a company Admin.
func (s *userService) GetUserByID(ctx context.Context, requester domain.Requester, userID string) (*domain.User, error) {
	if requester.UserID != userID && !requester.IsAdmin() {
		return nil, apperrors.ErrForbidden
	}

	user, err := s.userRepo.FindUserByID(ctx, userID)
	if err != nil {
		if !errors.Is(err, apperrors.ErrNotFound) {
			s.LogError(ctx, err, "Failed to find user by ID", slog.String("target_user_id", userID))
		}
		return nil, err
	}
	if user.CompanyID != requester.CompanyID {
		return nil, apperrors.ErrForbidden
	}
	return user, nil
}

// ListCompanyUsers retrieves a paginated list of users in the requester's company.
func (s *userService) ListCompanyUsers(ctx context.Context, requester domain.Requester, limit, offset int) ([]domain.User, error) {
	if !requester.IsAdmin() {
		return nil, apperrors.ErrForbidden
	}

	users, err := s.userRepo.FindUsersByCompany(ctx, requester.CompanyID, limit, offset)
	if err != nil {
		s.LogError(ctx, err, "Failed to list company users")
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	if users == nil {
		return []domain.User{}, nil
	}
	return users, nil
}
