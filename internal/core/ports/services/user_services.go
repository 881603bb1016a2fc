package services

import (
	"context"

	"github.com/pravaha-app/expense_backend/internal/core/domain"
	"github.com/pravaha-app/expense_backend/internal/dto"
)

// UserReaderSvc defines read operations for user data
type UserReaderSvc interface {
	// GetUserByID retrieves a user. Permitted for the user themselves or an
	// Admin of the same company.
	GetUserByID(ctx context.Context, requester domain.Requester, userID string) (*domain.User, error)

	// ListCompanyUsers retrieves a paginated list of users in the requester's
	// company. Admin only.
	ListCompanyUsers(ctx context.Context, requester domain.Requester, limit, offset int) ([]domain.User, error)
}

// UserWriterSvc defines write operations for user data
type UserWriterSvc interface {
	// CreateUser creates a new Employee or Manager in the requester's company.
	// Admin only.
	CreateUser(ctx context.Context, requester domain.Requester, req dto.CreateUserRequest) (*domain.User, error)

	// AssignManager sets (or clears, when managerID is nil) an employee's
	// manager. Admin only. The manager must hold the Manager or Admin role in
	// the same company, must not be the employee themselves, and the
	// assignment must not create a cycle in the manager chain.
	AssignManager(ctx context.Context, requester domain.Requester, employeeID string, managerID *string) (*domain.User, error)

	// DeactivateUser soft-deletes a user so they can no longer authenticate.
	// Admin only; admins cannot deactivate themselves.
	DeactivateUser(ctx context.Context, requester domain.Requester, userID string) error
}

// UserAuthSvc defines operations for user authentication
type UserAuthSvc interface {
	// Authenticate verifies email/password credentials. It fails with
	// apperrors.ErrInvalidCredentials on unknown email, wrong password or a
	// disabled account, without distinguishing between the three.
	Authenticate(ctx context.Context, email, password string) (*domain.User, error)

	// ResolveRequester loads the authorization context for an authenticated
	// user ID. Used by the auth middleware after token validation.
	ResolveRequester(ctx context.Context, userID string) (domain.Requester, error)
}

// UserSvcFacade combines all user-related service interfaces.
type UserSvcFacade interface {
	UserReaderSvc
	UserWriterSvc
	UserAuthSvc
}
