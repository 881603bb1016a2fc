package repositories

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/pravaha-app/expense_backend/internal/core/domain"
)

// UserReader defines read operations for user data
type UserReader interface {
	// FindUserByID retrieves a specific user by their ID.
	FindUserByID(ctx context.Context, userID string) (*domain.User, error)

	// FindUserByEmail retrieves a user by email. Email is unique system-wide.
	FindUserByEmail(ctx context.Context, email string) (*domain.User, error)

	// FindUsersByCompany retrieves a paginated list of users in a company.
	FindUsersByCompany(ctx context.Context, companyID string, limit int, offset int) ([]domain.User, error)
}

// UserWriter defines write operations for user data
type UserWriter interface {
	// SaveUser persists a new user.
	SaveUser(ctx context.Context, user domain.User) error

	// SaveUserInTx persists a new user inside an existing transaction.
	SaveUserInTx(ctx context.Context, tx pgx.Tx, user domain.User) error

	// UpdateManager sets or clears (nil) a user's manager reference.
	UpdateManager(ctx context.Context, userID string, managerID *string, updatedAt time.Time, updatedBy string) error
}

// UserLifecycleManager defines operations for managing user lifecycle
type UserLifecycleManager interface {
	// MarkUserDeleted marks a user as deleted (soft delete).
	MarkUserDeleted(ctx context.Context, userID string, deletedAt time.Time, deletedBy string) error
}

// UserRepositoryFacade combines all user-related repository interfaces.
type UserRepositoryFacade interface {
	UserReader
	UserWriter
	UserLifecycleManager
}
