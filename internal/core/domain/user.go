package domain

import "time"

// UserRole defines the closed set of roles a user can have within a company.
type UserRole string

const (
	RoleEmployee UserRole = "EMPLOYEE"
	RoleManager  UserRole = "MANAGER"
	RoleAdmin    UserRole = "ADMIN"
)

// Valid reports whether the role is one of the known roles.
func (r UserRole) Valid() bool {
	switch r {
	case RoleEmployee, RoleManager, RoleAdmin:
		return true
	}
	return false
}

// CanManage reports whether a user with this role may be assigned as a manager.
func (r UserRole) CanManage() bool {
	return r == RoleManager || r == RoleAdmin
}

// User represents a user of the application in the domain.
// ManagerID is a lookup-only reference; if set it must resolve to a Manager or
// Admin in the same company and the manager chain must stay acyclic.
type User struct {
	UserID       string   `json:"userID"` // Primary Key (UUID)
	CompanyID    string   `json:"companyID"`
	Email        string   `json:"email"` // Globally unique, used for login
	PasswordHash string   `json:"-"`
	FullName     string   `json:"fullName"`
	Role         UserRole `json:"role"`
	ManagerID    *string  `json:"managerID,omitempty"`
	AuditFields
	DeletedAt *time.Time `json:"deletedAt,omitempty" db:"deleted_at"` // Used for soft delete
}

// Requester is the explicit authorization context for a core operation. It is
// resolved once from the authenticated user and passed into every service call
// so each check is a pure function of its arguments.
type Requester struct {
	UserID    string
	CompanyID string
	Role      UserRole
}

// IsAdmin reports whether the requester holds the Admin role.
func (r Requester) IsAdmin() bool {
	return r.Role == RoleAdmin
}
