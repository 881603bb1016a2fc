package models

import "time"

// User mirrors the users table. Email is unique system-wide so logins stay
// unambiguous across companies.
type User struct {
	UserID       string  `db:"user_id"`
	CompanyID    string  `db:"company_id"`
	Email        string  `db:"email"`
	PasswordHash string  `db:"password_hash"`
	FullName     string  `db:"full_name"`
	Role         string  `db:"role"`
	ManagerID    *string `db:"manager_id"`
	AuditFields
	DeletedAt *time.Time `db:"deleted_at"`
}
