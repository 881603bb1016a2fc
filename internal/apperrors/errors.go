package apperrors

import "errors"

// ErrNotFound indicates that a requested resource could not be found.
var ErrNotFound = errors.New("resource not found")

// ErrValidation indicates that input data failed validation checks.
var ErrValidation = errors.New("validation error")

// ErrDuplicateEmail indicates that the email is already registered, system-wide.
var ErrDuplicateEmail = errors.New("email already registered")

// ErrInvalidCredentials indicates a failed login attempt. It is deliberately the
// same error for an unknown email and a wrong password.
var ErrInvalidCredentials = errors.New("invalid email or password")

// ErrUnauthorized indicates a request without a valid authenticated identity.
var ErrUnauthorized = errors.New("unauthorized")

// ErrForbidden indicates the requester lacks permission for the operation.
// Handlers return this without revealing whether the target resource exists.
var ErrForbidden = errors.New("forbidden")

// ErrInvalidAssignment indicates a manager assignment that violates the
// assignment policy (wrong role, wrong company, self-reference or cycle).
var ErrInvalidAssignment = errors.New("invalid manager assignment")

// ErrInvalidAmount indicates a non-positive expense amount.
var ErrInvalidAmount = errors.New("amount must be positive")

// ErrInvalidCurrency indicates a currency code that is not a recognized ISO code.
var ErrInvalidCurrency = errors.New("unrecognized currency code")

// ErrAlreadyDecided indicates a decision on an expense that is no longer pending.
// Losing a concurrent decision race surfaces as this error.
var ErrAlreadyDecided = errors.New("expense already decided")
