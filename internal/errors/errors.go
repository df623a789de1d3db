package errors

import (
	"errors"
	"fmt"
)

// Stable error identifiers surfaced to callers. These are authorization
// decisions or bad input, never retried automatically.
var (
	// Authentication errors
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrAccountDeactivated = errors.New("account is deactivated")

	// Token errors
	ErrTokenExpired      = errors.New("token expired")
	ErrTokenMalformed    = errors.New("token malformed")
	ErrTokenKindMismatch = errors.New("token kind mismatch")

	// Session errors
	ErrSessionInvalid = errors.New("session invalid")

	// Tenant errors
	ErrMissingTenant        = errors.New("user must be associated with a company")
	ErrTenantNotFound       = errors.New("company not found")
	ErrSubscriptionInactive = errors.New("company subscription is not active")

	// Access control errors
	ErrInsufficientRole     = errors.New("insufficient permissions")
	ErrTenantContextMissing = errors.New("company context not found")

	// Registration errors
	ErrEmailAlreadyExists      = errors.New("user with this email already exists")
	ErrInvalidCompanyReference = errors.New("invalid company reference")

	// Bad request input, rejected at the boundary
	ErrValidation = errors.New("validation failed")
)

// Validationf builds a caller-visible validation error carrying ErrValidation
// in its chain.
func Validationf(format string, args ...interface{}) error {
	return fmt.Errorf(format+": %w", append(args, ErrValidation)...)
}

// ErrDependencyUnavailable marks infrastructure faults (cache or persistence
// connectivity). Distinct from the denial errors above: operational incidents,
// not authorization decisions.
var ErrDependencyUnavailable = errors.New("dependency unavailable")

// Dependency wraps an infrastructure fault so callers can match it with
// errors.Is(err, ErrDependencyUnavailable) while keeping the cause text.
func Dependency(err error, op string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %v: %w", op, err, ErrDependencyUnavailable)
}

// Is reports whether any error in err's chain matches target
func Is(err, target error) bool {
	return errors.Is(err, target)
}
