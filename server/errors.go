package server

import (
	"net/http"

	errs "github.com/attendly/go-workforce-server/internal/errors"
	"github.com/attendly/go-workforce-server/users"
)

// statusForError is the single place an error identifier becomes an HTTP
// status. Messages stay deliberately vague where precision would leak
// account or tenant existence.
func statusForError(err error) (int, string) {
	switch {
	case errs.Is(err, errs.ErrInvalidCredentials):
		return http.StatusUnauthorized, "Invalid credentials"
	case errs.Is(err, errs.ErrAccountDeactivated):
		return http.StatusUnauthorized, "Account is deactivated"
	case errs.Is(err, errs.ErrTokenExpired),
		errs.Is(err, errs.ErrTokenMalformed),
		errs.Is(err, errs.ErrTokenKindMismatch):
		return http.StatusUnauthorized, "Invalid or expired token"
	case errs.Is(err, errs.ErrSessionInvalid):
		return http.StatusUnauthorized, "Invalid refresh token"
	case errs.Is(err, errs.ErrMissingTenant):
		return http.StatusForbidden, "User must be associated with a company"
	case errs.Is(err, errs.ErrTenantNotFound):
		return http.StatusForbidden, "Company not found"
	case errs.Is(err, errs.ErrSubscriptionInactive):
		return http.StatusForbidden, "Company subscription is not active"
	case errs.Is(err, errs.ErrInsufficientRole):
		return http.StatusForbidden, "Insufficient permissions"
	case errs.Is(err, errs.ErrTenantContextMissing):
		return http.StatusForbidden, "Company context not found"
	case errs.Is(err, errs.ErrEmailAlreadyExists):
		return http.StatusConflict, "User with this email already exists"
	case errs.Is(err, errs.ErrInvalidCompanyReference):
		return http.StatusBadRequest, "Invalid company ID"
	case errs.Is(err, errs.ErrValidation):
		return http.StatusBadRequest, err.Error()
	case errs.Is(err, users.ErrNotFound):
		return http.StatusNotFound, "User not found"
	case errs.Is(err, errs.ErrDependencyUnavailable):
		return http.StatusServiceUnavailable, "Service temporarily unavailable"
	}
	return http.StatusInternalServerError, "Internal server error"
}
