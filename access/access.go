package access

import (
	errs "github.com/attendly/go-workforce-server/internal/errors"
	"github.com/attendly/go-workforce-server/tenant"
	"github.com/attendly/go-workforce-server/token"
	"github.com/attendly/go-workforce-server/users"
	"github.com/rs/zerolog"
)

// Operation is the registration metadata a protected endpoint declares:
// its name, the roles allowed to call it, and whether it needs a resolved
// tenant context. An empty role set admits any authenticated role.
type Operation struct {
	name         string
	roles        []users.RoleType
	tenantScoped bool
}

func NewOperation(name string) Operation {
	return Operation{name: name}
}

// RequireRoles declares the role set allowed to run the operation.
func (o Operation) RequireRoles(roles ...users.RoleType) Operation {
	o.roles = roles
	return o
}

// RequireTenant marks the operation as tenant-scoped.
func (o Operation) RequireTenant() Operation {
	o.tenantScoped = true
	return o
}

func (o Operation) Name() string {
	return o.name
}

// Guard is the final authorization gate, run after the tenant resolver.
type Guard struct {
	log zerolog.Logger
}

func NewGuard(log zerolog.Logger) Guard {
	return Guard{log: log}
}

// Authorize checks role membership and tenant scoping for one operation.
// Super admins satisfy every role check; the tenant-context check for them
// is moot since the resolver bypasses them too.
func (g Guard) Authorize(payload *token.Payload, tc *tenant.Context, op Operation) error {
	if payload == nil {
		// Should be unreachable behind the auth middleware.
		g.log.Error().Str("operation", op.name).Msg("authorize called without authenticated payload")
		return errs.ErrInsufficientRole
	}

	if payload.Role == users.RoleSuperAdmin {
		return nil
	}

	if len(op.roles) > 0 && !containsRole(op.roles, payload.Role) {
		return errs.ErrInsufficientRole
	}

	if op.tenantScoped && tc == nil {
		// Invariant violation: the resolver should have run first. Fatal
		// for the request, loudly logged.
		g.log.Error().
			Str("operation", op.name).
			Str("user_id", payload.UserID).
			Msg("tenant-scoped operation reached without tenant context")
		return errs.ErrTenantContextMissing
	}

	return nil
}

func containsRole(roles []users.RoleType, role users.RoleType) bool {
	for _, r := range roles {
		if r == role {
			return true
		}
	}
	return false
}
