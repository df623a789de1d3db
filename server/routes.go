package server

import (
	"net/http"

	"github.com/attendly/go-workforce-server/access"
	"github.com/attendly/go-workforce-server/users"
)

// Protected operations declare their required roles and tenant scoping here,
// where routes are registered; the guard inspects this metadata before
// dispatch. An empty role set admits any authenticated role, and super
// admins pass every check.
var (
	opChangePassword = access.NewOperation("auth.change_password")
	opLogout         = access.NewOperation("auth.logout")
	opMe             = access.NewOperation("users.me")
	opCurrentCompany = access.NewOperation("companies.current").
				RequireRoles(users.RoleCompanyAdmin, users.RoleEmployee).
				RequireTenant()
	opDeactivateUser = access.NewOperation("users.deactivate").
				RequireRoles(users.RoleCompanyAdmin).
				RequireTenant()
)

func (s *Server) initRoutes() {
	s.RegisterRouteFunc("GET /healthz", s.HealthHandler())

	// Credential exchange and session lifecycle
	s.RegisterRouteFunc("POST /auth/login", ChainMiddleware(s.LoginHandler(), s.APIMiddleware(s.RateLimitLogin())...))
	s.RegisterRouteFunc("POST /auth/register", ChainMiddleware(s.RegisterHandler(), s.APIMiddleware()...))
	s.RegisterRouteFunc("POST /auth/refresh", ChainMiddleware(s.RefreshHandler(), s.APIMiddleware()...))
	s.RegisterRouteFunc("POST /auth/change-password", s.protected(opChangePassword, s.ChangePasswordHandler()))
	s.RegisterRouteFunc("POST /auth/logout", s.protected(opLogout, s.LogoutHandler()))

	// Authenticated resources
	s.RegisterRouteFunc("GET /users/me", s.protected(opMe, s.MeHandler()))
	s.RegisterRouteFunc("GET /companies/current", s.protected(opCurrentCompany, s.CurrentCompanyHandler()))
	s.RegisterRouteFunc("POST /users/{id}/deactivate", s.protected(opDeactivateUser, s.DeactivateUserHandler()))
}

// protected wraps a handler in the full guard chain: base middleware, bearer
// authentication, tenant resolution, then the access guard.
func (s *Server) protected(op access.Operation, handler http.HandlerFunc) http.HandlerFunc {
	return ChainMiddleware(handler, s.APIMiddleware(s.RequireAuth(), s.ResolveTenant(), s.Protect(op))...)
}
