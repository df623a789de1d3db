package server

import (
	"net/http"

	errs "github.com/attendly/go-workforce-server/internal/errors"
	"github.com/attendly/go-workforce-server/users"
)

func (s *Server) HealthHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s.respondJSON(w, http.StatusOK, "ok", nil)
	}
}

func (s *Server) MeHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		payload := PayloadFromRequest(r)
		user, err := s.auth.UserByID(r.Context(), payload.UserID)
		if err != nil {
			s.respondError(w, err)
			return
		}
		s.respondJSON(w, http.StatusOK, "Current user", user)
	}
}

func (s *Server) CurrentCompanyHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		tc := TenantFromRequest(r)
		if tc == nil {
			// Super admins have no tenant of their own.
			s.respondError(w, errs.ErrMissingTenant)
			return
		}
		s.respondJSON(w, http.StatusOK, "Current company", tc)
	}
}

// DeactivateUserHandler flips a user's active flag off. Company admins can
// only touch users of their own company; targets outside it - including
// super admins, who have no company - read as not found so nothing about
// other tenants leaks.
func (s *Server) DeactivateUserHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		targetID := r.PathValue("id")
		if targetID == "" {
			s.respondError(w, errs.Validationf("user id is required"))
			return
		}

		payload := PayloadFromRequest(r)
		target, err := s.auth.UserByID(r.Context(), targetID)
		if err != nil {
			s.respondError(w, err)
			return
		}

		if payload.Role != users.RoleSuperAdmin {
			tc := TenantFromRequest(r)
			if tc == nil || target.CompanyID != tc.ID {
				s.respondError(w, users.ErrNotFound)
				return
			}
		}

		if err := s.auth.SetUserActive(r.Context(), targetID, false); err != nil {
			s.respondError(w, err)
			return
		}
		s.respondJSON(w, http.StatusOK, "User deactivated", nil)
	}
}
