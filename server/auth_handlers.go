package server

import (
	"encoding/json"
	"net/http"

	"github.com/attendly/go-workforce-server/auth"
	errs "github.com/attendly/go-workforce-server/internal/errors"
	"github.com/attendly/go-workforce-server/users"
)

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type registerRequest struct {
	Email     string `json:"email"`
	Password  string `json:"password"`
	FullName  string `json:"fullName"`
	Role      string `json:"role"`
	CompanyID string `json:"companyId"`
}

type refreshRequest struct {
	RefreshToken string `json:"refreshToken"`
}

type changePasswordRequest struct {
	CurrentPassword string `json:"currentPassword"`
	NewPassword     string `json:"newPassword"`
}

func decodeJSON(r *http.Request, dst any) error {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return errs.Validationf("invalid request body")
	}
	return nil
}

func (s *Server) LoginHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req loginRequest
		if err := decodeJSON(r, &req); err != nil {
			s.respondError(w, err)
			return
		}
		if req.Email == "" || req.Password == "" {
			s.respondError(w, errs.Validationf("email and password are required"))
			return
		}

		result, err := s.auth.Login(r.Context(), req.Email, req.Password)
		if err != nil {
			s.respondError(w, err)
			return
		}
		s.respondJSON(w, http.StatusOK, "Login successful", result)
	}
}

func (s *Server) RegisterHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req registerRequest
		if err := decodeJSON(r, &req); err != nil {
			s.respondError(w, err)
			return
		}
		if req.Email == "" || req.Password == "" {
			s.respondError(w, errs.Validationf("email and password are required"))
			return
		}

		result, err := s.auth.Register(r.Context(), auth.RegisterParams{
			Email:     req.Email,
			Password:  req.Password,
			FullName:  req.FullName,
			Role:      users.RoleType(req.Role),
			CompanyID: req.CompanyID,
		})
		if err != nil {
			s.respondError(w, err)
			return
		}
		s.respondJSON(w, http.StatusCreated, "User registered successfully", result)
	}
}

func (s *Server) RefreshHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req refreshRequest
		if err := decodeJSON(r, &req); err != nil {
			s.respondError(w, err)
			return
		}
		if req.RefreshToken == "" {
			s.respondError(w, errs.Validationf("refreshToken is required"))
			return
		}

		pair, err := s.auth.Refresh(r.Context(), req.RefreshToken)
		if err != nil {
			s.respondError(w, err)
			return
		}
		s.respondJSON(w, http.StatusOK, "Token refreshed successfully", pair)
	}
}

func (s *Server) ChangePasswordHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req changePasswordRequest
		if err := decodeJSON(r, &req); err != nil {
			s.respondError(w, err)
			return
		}
		if req.CurrentPassword == "" || req.NewPassword == "" {
			s.respondError(w, errs.Validationf("currentPassword and newPassword are required"))
			return
		}

		payload := PayloadFromRequest(r)
		if err := s.auth.ChangePassword(r.Context(), payload.UserID, req.CurrentPassword, req.NewPassword); err != nil {
			s.respondError(w, err)
			return
		}
		s.respondJSON(w, http.StatusOK, "Password changed successfully", nil)
	}
}

func (s *Server) LogoutHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		payload := PayloadFromRequest(r)
		if err := s.auth.Logout(r.Context(), payload.UserID); err != nil {
			s.respondError(w, err)
			return
		}
		s.respondJSON(w, http.StatusOK, "Logged out successfully", nil)
	}
}
