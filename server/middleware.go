package server

import (
	"net/http"
	"strings"
	"time"

	"github.com/attendly/go-workforce-server/access"
	errs "github.com/attendly/go-workforce-server/internal/errors"
	"github.com/attendly/go-workforce-server/token"
)

func ChainMiddleware(routeFunction http.HandlerFunc, mw ...func(http.HandlerFunc) http.HandlerFunc) http.HandlerFunc {
	chainedHandler := routeFunction
	// Apply middleware in reverse order
	for i := len(mw) - 1; i >= 0; i-- {
		chainedHandler = mw[i](chainedHandler)
	}
	return chainedHandler
}

// APIMiddleware is the base chain every route runs: logging, panic recovery,
// CORS. Route-specific middleware is appended after it.
func (s *Server) APIMiddleware(mw ...func(http.HandlerFunc) http.HandlerFunc) []func(http.HandlerFunc) http.HandlerFunc {
	chained := []func(http.HandlerFunc) http.HandlerFunc{
		s.LoggingMiddleware,
		s.RecoverMiddleware,
		s.CorsMiddleware,
	}
	return append(chained, mw...)
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

func (s *Server) LoggingMiddleware(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		recorder := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next(recorder, r)
		s.log.Info().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", recorder.status).
			Dur("duration", time.Since(start)).
			Msg("request")
	}
}

func (s *Server) RecoverMiddleware(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rec := recover(); rec != nil {
				s.log.Error().Interface("panic", rec).Str("path", r.URL.Path).Msg("handler panicked")
				s.respondFailure(w, http.StatusInternalServerError, "Internal server error")
			}
		}()
		next(w, r)
	}
}

func (s *Server) CorsMiddleware(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		origin := r.Header.Get("Origin")

		// No Origin header = same-origin request, no CORS headers needed
		if origin == "" {
			next(w, r)
			return
		}

		allowed, wildcard := s.originAllowed(origin)
		if allowed {
			w.Header().Set("Access-Control-Allow-Origin", origin)
			w.Header().Set("Access-Control-Allow-Credentials", "true")
		} else if wildcard {
			// Don't set Allow-Credentials with wildcard
			w.Header().Set("Access-Control-Allow-Origin", "*")
		}

		if r.Method == http.MethodOptions {
			if allowed || wildcard {
				w.Header().Set("Access-Control-Allow-Methods", s.config.GetAllowedMethods())
				w.Header().Set("Access-Control-Allow-Headers", s.config.GetAllowedHeaders())
				w.Header().Set("Access-Control-Max-Age", "86400")
			}
			w.WriteHeader(http.StatusOK)
			return
		}

		next(w, r)
	}
}

func (s *Server) originAllowed(origin string) (allowed bool, wildcard bool) {
	for _, candidate := range s.config.GetAllowedOrigins() {
		if candidate == "*" {
			wildcard = true
		}
		if candidate == origin {
			allowed = true
		}
	}
	return allowed, wildcard
}

// RequireAuth validates a Bearer access token and injects the verified
// payload into the request context.
func (s *Server) RequireAuth() func(http.HandlerFunc) http.HandlerFunc {
	return func(next http.HandlerFunc) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			parts := strings.SplitN(authHeader, " ", 2)
			if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") || parts[1] == "" {
				s.respondError(w, errs.ErrTokenMalformed)
				return
			}

			payload, err := s.tokens.Verify(parts[1], token.KindAccess)
			if err != nil {
				s.respondError(w, err)
				return
			}

			next(w, r.WithContext(contextWithPayload(r.Context(), payload)))
		}
	}
}

// ResolveTenant derives the company context for the authenticated user and
// threads it through the request context. Unauthenticated requests and super
// admins pass through unchanged.
func (s *Server) ResolveTenant() func(http.HandlerFunc) http.HandlerFunc {
	return func(next http.HandlerFunc) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			tc, err := s.resolver.Resolve(r.Context(), PayloadFromRequest(r))
			if err != nil {
				s.respondError(w, err)
				return
			}
			if tc != nil {
				r = r.WithContext(contextWithTenant(r.Context(), tc))
			}
			next(w, r)
		}
	}
}

// Protect runs the access guard for one declared operation.
func (s *Server) Protect(op access.Operation) func(http.HandlerFunc) http.HandlerFunc {
	return func(next http.HandlerFunc) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			if err := s.guard.Authorize(PayloadFromRequest(r), TenantFromRequest(r), op); err != nil {
				s.respondError(w, err)
				return
			}
			next(w, r)
		}
	}
}
