package server

import (
	"net/http"

	"github.com/attendly/go-workforce-server/access"
	"github.com/attendly/go-workforce-server/auth"
	"github.com/attendly/go-workforce-server/cache"
	"github.com/attendly/go-workforce-server/internal/config"
	"github.com/attendly/go-workforce-server/tenant"
	"github.com/attendly/go-workforce-server/token"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
)

// Deps holds the constructed core components. Clients and pools behind them
// are owned by the process entry point.
type Deps struct {
	Auth     *auth.Service
	Tokens   *token.Issuer
	Resolver *tenant.Resolver
	Cache    cache.Store
}

// Server is the HTTP surface over the auth/session/tenant core.
type Server struct {
	config   config.Config
	log      zerolog.Logger
	auth     *auth.Service
	tokens   *token.Issuer
	resolver *tenant.Resolver
	guard    access.Guard
	limiter  *rateLimiter
	mux      *http.ServeMux
}

func New(cfg config.Config, log zerolog.Logger, deps Deps) (*Server, error) {
	if deps.Auth == nil {
		return nil, errors.New("[server.New] auth service is required")
	}
	if deps.Tokens == nil {
		return nil, errors.New("[server.New] token issuer is required")
	}
	if deps.Resolver == nil {
		return nil, errors.New("[server.New] tenant resolver is required")
	}
	if deps.Cache == nil {
		return nil, errors.New("[server.New] cache store is required")
	}

	s := &Server{
		config:   cfg,
		log:      log,
		auth:     deps.Auth,
		tokens:   deps.Tokens,
		resolver: deps.Resolver,
		guard:    access.NewGuard(log),
		limiter: &rateLimiter{
			store:  deps.Cache,
			limit:  cfg.GetLoginRateLimit(),
			window: cfg.GetLoginRateWindow(),
			log:    log,
		},
		mux: http.NewServeMux(),
	}
	s.initRoutes()
	return s, nil
}

func (s *Server) Handler() http.Handler {
	return s.mux
}

func (s *Server) RegisterRouteFunc(pattern string, handler http.HandlerFunc) {
	s.mux.HandleFunc(pattern, handler)
}
