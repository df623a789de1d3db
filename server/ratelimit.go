package server

import (
	"context"
	"net"
	"net/http"
	"time"

	"github.com/attendly/go-workforce-server/cache"
	"github.com/rs/zerolog"
)

// rateLimiter counts requests in fixed windows on the shared cache store
// under the ratelimit namespace.
type rateLimiter struct {
	store  cache.Store
	limit  int
	window time.Duration
	log    zerolog.Logger
}

// allow fails open: a broken counter backend should not lock everyone out
// of login.
func (l *rateLimiter) allow(ctx context.Context, key string) bool {
	count, err := l.store.Increment(ctx, cache.Key(cache.NamespaceRateLimit, key), l.window)
	if err != nil {
		l.log.Warn().Err(err).Str("key", key).Msg("rate limit counter unavailable")
		return true
	}
	return count <= int64(l.limit)
}

// RateLimitLogin throttles credential-guessing per client address.
func (s *Server) RateLimitLogin() func(http.HandlerFunc) http.HandlerFunc {
	return func(next http.HandlerFunc) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			if !s.limiter.allow(r.Context(), "login:"+clientIP(r)) {
				s.respondFailure(w, http.StatusTooManyRequests, "Too many requests")
				return
			}
			next(w, r)
		}
	}
}

func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
