package cache

import (
	"context"
	"errors"
	"time"
)

// Key namespaces. Callers outside the core must stick to these categories to
// avoid collisions.
const (
	NamespaceUser       = "user"
	NamespaceCompany    = "company"
	NamespaceAttendance = "attendance"
	NamespaceSession    = "session"
	NamespaceRateLimit  = "ratelimit"
	NamespaceGeneral    = "general"
)

// ErrMiss is returned when a key is absent or expired. Absence must never be
// treated as "does not exist" - it only means fall back to persistence.
var ErrMiss = errors.New("cache miss")

// Store is a key/value store with per-key TTLs. Entries are written and read
// with short, independent key-scoped operations; races on a key resolve by
// overwrite, never by blocking.
type Store interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	Increment(ctx context.Context, key string, window time.Duration) (int64, error)
}

// Key builds a namespaced key of the form <category>:<id>.
func Key(namespace, id string) string {
	return namespace + ":" + id
}
