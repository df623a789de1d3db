package cache

import (
	"context"
	"encoding/json"
	"time"

	"github.com/attendly/go-workforce-server/users"
	"github.com/pkg/errors"
)

const defaultUserTTL = time.Hour

// UserCache is a read-through cache of user records keyed by user id.
// Callers check the cache first and fall back to persistence on ErrMiss; a
// miss is never an answer. Entries must be invalidated - not left to expire -
// whenever a user's password, role, or active flag changes.
type UserCache struct {
	store Store
	ttl   time.Duration
}

func NewUserCache(store Store, ttl time.Duration) *UserCache {
	if ttl <= 0 {
		ttl = defaultUserTTL
	}
	return &UserCache{store: store, ttl: ttl}
}

func (c *UserCache) Get(ctx context.Context, userID string) (*users.User, error) {
	raw, err := c.store.Get(ctx, Key(NamespaceUser, userID))
	if err != nil {
		return nil, err
	}

	var user users.User
	if err := json.Unmarshal([]byte(raw), &user); err != nil {
		// An unreadable entry is as good as absent. Drop it so the next
		// write starts clean.
		_ = c.store.Delete(ctx, Key(NamespaceUser, userID))
		return nil, ErrMiss
	}
	return &user, nil
}

// Set stores the sanitized user record. The password hash never enters the
// cache (User marshals it as "-").
func (c *UserCache) Set(ctx context.Context, user *users.User) error {
	raw, err := json.Marshal(user)
	if err != nil {
		return errors.Wrap(err, "[UserCache.Set] marshal user")
	}
	return c.store.Set(ctx, Key(NamespaceUser, user.ID), string(raw), c.ttl)
}

func (c *UserCache) Invalidate(ctx context.Context, userID string) error {
	return c.store.Delete(ctx, Key(NamespaceUser, userID))
}
