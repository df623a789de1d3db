package sessions

import (
	"context"
	"time"

	"github.com/attendly/go-workforce-server/cache"
	"github.com/pkg/errors"
)

const defaultSessionTTL = 24 * time.Hour

// Store holds at most one valid refresh token per user. Starting a session
// overwrites any prior entry, which is what invalidates an old refresh token
// the instant a rotation completes - even if the old token itself has not
// expired. Concurrent rotations for the same user resolve last-writer-wins.
type Store struct {
	store cache.Store
	ttl   time.Duration
}

func NewStore(store cache.Store, ttl time.Duration) *Store {
	if ttl <= 0 {
		ttl = defaultSessionTTL
	}
	return &Store{store: store, ttl: ttl}
}

// Start records refreshToken as the single valid token for userID,
// replacing whatever was there before.
func (s *Store) Start(ctx context.Context, userID, refreshToken string) error {
	if err := s.store.Set(ctx, cache.Key(cache.NamespaceSession, userID), refreshToken, s.ttl); err != nil {
		return errors.Wrap(err, "[Store.Start] set session")
	}
	return nil
}

// IsValid reports whether refreshToken is exactly the token currently stored
// for userID. A missing or expired entry is simply invalid, not an error.
func (s *Store) IsValid(ctx context.Context, userID, refreshToken string) (bool, error) {
	stored, err := s.store.Get(ctx, cache.Key(cache.NamespaceSession, userID))
	if err != nil {
		if errors.Is(err, cache.ErrMiss) {
			return false, nil
		}
		return false, errors.Wrap(err, "[Store.IsValid] get session")
	}
	return stored == refreshToken, nil
}

// End deletes the user's session entry. Idempotent: ending a session that
// does not exist is not an error.
func (s *Store) End(ctx context.Context, userID string) error {
	if err := s.store.Delete(ctx, cache.Key(cache.NamespaceSession, userID)); err != nil {
		return errors.Wrap(err, "[Store.End] delete session")
	}
	return nil
}
