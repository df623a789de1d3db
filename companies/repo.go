package companies

import (
	"context"
	"errors"
)

var ErrNotFound = errors.New("company not found")

// Repo loads company records together with their subscription and settings.
type Repo interface {
	GetByID(ctx context.Context, id string) (*Company, error)
}
