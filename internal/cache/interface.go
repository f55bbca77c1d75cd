package cache

import (
	"context"
	"errors"
	"time"

	"github.com/snigenigmatic/QuadChat/internal/domain"
)

// ErrCacheMiss is returned when the requested key is not cached.
var ErrCacheMiss = errors.New("cache miss")

// HistoryCache caches recent room history in front of the message store.
// Purely an optimization; every operation is safe to skip on error.
type HistoryCache interface {
	Get(ctx context.Context, roomID string, limit int) ([]domain.Message, error)
	Set(ctx context.Context, roomID string, limit int, messages []domain.Message, ttl time.Duration) error
	Invalidate(ctx context.Context, roomID string) error
	Close() error
}
