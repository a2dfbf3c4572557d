package cache

import (
	"context"
	"errors"
	"time"
)

var ErrInvalidTTL = errors.New("cache: ttl must be > 0")

// Cacher is the snapshot cache in front of the read API. Misses are
// not errors; a failed cache never fails a request.
type Cacher interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, val string, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	Ping(ctx context.Context) error
	Close() error
}

// SnapshotKey is the cache key for one auction's read model.
func SnapshotKey(auctionID string) string {
	return "auction:snapshot:" + auctionID
}
