package database

import (
	"context"
	"time"
)

// ResponseStore persists HTTP responses for the response cache.
type ResponseStore interface {
	// Get returns the unexpired entry for key, or nil when there is none.
	Get(ctx context.Context, key string, now time.Time) (*CachedResponse, error)
	Put(ctx context.Context, entry *CachedResponse) error
}
