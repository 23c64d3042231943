// Package cache defines the response-cache interface used by the request
// layer. The sqlite-backed implementation lives in pkg/store.
package cache

import (
	"context"
)

// Cacher defines the caching interface.
type Cacher interface {
	GetCache(ctx context.Context, key string) ([]byte, bool)
	SetCache(ctx context.Context, key string, val []byte) error
}

// Null is a no-op cache that always misses.
type Null struct{}

func (Null) GetCache(ctx context.Context, key string) ([]byte, bool) { return nil, false }
func (Null) SetCache(ctx context.Context, key string, val []byte) error {
	return nil
}
