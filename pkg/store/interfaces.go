package store

import (
	"context"
	"time"
)

// Podcast is the persisted status record for one podcast video job.
type Podcast struct {
	ID          string
	Title       string
	VideoURL    string
	VideoStatus string // "ready" or "failed"
	Error       string
	UpdatedAt   time.Time
}

// Video job status values.
const (
	StatusReady  = "ready"
	StatusFailed = "failed"
)

// PodcastStore handles podcast job-status persistence.
type PodcastStore interface {
	GetPodcast(ctx context.Context, id string) (*Podcast, error)
	UpdateVideoStatus(ctx context.Context, id, videoURL, status, errMsg string) error
}

// CacheStore handles generic key-value caching.
type CacheStore interface {
	GetCache(ctx context.Context, key string) ([]byte, bool)
	SetCache(ctx context.Context, key string, val []byte) error
}

// Store composes all sub-interfaces for full store access.
// Consumers should depend on specific sub-interfaces when possible.
type Store interface {
	PodcastStore
	CacheStore

	// Close closes the store connection.
	Close() error
}
