package store

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"deckcast/pkg/db"
)

func newTestStore(t *testing.T) *SQLiteStore {
	t.Helper()
	d, err := db.Init(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { d.Close() })
	return NewSQLiteStore(d)
}

func TestUpdateVideoStatusUpsert(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	// Insert path: row does not exist yet
	require.NoError(t, s.UpdateVideoStatus(ctx, "pod-1", "https://cdn.example/pod-1.mp4", StatusReady, ""))

	p, err := s.GetPodcast(ctx, "pod-1")
	require.NoError(t, err)
	require.NotNil(t, p)
	assert.Equal(t, StatusReady, p.VideoStatus)
	assert.Equal(t, "https://cdn.example/pod-1.mp4", p.VideoURL)

	// Update path: mark failed
	require.NoError(t, s.UpdateVideoStatus(ctx, "pod-1", "", StatusFailed, "assembly error"))

	p, err = s.GetPodcast(ctx, "pod-1")
	require.NoError(t, err)
	require.NotNil(t, p)
	assert.Equal(t, StatusFailed, p.VideoStatus)
	assert.Equal(t, "assembly error", p.Error)
}

func TestGetPodcastNotFound(t *testing.T) {
	s := newTestStore(t)

	p, err := s.GetPodcast(context.Background(), "missing")
	require.NoError(t, err)
	assert.Nil(t, p)
}

func TestCacheRoundTrip(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	_, hit := s.GetCache(ctx, "k1")
	assert.False(t, hit)

	require.NoError(t, s.SetCache(ctx, "k1", []byte("payload")))

	val, hit := s.GetCache(ctx, "k1")
	assert.True(t, hit)
	assert.Equal(t, []byte("payload"), val)

	// Overwrite
	require.NoError(t, s.SetCache(ctx, "k1", []byte("updated")))
	val, _ = s.GetCache(ctx, "k1")
	assert.Equal(t, []byte("updated"), val)
}
