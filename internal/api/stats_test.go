package api

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"deckcast/pkg/tracker"
)

func TestStatsHandler(t *testing.T) {
	trk := tracker.New()
	trk.TrackCacheHit("unsplash")
	trk.TrackCacheHit("unsplash")
	trk.TrackCacheMiss("unsplash")
	trk.TrackAPISuccess("elevenlabs")
	trk.TrackAPIFailure("elevenlabs")
	trk.TrackJob(true)
	trk.TrackJob(false)
	trk.TrackJob(true)

	h := NewStatsHandler(trk)

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/stats", nil))

	assert.Equal(t, http.StatusOK, rec.Code)

	var out StatsResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))

	assert.Equal(t, int64(2), out.Jobs.Succeeded)
	assert.Equal(t, int64(1), out.Jobs.Failed)

	unsplash := out.Providers["unsplash"]
	assert.Equal(t, int64(2), unsplash.CacheHits)
	assert.Equal(t, int64(1), unsplash.CacheMisses)
	assert.Equal(t, int64(66), unsplash.HitRate)

	eleven := out.Providers["elevenlabs"]
	assert.Equal(t, int64(1), eleven.APISuccess)
	assert.Equal(t, int64(1), eleven.APIFailures)
}
