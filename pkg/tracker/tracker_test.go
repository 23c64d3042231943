package tracker

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTrackerCounters(t *testing.T) {
	tr := New()

	tr.TrackAPISuccess("unsplash")
	tr.TrackAPISuccess("unsplash")
	tr.TrackAPIFailure("supabase")
	tr.TrackCacheHit("unsplash")
	tr.TrackCacheMiss("unsplash")

	snap := tr.Snapshot()
	assert.Equal(t, int64(2), snap["unsplash"].APISuccess)
	assert.Equal(t, int64(1), snap["unsplash"].CacheHits)
	assert.Equal(t, int64(1), snap["unsplash"].CacheMisses)
	assert.Equal(t, int64(1), snap["supabase"].APIFailures)
}

func TestTrackerJobCounts(t *testing.T) {
	tr := New()
	tr.TrackJob(true)
	tr.TrackJob(true)
	tr.TrackJob(false)

	ok, failed := tr.JobCounts()
	assert.Equal(t, int64(2), ok)
	assert.Equal(t, int64(1), failed)
}

func TestTrackerConcurrent(t *testing.T) {
	tr := New()
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			tr.TrackAPISuccess("elevenlabs")
		}()
	}
	wg.Wait()

	assert.Equal(t, int64(50), tr.Snapshot()["elevenlabs"].APISuccess)
}
