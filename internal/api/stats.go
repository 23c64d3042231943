package api

import (
	"net/http"
	"time"

	"deckcast/pkg/tracker"
)

// StatsHandler serves usage counters for the dashboard and for debugging
// quota burn against the upstream APIs.
type StatsHandler struct {
	tracker *tracker.Tracker
	started time.Time
}

// NewStatsHandler creates a new StatsHandler.
func NewStatsHandler(t *tracker.Tracker) *StatsHandler {
	return &StatsHandler{tracker: t, started: time.Now()}
}

// ProviderStatsDTO mirrors tracker.ProviderStats with a derived hit rate.
type ProviderStatsDTO struct {
	CacheHits   int64 `json:"cache_hits"`
	CacheMisses int64 `json:"cache_misses"`
	APISuccess  int64 `json:"api_success"`
	APIFailures int64 `json:"api_errors"`
	HitRate     int64 `json:"hit_rate"`
}

// JobStats summarizes terminal video job outcomes.
type JobStats struct {
	Succeeded int64 `json:"succeeded"`
	Failed    int64 `json:"failed"`
}

// StatsResponse is the /api/stats payload.
type StatsResponse struct {
	UptimeSeconds int64                       `json:"uptime_seconds"`
	Jobs          JobStats                    `json:"jobs"`
	Providers     map[string]ProviderStatsDTO `json:"providers"`
}

func (h *StatsHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	snapshot := h.tracker.Snapshot()

	providers := make(map[string]ProviderStatsDTO, len(snapshot))
	for name, s := range snapshot {
		dto := ProviderStatsDTO{
			CacheHits:   s.CacheHits,
			CacheMisses: s.CacheMisses,
			APISuccess:  s.APISuccess,
			APIFailures: s.APIFailures,
		}
		if total := s.CacheHits + s.CacheMisses; total > 0 {
			dto.HitRate = s.CacheHits * 100 / total
		}
		providers[name] = dto
	}

	succeeded, failed := h.tracker.JobCounts()

	writeJSON(w, http.StatusOK, StatsResponse{
		UptimeSeconds: int64(time.Since(h.started).Seconds()),
		Jobs:          JobStats{Succeeded: succeeded, Failed: failed},
		Providers:     providers,
	})
}
