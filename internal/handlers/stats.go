// internal/handlers/stats.go
package handlers

import (
	"log/slog"
	"net/http"
	"time"

	redis_a "github.com/anvikram/stocktrack-be/internal/adapters/redis_adapter"
	"github.com/anvikram/stocktrack-be/internal/core/ports"
)

// StatsHandler serves the inventory dashboard snapshot
type StatsHandler struct {
	stats  ports.StatsRepository
	cache  ports.CacheRepository
	logger *slog.Logger
}

// NewStatsHandler creates a new stats handler
func NewStatsHandler(stats ports.StatsRepository, cache ports.CacheRepository, logger *slog.Logger) *StatsHandler {
	return &StatsHandler{
		stats:  stats,
		cache:  cache,
		logger: logger.With(slog.String("handler", "stats")),
	}
}

// GetStats handles GET /api/v1/stats. The snapshot is cached briefly; any
// ledger write invalidates it through the cache manager.
func (h *StatsHandler) GetStats(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	cacheKey := redis_a.BuildKey(redis_a.PrefixStats, "summary")
	var summary ports.StatsSummary

	err := h.cache.GetOrSet(ctx, cacheKey, &summary, func() (interface{}, error) {
		return h.stats.Summary(ctx)
	}, 5*time.Minute)

	if err != nil {
		h.logger.ErrorContext(ctx, "failed to load stats",
			slog.String("error", err.Error()))
		respondError(h.logger, w, http.StatusInternalServerError, "Failed to load stats")
		return
	}

	respondJSON(h.logger, w, http.StatusOK, summary)
}
