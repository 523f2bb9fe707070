package handlers

import (
	"net/http"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/veritas/internal/interfaces"
)

// StatusHandler reports application-level counters
type StatusHandler struct {
	storage   interfaces.StorageManager
	scheduler interfaces.SchedulerService
	logger    arbor.ILogger
}

// NewStatusHandler creates a new status handler
func NewStatusHandler(storage interfaces.StorageManager, scheduler interfaces.SchedulerService, logger arbor.ILogger) *StatusHandler {
	return &StatusHandler{
		storage:   storage,
		scheduler: scheduler,
		logger:    logger,
	}
}

// GetStatusHandler handles GET /api/status
func (h *StatusHandler) GetStatusHandler(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, "GET") {
		return
	}

	ctx := r.Context()

	analystCount, err := h.storage.AnalystStorage().CountAnalysts(ctx)
	if err != nil {
		h.logger.Warn().Err(err).Msg("Failed to count analysts")
	}
	recCount, err := h.storage.RecommendationStorage().CountRecommendations(ctx)
	if err != nil {
		h.logger.Warn().Err(err).Msg("Failed to count recommendations")
	}

	activeCount := 0
	if statuses, err := h.storage.TickerStatusStorage().GetActiveTickers(ctx); err == nil {
		activeCount = len(statuses)
	}

	schedulerRunning := false
	if h.scheduler != nil {
		schedulerRunning = h.scheduler.IsRunning()
	}

	runMarkers := map[string]string{}
	if pairs, err := h.storage.KeyValueStorage().ListByPrefix(ctx, "run:"); err == nil {
		for _, pair := range pairs {
			runMarkers[pair.Key] = pair.Value
		}
	}

	WriteJSON(w, http.StatusOK, map[string]interface{}{
		"analysts":          analystCount,
		"recommendations":   recCount,
		"active_tickers":    activeCount,
		"scheduler_running": schedulerRunning,
		"run_markers":       runMarkers,
	})
}
