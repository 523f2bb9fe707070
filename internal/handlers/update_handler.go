package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/veritas/internal/interfaces"
	"github.com/ternarybob/veritas/internal/models"
)

// UpdateHandler exposes the orchestrator's update cycles over HTTP
type UpdateHandler struct {
	orchestrator interfaces.OrchestratorService
	statuses     interfaces.TickerStatusStorage
	logger       arbor.ILogger
}

// NewUpdateHandler creates a new update handler
func NewUpdateHandler(orchestrator interfaces.OrchestratorService, statuses interfaces.TickerStatusStorage, logger arbor.ILogger) *UpdateHandler {
	return &UpdateHandler{
		orchestrator: orchestrator,
		statuses:     statuses,
		logger:       logger,
	}
}

type updateRequest struct {
	Type        string   `json:"type"` // full, smart, ticker
	Ticker      string   `json:"ticker"`
	Tickers     []string `json:"tickers"`
	MaxTickers  int      `json:"max_tickers"`
	MaxAgeHours int      `json:"max_age_hours"`
}

// HandleUpdate handles POST /api/update (trigger a cycle) and
// GET /api/update?action=status|tickers (ticker bookkeeping, no mutation).
func (h *UpdateHandler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case "GET":
		h.getStatus(w, r)
	case "POST":
		h.triggerUpdate(w, r)
	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

func (h *UpdateHandler) getStatus(w http.ResponseWriter, r *http.Request) {
	statuses, err := h.statuses.GetAllStatuses(r.Context())
	if err != nil {
		h.logger.Error().Err(err).Msg("Failed to load ticker statuses")
		WriteError(w, http.StatusInternalServerError, "Failed to load ticker statuses")
		return
	}

	switch r.URL.Query().Get("action") {
	case "", "status":
		active, stale := 0, 0
		for _, status := range statuses {
			if !status.Active {
				continue
			}
			active++
			if h.orchestrator.ShouldUpdate(r.Context(), status.Ticker, 0) {
				stale++
			}
		}
		WriteJSON(w, http.StatusOK, map[string]interface{}{
			"success":      true,
			"active_count": active,
			"stale_count":  stale,
		})

	case "tickers":
		WriteJSON(w, http.StatusOK, map[string]interface{}{
			"success": true,
			"count":   len(statuses),
			"tickers": statuses,
		})

	default:
		WriteError(w, http.StatusBadRequest, "Unknown action: "+r.URL.Query().Get("action"))
	}
}

func (h *UpdateHandler) triggerUpdate(w http.ResponseWriter, r *http.Request) {
	var req updateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.Error().Err(err).Msg("Failed to parse request body")
		WriteError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	opts := &models.UpdateOptions{
		MaxTickers:  req.MaxTickers,
		MaxAgeHours: req.MaxAgeHours,
	}

	switch req.Type {
	case "full":
		result, err := h.orchestrator.UpdateAll(r.Context(), opts)
		if err != nil {
			h.logger.Error().Err(err).Msg("Full update failed")
			WriteError(w, http.StatusInternalServerError, "Full update failed")
			return
		}
		h.writeResult(w, "full", result)

	case "smart":
		result, err := h.orchestrator.UpdateSmart(r.Context(), opts)
		if err != nil {
			h.logger.Error().Err(err).Msg("Smart update failed")
			WriteError(w, http.StatusInternalServerError, "Smart update failed")
			return
		}
		h.writeResult(w, "smart", result)

	case "ticker":
		if req.Ticker == "" && len(req.Tickers) == 0 {
			WriteError(w, http.StatusBadRequest, "Ticker update requires ticker or tickers")
			return
		}
		tickers := req.Tickers
		if req.Ticker != "" {
			tickers = append([]string{req.Ticker}, tickers...)
		}
		h.writeResult(w, "ticker", h.orchestrator.UpdateBatch(r.Context(), tickers))

	default:
		WriteError(w, http.StatusBadRequest, "Unknown update type: "+req.Type)
	}
}

func (h *UpdateHandler) writeResult(w http.ResponseWriter, updateType string, result *models.BatchUpdateResult) {
	WriteJSON(w, http.StatusOK, map[string]interface{}{
		"success": result.ErrorCount == 0,
		"type":    updateType,
		"result":  result,
		"message": fmt.Sprintf("%d of %d tickers updated", result.SuccessCount, result.TotalProcessed),
	})
}
