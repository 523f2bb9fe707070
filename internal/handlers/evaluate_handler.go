package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/veritas/internal/interfaces"
)

// EvaluateHandler triggers outcome evaluation
type EvaluateHandler struct {
	evaluation interfaces.EvaluationService
	logger     arbor.ILogger
}

// NewEvaluateHandler creates a new evaluation handler
func NewEvaluateHandler(evaluation interfaces.EvaluationService, logger arbor.ILogger) *EvaluateHandler {
	return &EvaluateHandler{
		evaluation: evaluation,
		logger:     logger,
	}
}

// RunEvaluationHandler handles POST /api/evaluate. With an empty body (or no
// id) it runs a full sweep over due recommendations; with {"id": "..."} it
// evaluates that single recommendation.
func (h *EvaluateHandler) RunEvaluationHandler(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, "POST") {
		return
	}

	var req struct {
		ID string `json:"id"`
	}
	if r.Body != nil {
		// Body is optional; decode errors on an empty body are ignored
		_ = json.NewDecoder(r.Body).Decode(&req)
	}

	if req.ID != "" {
		rec, err := h.evaluation.EvaluateRecommendation(r.Context(), req.ID)
		if err != nil {
			h.logger.Error().Err(err).Str("recommendation_id", req.ID).Msg("Evaluation failed")
			WriteError(w, http.StatusInternalServerError, "Evaluation failed: "+err.Error())
			return
		}
		WriteJSON(w, http.StatusOK, rec)
		return
	}

	summary, err := h.evaluation.RunSweep(r.Context())
	if err != nil {
		h.logger.Error().Err(err).Msg("Evaluation sweep failed")
		WriteError(w, http.StatusInternalServerError, "Evaluation sweep failed")
		return
	}

	WriteJSON(w, http.StatusOK, summary)
}
