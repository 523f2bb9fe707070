package handlers

import (
	"net/http"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/veritas/internal/interfaces"
)

// ConsensusHandler serves weighted consensus for a ticker
type ConsensusHandler struct {
	consensus interfaces.ConsensusService
	cache     interfaces.ConsensusStorage
	logger    arbor.ILogger
}

// NewConsensusHandler creates a new consensus handler
func NewConsensusHandler(consensus interfaces.ConsensusService, cache interfaces.ConsensusStorage, logger arbor.ILogger) *ConsensusHandler {
	return &ConsensusHandler{
		consensus: consensus,
		cache:     cache,
		logger:    logger,
	}
}

// GetConsensusHandler handles GET /api/consensus?ticker=X. By default the
// consensus is recomputed from current recommendations; cached=true returns
// the last stored snapshot instead.
func (h *ConsensusHandler) GetConsensusHandler(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, "GET") {
		return
	}

	ticker := r.URL.Query().Get("ticker")
	if ticker == "" {
		WriteError(w, http.StatusBadRequest, "Missing ticker parameter")
		return
	}

	if r.URL.Query().Get("cached") == "true" {
		result, err := h.cache.GetConsensus(r.Context(), ticker)
		if err != nil {
			WriteError(w, http.StatusNotFound, "No cached consensus for ticker")
			return
		}
		WriteJSON(w, http.StatusOK, result)
		return
	}

	result, err := h.consensus.Compute(r.Context(), ticker)
	if err != nil {
		h.logger.Error().Err(err).Str("ticker", ticker).Msg("Failed to compute consensus")
		WriteError(w, http.StatusInternalServerError, "Failed to compute consensus")
		return
	}

	WriteJSON(w, http.StatusOK, result)
}
