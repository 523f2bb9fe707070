package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/ternarybob/arbor"
	"github.com/ternarybob/veritas/internal/common"
	"github.com/ternarybob/veritas/internal/interfaces"
	"github.com/ternarybob/veritas/internal/models"
)

// RecommendationHandler handles recommendation ingestion and queries
type RecommendationHandler struct {
	recommendations interfaces.RecommendationStorage
	statuses        interfaces.TickerStatusStorage
	validate        *validator.Validate
	logger          arbor.ILogger
}

// NewRecommendationHandler creates a new recommendation handler
func NewRecommendationHandler(recommendations interfaces.RecommendationStorage, statuses interfaces.TickerStatusStorage, logger arbor.ILogger) *RecommendationHandler {
	return &RecommendationHandler{
		recommendations: recommendations,
		statuses:        statuses,
		validate:        validator.New(),
		logger:          logger,
	}
}

// HandleRecommendations handles POST /api/recommendations (record) and
// GET /api/recommendations?analyst=|ticker= (query)
func (h *RecommendationHandler) HandleRecommendations(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case "GET":
		h.listRecommendations(w, r)
	case "POST":
		h.createRecommendation(w, r)
	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

func (h *RecommendationHandler) listRecommendations(w http.ResponseWriter, r *http.Request) {
	var recs []*models.Recommendation
	var err error

	if analystID := r.URL.Query().Get("analyst"); analystID != "" {
		recs, err = h.recommendations.GetByAnalyst(r.Context(), analystID)
	} else if ticker := r.URL.Query().Get("ticker"); ticker != "" {
		recs, err = h.recommendations.GetByTicker(r.Context(), common.NormalizeTicker(ticker))
	} else {
		WriteError(w, http.StatusBadRequest, "Either analyst or ticker query parameter is required")
		return
	}

	if err != nil {
		h.logger.Error().Err(err).Msg("Failed to query recommendations")
		WriteError(w, http.StatusInternalServerError, "Failed to query recommendations")
		return
	}

	WriteJSON(w, http.StatusOK, map[string]interface{}{
		"count":           len(recs),
		"recommendations": recs,
	})
}

func (h *RecommendationHandler) createRecommendation(w http.ResponseWriter, r *http.Request) {
	var rec models.Recommendation
	if err := json.NewDecoder(r.Body).Decode(&rec); err != nil {
		h.logger.Error().Err(err).Msg("Failed to parse request body")
		WriteError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if err := h.validate.Struct(&rec); err != nil {
		WriteError(w, http.StatusBadRequest, "Validation failed: "+err.Error())
		return
	}

	if rec.ID == "" {
		rec.ID = common.NewRecommendationID()
	}
	rec.Ticker = common.NormalizeTicker(rec.Ticker)
	if rec.PredictionType == "" {
		rec.PredictionType = models.PredictionRating
	}
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now().UTC()
	}

	// Incoming recommendations never carry a resolution
	rec.Outcome = ""
	rec.ActualValue = nil
	rec.ResolvedAt = nil

	if err := h.recommendations.SaveRecommendation(r.Context(), &rec); err != nil {
		h.logger.Error().Err(err).Str("recommendation_id", rec.ID).Msg("Failed to save recommendation")
		WriteError(w, http.StatusInternalServerError, "Failed to save recommendation")
		return
	}

	h.ensureTracked(r.Context(), rec.Ticker)

	h.logger.Info().
		Str("recommendation_id", rec.ID).
		Str("analyst_id", rec.AnalystID).
		Str("ticker", rec.Ticker).
		Str("action", string(rec.Action)).
		Msg("Recommendation recorded")

	WriteJSON(w, http.StatusCreated, &rec)
}

// ensureTracked marks the ticker active so update cycles pick it up. An
// existing record keeps its update timestamps.
func (h *RecommendationHandler) ensureTracked(ctx context.Context, ticker string) {
	status, err := h.statuses.GetStatus(ctx, ticker)
	if err != nil {
		status = &models.TickerStatus{Ticker: ticker}
	}
	if status.Active {
		return
	}

	status.Active = true
	if err := h.statuses.SaveStatus(ctx, status); err != nil {
		h.logger.Warn().Err(err).Str("ticker", ticker).Msg("Failed to mark ticker active")
	}
}
