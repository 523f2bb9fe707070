package handlers

import (
	"encoding/json"
	"net/http"
	"sort"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/ternarybob/arbor"
	"github.com/ternarybob/veritas/internal/common"
	"github.com/ternarybob/veritas/internal/interfaces"
	"github.com/ternarybob/veritas/internal/models"
)

// AnalystHandler handles analyst management HTTP requests
type AnalystHandler struct {
	storage  interfaces.AnalystStorage
	validate *validator.Validate
	logger   arbor.ILogger
}

// NewAnalystHandler creates a new analyst handler
func NewAnalystHandler(storage interfaces.AnalystStorage, logger arbor.ILogger) *AnalystHandler {
	return &AnalystHandler{
		storage:  storage,
		validate: validator.New(),
		logger:   logger,
	}
}

type createAnalystRequest struct {
	ID               string   `json:"id"`
	Name             string   `json:"name" validate:"required"`
	Firm             string   `json:"firm"`
	Specializations  []string `json:"specializations"`
	WeightMultiplier float64  `json:"weight_multiplier" validate:"omitempty,gt=0"`
}

// HandleAnalysts handles GET /api/analysts (list) and POST /api/analysts (create)
func (h *AnalystHandler) HandleAnalysts(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case "GET":
		h.listAnalysts(w, r)
	case "POST":
		h.createAnalyst(w, r)
	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

func (h *AnalystHandler) listAnalysts(w http.ResponseWriter, r *http.Request) {
	analysts, err := h.storage.GetAllAnalysts(r.Context())
	if err != nil {
		h.logger.Error().Err(err).Msg("Failed to list analysts")
		WriteError(w, http.StatusInternalServerError, "Failed to list analysts")
		return
	}

	// Highest credibility first
	sort.Slice(analysts, func(i, j int) bool {
		return analysts[i].CredibilityScore > analysts[j].CredibilityScore
	})

	WriteJSON(w, http.StatusOK, map[string]interface{}{
		"count":    len(analysts),
		"analysts": analysts,
	})
}

func (h *AnalystHandler) createAnalyst(w http.ResponseWriter, r *http.Request) {
	var req createAnalystRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.Error().Err(err).Msg("Failed to parse request body")
		WriteError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if err := h.validate.Struct(&req); err != nil {
		WriteError(w, http.StatusBadRequest, "Validation failed: "+err.Error())
		return
	}

	if req.ID == "" {
		req.ID = common.NewAnalystID()
	}

	analyst := models.NewAnalyst(req.ID, req.Name, req.Firm)
	analyst.Specializations = req.Specializations
	if req.WeightMultiplier > 0 {
		analyst.WeightMultiplier = req.WeightMultiplier
	}

	if err := h.storage.SaveAnalyst(r.Context(), analyst); err != nil {
		h.logger.Error().Err(err).Str("analyst_id", analyst.ID).Msg("Failed to save analyst")
		WriteError(w, http.StatusInternalServerError, "Failed to save analyst")
		return
	}

	h.logger.Info().Str("analyst_id", analyst.ID).Str("name", analyst.Name).Msg("Analyst created")
	WriteJSON(w, http.StatusCreated, analyst)
}

// HandleAnalystByID handles GET and DELETE /api/analysts/{id}
func (h *AnalystHandler) HandleAnalystByID(w http.ResponseWriter, r *http.Request) {
	id := strings.TrimPrefix(r.URL.Path, "/api/analysts/")
	if id == "" {
		WriteError(w, http.StatusBadRequest, "Missing analyst ID")
		return
	}

	switch r.Method {
	case "GET":
		analyst, err := h.storage.GetAnalyst(r.Context(), id)
		if err != nil {
			WriteError(w, http.StatusNotFound, "Analyst not found")
			return
		}
		display := analyst.DisplayScore()
		WriteJSON(w, http.StatusOK, map[string]interface{}{
			"analyst":       analyst,
			"display_score": display,
			"rank":          models.DisplayRank(display),
		})

	case "DELETE":
		if err := h.storage.DeleteAnalyst(r.Context(), id); err != nil {
			h.logger.Error().Err(err).Str("analyst_id", id).Msg("Failed to delete analyst")
			WriteError(w, http.StatusInternalServerError, "Failed to delete analyst")
			return
		}
		WriteSuccess(w, "Analyst deleted")

	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}
