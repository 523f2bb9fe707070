package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/veritas/internal/common"
	"github.com/ternarybob/veritas/internal/interfaces"
	"github.com/ternarybob/veritas/internal/models"
	"github.com/ternarybob/veritas/internal/services/consensus"
	"github.com/ternarybob/veritas/internal/storage/badger"
)

func newTestStorage(t *testing.T) interfaces.StorageManager {
	t.Helper()

	logger := arbor.NewLogger()
	config := common.NewDefaultConfig()
	config.Storage.Badger.Path = t.TempDir()

	manager, err := badger.NewManager(logger, &config.Storage.Badger)
	if err != nil {
		t.Fatalf("Failed to open test storage: %v", err)
	}
	t.Cleanup(func() { manager.Close() })
	return manager
}

func postJSON(t *testing.T, handler http.HandlerFunc, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()

	data, err := json.Marshal(body)
	if err != nil {
		t.Fatalf("Failed to marshal request: %v", err)
	}
	req := httptest.NewRequest("POST", path, bytes.NewReader(data))
	rec := httptest.NewRecorder()
	handler(rec, req)
	return rec
}

func TestCreateRecommendationValidation(t *testing.T) {
	storage := newTestStorage(t)
	logger := arbor.NewLogger()
	handler := NewRecommendationHandler(storage.RecommendationStorage(), storage.TickerStatusStorage(), logger)

	// Missing action
	resp := postJSON(t, handler.HandleRecommendations, "/api/recommendations", map[string]interface{}{
		"analyst_id":   "an_1",
		"ticker":       "AAPL",
		"confidence":   0.8,
		"horizon_days": 90,
	})
	if resp.Code != http.StatusBadRequest {
		t.Errorf("Expected 400 for missing action, got %d", resp.Code)
	}

	// Confidence out of range
	resp = postJSON(t, handler.HandleRecommendations, "/api/recommendations", map[string]interface{}{
		"analyst_id":   "an_1",
		"ticker":       "AAPL",
		"action":       "BUY",
		"confidence":   1.5,
		"horizon_days": 90,
	})
	if resp.Code != http.StatusBadRequest {
		t.Errorf("Expected 400 for confidence > 1, got %d", resp.Code)
	}

	// Valid recommendation
	resp = postJSON(t, handler.HandleRecommendations, "/api/recommendations", map[string]interface{}{
		"analyst_id":   "an_1",
		"ticker":       "aapl",
		"action":       "BUY",
		"confidence":   0.8,
		"horizon_days": 90,
	})
	if resp.Code != http.StatusCreated {
		t.Fatalf("Expected 201, got %d: %s", resp.Code, resp.Body.String())
	}

	var created models.Recommendation
	if err := json.Unmarshal(resp.Body.Bytes(), &created); err != nil {
		t.Fatalf("Failed to parse response: %v", err)
	}
	if created.ID == "" {
		t.Error("Expected generated recommendation ID")
	}
	if created.Ticker != "AAPL" {
		t.Errorf("Expected normalized ticker AAPL, got %s", created.Ticker)
	}
	if created.PredictionType != models.PredictionRating {
		t.Errorf("Expected default prediction type rating, got %s", created.PredictionType)
	}

	// Ticker becomes tracked
	status, err := storage.TickerStatusStorage().GetStatus(context.Background(), "AAPL")
	if err != nil {
		t.Fatalf("Expected ticker status created: %v", err)
	}
	if !status.Active {
		t.Error("Expected ticker marked active")
	}
}

func TestConsensusEndpoint(t *testing.T) {
	storage := newTestStorage(t)
	logger := arbor.NewLogger()

	recHandler := NewRecommendationHandler(storage.RecommendationStorage(), storage.TickerStatusStorage(), logger)
	consensusService := consensus.NewService(storage, logger)
	conHandler := NewConsensusHandler(consensusService, storage.ConsensusStorage(), logger)

	for _, body := range []map[string]interface{}{
		{"analyst_id": "an_1", "ticker": "MSFT", "action": "BUY", "confidence": 0.9, "horizon_days": 90},
		{"analyst_id": "an_2", "ticker": "MSFT", "action": "SELL", "confidence": 0.2, "horizon_days": 30},
	} {
		if resp := postJSON(t, recHandler.HandleRecommendations, "/api/recommendations", body); resp.Code != http.StatusCreated {
			t.Fatalf("Failed to seed recommendation: %d %s", resp.Code, resp.Body.String())
		}
	}

	httpReq := httptest.NewRequest("GET", "/api/consensus?ticker=MSFT", nil)
	rec := httptest.NewRecorder()
	conHandler.GetConsensusHandler(rec, httpReq)

	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var result models.ConsensusResult
	if err := json.Unmarshal(rec.Body.Bytes(), &result); err != nil {
		t.Fatalf("Failed to parse consensus: %v", err)
	}
	if result.Action != models.ActionBuy {
		t.Errorf("Expected BUY consensus from the higher-confidence rating, got %s", result.Action)
	}
	if len(result.Contributors) != 2 {
		t.Errorf("Expected 2 contributors, got %d", len(result.Contributors))
	}

	// Missing ticker parameter
	rec = httptest.NewRecorder()
	conHandler.GetConsensusHandler(rec, httptest.NewRequest("GET", "/api/consensus", nil))
	if rec.Code != http.StatusBadRequest {
		t.Errorf("Expected 400 for missing ticker, got %d", rec.Code)
	}
}
