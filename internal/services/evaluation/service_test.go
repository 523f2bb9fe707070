package evaluation

import (
	"context"
	"testing"
	"time"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/veritas/internal/common"
	"github.com/ternarybob/veritas/internal/eodhd"
	"github.com/ternarybob/veritas/internal/interfaces"
	"github.com/ternarybob/veritas/internal/models"
	"github.com/ternarybob/veritas/internal/storage/badger"
)

// fakeMarket serves canned prices: priceFor decides the close for any
// requested date.
type fakeMarket struct {
	priceFor func(date time.Time) float64
	eps      float64
	epsDate  string
}

func (f *fakeMarket) GetEOD(ctx context.Context, ticker string, from, to time.Time) ([]eodhd.EODBar, error) {
	return []eodhd.EODBar{{Date: to, Close: f.priceFor(to)}}, nil
}

func (f *fakeMarket) GetRealTimeQuote(ctx context.Context, ticker string) (*eodhd.RealTimeQuote, error) {
	return &eodhd.RealTimeQuote{Close: f.priceFor(time.Now())}, nil
}

func (f *fakeMarket) GetNews(ctx context.Context, ticker string, from, to time.Time, limit int) ([]eodhd.NewsArticle, error) {
	return nil, nil
}

func (f *fakeMarket) GetFundamentals(ctx context.Context, ticker string) (*eodhd.Fundamentals, error) {
	return &eodhd.Fundamentals{
		Earnings: &eodhd.Earnings{
			History: []eodhd.EarningsHistoryEntry{
				{ReportDate: f.epsDate, EPSActual: f.eps},
			},
		},
	}, nil
}

func newTestService(t *testing.T, market interfaces.MarketDataProvider) (*Service, interfaces.StorageManager) {
	t.Helper()

	logger := arbor.NewLogger()
	config := common.NewDefaultConfig()
	config.Storage.Badger.Path = t.TempDir()

	storage, err := badger.NewManager(logger, &config.Storage.Badger)
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { storage.Close() })

	return NewService(storage, market, config, logger), storage
}

func TestRunSweepResolvesDueRecommendations(t *testing.T) {
	created := time.Now().UTC().AddDate(0, 0, -40)
	// Price rallies from 100 at creation to 120 after the horizon
	market := &fakeMarket{
		priceFor: func(date time.Time) float64 {
			if date.Before(created.AddDate(0, 0, 5)) {
				return 100
			}
			return 120
		},
	}

	svc, storage := newTestService(t, market)
	ctx := context.Background()

	analyst := models.NewAnalyst("an_sweep", "Sweep Tester", "Test Firm")
	if err := storage.AnalystStorage().SaveAnalyst(ctx, analyst); err != nil {
		t.Fatal(err)
	}

	rec := &models.Recommendation{
		ID:          "rec_buy",
		AnalystID:   "an_sweep",
		Ticker:      "AAPL",
		Action:      models.ActionBuy,
		Confidence:  0.9,
		HorizonDays: 30,
		CreatedAt:   created,
	}
	if err := storage.RecommendationStorage().SaveRecommendation(ctx, rec); err != nil {
		t.Fatal(err)
	}

	// A recommendation still inside its horizon must not be touched
	pending := &models.Recommendation{
		ID:          "rec_pending",
		AnalystID:   "an_sweep",
		Ticker:      "AAPL",
		Action:      models.ActionSell,
		Confidence:  0.5,
		HorizonDays: 90,
		CreatedAt:   time.Now().UTC().AddDate(0, 0, -1),
	}
	if err := storage.RecommendationStorage().SaveRecommendation(ctx, pending); err != nil {
		t.Fatal(err)
	}

	summary, err := svc.RunSweep(ctx)
	if err != nil {
		t.Fatalf("RunSweep failed: %v", err)
	}
	if summary.EvaluatedCount != 1 {
		t.Errorf("Expected 1 evaluated, got %d", summary.EvaluatedCount)
	}
	if len(summary.Errors) != 0 {
		t.Errorf("Expected no errors, got %v", summary.Errors)
	}

	resolved, err := storage.RecommendationStorage().GetRecommendation(ctx, "rec_buy")
	if err != nil {
		t.Fatal(err)
	}
	if resolved.Outcome != models.OutcomeCorrect {
		t.Errorf("Expected CORRECT for 20%% rally on BUY, got %s", resolved.Outcome)
	}

	updated, err := storage.AnalystStorage().GetAnalyst(ctx, "an_sweep")
	if err != nil {
		t.Fatal(err)
	}
	if updated.TrackRecord.TotalPredictions != 1 {
		t.Errorf("Expected 1 total prediction, got %d", updated.TrackRecord.TotalPredictions)
	}
	if updated.TrackRecord.AccuratePredictions != 1 {
		t.Errorf("Expected 1 accurate prediction, got %d", updated.TrackRecord.AccuratePredictions)
	}
	if updated.TrackRecord.AccuratePredictions > updated.TrackRecord.TotalPredictions {
		t.Error("Accurate predictions must never exceed total")
	}
	if updated.HistoricalPerformance.Rating != 1.0 {
		t.Errorf("Expected rating category accuracy 1.0, got %f", updated.HistoricalPerformance.Rating)
	}
	if updated.CredibilityScore != 1.0 {
		t.Errorf("Expected score 1.0 after a single correct resolution, got %f", updated.CredibilityScore)
	}
	if updated.Tier != models.TierTopTier {
		t.Errorf("Expected TOP_TIER, got %s", updated.Tier)
	}

	// Idempotence: a second sweep must not double-count
	summary, err = svc.RunSweep(ctx)
	if err != nil {
		t.Fatalf("Second RunSweep failed: %v", err)
	}
	if summary.EvaluatedCount != 0 {
		t.Errorf("Expected 0 evaluated on re-run, got %d", summary.EvaluatedCount)
	}

	updated, err = storage.AnalystStorage().GetAnalyst(ctx, "an_sweep")
	if err != nil {
		t.Fatal(err)
	}
	if updated.TrackRecord.TotalPredictions != 1 {
		t.Errorf("Re-run changed total predictions to %d", updated.TrackRecord.TotalPredictions)
	}
}

func TestEvaluateTickerScopesToOneTicker(t *testing.T) {
	created := time.Now().UTC().AddDate(0, 0, -40)
	market := &fakeMarket{
		priceFor: func(date time.Time) float64 { return 100 },
	}

	svc, storage := newTestService(t, market)
	ctx := context.Background()

	for _, rec := range []*models.Recommendation{
		{ID: "rec_aapl", AnalystID: "an_t", Ticker: "AAPL", Action: models.ActionHold, Confidence: 0.7, HorizonDays: 30, CreatedAt: created},
		{ID: "rec_msft", AnalystID: "an_t", Ticker: "MSFT", Action: models.ActionHold, Confidence: 0.7, HorizonDays: 30, CreatedAt: created},
	} {
		if err := storage.RecommendationStorage().SaveRecommendation(ctx, rec); err != nil {
			t.Fatal(err)
		}
	}

	summary, err := svc.EvaluateTicker(ctx, "aapl")
	if err != nil {
		t.Fatalf("EvaluateTicker failed: %v", err)
	}
	if summary.EvaluatedCount != 1 {
		t.Errorf("Expected 1 evaluated for AAPL, got %d", summary.EvaluatedCount)
	}

	other, err := storage.RecommendationStorage().GetRecommendation(ctx, "rec_msft")
	if err != nil {
		t.Fatal(err)
	}
	if other.Resolved() {
		t.Error("Expected the MSFT recommendation to stay unresolved")
	}
}

func TestEvaluateInitializesUnknownAnalyst(t *testing.T) {
	created := time.Now().UTC().AddDate(0, 0, -10)
	market := &fakeMarket{
		priceFor: func(date time.Time) float64 { return 100 },
	}

	svc, storage := newTestService(t, market)
	ctx := context.Background()

	// No analyst record exists for this ID
	rec := &models.Recommendation{
		ID:          "rec_orphan",
		AnalystID:   "an_ghost",
		Ticker:      "MSFT",
		Action:      models.ActionHold,
		Confidence:  0.6,
		HorizonDays: 7,
		CreatedAt:   created,
	}
	if err := storage.RecommendationStorage().SaveRecommendation(ctx, rec); err != nil {
		t.Fatal(err)
	}

	if _, err := svc.EvaluateRecommendation(ctx, "rec_orphan"); err != nil {
		t.Fatalf("EvaluateRecommendation failed: %v", err)
	}

	ghost, err := storage.AnalystStorage().GetAnalyst(ctx, "an_ghost")
	if err != nil {
		t.Fatalf("Expected analyst to be initialized: %v", err)
	}
	if ghost.TrackRecord.TotalPredictions != 1 {
		t.Errorf("Expected 1 prediction on initialized analyst, got %d", ghost.TrackRecord.TotalPredictions)
	}
	// Flat price on a HOLD is correct
	if ghost.TrackRecord.AccuratePredictions != 1 {
		t.Errorf("Expected HOLD on flat price to be correct, got %d accurate", ghost.TrackRecord.AccuratePredictions)
	}
}

func TestEvaluateEPSRecommendation(t *testing.T) {
	created := time.Now().UTC().AddDate(0, 0, -35)
	predicted := 2.50
	market := &fakeMarket{
		priceFor: func(date time.Time) float64 { return 100 },
		eps:      2.55,
		epsDate:  time.Now().UTC().AddDate(0, 0, -10).Format("2006-01-02"),
	}

	svc, storage := newTestService(t, market)
	ctx := context.Background()

	rec := &models.Recommendation{
		ID:             "rec_eps",
		AnalystID:      "an_eps",
		Ticker:         "NVDA",
		Action:         models.ActionBuy,
		Confidence:     0.8,
		HorizonDays:    30,
		PredictionType: models.PredictionEPS,
		PredictedEPS:   &predicted,
		CreatedAt:      created,
	}
	if err := storage.RecommendationStorage().SaveRecommendation(ctx, rec); err != nil {
		t.Fatal(err)
	}

	resolved, err := svc.EvaluateRecommendation(ctx, "rec_eps")
	if err != nil {
		t.Fatalf("EvaluateRecommendation failed: %v", err)
	}
	if resolved.Outcome != models.OutcomeCorrect {
		t.Errorf("Expected CORRECT for EPS within tolerance, got %s", resolved.Outcome)
	}
	if resolved.ActualValue == nil || *resolved.ActualValue != 2.55 {
		t.Error("Expected actual EPS to be recorded")
	}

	analyst, err := storage.AnalystStorage().GetAnalyst(ctx, "an_eps")
	if err != nil {
		t.Fatal(err)
	}
	if analyst.HistoricalPerformance.EPS != 1.0 {
		t.Errorf("Expected EPS category accuracy 1.0, got %f", analyst.HistoricalPerformance.EPS)
	}
	if analyst.CategoryCounts.EPS != 1 {
		t.Errorf("Expected EPS category count 1, got %d", analyst.CategoryCounts.EPS)
	}
}
