package evaluation

import (
	"context"
	"fmt"
	"time"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/veritas/internal/common"
	"github.com/ternarybob/veritas/internal/interfaces"
	"github.com/ternarybob/veritas/internal/models"
	"github.com/ternarybob/veritas/internal/services/credibility"
)

// Service runs the evaluation cycle: resolving due recommendations into
// outcomes and updating the owning analysts' scores.
type Service struct {
	analysts        interfaces.AnalystStorage
	recommendations interfaces.RecommendationStorage
	kv              interfaces.KeyValueStorage
	market          interfaces.MarketDataProvider
	config          *common.EvaluationConfig
	weights         credibility.Weights
	thresholds      credibility.Thresholds
	logger          arbor.ILogger
}

// NewService creates the evaluation service.
func NewService(storage interfaces.StorageManager, market interfaces.MarketDataProvider, config *common.Config, logger arbor.ILogger) *Service {
	return &Service{
		analysts:        storage.AnalystStorage(),
		recommendations: storage.RecommendationStorage(),
		kv:              storage.KeyValueStorage(),
		market:          market,
		config:          &config.Evaluation,
		weights:         credibility.WeightsFromConfig(&config.Credibility),
		thresholds:      credibility.ThresholdsFromConfig(&config.Credibility),
		logger:          logger,
	}
}

// RunSweep evaluates every unresolved recommendation whose horizon has
// elapsed. Each recommendation is evaluated independently; one failure does
// not abort the sweep.
func (s *Service) RunSweep(ctx context.Context) (*models.EvaluationSummary, error) {
	now := time.Now().UTC()

	unresolved, err := s.recommendations.GetUnresolved(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to scan unresolved recommendations: %w", err)
	}

	summary := s.evaluateDue(ctx, unresolved, now)

	s.logger.Info().
		Int("evaluated", summary.EvaluatedCount).
		Int("analysts", len(summary.UpdatedAnalysts)).
		Int("errors", len(summary.Errors)).
		Msg("Evaluation sweep complete")

	// Last-run marker is operational metadata only
	if err := s.kv.Set(ctx, "run:last_sweep_at", now.Format(time.RFC3339), "Last evaluation sweep"); err != nil {
		s.logger.Warn().Err(err).Msg("Failed to record sweep marker")
	}

	return summary, nil
}

// EvaluateTicker evaluates only the given ticker's unresolved, due
// recommendations. The per-ticker refresh path uses this after a successful
// financials update so outcomes resolve as soon as fresh data lands.
func (s *Service) EvaluateTicker(ctx context.Context, ticker string) (*models.EvaluationSummary, error) {
	now := time.Now().UTC()

	recs, err := s.recommendations.GetByTicker(ctx, common.NormalizeTicker(ticker))
	if err != nil {
		return nil, fmt.Errorf("failed to load recommendations for %s: %w", ticker, err)
	}

	var unresolved []*models.Recommendation
	for _, rec := range recs {
		if !rec.Resolved() {
			unresolved = append(unresolved, rec)
		}
	}

	return s.evaluateDue(ctx, unresolved, now), nil
}

// evaluateDue resolves each due recommendation independently; one failure
// does not abort the rest.
func (s *Service) evaluateDue(ctx context.Context, unresolved []*models.Recommendation, now time.Time) *models.EvaluationSummary {
	summary := &models.EvaluationSummary{AsOf: now}
	updated := make(map[string]bool)

	for _, rec := range unresolved {
		if !rec.Due(now) {
			continue
		}

		if _, err := s.EvaluateRecommendation(ctx, rec.ID); err != nil {
			s.logger.Warn().Err(err).Str("recommendation", rec.ID).Msg("Evaluation failed")
			summary.Errors = append(summary.Errors, fmt.Sprintf("%s: %v", rec.ID, err))
			continue
		}

		summary.EvaluatedCount++
		updated[rec.AnalystID] = true
	}

	for id := range updated {
		summary.UpdatedAnalysts = append(summary.UpdatedAnalysts, id)
	}

	return summary
}

// EvaluateRecommendation resolves one recommendation by ID and applies the
// outcome to the owning analyst. Already-resolved recommendations are
// returned unchanged, so repeated calls never double-count.
func (s *Service) EvaluateRecommendation(ctx context.Context, id string) (*models.Recommendation, error) {
	rec, err := s.recommendations.GetRecommendation(ctx, id)
	if err != nil {
		return nil, err
	}
	if rec.Resolved() {
		return rec, nil
	}

	now := time.Now().UTC()
	if !rec.Due(now) {
		return nil, fmt.Errorf("recommendation %s not due until %s", id, rec.DueAt().Format("2006-01-02"))
	}

	outcome, actualValue, err := s.resolveActual(ctx, rec)
	if err != nil {
		return nil, err
	}

	if err := s.recommendations.MarkResolved(ctx, id, outcome, actualValue); err != nil {
		return nil, err
	}

	if err := s.applyToAnalyst(ctx, rec, outcome); err != nil {
		return nil, err
	}

	rec.Outcome = outcome
	rec.ActualValue = actualValue
	return rec, nil
}

// resolveActual fetches the actual value for the recommendation's prediction
// type and applies the matching outcome rule.
func (s *Service) resolveActual(ctx context.Context, rec *models.Recommendation) (models.Outcome, *float64, error) {
	dueAt := rec.DueAt()

	switch predictionTypeOf(rec) {
	case models.PredictionEPS:
		if rec.PredictedEPS == nil {
			return models.OutcomeNeutral, nil, nil
		}
		fundamentals, err := s.market.GetFundamentals(ctx, rec.Ticker)
		if err != nil {
			return "", nil, fmt.Errorf("failed to fetch fundamentals for %s: %w", rec.Ticker, err)
		}
		if fundamentals.Earnings == nil {
			return models.OutcomeNeutral, nil, nil
		}
		actual, ok := fundamentals.Earnings.LatestActualEPS(dueAt)
		if !ok {
			return models.OutcomeNeutral, nil, nil
		}
		return EvaluateEPS(*rec.PredictedEPS, actual, s.config.EPSTolerancePct), &actual, nil

	case models.PredictionPriceTarget:
		if rec.TargetPrice == nil {
			return models.OutcomeNeutral, nil, nil
		}
		endPrice, err := s.priceAt(ctx, rec.Ticker, dueAt)
		if err != nil {
			return "", nil, err
		}
		return EvaluatePriceTarget(*rec.TargetPrice, endPrice, s.config.TargetTolerancePct), &endPrice, nil

	default:
		// Rating and timing calls resolve against the realized price move
		// over the horizon.
		startPrice, err := s.priceAt(ctx, rec.Ticker, rec.CreatedAt)
		if err != nil {
			return "", nil, err
		}
		endPrice, err := s.priceAt(ctx, rec.Ticker, dueAt)
		if err != nil {
			return "", nil, err
		}
		return EvaluateRating(rec.Action, startPrice, endPrice, s.config.NoiseThresholdPct), &endPrice, nil
	}
}

// priceAt returns the closing price at or nearest before the given date.
func (s *Service) priceAt(ctx context.Context, ticker string, date time.Time) (float64, error) {
	// Fetch a small trailing window to cover weekends and holidays
	bars, err := s.market.GetEOD(ctx, ticker, date.AddDate(0, 0, -7), date)
	if err != nil {
		return 0, fmt.Errorf("failed to fetch prices for %s: %w", ticker, err)
	}
	price := PriceAtDate(bars, date)
	if price <= 0 {
		return 0, fmt.Errorf("no usable price for %s at %s", ticker, date.Format("2006-01-02"))
	}
	return price, nil
}

// applyToAnalyst folds the outcome into the analyst's track record,
// per-category accuracy, rolling windows, and credibility score. An unknown
// analyst is initialized with defaults and updated, so evaluation remains
// usable under partial-setup conditions.
func (s *Service) applyToAnalyst(ctx context.Context, rec *models.Recommendation, outcome models.Outcome) error {
	if _, err := s.analysts.GetAnalyst(ctx, rec.AnalystID); err != nil {
		s.logger.Warn().Str("analyst", rec.AnalystID).Msg("Analyst not found, initializing defaults")
		if err := s.analysts.SaveAnalyst(ctx, models.NewAnalyst(rec.AnalystID, "", "")); err != nil {
			return err
		}
	}

	resolved, err := s.recommendations.GetByAnalyst(ctx, rec.AnalystID)
	if err != nil {
		return err
	}

	now := time.Now().UTC()
	recent := recentWindows(resolved, now)

	_, err = s.analysts.ApplyOutcome(ctx, rec.AnalystID, func(a *models.Analyst) error {
		a.TrackRecord.TotalPredictions++
		if outcome == models.OutcomeCorrect {
			a.TrackRecord.AccuratePredictions++
		}
		a.TrackRecord.AccuracyRate = float64(a.TrackRecord.AccuratePredictions) / float64(a.TrackRecord.TotalPredictions)

		updateCategory(a, predictionTypeOf(rec), outcomeValue(outcome))
		a.RecentPerformance = recent

		a.CredibilityScore = credibility.Score(a, s.weights)
		a.Tier = credibility.TierFor(a.CredibilityScore, s.thresholds)
		return nil
	})
	return err
}

func predictionTypeOf(rec *models.Recommendation) models.PredictionType {
	if rec.PredictionType == "" {
		return models.PredictionRating
	}
	return rec.PredictionType
}

// outcomeValue maps an outcome to its accuracy contribution.
func outcomeValue(outcome models.Outcome) float64 {
	switch outcome {
	case models.OutcomeCorrect:
		return 1.0
	case models.OutcomeIncorrect:
		return 0.0
	default:
		return 0.5
	}
}

// updateCategory folds one outcome into the per-type incremental running
// average: avg' = avg + (x - avg) / (n + 1).
func updateCategory(a *models.Analyst, predType models.PredictionType, value float64) {
	step := func(avg float64, n int) float64 {
		return avg + (value-avg)/float64(n+1)
	}

	switch predType {
	case models.PredictionRating:
		a.HistoricalPerformance.Rating = step(categoryBase(a.HistoricalPerformance.Rating, a.CategoryCounts.Rating), a.CategoryCounts.Rating)
		a.CategoryCounts.Rating++
	case models.PredictionPriceTarget:
		a.HistoricalPerformance.PriceTarget = step(categoryBase(a.HistoricalPerformance.PriceTarget, a.CategoryCounts.PriceTarget), a.CategoryCounts.PriceTarget)
		a.CategoryCounts.PriceTarget++
	case models.PredictionTiming:
		a.HistoricalPerformance.Timing = step(categoryBase(a.HistoricalPerformance.Timing, a.CategoryCounts.Timing), a.CategoryCounts.Timing)
		a.CategoryCounts.Timing++
	case models.PredictionEPS:
		a.HistoricalPerformance.EPS = step(categoryBase(a.HistoricalPerformance.EPS, a.CategoryCounts.EPS), a.CategoryCounts.EPS)
		a.CategoryCounts.EPS++
	}
}

// categoryBase discards the 0.5 display prior once real outcomes arrive: the
// first resolved outcome becomes the average outright.
func categoryBase(avg float64, count int) float64 {
	if count == 0 {
		return 0
	}
	return avg
}

// recentWindows recomputes rolling-window accuracy from the analyst's
// resolved recommendations. Windows with no resolutions stay neutral.
func recentWindows(recs []*models.Recommendation, now time.Time) models.RecentPerformance {
	accuracy := func(since time.Time) float64 {
		total, correct := 0, 0
		for _, r := range recs {
			if !r.Resolved() || r.ResolvedAt == nil || r.ResolvedAt.Before(since) {
				continue
			}
			total++
			if r.Outcome == models.OutcomeCorrect {
				correct++
			}
		}
		if total == 0 {
			return credibility.NeutralScore
		}
		return float64(correct) / float64(total)
	}

	return models.RecentPerformance{
		Last30Days: accuracy(now.AddDate(0, 0, -30)),
		Last90Days: accuracy(now.AddDate(0, 0, -90)),
		LastYear:   accuracy(now.AddDate(-1, 0, 0)),
	}
}
