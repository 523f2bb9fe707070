package consensus

import (
	"context"
	"fmt"
	"time"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/veritas/internal/common"
	"github.com/ternarybob/veritas/internal/interfaces"
	"github.com/ternarybob/veritas/internal/models"
)

// Service computes and caches the consensus for a ticker from its stored
// recommendations.
type Service struct {
	analysts        interfaces.AnalystStorage
	recommendations interfaces.RecommendationStorage
	consensus       interfaces.ConsensusStorage
	logger          arbor.ILogger
}

// NewService creates the consensus service.
func NewService(storage interfaces.StorageManager, logger arbor.ILogger) *Service {
	return &Service{
		analysts:        storage.AnalystStorage(),
		recommendations: storage.RecommendationStorage(),
		consensus:       storage.ConsensusStorage(),
		logger:          logger,
	}
}

// Compute builds the consensus from the ticker's current ratings: each
// analyst's most recent open recommendation. The result is cached as a
// snapshot but never treated as authoritative state.
func (s *Service) Compute(ctx context.Context, ticker string) (*models.ConsensusResult, error) {
	ticker = common.NormalizeTicker(ticker)
	if ticker == "" {
		return nil, fmt.Errorf("ticker is required")
	}

	recs, err := s.recommendations.GetByTicker(ctx, ticker)
	if err != nil {
		return nil, fmt.Errorf("failed to load recommendations for %s: %w", ticker, err)
	}

	ratings := currentRatings(recs)

	analysts := make(map[string]*models.Analyst, len(ratings))
	for _, rating := range ratings {
		analyst, err := s.analysts.GetAnalyst(ctx, rating.AnalystID)
		if err != nil {
			// Unknown analysts contribute at the neutral default
			continue
		}
		analysts[rating.AnalystID] = analyst
	}

	result := Aggregate(ticker, ratings, analysts)
	result.GeneratedAt = time.Now().UTC()

	if err := s.consensus.SaveConsensus(ctx, result); err != nil {
		s.logger.Warn().Err(err).Str("ticker", ticker).Msg("Failed to cache consensus snapshot")
	}

	return result, nil
}

// currentRatings reduces a ticker's recommendation history to one rating per
// analyst: the most recent open recommendation. Recommendations are sorted
// newest first by the storage layer.
func currentRatings(recs []*models.Recommendation) []models.Rating {
	seen := make(map[string]bool)
	var ratings []models.Rating
	for _, rec := range recs {
		if rec.Resolved() || seen[rec.AnalystID] || !rec.Action.Valid() {
			continue
		}
		seen[rec.AnalystID] = true
		ratings = append(ratings, models.Rating{
			AnalystID:   rec.AnalystID,
			Action:      rec.Action,
			Confidence:  rec.Confidence,
			TargetPrice: rec.TargetPrice,
		})
	}
	return ratings
}
