package badger

import (
	"context"
	"fmt"
	"time"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/veritas/internal/interfaces"
	"github.com/ternarybob/veritas/internal/models"
	"github.com/timshannon/badgerhold/v4"
)

// RecommendationStorage implements the RecommendationStorage interface for Badger
type RecommendationStorage struct {
	db     *BadgerDB
	logger arbor.ILogger
}

// NewRecommendationStorage creates a new RecommendationStorage instance
func NewRecommendationStorage(db *BadgerDB, logger arbor.ILogger) interfaces.RecommendationStorage {
	return &RecommendationStorage{
		db:     db,
		logger: logger,
	}
}

func (s *RecommendationStorage) SaveRecommendation(ctx context.Context, rec *models.Recommendation) error {
	if rec.ID == "" {
		return fmt.Errorf("recommendation ID is required")
	}
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now().UTC()
	}

	if err := s.db.Store().Upsert(rec.ID, rec); err != nil {
		return fmt.Errorf("failed to store recommendation: %w", err)
	}
	return nil
}

func (s *RecommendationStorage) GetRecommendation(ctx context.Context, id string) (*models.Recommendation, error) {
	var rec models.Recommendation
	if err := s.db.Store().Get(id, &rec); err != nil {
		if err == badgerhold.ErrNotFound {
			return nil, fmt.Errorf("recommendation not found: %s", id)
		}
		return nil, fmt.Errorf("failed to get recommendation: %w", err)
	}
	return &rec, nil
}

func (s *RecommendationStorage) GetByAnalyst(ctx context.Context, analystID string) ([]*models.Recommendation, error) {
	var recs []models.Recommendation
	if err := s.db.Store().Find(&recs, badgerhold.Where("AnalystID").Eq(analystID).SortBy("CreatedAt").Reverse()); err != nil {
		return nil, fmt.Errorf("failed to find recommendations by analyst: %w", err)
	}
	return toPointers(recs), nil
}

func (s *RecommendationStorage) GetByTicker(ctx context.Context, ticker string) ([]*models.Recommendation, error) {
	var recs []models.Recommendation
	if err := s.db.Store().Find(&recs, badgerhold.Where("Ticker").Eq(ticker).SortBy("CreatedAt").Reverse()); err != nil {
		return nil, fmt.Errorf("failed to find recommendations by ticker: %w", err)
	}
	return toPointers(recs), nil
}

func (s *RecommendationStorage) GetUnresolved(ctx context.Context) ([]*models.Recommendation, error) {
	var recs []models.Recommendation
	if err := s.db.Store().Find(&recs, badgerhold.Where("Outcome").Eq(models.Outcome(""))); err != nil {
		return nil, fmt.Errorf("failed to find unresolved recommendations: %w", err)
	}
	return toPointers(recs), nil
}

// MarkResolved writes the outcome fields exactly once. Re-resolving an
// already resolved recommendation is an error.
func (s *RecommendationStorage) MarkResolved(ctx context.Context, id string, outcome models.Outcome, actualValue *float64) error {
	rec, err := s.GetRecommendation(ctx, id)
	if err != nil {
		return err
	}
	if rec.Resolved() {
		return fmt.Errorf("recommendation already resolved: %s", id)
	}

	now := time.Now().UTC()
	rec.Outcome = outcome
	rec.ActualValue = actualValue
	rec.ResolvedAt = &now

	if err := s.db.Store().Update(id, rec); err != nil {
		return fmt.Errorf("failed to mark recommendation resolved: %w", err)
	}
	return nil
}

func (s *RecommendationStorage) CountRecommendations(ctx context.Context) (int, error) {
	count, err := s.db.Store().Count(&models.Recommendation{}, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to count recommendations: %w", err)
	}
	return int(count), nil
}

func toPointers(recs []models.Recommendation) []*models.Recommendation {
	result := make([]*models.Recommendation, len(recs))
	for i := range recs {
		result[i] = &recs[i]
	}
	return result
}
