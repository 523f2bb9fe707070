// Package interfaces defines the service and storage contracts wired
// together in app startup. Implementations live in internal/storage and
// internal/services.
package interfaces

import (
	"context"

	"github.com/ternarybob/veritas/internal/models"
)

// AnalystStorage - interface for analyst persistence
type AnalystStorage interface {
	SaveAnalyst(ctx context.Context, analyst *models.Analyst) error
	GetAnalyst(ctx context.Context, id string) (*models.Analyst, error)
	GetAllAnalysts(ctx context.Context) ([]*models.Analyst, error)
	DeleteAnalyst(ctx context.Context, id string) error
	CountAnalysts(ctx context.Context) (int, error)

	// ApplyOutcome performs a serialized read-modify-write of one analyst's
	// score and track record. Concurrent calls for the same analyst never
	// interleave, so increments are never lost.
	ApplyOutcome(ctx context.Context, analystID string, mutate func(*models.Analyst) error) (*models.Analyst, error)
}

// RecommendationStorage - interface for recommendation persistence
type RecommendationStorage interface {
	SaveRecommendation(ctx context.Context, rec *models.Recommendation) error
	GetRecommendation(ctx context.Context, id string) (*models.Recommendation, error)
	GetByAnalyst(ctx context.Context, analystID string) ([]*models.Recommendation, error)
	GetByTicker(ctx context.Context, ticker string) ([]*models.Recommendation, error)
	GetUnresolved(ctx context.Context) ([]*models.Recommendation, error)
	MarkResolved(ctx context.Context, id string, outcome models.Outcome, actualValue *float64) error
	CountRecommendations(ctx context.Context) (int, error)
}

// ConsensusStorage - interface for cached consensus snapshots
type ConsensusStorage interface {
	SaveConsensus(ctx context.Context, result *models.ConsensusResult) error
	GetConsensus(ctx context.Context, ticker string) (*models.ConsensusResult, error)
	DeleteConsensus(ctx context.Context, ticker string) error
}

// TickerStatusStorage - interface for per-ticker update bookkeeping
type TickerStatusStorage interface {
	SaveStatus(ctx context.Context, status *models.TickerStatus) error
	GetStatus(ctx context.Context, ticker string) (*models.TickerStatus, error)
	GetActiveTickers(ctx context.Context) ([]*models.TickerStatus, error)
	GetAllStatuses(ctx context.Context) ([]*models.TickerStatus, error)
	DeleteStatus(ctx context.Context, ticker string) error
}

// SnapshotStorage - interface for cached enrichment snapshots
type SnapshotStorage interface {
	SaveNewsSnapshot(ctx context.Context, snap *models.NewsSnapshot) error
	GetNewsSnapshot(ctx context.Context, ticker string) (*models.NewsSnapshot, error)
	SaveFinancialSnapshot(ctx context.Context, snap *models.FinancialSnapshot) error
	GetFinancialSnapshot(ctx context.Context, ticker string) (*models.FinancialSnapshot, error)
}

// StorageManager - composite interface for all storage operations
type StorageManager interface {
	AnalystStorage() AnalystStorage
	RecommendationStorage() RecommendationStorage
	ConsensusStorage() ConsensusStorage
	TickerStatusStorage() TickerStatusStorage
	SnapshotStorage() SnapshotStorage
	KeyValueStorage() KeyValueStorage
	Close() error
}
