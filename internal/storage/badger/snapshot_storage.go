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

// SnapshotStorage implements the SnapshotStorage interface for Badger.
// News and financial snapshots are cache records keyed by ticker; the
// enrichment services overwrite them on every successful refresh.
type SnapshotStorage struct {
	db     *BadgerDB
	logger arbor.ILogger
}

// NewSnapshotStorage creates a new SnapshotStorage instance
func NewSnapshotStorage(db *BadgerDB, logger arbor.ILogger) interfaces.SnapshotStorage {
	return &SnapshotStorage{
		db:     db,
		logger: logger,
	}
}

func (s *SnapshotStorage) SaveNewsSnapshot(ctx context.Context, snap *models.NewsSnapshot) error {
	if snap.Ticker == "" {
		return fmt.Errorf("news snapshot ticker is required")
	}
	if snap.GeneratedAt.IsZero() {
		snap.GeneratedAt = time.Now().UTC()
	}

	if err := s.db.Store().Upsert("news:"+snap.Ticker, snap); err != nil {
		return fmt.Errorf("failed to store news snapshot: %w", err)
	}
	return nil
}

func (s *SnapshotStorage) GetNewsSnapshot(ctx context.Context, ticker string) (*models.NewsSnapshot, error) {
	var snap models.NewsSnapshot
	if err := s.db.Store().Get("news:"+ticker, &snap); err != nil {
		if err == badgerhold.ErrNotFound {
			return nil, fmt.Errorf("news snapshot not found for ticker: %s", ticker)
		}
		return nil, fmt.Errorf("failed to get news snapshot: %w", err)
	}
	return &snap, nil
}

func (s *SnapshotStorage) SaveFinancialSnapshot(ctx context.Context, snap *models.FinancialSnapshot) error {
	if snap.Ticker == "" {
		return fmt.Errorf("financial snapshot ticker is required")
	}
	if snap.GeneratedAt.IsZero() {
		snap.GeneratedAt = time.Now().UTC()
	}

	if err := s.db.Store().Upsert("fin:"+snap.Ticker, snap); err != nil {
		return fmt.Errorf("failed to store financial snapshot: %w", err)
	}
	return nil
}

func (s *SnapshotStorage) GetFinancialSnapshot(ctx context.Context, ticker string) (*models.FinancialSnapshot, error) {
	var snap models.FinancialSnapshot
	if err := s.db.Store().Get("fin:"+ticker, &snap); err != nil {
		if err == badgerhold.ErrNotFound {
			return nil, fmt.Errorf("financial snapshot not found for ticker: %s", ticker)
		}
		return nil, fmt.Errorf("failed to get financial snapshot: %w", err)
	}
	return &snap, nil
}
