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

// TickerStatusStorage implements the TickerStatusStorage interface for Badger
type TickerStatusStorage struct {
	db     *BadgerDB
	logger arbor.ILogger
}

// NewTickerStatusStorage creates a new TickerStatusStorage instance
func NewTickerStatusStorage(db *BadgerDB, logger arbor.ILogger) interfaces.TickerStatusStorage {
	return &TickerStatusStorage{
		db:     db,
		logger: logger,
	}
}

func (s *TickerStatusStorage) SaveStatus(ctx context.Context, status *models.TickerStatus) error {
	if status.Ticker == "" {
		return fmt.Errorf("ticker is required")
	}
	if status.LastUpdated.IsZero() {
		status.LastUpdated = time.Now().UTC()
	}

	if err := s.db.Store().Upsert(status.Ticker, status); err != nil {
		return fmt.Errorf("failed to store ticker status: %w", err)
	}
	return nil
}

func (s *TickerStatusStorage) GetStatus(ctx context.Context, ticker string) (*models.TickerStatus, error) {
	var status models.TickerStatus
	if err := s.db.Store().Get(ticker, &status); err != nil {
		if err == badgerhold.ErrNotFound {
			return nil, fmt.Errorf("ticker status not found: %s", ticker)
		}
		return nil, fmt.Errorf("failed to get ticker status: %w", err)
	}
	return &status, nil
}

func (s *TickerStatusStorage) GetActiveTickers(ctx context.Context) ([]*models.TickerStatus, error) {
	var statuses []models.TickerStatus
	if err := s.db.Store().Find(&statuses, badgerhold.Where("Active").Eq(true).SortBy("Ticker")); err != nil {
		return nil, fmt.Errorf("failed to find active tickers: %w", err)
	}
	return statusPointers(statuses), nil
}

func (s *TickerStatusStorage) GetAllStatuses(ctx context.Context) ([]*models.TickerStatus, error) {
	var statuses []models.TickerStatus
	if err := s.db.Store().Find(&statuses, badgerhold.Where("Ticker").Ne("").SortBy("Ticker")); err != nil {
		return nil, fmt.Errorf("failed to list ticker statuses: %w", err)
	}
	return statusPointers(statuses), nil
}

func (s *TickerStatusStorage) DeleteStatus(ctx context.Context, ticker string) error {
	if err := s.db.Store().Delete(ticker, &models.TickerStatus{}); err != nil {
		if err == badgerhold.ErrNotFound {
			return nil // Already deleted
		}
		return fmt.Errorf("failed to delete ticker status: %w", err)
	}
	return nil
}

func statusPointers(statuses []models.TickerStatus) []*models.TickerStatus {
	result := make([]*models.TickerStatus, len(statuses))
	for i := range statuses {
		result[i] = &statuses[i]
	}
	return result
}
