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

// ConsensusStorage implements the ConsensusStorage interface for Badger
type ConsensusStorage struct {
	db     *BadgerDB
	logger arbor.ILogger
}

// NewConsensusStorage creates a new ConsensusStorage instance
func NewConsensusStorage(db *BadgerDB, logger arbor.ILogger) interfaces.ConsensusStorage {
	return &ConsensusStorage{
		db:     db,
		logger: logger,
	}
}

func (s *ConsensusStorage) SaveConsensus(ctx context.Context, result *models.ConsensusResult) error {
	if result.Ticker == "" {
		return fmt.Errorf("consensus ticker is required")
	}
	if result.GeneratedAt.IsZero() {
		result.GeneratedAt = time.Now().UTC()
	}

	if err := s.db.Store().Upsert(result.Ticker, result); err != nil {
		return fmt.Errorf("failed to store consensus: %w", err)
	}
	return nil
}

func (s *ConsensusStorage) GetConsensus(ctx context.Context, ticker string) (*models.ConsensusResult, error) {
	var result models.ConsensusResult
	if err := s.db.Store().Get(ticker, &result); err != nil {
		if err == badgerhold.ErrNotFound {
			return nil, fmt.Errorf("consensus not found for ticker: %s", ticker)
		}
		return nil, fmt.Errorf("failed to get consensus: %w", err)
	}
	return &result, nil
}

func (s *ConsensusStorage) DeleteConsensus(ctx context.Context, ticker string) error {
	if err := s.db.Store().Delete(ticker, &models.ConsensusResult{}); err != nil {
		if err == badgerhold.ErrNotFound {
			return nil // Already deleted
		}
		return fmt.Errorf("failed to delete consensus: %w", err)
	}
	return nil
}
