package badger

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/veritas/internal/interfaces"
	"github.com/ternarybob/veritas/internal/models"
	"github.com/timshannon/badgerhold/v4"
)

// AnalystStorage implements the AnalystStorage interface for Badger
type AnalystStorage struct {
	db     *BadgerDB
	logger arbor.ILogger

	// Per-analyst locks serialize ApplyOutcome read-modify-write cycles.
	// Badgerhold has no numeric increment primitive, so concurrent outcome
	// applications for the same analyst must not interleave.
	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

// NewAnalystStorage creates a new AnalystStorage instance
func NewAnalystStorage(db *BadgerDB, logger arbor.ILogger) interfaces.AnalystStorage {
	return &AnalystStorage{
		db:     db,
		logger: logger,
		locks:  make(map[string]*sync.Mutex),
	}
}

func (s *AnalystStorage) lockFor(analystID string) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()
	lock, ok := s.locks[analystID]
	if !ok {
		lock = &sync.Mutex{}
		s.locks[analystID] = lock
	}
	return lock
}

func (s *AnalystStorage) SaveAnalyst(ctx context.Context, analyst *models.Analyst) error {
	if analyst.ID == "" {
		return fmt.Errorf("analyst ID is required")
	}

	now := time.Now().UTC()
	if analyst.CreatedAt.IsZero() {
		analyst.CreatedAt = now
	}
	analyst.UpdatedAt = now

	if err := s.db.Store().Upsert(analyst.ID, analyst); err != nil {
		return fmt.Errorf("failed to store analyst: %w", err)
	}
	return nil
}

func (s *AnalystStorage) GetAnalyst(ctx context.Context, id string) (*models.Analyst, error) {
	var analyst models.Analyst
	if err := s.db.Store().Get(id, &analyst); err != nil {
		if err == badgerhold.ErrNotFound {
			return nil, fmt.Errorf("analyst not found: %s", id)
		}
		return nil, fmt.Errorf("failed to get analyst: %w", err)
	}
	return &analyst, nil
}

func (s *AnalystStorage) GetAllAnalysts(ctx context.Context) ([]*models.Analyst, error) {
	var analysts []models.Analyst
	if err := s.db.Store().Find(&analysts, nil); err != nil {
		return nil, fmt.Errorf("failed to list analysts: %w", err)
	}

	result := make([]*models.Analyst, len(analysts))
	for i := range analysts {
		result[i] = &analysts[i]
	}
	return result, nil
}

func (s *AnalystStorage) DeleteAnalyst(ctx context.Context, id string) error {
	if err := s.db.Store().Delete(id, &models.Analyst{}); err != nil {
		if err == badgerhold.ErrNotFound {
			return nil // Already deleted
		}
		return fmt.Errorf("failed to delete analyst: %w", err)
	}
	return nil
}

func (s *AnalystStorage) CountAnalysts(ctx context.Context) (int, error) {
	count, err := s.db.Store().Count(&models.Analyst{}, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to count analysts: %w", err)
	}
	return int(count), nil
}

// ApplyOutcome serializes a read-modify-write of one analyst record. The
// mutate callback receives the freshly loaded analyst and may update any
// field; the modified record is persisted before the lock is released.
func (s *AnalystStorage) ApplyOutcome(ctx context.Context, analystID string, mutate func(*models.Analyst) error) (*models.Analyst, error) {
	lock := s.lockFor(analystID)
	lock.Lock()
	defer lock.Unlock()

	analyst, err := s.GetAnalyst(ctx, analystID)
	if err != nil {
		return nil, err
	}

	if err := mutate(analyst); err != nil {
		return nil, fmt.Errorf("failed to apply outcome for analyst %s: %w", analystID, err)
	}

	analyst.TrackRecord.LastUpdated = time.Now().UTC()
	if err := s.SaveAnalyst(ctx, analyst); err != nil {
		return nil, err
	}

	return analyst, nil
}
