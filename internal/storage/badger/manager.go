package badger

import (
	"github.com/ternarybob/arbor"
	"github.com/ternarybob/veritas/internal/common"
	"github.com/ternarybob/veritas/internal/interfaces"
)

// Manager implements the StorageManager interface for Badger
type Manager struct {
	db             *BadgerDB
	analyst        interfaces.AnalystStorage
	recommendation interfaces.RecommendationStorage
	consensus      interfaces.ConsensusStorage
	tickerStatus   interfaces.TickerStatusStorage
	snapshot       interfaces.SnapshotStorage
	kv             interfaces.KeyValueStorage
	logger         arbor.ILogger
}

// NewManager creates a new Badger storage manager
func NewManager(logger arbor.ILogger, config *common.BadgerConfig) (interfaces.StorageManager, error) {
	db, err := NewBadgerDB(logger, config)
	if err != nil {
		return nil, err
	}

	manager := &Manager{
		db:             db,
		analyst:        NewAnalystStorage(db, logger),
		recommendation: NewRecommendationStorage(db, logger),
		consensus:      NewConsensusStorage(db, logger),
		tickerStatus:   NewTickerStatusStorage(db, logger),
		snapshot:       NewSnapshotStorage(db, logger),
		kv:             NewKVStorage(db, logger),
		logger:         logger,
	}

	logger.Info().Msg("Badger storage manager initialized")

	return manager, nil
}

// AnalystStorage returns the Analyst storage interface
func (m *Manager) AnalystStorage() interfaces.AnalystStorage {
	return m.analyst
}

// RecommendationStorage returns the Recommendation storage interface
func (m *Manager) RecommendationStorage() interfaces.RecommendationStorage {
	return m.recommendation
}

// ConsensusStorage returns the Consensus storage interface
func (m *Manager) ConsensusStorage() interfaces.ConsensusStorage {
	return m.consensus
}

// TickerStatusStorage returns the TickerStatus storage interface
func (m *Manager) TickerStatusStorage() interfaces.TickerStatusStorage {
	return m.tickerStatus
}

// SnapshotStorage returns the Snapshot storage interface
func (m *Manager) SnapshotStorage() interfaces.SnapshotStorage {
	return m.snapshot
}

// KeyValueStorage returns the KeyValue storage interface
func (m *Manager) KeyValueStorage() interfaces.KeyValueStorage {
	return m.kv
}

// Close closes the database connection
func (m *Manager) Close() error {
	if m.db != nil {
		return m.db.Close()
	}
	return nil
}
