package interfaces

import (
	"context"
	"time"

	"github.com/ternarybob/veritas/internal/models"
)

// OrchestratorService coordinates batch and single-ticker data refreshes.
type OrchestratorService interface {
	// UpdateTicker refreshes news and financials for one ticker
	UpdateTicker(ctx context.Context, ticker string) models.TickerUpdateResult

	// UpdateBatch refreshes the given tickers in bounded concurrent windows
	UpdateBatch(ctx context.Context, tickers []string) *models.BatchUpdateResult

	// UpdateAll refreshes every active ticker; nil opts uses config defaults
	UpdateAll(ctx context.Context, opts *models.UpdateOptions) (*models.BatchUpdateResult, error)

	// UpdateSmart refreshes only tickers whose data is stale
	UpdateSmart(ctx context.Context, opts *models.UpdateOptions) (*models.BatchUpdateResult, error)

	// ShouldUpdate reports whether a ticker's data is older than maxAgeHours
	// (0 uses the configured default)
	ShouldUpdate(ctx context.Context, ticker string, maxAgeHours int) bool
}

// EvaluationService resolves due recommendations and updates analyst scores.
type EvaluationService interface {
	// RunSweep evaluates all unresolved, due recommendations
	RunSweep(ctx context.Context) (*models.EvaluationSummary, error)

	// EvaluateTicker evaluates the unresolved, due recommendations for one ticker
	EvaluateTicker(ctx context.Context, ticker string) (*models.EvaluationSummary, error)

	// EvaluateRecommendation resolves one recommendation by ID
	EvaluateRecommendation(ctx context.Context, id string) (*models.Recommendation, error)
}

// ConsensusService computes weighted consensus for a ticker.
type ConsensusService interface {
	// Compute builds the consensus from the ticker's current recommendations
	Compute(ctx context.Context, ticker string) (*models.ConsensusResult, error)
}

// JobStatus represents the current status of a scheduled job
type JobStatus struct {
	Name        string
	Enabled     bool
	Schedule    string
	Description string
	LastRun     *time.Time
	NextRun     *time.Time
	IsRunning   bool
	LastError   string
}

// SchedulerService manages cron-based scheduling
type SchedulerService interface {
	// Start the scheduler
	Start() error

	// Stop the scheduler
	Stop() error

	// IsRunning returns true if scheduler is active
	IsRunning() bool

	// RegisterJob registers a new job with the scheduler
	RegisterJob(name string, schedule string, description string, handler func() error) error

	// TriggerJobNow manually runs a registered job
	TriggerJobNow(name string) error

	// EnableJob enables a disabled job
	EnableJob(name string) error

	// DisableJob disables an enabled job
	DisableJob(name string) error

	// GetJobStatus returns the status of a specific job
	GetJobStatus(name string) (*JobStatus, error)

	// GetAllJobStatuses returns all job statuses
	GetAllJobStatuses() map[string]*JobStatus
}
