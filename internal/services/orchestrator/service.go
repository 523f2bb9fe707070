// Package orchestrator drives per-ticker data refreshes: staleness
// detection, bounded-concurrency batching with inter-window pacing, and
// partial-failure isolation into per-ticker results.
package orchestrator

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/veritas/internal/common"
	"github.com/ternarybob/veritas/internal/interfaces"
	"github.com/ternarybob/veritas/internal/models"
)

// Refresher is one independent per-ticker enrichment sub-task.
type Refresher interface {
	Refresh(ctx context.Context, ticker string) error
}

// Service implements the update orchestration over the two enrichment
// sub-tasks. Evaluation and consensus are optional collaborators invoked
// best-effort around refreshes.
type Service struct {
	news       Refresher
	financials Refresher
	evaluation interfaces.EvaluationService
	consensus  interfaces.ConsensusService
	statuses   interfaces.TickerStatusStorage
	config     *common.OrchestratorConfig
	logger     arbor.ILogger
}

// NewService creates the orchestrator.
func NewService(news, financials Refresher, evaluation interfaces.EvaluationService, consensus interfaces.ConsensusService, statuses interfaces.TickerStatusStorage, config *common.OrchestratorConfig, logger arbor.ILogger) *Service {
	return &Service{
		news:       news,
		financials: financials,
		evaluation: evaluation,
		consensus:  consensus,
		statuses:   statuses,
		config:     config,
		logger:     logger,
	}
}

// ShouldUpdate reports whether a ticker's data is stale: no update record,
// or a record older than maxAgeHours (0 uses the configured default). A
// failed lookup also reports stale, failing open toward refreshing rather
// than silently serving old data.
func (s *Service) ShouldUpdate(ctx context.Context, ticker string, maxAgeHours int) bool {
	status, err := s.statuses.GetStatus(ctx, common.NormalizeTicker(ticker))
	if err != nil {
		return true
	}

	if maxAgeHours <= 0 {
		maxAgeHours = s.config.MaxAgeHours
	}
	return time.Since(status.LastUpdated) > time.Duration(maxAgeHours)*time.Hour
}

// UpdateTicker refreshes news and financials for one ticker concurrently.
// The update counts as a success if either sub-task succeeds; when both
// fail, the error carries both messages, each prefixed by its sub-task name.
func (s *Service) UpdateTicker(ctx context.Context, ticker string) models.TickerUpdateResult {
	ticker = common.NormalizeTicker(ticker)
	result := models.TickerUpdateResult{
		Ticker:      ticker,
		LastUpdated: time.Now().UTC(),
	}

	var wg sync.WaitGroup
	var newsErr, finErr error

	wg.Add(2)
	go func() {
		defer wg.Done()
		newsErr = s.runSubTask(ctx, ticker, s.news)
	}()
	go func() {
		defer wg.Done()
		finErr = s.runSubTask(ctx, ticker, s.financials)
	}()
	wg.Wait()

	result.NewsUpdated = newsErr == nil
	result.FinancialsUpdated = finErr == nil
	result.Success = result.NewsUpdated || result.FinancialsUpdated

	var parts []string
	if newsErr != nil {
		parts = append(parts, "News: "+newsErr.Error())
	}
	if finErr != nil {
		parts = append(parts, "Financials: "+finErr.Error())
	}
	result.Error = strings.Join(parts, "; ")

	if result.FinancialsUpdated && s.evaluation != nil {
		if _, err := s.evaluation.EvaluateTicker(ctx, ticker); err != nil {
			s.logger.Warn().Err(err).Str("ticker", ticker).Msg("Post-refresh evaluation failed")
		}
	}

	if result.Success && s.consensus != nil {
		if _, err := s.consensus.Compute(ctx, ticker); err != nil {
			s.logger.Warn().Err(err).Str("ticker", ticker).Msg("Consensus recompute failed after refresh")
		}
	}

	s.recordStatus(ctx, &result)
	return result
}

// runSubTask executes one refresher, converting a panic into an error so a
// misbehaving sub-task cannot take down the ticker update.
func (s *Service) runSubTask(ctx context.Context, ticker string, refresher Refresher) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic: %v", r)
		}
	}()
	if refresher == nil {
		return fmt.Errorf("refresher not configured")
	}
	return refresher.Refresh(ctx, ticker)
}

// recordStatus persists the ticker's update bookkeeping; failures are logged
// only, since the refresh itself already happened.
func (s *Service) recordStatus(ctx context.Context, result *models.TickerUpdateResult) {
	status := &models.TickerStatus{
		Ticker:      result.Ticker,
		Active:      true,
		LastUpdated: result.LastUpdated,
		LastSuccess: result.Success,
		LastError:   result.Error,
	}
	if err := s.statuses.SaveStatus(ctx, status); err != nil {
		s.logger.Warn().Err(err).Str("ticker", result.Ticker).Msg("Failed to record ticker status")
	}
}

// UpdateBatch refreshes the given tickers in concurrency-bounded windows
// with a pacing delay between windows. Results are returned in input order;
// each ticker's failure, including a panic, is isolated into its own entry.
func (s *Service) UpdateBatch(ctx context.Context, tickers []string) *models.BatchUpdateResult {
	batch := &models.BatchUpdateResult{
		StartedAt: time.Now().UTC(),
		Results:   make([]models.TickerUpdateResult, len(tickers)),
	}

	concurrency := s.config.Concurrency
	if concurrency <= 0 {
		concurrency = 1
	}

	for start := 0; start < len(tickers); start += concurrency {
		end := start + concurrency
		if end > len(tickers) {
			end = len(tickers)
		}

		var wg sync.WaitGroup
		for i := start; i < end; i++ {
			wg.Add(1)
			go func(idx int) {
				defer wg.Done()
				defer func() {
					if r := recover(); r != nil {
						batch.Results[idx] = models.TickerUpdateResult{
							Ticker:      common.NormalizeTicker(tickers[idx]),
							Success:     false,
							Error:       fmt.Sprintf("panic: %v", r),
							LastUpdated: time.Now().UTC(),
						}
					}
				}()
				batch.Results[idx] = s.UpdateTicker(ctx, tickers[idx])
			}(i)
		}
		wg.Wait()

		if end < len(tickers) && s.config.BatchDelay > 0 {
			s.logger.Debug().
				Int("completed", end).
				Int("total", len(tickers)).
				Dur("delay", s.config.BatchDelay).
				Msg("Pacing between batch windows")
			select {
			case <-ctx.Done():
			case <-time.After(s.config.BatchDelay):
			}
		}
	}

	batch.TotalProcessed = len(batch.Results)
	for _, result := range batch.Results {
		if result.Success {
			batch.SuccessCount++
		} else {
			batch.ErrorCount++
		}
	}

	batch.CompletedAt = time.Now().UTC()
	batch.Duration = batch.CompletedAt.Sub(batch.StartedAt)

	s.logger.Info().
		Int("total", batch.TotalProcessed).
		Int("success", batch.SuccessCount).
		Int("errors", batch.ErrorCount).
		Dur("duration", batch.Duration).
		Msg("Batch update complete")

	return batch
}

// UpdateAll refreshes every active ticker up to the cap, running an
// evaluation sweep first so refreshed consensus uses current scores. A nil
// opts uses the configured defaults.
func (s *Service) UpdateAll(ctx context.Context, opts *models.UpdateOptions) (*models.BatchUpdateResult, error) {
	tickers, err := s.activeTickers(ctx)
	if err != nil {
		return nil, err
	}
	s.sweepScores(ctx)
	return s.UpdateBatch(ctx, s.cap(tickers, opts)), nil
}

// UpdateSmart refreshes only the active tickers whose data is stale.
func (s *Service) UpdateSmart(ctx context.Context, opts *models.UpdateOptions) (*models.BatchUpdateResult, error) {
	tickers, err := s.activeTickers(ctx)
	if err != nil {
		return nil, err
	}

	maxAgeHours := 0
	if opts != nil {
		maxAgeHours = opts.MaxAgeHours
	}

	var stale []string
	for _, ticker := range tickers {
		if s.ShouldUpdate(ctx, ticker, maxAgeHours) {
			stale = append(stale, ticker)
		}
	}

	s.logger.Info().
		Int("active", len(tickers)).
		Int("stale", len(stale)).
		Msg("Smart cycle selection")

	s.sweepScores(ctx)
	return s.UpdateBatch(ctx, s.cap(stale, opts)), nil
}

func (s *Service) activeTickers(ctx context.Context) ([]string, error) {
	statuses, err := s.statuses.GetActiveTickers(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list active tickers: %w", err)
	}
	tickers := make([]string, len(statuses))
	for i, status := range statuses {
		tickers[i] = status.Ticker
	}
	return tickers, nil
}

func (s *Service) cap(tickers []string, opts *models.UpdateOptions) []string {
	max := s.config.MaxTickers
	if opts != nil && opts.MaxTickers > 0 {
		max = opts.MaxTickers
	}
	if max > 0 && len(tickers) > max {
		return tickers[:max]
	}
	return tickers
}

// sweepScores runs an evaluation sweep best-effort before a cycle.
func (s *Service) sweepScores(ctx context.Context) {
	if s.evaluation == nil {
		return
	}
	if _, err := s.evaluation.RunSweep(ctx); err != nil {
		s.logger.Warn().Err(err).Msg("Pre-cycle evaluation sweep failed")
	}
}
