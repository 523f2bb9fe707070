package enrichment

import (
	"context"
	"fmt"
	"time"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/veritas/internal/common"
	"github.com/ternarybob/veritas/internal/interfaces"
	"github.com/ternarybob/veritas/internal/models"
)

// FinancialService refreshes the cached price/volume snapshot for a ticker.
type FinancialService struct {
	market    interfaces.MarketDataProvider
	snapshots interfaces.SnapshotStorage
	config    *common.OrchestratorConfig
	logger    arbor.ILogger
}

// NewFinancialService creates the financial refresher.
func NewFinancialService(market interfaces.MarketDataProvider, snapshots interfaces.SnapshotStorage, config *common.OrchestratorConfig, logger arbor.ILogger) *FinancialService {
	return &FinancialService{
		market:    market,
		snapshots: snapshots,
		config:    config,
		logger:    logger,
	}
}

// Refresh fetches the latest quote and the configured price history window,
// then stores the snapshot. The quote is the primary source; history is kept
// for outcome evaluation and is fetched best-effort on top of it.
func (s *FinancialService) Refresh(ctx context.Context, ticker string) error {
	now := time.Now().UTC()

	quote, err := s.market.GetRealTimeQuote(ctx, ticker)
	if err != nil {
		return fmt.Errorf("quote fetch failed for %s: %w", ticker, err)
	}

	snap := &models.FinancialSnapshot{
		Ticker:      ticker,
		Price:       quote.Close,
		Change:      quote.Change,
		ChangePct:   quote.ChangePercent,
		Volume:      quote.Volume,
		AsOfDate:    time.Unix(quote.Timestamp, 0).UTC(),
		GeneratedAt: now,
	}

	bars, err := s.market.GetEOD(ctx, ticker, now.Add(-s.config.PriceHistory), now)
	if err != nil {
		s.logger.Warn().Err(err).Str("ticker", ticker).Msg("Price history fetch failed, storing quote-only snapshot")
	} else {
		snap.PriceBarCount = len(bars)
	}

	if err := s.snapshots.SaveFinancialSnapshot(ctx, snap); err != nil {
		return fmt.Errorf("failed to store financial snapshot for %s: %w", ticker, err)
	}

	s.logger.Debug().
		Str("ticker", ticker).
		Float64("price", snap.Price).
		Int("bars", snap.PriceBarCount).
		Msg("Financial snapshot refreshed")

	return nil
}
