// Package enrichment refreshes per-ticker external data: news/sentiment and
// financial snapshots. Each refresher is an independent sub-task of the
// orchestrator's per-ticker update.
package enrichment

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/veritas/internal/common"
	"github.com/ternarybob/veritas/internal/eodhd"
	"github.com/ternarybob/veritas/internal/interfaces"
	"github.com/ternarybob/veritas/internal/models"
)

// Sentiment polarity cut points for bucketing articles
const (
	positivePolarity = 0.2
	negativePolarity = -0.2
)

const newsFetchLimit = 50

// NewsService refreshes the cached news/sentiment snapshot for a ticker.
type NewsService struct {
	market    interfaces.MarketDataProvider
	snapshots interfaces.SnapshotStorage
	llm       interfaces.LLMProvider // nil disables narratives
	config    *common.OrchestratorConfig
	logger    arbor.ILogger
}

// NewNewsService creates the news refresher. The LLM provider is optional;
// pass nil to skip narrative generation.
func NewNewsService(market interfaces.MarketDataProvider, snapshots interfaces.SnapshotStorage, llm interfaces.LLMProvider, config *common.OrchestratorConfig, logger arbor.ILogger) *NewsService {
	return &NewsService{
		market:    market,
		snapshots: snapshots,
		llm:       llm,
		config:    config,
		logger:    logger,
	}
}

// Refresh fetches recent news for the ticker, derives the sentiment
// breakdown, and stores the snapshot. Narrative generation failures are
// logged and swallowed; the snapshot still counts as a successful refresh.
func (s *NewsService) Refresh(ctx context.Context, ticker string) error {
	now := time.Now().UTC()
	from := now.Add(-s.config.NewsPeriod)

	articles, err := s.market.GetNews(ctx, ticker, from, now, newsFetchLimit)
	if err != nil {
		return fmt.Errorf("news fetch failed for %s: %w", ticker, err)
	}

	snap := buildNewsSnapshot(ticker, articles, now)

	if s.llm != nil && s.config.LLMNarrative && len(articles) > 0 {
		narrative, err := s.generateNarrative(ctx, ticker, articles)
		if err != nil {
			s.logger.Warn().Err(err).Str("ticker", ticker).Msg("Narrative generation failed, storing snapshot without it")
		} else {
			snap.Narrative = narrative
		}
	}

	if err := s.snapshots.SaveNewsSnapshot(ctx, snap); err != nil {
		return fmt.Errorf("failed to store news snapshot for %s: %w", ticker, err)
	}

	s.logger.Debug().
		Str("ticker", ticker).
		Int("articles", snap.ArticleCount).
		Float64("avg_sentiment", snap.AvgSentiment).
		Msg("News snapshot refreshed")

	return nil
}

// buildNewsSnapshot derives the sentiment breakdown from raw articles.
func buildNewsSnapshot(ticker string, articles []eodhd.NewsArticle, now time.Time) *models.NewsSnapshot {
	snap := &models.NewsSnapshot{
		Ticker:       ticker,
		ArticleCount: len(articles),
		GeneratedAt:  now,
	}

	var polaritySum float64
	var polarityCount int
	for _, article := range articles {
		if article.Sentiment == nil {
			snap.NeutralCount++
			continue
		}
		polaritySum += article.Sentiment.Polarity
		polarityCount++

		switch {
		case article.Sentiment.Polarity >= positivePolarity:
			snap.PositiveCount++
		case article.Sentiment.Polarity <= negativePolarity:
			snap.NegativeCount++
		default:
			snap.NeutralCount++
		}
	}

	if polarityCount > 0 {
		snap.AvgSentiment = polaritySum / float64(polarityCount)
	}

	return snap
}

// generateNarrative asks the LLM for a short summary of the headline flow.
func (s *NewsService) generateNarrative(ctx context.Context, ticker string, articles []eodhd.NewsArticle) (string, error) {
	const maxHeadlines = 10

	var headlines []string
	for i, article := range articles {
		if i >= maxHeadlines {
			break
		}
		headlines = append(headlines, "- "+article.Title)
	}

	prompt := fmt.Sprintf(
		"Summarize the recent news flow for stock %s in 2-3 sentences for an investor audience. Headlines:\n%s",
		ticker, strings.Join(headlines, "\n"))

	return s.llm.Generate(ctx, prompt)
}
