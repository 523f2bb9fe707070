package interfaces

import (
	"context"
	"time"

	"github.com/ternarybob/veritas/internal/eodhd"
)

// MarketDataProvider - interface for external market data (EODHD)
type MarketDataProvider interface {
	// GetEOD returns end-of-day price bars for the given range
	GetEOD(ctx context.Context, ticker string, from, to time.Time) ([]eodhd.EODBar, error)

	// GetRealTimeQuote returns the latest delayed quote
	GetRealTimeQuote(ctx context.Context, ticker string) (*eodhd.RealTimeQuote, error)

	// GetNews returns recent news articles with sentiment
	GetNews(ctx context.Context, ticker string, from, to time.Time, limit int) ([]eodhd.NewsArticle, error)

	// GetFundamentals returns fundamentals including EPS history
	GetFundamentals(ctx context.Context, ticker string) (*eodhd.Fundamentals, error)
}

// LLMProvider - interface for text generation used by news narratives
type LLMProvider interface {
	// Generate produces a completion for the given prompt
	Generate(ctx context.Context, prompt string) (string, error)

	// Name returns the provider identifier (e.g. "gemini", "claude")
	Name() string
}
