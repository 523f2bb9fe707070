package eodhd

import (
	"context"
	"time"

	"github.com/ternarybob/veritas/internal/common"
)

// Provider adapts the raw Client to ticker-oriented lookups. Callers pass
// application tickers ("AAPL", "ASX:GNP"); the provider handles conversion
// to EODHD symbol format.
type Provider struct {
	client *Client
}

// NewProvider creates a Provider over the given client.
func NewProvider(client *Client) *Provider {
	return &Provider{client: client}
}

func symbolFor(ticker string) string {
	return common.ParseTicker(ticker).EODHDSymbol()
}

// GetEOD returns end-of-day price bars for the given range.
func (p *Provider) GetEOD(ctx context.Context, ticker string, from, to time.Time) ([]EODBar, error) {
	return p.client.GetEOD(ctx, symbolFor(ticker), WithDateRange(from, to))
}

// GetRealTimeQuote returns the latest delayed quote.
func (p *Provider) GetRealTimeQuote(ctx context.Context, ticker string) (*RealTimeQuote, error) {
	return p.client.GetRealTimeQuote(ctx, symbolFor(ticker))
}

// GetNews returns recent news articles with sentiment.
func (p *Provider) GetNews(ctx context.Context, ticker string, from, to time.Time, limit int) ([]NewsArticle, error) {
	return p.client.GetNews(ctx, []string{symbolFor(ticker)}, WithDateRange(from, to), WithLimit(limit))
}

// GetFundamentals returns fundamentals including EPS history.
func (p *Provider) GetFundamentals(ctx context.Context, ticker string) (*Fundamentals, error) {
	return p.client.GetFundamentals(ctx, symbolFor(ticker))
}
