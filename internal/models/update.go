package models

import "time"

// TickerUpdateResult is the outcome of one per-ticker refresh. Success is
// true when at least one of the two enrichment sub-tasks succeeded.
type TickerUpdateResult struct {
	Ticker            string    `json:"ticker"`
	Success           bool      `json:"success"`
	NewsUpdated       bool      `json:"news_updated"`
	FinancialsUpdated bool      `json:"financials_updated"`
	Error             string    `json:"error,omitempty"`
	LastUpdated       time.Time `json:"last_updated"`
}

// BatchUpdateResult aggregates per-ticker refresh results for one batch run.
// Invariant: SuccessCount + ErrorCount == TotalProcessed == len(Results).
type BatchUpdateResult struct {
	TotalProcessed int                  `json:"total_processed"`
	SuccessCount   int                  `json:"success_count"`
	ErrorCount     int                  `json:"error_count"`
	Results        []TickerUpdateResult `json:"results"`
	StartedAt      time.Time            `json:"started_at"`
	CompletedAt    time.Time            `json:"completed_at"`
	Duration       time.Duration        `json:"duration"`
}

// TickerStatus is the per-ticker update bookkeeping record backing staleness
// checks and cycle discovery. The refresh state machine is implicit: this
// record plus the most recent TickerUpdateResult.
type TickerStatus struct {
	Ticker      string    `json:"ticker" badgerhold:"key"`
	Active      bool      `json:"active"`
	LastUpdated time.Time `json:"last_updated"`
	LastSuccess bool      `json:"last_success"`
	LastError   string    `json:"last_error,omitempty"`
}

// UpdateOptions carries per-request overrides for a full or smart cycle.
// Zero values fall back to the configured defaults.
type UpdateOptions struct {
	MaxTickers  int `json:"max_tickers"`
	MaxAgeHours int `json:"max_age_hours"`
}

// EvaluationSummary reports one evaluation sweep.
type EvaluationSummary struct {
	EvaluatedCount  int       `json:"evaluated_count"`
	UpdatedAnalysts []string  `json:"updated_analysts"`
	Errors          []string  `json:"errors"`
	AsOf            time.Time `json:"as_of"`
}

// NewsSnapshot is the cached per-ticker news/sentiment enrichment result.
type NewsSnapshot struct {
	Ticker        string    `json:"ticker" badgerhold:"key"`
	ArticleCount  int       `json:"article_count"`
	PositiveCount int       `json:"positive_count"`
	NeutralCount  int       `json:"neutral_count"`
	NegativeCount int       `json:"negative_count"`
	AvgSentiment  float64   `json:"avg_sentiment"`
	Narrative     string    `json:"narrative,omitempty"` // Optional LLM summary
	GeneratedAt   time.Time `json:"generated_at"`
}

// FinancialSnapshot is the cached per-ticker market-data enrichment result.
type FinancialSnapshot struct {
	Ticker        string    `json:"ticker" badgerhold:"key"`
	Price         float64   `json:"price"`
	Change        float64   `json:"change"`
	ChangePct     float64   `json:"change_pct"`
	Volume        int64     `json:"volume"`
	PriceBarCount int       `json:"price_bar_count"`
	AsOfDate      time.Time `json:"as_of_date"`
	GeneratedAt   time.Time `json:"generated_at"`
}
