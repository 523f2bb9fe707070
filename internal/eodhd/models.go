package eodhd

import "time"

// EODBar represents a single day's end-of-day price data.
type EODBar struct {
	Date          time.Time `json:"-"`
	DateStr       string    `json:"date"`
	Open          float64   `json:"open"`
	High          float64   `json:"high"`
	Low           float64   `json:"low"`
	Close         float64   `json:"close"`
	AdjustedClose float64   `json:"adjusted_close"`
	Volume        int64     `json:"volume"`
}

// RealTimeQuote represents a delayed real-time quote.
type RealTimeQuote struct {
	Code          string  `json:"code"`
	Timestamp     int64   `json:"timestamp"`
	Open          float64 `json:"open"`
	High          float64 `json:"high"`
	Low           float64 `json:"low"`
	Close         float64 `json:"close"`
	Volume        int64   `json:"volume"`
	PreviousClose float64 `json:"previousClose"`
	Change        float64 `json:"change"`
	ChangePercent float64 `json:"change_p"`
}

// NewsArticle represents a single news article with optional sentiment.
type NewsArticle struct {
	Date      time.Time      `json:"-"`
	DateStr   string         `json:"date"`
	Title     string         `json:"title"`
	Content   string         `json:"content"`
	Link      string         `json:"link"`
	Symbols   []string       `json:"symbols"`
	Tags      []string       `json:"tags"`
	Sentiment *NewsSentiment `json:"sentiment,omitempty"`
}

// NewsSentiment represents sentiment analysis data for news.
type NewsSentiment struct {
	Polarity float64 `json:"polarity"`
	Neg      float64 `json:"neg"`
	Neu      float64 `json:"neu"`
	Pos      float64 `json:"pos"`
}

// Fundamentals represents the subset of EODHD fundamentals used for
// evaluation: company identity plus EPS actuals and estimates.
type Fundamentals struct {
	General    *GeneralInfo `json:"General"`
	Highlights *Highlights  `json:"Highlights"`
	Earnings   *Earnings    `json:"Earnings"`
}

// GeneralInfo contains general company information.
type GeneralInfo struct {
	Code     string `json:"Code"`
	Type     string `json:"Type"`
	Name     string `json:"Name"`
	Exchange string `json:"Exchange"`
	Sector   string `json:"Sector"`
	Industry string `json:"Industry"`
}

// Highlights contains key financial highlights.
type Highlights struct {
	MarketCapitalization      float64 `json:"MarketCapitalization"`
	PERatio                   float64 `json:"PERatio"`
	WallStreetTargetPrice     float64 `json:"WallStreetTargetPrice"`
	EarningsShare             float64 `json:"EarningsShare"`
	EPSEstimateCurrentYear    float64 `json:"EPSEstimateCurrentYear"`
	EPSEstimateNextYear       float64 `json:"EPSEstimateNextYear"`
	EPSEstimateNextQuarter    float64 `json:"EPSEstimateNextQuarter"`
	EPSEstimateCurrentQuarter float64 `json:"EPSEstimateCurrentQuarter"`
	MostRecentQuarter         string  `json:"MostRecentQuarter"`
	DilutedEpsTTM             float64 `json:"DilutedEpsTTM"`
}

// Earnings contains reported earnings history.
type Earnings struct {
	History []EarningsHistoryEntry `json:"History"`
}

// EarningsHistoryEntry represents a single earnings report.
type EarningsHistoryEntry struct {
	ReportDate      string  `json:"reportDate"`
	Date            string  `json:"date"`
	Currency        string  `json:"currency"`
	EPSActual       float64 `json:"epsActual"`
	EPSEstimate     float64 `json:"epsEstimate"`
	EPSDifference   float64 `json:"epsDifference"`
	SurprisePercent float64 `json:"surprisePercent"`
}

// LatestActualEPS returns the most recent reported EPS on or before asOf.
// Returns false if no report qualifies.
func (e *Earnings) LatestActualEPS(asOf time.Time) (float64, bool) {
	var best float64
	var bestDate time.Time
	found := false
	for _, entry := range e.History {
		reported, err := time.Parse("2006-01-02", entry.ReportDate)
		if err != nil || reported.After(asOf) {
			continue
		}
		if !found || reported.After(bestDate) {
			best = entry.EPSActual
			bestDate = reported
			found = true
		}
	}
	return best, found
}
