package common

import (
	"strings"
)

// Ticker represents a parsed exchange-qualified ticker.
// Format: EXCHANGE:CODE (e.g., "ASX:GNP", "NASDAQ:AAPL")
type Ticker struct {
	// Exchange is the exchange code (e.g., "ASX", "NYSE", "NASDAQ")
	Exchange string
	// Code is the stock/security code (e.g., "GNP", "AAPL")
	Code string
	// Raw is the original ticker string
	Raw string
}

// ExchangeToSuffix maps exchange codes to EODHD API suffixes.
var ExchangeToSuffix = map[string]string{
	"ASX":    ".AU",
	"NYSE":   ".US",
	"NASDAQ": ".US",
	"LSE":    ".LSE",
	"TSX":    ".TO",
	"XETRA":  ".XETRA",
}

// DefaultExchange is the default exchange used when parsing tickers without
// an exchange prefix.
var DefaultExchange = "US"

// ParseTicker parses an exchange-qualified ticker string.
// Supports formats:
//   - "NASDAQ:AAPL" -> Exchange="NASDAQ", Code="AAPL"
//   - "AAPL" -> Exchange=DefaultExchange, Code="AAPL"
//   - "aapl" -> normalized to uppercase
func ParseTicker(ticker string) Ticker {
	ticker = strings.TrimSpace(ticker)
	if ticker == "" {
		return Ticker{}
	}

	if idx := strings.Index(ticker, ":"); idx > 0 {
		return Ticker{
			Exchange: strings.ToUpper(ticker[:idx]),
			Code:     strings.ToUpper(ticker[idx+1:]),
			Raw:      ticker,
		}
	}

	return Ticker{
		Exchange: DefaultExchange,
		Code:     strings.ToUpper(ticker),
		Raw:      ticker,
	}
}

// EODHDSymbol converts the ticker to EODHD CODE.SUFFIX format (e.g., "AAPL.US").
// Tickers already carrying a dot suffix are passed through uppercased.
func (t Ticker) EODHDSymbol() string {
	if strings.Contains(t.Code, ".") {
		return t.Code
	}
	suffix, ok := ExchangeToSuffix[t.Exchange]
	if !ok {
		suffix = "." + t.Exchange
	}
	return t.Code + suffix
}

// NormalizeTicker canonicalizes a ticker string for storage keys:
// uppercase code without exchange prefix noise.
func NormalizeTicker(ticker string) string {
	parsed := ParseTicker(ticker)
	if parsed.Code == "" {
		return strings.ToUpper(strings.TrimSpace(ticker))
	}
	if parsed.Exchange != "" && parsed.Exchange != DefaultExchange {
		return parsed.Exchange + ":" + parsed.Code
	}
	return parsed.Code
}
