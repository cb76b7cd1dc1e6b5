package entity

import (
	"fmt"
	"math"
	"strings"
	"time"
)

// DateLayout is the calendar-day format used by every upstream provider
const DateLayout = "2006-01-02"

// CurrencyCode is an upper-cased ISO-4217 style code. It is not checked
// against a whitelist; unknown codes are rejected by the upstream providers.
type CurrencyCode string

// USD and EUR anchor the economic-data mapping and the ECB table
const (
	USD CurrencyCode = "USD"
	EUR CurrencyCode = "EUR"
)

// ParseCurrencyCode normalizes a raw path segment into a CurrencyCode
func ParseCurrencyCode(raw string) CurrencyCode {
	return CurrencyCode(strings.ToUpper(strings.TrimSpace(raw)))
}

// CurrencyPair is an ordered (base, quote) pair. A rate for the pair is the
// number of quote units per one base unit.
type CurrencyPair struct {
	Base  CurrencyCode `json:"base"`
	Quote CurrencyCode `json:"quote"`
}

// NewCurrencyPair builds a normalized pair from raw codes
func NewCurrencyPair(base, quote string) CurrencyPair {
	return CurrencyPair{Base: ParseCurrencyCode(base), Quote: ParseCurrencyCode(quote)}
}

// Inverse returns the pair with base and quote swapped
func (p CurrencyPair) Inverse() CurrencyPair {
	return CurrencyPair{Base: p.Quote, Quote: p.Base}
}

func (p CurrencyPair) String() string {
	return fmt.Sprintf("%s/%s", p.Base, p.Quote)
}

// ValidRate reports whether a provider value can be served as a rate
func ValidRate(rate float64) bool {
	return rate > 0 && !math.IsInf(rate, 0) && !math.IsNaN(rate)
}

// RateQuote is a single pair rate as reported by one source
type RateQuote struct {
	Pair      CurrencyPair `json:"pair"`
	Rate      float64      `json:"rate"`
	Date      time.Time    `json:"date"`
	FetchedAt time.Time    `json:"fetched_at"`
	Source    string       `json:"source"`
}

// HistoricalPoint is one trading day of a historical series
type HistoricalPoint struct {
	Date time.Time `json:"date"`
	Rate float64   `json:"rate"`
}

// HistoricalSeries holds date-ascending points for a pair from one source.
// Gaps (weekends, holidays) are left as they come from upstream.
type HistoricalSeries struct {
	Pair   CurrencyPair      `json:"pair"`
	Source string            `json:"source"`
	Points []HistoricalPoint `json:"points"`
}

// Tail returns the last n points, or the whole series if it is shorter
func (s HistoricalSeries) Tail(n int) []HistoricalPoint {
	if n <= 0 {
		return nil
	}
	if len(s.Points) <= n {
		return s.Points
	}
	return s.Points[len(s.Points)-n:]
}

// SeriesSummary carries the open/close of a window and its points
type SeriesSummary struct {
	Open   float64
	Close  float64
	Points []HistoricalPoint
}

// Summarize computes open and close over points. An empty window yields zeros.
func Summarize(points []HistoricalPoint) SeriesSummary {
	if len(points) == 0 {
		return SeriesSummary{Points: []HistoricalPoint{}}
	}
	return SeriesSummary{
		Open:   points[0].Rate,
		Close:  points[len(points)-1].Rate,
		Points: points,
	}
}
