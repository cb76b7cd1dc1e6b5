// Package service declares the capabilities of the upstream data sources
package service

import (
	"context"
	"time"

	"github.com/damon-houk/fx-monitor/internal/domain/entity"
)

// RateSource fetches a spot rate for a pair. A false result means the source
// is unavailable for this call; the reason is logged by the source itself.
type RateSource interface {
	Name() string
	FetchRate(ctx context.Context, pair entity.CurrencyPair) (entity.RateQuote, bool)
}

// HistorySource fetches a daily series covering the last days calendar days
type HistorySource interface {
	Name() string
	FetchHistory(ctx context.Context, pair entity.CurrencyPair, days int) (entity.HistoricalSeries, bool)
}

// EconomicDataSource is a rate and history source with a fixed pair coverage
type EconomicDataSource interface {
	RateSource
	HistorySource

	// Supports reports whether the pair, or its mirror, can be served
	Supports(pair entity.CurrencyPair) bool
}

// GenerationRequest is a single prompt sent to a text generation model
type GenerationRequest struct {
	Prompt    string
	MaxTokens int
	WebSearch bool
	Timeout   time.Duration
}

// WebResult is a search hit returned alongside a research answer
type WebResult struct {
	Title string
	URL   string
}

// Generation is the text and any search hits produced for a request
type Generation struct {
	Text    string
	Results []WebResult
}

// TextGenerator produces model output for a prompt
type TextGenerator interface {
	Generate(ctx context.Context, req GenerationRequest) (*Generation, error)
}

// HeadlineSource returns recent headlines mentioning any of the given codes
type HeadlineSource interface {
	Headlines(ctx context.Context, codes []entity.CurrencyCode, limit int) []entity.Headline
}
