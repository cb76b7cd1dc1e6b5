package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"sort"
	"time"

	"github.com/damon-houk/fx-monitor/internal/domain/entity"
	"github.com/damon-houk/fx-monitor/internal/infrastructure/cache"
)

const (
	// FrankfurterSourceName labels quotes from the free ECB mirror
	FrankfurterSourceName = "Frankfurter"

	frankfurterBaseURL = "https://api.frankfurter.app"
	referenceTTL       = 3600 * time.Second
)

// FrankfurterClient reads spot and daily history from the Frankfurter API,
// which republishes ECB reference rates with cross-rate support.
type FrankfurterClient struct {
	source
	spot    *cache.TTLCache[entity.RateQuote]
	history *cache.TTLCache[entity.HistoricalSeries]
}

type frankfurterLatestResponse struct {
	Amount float64            `json:"amount"`
	Base   string             `json:"base"`
	Date   string             `json:"date"`
	Rates  map[string]float64 `json:"rates"`
}

type frankfurterRangeResponse struct {
	Amount    float64                       `json:"amount"`
	Base      string                        `json:"base"`
	StartDate string                        `json:"start_date"`
	EndDate   string                        `json:"end_date"`
	Rates     map[string]map[string]float64 `json:"rates"`
}

// NewFrankfurterClient creates a client for the free mirror
func NewFrankfurterClient(opts ...Option) *FrankfurterClient {
	o := buildOptions(frankfurterBaseURL, spotTTL, referenceTTL, opts)
	c := &FrankfurterClient{source: newSource(FrankfurterSourceName, o)}
	c.spot = cache.NewTTLCache[entity.RateQuote]("mirror_spot", o.ttl, c.cacheOptions()...)
	c.history = cache.NewTTLCache[entity.HistoricalSeries]("mirror_history", o.historyTTL, c.cacheOptions()...)
	return c
}

func pairQuery(pair entity.CurrencyPair) string {
	q := url.Values{}
	q.Set("from", string(pair.Base))
	q.Set("to", string(pair.Quote))
	return q.Encode()
}

// FetchRate returns the latest reference rate for pair
func (c *FrankfurterClient) FetchRate(ctx context.Context, pair entity.CurrencyPair) (entity.RateQuote, bool) {
	key := pair.String()
	if cached, ok := c.spot.Get(key); ok {
		return cached, true
	}

	body, err := c.get(ctx, c.baseURL+"/latest?"+pairQuery(pair), "application/json")
	if err != nil {
		c.unavailable(operationRate, pair, "request failed", err)
		return entity.RateQuote{}, false
	}

	var resp frankfurterLatestResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		c.unavailable(operationRate, pair, "failed to decode response", err)
		return entity.RateQuote{}, false
	}

	rate, ok := resp.Rates[string(pair.Quote)]
	if !ok || !entity.ValidRate(rate) {
		c.unavailable(operationRate, pair, "quote currency missing from response", nil)
		return entity.RateQuote{}, false
	}

	now := c.clock()
	date, err := time.Parse(entity.DateLayout, resp.Date)
	if err != nil {
		date = calendarDay(now)
	}

	quote := entity.RateQuote{
		Pair:      pair,
		Rate:      rate,
		Date:      date,
		FetchedAt: now,
		Source:    c.name,
	}
	c.spot.Put(key, quote)
	c.succeeded(operationRate)

	return quote, true
}

// FetchHistory returns daily rates from days calendar days ago through today
func (c *FrankfurterClient) FetchHistory(ctx context.Context, pair entity.CurrencyPair, days int) (entity.HistoricalSeries, bool) {
	if days <= 0 {
		c.unavailable(operationHistory, pair, "non-positive window", nil)
		return entity.HistoricalSeries{}, false
	}

	end := calendarDay(c.clock())
	start := end.AddDate(0, 0, -days)
	key := fmt.Sprintf("%s:%d:%s", pair, days, end.Format(entity.DateLayout))
	if cached, ok := c.history.Get(key); ok {
		return cached, true
	}

	reqURL := fmt.Sprintf("%s/%s..%s?%s",
		c.baseURL,
		start.Format(entity.DateLayout),
		end.Format(entity.DateLayout),
		pairQuery(pair))

	body, err := c.get(ctx, reqURL, "application/json")
	if err != nil {
		c.unavailable(operationHistory, pair, "request failed", err)
		return entity.HistoricalSeries{}, false
	}

	var resp frankfurterRangeResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		c.unavailable(operationHistory, pair, "failed to decode response", err)
		return entity.HistoricalSeries{}, false
	}

	points := make([]entity.HistoricalPoint, 0, len(resp.Rates))
	for day, rates := range resp.Rates {
		rate, ok := rates[string(pair.Quote)]
		if !ok || !entity.ValidRate(rate) {
			continue
		}
		date, err := time.Parse(entity.DateLayout, day)
		if err != nil {
			continue
		}
		points = append(points, entity.HistoricalPoint{Date: date, Rate: rate})
	}
	sort.Slice(points, func(i, j int) bool { return points[i].Date.Before(points[j].Date) })

	series := entity.HistoricalSeries{Pair: pair, Source: c.name, Points: points}
	c.history.Put(key, series)
	c.succeeded(operationHistory)

	return series, true
}
