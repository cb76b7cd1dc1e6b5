package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"sort"
	"strconv"
	"time"

	"github.com/damon-houk/fx-monitor/internal/domain/entity"
	"github.com/damon-houk/fx-monitor/internal/domain/reference"
	"github.com/damon-houk/fx-monitor/internal/infrastructure/cache"
)

const (
	// FREDSourceName labels quotes and series from the FRED economic-data API
	FREDSourceName = "FRED"

	fredBaseURL = "https://api.stlouisfed.org/fred"

	// fredMissingValue marks a day without an observation
	fredMissingValue = "."

	// fredSpotLookback is how many recent observations are scanned for the
	// latest valid value; holidays appear as missing values.
	fredSpotLookback = 10
)

type fredObservation struct {
	Date  string `json:"date"`
	Value string `json:"value"`
}

type fredObservationsResponse struct {
	Observations []fredObservation `json:"observations"`
}

// FREDClient serves USD-anchored pairs from the FRED H.10 daily series
type FREDClient struct {
	source
	apiKey  string
	mapping map[entity.CurrencyPair]entity.FredSeries
	spot    *cache.TTLCache[entity.HistoricalPoint]
	history *cache.TTLCache[[]entity.HistoricalPoint]
}

// NewFREDClient creates a client. Without an API key it is unavailable.
func NewFREDClient(apiKey string, opts ...Option) *FREDClient {
	o := buildOptions(fredBaseURL, referenceTTL, referenceTTL, opts)
	c := &FREDClient{
		source:  newSource(FREDSourceName, o),
		apiKey:  apiKey,
		mapping: reference.FredSeriesMapping,
	}
	c.spot = cache.NewTTLCache[entity.HistoricalPoint]("fred_spot", o.ttl, c.cacheOptions()...)
	c.history = cache.NewTTLCache[[]entity.HistoricalPoint]("fred_history", o.historyTTL, c.cacheOptions()...)
	return c
}

// Supports reports whether the pair or its mirror is mapped and a key is set
func (c *FREDClient) Supports(pair entity.CurrencyPair) bool {
	if c.apiKey == "" {
		return false
	}
	_, _, ok := reference.LookupFredSeries(c.mapping, pair)
	return ok
}

// orient converts a raw provider value into a rate for the requested pair.
// The mapping's invert flag and a mirrored lookup each flip the value once,
// so both together leave it unchanged.
func orient(raw float64, series entity.FredSeries, mirrored bool) float64 {
	rate := raw
	if series.Invert {
		rate = 1 / rate
	}
	if mirrored {
		rate = 1 / rate
	}
	return rate
}

func (c *FREDClient) resolve(operation string, pair entity.CurrencyPair) (entity.FredSeries, bool, bool) {
	if c.apiKey == "" {
		c.skipped(operation, pair, "no api key configured")
		return entity.FredSeries{}, false, false
	}
	series, mirrored, ok := reference.LookupFredSeries(c.mapping, pair)
	if !ok {
		c.skipped(operation, pair, "pair not mapped to a series")
		return entity.FredSeries{}, false, false
	}
	return series, mirrored, true
}

// FetchRate returns the most recent valid observation for pair
func (c *FREDClient) FetchRate(ctx context.Context, pair entity.CurrencyPair) (entity.RateQuote, bool) {
	series, mirrored, ok := c.resolve(operationRate, pair)
	if !ok {
		return entity.RateQuote{}, false
	}

	latest, ok := c.spot.Get(series.SeriesID)
	if !ok {
		q := url.Values{}
		q.Set("sort_order", "desc")
		q.Set("limit", strconv.Itoa(fredSpotLookback))

		points, err := c.observations(ctx, series.SeriesID, q)
		if err != nil {
			c.unavailable(operationRate, pair, "request failed", err)
			return entity.RateQuote{}, false
		}
		if len(points) == 0 {
			c.unavailable(operationRate, pair, "no recent observations", nil)
			return entity.RateQuote{}, false
		}

		// points are sorted ascending
		latest = points[len(points)-1]
		c.spot.Put(series.SeriesID, latest)
	}

	c.succeeded(operationRate)
	return entity.RateQuote{
		Pair:      pair,
		Rate:      orient(latest.Rate, series, mirrored),
		Date:      latest.Date,
		FetchedAt: c.clock(),
		Source:    c.name,
	}, true
}

// FetchHistory returns observations from days calendar days ago through today
func (c *FREDClient) FetchHistory(ctx context.Context, pair entity.CurrencyPair, days int) (entity.HistoricalSeries, bool) {
	series, mirrored, ok := c.resolve(operationHistory, pair)
	if !ok {
		return entity.HistoricalSeries{}, false
	}
	if days <= 0 {
		c.unavailable(operationHistory, pair, "non-positive window", nil)
		return entity.HistoricalSeries{}, false
	}

	end := calendarDay(c.clock())
	start := end.AddDate(0, 0, -days)
	key := fmt.Sprintf("%s:%s:%s", series.SeriesID, start.Format(entity.DateLayout), end.Format(entity.DateLayout))

	raw, ok := c.history.Get(key)
	if !ok {
		q := url.Values{}
		q.Set("observation_start", start.Format(entity.DateLayout))
		q.Set("observation_end", end.Format(entity.DateLayout))

		points, err := c.observations(ctx, series.SeriesID, q)
		if err != nil {
			c.unavailable(operationHistory, pair, "request failed", err)
			return entity.HistoricalSeries{}, false
		}
		raw = points
		c.history.Put(key, raw)
	}

	points := make([]entity.HistoricalPoint, len(raw))
	for i, p := range raw {
		points[i] = entity.HistoricalPoint{Date: p.Date, Rate: orient(p.Rate, series, mirrored)}
	}

	c.succeeded(operationHistory)
	return entity.HistoricalSeries{Pair: pair, Source: c.name, Points: points}, true
}

// observations fetches a series and returns its valid points in date order.
// Missing-value markers and unparsable values are dropped.
func (c *FREDClient) observations(ctx context.Context, seriesID string, q url.Values) ([]entity.HistoricalPoint, error) {
	q.Set("series_id", seriesID)
	q.Set("api_key", c.apiKey)
	q.Set("file_type", "json")

	body, err := c.get(ctx, c.baseURL+"/series/observations?"+q.Encode(), "application/json")
	if err != nil {
		return nil, err
	}

	var resp fredObservationsResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("failed to decode observations: %w", err)
	}

	points := make([]entity.HistoricalPoint, 0, len(resp.Observations))
	for _, o := range resp.Observations {
		if o.Value == fredMissingValue {
			continue
		}
		value, err := strconv.ParseFloat(o.Value, 64)
		if err != nil || !entity.ValidRate(value) {
			continue
		}
		date, err := time.Parse(entity.DateLayout, o.Date)
		if err != nil {
			continue
		}
		points = append(points, entity.HistoricalPoint{Date: date, Rate: value})
	}
	sort.Slice(points, func(i, j int) bool { return points[i].Date.Before(points[j].Date) })

	return points, nil
}
