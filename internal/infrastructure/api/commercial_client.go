package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"time"

	"github.com/damon-houk/fx-monitor/internal/domain/entity"
	"github.com/damon-houk/fx-monitor/internal/infrastructure/cache"
)

const (
	// CommercialSourceName labels quotes from ExchangeRate-API
	CommercialSourceName = "ExchangeRate-API"

	commercialBaseURL = "https://v6.exchangerate-api.com/v6"
	demoAPIKey        = "demo"
	spotTTL           = 300 * time.Second
)

// CommercialClient fetches spot rates from the ExchangeRate-API v6 pair endpoint.
// Without a real API key it is always unavailable.
type CommercialClient struct {
	source
	apiKey string
	cache  *cache.TTLCache[entity.RateQuote]
}

type commercialPairResponse struct {
	Result             string  `json:"result"`
	ErrorType          string  `json:"error-type"`
	TimeLastUpdateUnix int64   `json:"time_last_update_unix"`
	BaseCode           string  `json:"base_code"`
	TargetCode         string  `json:"target_code"`
	ConversionRate     float64 `json:"conversion_rate"`
}

// NewCommercialClient creates a client. An empty or "demo" key disables it.
func NewCommercialClient(apiKey string, opts ...Option) *CommercialClient {
	o := buildOptions(commercialBaseURL, spotTTL, 0, opts)
	c := &CommercialClient{
		source: newSource(CommercialSourceName, o),
		apiKey: apiKey,
	}
	c.cache = cache.NewTTLCache[entity.RateQuote]("commercial_spot", o.ttl, c.cacheOptions()...)
	return c
}

// Enabled reports whether a usable API key is configured
func (c *CommercialClient) Enabled() bool {
	return c.apiKey != "" && c.apiKey != demoAPIKey
}

// FetchRate returns the current rate for pair
func (c *CommercialClient) FetchRate(ctx context.Context, pair entity.CurrencyPair) (entity.RateQuote, bool) {
	if !c.Enabled() {
		c.skipped(operationRate, pair, "no api key configured")
		return entity.RateQuote{}, false
	}

	key := pair.String()
	if cached, ok := c.cache.Get(key); ok {
		return cached, true
	}

	reqURL := fmt.Sprintf("%s/%s/pair/%s/%s",
		c.baseURL,
		url.PathEscape(c.apiKey),
		url.PathEscape(string(pair.Base)),
		url.PathEscape(string(pair.Quote)))

	body, err := c.get(ctx, reqURL, "application/json")
	if err != nil {
		c.unavailable(operationRate, pair, "request failed", err)
		return entity.RateQuote{}, false
	}

	var resp commercialPairResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		c.unavailable(operationRate, pair, "failed to decode response", err)
		return entity.RateQuote{}, false
	}

	if resp.Result != "success" {
		c.unavailable(operationRate, pair, "provider error: "+resp.ErrorType, nil)
		return entity.RateQuote{}, false
	}

	if !entity.ValidRate(resp.ConversionRate) {
		c.unavailable(operationRate, pair, fmt.Sprintf("invalid rate %v", resp.ConversionRate), nil)
		return entity.RateQuote{}, false
	}

	now := c.clock()
	date := calendarDay(now)
	if resp.TimeLastUpdateUnix > 0 {
		date = calendarDay(time.Unix(resp.TimeLastUpdateUnix, 0))
	}

	quote := entity.RateQuote{
		Pair:      pair,
		Rate:      resp.ConversionRate,
		Date:      date,
		FetchedAt: now,
		Source:    c.name,
	}
	c.cache.Put(key, quote)
	c.succeeded(operationRate)

	return quote, true
}
