package api

import (
	"context"
	"encoding/xml"
	"fmt"
	"time"

	"github.com/damon-houk/fx-monitor/internal/domain/entity"
	"github.com/damon-houk/fx-monitor/internal/infrastructure/cache"
)

const (
	// ECBSourceName labels quotes computed from the ECB daily reference feed
	ECBSourceName = "ECB"

	ecbDailyURL = "https://www.ecb.europa.eu/stats/eurofxref/eurofxref-daily.xml"
	ecbTableKey = "daily"
)

// ecbEnvelope matches the gesmes envelope of eurofxref-daily.xml.
// Element names are matched without their namespaces.
type ecbEnvelope struct {
	XMLName xml.Name `xml:"Envelope"`
	Cube    struct {
		Days []struct {
			Time  string `xml:"time,attr"`
			Rates []struct {
				Currency string  `xml:"currency,attr"`
				Rate     float64 `xml:"rate,attr"`
			} `xml:"Cube"`
		} `xml:"Cube"`
	} `xml:"Cube"`
}

// ECBTable is one day of euro reference rates, EUR included at 1.0
type ECBTable struct {
	Date  time.Time
	Rates map[entity.CurrencyCode]float64
}

// Resolve derives a pair rate from the euro-based table. Pairs that touch EUR
// are read directly or inverted; other pairs are crossed through EUR.
func (t ECBTable) Resolve(pair entity.CurrencyPair) (float64, bool) {
	switch {
	case pair.Base == entity.EUR:
		rate, ok := t.Rates[pair.Quote]
		return rate, ok && entity.ValidRate(rate)
	case pair.Quote == entity.EUR:
		rate, ok := t.Rates[pair.Base]
		if !ok || !entity.ValidRate(rate) {
			return 0, false
		}
		return 1 / rate, true
	}

	baseRate, baseOK := t.Rates[pair.Base]
	quoteRate, quoteOK := t.Rates[pair.Quote]
	if !baseOK || !quoteOK || !entity.ValidRate(baseRate) || !entity.ValidRate(quoteRate) {
		return 0, false
	}
	return quoteRate / baseRate, true
}

// ECBClient reads the ECB daily XML feed. The whole table is cached under a
// single key so every pair shares one upstream call per TTL.
type ECBClient struct {
	source
	cache *cache.TTLCache[ECBTable]
}

// NewECBClient creates a client; WithBaseURL replaces the full feed URL
func NewECBClient(opts ...Option) *ECBClient {
	o := buildOptions(ecbDailyURL, referenceTTL, 0, opts)
	c := &ECBClient{source: newSource(ECBSourceName, o)}
	c.cache = cache.NewTTLCache[ECBTable]("ecb_daily", o.ttl, c.cacheOptions()...)
	return c
}

// ParseECBDaily decodes the daily feed into a table
func ParseECBDaily(data []byte) (ECBTable, error) {
	var env ecbEnvelope
	if err := xml.Unmarshal(data, &env); err != nil {
		return ECBTable{}, fmt.Errorf("failed to decode ECB feed: %w", err)
	}
	if len(env.Cube.Days) == 0 {
		return ECBTable{}, fmt.Errorf("ECB feed contains no rates")
	}

	day := env.Cube.Days[0]
	date, err := time.Parse(entity.DateLayout, day.Time)
	if err != nil {
		return ECBTable{}, fmt.Errorf("invalid ECB date %q: %w", day.Time, err)
	}

	table := ECBTable{
		Date:  date,
		Rates: map[entity.CurrencyCode]float64{entity.EUR: 1.0},
	}
	for _, r := range day.Rates {
		if r.Currency == "" || !entity.ValidRate(r.Rate) {
			continue
		}
		table.Rates[entity.ParseCurrencyCode(r.Currency)] = r.Rate
	}

	return table, nil
}

func (c *ECBClient) table(ctx context.Context, pair entity.CurrencyPair) (ECBTable, bool) {
	if cached, ok := c.cache.Get(ecbTableKey); ok {
		return cached, true
	}

	body, err := c.get(ctx, c.baseURL, "application/xml")
	if err != nil {
		c.unavailable(operationRate, pair, "request failed", err)
		return ECBTable{}, false
	}

	table, err := ParseECBDaily(body)
	if err != nil {
		c.unavailable(operationRate, pair, "failed to parse feed", err)
		return ECBTable{}, false
	}

	c.cache.Put(ecbTableKey, table)
	return table, true
}

// FetchRate resolves pair against the latest reference table
func (c *ECBClient) FetchRate(ctx context.Context, pair entity.CurrencyPair) (entity.RateQuote, bool) {
	table, ok := c.table(ctx, pair)
	if !ok {
		return entity.RateQuote{}, false
	}

	rate, ok := table.Resolve(pair)
	if !ok {
		c.unavailable(operationRate, pair, "currency not in reference table", nil)
		return entity.RateQuote{}, false
	}

	c.succeeded(operationRate)
	return entity.RateQuote{
		Pair:      pair,
		Rate:      rate,
		Date:      table.Date,
		FetchedAt: c.clock(),
		Source:    c.name,
	}, true
}
