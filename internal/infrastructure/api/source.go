// Package api contains the clients for the upstream FX, reference-rate,
// economic-data, news and text generation services.
package api

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/damon-houk/fx-monitor/internal/domain/entity"
	"github.com/damon-houk/fx-monitor/internal/infrastructure/cache"
	"github.com/damon-houk/fx-monitor/internal/infrastructure/logger"
	"github.com/damon-houk/fx-monitor/internal/infrastructure/metrics"
)

const (
	defaultTimeout = 10 * time.Second
	maxBodySize    = 4 << 20

	operationRate    = "rate"
	operationHistory = "history"
)

// Option configures a source client
type Option func(*options)

type options struct {
	baseURL    string
	httpClient *http.Client
	clock      cache.Clock
	logger     logger.Logger
	metrics    *metrics.Metrics
	ttl        time.Duration
	historyTTL time.Duration
}

// WithBaseURL points the client at a different host, e.g. a test server
func WithBaseURL(u string) Option {
	return func(o *options) { o.baseURL = strings.TrimRight(u, "/") }
}

// WithHTTPClient replaces the default client and its timeout
func WithHTTPClient(c *http.Client) Option {
	return func(o *options) { o.httpClient = c }
}

// WithTimeout sets the timeout of the default client
func WithTimeout(d time.Duration) Option {
	return func(o *options) {
		if d > 0 {
			o.httpClient = &http.Client{Timeout: d}
		}
	}
}

// WithClock injects the clock used for cache expiry and request windows
func WithClock(c cache.Clock) Option {
	return func(o *options) { o.clock = c }
}

// WithLogger sets the logger
func WithLogger(l logger.Logger) Option {
	return func(o *options) { o.logger = l }
}

// WithMetrics records call outcomes and cache lookups
func WithMetrics(m *metrics.Metrics) Option {
	return func(o *options) { o.metrics = m }
}

// WithTTL overrides the spot cache lifetime
func WithTTL(d time.Duration) Option {
	return func(o *options) {
		if d > 0 {
			o.ttl = d
		}
	}
}

// WithHistoryTTL overrides the history cache lifetime
func WithHistoryTTL(d time.Duration) Option {
	return func(o *options) {
		if d > 0 {
			o.historyTTL = d
		}
	}
}

func buildOptions(baseURL string, ttl, historyTTL time.Duration, opts []Option) options {
	o := options{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: defaultTimeout},
		clock:      cache.SystemClock,
		ttl:        ttl,
		historyTTL: historyTTL,
	}
	for _, opt := range opts {
		opt(&o)
	}
	o.logger = logger.OrDefault(o.logger)
	return o
}

// source holds what every upstream client needs: transport, clock, logging
// and outcome accounting.
type source struct {
	name       string
	baseURL    string
	httpClient *http.Client
	clock      cache.Clock
	log        logger.Logger
	metrics    *metrics.Metrics
}

func newSource(name string, o options) source {
	return source{
		name:       name,
		baseURL:    o.baseURL,
		httpClient: o.httpClient,
		clock:      o.clock,
		log:        o.logger.WithField("source", name),
		metrics:    o.metrics,
	}
}

// cacheOptions wires the shared clock and metrics into a source cache.
// A nil *metrics.Metrics observer records nothing.
func (s *source) cacheOptions() []cache.Option {
	return []cache.Option{cache.WithClock(s.clock), cache.WithObserver(s.metrics)}
}

// Name returns the label attached to every quote and series
func (s *source) Name() string {
	return s.name
}

func (s *source) succeeded(operation string) {
	s.metrics.ObserveSource(s.name, operation, metrics.OutcomeOK)
}

// unavailable logs why the call could not be served and counts it
func (s *source) unavailable(operation string, pair entity.CurrencyPair, reason string, err error) {
	fields := map[string]interface{}{
		"operation": operation,
		"pair":      pair.String(),
		"reason":    reason,
	}
	if err != nil {
		fields["error"] = err.Error()
	}
	s.log.Warn("Source unavailable", fields)
	s.metrics.ObserveSource(s.name, operation, metrics.OutcomeUnavailable)
}

// skipped counts calls that were answered without contacting upstream
func (s *source) skipped(operation string, pair entity.CurrencyPair, reason string) {
	s.log.Debug("Source skipped", map[string]interface{}{
		"operation": operation,
		"pair":      pair.String(),
		"reason":    reason,
	})
	s.metrics.ObserveSource(s.name, operation, metrics.OutcomeSkipped)
}

// get performs a single GET without retries and returns the body of a 200 response
func (s *source) get(ctx context.Context, reqURL, accept string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", accept)

	resp, err := s.httpClient.Do(req)
	if err != nil {
		// url.Error embeds the request URL, which may carry an API key
		var urlErr *url.Error
		if errors.As(err, &urlErr) {
			err = urlErr.Err
		}
		return nil, fmt.Errorf("failed to execute request: %w", err)
	}
	defer func() {
		if closeErr := resp.Body.Close(); closeErr != nil {
			s.log.Debug("Error closing response body", map[string]interface{}{"error": closeErr.Error()})
		}
	}()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("upstream returned status %d: %s", resp.StatusCode, truncate(string(body), 200))
	}

	return body, nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}

func calendarDay(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
