// internal/infrastructure/handler/integration_test.go
package handler_test

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/damon-houk/fx-monitor/internal/application/service"
	"github.com/damon-houk/fx-monitor/internal/domain/entity"
	"github.com/damon-houk/fx-monitor/internal/domain/reference"
	"github.com/damon-houk/fx-monitor/internal/infrastructure/api"
	"github.com/damon-houk/fx-monitor/internal/infrastructure/cache"
	"github.com/damon-houk/fx-monitor/internal/infrastructure/db"
	"github.com/damon-houk/fx-monitor/internal/infrastructure/handler"
	"github.com/damon-houk/fx-monitor/internal/infrastructure/logger"
	"github.com/damon-houk/fx-monitor/internal/infrastructure/metrics"
)

const ecbFeed = `<?xml version="1.0" encoding="UTF-8"?>
<gesmes:Envelope xmlns:gesmes="http://www.gesmes.org/xml/2002-08-01" xmlns="http://www.ecb.int/vocabulary/2002-08-01/eurofxref">
	<Cube>
		<Cube time="2025-01-14">
			<Cube currency="USD" rate="1.0250"/>
			<Cube currency="JPY" rate="161.50"/>
		</Cube>
	</Cube>
</gesmes:Envelope>`

const modelReply = `{"content":[{"type":"text","text":"` +
	"```json\\n{\\\"shortTerm\\\":{\\\"trend\\\":\\\"Bullish\\\",\\\"summary\\\":\\\"s\\\",\\\"details\\\":\\\"d\\\",\\\"sources\\\":[]},\\\"longTerm\\\":{\\\"trend\\\":\\\"Neutral\\\",\\\"summary\\\":\\\"l\\\",\\\"details\\\":\\\"d\\\",\\\"sources\\\":[]}}\\n```" +
	`"}]}`

// fakeUpstreams serves the free mirror, the ECB feed and the text generator
func fakeUpstreams(t *testing.T, mirrorUp bool) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/ecb.xml", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/xml")
		io.WriteString(w, ecbFeed)
	})
	mux.HandleFunc("/messages", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		io.WriteString(w, modelReply)
	})
	mux.HandleFunc("/mirror/", func(w http.ResponseWriter, r *http.Request) {
		if !mirrorUp {
			http.Error(w, "down", http.StatusBadGateway)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		if strings.HasSuffix(r.URL.Path, "/latest") {
			io.WriteString(w, `{"amount":1.0,"base":"EUR","date":"2025-01-14","rates":{"USD":1.0262}}`)
			return
		}
		io.WriteString(w, `{"amount":1.0,"base":"EUR","start_date":"2025-01-08","end_date":"2025-01-14","rates":{
			"2025-01-08":{"USD":1.031},
			"2025-01-09":{"USD":1.030},
			"2025-01-10":{"USD":1.024},
			"2025-01-13":{"USD":1.021},
			"2025-01-14":{"USD":1.026},
			"2025-01-15":{"USD":1.029}}}`)
	})
	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)
	return server
}

// setupTestServer wires the real services and adapters against fake upstreams
func setupTestServer(t *testing.T, mirrorUp bool) *httptest.Server {
	t.Helper()
	return setupTestServerWithKey(t, mirrorUp, "test-key")
}

// setupTestServerWithKey is setupTestServer with a chosen generator API key
func setupTestServerWithKey(t *testing.T, mirrorUp bool, apiKey string) *httptest.Server {
	t.Helper()
	upstream := fakeUpstreams(t, mirrorUp)
	clock := cache.NewManualClock(time.Date(2025, 1, 15, 12, 0, 0, 0, time.UTC))
	log := logger.NewNopLogger()
	m := metrics.NewMetrics()

	common := []api.Option{api.WithClock(clock.Now), api.WithLogger(log), api.WithMetrics(m), api.WithTimeout(2 * time.Second)}

	commercial := api.NewCommercialClient("demo", common...)
	mirror := api.NewFrankfurterClient(append(common, api.WithBaseURL(upstream.URL+"/mirror"))...)
	ecb := api.NewECBClient(append(common, api.WithBaseURL(upstream.URL+"/ecb.xml"))...)
	fred := api.NewFREDClient("", common...)
	generator := api.NewAnthropicClient(apiKey,
		api.WithAnthropicBaseURL(upstream.URL),
		api.WithAnthropicLogger(log))

	badgerDB, err := db.OpenInMemory()
	require.NoError(t, err)
	t.Cleanup(func() { badgerDB.Close() })

	rates := service.NewRateService(commercial, mirror, ecb, fred, log)
	history := service.NewHistoryService(mirror, fred, log)
	interest := service.NewInterestService(reference.NewInterestRateTable(), clock.Now)
	analysis := service.NewAnalysisService(rates, interest, generator,
		db.NewBadgerAnalysisRepository(badgerDB, time.Hour, clock.Now), log,
		service.WithAnalysisMetrics(m))

	router := handler.NewRouter(handler.RouterConfig{
		Handlers: []handler.RouteRegistrar{
			handler.NewRateHandler(rates, history, log),
			handler.NewInterestHandler(interest, log),
			handler.NewAnalysisHandler(analysis, log),
		},
		Metrics: m,
		Logger:  log,
	})

	server := httptest.NewServer(router)
	t.Cleanup(server.Close)
	return server
}

func getJSON(t *testing.T, url string, out interface{}) *http.Response {
	t.Helper()
	resp, err := http.Get(url)
	require.NoError(t, err)
	defer resp.Body.Close()
	if out != nil {
		require.NoError(t, json.NewDecoder(resp.Body).Decode(out))
	}
	return resp
}

func TestRateEndpoints(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	server := setupTestServer(t, true)

	t.Run("Spot rate from the free mirror with ECB enrichment", func(t *testing.T) {
		var rate handler.RateResponse
		resp := getJSON(t, server.URL+"/api/rates/eur/usd", &rate)

		assert.Equal(t, http.StatusOK, resp.StatusCode)
		assert.NotEmpty(t, resp.Header.Get("X-Request-ID"))
		assert.Equal(t, "EUR", rate.Base)
		assert.Equal(t, "USD", rate.Quote)
		assert.Equal(t, api.FrankfurterSourceName, rate.Source)
		assert.Equal(t, 1.0262, rate.Rate)
		require.NotNil(t, rate.ECBRate)
		assert.Equal(t, 1.0250, *rate.ECBRate)
		assert.Equal(t, "2025-01-14", rate.ECBDate)
		assert.Equal(t, api.ECBSourceName, rate.ECBSource)
		assert.Nil(t, rate.FREDRate)
	})

	t.Run("History uses the mirror for non-USD bases", func(t *testing.T) {
		var history handler.HistoryResponse
		resp := getJSON(t, server.URL+"/api/rates/EUR/USD/history?days=7", &history)

		assert.Equal(t, http.StatusOK, resp.StatusCode)
		assert.Equal(t, service.HistoryLabelECB, history.Source)
		assert.Len(t, history.ThreeMonth.Data, 6)
		assert.Equal(t, 1.031, history.ThreeMonth.Open)
		assert.Equal(t, 1.029, history.ThreeMonth.Close)
		assert.Len(t, history.Daily.Data, 5)
		assert.Equal(t, "2025-01-09", history.Daily.Data[0].Time)
		assert.Equal(t, 1.030, history.Daily.Open)
		assert.Nil(t, history.FREDHistory)
	})

	t.Run("Invalid days is a bad request", func(t *testing.T) {
		for _, days := range []string{"abc", "0", "-3"} {
			var errResp handler.ErrorResponse
			resp := getJSON(t, server.URL+"/api/rates/EUR/USD/history?days="+days, &errResp)
			assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
			assert.Equal(t, http.StatusBadRequest, errResp.Status)
		}
	})
}

func TestRateEndpointsUnavailable(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	server := setupTestServer(t, false)

	var errResp handler.ErrorResponse
	resp := getJSON(t, server.URL+"/api/rates/EUR/USD", &errResp)
	assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
	assert.Equal(t, "Unable to fetch exchange rate", errResp.Error)
	assert.NotEmpty(t, errResp.RequestID)

	resp = getJSON(t, server.URL+"/api/rates/EUR/USD/history", &errResp)
	assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
	assert.Equal(t, "Unable to fetch historical data", errResp.Error)
}

func TestInterestEndpoints(t *testing.T) {
	server := setupTestServer(t, true)

	var pair handler.PairInterestResponse
	resp := getJSON(t, server.URL+"/api/interest-rates/usd/xyz", &pair)

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "USD", pair.Base)
	assert.Equal(t, 4.25, pair.BaseRate)
	assert.Equal(t, "Federal Reserve", pair.BaseBank)
	assert.Equal(t, "2025-12-18", pair.BaseLastChange)
	assert.Equal(t, "Unknown", pair.QuoteBank)
	assert.Equal(t, "N/A", pair.QuoteLastChange)
	assert.Equal(t, "unchanged", pair.QuoteLastDecision)
	assert.Equal(t, 0, pair.QuoteDaysAtRate)
	assert.Equal(t, 4.25, pair.Differential)

	var all map[string]handler.InterestRateEntry
	resp = getJSON(t, server.URL+"/api/interest-rates/", &all)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, all, "JPY")
	assert.Equal(t, "Bank of Japan", all["JPY"].Bank)
	assert.Equal(t, "up", all["JPY"].LastDecision)
}

func TestAnalysisEndpoint(t *testing.T) {
	server := setupTestServer(t, true)

	var analysis entity.Analysis
	resp := getJSON(t, server.URL+"/api/ai/analyze/EUR/USD?style=technical&sources=interest_rates,bogus", &analysis)

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, entity.TrendBullish, analysis.ShortTerm.Trend)
	assert.Equal(t, entity.TrendNeutral, analysis.LongTerm.Trend)
}

func TestAnalysisEndpointWithoutAPIKey(t *testing.T) {
	server := setupTestServerWithKey(t, true, "")

	var analysis entity.Analysis
	resp := getJSON(t, server.URL+"/api/ai/analyze/EUR/USD", &analysis)

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, entity.FallbackAnalysis(), analysis)
	assert.Equal(t, entity.TrendNeutral, analysis.ShortTerm.Trend)
	assert.Equal(t, entity.TrendNeutral, analysis.LongTerm.Trend)

	body := scrapeMetrics(t, server.URL)
	assert.Contains(t, body, `fx_analysis_requests_total{outcome="fallback"} 1`)
}

func scrapeMetrics(t *testing.T, baseURL string) string {
	t.Helper()
	resp, err := http.Get(baseURL + "/metrics")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return string(body)
}

func TestUnmatchedRequests(t *testing.T) {
	server := setupTestServer(t, true)

	var errResp handler.ErrorResponse
	resp := getJSON(t, server.URL+"/api/unknown", &errResp)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Equal(t, http.StatusNotFound, errResp.Status)
	assert.NotEmpty(t, errResp.RequestID)

	post, err := http.Post(server.URL+"/api/rates/EUR/USD", "application/json", nil)
	require.NoError(t, err)
	post.Body.Close()
	assert.Equal(t, http.StatusMethodNotAllowed, post.StatusCode)

	body := scrapeMetrics(t, server.URL)
	assert.Contains(t, body, `fx_http_requests_total{method="GET",path="unmatched",status_code="404"} 1`)
	assert.Contains(t, body, `fx_http_requests_total{method="POST",path="unmatched",status_code="405"} 1`)
}

func TestHealthAndMetrics(t *testing.T) {
	server := setupTestServer(t, true)

	var health map[string]string
	resp := getJSON(t, server.URL+"/health", &health)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "healthy", health["status"])

	getJSON(t, server.URL+"/api/interest-rates/EUR/USD", nil)

	resp, err := http.Get(server.URL + "/metrics")
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(body), `fx_http_requests_total{method="GET",path="/api/interest-rates/{base}/{quote}",status_code="200"} 1`)
}
