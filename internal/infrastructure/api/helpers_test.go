package api

import (
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/damon-houk/fx-monitor/internal/infrastructure/cache"
	"github.com/damon-houk/fx-monitor/internal/infrastructure/logger"
)

var testNow = time.Date(2025, 1, 15, 12, 0, 0, 0, time.UTC)

// countingServer serves handler and counts how many requests reached it
func countingServer(t *testing.T, handler http.HandlerFunc) (*httptest.Server, *int32) {
	t.Helper()
	var hits int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&hits, 1)
		handler(w, r)
	}))
	t.Cleanup(server.Close)
	return server, &hits
}

func testOptions(baseURL string, clock *cache.ManualClock) []Option {
	return []Option{
		WithBaseURL(baseURL),
		WithClock(clock.Now),
		WithLogger(logger.NewNopLogger()),
		WithTimeout(2 * time.Second),
	}
}
