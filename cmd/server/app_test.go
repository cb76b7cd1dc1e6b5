package main

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/damon-houk/fx-monitor/internal/config"
	"github.com/damon-houk/fx-monitor/internal/infrastructure/logger"
)

func testConfig(store string) *config.Config {
	return &config.Config{
		Server:  config.ServerConfig{Port: 8000},
		Logging: config.LoggingConfig{Level: "info"},
		Sources: config.SourcesConfig{
			Commercial: config.SourceConfig{APIKey: "demo", Timeout: time.Second},
			Mirror:     config.SourceConfig{Timeout: time.Second},
			ECB:        config.SourceConfig{Timeout: time.Second},
			FRED:       config.SourceConfig{Timeout: time.Second},
		},
		AI: config.AIConfig{CacheTTL: time.Hour, Store: store},
	}
}

func TestNewApp(t *testing.T) {
	for _, store := range []string{config.StoreBadger, config.StoreMemory} {
		t.Run(store, func(t *testing.T) {
			cfg := testConfig(store)
			a, err := newApp(cfg, logger.NewNopLogger())
			require.NoError(t, err)
			defer func() { assert.NoError(t, a.Close()) }()

			router := a.router(cfg, logger.NewNopLogger())

			w := httptest.NewRecorder()
			router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))
			assert.Equal(t, http.StatusOK, w.Code)
			assert.JSONEq(t, `{"status":"healthy"}`, w.Body.String())

			w = httptest.NewRecorder()
			router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/interest-rates/EUR/JPY", nil))
			assert.Equal(t, http.StatusOK, w.Code)
			assert.Contains(t, w.Body.String(), `"differential":2.25`)
		})
	}
}

func TestVersionCommand(t *testing.T) {
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetArgs([]string{"version"})
	t.Cleanup(func() { rootCmd.SetArgs(nil); rootCmd.SetOut(nil) })

	require.NoError(t, rootCmd.Execute())
	assert.Contains(t, out.String(), "fxmonitor dev")
}

func TestQueryCommandsLogToStderr(t *testing.T) {
	chdir(t, t.TempDir())

	var out, errOut bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&errOut)
	rootCmd.SetArgs([]string{"history", "EUR", "USD", "--days", "0"})
	t.Cleanup(func() {
		rootCmd.SetArgs(nil)
		rootCmd.SetOut(nil)
		rootCmd.SetErr(nil)
		historyCmd.Flags().Set("days", "90")
	})

	err := rootCmd.Execute()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "positive number of days")

	assert.Empty(t, out.String())
	assert.Contains(t, errOut.String(), `"Application wired"`)

	assert.Equal(t, serveCmd.OutOrStdout(), logOutput(serveCmd))
}

// chdir changes the working directory for the duration of the test and
// restores it on cleanup (equivalent to testing.T.Chdir on Go 1.24+).
func chdir(t *testing.T, dir string) {
	t.Helper()
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(wd) })
}
