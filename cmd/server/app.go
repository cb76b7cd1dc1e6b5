package main

import (
	"fmt"
	"net/http"

	"github.com/dgraph-io/badger/v3"

	"github.com/damon-houk/fx-monitor/internal/application/service"
	"github.com/damon-houk/fx-monitor/internal/config"
	"github.com/damon-houk/fx-monitor/internal/domain/entity"
	"github.com/damon-houk/fx-monitor/internal/domain/reference"
	"github.com/damon-houk/fx-monitor/internal/domain/repository"
	"github.com/damon-houk/fx-monitor/internal/infrastructure/api"
	"github.com/damon-houk/fx-monitor/internal/infrastructure/cache"
	"github.com/damon-houk/fx-monitor/internal/infrastructure/db"
	"github.com/damon-houk/fx-monitor/internal/infrastructure/handler"
	"github.com/damon-houk/fx-monitor/internal/infrastructure/logger"
	"github.com/damon-houk/fx-monitor/internal/infrastructure/metrics"
)

// app holds the wired services and the resources that must be released
type app struct {
	metrics  *metrics.Metrics
	rates    *service.RateService
	history  *service.HistoryService
	interest *service.InterestService
	analysis *service.AnalysisService
	badgerDB *badger.DB
}

// sourceOptions maps one source section of the config to client options
func sourceOptions(sc config.SourceConfig, log logger.Logger, m *metrics.Metrics) []api.Option {
	opts := []api.Option{
		api.WithLogger(log),
		api.WithMetrics(m),
		api.WithTimeout(sc.Timeout),
		api.WithTTL(sc.TTL),
		api.WithHistoryTTL(sc.HistoryTTL),
	}
	if sc.BaseURL != "" {
		opts = append(opts, api.WithBaseURL(sc.BaseURL))
	}
	return opts
}

// newApp builds the adapters, the analysis store and the services from cfg
func newApp(cfg *config.Config, log logger.Logger) (*app, error) {
	m := metrics.NewMetrics()

	commercial := api.NewCommercialClient(cfg.Sources.Commercial.APIKey, sourceOptions(cfg.Sources.Commercial, log, m)...)
	mirror := api.NewFrankfurterClient(sourceOptions(cfg.Sources.Mirror, log, m)...)
	ecb := api.NewECBClient(sourceOptions(cfg.Sources.ECB, log, m)...)
	fred := api.NewFREDClient(cfg.Sources.FRED.APIKey, sourceOptions(cfg.Sources.FRED, log, m)...)

	generatorOpts := []api.AnthropicOption{
		api.WithAnthropicModel(cfg.AI.Model),
		api.WithAnthropicLogger(log),
	}
	if cfg.AI.BaseURL != "" {
		generatorOpts = append(generatorOpts, api.WithAnthropicBaseURL(cfg.AI.BaseURL))
	}
	generator := api.NewAnthropicClient(cfg.AI.APIKey, generatorOpts...)

	a := &app{metrics: m}

	var store repository.AnalysisRepository
	switch cfg.AI.Store {
	case config.StoreMemory:
		store = db.NewMemoryAnalysisRepository(
			cache.NewTTLCache[entity.Analysis]("analysis", cfg.AI.CacheTTL, cache.WithObserver(m)))
	default:
		badgerDB, err := db.OpenInMemory()
		if err != nil {
			return nil, err
		}
		a.badgerDB = badgerDB
		store = db.NewBadgerAnalysisRepository(badgerDB, cfg.AI.CacheTTL, nil)
	}

	analysisOpts := []service.AnalysisOption{
		service.WithAnalysisMetrics(m),
		service.WithAnalysisTimeouts(service.AnalysisTimeouts{
			Simple:   cfg.AI.SimpleTimeout,
			Research: cfg.AI.ResearchTimeout,
			Analysis: cfg.AI.AnalysisTimeout,
		}),
	}
	if cfg.News.Enabled {
		news := api.NewNewsFeed(cfg.News.Feeds,
			api.WithLogger(log),
			api.WithMetrics(m),
			api.WithTimeout(cfg.News.Timeout),
			api.WithTTL(cfg.News.TTL))
		analysisOpts = append(analysisOpts, service.WithHeadlines(news))
	}

	a.rates = service.NewRateService(commercial, mirror, ecb, fred, log)
	a.history = service.NewHistoryService(mirror, fred, log)
	a.interest = service.NewInterestService(reference.NewInterestRateTable(), nil)
	a.analysis = service.NewAnalysisService(a.rates, a.interest, generator, store, log, analysisOpts...)

	log.Info("Application wired", map[string]interface{}{
		"commercial_enabled": commercial.Enabled(),
		"fred_enabled":       cfg.Sources.FRED.APIKey != "",
		"ai_enabled":         generator.Configured(),
		"analysis_store":     cfg.AI.Store,
		"news_enabled":       cfg.News.Enabled,
	})

	return a, nil
}

// router mounts every handler on the HTTP surface
func (a *app) router(cfg *config.Config, log logger.Logger) http.Handler {
	return handler.NewRouter(handler.RouterConfig{
		Handlers: []handler.RouteRegistrar{
			handler.NewRateHandler(a.rates, a.history, log),
			handler.NewInterestHandler(a.interest, log),
			handler.NewAnalysisHandler(a.analysis, log),
		},
		Metrics:     a.metrics,
		Logger:      log,
		CORSOrigins: cfg.Server.CORSOrigins,
	})
}

// Close releases the badger store, if one was opened
func (a *app) Close() error {
	if a.badgerDB == nil {
		return nil
	}
	if err := a.badgerDB.Close(); err != nil {
		return fmt.Errorf("failed to close analysis store: %w", err)
	}
	return nil
}
