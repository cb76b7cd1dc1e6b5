package handler

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/damon-houk/fx-monitor/internal/infrastructure/logger"
	"github.com/damon-houk/fx-monitor/internal/infrastructure/metrics"
	"github.com/damon-houk/fx-monitor/internal/infrastructure/middleware"
)

// RouteRegistrar is implemented by every handler that owns API routes
type RouteRegistrar interface {
	RegisterRoutes(router *mux.Router)
}

// RouterConfig wires handlers and ambient concerns into the HTTP surface
type RouterConfig struct {
	Handlers    []RouteRegistrar
	Metrics     *metrics.Metrics
	Logger      logger.Logger
	CORSOrigins []string
}

// HealthCheck reports liveness
func HealthCheck(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.Write([]byte(`{"status":"healthy"}` + "\n"))
}

func notFoundHandler(log logger.Logger) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sendErrorResponse(w, log, "Not found", "No route matches "+r.URL.Path,
			http.StatusNotFound, middleware.GetRequestID(r.Context()))
	})
}

func methodNotAllowedHandler(log logger.Logger) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sendErrorResponse(w, log, "Method not allowed", r.Method+" is not supported on "+r.URL.Path,
			http.StatusMethodNotAllowed, middleware.GetRequestID(r.Context()))
	})
}

// NewRouter mounts handlers under /api next to /health and /metrics
func NewRouter(cfg RouterConfig) http.Handler {
	log := logger.OrDefault(cfg.Logger)

	router := mux.NewRouter()
	observe := middleware.MetricsMiddleware(cfg.Metrics)
	router.Use(observe)

	// mux skips Use middleware when no route matches, so the fallback
	// handlers are instrumented directly and counted as unmatched
	router.NotFoundHandler = observe(notFoundHandler(log))
	router.MethodNotAllowedHandler = observe(methodNotAllowedHandler(log))

	router.HandleFunc("/health", HealthCheck).Methods("GET")
	if cfg.Metrics != nil {
		router.Handle("/metrics", cfg.Metrics.Handler()).Methods("GET")
	}

	api := router.PathPrefix("/api").Subrouter()
	for _, h := range cfg.Handlers {
		h.RegisterRoutes(api)
	}

	var routes []string
	_ = router.Walk(func(route *mux.Route, _ *mux.Router, _ []*mux.Route) error {
		if tpl, err := route.GetPathTemplate(); err == nil {
			if methods, err := route.GetMethods(); err == nil {
				routes = append(routes, methods[0]+" "+tpl)
			}
		}
		return nil
	})
	log.Info("Routes registered", map[string]interface{}{
		"routes": routes,
	})

	// CORS sits outside the router so preflight requests never hit route matching
	return middleware.CORSMiddleware(cfg.CORSOrigins)(
		middleware.RequestIDMiddleware(
			middleware.LoggingMiddleware(log)(router),
		),
	)
}
