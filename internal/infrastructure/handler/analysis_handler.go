package handler

import (
	"context"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/damon-houk/fx-monitor/internal/application/service"
	"github.com/damon-houk/fx-monitor/internal/domain/entity"
	"github.com/damon-houk/fx-monitor/internal/infrastructure/logger"
	"github.com/damon-houk/fx-monitor/internal/infrastructure/middleware"
)

// Analyzer produces a narrative analysis and never fails
type Analyzer interface {
	Analyze(ctx context.Context, req service.AnalysisRequest) entity.Analysis
}

// AnalysisHandler serves AI analyses
type AnalysisHandler struct {
	analyzer Analyzer
	logger   logger.Logger
}

// NewAnalysisHandler creates a new analysis handler
func NewAnalysisHandler(analyzer Analyzer, log logger.Logger) *AnalysisHandler {
	return &AnalysisHandler{
		analyzer: analyzer,
		logger:   logger.OrDefault(log).WithField("component", "analysis_handler"),
	}
}

// Analyze always answers 200; failures surface as the fallback analysis
func (h *AnalysisHandler) Analyze(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	pair := pairFromVars(r)
	query := r.URL.Query()

	params := service.AnalysisParams{
		ShortTermFocus: query.Get("short_term_focus"),
		LongTermFocus:  query.Get("long_term_focus"),
		Style:          query.Get("style"),
		Depth:          query.Get("depth"),
	}
	if _, ok := query["sources"]; ok {
		sources := query.Get("sources")
		params.Sources = &sources
	}
	if raw := query.Get("use_web_search"); raw != "" {
		useWebSearch, err := strconv.ParseBool(raw)
		if err != nil {
			h.logger.Warn("Ignoring invalid use_web_search value", map[string]interface{}{
				"request_id": requestID,
				"value":      raw,
			})
		}
		params.UseWebSearch = useWebSearch
	}

	req, unknown := service.ParseAnalysisRequest(pair, params)
	if len(unknown) > 0 {
		h.logger.Warn("Ignoring unknown analysis sources", map[string]interface{}{
			"request_id": requestID,
			"sources":    unknown,
		})
	}

	sendJSON(w, h.logger, h.analyzer.Analyze(r.Context(), req))
}

// RegisterRoutes registers the analysis routes on router
func (h *AnalysisHandler) RegisterRoutes(router *mux.Router) {
	router.HandleFunc("/ai/analyze/{base}/{quote}", h.Analyze).Methods("GET")
}
