// Package handler exposes the HTTP API
package handler

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/damon-houk/fx-monitor/internal/application/service"
	"github.com/damon-houk/fx-monitor/internal/domain/entity"
	"github.com/damon-houk/fx-monitor/internal/infrastructure/logger"
	"github.com/damon-houk/fx-monitor/internal/infrastructure/middleware"
)

// QuoteService returns reconciled spot quotes
type QuoteService interface {
	GetQuote(ctx context.Context, pair entity.CurrencyPair) (*service.ReconciledQuote, error)
}

// HistoryService returns summarized historical series
type HistoryService interface {
	GetHistory(ctx context.Context, pair entity.CurrencyPair, days int) (*service.HistoryResult, error)
}

// RateHandler handles HTTP requests for spot rates and history
type RateHandler struct {
	quotes  QuoteService
	history HistoryService
	logger  logger.Logger
}

// NewRateHandler creates a new rate handler
func NewRateHandler(quotes QuoteService, history HistoryService, log logger.Logger) *RateHandler {
	return &RateHandler{
		quotes:  quotes,
		history: history,
		logger:  logger.OrDefault(log).WithField("component", "rate_handler"),
	}
}

// pairFromVars reads the upper-cased pair from the route variables
func pairFromVars(r *http.Request) entity.CurrencyPair {
	vars := mux.Vars(r)
	return entity.NewCurrencyPair(vars["base"], vars["quote"])
}

// GetRate handles the spot rate request
func (h *RateHandler) GetRate(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	pair := pairFromVars(r)

	h.logger.Info("Handling rate request", map[string]interface{}{
		"request_id": requestID,
		"pair":       pair.String(),
	})

	quote, err := h.quotes.GetQuote(r.Context(), pair)
	if err != nil {
		if errors.Is(err, service.ErrNoPrimarySource) {
			sendErrorResponse(w, h.logger, "Unable to fetch exchange rate",
				"No rate source could provide a rate for "+pair.String()+". Please try again later.",
				http.StatusServiceUnavailable, requestID)
			return
		}
		h.internalError(w, requestID, err)
		return
	}

	sendJSON(w, h.logger, newRateResponse(pair, quote))
}

// GetHistory handles the historical series request
func (h *RateHandler) GetHistory(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	pair := pairFromVars(r)

	days := service.DefaultHistoryDays
	if raw := r.URL.Query().Get("days"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			h.logger.Warn("Invalid days parameter", map[string]interface{}{
				"request_id": requestID,
				"days":       raw,
			})
			sendErrorResponse(w, h.logger, "Invalid days parameter",
				"The 'days' query parameter must be a positive integer", http.StatusBadRequest, requestID)
			return
		}
		days = parsed
	}

	h.logger.Info("Handling history request", map[string]interface{}{
		"request_id": requestID,
		"pair":       pair.String(),
		"days":       days,
	})

	result, err := h.history.GetHistory(r.Context(), pair, days)
	switch {
	case err == nil:
		sendJSON(w, h.logger, newHistoryResponse(result))
	case errors.Is(err, service.ErrInvalidWindow):
		sendErrorResponse(w, h.logger, "Invalid days parameter",
			"The 'days' query parameter must be a positive integer", http.StatusBadRequest, requestID)
	case errors.Is(err, service.ErrHistoryUnavailable):
		sendErrorResponse(w, h.logger, "Unable to fetch historical data",
			"The primary history source for "+pair.String()+" is unavailable. Please try again later.",
			http.StatusServiceUnavailable, requestID)
	default:
		h.internalError(w, requestID, err)
	}
}

// internalError logs an unexpected service error and answers 500
func (h *RateHandler) internalError(w http.ResponseWriter, requestID string, err error) {
	h.logger.Error("Unexpected error in rate handler", map[string]interface{}{
		"request_id": requestID,
		"error":      err.Error(),
	})
	sendErrorResponse(w, h.logger, "Internal server error",
		"An unexpected error occurred. Please try again later.",
		http.StatusInternalServerError, requestID)
}

// RegisterRoutes registers the rate routes on router
func (h *RateHandler) RegisterRoutes(router *mux.Router) {
	router.HandleFunc("/rates/{base}/{quote}", h.GetRate).Methods("GET")
	router.HandleFunc("/rates/{base}/{quote}/history", h.GetHistory).Methods("GET")
}
