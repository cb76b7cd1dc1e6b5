package handler

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/damon-houk/fx-monitor/internal/application/service"
	"github.com/damon-houk/fx-monitor/internal/infrastructure/logger"
	"github.com/damon-houk/fx-monitor/internal/infrastructure/middleware"
)

// InterestHandler serves the central bank policy rate table
type InterestHandler struct {
	service *service.InterestService
	logger  logger.Logger
}

// NewInterestHandler creates a new interest rate handler
func NewInterestHandler(svc *service.InterestService, log logger.Logger) *InterestHandler {
	return &InterestHandler{
		service: svc,
		logger:  logger.OrDefault(log).WithField("component", "interest_handler"),
	}
}

// GetPairRates returns both legs of a pair and their differential. Unknown
// codes are answered with a placeholder rather than an error.
func (h *InterestHandler) GetPairRates(w http.ResponseWriter, r *http.Request) {
	pair := pairFromVars(r)

	h.logger.Debug("Handling interest rate request", map[string]interface{}{
		"request_id": middleware.GetRequestID(r.Context()),
		"pair":       pair.String(),
	})

	sendJSON(w, h.logger, newPairInterestResponse(pair, h.service.PairRates(pair)))
}

// GetAllRates returns every known currency keyed by code
func (h *InterestHandler) GetAllRates(w http.ResponseWriter, r *http.Request) {
	sendJSON(w, h.logger, newInterestTable(h.service.AllRates()))
}

// RegisterRoutes registers the interest rate routes on router
func (h *InterestHandler) RegisterRoutes(router *mux.Router) {
	router.HandleFunc("/interest-rates/", h.GetAllRates).Methods("GET")
	router.HandleFunc("/interest-rates", h.GetAllRates).Methods("GET")
	router.HandleFunc("/interest-rates/{base}/{quote}", h.GetPairRates).Methods("GET")
}
