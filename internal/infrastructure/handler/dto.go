package handler

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/damon-houk/fx-monitor/internal/application/service"
	"github.com/damon-houk/fx-monitor/internal/domain/entity"
	"github.com/damon-houk/fx-monitor/internal/infrastructure/logger"
)

// ErrorResponse represents a standardized error response
type ErrorResponse struct {
	Error       string `json:"error"`
	Status      int    `json:"status"`
	Description string `json:"description,omitempty"`
	RequestID   string `json:"request_id,omitempty"`
}

// RateResponse is the primary spot rate plus any reference rates found
type RateResponse struct {
	Base       string   `json:"base"`
	Quote      string   `json:"quote"`
	Rate       float64  `json:"rate"`
	Timestamp  string   `json:"timestamp"`
	Source     string   `json:"source"`
	ECBRate    *float64 `json:"ecb_rate,omitempty"`
	ECBDate    string   `json:"ecb_date,omitempty"`
	ECBSource  string   `json:"ecb_source,omitempty"`
	FREDRate   *float64 `json:"fred_rate,omitempty"`
	FREDDate   string   `json:"fred_date,omitempty"`
	FREDSource string   `json:"fred_source,omitempty"`
}

func newRateResponse(pair entity.CurrencyPair, q *service.ReconciledQuote) RateResponse {
	resp := RateResponse{
		Base:      string(pair.Base),
		Quote:     string(pair.Quote),
		Rate:      q.Primary.Rate,
		Timestamp: q.Primary.FetchedAt.Format(time.RFC3339),
		Source:    q.Primary.Source,
	}
	if q.ECB != nil {
		rate := q.ECB.Rate
		resp.ECBRate = &rate
		resp.ECBDate = q.ECB.Date.Format(entity.DateLayout)
		resp.ECBSource = q.ECB.Source
	}
	if q.FRED != nil {
		rate := q.FRED.Rate
		resp.FREDRate = &rate
		resp.FREDDate = q.FRED.Date.Format(entity.DateLayout)
		resp.FREDSource = q.FRED.Source
	}
	return resp
}

// TimedRate is a point of the short window, keyed "time" for chart clients
type TimedRate struct {
	Time string  `json:"time"`
	Rate float64 `json:"rate"`
}

// DatedRate is a point of the full window or a secondary series
type DatedRate struct {
	Date string  `json:"date"`
	Rate float64 `json:"rate"`
}

// DailySummary covers the trailing points of the primary series
type DailySummary struct {
	Open  float64     `json:"open"`
	Close float64     `json:"close"`
	Data  []TimedRate `json:"data"`
}

// PeriodSummary covers the whole requested window
type PeriodSummary struct {
	Open  float64     `json:"open"`
	Close float64     `json:"close"`
	Data  []DatedRate `json:"data"`
}

// HistoryResponse is the primary series summary and any secondary series.
// A secondary series is present whenever it was fetched, even if empty.
type HistoryResponse struct {
	Source      string        `json:"source"`
	Daily       DailySummary  `json:"daily"`
	ThreeMonth  PeriodSummary `json:"threeMonth"`
	ECBHistory  *[]DatedRate  `json:"ecb_history,omitempty"`
	FREDHistory *[]DatedRate  `json:"fred_history,omitempty"`
}

func datedRates(points []entity.HistoricalPoint) []DatedRate {
	out := make([]DatedRate, len(points))
	for i, p := range points {
		out[i] = DatedRate{Date: p.Date.Format(entity.DateLayout), Rate: p.Rate}
	}
	return out
}

// secondaryRates converts a fetched secondary series; nil means unavailable
func secondaryRates(series *entity.HistoricalSeries) *[]DatedRate {
	if series == nil {
		return nil
	}
	rates := datedRates(series.Points)
	return &rates
}

// newHistoryResponse converts a history result to the response DTO
func newHistoryResponse(h *service.HistoryResult) HistoryResponse {
	daily := make([]TimedRate, len(h.Recent.Points))
	for i, p := range h.Recent.Points {
		daily[i] = TimedRate{Time: p.Date.Format(entity.DateLayout), Rate: p.Rate}
	}

	resp := HistoryResponse{
		Source:     h.Source,
		Daily:      DailySummary{Open: h.Recent.Open, Close: h.Recent.Close, Data: daily},
		ThreeMonth: PeriodSummary{Open: h.Period.Open, Close: h.Period.Close, Data: datedRates(h.Period.Points)},
	}
	resp.ECBHistory = secondaryRates(h.ECBHistory)
	resp.FREDHistory = secondaryRates(h.FREDHistory)
	return resp
}

const notAvailable = "N/A"

// PairInterestResponse flattens both legs of a pair
type PairInterestResponse struct {
	Base              string  `json:"base"`
	Quote             string  `json:"quote"`
	BaseRate          float64 `json:"base_rate"`
	BaseBank          string  `json:"base_bank"`
	BaseLastDecision  string  `json:"base_last_decision"`
	BaseLastChange    string  `json:"base_last_change"`
	BaseDaysAtRate    int     `json:"base_days_at_rate"`
	QuoteRate         float64 `json:"quote_rate"`
	QuoteBank         string  `json:"quote_bank"`
	QuoteLastDecision string  `json:"quote_last_decision"`
	QuoteLastChange   string  `json:"quote_last_change"`
	QuoteDaysAtRate   int     `json:"quote_days_at_rate"`
	Differential      float64 `json:"differential"`
}

func lastChange(ci service.CurrencyInterest) string {
	if !ci.Known {
		return notAvailable
	}
	return ci.Record.LastChange.Format(entity.DateLayout)
}

// newPairInterestResponse flattens both legs; unknown codes show "N/A" as last change
func newPairInterestResponse(pair entity.CurrencyPair, pi service.PairInterest) PairInterestResponse {
	return PairInterestResponse{
		Base:              string(pair.Base),
		Quote:             string(pair.Quote),
		BaseRate:          pi.Base.Record.Rate,
		BaseBank:          pi.Base.Record.Bank,
		BaseLastDecision:  string(pi.Base.Record.LastDecision),
		BaseLastChange:    lastChange(pi.Base),
		BaseDaysAtRate:    pi.Base.DaysAtRate,
		QuoteRate:         pi.Quote.Record.Rate,
		QuoteBank:         pi.Quote.Record.Bank,
		QuoteLastDecision: string(pi.Quote.Record.LastDecision),
		QuoteLastChange:   lastChange(pi.Quote),
		QuoteDaysAtRate:   pi.Quote.DaysAtRate,
		Differential:      pi.Differential,
	}
}

// InterestRateEntry is one currency in the full table
type InterestRateEntry struct {
	Rate         float64 `json:"rate"`
	Bank         string  `json:"bank"`
	LastChange   string  `json:"last_change"`
	LastDecision string  `json:"last_decision"`
	PreviousRate float64 `json:"previous_rate"`
	DaysAtRate   int     `json:"days_at_rate"`
}

func newInterestTable(all []service.CurrencyInterest) map[string]InterestRateEntry {
	out := make(map[string]InterestRateEntry, len(all))
	for _, ci := range all {
		out[string(ci.Record.Currency)] = InterestRateEntry{
			Rate:         ci.Record.Rate,
			Bank:         ci.Record.Bank,
			LastChange:   lastChange(ci),
			LastDecision: string(ci.Record.LastDecision),
			PreviousRate: ci.Record.PreviousRate,
			DaysAtRate:   ci.DaysAtRate,
		}
	}
	return out
}

// sendJSON writes v as a 200 JSON response
func sendJSON(w http.ResponseWriter, log logger.Logger, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Error("Failed to encode response", map[string]interface{}{
			"error": err.Error(),
		})
	}
}

// sendErrorResponse writes a standardized error response
func sendErrorResponse(w http.ResponseWriter, log logger.Logger, message, description string, statusCode int, requestID string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)

	resp := ErrorResponse{
		Error:       message,
		Status:      statusCode,
		Description: description,
		RequestID:   requestID,
	}

	log.Debug("Sending error response", map[string]interface{}{
		"request_id":  requestID,
		"status_code": statusCode,
		"message":     message,
	})

	json.NewEncoder(w).Encode(resp)
}
