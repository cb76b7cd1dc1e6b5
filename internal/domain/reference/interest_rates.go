// Package reference holds the static tables the service ships with
package reference

import (
	"sort"
	"time"

	"github.com/damon-houk/fx-monitor/internal/domain/entity"
)

type policyRate struct {
	rate         float64
	bank         string
	lastChange   string
	lastDecision entity.PolicyDecision
	previousRate float64
}

// Central bank policy rates, maintained by hand. Data as of February 2026.
var policyRates = map[entity.CurrencyCode]policyRate{
	"USD": {4.25, "Federal Reserve", "2025-12-18", entity.DecisionDown, 4.50},
	"EUR": {2.75, "European Central Bank", "2025-12-12", entity.DecisionDown, 3.00},
	"GBP": {4.50, "Bank of England", "2025-11-07", entity.DecisionDown, 4.75},
	"JPY": {0.50, "Bank of Japan", "2025-12-19", entity.DecisionUp, 0.25},
	"CHF": {0.25, "Swiss National Bank", "2025-12-12", entity.DecisionDown, 0.50},
	"AUD": {4.10, "Reserve Bank of Australia", "2025-11-05", entity.DecisionDown, 4.35},
	"CAD": {3.00, "Bank of Canada", "2025-12-11", entity.DecisionDown, 3.25},
	"NZD": {3.75, "Reserve Bank of New Zealand", "2025-11-27", entity.DecisionDown, 4.25},
	"SEK": {2.25, "Sveriges Riksbank", "2025-12-19", entity.DecisionDown, 2.50},
	"NOK": {4.50, "Norges Bank", "2024-12-19", entity.DecisionUnchanged, 4.50},
	"DKK": {2.60, "Danmarks Nationalbank", "2025-12-12", entity.DecisionDown, 2.85},
	"PLN": {5.75, "National Bank of Poland", "2023-10-04", entity.DecisionDown, 6.00},
	"CZK": {4.00, "Czech National Bank", "2024-11-07", entity.DecisionDown, 4.25},
	"HUF": {6.50, "Magyar Nemzeti Bank", "2024-09-24", entity.DecisionDown, 6.75},
	"CNY": {3.00, "People's Bank of China", "2025-10-21", entity.DecisionDown, 3.10},
	"INR": {6.25, "Reserve Bank of India", "2025-02-07", entity.DecisionDown, 6.50},
	"MXN": {9.50, "Banco de Mexico", "2025-12-19", entity.DecisionDown, 10.00},
	"BRL": {13.25, "Central Bank of Brazil", "2025-12-11", entity.DecisionUp, 12.25},
	"ZAR": {7.50, "South African Reserve Bank", "2025-11-21", entity.DecisionDown, 7.75},
	"SGD": {3.25, "Monetary Authority of Singapore", "2025-10-14", entity.DecisionDown, 3.50},
	"HKD": {4.50, "Hong Kong Monetary Authority", "2025-12-19", entity.DecisionDown, 4.75},
	"KRW": {2.75, "Bank of Korea", "2025-11-28", entity.DecisionDown, 3.00},
	"TRY": {45.00, "Central Bank of Turkey", "2024-03-21", entity.DecisionUp, 42.50},
}

// InterestRateTable serves the policy rate table. It satisfies
// repository.InterestRateRepository.
type InterestRateTable struct {
	records map[entity.CurrencyCode]entity.InterestRateRecord
}

// NewInterestRateTable builds the table from the built-in data
func NewInterestRateTable() *InterestRateTable {
	records := make(map[entity.CurrencyCode]entity.InterestRateRecord, len(policyRates))
	for code, p := range policyRates {
		changed, err := time.Parse(entity.DateLayout, p.lastChange)
		if err != nil {
			panic("reference: bad last change date for " + string(code))
		}
		records[code] = entity.InterestRateRecord{
			Currency:     code,
			Rate:         p.rate,
			Bank:         p.bank,
			LastChange:   changed,
			LastDecision: p.lastDecision,
			PreviousRate: p.previousRate,
		}
	}
	return &InterestRateTable{records: records}
}

// Find returns the record for code, or the unknown placeholder and false
func (t *InterestRateTable) Find(code entity.CurrencyCode) (entity.InterestRateRecord, bool) {
	rec, ok := t.records[code]
	if !ok {
		return entity.UnknownInterestRate(code), false
	}
	return rec, true
}

// All returns every record ordered by currency code
func (t *InterestRateTable) All() []entity.InterestRateRecord {
	out := make([]entity.InterestRateRecord, 0, len(t.records))
	for _, rec := range t.records {
		out = append(out, rec)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Currency < out[j].Currency })
	return out
}
