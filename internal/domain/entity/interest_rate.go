package entity

import "time"

// PolicyDecision is the direction of a central bank's most recent move
type PolicyDecision string

const (
	DecisionUp        PolicyDecision = "up"
	DecisionDown      PolicyDecision = "down"
	DecisionUnchanged PolicyDecision = "unchanged"
)

// InterestRateRecord is a central bank policy rate entry. Rate and
// PreviousRate are percentages. LastChange is zero for unknown currencies.
type InterestRateRecord struct {
	Currency     CurrencyCode
	Rate         float64
	Bank         string
	LastChange   time.Time
	LastDecision PolicyDecision
	PreviousRate float64
}

// Known reports whether the record came from the reference table
func (r InterestRateRecord) Known() bool {
	return !r.LastChange.IsZero()
}

// UnknownInterestRate is the placeholder returned for codes missing from the table
func UnknownInterestRate(code CurrencyCode) InterestRateRecord {
	return InterestRateRecord{
		Currency:     code,
		Bank:         "Unknown",
		LastDecision: DecisionUnchanged,
	}
}

// FredSeries locates a pair in the economic-data provider. Invert is set when
// the provider publishes the series in the opposite orientation to its key.
type FredSeries struct {
	SeriesID string
	Invert   bool
}
