package repository

import "github.com/damon-houk/fx-monitor/internal/domain/entity"

// InterestRateRepository defines read access to central bank policy rates
type InterestRateRepository interface {
	// Find returns the record for a currency and whether it is known
	Find(code entity.CurrencyCode) (entity.InterestRateRecord, bool)

	// All returns every known record ordered by currency code
	All() []entity.InterestRateRecord
}
