package service

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/damon-houk/fx-monitor/internal/domain/entity"
	"github.com/damon-houk/fx-monitor/internal/domain/reference"
	"github.com/damon-houk/fx-monitor/internal/infrastructure/cache"
)

func TestInterestService(t *testing.T) {
	clock := cache.NewManualClock(time.Date(2026, 1, 17, 15, 30, 0, 0, time.UTC))
	svc := NewInterestService(reference.NewInterestRateTable(), clock.Now)

	t.Run("Differential is base minus quote", func(t *testing.T) {
		assert.Equal(t, 1.5, svc.Differential(entity.USD, entity.EUR))
		assert.Equal(t, -1.5, svc.Differential(entity.EUR, entity.USD))
	})

	t.Run("Unknown codes count as zero", func(t *testing.T) {
		assert.Equal(t, 4.25, svc.Differential(entity.USD, "XYZ"))

		rec, ok := svc.Lookup("XYZ")
		assert.False(t, ok)
		assert.Equal(t, "Unknown", rec.Bank)
		assert.Equal(t, 0.0, rec.Rate)
	})

	t.Run("Days since change counts calendar days", func(t *testing.T) {
		assert.Equal(t, 30, svc.DaysSinceChange(entity.USD, clock.Now()))
		assert.Equal(t, 0, svc.DaysSinceChange("XYZ", clock.Now()))
	})

	t.Run("Future change dates never go negative", func(t *testing.T) {
		before := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
		assert.Equal(t, 0, svc.DaysSinceChange(entity.USD, before))
	})

	t.Run("Pair rates", func(t *testing.T) {
		pr := svc.PairRates(entity.NewCurrencyPair("usd", "xyz"))

		assert.True(t, pr.Base.Known)
		assert.Equal(t, "Federal Reserve", pr.Base.Record.Bank)
		assert.Equal(t, 30, pr.Base.DaysAtRate)
		assert.False(t, pr.Quote.Known)
		assert.Equal(t, 0, pr.Quote.DaysAtRate)
		assert.Equal(t, 4.25, pr.Differential)
	})

	t.Run("All rates are ordered by code", func(t *testing.T) {
		all := svc.AllRates()
		require.NotEmpty(t, all)
		for i := 1; i < len(all); i++ {
			assert.Less(t, all[i-1].Record.Currency, all[i].Record.Currency)
		}
		for _, ci := range all {
			assert.True(t, ci.Known)
		}
	})
}

func TestDaysBetween(t *testing.T) {
	from := time.Date(2025, 12, 18, 23, 59, 0, 0, time.UTC)
	to := time.Date(2025, 12, 19, 0, 1, 0, 0, time.UTC)
	assert.Equal(t, 1, daysBetween(from, to))
	assert.Equal(t, 0, daysBetween(from, from))
}
