package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/damon-houk/fx-monitor/internal/domain/entity"
	"github.com/damon-houk/fx-monitor/internal/infrastructure/logger"
	"github.com/damon-houk/fx-monitor/internal/mocks"
)

func series(pair entity.CurrencyPair, source string, rates ...float64) entity.HistoricalSeries {
	points := make([]entity.HistoricalPoint, len(rates))
	start := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	for i, r := range rates {
		points[i] = entity.HistoricalPoint{Date: start.AddDate(0, 0, i), Rate: r}
	}
	return entity.HistoricalSeries{Pair: pair, Source: source, Points: points}
}

func TestGetHistory(t *testing.T) {
	ctx := context.Background()

	t.Run("USD base pair uses FRED as primary", func(t *testing.T) {
		pair := entity.NewCurrencyPair("USD", "JPY")
		mirror := &mocks.MockHistorySource{SourceName: "Frankfurter"}
		fred := &mocks.MockEconomicDataSource{SourceName: "FRED"}

		fredSeries := series(pair, "FRED", 150, 151, 152, 153, 154, 155, 156)
		mirrorSeries := series(pair, "Frankfurter", 149, 150)

		fred.On("Supports", pair).Return(true)
		fred.On("FetchHistory", mock.Anything, pair, 30).Return(fredSeries, true).Once()
		mirror.On("FetchHistory", mock.Anything, pair, 30).Return(mirrorSeries, true).Once()

		svc := NewHistoryService(mirror, fred, logger.NewNopLogger())
		result, err := svc.GetHistory(ctx, pair, 30)

		require.NoError(t, err)
		assert.Equal(t, HistoryLabelFRED, result.Source)
		assert.Equal(t, 30, result.Days)
		assert.Equal(t, 150.0, result.Period.Open)
		assert.Equal(t, 156.0, result.Period.Close)
		assert.Len(t, result.Period.Points, 7)
		assert.Equal(t, 152.0, result.Recent.Open)
		assert.Equal(t, 156.0, result.Recent.Close)
		assert.Len(t, result.Recent.Points, 5)
		require.NotNil(t, result.ECBHistory)
		assert.Len(t, result.ECBHistory.Points, 2)
		assert.Nil(t, result.FREDHistory)
	})

	t.Run("Non-USD base uses the mirror as primary", func(t *testing.T) {
		pair := entity.NewCurrencyPair("EUR", "USD")
		mirror := &mocks.MockHistorySource{SourceName: "Frankfurter"}
		fred := &mocks.MockEconomicDataSource{SourceName: "FRED"}

		mirror.On("FetchHistory", mock.Anything, pair, 90).Return(series(pair, "Frankfurter", 1.08, 1.09), true).Once()
		fred.On("FetchHistory", mock.Anything, pair, 90).Return(series(pair, "FRED", 1.07), true).Once()

		svc := NewHistoryService(mirror, fred, logger.NewNopLogger())
		result, err := svc.GetHistory(ctx, pair, DefaultHistoryDays)

		require.NoError(t, err)
		assert.Equal(t, HistoryLabelECB, result.Source)
		assert.Len(t, result.Recent.Points, 2)
		assert.Nil(t, result.ECBHistory)
		require.NotNil(t, result.FREDHistory)
		assert.Equal(t, 1.07, result.FREDHistory.Points[0].Rate)
		fred.AssertNotCalled(t, "Supports", mock.Anything)
	})

	t.Run("Unsupported USD pair falls back to the mirror", func(t *testing.T) {
		pair := entity.NewCurrencyPair("USD", "TRY")
		mirror := &mocks.MockHistorySource{SourceName: "Frankfurter"}
		fred := &mocks.MockEconomicDataSource{SourceName: "FRED"}

		fred.On("Supports", pair).Return(false)
		fred.On("FetchHistory", mock.Anything, pair, 10).Return(entity.HistoricalSeries{}, false).Once()
		mirror.On("FetchHistory", mock.Anything, pair, 10).Return(series(pair, "Frankfurter", 30.1), true).Once()

		svc := NewHistoryService(mirror, fred, logger.NewNopLogger())
		result, err := svc.GetHistory(ctx, pair, 10)

		require.NoError(t, err)
		assert.Equal(t, HistoryLabelECB, result.Source)
		assert.Nil(t, result.FREDHistory)
	})

	t.Run("Primary failure is an error even when the secondary succeeds", func(t *testing.T) {
		pair := entity.NewCurrencyPair("USD", "JPY")
		mirror := &mocks.MockHistorySource{SourceName: "Frankfurter"}
		fred := &mocks.MockEconomicDataSource{SourceName: "FRED"}

		fred.On("Supports", pair).Return(true)
		fred.On("FetchHistory", mock.Anything, pair, 30).Return(entity.HistoricalSeries{}, false).Once()
		mirror.On("FetchHistory", mock.Anything, pair, 30).Return(series(pair, "Frankfurter", 150), true).Once()

		svc := NewHistoryService(mirror, fred, logger.NewNopLogger())
		result, err := svc.GetHistory(ctx, pair, 30)

		assert.Nil(t, result)
		assert.True(t, errors.Is(err, ErrHistoryUnavailable))
	})

	t.Run("Empty primary series yields zero summaries", func(t *testing.T) {
		pair := entity.NewCurrencyPair("GBP", "CHF")
		mirror := &mocks.MockHistorySource{SourceName: "Frankfurter"}
		mirror.On("FetchHistory", mock.Anything, pair, 5).Return(entity.HistoricalSeries{Pair: pair}, true).Once()

		svc := NewHistoryService(mirror, nil, logger.NewNopLogger())
		result, err := svc.GetHistory(ctx, pair, 5)

		require.NoError(t, err)
		assert.Equal(t, 0.0, result.Period.Open)
		assert.Equal(t, 0.0, result.Recent.Close)
		assert.Empty(t, result.Recent.Points)
		assert.NotNil(t, result.Recent.Points)
	})

	t.Run("Non-positive window is rejected", func(t *testing.T) {
		svc := NewHistoryService(&mocks.MockHistorySource{}, nil, logger.NewNopLogger())

		_, err := svc.GetHistory(ctx, entity.NewCurrencyPair("EUR", "USD"), 0)
		assert.True(t, errors.Is(err, ErrInvalidWindow))
	})
}
