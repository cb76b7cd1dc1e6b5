package service

import (
	"context"
	"errors"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/damon-houk/fx-monitor/internal/domain/entity"
	domainservice "github.com/damon-houk/fx-monitor/internal/domain/service"
	"github.com/damon-houk/fx-monitor/internal/infrastructure/logger"
	"github.com/damon-houk/fx-monitor/internal/infrastructure/middleware"
)

const (
	// DefaultHistoryDays is the window used when the caller does not pass one
	DefaultHistoryDays = 90

	// recentWindow is the number of trailing points in the short summary
	recentWindow = 5

	// History labels. The free mirror republishes ECB reference rates.
	HistoryLabelECB  = "ECB"
	HistoryLabelFRED = "FRED"
)

var (
	// ErrHistoryUnavailable is returned when the primary series cannot be fetched
	ErrHistoryUnavailable = errors.New("historical data unavailable")
	// ErrInvalidWindow is returned for a non-positive window
	ErrInvalidWindow = errors.New("history window must be a positive number of days")
)

// HistoryResult is the primary series summarized over two windows, plus the
// other provider's series when it was available.
type HistoryResult struct {
	Pair        entity.CurrencyPair
	Source      string
	Days        int
	Recent      entity.SeriesSummary
	Period      entity.SeriesSummary
	ECBHistory  *entity.HistoricalSeries
	FREDHistory *entity.HistoricalSeries
}

// HistoryService chooses between the free mirror and the economic-data provider
type HistoryService struct {
	mirror domainservice.HistorySource
	fred   domainservice.EconomicDataSource
	logger logger.Logger
}

// NewHistoryService creates a history service. fred may be nil.
func NewHistoryService(mirror domainservice.HistorySource, fred domainservice.EconomicDataSource, log logger.Logger) *HistoryService {
	return &HistoryService{
		mirror: mirror,
		fred:   fred,
		logger: logger.OrDefault(log).WithField("component", "history_service"),
	}
}

// fredIsPrimary: USD-based pairs that FRED publishes come from FRED. All
// other pairs, including EUR/USD, come from the mirror.
func (s *HistoryService) fredIsPrimary(pair entity.CurrencyPair) bool {
	return pair.Base == entity.USD && s.fred != nil && s.fred.Supports(pair)
}

// GetHistory returns the history for pair over the last days calendar days.
// It fails when the primary series is unavailable, even if the secondary is not.
func (s *HistoryService) GetHistory(ctx context.Context, pair entity.CurrencyPair, days int) (*HistoryResult, error) {
	requestID := middleware.GetRequestID(ctx)
	if days <= 0 {
		return nil, fmt.Errorf("history %s over %d days: %w", pair, days, ErrInvalidWindow)
	}

	ctx = context.WithoutCancel(ctx)

	var (
		mirrorSeries entity.HistoricalSeries
		mirrorOK     bool
		fredSeries   entity.HistoricalSeries
		fredOK       bool
	)

	var g errgroup.Group
	g.Go(func() error {
		if s.mirror != nil {
			mirrorSeries, mirrorOK = s.mirror.FetchHistory(ctx, pair, days)
		}
		return nil
	})
	g.Go(func() error {
		if s.fred != nil {
			fredSeries, fredOK = s.fred.FetchHistory(ctx, pair, days)
		}
		return nil
	})
	_ = g.Wait()

	result := &HistoryResult{Pair: pair, Days: days}

	var primary entity.HistoricalSeries
	if s.fredIsPrimary(pair) {
		if !fredOK {
			return nil, s.unavailable(requestID, pair, HistoryLabelFRED)
		}
		primary = fredSeries
		result.Source = HistoryLabelFRED
		if mirrorOK {
			result.ECBHistory = &mirrorSeries
		}
	} else {
		if !mirrorOK {
			return nil, s.unavailable(requestID, pair, HistoryLabelECB)
		}
		primary = mirrorSeries
		result.Source = HistoryLabelECB
		if fredOK {
			result.FREDHistory = &fredSeries
		}
	}

	result.Recent = entity.Summarize(primary.Tail(recentWindow))
	result.Period = entity.Summarize(primary.Points)

	s.logger.Info("History assembled", map[string]interface{}{
		"request_id": requestID,
		"pair":       pair.String(),
		"source":     result.Source,
		"days":       days,
		"points":     len(primary.Points),
		"secondary":  result.ECBHistory != nil || result.FREDHistory != nil,
	})

	return result, nil
}

func (s *HistoryService) unavailable(requestID string, pair entity.CurrencyPair, primary string) error {
	s.logger.Warn("Primary history source unavailable", map[string]interface{}{
		"request_id": requestID,
		"pair":       pair.String(),
		"primary":    primary,
	})
	return fmt.Errorf("history %s from %s: %w", pair, primary, ErrHistoryUnavailable)
}
