// Package service internal/application/service/rate_service.go
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

// ErrNoPrimarySource is returned when neither spot source can serve a pair
var ErrNoPrimarySource = errors.New("no primary rate source available")

// ReconciledQuote is the primary spot rate with any reference rates found
// alongside it. The reference rates are informational and never blended in.
type ReconciledQuote struct {
	Primary entity.RateQuote
	ECB     *entity.RateQuote
	FRED    *entity.RateQuote
}

// RateService picks a primary spot rate and enriches it with reference rates
type RateService struct {
	commercial domainservice.RateSource
	mirror     domainservice.RateSource
	ecb        domainservice.RateSource
	fred       domainservice.RateSource
	logger     logger.Logger
}

// NewRateService creates a rate service. Any source may be nil and is then skipped.
func NewRateService(commercial, mirror, ecb, fred domainservice.RateSource, log logger.Logger) *RateService {
	return &RateService{
		commercial: commercial,
		mirror:     mirror,
		ecb:        ecb,
		fred:       fred,
		logger:     logger.OrDefault(log).WithField("component", "rate_service"),
	}
}

func fetch(ctx context.Context, src domainservice.RateSource, pair entity.CurrencyPair) (entity.RateQuote, bool) {
	if src == nil {
		return entity.RateQuote{}, false
	}
	return src.FetchRate(ctx, pair)
}

// GetQuote returns the commercial rate if available, else the free mirror rate.
// ECB and FRED are queried concurrently with the primary chain; their
// failures are ignored.
func (s *RateService) GetQuote(ctx context.Context, pair entity.CurrencyPair) (*ReconciledQuote, error) {
	requestID := middleware.GetRequestID(ctx)

	// A caller that goes away still lets the fetches finish and fill the caches
	ctx = context.WithoutCancel(ctx)

	var (
		primary   entity.RateQuote
		primaryOK bool
		ecbQuote  entity.RateQuote
		ecbOK     bool
		fredQuote entity.RateQuote
		fredOK    bool
	)

	// Every branch is non-fatal, so Wait never returns an error
	var g errgroup.Group
	g.Go(func() error {
		primary, primaryOK = fetch(ctx, s.commercial, pair)
		if !primaryOK {
			primary, primaryOK = fetch(ctx, s.mirror, pair)
		}
		return nil
	})
	g.Go(func() error {
		ecbQuote, ecbOK = fetch(ctx, s.ecb, pair)
		return nil
	})
	g.Go(func() error {
		fredQuote, fredOK = fetch(ctx, s.fred, pair)
		return nil
	})
	_ = g.Wait()

	if !primaryOK {
		s.logger.Warn("No primary rate source available", map[string]interface{}{
			"request_id": requestID,
			"pair":       pair.String(),
		})
		return nil, fmt.Errorf("quote %s: %w", pair, ErrNoPrimarySource)
	}

	result := &ReconciledQuote{Primary: primary}
	if ecbOK {
		result.ECB = &ecbQuote
	}
	if fredOK {
		result.FRED = &fredQuote
	}

	s.logger.Info("Quote reconciled", map[string]interface{}{
		"request_id": requestID,
		"pair":       pair.String(),
		"source":     primary.Source,
		"rate":       primary.Rate,
		"ecb":        ecbOK,
		"fred":       fredOK,
	})

	return result, nil
}
