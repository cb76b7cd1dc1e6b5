package service

import (
	"time"

	"github.com/damon-houk/fx-monitor/internal/domain/entity"
	"github.com/damon-houk/fx-monitor/internal/domain/repository"
	"github.com/damon-houk/fx-monitor/internal/infrastructure/cache"
)

// CurrencyInterest is a policy rate record with its age in days
type CurrencyInterest struct {
	Record     entity.InterestRateRecord
	Known      bool
	DaysAtRate int
}

// PairInterest holds both legs of a pair and base minus quote
type PairInterest struct {
	Base         CurrencyInterest
	Quote        CurrencyInterest
	Differential float64
}

// InterestService enriches pairs with central bank policy rates
type InterestService struct {
	repo  repository.InterestRateRepository
	clock cache.Clock
}

// NewInterestService creates the service. A nil clock means the system clock.
func NewInterestService(repo repository.InterestRateRepository, clock cache.Clock) *InterestService {
	if clock == nil {
		clock = cache.SystemClock
	}
	return &InterestService{repo: repo, clock: clock}
}

// Lookup returns the record for code, or the zero placeholder and false
func (s *InterestService) Lookup(code entity.CurrencyCode) (entity.InterestRateRecord, bool) {
	return s.repo.Find(code)
}

// DaysSinceChange is the number of whole calendar days between the last
// policy change and now. Unknown codes and future dates yield 0.
func (s *InterestService) DaysSinceChange(code entity.CurrencyCode, now time.Time) int {
	rec, ok := s.repo.Find(code)
	if !ok {
		return 0
	}
	return daysBetween(rec.LastChange, now)
}

func daysBetween(from, to time.Time) int {
	fy, fm, fd := from.UTC().Date()
	ty, tm, td := to.UTC().Date()
	start := time.Date(fy, fm, fd, 0, 0, 0, 0, time.UTC)
	end := time.Date(ty, tm, td, 0, 0, 0, 0, time.UTC)

	days := int(end.Sub(start).Hours() / 24)
	if days < 0 {
		return 0
	}
	return days
}

// Differential is rate(base) - rate(quote); unknown codes count as 0
func (s *InterestService) Differential(base, quote entity.CurrencyCode) float64 {
	b, _ := s.repo.Find(base)
	q, _ := s.repo.Find(quote)
	return b.Rate - q.Rate
}

func (s *InterestService) describe(code entity.CurrencyCode, now time.Time) CurrencyInterest {
	rec, ok := s.repo.Find(code)
	ci := CurrencyInterest{Record: rec, Known: ok}
	if ok {
		ci.DaysAtRate = daysBetween(rec.LastChange, now)
	}
	return ci
}

// PairRates returns both legs of pair as of the service clock
func (s *InterestService) PairRates(pair entity.CurrencyPair) PairInterest {
	now := s.clock()
	base := s.describe(pair.Base, now)
	quote := s.describe(pair.Quote, now)
	return PairInterest{
		Base:         base,
		Quote:        quote,
		Differential: base.Record.Rate - quote.Record.Rate,
	}
}

// AllRates returns every known currency ordered by code
func (s *InterestService) AllRates() []CurrencyInterest {
	now := s.clock()
	records := s.repo.All()
	out := make([]CurrencyInterest, 0, len(records))
	for _, rec := range records {
		out = append(out, CurrencyInterest{
			Record:     rec,
			Known:      true,
			DaysAtRate: daysBetween(rec.LastChange, now),
		})
	}
	return out
}
