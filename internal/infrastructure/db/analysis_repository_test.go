package db

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/damon-houk/fx-monitor/internal/domain/entity"
	"github.com/damon-houk/fx-monitor/internal/domain/repository"
	"github.com/damon-houk/fx-monitor/internal/infrastructure/cache"
)

func sampleAnalysis() entity.Analysis {
	return entity.Analysis{
		ShortTerm: entity.Outlook{Trend: entity.TrendBullish, Summary: "up", Sources: []entity.AnalysisSource{{Name: "Reuters", URL: "https://reuters.com"}}},
		LongTerm:  entity.Outlook{Trend: entity.TrendNeutral, Summary: "flat", Sources: []entity.AnalysisSource{}},
	}
}

func TestAnalysisRepositories(t *testing.T) {
	badgerDB, err := OpenInMemory()
	require.NoError(t, err)
	t.Cleanup(func() { _ = badgerDB.Close() })

	clock := cache.NewManualClock(time.Date(2025, 1, 15, 12, 0, 0, 0, time.UTC))
	ttl := time.Hour

	repos := map[string]repository.AnalysisRepository{
		"badger": NewBadgerAnalysisRepository(badgerDB, ttl, clock.Now),
		"memory": NewMemoryAnalysisRepository(cache.NewTTLCache[entity.Analysis]("analysis", ttl, cache.WithClock(clock.Now))),
	}

	for name, repo := range repos {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			key := "analysis:EUR_USD:" + name

			_, err := repo.Find(ctx, key)
			assert.True(t, errors.Is(err, repository.ErrNotFound))

			require.NoError(t, repo.Store(ctx, key, sampleAnalysis()))

			got, err := repo.Find(ctx, key)
			require.NoError(t, err)
			assert.Equal(t, sampleAnalysis(), *got)

			clock.Advance(ttl - time.Second)
			_, err = repo.Find(ctx, key)
			assert.NoError(t, err)

			clock.Advance(time.Second)
			_, err = repo.Find(ctx, key)
			assert.True(t, errors.Is(err, repository.ErrNotFound))
		})
	}
}
