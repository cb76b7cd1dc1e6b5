package db

import (
	"context"

	"github.com/damon-houk/fx-monitor/internal/domain/entity"
	"github.com/damon-houk/fx-monitor/internal/domain/repository"
	"github.com/damon-houk/fx-monitor/internal/infrastructure/cache"
)

// MemoryAnalysisRepository keeps analyses in a TTL cache
type MemoryAnalysisRepository struct {
	cache *cache.TTLCache[entity.Analysis]
}

// NewMemoryAnalysisRepository wraps c
func NewMemoryAnalysisRepository(c *cache.TTLCache[entity.Analysis]) *MemoryAnalysisRepository {
	return &MemoryAnalysisRepository{cache: c}
}

// Store saves an analysis under key
func (r *MemoryAnalysisRepository) Store(_ context.Context, key string, analysis entity.Analysis) error {
	r.cache.Put(key, analysis)
	return nil
}

// Find retrieves a fresh analysis by key
func (r *MemoryAnalysisRepository) Find(_ context.Context, key string) (*entity.Analysis, error) {
	a, ok := r.cache.Get(key)
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &a, nil
}
