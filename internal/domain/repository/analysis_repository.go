// Package repository internal/domain/repository/analysis_repository.go
package repository

import (
	"context"
	"errors"

	"github.com/damon-houk/fx-monitor/internal/domain/entity"
)

// ErrNotFound is returned when a key is missing or its entry has expired
var ErrNotFound = errors.New("not found")

// AnalysisRepository defines storage for generated analyses
type AnalysisRepository interface {
	// Find returns the analysis stored under key, or ErrNotFound
	Find(ctx context.Context, key string) (*entity.Analysis, error)

	// Store saves an analysis under key
	Store(ctx context.Context, key string, analysis entity.Analysis) error
}
