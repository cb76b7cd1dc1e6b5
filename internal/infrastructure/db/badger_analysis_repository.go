package db

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/dgraph-io/badger/v3"

	"github.com/damon-houk/fx-monitor/internal/domain/entity"
	"github.com/damon-houk/fx-monitor/internal/domain/repository"
	"github.com/damon-houk/fx-monitor/internal/infrastructure/cache"
)

// OpenInMemory opens a BadgerDB instance that lives only in process memory
func OpenInMemory() (*badger.DB, error) {
	db, err := badger.Open(badger.DefaultOptions("").WithInMemory(true).WithLogger(nil))
	if err != nil {
		return nil, fmt.Errorf("failed to open in-memory badger: %w", err)
	}
	return db, nil
}

type storedAnalysis struct {
	Analysis   entity.Analysis `json:"analysis"`
	InsertedAt time.Time       `json:"inserted_at"`
}

// BadgerAnalysisRepository implements the analysis repository interface using BadgerDB
type BadgerAnalysisRepository struct {
	db    *badger.DB
	ttl   time.Duration
	clock cache.Clock
}

// NewBadgerAnalysisRepository creates a repository whose entries expire
// ttl after they were stored, as measured by clock.
func NewBadgerAnalysisRepository(db *badger.DB, ttl time.Duration, clock cache.Clock) *BadgerAnalysisRepository {
	if clock == nil {
		clock = cache.SystemClock
	}
	return &BadgerAnalysisRepository{db: db, ttl: ttl, clock: clock}
}

// Store saves an analysis under key
func (r *BadgerAnalysisRepository) Store(ctx context.Context, key string, analysis entity.Analysis) error {
	data, err := json.Marshal(storedAnalysis{Analysis: analysis, InsertedAt: r.clock()})
	if err != nil {
		return fmt.Errorf("failed to marshal analysis: %w", err)
	}

	err = r.db.Update(func(txn *badger.Txn) error {
		// Badger's own TTL reclaims space; freshness is decided in Find
		return txn.SetEntry(badger.NewEntry([]byte(key), data).WithTTL(r.ttl))
	})
	if err != nil {
		return fmt.Errorf("failed to store analysis: %w", err)
	}

	return nil
}

// Find retrieves a fresh analysis by key
func (r *BadgerAnalysisRepository) Find(ctx context.Context, key string) (*entity.Analysis, error) {
	var stored storedAnalysis

	err := r.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(key))
		if err != nil {
			return err
		}

		return item.Value(func(val []byte) error {
			return json.Unmarshal(val, &stored)
		})
	})

	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, repository.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to retrieve analysis: %w", err)
	}

	if r.clock().Sub(stored.InsertedAt) >= r.ttl {
		return nil, repository.ErrNotFound
	}

	return &stored.Analysis, nil
}
