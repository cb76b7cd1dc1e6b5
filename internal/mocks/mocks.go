// Package mocks holds testify mocks for the domain interfaces
package mocks

import (
	"context"

	"github.com/damon-houk/fx-monitor/internal/domain/entity"
	"github.com/damon-houk/fx-monitor/internal/domain/service"
	"github.com/damon-houk/fx-monitor/internal/infrastructure/logger"
	"github.com/stretchr/testify/mock"
)

// MockRateSource mocks service.RateSource
type MockRateSource struct {
	mock.Mock
	SourceName string
}

func (m *MockRateSource) Name() string {
	return m.SourceName
}

func (m *MockRateSource) FetchRate(ctx context.Context, pair entity.CurrencyPair) (entity.RateQuote, bool) {
	args := m.Called(ctx, pair)
	return args.Get(0).(entity.RateQuote), args.Bool(1)
}

// MockHistorySource mocks service.HistorySource
type MockHistorySource struct {
	mock.Mock
	SourceName string
}

func (m *MockHistorySource) Name() string {
	return m.SourceName
}

func (m *MockHistorySource) FetchHistory(ctx context.Context, pair entity.CurrencyPair, days int) (entity.HistoricalSeries, bool) {
	args := m.Called(ctx, pair, days)
	return args.Get(0).(entity.HistoricalSeries), args.Bool(1)
}

// MockEconomicDataSource mocks service.EconomicDataSource
type MockEconomicDataSource struct {
	mock.Mock
	SourceName string
}

func (m *MockEconomicDataSource) Name() string {
	return m.SourceName
}

func (m *MockEconomicDataSource) FetchRate(ctx context.Context, pair entity.CurrencyPair) (entity.RateQuote, bool) {
	args := m.Called(ctx, pair)
	return args.Get(0).(entity.RateQuote), args.Bool(1)
}

func (m *MockEconomicDataSource) FetchHistory(ctx context.Context, pair entity.CurrencyPair, days int) (entity.HistoricalSeries, bool) {
	args := m.Called(ctx, pair, days)
	return args.Get(0).(entity.HistoricalSeries), args.Bool(1)
}

func (m *MockEconomicDataSource) Supports(pair entity.CurrencyPair) bool {
	args := m.Called(pair)
	return args.Bool(0)
}

// MockTextGenerator mocks service.TextGenerator
type MockTextGenerator struct {
	mock.Mock
}

func (m *MockTextGenerator) Generate(ctx context.Context, req service.GenerationRequest) (*service.Generation, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.Generation), args.Error(1)
}

// MockHeadlineSource mocks service.HeadlineSource
type MockHeadlineSource struct {
	mock.Mock
}

func (m *MockHeadlineSource) Headlines(ctx context.Context, codes []entity.CurrencyCode, limit int) []entity.Headline {
	args := m.Called(ctx, codes, limit)
	if args.Get(0) == nil {
		return nil
	}
	return args.Get(0).([]entity.Headline)
}

// MockAnalysisRepository mocks repository.AnalysisRepository
type MockAnalysisRepository struct {
	mock.Mock
}

func (m *MockAnalysisRepository) Find(ctx context.Context, key string) (*entity.Analysis, error) {
	args := m.Called(ctx, key)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.Analysis), args.Error(1)
}

func (m *MockAnalysisRepository) Store(ctx context.Context, key string, analysis entity.Analysis) error {
	args := m.Called(ctx, key, analysis)
	return args.Error(0)
}

// MockLogger mocks logger.Logger. Child loggers are the mock itself.
type MockLogger struct {
	mock.Mock
}

func (m *MockLogger) Debug(msg string, fields map[string]interface{}) {
	m.Called(msg, fields)
}

func (m *MockLogger) Info(msg string, fields map[string]interface{}) {
	m.Called(msg, fields)
}

func (m *MockLogger) Warn(msg string, fields map[string]interface{}) {
	m.Called(msg, fields)
}

func (m *MockLogger) Error(msg string, fields map[string]interface{}) {
	m.Called(msg, fields)
}

func (m *MockLogger) Fatal(msg string, fields map[string]interface{}) {
	m.Called(msg, fields)
}

func (m *MockLogger) WithField(key string, value interface{}) logger.Logger {
	return m
}

func (m *MockLogger) WithFields(fields map[string]interface{}) logger.Logger {
	return m
}
