package service

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/damon-houk/fx-monitor/internal/domain/entity"
	"github.com/damon-houk/fx-monitor/internal/domain/repository"
	domainservice "github.com/damon-houk/fx-monitor/internal/domain/service"
	"github.com/damon-houk/fx-monitor/internal/infrastructure/logger"
	"github.com/damon-houk/fx-monitor/internal/infrastructure/metrics"
	"github.com/damon-houk/fx-monitor/internal/infrastructure/middleware"
)

// Analysis outcomes recorded in metrics
const (
	AnalysisFromCache    = "cached"
	AnalysisFromModel    = "model"
	AnalysisFromFallback = "fallback"
)

const (
	maxHeadlines = 5

	simpleMaxTokens   = 1024
	researchMaxTokens = 4096
	analysisMaxTokens = 1500
)

// AnalysisParams are the raw customization parameters of an analysis request.
// Sources is nil when the caller did not pass the parameter at all.
type AnalysisParams struct {
	ShortTermFocus string
	LongTermFocus  string
	Style          string
	Depth          string
	Sources        *string
	UseWebSearch   bool
}

// AnalysisRequest is a validated analysis request. Categories are
// de-duplicated and kept in a canonical order.
type AnalysisRequest struct {
	Pair           entity.CurrencyPair
	ShortTermFocus string
	LongTermFocus  string
	Style          entity.AnalysisStyle
	Depth          entity.AnalysisDepth
	Categories     []entity.ContextCategory
	UseWebSearch   bool
}

var categoryOrder = []entity.ContextCategory{
	entity.CategoryInterestRates,
	entity.CategoryCentralBanks,
	entity.CategoryEconomic,
	entity.CategoryTechnical,
	entity.CategoryNews,
}

// ParseAnalysisRequest validates params. Unknown style and depth fall back to
// their defaults; unknown source names are dropped and returned.
func ParseAnalysisRequest(pair entity.CurrencyPair, p AnalysisParams) (AnalysisRequest, []string) {
	req := AnalysisRequest{
		Pair:           pair,
		ShortTermFocus: strings.TrimSpace(p.ShortTermFocus),
		LongTermFocus:  strings.TrimSpace(p.LongTermFocus),
		Style:          entity.ParseAnalysisStyle(p.Style),
		Depth:          entity.ParseAnalysisDepth(p.Depth),
		UseWebSearch:   p.UseWebSearch,
	}

	if p.Sources == nil {
		req.Categories = append([]entity.ContextCategory(nil), entity.DefaultCategories...)
		return req, nil
	}

	var unknown []string
	selected := map[entity.ContextCategory]bool{}
	for _, raw := range strings.Split(*p.Sources, ",") {
		if strings.TrimSpace(raw) == "" {
			continue
		}
		c, ok := entity.ParseContextCategory(raw)
		if !ok {
			unknown = append(unknown, raw)
			continue
		}
		selected[c] = true
	}
	for _, c := range categoryOrder {
		if selected[c] {
			req.Categories = append(req.Categories, c)
		}
	}

	return req, unknown
}

// Has reports whether c was selected
func (r AnalysisRequest) Has(c entity.ContextCategory) bool {
	for _, sel := range r.Categories {
		if sel == c {
			return true
		}
	}
	return false
}

// CacheKey covers the pair and every customization parameter
func (r AnalysisRequest) CacheKey() string {
	cats := make([]string, len(r.Categories))
	for i, c := range r.Categories {
		cats[i] = string(c)
	}

	h := sha256.New()
	for _, part := range []string{
		string(r.Pair.Base),
		string(r.Pair.Quote),
		r.ShortTermFocus,
		r.LongTermFocus,
		string(r.Style),
		string(r.Depth),
		strings.Join(cats, ","),
		strconv.FormatBool(r.UseWebSearch),
	} {
		// Length prefixes keep adjacent fields from running together
		fmt.Fprintf(h, "%d:%s|", len(part), part)
	}

	return fmt.Sprintf("analysis:%s_%s:%s", r.Pair.Base, r.Pair.Quote, hex.EncodeToString(h.Sum(nil)))
}

// SpotQuoter returns the reconciled spot quote for a pair
type SpotQuoter interface {
	GetQuote(ctx context.Context, pair entity.CurrencyPair) (*ReconciledQuote, error)
}

// AnalysisTimeouts bound each model call
type AnalysisTimeouts struct {
	Simple   time.Duration
	Research time.Duration
	Analysis time.Duration
}

// DefaultAnalysisTimeouts are the per-call deadlines for each mode
var DefaultAnalysisTimeouts = AnalysisTimeouts{
	Simple:   30 * time.Second,
	Research: 90 * time.Second,
	Analysis: 45 * time.Second,
}

// AnalysisService produces narrative analyses. It never fails: any problem
// yields the fallback analysis.
type AnalysisService struct {
	quotes    SpotQuoter
	interest  *InterestService
	generator domainservice.TextGenerator
	headlines domainservice.HeadlineSource
	store     repository.AnalysisRepository
	timeouts  AnalysisTimeouts
	metrics   *metrics.Metrics
	logger    logger.Logger
}

// AnalysisOption configures the service
type AnalysisOption func(*AnalysisService)

// WithHeadlines enables the news context category
func WithHeadlines(h domainservice.HeadlineSource) AnalysisOption {
	return func(s *AnalysisService) { s.headlines = h }
}

// WithAnalysisTimeouts overrides the model call deadlines
func WithAnalysisTimeouts(t AnalysisTimeouts) AnalysisOption {
	return func(s *AnalysisService) { s.timeouts = t }
}

// WithAnalysisMetrics records outcomes
func WithAnalysisMetrics(m *metrics.Metrics) AnalysisOption {
	return func(s *AnalysisService) { s.metrics = m }
}

// NewAnalysisService creates the service. generator may be nil, in which
// case every request is answered with the fallback.
func NewAnalysisService(
	quotes SpotQuoter,
	interest *InterestService,
	generator domainservice.TextGenerator,
	store repository.AnalysisRepository,
	log logger.Logger,
	opts ...AnalysisOption,
) *AnalysisService {
	s := &AnalysisService{
		quotes:    quotes,
		interest:  interest,
		generator: generator,
		store:     store,
		timeouts:  DefaultAnalysisTimeouts,
		logger:    logger.OrDefault(log).WithField("component", "analysis_service"),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

type configurable interface {
	Configured() bool
}

func (s *AnalysisService) generatorReady() bool {
	if s.generator == nil {
		return false
	}
	if c, ok := s.generator.(configurable); ok {
		return c.Configured()
	}
	return true
}

// Analyze returns a cached analysis, a fresh model analysis, or the fallback
func (s *AnalysisService) Analyze(ctx context.Context, req AnalysisRequest) entity.Analysis {
	requestID := middleware.GetRequestID(ctx)
	ctx = context.WithoutCancel(ctx)
	key := req.CacheKey()

	fields := map[string]interface{}{
		"request_id": requestID,
		"pair":       req.Pair.String(),
		"style":      string(req.Style),
		"depth":      string(req.Depth),
		"web_search": req.UseWebSearch,
	}

	if s.store != nil {
		cached, err := s.store.Find(ctx, key)
		if err == nil {
			s.metrics.ObserveAnalysis(AnalysisFromCache)
			s.logger.Debug("Analysis served from cache", fields)
			return *cached
		}
		if !errors.Is(err, repository.ErrNotFound) {
			s.logger.Warn("Analysis store lookup failed", withError(fields, err))
		}
	}

	if !s.generatorReady() {
		s.metrics.ObserveAnalysis(AnalysisFromFallback)
		s.logger.Info("No text generator configured, serving fallback analysis", fields)
		return entity.FallbackAnalysis()
	}

	analysis, err := s.generate(ctx, req)
	if err != nil {
		s.metrics.ObserveAnalysis(AnalysisFromFallback)
		s.logger.Warn("Analysis generation failed, serving fallback", withError(fields, err))
		return entity.FallbackAnalysis()
	}

	if s.store != nil {
		if err := s.store.Store(ctx, key, analysis); err != nil {
			s.logger.Warn("Failed to store analysis", withError(fields, err))
		}
	}

	s.metrics.ObserveAnalysis(AnalysisFromModel)
	s.logger.Info("Analysis generated", fields)
	return analysis
}

func withError(fields map[string]interface{}, err error) map[string]interface{} {
	out := make(map[string]interface{}, len(fields)+1)
	for k, v := range fields {
		out[k] = v
	}
	out["error"] = err.Error()
	return out
}

// MarketContext gathers the spot rate, policy rates and optional headlines
func (s *AnalysisService) MarketContext(ctx context.Context, req AnalysisRequest) MarketContext {
	mc := MarketContext{Pair: req.Pair}

	if s.quotes != nil {
		if q, err := s.quotes.GetQuote(ctx, req.Pair); err == nil {
			rate := q.Primary.Rate
			mc.CurrentRate = &rate
		}
	}

	if s.interest != nil {
		base, _ := s.interest.Lookup(req.Pair.Base)
		quote, _ := s.interest.Lookup(req.Pair.Quote)
		mc.BaseInterestRate = base.Rate
		mc.QuoteInterestRate = quote.Rate
		mc.Differential = s.interest.Differential(req.Pair.Base, req.Pair.Quote)
	}

	if req.Has(entity.CategoryNews) && s.headlines != nil {
		mc.Headlines = s.headlines.Headlines(ctx, []entity.CurrencyCode{req.Pair.Base, req.Pair.Quote}, maxHeadlines)
	}

	return mc
}

func (s *AnalysisService) generate(ctx context.Context, req AnalysisRequest) (entity.Analysis, error) {
	prompt := BuildAnalysisPrompt(s.MarketContext(ctx, req), req)

	final := domainservice.GenerationRequest{
		Prompt:    prompt,
		MaxTokens: simpleMaxTokens,
		Timeout:   s.timeouts.Simple,
	}

	if req.UseWebSearch {
		research, err := s.generator.Generate(ctx, domainservice.GenerationRequest{
			Prompt:    BuildResearchPrompt(req.Pair),
			MaxTokens: researchMaxTokens,
			WebSearch: true,
			Timeout:   s.timeouts.Research,
		})
		if err != nil {
			// Research is best effort; the analysis pass still runs without it
			s.logger.Warn("Web research failed", map[string]interface{}{
				"pair":  req.Pair.String(),
				"error": err.Error(),
			})
		}
		final = domainservice.GenerationRequest{
			Prompt:    WithResearch(prompt, FormatResearch(research)),
			MaxTokens: analysisMaxTokens,
			Timeout:   s.timeouts.Analysis,
		}
	}

	gen, err := s.generator.Generate(ctx, final)
	if err != nil {
		return entity.Analysis{}, fmt.Errorf("generate analysis: %w", err)
	}

	payload, err := ExtractJSONPayload(gen.Text)
	if err != nil {
		return entity.Analysis{}, err
	}

	var analysis entity.Analysis
	if err := json.Unmarshal(payload, &analysis); err != nil {
		return entity.Analysis{}, fmt.Errorf("decode analysis: %w", err)
	}
	if err := analysis.Validate(); err != nil {
		return entity.Analysis{}, err
	}
	if analysis.ShortTerm.Sources == nil {
		analysis.ShortTerm.Sources = []entity.AnalysisSource{}
	}
	if analysis.LongTerm.Sources == nil {
		analysis.LongTerm.Sources = []entity.AnalysisSource{}
	}

	return analysis, nil
}
