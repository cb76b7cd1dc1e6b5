package entity

import (
	"fmt"
	"strings"
	"time"
)

// Trend values the model is asked to use
const (
	TrendBullish = "Bullish"
	TrendBearish = "Bearish"
	TrendNeutral = "Neutral"
)

// AnalysisSource is a citation attached to an outlook
type AnalysisSource struct {
	Name string `json:"name"`
	URL  string `json:"url"`
}

// Outlook is the narrative for one horizon
type Outlook struct {
	Trend   string           `json:"trend"`
	Summary string           `json:"summary"`
	Details string           `json:"details"`
	Sources []AnalysisSource `json:"sources"`
}

// Analysis is the two-horizon narrative returned by the AI endpoint
type Analysis struct {
	ShortTerm Outlook `json:"shortTerm"`
	LongTerm  Outlook `json:"longTerm"`
}

// Validate checks that both horizons carry a trend
func (a Analysis) Validate() error {
	if strings.TrimSpace(a.ShortTerm.Trend) == "" {
		return fmt.Errorf("analysis is missing the short-term trend")
	}
	if strings.TrimSpace(a.LongTerm.Trend) == "" {
		return fmt.Errorf("analysis is missing the long-term trend")
	}
	return nil
}

// FallbackAnalysis is served whenever a model-produced analysis is unavailable
func FallbackAnalysis() Analysis {
	return Analysis{
		ShortTerm: Outlook{
			Trend:   TrendNeutral,
			Summary: "Market conditions suggest a consolidation phase in the short term. Watch for upcoming economic data releases.",
			Details: "The currency pair is currently trading within a defined range. Key factors to monitor include central bank communications, employment data, and inflation figures. The interest rate differential provides some support, but market sentiment remains cautious ahead of major economic releases.",
			Sources: []AnalysisSource{
				{Name: "Market Analysis (Demo)", URL: "https://example.com"},
			},
		},
		LongTerm: Outlook{
			Trend:   TrendNeutral,
			Summary: "Medium-term outlook depends on monetary policy divergence between the two central banks.",
			Details: "Over the next 1-3 months, the direction will likely be determined by central bank policy decisions and economic growth differentials. Current interest rate spreads suggest potential for carry trade flows, but geopolitical factors and global risk appetite will also play significant roles in determining the trend.",
			Sources: []AnalysisSource{
				{Name: "Economic Outlook (Demo)", URL: "https://example.com"},
			},
		},
	}
}

// ContextCategory selects a block of market context for the analysis prompt
type ContextCategory string

const (
	CategoryInterestRates ContextCategory = "interest_rates"
	CategoryCentralBanks  ContextCategory = "central_banks"
	CategoryEconomic      ContextCategory = "economic"
	CategoryTechnical     ContextCategory = "technical"
	CategoryNews          ContextCategory = "news"
)

// DefaultCategories is used when the caller does not pass any sources
var DefaultCategories = []ContextCategory{
	CategoryInterestRates,
	CategoryCentralBanks,
	CategoryEconomic,
	CategoryTechnical,
}

// ParseContextCategory maps a raw source name onto a known category
func ParseContextCategory(raw string) (ContextCategory, bool) {
	switch c := ContextCategory(strings.ToLower(strings.TrimSpace(raw))); c {
	case CategoryInterestRates, CategoryCentralBanks, CategoryEconomic, CategoryTechnical, CategoryNews:
		return c, true
	default:
		return "", false
	}
}

// AnalysisStyle controls the emphasis of the analysis
type AnalysisStyle string

const (
	StyleBalanced    AnalysisStyle = "balanced"
	StyleTechnical   AnalysisStyle = "technical"
	StyleFundamental AnalysisStyle = "fundamental"
	StyleRisk        AnalysisStyle = "risk"
	StyleBrief       AnalysisStyle = "brief"
)

// ParseAnalysisStyle falls back to balanced for unknown values
func ParseAnalysisStyle(raw string) AnalysisStyle {
	switch s := AnalysisStyle(strings.ToLower(strings.TrimSpace(raw))); s {
	case StyleBalanced, StyleTechnical, StyleFundamental, StyleRisk, StyleBrief:
		return s
	default:
		return StyleBalanced
	}
}

// AnalysisDepth controls how much detail the analysis carries
type AnalysisDepth string

const (
	DepthStandard AnalysisDepth = "standard"
	DepthDetailed AnalysisDepth = "detailed"
	DepthBrief    AnalysisDepth = "brief"
)

// ParseAnalysisDepth falls back to standard for unknown values
func ParseAnalysisDepth(raw string) AnalysisDepth {
	switch d := AnalysisDepth(strings.ToLower(strings.TrimSpace(raw))); d {
	case DepthStandard, DepthDetailed, DepthBrief:
		return d
	default:
		return DepthStandard
	}
}

// Headline is a news item used as prompt context
type Headline struct {
	Title     string
	Summary   string
	Link      string
	Feed      string
	Published time.Time
}
