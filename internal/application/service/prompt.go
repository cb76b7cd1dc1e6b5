package service

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/shopspring/decimal"

	"github.com/damon-houk/fx-monitor/internal/domain/entity"
	domainservice "github.com/damon-houk/fx-monitor/internal/domain/service"
)

const (
	maxResearchChars  = 4000
	maxResearchSource = 8
	noResearchText    = "No web research available. Base analysis on general market knowledge."
)

var styleInstructions = map[entity.AnalysisStyle]string{
	entity.StyleBalanced:    "Provide a balanced analysis considering both technical and fundamental factors.",
	entity.StyleTechnical:   "Focus heavily on technical analysis, chart patterns, support/resistance levels, and momentum indicators.",
	entity.StyleFundamental: "Focus on fundamental factors: economic data, central bank policies, trade balances, and macroeconomic trends.",
	entity.StyleRisk:        "Focus on risk assessment, potential volatility, key risk events, and hedging considerations.",
	entity.StyleBrief:       "Keep your analysis concise and to the point. Prioritize actionable insights.",
}

var depthInstructions = map[entity.AnalysisDepth]string{
	entity.DepthStandard: "Provide key insights with moderate detail.",
	entity.DepthDetailed: "Provide comprehensive analysis with extensive reasoning and multiple factors.",
	entity.DepthBrief:    "Keep responses short and focused on the most critical points only.",
}

var categoryFragments = map[entity.ContextCategory]string{
	entity.CategoryInterestRates: "Interest rate differentials and carry trade dynamics",
	entity.CategoryCentralBanks:  "Central bank policies and monetary policy outlook",
	entity.CategoryEconomic:      "Economic conditions and growth differentials",
	entity.CategoryTechnical:     "Technical factors and market sentiment",
	entity.CategoryNews:          "Recent FX news headlines listed below",
}

// MarketContext is the data the prompt is grounded on
type MarketContext struct {
	Pair              entity.CurrencyPair
	CurrentRate       *float64
	BaseInterestRate  float64
	QuoteInterestRate float64
	Differential      float64
	Headlines         []entity.Headline
}

func percent(v float64) string {
	return decimal.NewFromFloat(v).String() + "%"
}

func formatRate(rate *float64) string {
	if rate == nil {
		return "unavailable"
	}
	return decimal.NewFromFloat(*rate).String()
}

// BuildAnalysisPrompt renders the prompt for req over mc. Research mode asks
// the model to ground itself on the appended web research instead.
func BuildAnalysisPrompt(mc MarketContext, req AnalysisRequest) string {
	pair := mc.Pair.String()

	items := make([]string, 0, len(req.Categories))
	for _, c := range req.Categories {
		items = append(items, "- "+categoryFragments[c])
	}
	sourcesText := "- General market factors"
	if len(items) > 0 {
		sourcesText = strings.Join(items, "\n")
	}

	var focus strings.Builder
	if req.ShortTermFocus != "" {
		focus.WriteString("\n\nAdditional short-term focus: " + req.ShortTermFocus)
	}
	if req.LongTermFocus != "" {
		focus.WriteString("\n\nAdditional long-term focus: " + req.LongTermFocus)
	}

	var intro, research, requirements string
	if req.UseWebSearch {
		intro = fmt.Sprintf("You are a professional FX analyst. Analyze the %s currency pair based on the web research provided below.", pair)
		research = fmt.Sprintf(`
Base your analysis on the web research findings, focusing on:
%s

IMPORTANT: Include analyst sentiment, specific price targets, and forecasts from the research.`, sourcesText)
		requirements = `
Requirements:
- Use REAL sources from the web research - do not make up URLs
- Cite specific price targets or levels when available
- Mention specific analysts or institutions when referenced`
	} else {
		intro = fmt.Sprintf("You are a professional FX analyst. Analyze the %s currency pair.", pair)
		research = fmt.Sprintf(`
Base your analysis on:
%s`, sourcesText)
		requirements = `
Requirements:
- Provide relevant financial news sources (Reuters, Bloomberg, FXStreet, etc.)`
	}

	headlines := ""
	if req.Has(entity.CategoryNews) && len(mc.Headlines) > 0 {
		var b strings.Builder
		b.WriteString("\n\nRecent Headlines:")
		for _, h := range mc.Headlines {
			b.WriteString("\n- " + h.Title)
			if h.Feed != "" {
				b.WriteString(" (" + h.Feed + ")")
			}
		}
		headlines = b.String()
	}

	return fmt.Sprintf(`%s

Current Market Data:
- Currency Pair: %s
- Current Rate: %s
- %s Interest Rate: %s
- %s Interest Rate: %s
- Interest Rate Differential: %s%%%s

Analysis Style: %s
Detail Level: %s
%s%s

Provide analysis in this JSON format:
{
    "shortTerm": {
        "trend": "Bullish" | "Bearish" | "Neutral",
        "summary": "1-2 sentence short-term (1-7 day) outlook",
        "details": "Detailed paragraph with reasoning",
        "sources": [{"name": "Source", "url": "https://..."}]
    },
    "longTerm": {
        "trend": "Bullish" | "Bearish" | "Neutral",
        "summary": "1-2 sentence mid/long-term (1-3 month) outlook",
        "details": "Detailed paragraph with reasoning",
        "sources": [{"name": "Source", "url": "https://..."}]
    }
}
%s

Return ONLY valid JSON.`,
		intro,
		pair,
		formatRate(mc.CurrentRate),
		mc.Pair.Base, percent(mc.BaseInterestRate),
		mc.Pair.Quote, percent(mc.QuoteInterestRate),
		decimal.NewFromFloat(mc.Differential).StringFixed(2), headlines,
		styleInstructions[req.Style],
		depthInstructions[req.Depth],
		research, focus.String(),
		requirements,
	)
}

// BuildResearchPrompt asks the model to gather current market intelligence
func BuildResearchPrompt(pair entity.CurrencyPair) string {
	return fmt.Sprintf(`Research the current market outlook for %s. Search for:

1. Recent analyst forecasts and price targets from major banks (Goldman Sachs, JP Morgan, Deutsche Bank, UBS, etc.)
2. Current technical analysis levels (support, resistance, trend)
3. Fundamental factors affecting this pair right now
4. Market sentiment from financial news (Reuters, Bloomberg, FXStreet, Investing.com)

Summarize the key findings from your web research.`, pair)
}

// FormatResearch joins research text with up to eight cited results and
// truncates the whole to keep the follow-up prompt small.
func FormatResearch(gen *domainservice.Generation) string {
	if gen == nil {
		return ""
	}

	var b strings.Builder
	if gen.Text != "" {
		b.WriteString(gen.Text)
		b.WriteString("\n")
	}
	if len(gen.Results) > 0 {
		b.WriteString("\n\nSources found:\n")
		for i, r := range gen.Results {
			if i == maxResearchSource {
				break
			}
			fmt.Fprintf(&b, "- %s: %s\n", r.Title, r.URL)
		}
	}

	research := b.String()
	if len(research) > maxResearchChars {
		research = truncateUTF8(research, maxResearchChars) + "\n... (truncated)"
	}
	return research
}

// truncateUTF8 cuts s to at most n bytes without splitting a rune
func truncateUTF8(s string, n int) string {
	if len(s) <= n {
		return s
	}
	for n > 0 && !utf8.RuneStart(s[n]) {
		n--
	}
	return s[:n]
}

// WithResearch appends research findings to an analysis prompt
func WithResearch(prompt, research string) string {
	if research == "" {
		research = noResearchText
	}
	return fmt.Sprintf(`%s

--- WEB RESEARCH FINDINGS ---
%s
--- END RESEARCH ---

Based on the web research above, provide your analysis. Use REAL URLs from the sources listed above. Return ONLY valid JSON.`, prompt, research)
}
