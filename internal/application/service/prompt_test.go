package service

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"

	"github.com/damon-houk/fx-monitor/internal/domain/entity"
	domainservice "github.com/damon-houk/fx-monitor/internal/domain/service"
)

func TestBuildAnalysisPrompt(t *testing.T) {
	pair := entity.NewCurrencyPair("EUR", "USD")
	rate := 1.0842
	mc := MarketContext{
		Pair:              pair,
		CurrentRate:       &rate,
		BaseInterestRate:  2.75,
		QuoteInterestRate: 4.25,
		Differential:      -1.5,
	}

	t.Run("Default request", func(t *testing.T) {
		req, _ := ParseAnalysisRequest(pair, AnalysisParams{})
		prompt := BuildAnalysisPrompt(mc, req)

		assert.Contains(t, prompt, "Analyze the EUR/USD currency pair.")
		assert.Contains(t, prompt, "- Current Rate: 1.0842")
		assert.Contains(t, prompt, "- EUR Interest Rate: 2.75%")
		assert.Contains(t, prompt, "- USD Interest Rate: 4.25%")
		assert.Contains(t, prompt, "- Interest Rate Differential: -1.50%")
		assert.Contains(t, prompt, styleInstructions[entity.StyleBalanced])
		assert.Contains(t, prompt, depthInstructions[entity.DepthStandard])
		assert.Contains(t, prompt, "- Interest rate differentials and carry trade dynamics")
		assert.Contains(t, prompt, "- Technical factors and market sentiment")
		assert.NotContains(t, prompt, "Additional short-term focus")
		assert.True(t, strings.HasSuffix(prompt, "Return ONLY valid JSON."))
	})

	t.Run("Missing rate and empty sources", func(t *testing.T) {
		empty := ""
		req, _ := ParseAnalysisRequest(pair, AnalysisParams{Sources: &empty, ShortTermFocus: "ECB meeting"})
		prompt := BuildAnalysisPrompt(MarketContext{Pair: pair}, req)

		assert.Contains(t, prompt, "- Current Rate: unavailable")
		assert.Contains(t, prompt, "- General market factors")
		assert.Contains(t, prompt, "Additional short-term focus: ECB meeting")
	})

	t.Run("Web research mode", func(t *testing.T) {
		req, _ := ParseAnalysisRequest(pair, AnalysisParams{UseWebSearch: true, Style: "risk"})
		prompt := BuildAnalysisPrompt(mc, req)

		assert.Contains(t, prompt, "based on the web research provided below")
		assert.Contains(t, prompt, "do not make up URLs")
		assert.Contains(t, prompt, styleInstructions[entity.StyleRisk])
	})

	t.Run("Headlines are listed when news is selected", func(t *testing.T) {
		sources := "news"
		req, _ := ParseAnalysisRequest(pair, AnalysisParams{Sources: &sources})
		withNews := mc
		withNews.Headlines = []entity.Headline{{Title: "Euro climbs after ECB remarks", Feed: "FXStreet"}}

		prompt := BuildAnalysisPrompt(withNews, req)
		assert.Contains(t, prompt, "Recent Headlines:\n- Euro climbs after ECB remarks (FXStreet)")
	})
}

func TestFormatResearch(t *testing.T) {
	assert.Equal(t, "", FormatResearch(nil))

	results := make([]domainservice.WebResult, 10)
	for i := range results {
		results[i] = domainservice.WebResult{Title: "t", URL: "https://example.com"}
	}
	out := FormatResearch(&domainservice.Generation{Text: "findings", Results: results})
	assert.True(t, strings.HasPrefix(out, "findings\n"))
	assert.Equal(t, maxResearchSource, strings.Count(out, "- t: https://example.com"))

	long := FormatResearch(&domainservice.Generation{Text: strings.Repeat("x", maxResearchChars+100)})
	assert.True(t, strings.HasSuffix(long, "\n... (truncated)"))
	assert.Len(t, long, maxResearchChars+len("\n... (truncated)"))

	// Byte 4000 falls inside a three-byte rune
	multibyte := FormatResearch(&domainservice.Generation{Text: "xx" + strings.Repeat("€", 2000)})
	assert.True(t, utf8.ValidString(multibyte))
	assert.Equal(t, 3998, len(strings.TrimSuffix(multibyte, "\n... (truncated)")))
}

func TestWithResearch(t *testing.T) {
	assert.Contains(t, WithResearch("p", ""), noResearchText)
	assert.Contains(t, WithResearch("p", "notes"), "--- WEB RESEARCH FINDINGS ---\nnotes\n--- END RESEARCH ---")
}
