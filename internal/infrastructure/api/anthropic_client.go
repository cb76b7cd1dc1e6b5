package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/damon-houk/fx-monitor/internal/domain/service"
	"github.com/damon-houk/fx-monitor/internal/infrastructure/logger"
)

const (
	anthropicBaseURL = "https://api.anthropic.com/v1"
	anthropicVersion = "2023-06-01"
	anthropicModel   = "claude-sonnet-4-20250514"

	webSearchToolType = "web_search_20250305"
	webSearchMaxUses  = 5
	defaultMaxTokens  = 1024
)

var (
	// ErrNoAPIKey is returned when no Anthropic key is configured
	ErrNoAPIKey = errors.New("anthropic: no api key configured")
	// ErrProviderDown wraps transport failures and non-200 responses
	ErrProviderDown = errors.New("anthropic: provider unavailable")
)

// AnthropicClient calls the Anthropic Messages API. It satisfies service.TextGenerator.
type AnthropicClient struct {
	apiKey  string
	baseURL string
	model   string
	client  *http.Client
	log     logger.Logger
}

// AnthropicOption configures the client
type AnthropicOption func(*AnthropicClient)

// WithAnthropicModel sets the model name
func WithAnthropicModel(model string) AnthropicOption {
	return func(c *AnthropicClient) {
		if model != "" {
			c.model = model
		}
	}
}

// WithAnthropicBaseURL sets a custom base URL
func WithAnthropicBaseURL(u string) AnthropicOption {
	return func(c *AnthropicClient) {
		if u != "" {
			c.baseURL = strings.TrimRight(u, "/")
		}
	}
}

// WithAnthropicHTTPClient sets a custom HTTP client
func WithAnthropicHTTPClient(client *http.Client) AnthropicOption {
	return func(c *AnthropicClient) { c.client = client }
}

// WithAnthropicLogger sets the logger
func WithAnthropicLogger(l logger.Logger) AnthropicOption {
	return func(c *AnthropicClient) { c.log = l }
}

// NewAnthropicClient creates a client. Calls fail with ErrNoAPIKey when apiKey is empty.
func NewAnthropicClient(apiKey string, opts ...AnthropicOption) *AnthropicClient {
	c := &AnthropicClient{
		apiKey:  apiKey,
		baseURL: anthropicBaseURL,
		model:   anthropicModel,
		// Per-call deadlines come from the request; this is an upper bound.
		client: &http.Client{Timeout: 120 * time.Second},
	}
	for _, opt := range opts {
		opt(c)
	}
	c.log = logger.OrDefault(c.log).WithField("component", "anthropic")
	return c
}

// Configured reports whether an API key is present
func (c *AnthropicClient) Configured() bool {
	return c.apiKey != ""
}

type anthropicMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type anthropicTool struct {
	Type    string `json:"type"`
	Name    string `json:"name"`
	MaxUses int    `json:"max_uses,omitempty"`
}

type anthropicRequest struct {
	Model     string             `json:"model"`
	MaxTokens int                `json:"max_tokens"`
	Messages  []anthropicMessage `json:"messages"`
	Tools     []anthropicTool    `json:"tools,omitempty"`
}

type anthropicContentBlock struct {
	Type string `json:"type"`
	Text string `json:"text,omitempty"`
	// Content holds search results for web_search_tool_result blocks. It is
	// an error object instead of a list when the search failed.
	Content json.RawMessage `json:"content,omitempty"`
}

type anthropicSearchResult struct {
	Type  string `json:"type"`
	Title string `json:"title"`
	URL   string `json:"url"`
}

type anthropicResponse struct {
	ID         string                  `json:"id"`
	StopReason string                  `json:"stop_reason"`
	Content    []anthropicContentBlock `json:"content"`
}

// Generate sends one user message and returns the concatenated text blocks
// plus any web search results.
func (c *AnthropicClient) Generate(ctx context.Context, req service.GenerationRequest) (*service.Generation, error) {
	if !c.Configured() {
		return nil, ErrNoAPIKey
	}

	if req.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, req.Timeout)
		defer cancel()
	}

	maxTokens := req.MaxTokens
	if maxTokens <= 0 {
		maxTokens = defaultMaxTokens
	}

	body := anthropicRequest{
		Model:     c.model,
		MaxTokens: maxTokens,
		Messages:  []anthropicMessage{{Role: "user", Content: req.Prompt}},
	}
	if req.WebSearch {
		body.Tools = []anthropicTool{{Type: webSearchToolType, Name: "web_search", MaxUses: webSearchMaxUses}}
	}

	data, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("anthropic: marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/messages", bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	httpReq.Header.Set("x-api-key", c.apiKey)
	httpReq.Header.Set("anthropic-version", anthropicVersion)
	httpReq.Header.Set("content-type", "application/json")

	start := time.Now()
	resp, err := c.client.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrProviderDown, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return nil, fmt.Errorf("%w: status %d: %s", ErrProviderDown, resp.StatusCode, string(snippet))
	}

	var result anthropicResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("anthropic: decode response: %w", err)
	}

	gen := &service.Generation{}
	var text strings.Builder
	for _, block := range result.Content {
		switch block.Type {
		case "text":
			text.WriteString(block.Text)
			text.WriteString("\n")
		case "web_search_tool_result":
			var hits []anthropicSearchResult
			if err := json.Unmarshal(block.Content, &hits); err != nil {
				continue
			}
			for _, h := range hits {
				if h.Type == "web_search_result" {
					gen.Results = append(gen.Results, service.WebResult{Title: h.Title, URL: h.URL})
				}
			}
		}
	}
	gen.Text = strings.TrimSpace(text.String())

	c.log.Debug("Generation completed", map[string]interface{}{
		"stop_reason": result.StopReason,
		"web_search":  req.WebSearch,
		"results":     len(gen.Results),
		"chars":       len(gen.Text),
		"duration_ms": time.Since(start).Milliseconds(),
	})

	return gen, nil
}
