package service

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// ErrNoJSONPayload is returned when model output contains no usable JSON object
var ErrNoJSONPayload = errors.New("no JSON payload in model output")

const (
	jsonFence  = "```json"
	plainFence = "```"
)

// ExtractJSONPayload pulls a JSON document out of free-form model output.
// It looks for a ```json fence, then any ``` fence, then the outermost
// {...} span. An unterminated fence runs to the end of the text.
func ExtractJSONPayload(text string) ([]byte, error) {
	var candidate string

	switch {
	case strings.Contains(text, jsonFence):
		candidate = fenced(text, jsonFence)
	case strings.Contains(text, plainFence):
		candidate = fenced(text, plainFence)
	default:
		start := strings.Index(text, "{")
		end := strings.LastIndex(text, "}")
		if start >= 0 && end > start {
			candidate = text[start : end+1]
		}
	}

	candidate = strings.TrimSpace(candidate)
	if candidate == "" {
		return nil, ErrNoJSONPayload
	}
	if !json.Valid([]byte(candidate)) {
		return nil, fmt.Errorf("%w: payload is not valid JSON", ErrNoJSONPayload)
	}

	return []byte(candidate), nil
}

func fenced(text, open string) string {
	rest := text[strings.Index(text, open)+len(open):]
	if end := strings.Index(rest, plainFence); end >= 0 {
		rest = rest[:end]
	}
	return rest
}
