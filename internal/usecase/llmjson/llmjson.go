// Package llmjson decodes structured oracle replies that may be wrapped in a
// Markdown code fence.
package llmjson

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

var ErrEmpty = errors.New("empty response")

const fence = "```"

// StripFence removes one leading fence line (with optional language tag) and
// one trailing fence. Unfenced input is returned trimmed.
func StripFence(s string) string {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, fence) {
		s = strings.TrimPrefix(s, fence)
		if i := strings.IndexByte(s, '\n'); i >= 0 && isLangTag(s[:i]) {
			s = s[i+1:]
		} else {
			s = strings.TrimPrefix(s, "json")
		}
	}
	s = strings.TrimSpace(s)
	s = strings.TrimSuffix(s, fence)
	return strings.TrimSpace(s)
}

func isLangTag(s string) bool {
	s = strings.TrimSpace(s)
	for _, r := range s {
		if !(r >= 'a' && r <= 'z' || r >= 'A' && r <= 'Z' || r >= '0' && r <= '9' || r == '-' || r == '_') {
			return false
		}
	}
	return true
}

// Decode strips a fence and unmarshals the remainder into v. Prose around
// the payload is dropped by keeping the span from the first '{' to the last
// '}'.
func Decode(s string, v any) error {
	body := StripFence(s)
	if body == "" {
		return ErrEmpty
	}
	if body[0] != '[' {
		body = extractObject(body)
	}
	if err := json.Unmarshal([]byte(body), v); err != nil {
		return fmt.Errorf("invalid JSON (%s): %w", truncate(body, 200), err)
	}
	return nil
}

func extractObject(s string) string {
	start := strings.IndexByte(s, '{')
	end := strings.LastIndexByte(s, '}')
	if start < 0 || end <= start {
		return s
	}
	return s[start : end+1]
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
