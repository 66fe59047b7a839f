package ai

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"regexp"
	"strings"
)

// Pre-compiled patterns for cleaning up LLM JSON output. Models wrap
// JSON in code fences, leave trailing commas, or pad it with prose;
// the parser strips all of that before giving up.
var (
	codeFenceRegex = regexp.MustCompile("(?s)```(?:json|javascript|js)?\\s*\n?([\\s\\S]*?)\n?```")

	trailingCommaRegex     = regexp.MustCompile(`,(\s*[}\]])`)
	singleLineCommentRegex = regexp.MustCompile(`(?m)//.*$`)
	multiLineCommentRegex  = regexp.MustCompile(`(?s)/\*.*?\*/`)

	// Greedy so nested structures are captured whole.
	objectRegex = regexp.MustCompile(`(?s)\{[\s\S]*\}`)
	arrayRegex  = regexp.MustCompile(`(?s)\[[\s\S]*\]`)
)

// ParseResult represents the result of a JSON parse operation.
type ParseResult[T any] struct {
	Success bool
	Data    T
	Error   string
}

// Parse attempts to parse JSON from an AI response with fallback
// strategies, in order: direct parse, code-fence removal, cleanup of
// trailing commas and comments, extraction of the first JSON value
// embedded in surrounding prose.
func Parse[T any](text string, context string) ParseResult[T] {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return parseError[T]("empty input", context)
	}

	candidates := []string{trimmed}

	if m := codeFenceRegex.FindStringSubmatch(trimmed); m != nil {
		candidates = append(candidates, strings.TrimSpace(m[1]))
	}

	cleaned := multiLineCommentRegex.ReplaceAllString(trimmed, "")
	cleaned = singleLineCommentRegex.ReplaceAllString(cleaned, "")
	cleaned = trailingCommaRegex.ReplaceAllString(cleaned, "$1")
	cleaned = strings.TrimSpace(cleaned)
	if cleaned != trimmed {
		candidates = append(candidates, cleaned)
	}

	if m := arrayRegex.FindString(cleaned); m != "" {
		candidates = append(candidates, m)
	} else if m := objectRegex.FindString(cleaned); m != "" {
		candidates = append(candidates, m)
	}

	var lastErr error
	for _, candidate := range candidates {
		var data T
		if err := json.Unmarshal([]byte(candidate), &data); err == nil {
			return ParseResult[T]{Success: true, Data: data}
		} else {
			lastErr = err
		}
	}

	slog.Warn("failed to parse AI JSON response",
		"context", context,
		"error", lastErr,
		"preview", truncateString(text, 200))
	return parseError[T](fmt.Sprintf("no parse strategy succeeded: %v", lastErr), context)
}

func parseError[T any](msg, context string) ParseResult[T] {
	if context != "" {
		msg = context + ": " + msg
	}
	return ParseResult[T]{Success: false, Error: msg}
}

// truncateString shortens s to at most n bytes for log previews.
func truncateString(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
