package llm

import (
	"fmt"
	"strings"

	"research-portal/internal/common"
)

// ExtractJSON isolates the JSON payload from a raw model response. Models
// asked for bare JSON still wrap it in markdown fences or surrounding prose
// often enough that this is a dedicated step with explicit failure modes,
// rather than best-effort slicing at call sites.
//
// Rules: a response starting with a code fence yields the content between the
// opening fence and the first closing fence; a malformed fence (no closing
// marker, or the whole block on one line) falls through to the brace scan
// over the raw text. Either way the candidate is reduced to the span from the
// first top-level '{' to its matching '}'. Failures wrap
// common.ErrMalformedResponse and are retryable.
func ExtractJSON(raw string) (string, error) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return "", fmt.Errorf("%w: empty response", common.ErrMalformedResponse)
	}

	if strings.HasPrefix(s, "```") {
		if inner, err := unfence(s); err == nil {
			s = inner
		}
	}

	return braceSpan(s)
}

// unfence returns the content between the opening fence line (``` or ```json)
// and the first closing fence.
func unfence(s string) (string, error) {
	nl := strings.IndexByte(s, '\n')
	if nl < 0 {
		return "", fmt.Errorf("%w: fence marker with no content", common.ErrMalformedResponse)
	}
	rest := s[nl+1:]
	end := strings.Index(rest, "```")
	if end < 0 {
		return "", fmt.Errorf("%w: unterminated code fence", common.ErrMalformedResponse)
	}
	return strings.TrimSpace(rest[:end]), nil
}

// braceSpan returns the substring from the first '{' to its matching '}',
// tracking nesting and skipping braces inside string literals.
func braceSpan(s string) (string, error) {
	start := strings.IndexByte(s, '{')
	if start < 0 {
		return "", fmt.Errorf("%w: no JSON object found", common.ErrMalformedResponse)
	}

	depth := 0
	inString := false
	escaped := false
	for i := start; i < len(s); i++ {
		c := s[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inString = false
			}
			continue
		}
		switch c {
		case '"':
			inString = true
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return s[start : i+1], nil
			}
		}
	}
	return "", fmt.Errorf("%w: unbalanced braces", common.ErrMalformedResponse)
}
