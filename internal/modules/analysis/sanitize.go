package analysis

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"
)

var trailingCommaRe = regexp.MustCompile(`,\s*([}\]])`)

// ParseError means the model reply could not be decoded as JSON. Raw and
// Cleaned are kept for server-side logging and never returned to clients.
type ParseError struct {
	Raw     string
	Cleaned string
	Err     error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse model response: %v", e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

// CleanModelJSON strips the decoration models wrap around JSON replies:
// whitespace, markdown code fences, prose before the first "{" and after
// the last "}", and trailing commas before closing brackets.
func CleanModelJSON(raw string) string {
	s := strings.TrimSpace(raw)

	if strings.HasPrefix(s, "```") {
		if idx := strings.Index(s, "\n"); idx >= 0 {
			s = s[idx+1:]
		} else {
			s = strings.TrimPrefix(s, "```")
		}
		s = strings.TrimSpace(s)
		s = strings.TrimSuffix(s, "```")
		s = strings.TrimSpace(s)
	}

	first := strings.Index(s, "{")
	last := strings.LastIndex(s, "}")
	if first >= 0 && last > first {
		s = s[first : last+1]
	}

	return trailingCommaRe.ReplaceAllString(s, "$1")
}

// ParseResult cleans and decodes a model reply into a Result.
func ParseResult(raw string) (*Result, error) {
	cleaned := CleanModelJSON(raw)

	var res Result
	if err := json.Unmarshal([]byte(cleaned), &res); err != nil {
		return nil, &ParseError{Raw: raw, Cleaned: cleaned, Err: err}
	}
	return &res, nil
}
