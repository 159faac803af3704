// Package llmjson recovers a JSON value from text produced by a language model
// that was asked to answer with JSON only.
package llmjson

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"
)

var (
	openingFence  = regexp.MustCompile("^```[A-Za-z0-9_+-]*[ \t]*\r?\n?")
	trailingComma = regexp.MustCompile(`,(\s*[}\]])`)
	newlines      = strings.NewReplacer("\r\n", " ", "\n", " ", "\r", " ")
)

// ParseError is returned when no JSON value can be recovered. Raw holds the
// model output exactly as received.
type ParseError struct {
	Raw string
	Err error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("model output is not valid JSON: %v", e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// Extract strips a surrounding code fence, parses the remainder strictly and,
// if that fails, retries once after removing trailing commas and collapsing
// newlines. The value is returned as decoded by encoding/json; no semantic
// checks are made.
func Extract(raw string) (any, error) {
	body := StripFence(raw)

	var v any
	err := json.Unmarshal([]byte(body), &v)
	if err == nil {
		return v, nil
	}

	if retryErr := json.Unmarshal([]byte(Repair(body)), &v); retryErr == nil {
		return v, nil
	}
	return nil, &ParseError{Raw: raw, Err: err}
}

// StripFence unwraps text enclosed in a fenced code block, with or without a
// language tag. Text without a fence is returned trimmed.
func StripFence(raw string) string {
	s := strings.TrimSpace(raw)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = openingFence.ReplaceAllString(s, "")
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}

// Repair applies the textual fixes for the most common model slips.
func Repair(s string) string {
	s = trailingComma.ReplaceAllString(s, "$1")
	return newlines.Replace(s)
}
