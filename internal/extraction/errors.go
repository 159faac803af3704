package extraction

import (
	"fmt"

	"tajeryar/internal/contract"
)

// Kind classifies a terminal failure of the pipeline.
type Kind string

const (
	KindEmptyInput        Kind = "empty-input"
	KindUpstreamFailure   Kind = "upstream-failure"
	KindParseFailure      Kind = "parse-failure"
	KindValidationFailure Kind = "validation-failure"
)

// Error is the only error type returned by Pipeline. Which payload fields are
// set depends on Kind:
//
//	upstream-failure    Err
//	parse-failure       RawText, Err
//	validation-failure  RawText, Violations, Candidate
type Error struct {
	Kind       Kind
	RawText    string
	Violations []contract.Violation
	Candidate  map[string]any
	Err        error
}

func (e *Error) Error() string {
	switch e.Kind {
	case KindEmptyInput:
		return "extraction: transcript is empty"
	case KindValidationFailure:
		return fmt.Sprintf("extraction: %s: %d violation(s)", e.Kind, len(e.Violations))
	default:
		if e.Err != nil {
			return fmt.Sprintf("extraction: %s: %v", e.Kind, e.Err)
		}
		return "extraction: " + string(e.Kind)
	}
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Retryable reports whether the same input may succeed on a later attempt.
func (e *Error) Retryable() bool {
	return e.Kind == KindUpstreamFailure
}
