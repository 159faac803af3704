package contract

import (
	"fmt"
	"strings"
)

// Violation is a single failed rule. Field is a JSON path such as "items[0].quantity";
// an empty Field refers to the candidate itself.
type Violation struct {
	Field  string `json:"field"`
	Reason string `json:"reason"`
}

func (v Violation) String() string {
	if v.Field == "" {
		return v.Reason
	}
	return v.Field + ": " + v.Reason
}

// ValidationError lists every violated rule of a candidate, in field order.
type ValidationError struct {
	Violations []Violation
}

func (e *ValidationError) Error() string {
	parts := make([]string, len(e.Violations))
	for i, v := range e.Violations {
		parts[i] = v.String()
	}
	return fmt.Sprintf("invalid transaction: %s", strings.Join(parts, "; "))
}

// Has reports whether any violation is attached to the given field path.
func (e *ValidationError) Has(field string) bool {
	for _, v := range e.Violations {
		if v.Field == field {
			return true
		}
	}
	return false
}
