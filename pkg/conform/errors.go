// Package conform implements the two-phase conformance check for A2UI
// server-to-client message sets: JSON Schema validation of each message,
// then semantic and referential-integrity rules the schema cannot express.
package conform

import "fmt"

// Kind classifies where a validation finding came from.
type Kind string

const (
	KindSchema   Kind = "schema"
	KindSemantic Kind = "semantic"
)

// ValidationError is one finding from either phase.
type ValidationError struct {
	Kind    Kind   `json:"kind"`
	Path    string `json:"path,omitempty"` // instance location for schema findings
	Message string `json:"message"`
}

// Error renders the flat message recorded on a validated result. Schema
// findings are prefixed by their instance location.
func (e *ValidationError) Error() string {
	if e.Path != "" {
		return e.Path + " " + e.Message
	}
	return e.Message
}

func semanticf(msg string, args ...any) *ValidationError {
	return &ValidationError{
		Kind:    KindSemantic,
		Message: fmt.Sprintf(msg, args...),
	}
}

// Messages flattens findings into their rendered strings, preserving order.
func Messages(errs []*ValidationError) []string {
	if len(errs) == 0 {
		return []string{}
	}
	out := make([]string, len(errs))
	for i, e := range errs {
		out[i] = e.Error()
	}
	return out
}

// CountByKind tallies findings per kind.
func CountByKind(errs []*ValidationError) map[Kind]int {
	counts := make(map[Kind]int)
	for _, e := range errs {
		counts[e.Kind]++
	}
	return counts
}
