// Package report persists structured failure documents for batch items that
// failed validation.
package report

// IssueSeverity classifies a reported issue.
type IssueSeverity string

// SeverityCriticalSchema is attached to every persisted issue, whichever
// validation phase produced it.
const SeverityCriticalSchema IssueSeverity = "criticalSchema"

// FailureReason is the fixed reason recorded on every failure document.
const FailureReason = "Schema validation failure"

// Issue is one validation error in a failure document.
type Issue struct {
	Issue    string        `json:"issue" yaml:"issue"`
	Severity IssueSeverity `json:"severity" yaml:"severity"`
}

// FailureDocument is the persisted record of a failed item.
type FailureDocument struct {
	Pass            bool          `json:"pass" yaml:"pass"`
	Reason          string        `json:"reason" yaml:"reason"`
	Issues          []Issue       `json:"issues" yaml:"issues"`
	OverallSeverity IssueSeverity `json:"overallSeverity" yaml:"overallSeverity"`
}

// NewFailureDocument builds the document for a list of validation errors.
func NewFailureDocument(errs []string) FailureDocument {
	issues := make([]Issue, len(errs))
	for i, e := range errs {
		issues[i] = Issue{Issue: e, Severity: SeverityCriticalSchema}
	}
	return FailureDocument{
		Pass:            false,
		Reason:          FailureReason,
		Issues:          issues,
		OverallSeverity: SeverityCriticalSchema,
	}
}
