// Package batch validates batches of generated A2UI message sets and
// aggregates per-item verdicts.
package batch

// Prompt identifies the prompt a result was generated from.
type Prompt struct {
	Name        string `json:"name" yaml:"name" jsonschema:"required"`
	Description string `json:"description,omitempty" yaml:"description,omitempty"`
	PromptText  string `json:"promptText,omitempty" yaml:"promptText,omitempty"`
}

// GenerationResult is one upstream generation attempt. Either Components
// holds the generated message sequence or Error marks the attempt as failed.
type GenerationResult struct {
	ModelName  string `json:"modelName" yaml:"modelName" jsonschema:"required"`
	Prompt     Prompt `json:"prompt" yaml:"prompt" jsonschema:"required"`
	RunNumber  int    `json:"runNumber" yaml:"runNumber" jsonschema:"required"`
	Components []any  `json:"components,omitempty" yaml:"components,omitempty" jsonschema:"description=Server-to-client messages in emission order"`
	Error      string `json:"error,omitempty" yaml:"error,omitempty" jsonschema:"description=Upstream generation failure; the item is not validated"`
	LatencyMs  int64  `json:"latencyMs,omitempty" yaml:"latencyMs,omitempty"`
}

// Validated reports whether the result reaches validation: it carries no
// upstream error and has a message sequence.
func (r GenerationResult) Validated() bool {
	return r.Error == "" && r.Components != nil
}

// Item statuses.
const (
	StatusPassed  = "passed"
	StatusFailed  = "failed"
	StatusSkipped = "skipped" // upstream failure or no components; never validated
)

// ValidatedResult is a GenerationResult with its validation verdict.
// ValidationErrors is empty for passed and skipped items.
type ValidatedResult struct {
	GenerationResult `yaml:",inline"`
	Status           string   `json:"status" yaml:"status"`
	ValidationErrors []string `json:"validationErrors" yaml:"validationErrors"`
}

// Passed reports whether the item was validated with no findings.
func (r ValidatedResult) Passed() bool {
	return r.Status == StatusPassed
}

// Failed reports whether the item was validated with findings.
func (r ValidatedResult) Failed() bool {
	return r.Status == StatusFailed
}

// Summary aggregates verdict counts across a batch. Skipped items are
// excluded from Passed and Failed.
type Summary struct {
	RunID   string `json:"runId" yaml:"runId"`
	Total   int    `json:"total" yaml:"total"`
	Passed  int    `json:"passed" yaml:"passed"`
	Failed  int    `json:"failed" yaml:"failed"`
	Skipped int    `json:"skipped" yaml:"skipped"`
}
