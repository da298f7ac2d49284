package conform

import "github.com/ormasoftchile/a2ui-conform/pkg/protocol"

// Validator runs both phases over one message sequence.
type Validator struct {
	Schema *SchemaChecker
}

// NewValidator returns a validator owning the given schema checker. A nil
// checker skips the schema phase.
func NewValidator(schema *SchemaChecker) *Validator {
	return &Validator{Schema: schema}
}

// Validate checks each raw message against the schema, then the decoded
// sequence against the semantic rules. Schema findings come first.
func (v *Validator) Validate(raws []any) []*ValidationError {
	var errs []*ValidationError
	errs = append(errs, v.Schema.CheckAll(raws)...)
	errs = append(errs, ValidateMessages(protocol.DecodeAll(raws))...)
	return errs
}
