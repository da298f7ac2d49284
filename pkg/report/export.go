package report

import (
	"encoding/json"
	"fmt"

	"github.com/invopop/jsonschema"
)

// GenerateFailureJSONSchema produces a JSON Schema Draft 2020-12 document
// for persisted failure documents.
func GenerateFailureJSONSchema() ([]byte, error) {
	r := new(jsonschema.Reflector)
	r.DoNotReference = false

	s := r.Reflect(&FailureDocument{})
	s.ID = "https://github.com/ormasoftchile/a2ui-conform/schemas/failure-v0.json"
	s.Title = "A2UI conformance failure document v0"
	s.Description = "Validation issues recorded for one failed batch item"

	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal failure schema: %w", err)
	}
	return data, nil
}
