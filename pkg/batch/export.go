package batch

import (
	"encoding/json"
	"fmt"

	"github.com/invopop/jsonschema"
)

// GenerateBatchJSONSchema produces a JSON Schema Draft 2020-12 document for
// batch input files (a sequence of generation results).
func GenerateBatchJSONSchema() ([]byte, error) {
	r := new(jsonschema.Reflector)
	r.DoNotReference = false

	item := r.Reflect(&GenerationResult{})
	s := &jsonschema.Schema{
		Version:     jsonschema.Version,
		ID:          "https://github.com/ormasoftchile/a2ui-conform/schemas/batch-v0.json",
		Title:       "A2UI conformance batch v0",
		Description: "Generation results to validate, in order",
		Type:        "array",
		Items:       &jsonschema.Schema{Ref: "#/$defs/GenerationResult"},
		Definitions: item.Definitions,
	}

	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal batch schema: %w", err)
	}
	return data, nil
}
