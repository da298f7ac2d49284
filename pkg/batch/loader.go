package batch

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/ormasoftchile/a2ui-conform/pkg/protocol"
	"gopkg.in/yaml.v3"
)

// LoadFile reads a batch of generation results from a JSON or YAML file.
func LoadFile(path string) ([]GenerationResult, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open batch: %w", err)
	}
	defer f.Close()
	return Load(f)
}

// Load decodes a batch from r. The document is either a sequence of results
// or a mapping with a "results" sequence. Multiple YAML documents are
// concatenated in order.
func Load(r io.Reader) ([]GenerationResult, error) {
	dec := yaml.NewDecoder(r)
	var all []GenerationResult
	for {
		var node yaml.Node
		err := dec.Decode(&node)
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("decode batch: %w", err)
		}
		results, err := decodeDocument(&node)
		if err != nil {
			return nil, err
		}
		all = append(all, results...)
	}
	return all, nil
}

func decodeDocument(node *yaml.Node) ([]GenerationResult, error) {
	doc := node
	if doc.Kind == yaml.DocumentNode && len(doc.Content) > 0 {
		doc = doc.Content[0]
	}

	switch doc.Kind {
	case yaml.SequenceNode:
		return decodeRecords(doc), nil
	case yaml.MappingNode:
		for i := 0; i+1 < len(doc.Content); i += 2 {
			if doc.Content[i].Value != "results" {
				continue
			}
			seq := doc.Content[i+1]
			if seq.Kind == yaml.ScalarNode && seq.Tag == "!!null" {
				return nil, nil
			}
			if seq.Kind != yaml.SequenceNode {
				return nil, fmt.Errorf("decode batch: 'results' must be a sequence, got %s", kindName(seq.Kind))
			}
			return decodeRecords(seq), nil
		}
		return nil, nil
	default:
		return nil, fmt.Errorf("decode batch: expected a sequence or a mapping with 'results', got %s", kindName(doc.Kind))
	}
}

// decodeRecords decodes each element on its own so one malformed record
// only affects its own slot.
func decodeRecords(seq *yaml.Node) []GenerationResult {
	results := make([]GenerationResult, 0, len(seq.Content))
	for _, item := range seq.Content {
		results = append(results, decodeRecord(item))
	}
	return results
}

// record mirrors GenerationResult with the upstream-controlled fields left
// untyped.
type record struct {
	ModelName  string `yaml:"modelName"`
	Prompt     Prompt `yaml:"prompt"`
	RunNumber  int    `yaml:"runNumber"`
	Components any    `yaml:"components"`
	Error      any    `yaml:"error"`
	LatencyMs  int64  `yaml:"latencyMs"`
}

// decodeRecord never fails. A record that cannot be read as a generation
// result is kept with an upstream error, which excludes it from validation.
func decodeRecord(node *yaml.Node) GenerationResult {
	var rec record
	decodeErr := node.Decode(&rec)

	r := GenerationResult{
		ModelName: rec.ModelName,
		Prompt:    rec.Prompt,
		RunNumber: rec.RunNumber,
		Error:     upstreamError(rec.Error),
		LatencyMs: rec.LatencyMs,
	}

	switch c := rec.Components.(type) {
	case nil:
	case []any:
		r.Components, _ = protocol.Normalize(c).([]any)
	default:
		if r.Error == "" {
			r.Error = "malformed record: components must be a sequence, got " + protocol.Describe(c)
		}
	}

	if decodeErr != nil && r.Error == "" {
		r.Error = "malformed record: " + decodeMessage(decodeErr)
	}
	return r
}

// upstreamError renders the error marker of a record. Only falsy values
// (absent, null, false, zero, empty string) mean the generation succeeded.
func upstreamError(v any) string {
	switch e := v.(type) {
	case nil:
		return ""
	case string:
		return e
	case bool:
		if !e {
			return ""
		}
	case int:
		if e == 0 {
			return ""
		}
	case float64:
		if e == 0 {
			return ""
		}
	}
	return protocol.Describe(v)
}

func decodeMessage(err error) string {
	var te *yaml.TypeError
	if errors.As(err, &te) {
		return strings.Join(te.Errors, "; ")
	}
	return err.Error()
}

func kindName(k yaml.Kind) string {
	switch k {
	case yaml.ScalarNode:
		return "scalar"
	case yaml.AliasNode:
		return "alias"
	case yaml.DocumentNode:
		return "document"
	default:
		return "unknown node"
	}
}
