package conform

import (
	"errors"
	"fmt"
	"strings"

	"github.com/ormasoftchile/a2ui-conform/pkg/protocol"
	"github.com/rs/zerolog"
	sjsonschema "github.com/santhosh-tekuri/jsonschema/v6"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// RootSchemaID is the canonical identifier of the server-to-client schema
// every message is checked against.
const RootSchemaID = "https://a2ui.dev/specification/0.9/server_to_client.json"

// SchemaChecker validates single messages against the root schema of a set
// of named schema documents. A checker without a resolvable root schema
// reports no findings.
type SchemaChecker struct {
	root    *sjsonschema.Schema
	printer *message.Printer
}

// CheckerOption configures a SchemaChecker.
type CheckerOption func(*checkerOptions)

type checkerOptions struct {
	rootID string
	logger zerolog.Logger
}

// WithRootID overrides the root schema identifier.
func WithRootID(id string) CheckerOption {
	return func(o *checkerOptions) { o.rootID = id }
}

// WithLogger sets the logger used for configuration warnings.
func WithLogger(l zerolog.Logger) CheckerOption {
	return func(o *checkerOptions) { o.logger = l }
}

// NewSchemaChecker compiles the root schema from the given documents, keyed
// by name. Documents are registered under their "$id" when present so that
// cross-document "$ref"s resolve by canonical URL.
func NewSchemaChecker(schemas map[string]any, opts ...CheckerOption) *SchemaChecker {
	o := checkerOptions{rootID: RootSchemaID, logger: zerolog.Nop()}
	for _, opt := range opts {
		opt(&o)
	}

	sc := &SchemaChecker{printer: message.NewPrinter(language.English)}
	root, err := compileRoot(schemas, o.rootID)
	if err != nil {
		o.logger.Warn().Err(err).Str("schema", o.rootID).
			Msg("root schema unavailable, schema conformance checks disabled")
		return sc
	}
	sc.root = root
	return sc
}

func compileRoot(schemas map[string]any, rootID string) (*sjsonschema.Schema, error) {
	if len(schemas) == 0 {
		return nil, errors.New("no schema documents configured")
	}
	c := sjsonschema.NewCompiler()
	for name, doc := range schemas {
		url := name
		if obj, ok := doc.(map[string]any); ok {
			if id, ok := obj["$id"].(string); ok && id != "" {
				url = id
			}
		}
		if err := c.AddResource(url, doc); err != nil {
			return nil, fmt.Errorf("add schema resource %q: %w", name, err)
		}
	}
	sch, err := c.Compile(rootID)
	if err != nil {
		return nil, fmt.Errorf("compile root schema: %w", err)
	}
	return sch, nil
}

// Enabled reports whether a root schema was compiled.
func (sc *SchemaChecker) Enabled() bool {
	return sc != nil && sc.root != nil
}

// Check validates one message and returns its schema findings. It never
// fails; values the engine cannot interpret become findings.
func (sc *SchemaChecker) Check(msg any) []*ValidationError {
	if !sc.Enabled() {
		return nil
	}
	err := sc.root.Validate(protocol.Normalize(msg))
	if err == nil {
		return nil
	}
	var ve *sjsonschema.ValidationError
	if !errors.As(err, &ve) {
		return []*ValidationError{{Kind: KindSchema, Message: err.Error()}}
	}
	var errs []*ValidationError
	for _, cause := range flattenValidationErrors(ve) {
		errs = append(errs, &ValidationError{
			Kind:    KindSchema,
			Path:    instancePath(cause.InstanceLocation),
			Message: cause.ErrorKind.LocalizedString(sc.printer),
		})
	}
	return errs
}

// CheckAll validates every message of a sequence, concatenating findings.
func (sc *SchemaChecker) CheckAll(msgs []any) []*ValidationError {
	var errs []*ValidationError
	for _, m := range msgs {
		errs = append(errs, sc.Check(m)...)
	}
	return errs
}

// flattenValidationErrors recursively collects all leaf validation errors.
func flattenValidationErrors(ve *sjsonschema.ValidationError) []*sjsonschema.ValidationError {
	if len(ve.Causes) == 0 {
		return []*sjsonschema.ValidationError{ve}
	}
	var flat []*sjsonschema.ValidationError
	for _, cause := range ve.Causes {
		flat = append(flat, flattenValidationErrors(cause)...)
	}
	return flat
}

// instancePath renders a location as a JSON pointer ("" for the document root).
func instancePath(loc []string) string {
	if len(loc) == 0 {
		return ""
	}
	var sb strings.Builder
	for _, tok := range loc {
		tok = strings.ReplaceAll(tok, "~", "~0")
		tok = strings.ReplaceAll(tok, "/", "~1")
		sb.WriteByte('/')
		sb.WriteString(tok)
	}
	return sb.String()
}
