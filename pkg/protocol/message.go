// Package protocol models the A2UI server-to-client message stream as a
// tagged union so validators can switch on a message kind instead of probing
// object shapes.
package protocol

import (
	"encoding/json"
	"fmt"
)

// Kind identifies which server-to-client variant a message carries.
type Kind int

const (
	KindUnknown Kind = iota
	KindUpdateComponents
	KindUpdateDataModel
	KindDeleteSurface
)

// Wire tags for each variant.
const (
	TagUpdateComponents = "updateComponents"
	TagUpdateDataModel  = "updateDataModel"
	TagDeleteSurface    = "deleteSurface"
)

func (k Kind) String() string {
	switch k {
	case KindUpdateComponents:
		return "UpdateComponents"
	case KindUpdateDataModel:
		return "UpdateDataModel"
	case KindDeleteSurface:
		return "DeleteSurface"
	default:
		return "Unknown"
	}
}

// Tag returns the wire key for the kind, or "" for KindUnknown.
func (k Kind) Tag() string {
	switch k {
	case KindUpdateComponents:
		return TagUpdateComponents
	case KindUpdateDataModel:
		return TagUpdateDataModel
	case KindDeleteSurface:
		return TagDeleteSurface
	default:
		return ""
	}
}

var tagKinds = map[string]Kind{
	TagUpdateComponents: KindUpdateComponents,
	TagUpdateDataModel:  KindUpdateDataModel,
	TagDeleteSurface:    KindDeleteSurface,
}

// Message is one decoded server-to-client message.
//
// Body is the raw value under the variant tag. Fields holds the same value when
// it is a mapping; it is nil when the body has any other shape. Raw keeps the
// undecoded message for diagnostics.
type Message struct {
	Kind   Kind
	Body   any
	Fields map[string]any
	Raw    any
}

// Decode classifies a raw message. A value carrying none, or more than one,
// of the known tags decodes as KindUnknown.
func Decode(raw any) Message {
	msg := Message{Kind: KindUnknown, Raw: raw}
	obj, ok := AsObject(raw)
	if !ok {
		return msg
	}

	matched := 0
	for tag, kind := range tagKinds {
		body, present := obj[tag]
		if !present || body == nil {
			continue
		}
		matched++
		msg.Kind = kind
		msg.Body = body
	}
	if matched != 1 {
		return Message{Kind: KindUnknown, Raw: raw}
	}
	msg.Fields, _ = AsObject(msg.Body)
	return msg
}

// DecodeAll decodes a message sequence, preserving order.
func DecodeAll(raws []any) []Message {
	msgs := make([]Message, len(raws))
	for i, raw := range raws {
		msgs[i] = Decode(raw)
	}
	return msgs
}

// AsObject returns v as a string-keyed mapping. YAML decoders may produce
// map[any]any for mappings; those are converted when every key is a string.
func AsObject(v any) (map[string]any, bool) {
	switch m := v.(type) {
	case map[string]any:
		return m, true
	case map[any]any:
		out := make(map[string]any, len(m))
		for k, val := range m {
			ks, ok := k.(string)
			if !ok {
				return nil, false
			}
			out[ks] = val
		}
		return out, true
	default:
		return nil, false
	}
}

// AsArray returns v as a sequence.
func AsArray(v any) ([]any, bool) {
	arr, ok := v.([]any)
	return arr, ok
}

// Describe renders v as compact JSON for error messages, falling back to %v
// for values JSON cannot encode.
func Describe(v any) string {
	data, err := json.Marshal(Normalize(v))
	if err != nil {
		return fmt.Sprintf("%v", v)
	}
	return string(data)
}

// Normalize converts map[any]any trees into map[string]any so JSON encoders
// and schema validators accept them.
func Normalize(v any) any {
	switch t := v.(type) {
	case map[any]any:
		out := make(map[string]any, len(t))
		for k, val := range t {
			out[fmt.Sprint(k)] = Normalize(val)
		}
		return out
	case map[string]any:
		out := make(map[string]any, len(t))
		for k, val := range t {
			out[k] = Normalize(val)
		}
		return out
	case []any:
		out := make([]any, len(t))
		for i, val := range t {
			out[i] = Normalize(val)
		}
		return out
	default:
		return v
	}
}
