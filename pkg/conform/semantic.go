package conform

import (
	"encoding/json"
	"fmt"
	"slices"
	"sort"
	"strings"

	"github.com/ormasoftchile/a2ui-conform/pkg/protocol"
)

// RootComponentID is the id one component of some UpdateComponents message
// must carry whenever the sequence contains any UpdateComponents message.
const RootComponentID = "root"

var (
	dataModelFields     = []string{"surfaceId", "path", "contents"}
	deleteSurfaceFields = []string{"surfaceId"}
)

// ValidateMessages applies the protocol rules a schema cannot express to a
// decoded message sequence. Every message is checked; a malformed message
// never suppresses checks on the ones after it.
func ValidateMessages(msgs []protocol.Message) []*ValidationError {
	p := &semanticPass{}
	for _, m := range msgs {
		switch m.Kind {
		case protocol.KindUpdateComponents:
			p.sawUpdateComponents = true
			p.updateComponents(m)
		case protocol.KindUpdateDataModel:
			p.updateDataModel(m)
		case protocol.KindDeleteSurface:
			p.deleteSurface(m)
		default:
			p.add("Unknown message type in output: %s", protocol.Describe(m.Raw))
		}
	}

	if p.sawUpdateComponents && !p.sawRoot {
		p.add("Missing root component: At least one 'updateComponents' message must contain a component with id: '%s'.", RootComponentID)
	}
	return p.errs
}

// semanticPass carries the state of one ValidateMessages call.
type semanticPass struct {
	errs                []*ValidationError
	sawUpdateComponents bool
	sawRoot             bool
}

func (p *semanticPass) add(msg string, args ...any) {
	p.errs = append(p.errs, semanticf(msg, args...))
}

func (p *semanticPass) updateComponents(m protocol.Message) {
	data := m.Fields
	if data == nil {
		p.add("UpdateComponents must be an object.")
		return
	}
	if _, ok := data["surfaceId"]; !ok {
		p.add("UpdateComponents must have a 'surfaceId' property.")
	}
	components, ok := protocol.AsArray(data["components"])
	if !ok {
		p.add("UpdateComponents must have a 'components' array.")
		return
	}

	// Ids are scoped to this message: references resolve only against
	// components declared alongside them.
	declared := make(map[string]struct{}, len(components))
	for _, c := range components {
		comp, _ := protocol.AsObject(c)
		id, ok := comp["id"].(string)
		if !ok || id == "" {
			continue
		}
		if _, dup := declared[id]; dup {
			p.add("Duplicate component ID found: %s", id)
		}
		declared[id] = struct{}{}
		if id == RootComponentID {
			p.sawRoot = true
		}
	}

	for i, c := range components {
		p.component(i, c, declared)
	}
}

func (p *semanticPass) component(index int, raw any, declared map[string]struct{}) {
	comp, ok := protocol.AsObject(raw)
	if !ok {
		p.add("Component at index %d must be an object.", index)
		return
	}

	label := fmt.Sprintf("components[%d]", index)
	switch id := comp["id"].(type) {
	case nil:
		p.add("Component is missing an 'id'.")
	case string:
		if id == "" {
			p.add("Component is missing an 'id'.")
		} else {
			label = id
		}
	default:
		p.add("Component '%s' has a non-string 'id': %s", label, protocol.Describe(id))
	}

	props, ok := protocol.AsObject(comp["props"])
	if !ok {
		p.add("Component '%s' is missing 'props' object.", label)
		return
	}
	componentType, _ := props["component"].(string)
	if componentType == "" {
		p.add("Component '%s' is missing 'component' property in 'props'.", label)
		return
	}

	for _, ref := range protocol.References(componentType, props) {
		p.reference(ref, declared)
	}
	for _, bp := range protocol.BoundValues(componentType, props) {
		p.boundValue(bp, label, componentType)
	}
}

func (p *semanticPass) reference(ref any, declared map[string]struct{}) {
	switch id := ref.(type) {
	case nil:
		return
	case string:
		if id == "" {
			return
		}
		if _, ok := declared[id]; ok {
			return
		}
	}
	p.add("Component %s references non-existent component ID.", protocol.Describe(ref))
}

// boundValue accepts primitives, array literals and {"path": ...} objects.
func (p *semanticPass) boundValue(bp protocol.BoundProp, componentID, componentType string) {
	if isPrimitive(bp.Value) {
		return
	}
	if _, ok := protocol.AsArray(bp.Value); ok {
		return
	}
	obj, ok := protocol.AsObject(bp.Value)
	if !ok {
		p.add("Component '%s' of type '%s' property '%s' must be a primitive or an object.",
			componentID, componentType, bp.Name)
		return
	}
	if len(obj) == 1 {
		if _, ok := obj["path"]; ok {
			return
		}
	}
	p.add("Component '%s' of type '%s' property '%s' object must have exactly one key: 'path'. Found: %s",
		componentID, componentType, bp.Name, strings.Join(sortedKeys(obj), ", "))
}

// updateDataModel findings name the variant by its wire tag.
func (p *semanticPass) updateDataModel(m protocol.Message) {
	tag := m.Kind.Tag()
	data := m.Fields
	if data == nil {
		p.add("%s must be an object.", tag)
		return
	}
	if _, ok := data["surfaceId"]; !ok {
		p.add("%s must have a 'surfaceId' property.", tag)
	}
	for _, key := range unexpectedKeys(data, dataModelFields) {
		p.add("%s has unexpected property: %s", tag, key)
	}
	if _, ok := protocol.AsObject(data["contents"]); !ok {
		p.add("%s 'contents' property must be an object.", tag)
	}
}

func (p *semanticPass) deleteSurface(m protocol.Message) {
	data := m.Fields
	if data == nil {
		p.add("DeleteSurface must be an object.")
		return
	}
	if _, ok := data["surfaceId"]; !ok {
		p.add("DeleteSurface must have a 'surfaceId' property.")
	}
	for _, key := range unexpectedKeys(data, deleteSurfaceFields) {
		p.add("DeleteSurface has unexpected property: %s", key)
	}
}

func isPrimitive(v any) bool {
	switch v.(type) {
	case string, bool, json.Number,
		int, int8, int16, int32, int64,
		uint, uint8, uint16, uint32, uint64,
		float32, float64:
		return true
	}
	return false
}

// unexpectedKeys returns keys of data outside allowed, sorted.
func unexpectedKeys(data map[string]any, allowed []string) []string {
	var extra []string
	for key := range data {
		if !slices.Contains(allowed, key) {
			extra = append(extra, key)
		}
	}
	sort.Strings(extra)
	return extra
}

func sortedKeys(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
