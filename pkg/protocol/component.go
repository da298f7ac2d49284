package protocol

import "fmt"

// RefRule extracts the component ids a component of one type references
// from its props. Extracted values are returned as found; callers decide how
// to treat empty or non-string entries.
type RefRule func(props map[string]any) []any

// refRules maps a component type tag to its reference-extraction rule.
// Types without an entry reference no other components.
var refRules = map[string]RefRule{
	"Row":    childrenRefs,
	"Column": childrenRefs,
	"List":   childrenRefs,
	"Card":   fieldRefs("child"),
	"Button": fieldRefs("child"),
	"Tabs":   tabItemRefs,
	"Modal":  fieldRefs("entryPointChild", "contentChild"),
}

// References returns the ids referenced by a component of the given type.
// Unknown types yield nil.
func References(componentType string, props map[string]any) []any {
	rule, ok := refRules[componentType]
	if !ok {
		return nil
	}
	return rule(props)
}

// childrenRefs accepts either an explicit id list or a template reference
// object of the form {"componentId": "..."}.
func childrenRefs(props map[string]any) []any {
	children, ok := props["children"]
	if !ok || children == nil {
		return nil
	}
	if arr, ok := AsArray(children); ok {
		return arr
	}
	if obj, ok := AsObject(children); ok {
		if id, ok := obj["componentId"]; ok {
			return []any{id}
		}
	}
	return nil
}

func fieldRefs(names ...string) RefRule {
	return func(props map[string]any) []any {
		var refs []any
		for _, name := range names {
			if v, ok := props[name]; ok {
				refs = append(refs, v)
			}
		}
		return refs
	}
}

func tabItemRefs(props map[string]any) []any {
	items, ok := AsArray(props["tabItems"])
	if !ok {
		return nil
	}
	var refs []any
	for _, item := range items {
		tab, ok := AsObject(item)
		if !ok {
			continue
		}
		if v, ok := tab["child"]; ok {
			refs = append(refs, v)
		}
	}
	return refs
}

// BoundProp is one bound-value property found on a component.
type BoundProp struct {
	Name  string
	Value any
}

// boundProps lists the properties of each component type that accept a bound
// value (a literal or a {"path": ...} data model reference).
var boundProps = map[string][]string{
	"Text":           {"text"},
	"Image":          {"url"},
	"Icon":           {"name"},
	"Video":          {"url"},
	"AudioPlayer":    {"url", "description"},
	"CheckBox":       {"label", "value"},
	"TextField":      {"label", "text"},
	"DateTimeInput":  {"value"},
	"Slider":         {"value"},
	"MultipleChoice": {"selections"},
}

// BoundValues returns the bound-value properties present on a component, in
// registry order. Tab titles are reported as tabItems[i].title.
func BoundValues(componentType string, props map[string]any) []BoundProp {
	var out []BoundProp
	for _, name := range boundProps[componentType] {
		if v, ok := props[name]; ok {
			out = append(out, BoundProp{Name: name, Value: v})
		}
	}
	if componentType == "Tabs" {
		items, _ := AsArray(props["tabItems"])
		for i, item := range items {
			tab, ok := AsObject(item)
			if !ok {
				continue
			}
			if v, ok := tab["title"]; ok {
				out = append(out, BoundProp{Name: tabTitleName(i), Value: v})
			}
		}
	}
	return out
}

func tabTitleName(i int) string {
	return fmt.Sprintf("tabItems[%d].title", i)
}
