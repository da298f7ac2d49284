package batch

import (
	"fmt"
	"strings"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"
)

// Filter selects batch items with a boolean expr-lang expression such as
//
//	modelName startsWith "gemini" && runNumber <= 2
//
// Available variables: modelName, promptName, runNumber, upstreamError,
// messageCount, hasError.
type Filter struct {
	source  string
	program *vm.Program
}

func filterEnv(r GenerationResult) map[string]any {
	return map[string]any{
		"modelName":     r.ModelName,
		"promptName":    r.Prompt.Name,
		"runNumber":     r.RunNumber,
		"upstreamError": r.Error,
		"hasError":      r.Error != "",
		"messageCount":  len(r.Components),
	}
}

// CompileFilter compiles a filter expression. An empty expression matches
// every item.
func CompileFilter(source string) (*Filter, error) {
	source = strings.TrimSpace(source)
	if source == "" {
		return &Filter{}, nil
	}
	program, err := expr.Compile(source, expr.Env(filterEnv(GenerationResult{})), expr.AsBool())
	if err != nil {
		return nil, fmt.Errorf("compile filter %q: %w", source, err)
	}
	return &Filter{source: source, program: program}, nil
}

// Match reports whether r satisfies the filter.
func (f *Filter) Match(r GenerationResult) (bool, error) {
	if f == nil || f.program == nil {
		return true, nil
	}
	out, err := expr.Run(f.program, filterEnv(r))
	if err != nil {
		return false, fmt.Errorf("eval filter %q: %w", f.source, err)
	}
	ok, isBool := out.(bool)
	if !isBool {
		return false, fmt.Errorf("filter %q did not return bool (got %T)", f.source, out)
	}
	return ok, nil
}

// Apply returns the matching items in their original order.
func (f *Filter) Apply(results []GenerationResult) ([]GenerationResult, error) {
	if f == nil || f.program == nil {
		return results, nil
	}
	out := make([]GenerationResult, 0, len(results))
	for _, r := range results {
		ok, err := f.Match(r)
		if err != nil {
			return nil, err
		}
		if ok {
			out = append(out, r)
		}
	}
	return out, nil
}
