package batch

import (
	"fmt"
	"reflect"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
)

// genMessage produces a message drawn from a small vocabulary of valid and
// invalid shapes so batches mix passes, failures and unknown messages.
func genMessage() gopter.Gen {
	ids := gen.OneConstOf("root", "a", "b", "c")
	return gen.IntRange(0, 4).FlatMap(func(v any) gopter.Gen {
		switch v.(int) {
		case 0:
			return gopter.CombineGens(ids, ids).Map(func(vals []any) any {
				return map[string]any{"updateComponents": map[string]any{
					"surfaceId": "main",
					"components": []any{
						map[string]any{"id": vals[0], "props": map[string]any{"component": "Column", "children": []any{vals[1]}}},
					},
				}}
			})
		case 1:
			return gen.Bool().Map(func(extra bool) any {
				body := map[string]any{"surfaceId": "main"}
				if extra {
					body["foo"] = 1
				}
				return map[string]any{"deleteSurface": body}
			})
		case 2:
			return gen.Const(any(map[string]any{"updateDataModel": map[string]any{"surfaceId": "main", "contents": []any{}}}))
		case 3:
			return gen.Const(any(map[string]any{"beginRendering": map[string]any{}}))
		default:
			return gen.Const(any(map[string]any{"updateDataModel": map[string]any{"surfaceId": "main", "contents": map[string]any{}}}))
		}
	}, reflect.TypeOf((*any)(nil)).Elem())
}

func genResult() gopter.Gen {
	return gopter.CombineGens(
		gen.IntRange(0, 1000),
		gen.SliceOfN(3, genMessage()),
		gen.Bool(),
	).Map(func(vals []any) GenerationResult {
		r := GenerationResult{
			ModelName:  "model",
			Prompt:     Prompt{Name: "prompt"},
			RunNumber:  vals[0].(int),
			Components: vals[1].([]any),
		}
		if vals[2].(bool) {
			r.Error = "upstream failure"
		}
		return r
	})
}

func TestAggregatorProperties(t *testing.T) {
	params := gopter.DefaultTestParameters()
	params.MinSuccessfulTests = 50
	properties := gopter.NewProperties(params)

	properties.Property("output is index-aligned with input", prop.ForAll(
		func(results []GenerationResult) bool {
			out, _ := newTestAggregator(WithWorkers(4)).Run(results)
			if len(out) != len(results) {
				return false
			}
			for i := range results {
				if out[i].RunNumber != results[i].RunNumber || out[i].Error != results[i].Error {
					return false
				}
			}
			return true
		},
		gen.SliceOf(genResult()),
	))

	properties.Property("validation is deterministic", prop.ForAll(
		func(results []GenerationResult) bool {
			first, s1 := newTestAggregator().Run(results)
			second, s2 := newTestAggregator(WithWorkers(3)).Run(results)
			if s1.Passed != s2.Passed || s1.Failed != s2.Failed || s1.Skipped != s2.Skipped {
				return false
			}
			for i := range first {
				if first[i].Status != second[i].Status ||
					fmt.Sprint(first[i].ValidationErrors) != fmt.Sprint(second[i].ValidationErrors) {
					return false
				}
			}
			return true
		},
		gen.SliceOf(genResult()),
	))

	properties.Property("upstream failures never count as pass or fail", prop.ForAll(
		func(results []GenerationResult) bool {
			out, summary := newTestAggregator().Run(results)
			skipped := 0
			for i, r := range results {
				if r.Error != "" {
					skipped++
					if out[i].Status != StatusSkipped || len(out[i].ValidationErrors) != 0 {
						return false
					}
				}
			}
			return summary.Skipped == skipped && summary.Passed+summary.Failed == len(results)-skipped
		},
		gen.SliceOf(genResult()),
	))

	properties.TestingRun(t)
}
