package mcp

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/ormasoftchile/a2ui-conform/pkg/conform"
)

func newHandlers() *Handlers {
	return &Handlers{Validator: conform.NewValidator(nil)}
}

func resultText(t *testing.T, r *mcp.CallToolResult) string {
	t.Helper()
	if len(r.Content) == 0 {
		t.Fatal("expected content")
	}
	tc, ok := r.Content[0].(mcp.TextContent)
	if !ok {
		t.Fatalf("expected text content, got %T", r.Content[0])
	}
	return tc.Text
}

func TestHandleValidate_MissingMessages(t *testing.T) {
	req := mcp.CallToolRequest{}
	req.Params.Arguments = map[string]any{}

	result, err := newHandlers().HandleValidate(context.Background(), req)
	if err != nil {
		t.Fatal(err)
	}
	if !result.IsError {
		t.Error("expected error for missing messages")
	}
}

func TestHandleValidate_BadJSON(t *testing.T) {
	req := mcp.CallToolRequest{}
	req.Params.Arguments = map[string]any{"messages": `{"deleteSurface":`}

	result, err := newHandlers().HandleValidate(context.Background(), req)
	if err != nil {
		t.Fatal(err)
	}
	if !result.IsError {
		t.Error("expected error for malformed json")
	}
}

func TestHandleValidate_Valid(t *testing.T) {
	req := mcp.CallToolRequest{}
	req.Params.Arguments = map[string]any{"messages": `[
		{"updateComponents": {"surfaceId": "s", "components": [
			{"id": "root", "props": {"component": "Slider", "value": 3}}
		]}}
	]`}

	result, err := newHandlers().HandleValidate(context.Background(), req)
	if err != nil {
		t.Fatal(err)
	}
	if result.IsError {
		t.Errorf("expected valid messages, got %s", resultText(t, result))
	}
	var resp validateResponse
	if err := json.Unmarshal([]byte(resultText(t, result)), &resp); err != nil {
		t.Fatal(err)
	}
	if !resp.Valid {
		t.Error("expected valid=true")
	}
}

func TestHandleValidate_Invalid(t *testing.T) {
	req := mcp.CallToolRequest{}
	req.Params.Arguments = map[string]any{"messages": `[{"deleteSurface": {"surfaceId": "s", "foo": 1}}]`}

	result, err := newHandlers().HandleValidate(context.Background(), req)
	if err != nil {
		t.Fatal(err)
	}
	if !result.IsError {
		t.Error("expected invalid result")
	}
	if !strings.Contains(resultText(t, result), "DeleteSurface has unexpected property: foo") {
		t.Errorf("unexpected output: %s", resultText(t, result))
	}
}

func TestHandleValidateBatch(t *testing.T) {
	_, file, _, _ := runtime.Caller(0)
	path := filepath.Join(filepath.Dir(file), "..", "batch", "testdata", "batch.yaml")

	req := mcp.CallToolRequest{}
	req.Params.Arguments = map[string]any{"path": path, "filter": `promptName == "login-form"`}

	result, err := newHandlers().HandleValidateBatch(context.Background(), req)
	if err != nil {
		t.Fatal(err)
	}
	var resp batchResponse
	if err := json.Unmarshal([]byte(resultText(t, result)), &resp); err != nil {
		t.Fatal(err)
	}
	if resp.Summary.Total != 2 || resp.Summary.Passed != 1 || resp.Summary.Skipped != 1 {
		t.Errorf("unexpected summary: %+v", resp.Summary)
	}
	if result.IsError {
		t.Error("no item failed, result should not be an error")
	}
}

func TestHandleValidateBatch_MissingPath(t *testing.T) {
	req := mcp.CallToolRequest{}
	req.Params.Arguments = map[string]any{}
	result, err := newHandlers().HandleValidateBatch(context.Background(), req)
	if err != nil {
		t.Fatal(err)
	}
	if !result.IsError {
		t.Error("expected error for missing path")
	}
}

func TestHandleSchema(t *testing.T) {
	for _, typ := range []string{"batch", "failure"} {
		req := mcp.CallToolRequest{}
		req.Params.Arguments = map[string]any{"type": typ}
		result, err := newHandlers().HandleSchema(context.Background(), req)
		if err != nil {
			t.Fatal(err)
		}
		if result.IsError {
			t.Errorf("expected success for %s schema", typ)
		}
	}
}

func TestHandleSchema_UnknownType(t *testing.T) {
	req := mcp.CallToolRequest{}
	req.Params.Arguments = map[string]any{"type": "runbook"}

	result, err := newHandlers().HandleSchema(context.Background(), req)
	if err != nil {
		t.Fatal(err)
	}
	if !result.IsError {
		t.Error("expected error for unknown schema type")
	}
}

func TestNewServer(t *testing.T) {
	if s := NewServer("test", conform.NewValidator(nil)); s == nil {
		t.Fatal("expected server")
	}
}

func TestHandleValidateBatch_NonStringKeys(t *testing.T) {
	path := filepath.Join(t.TempDir(), "batch.yaml")
	src := `
- modelName: m
  prompt: {name: p}
  runNumber: 1
  components:
    - deleteSurface: {surfaceId: main, 7: x}
`
	if err := os.WriteFile(path, []byte(src), 0o644); err != nil {
		t.Fatal(err)
	}

	req := mcp.CallToolRequest{}
	req.Params.Arguments = map[string]any{"path": path}
	result, err := newHandlers().HandleValidateBatch(context.Background(), req)
	if err != nil {
		t.Fatal(err)
	}

	var resp batchResponse
	if err := json.Unmarshal([]byte(resultText(t, result)), &resp); err != nil {
		t.Fatalf("expected JSON content, got %q: %v", resultText(t, result), err)
	}
	if resp.Summary.Failed != 1 {
		t.Errorf("unexpected summary: %+v", resp.Summary)
	}
	if len(resp.Results) != 1 || !strings.Contains(strings.Join(resp.Results[0].ValidationErrors, "\n"), "DeleteSurface has unexpected property: 7") {
		t.Errorf("unexpected results: %+v", resp.Results)
	}
}
