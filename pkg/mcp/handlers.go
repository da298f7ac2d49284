package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/ormasoftchile/a2ui-conform/pkg/batch"
	"github.com/ormasoftchile/a2ui-conform/pkg/conform"
	"github.com/ormasoftchile/a2ui-conform/pkg/report"
)

// Handlers implements the MCP tools against one validator.
type Handlers struct {
	Validator *conform.Validator
}

type validateResponse struct {
	Valid  bool                       `json:"valid"`
	Errors []*conform.ValidationError `json:"errors"`
}

// HandleValidate implements the a2ui/validate MCP tool.
func (h *Handlers) HandleValidate(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := req.GetArguments()
	raw, _ := args["messages"].(string)
	if strings.TrimSpace(raw) == "" {
		return errorResult("messages argument is required"), nil
	}

	dec := json.NewDecoder(strings.NewReader(raw))
	dec.UseNumber()
	var msgs []any
	if err := dec.Decode(&msgs); err != nil {
		return errorResult(fmt.Sprintf("messages must be a JSON array: %s", err)), nil
	}

	errs := h.Validator.Validate(msgs)
	resp := validateResponse{Valid: len(errs) == 0, Errors: errs}
	if resp.Errors == nil {
		resp.Errors = []*conform.ValidationError{}
	}
	data, err := json.MarshalIndent(resp, "", "  ")
	if err != nil {
		return errorResult(fmt.Sprintf("encode result: %s", err)), nil
	}
	return &mcp.CallToolResult{
		Content: []mcp.Content{mcp.NewTextContent(string(data))},
		IsError: !resp.Valid,
	}, nil
}

type batchResponse struct {
	Summary batch.Summary           `json:"summary"`
	Results []batch.ValidatedResult `json:"results"`
}

// HandleValidateBatch implements the a2ui/validate_batch MCP tool.
func (h *Handlers) HandleValidateBatch(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := req.GetArguments()
	path, _ := args["path"].(string)
	if path == "" {
		return errorResult("path argument is required"), nil
	}
	filterSrc, _ := args["filter"].(string)

	results, err := batch.LoadFile(path)
	if err != nil {
		return errorResult(err.Error()), nil
	}
	filter, err := batch.CompileFilter(filterSrc)
	if err != nil {
		return errorResult(err.Error()), nil
	}
	results, err = filter.Apply(results)
	if err != nil {
		return errorResult(err.Error()), nil
	}

	validated, summary := batch.NewAggregator(h.Validator).Run(results)
	data, err := json.MarshalIndent(batchResponse{Summary: summary, Results: validated}, "", "  ")
	if err != nil {
		return errorResult(fmt.Sprintf("encode result: %s", err)), nil
	}
	return &mcp.CallToolResult{
		Content: []mcp.Content{mcp.NewTextContent(string(data))},
		IsError: summary.Failed > 0,
	}, nil
}

// HandleSchema implements the a2ui/schema MCP tool.
func (h *Handlers) HandleSchema(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := req.GetArguments()
	schemaType, _ := args["type"].(string)

	var data []byte
	var err error

	switch schemaType {
	case "batch":
		data, err = batch.GenerateBatchJSONSchema()
	case "failure":
		data, err = report.GenerateFailureJSONSchema()
	default:
		return errorResult(fmt.Sprintf("unknown schema type %q: use 'batch' or 'failure'", schemaType)), nil
	}

	if err != nil {
		return errorResult(err.Error()), nil
	}
	return textResult(string(data)), nil
}

func textResult(text string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			mcp.NewTextContent(text),
		},
	}
}

func errorResult(msg string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			mcp.NewTextContent(msg),
		},
		IsError: true,
	}
}
