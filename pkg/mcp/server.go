// Package mcp exposes conformance checks as Model Context Protocol tools so
// agents can validate generated messages while they produce them.
package mcp

import (
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/ormasoftchile/a2ui-conform/pkg/conform"
)

// NewServer creates a new MCP server with the a2ui tools registered.
func NewServer(version string, validator *conform.Validator) *server.MCPServer {
	s := server.NewMCPServer(
		"a2ui-conform",
		version,
		server.WithToolCapabilities(true),
	)
	h := &Handlers{Validator: validator}

	s.AddTool(
		mcp.NewTool("a2ui/validate",
			mcp.WithDescription("Validate a sequence of A2UI server-to-client messages (JSON array)"),
			mcp.WithString("messages", mcp.Required(), mcp.Description("JSON array of server-to-client messages")),
		),
		h.HandleValidate,
	)

	s.AddTool(
		mcp.NewTool("a2ui/validate_batch",
			mcp.WithDescription("Validate a batch file of generation results and return per-item verdicts"),
			mcp.WithString("path", mcp.Required(), mcp.Description("Path to a JSON or YAML batch file")),
			mcp.WithString("filter", mcp.Description("Optional expr filter, e.g. modelName startsWith \"gemini\"")),
		),
		h.HandleValidateBatch,
	)

	s.AddTool(
		mcp.NewTool("a2ui/schema",
			mcp.WithDescription("Export a2ui-conform JSON Schema (batch input or failure document)"),
			mcp.WithString("type", mcp.Required(), mcp.Description("Schema type: 'batch' or 'failure'")),
		),
		h.HandleSchema,
	)

	return s
}
