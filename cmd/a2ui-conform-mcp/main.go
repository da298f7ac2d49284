// Package main provides the a2ui-conform-mcp binary, an MCP server for AI agents.
package main

import (
	"fmt"
	"os"

	"github.com/mark3labs/mcp-go/server"
	"github.com/ormasoftchile/a2ui-conform/pkg/config"
	"github.com/ormasoftchile/a2ui-conform/pkg/conform"
	"github.com/ormasoftchile/a2ui-conform/pkg/logging"
	amcp "github.com/ormasoftchile/a2ui-conform/pkg/mcp"
)

var version = "dev"

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	if err := config.LoadDotEnv(".env"); err != nil {
		return err
	}
	cfg := config.Default()
	// stdout carries the protocol; keep logs machine-readable on stderr.
	cfg.Log.Format = "json"
	if err := config.ApplyEnv(&cfg, os.Getenv); err != nil {
		return err
	}
	logging.Init(cfg.Log)

	var checker *conform.SchemaChecker
	if cfg.SchemaDir != "" {
		schemas, err := conform.LoadSchemaDir(cfg.SchemaDir)
		if err != nil {
			return err
		}
		checker = conform.NewSchemaChecker(schemas,
			conform.WithRootID(cfg.RootSchema),
			conform.WithLogger(logging.WithComponent("schema")),
		)
	}

	s := amcp.NewServer(version, conform.NewValidator(checker))
	return server.ServeStdio(s)
}
