//go:build ignore

package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/ormasoftchile/a2ui-conform/pkg/batch"
	"github.com/ormasoftchile/a2ui-conform/pkg/report"
)

func main() {
	outputs := []struct {
		path string
		gen  func() ([]byte, error)
	}{
		{"schemas/batch-v0.json", batch.GenerateBatchJSONSchema},
		{"schemas/failure-v0.json", report.GenerateFailureJSONSchema},
	}

	for _, o := range outputs {
		data, err := o.gen()
		if err != nil {
			fmt.Fprintf(os.Stderr, "generate %s: %v\n", o.path, err)
			os.Exit(1)
		}
		if err := os.MkdirAll(filepath.Dir(o.path), 0o755); err != nil {
			fmt.Fprintf(os.Stderr, "mkdir: %v\n", err)
			os.Exit(1)
		}
		if err := os.WriteFile(o.path, data, 0o644); err != nil {
			fmt.Fprintf(os.Stderr, "write: %v\n", err)
			os.Exit(1)
		}
		fmt.Println("wrote", o.path)
	}
}
