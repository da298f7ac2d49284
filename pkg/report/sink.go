package report

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Sink stores serialized documents under slash-separated keys.
type Sink interface {
	Put(ctx context.Context, key string, data []byte) error
}

// FileSink writes documents below a base directory, creating intermediate
// directories as needed.
type FileSink struct {
	baseDir string
}

// NewFileSink returns a sink rooted at baseDir.
func NewFileSink(baseDir string) *FileSink {
	return &FileSink{baseDir: baseDir}
}

// Put writes data to baseDir/key atomically.
func (s *FileSink) Put(ctx context.Context, key string, data []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	path := filepath.Join(s.baseDir, filepath.FromSlash(key))
	rel, err := filepath.Rel(s.baseDir, path)
	if err != nil || rel == "." || strings.HasPrefix(rel, "..") {
		return fmt.Errorf("key %q escapes output directory", key)
	}
	//nolint:gosec // G301: report directories are meant to be shared
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("create report dir: %w", err)
	}

	tmpPath := path + ".tmp"
	//nolint:gosec // G306: reports are readable by design
	if err := os.WriteFile(tmpPath, data, 0644); err != nil {
		return fmt.Errorf("write report: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("commit report: %w", err)
	}
	return nil
}
