package report

import (
	"context"
	"fmt"
)

// SinkType selects the storage backend for failure documents.
type SinkType string

const (
	SinkFS  SinkType = "fs"
	SinkS3  SinkType = "s3"
	SinkGCS SinkType = "gcs"
)

// SinkConfig configures where failure documents go. Reporting is disabled
// when the selected backend has no destination.
type SinkConfig struct {
	Type SinkType  `yaml:"type"`
	Dir  string    `yaml:"dir"`
	S3   S3Config  `yaml:"s3"`
	GCS  GCSConfig `yaml:"gcs"`
}

// Enabled reports whether a destination is configured.
func (c SinkConfig) Enabled() bool {
	switch c.backend() {
	case SinkS3:
		return c.S3.Bucket != ""
	case SinkGCS:
		return c.GCS.Bucket != ""
	default:
		return c.Dir != ""
	}
}

func (c SinkConfig) backend() SinkType {
	if c.Type == "" {
		return SinkFS
	}
	return c.Type
}

// NewSink creates the configured sink.
func NewSink(ctx context.Context, cfg SinkConfig) (Sink, error) {
	switch cfg.backend() {
	case SinkFS:
		if cfg.Dir == "" {
			return nil, fmt.Errorf("fs sink: output directory is required")
		}
		return NewFileSink(cfg.Dir), nil
	case SinkS3:
		return NewS3Sink(ctx, cfg.S3)
	case SinkGCS:
		return NewGCSSink(ctx, cfg.GCS)
	default:
		return nil, fmt.Errorf("unsupported report sink type: %s", cfg.Type)
	}
}
