// Package config layers defaults, a YAML file, a .env file and environment
// variables into the settings of a conformance run. Command-line flags are
// applied last by the CLI.
package config

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"runtime"
	"strconv"
	"strings"

	"github.com/ormasoftchile/a2ui-conform/pkg/conform"
	"github.com/ormasoftchile/a2ui-conform/pkg/logging"
	"github.com/ormasoftchile/a2ui-conform/pkg/report"
	"gopkg.in/yaml.v3"
)

// Config holds the settings of a conformance run.
type Config struct {
	SchemaDir   string            `yaml:"schemaDir"`
	RootSchema  string            `yaml:"rootSchema"`
	Workers     int               `yaml:"workers"`
	Filter      string            `yaml:"filter"`
	Output      report.SinkConfig `yaml:"output"`
	Log         logging.Config    `yaml:"log"`
	MetricsFile string            `yaml:"metricsFile"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		RootSchema: conform.RootSchemaID,
		Workers:    runtime.NumCPU(),
		Output:     report.SinkConfig{Type: report.SinkFS},
		Log:        logging.DefaultConfig(),
	}
}

// LoadFile overlays the YAML file at path onto cfg. Unknown keys are rejected.
func LoadFile(path string, cfg *Config) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open config: %w", err)
	}
	defer f.Close()
	return Load(f, cfg)
}

// Load overlays a YAML document read from r onto cfg.
func Load(r io.Reader, cfg *Config) error {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && err != io.EOF {
		return fmt.Errorf("decode config: %w", err)
	}
	return nil
}

// ApplyEnv overlays A2UI_* environment variables onto cfg.
func ApplyEnv(cfg *Config, getenv func(string) string) error {
	setString(&cfg.SchemaDir, getenv("A2UI_SCHEMA_DIR"))
	setString(&cfg.RootSchema, getenv("A2UI_ROOT_SCHEMA"))
	setString(&cfg.Filter, getenv("A2UI_FILTER"))
	setString(&cfg.MetricsFile, getenv("A2UI_METRICS_FILE"))
	setString(&cfg.Log.Level, getenv("A2UI_LOG_LEVEL"))
	setString(&cfg.Log.Format, getenv("A2UI_LOG_FORMAT"))

	if v := getenv("A2UI_SINK"); v != "" {
		cfg.Output.Type = report.SinkType(v)
	}
	setString(&cfg.Output.Dir, getenv("A2UI_OUTPUT_DIR"))
	setString(&cfg.Output.S3.Region, getenv("AWS_REGION"))
	setString(&cfg.Output.S3.Region, getenv("A2UI_S3_REGION"))
	setString(&cfg.Output.S3.Bucket, getenv("A2UI_S3_BUCKET"))
	setString(&cfg.Output.S3.Endpoint, getenv("A2UI_S3_ENDPOINT"))
	setString(&cfg.Output.S3.Prefix, getenv("A2UI_S3_PREFIX"))
	setString(&cfg.Output.GCS.Bucket, getenv("A2UI_GCS_BUCKET"))
	setString(&cfg.Output.GCS.Prefix, getenv("A2UI_GCS_PREFIX"))

	if v := getenv("A2UI_WORKERS"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("A2UI_WORKERS: %w", err)
		}
		cfg.Workers = n
	}
	return nil
}

func setString(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}

// Validate reports settings that cannot produce a run.
func (c Config) Validate() error {
	if c.Workers < 1 {
		return fmt.Errorf("workers must be at least 1, got %d", c.Workers)
	}
	switch c.Output.Type {
	case "", report.SinkFS, report.SinkS3, report.SinkGCS:
	default:
		return fmt.Errorf("unsupported output type %q: must be fs, s3, or gcs", c.Output.Type)
	}
	return nil
}

// LoadDotEnv reads KEY=VALUE lines from path and sets variables that are not
// already set. Blank lines and # comments are skipped; a missing file is not
// an error.
func LoadDotEnv(path string) error {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		key, val, ok := strings.Cut(line, "=")
		if !ok {
			continue
		}
		key = strings.TrimSpace(key)
		val = strings.Trim(strings.TrimSpace(val), `"'`)
		if os.Getenv(key) == "" {
			os.Setenv(key, val)
		}
	}
	return scanner.Err()
}
