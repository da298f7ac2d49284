package report

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/ormasoftchile/a2ui-conform/pkg/batch"
	"github.com/ormasoftchile/a2ui-conform/pkg/metrics"
	"github.com/rs/zerolog"
	"gopkg.in/yaml.v3"
)

const (
	contentType = "application/yaml"
	fileExt     = "yaml"
)

// Reporter serializes failure documents for failed items into a Sink.
type Reporter struct {
	sink    Sink
	metrics *metrics.Metrics
	logger  zerolog.Logger
}

// Option configures a Reporter.
type Option func(*Reporter)

// WithMetrics counts written and failed documents on m.
func WithMetrics(m *metrics.Metrics) Option {
	return func(r *Reporter) { r.metrics = m }
}

// WithLogger sets the logger used for write failures.
func WithLogger(l zerolog.Logger) Option {
	return func(r *Reporter) { r.logger = l }
}

// NewReporter returns a reporter writing to sink.
func NewReporter(sink Sink, opts ...Option) *Reporter {
	r := &Reporter{sink: sink, logger: zerolog.Nop()}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

var segmentReplacer = strings.NewReplacer("/", "_", "\\", "_", ":", "_")

// SanitizeModelName replaces path separators and colons so a model name can
// be used as a single path segment.
func SanitizeModelName(name string) string {
	return segmentReplacer.Replace(name)
}

// Key returns the sink key for a failed item:
// output-<model>/details/<prompt>.<run>.failed.yaml
// Both names are reduced to single path segments.
func Key(modelName, promptName string, runNumber int) string {
	return fmt.Sprintf("output-%s/details/%s.%d.failed.%s",
		segmentReplacer.Replace(modelName), segmentReplacer.Replace(promptName), runNumber, fileExt)
}

// Report persists the failure document for one item.
func (r *Reporter) Report(ctx context.Context, result batch.GenerationResult, errs []string) error {
	data, err := yaml.Marshal(NewFailureDocument(errs))
	if err != nil {
		return fmt.Errorf("marshal failure document: %w", err)
	}
	key := Key(result.ModelName, result.Prompt.Name, result.RunNumber)
	if err := r.sink.Put(ctx, key, data); err != nil {
		if r.metrics != nil {
			r.metrics.ReportsFailed.Inc()
		}
		return fmt.Errorf("persist %s: %w", key, err)
	}
	if r.metrics != nil {
		r.metrics.ReportsWritten.Inc()
	}
	return nil
}

// ReportAll persists a document for every failed item and skips the rest.
// A write failure is logged and does not stop later writes; the returned
// error joins every failure.
func (r *Reporter) ReportAll(ctx context.Context, results []batch.ValidatedResult) (int, error) {
	var errs []error
	written := 0
	for _, res := range results {
		if !res.Failed() {
			continue
		}
		if err := ctx.Err(); err != nil {
			errs = append(errs, err)
			break
		}
		if err := r.Report(ctx, res.GenerationResult, res.ValidationErrors); err != nil {
			r.logger.Warn().Err(err).
				Str("model", res.ModelName).
				Str("prompt", res.Prompt.Name).
				Int("run", res.RunNumber).
				Msg("failed to persist failure document")
			errs = append(errs, err)
			continue
		}
		written++
	}
	return written, errors.Join(errs...)
}
