package report

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/ormasoftchile/a2ui-conform/pkg/batch"
	"github.com/ormasoftchile/a2ui-conform/pkg/metrics"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

type memorySink struct {
	puts map[string][]byte
	fail map[string]bool
}

func newMemorySink() *memorySink {
	return &memorySink{puts: map[string][]byte{}, fail: map[string]bool{}}
}

func (m *memorySink) Put(_ context.Context, key string, data []byte) error {
	if m.fail[key] {
		return errors.New("disk full")
	}
	m.puts[key] = data
	return nil
}

func failed(model, prompt string, run int, errs ...string) batch.ValidatedResult {
	return batch.ValidatedResult{
		GenerationResult: batch.GenerationResult{ModelName: model, Prompt: batch.Prompt{Name: prompt}, RunNumber: run, Components: []any{}},
		Status:           batch.StatusFailed,
		ValidationErrors: errs,
	}
}

func TestSanitizeModelName(t *testing.T) {
	assert.Equal(t, "models_gemini-2.5_latest", SanitizeModelName("models/gemini-2.5:latest"))
	assert.Equal(t, "a_b", SanitizeModelName(`a\b`))
	assert.Equal(t, "plain", SanitizeModelName("plain"))
}

func TestKey(t *testing.T) {
	assert.Equal(t, "output-models_m/details/login.3.failed.yaml", Key("models/m", "login", 3))
	assert.Equal(t, "output-m/details/.._.._escape.1.failed.yaml", Key("m", "../../escape", 1))
	assert.Equal(t, "output-m/details/a_b_c.2.failed.yaml", Key("m", `a\b:c`, 2))
}

func TestNewFailureDocument(t *testing.T) {
	doc := NewFailureDocument([]string{"a", "b"})
	assert.False(t, doc.Pass)
	assert.Equal(t, "Schema validation failure", doc.Reason)
	assert.Equal(t, SeverityCriticalSchema, doc.OverallSeverity)
	require.Len(t, doc.Issues, 2)
	for _, is := range doc.Issues {
		assert.Equal(t, SeverityCriticalSchema, is.Severity)
	}
	assert.Equal(t, "b", doc.Issues[1].Issue)
}

func TestReporter_ReportAllOnlyFailed(t *testing.T) {
	sink := newMemorySink()
	m := metrics.New()
	r := NewReporter(sink, WithMetrics(m))

	results := []batch.ValidatedResult{
		{GenerationResult: batch.GenerationResult{ModelName: "m", Prompt: batch.Prompt{Name: "ok"}, RunNumber: 1}, Status: batch.StatusPassed, ValidationErrors: []string{}},
		{GenerationResult: batch.GenerationResult{ModelName: "m", Prompt: batch.Prompt{Name: "up"}, RunNumber: 1, Error: "x"}, Status: batch.StatusSkipped, ValidationErrors: []string{}},
		failed("org/m:1", "bad", 2, "DeleteSurface has unexpected property: foo"),
	}
	n, err := r.ReportAll(context.Background(), results)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	require.Len(t, sink.puts, 1)

	data, ok := sink.puts["output-org_m_1/details/bad.2.failed.yaml"]
	require.True(t, ok)
	var doc FailureDocument
	require.NoError(t, yaml.Unmarshal(data, &doc))
	assert.False(t, doc.Pass)
	require.Len(t, doc.Issues, 1)
	assert.Equal(t, "DeleteSurface has unexpected property: foo", doc.Issues[0].Issue)
	assert.Equal(t, 1.0, testutil.ToFloat64(m.ReportsWritten))
}

func TestReporter_WriteFailureIsNonFatal(t *testing.T) {
	sink := newMemorySink()
	sink.fail[Key("m", "first", 1)] = true
	m := metrics.New()
	r := NewReporter(sink, WithMetrics(m))

	n, err := r.ReportAll(context.Background(), []batch.ValidatedResult{
		failed("m", "first", 1, "e1"),
		failed("m", "second", 1, "e2"),
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "disk full")
	assert.Equal(t, 1, n)
	assert.Contains(t, sink.puts, Key("m", "second", 1))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.ReportsFailed))
}

func TestReporter_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	n, err := NewReporter(newMemorySink()).ReportAll(ctx, []batch.ValidatedResult{failed("m", "p", 1, "e")})
	assert.Equal(t, 0, n)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestFileSink_Put(t *testing.T) {
	dir := t.TempDir()
	r := NewReporter(NewFileSink(dir))
	require.NoError(t, r.Report(context.Background(), batch.GenerationResult{ModelName: "a/b", Prompt: batch.Prompt{Name: "p"}, RunNumber: 4}, []string{"boom"}))

	path := filepath.Join(dir, "output-a_b", "details", "p.4.failed.yaml")
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "overallSeverity: criticalSchema")
	assert.Contains(t, string(data), "issue: boom")

	_, err = os.Stat(path + ".tmp")
	assert.True(t, os.IsNotExist(err))
}

func TestFileSink_RejectsEscape(t *testing.T) {
	err := NewFileSink(t.TempDir()).Put(context.Background(), "../outside.yaml", []byte("x"))
	assert.Error(t, err)
}

func TestFileSink_PromptCannotLeaveDetails(t *testing.T) {
	dir := t.TempDir()
	r := NewReporter(NewFileSink(dir))
	require.NoError(t, r.Report(context.Background(), batch.GenerationResult{ModelName: "m", Prompt: batch.Prompt{Name: "../../top"}, RunNumber: 1}, []string{"boom"}))

	entries, err := os.ReadDir(filepath.Join(dir, "output-m", "details"))
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, ".._.._top.1.failed.yaml", entries[0].Name())

	top, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, top, 1, "only the model directory is created at the root")
}

func TestFileSink_RenameFailureRemovesTemp(t *testing.T) {
	dir := t.TempDir()
	// A non-empty directory at the target path makes the rename fail.
	target := filepath.Join(dir, "out", "doc.yaml")
	require.NoError(t, os.MkdirAll(filepath.Join(target, "keep"), 0o755))

	err := NewFileSink(dir).Put(context.Background(), "out/doc.yaml", []byte("x"))
	require.Error(t, err)

	_, statErr := os.Stat(target + ".tmp")
	assert.True(t, os.IsNotExist(statErr), "temporary file must be removed")
}
