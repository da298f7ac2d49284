package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"
	"time"

	"github.com/ormasoftchile/a2ui-conform/pkg/batch"
	"github.com/ormasoftchile/a2ui-conform/pkg/config"
	"github.com/ormasoftchile/a2ui-conform/pkg/conform"
	"github.com/ormasoftchile/a2ui-conform/pkg/logging"
	"github.com/ormasoftchile/a2ui-conform/pkg/metrics"
	"github.com/ormasoftchile/a2ui-conform/pkg/report"
	"github.com/spf13/cobra"
)

// Version is set at build time via ldflags.
var (
	version = "dev"
	commit  = "unknown"
)

func main() {
	if err := config.LoadDotEnv(".env"); err != nil {
		fmt.Fprintf(os.Stderr, "warning: %v\n", err)
	}
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

type rootFlags struct {
	configPath  string
	schemaDir   string
	rootSchema  string
	outputDir   string
	sink        string
	workers     int
	filter      string
	metricsFile string
	logLevel    string
	logFormat   string
	jsonOut     bool
}

func newRootCmd() *cobra.Command {
	f := &rootFlags{}

	root := &cobra.Command{
		Use:          "a2ui-conform",
		Short:        "A2UI server-to-client message conformance checker",
		Long:         "a2ui-conform validates batches of generated A2UI message sequences against the protocol JSON Schema and its semantic rules.",
		SilenceUsage: true,
	}
	pf := root.PersistentFlags()
	pf.StringVar(&f.configPath, "config", "", "Path to a YAML config file")
	pf.StringVar(&f.logLevel, "log-level", "", "Log level: debug, info, warn, error")
	pf.StringVar(&f.logFormat, "log-format", "", "Log format: console or json")

	validateCmd := &cobra.Command{
		Use:   "validate [batch.yaml|batch.json]",
		Short: "Validate a batch of generation results",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValidate(cmd, f, args[0])
		},
	}
	vf := validateCmd.Flags()
	vf.StringVar(&f.schemaDir, "schemas", "", "Directory of *.json schema documents")
	vf.StringVar(&f.rootSchema, "root-schema", "", "Identifier of the root schema")
	vf.StringVar(&f.outputDir, "out", "", "Output directory for failure documents (fs sink)")
	vf.StringVar(&f.sink, "sink", "", "Failure document sink: fs, s3, or gcs")
	vf.IntVar(&f.workers, "workers", 0, "Items validated concurrently")
	vf.StringVar(&f.filter, "where", "", "Only validate items matching this expression, e.g. 'modelName startsWith \"gemini\"'")
	vf.StringVar(&f.metricsFile, "metrics-file", "", "Write Prometheus metrics in textfile format to this path")
	vf.BoolVar(&f.jsonOut, "json", false, "Print the validated batch as JSON")

	schemaCmd := &cobra.Command{
		Use:       "schema [batch|failure]",
		Short:     "Export the JSON Schema of the batch input or the failure document",
		Args:      cobra.ExactArgs(1),
		ValidArgs: []string{"batch", "failure"},
		RunE:      runSchema,
	}

	versionCmd := &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "a2ui-conform %s (build: %s)\n", version, commit)
		},
	}

	root.AddCommand(validateCmd, schemaCmd, versionCmd)
	return root
}

// loadConfig layers defaults, the config file, the environment and finally
// the flags that were set explicitly.
func loadConfig(cmd *cobra.Command, f *rootFlags) (config.Config, error) {
	cfg := config.Default()
	if f.configPath != "" {
		if err := config.LoadFile(f.configPath, &cfg); err != nil {
			return cfg, err
		}
	}
	if err := config.ApplyEnv(&cfg, os.Getenv); err != nil {
		return cfg, err
	}

	flags := cmd.Flags()
	if flags.Changed("schemas") {
		cfg.SchemaDir = f.schemaDir
	}
	if flags.Changed("root-schema") {
		cfg.RootSchema = f.rootSchema
	}
	if flags.Changed("out") {
		cfg.Output.Dir = f.outputDir
	}
	if flags.Changed("sink") {
		cfg.Output.Type = report.SinkType(f.sink)
	}
	if flags.Changed("workers") {
		cfg.Workers = f.workers
	}
	if flags.Changed("where") {
		cfg.Filter = f.filter
	}
	if flags.Changed("metrics-file") {
		cfg.MetricsFile = f.metricsFile
	}
	if flags.Changed("log-level") {
		cfg.Log.Level = f.logLevel
	}
	if flags.Changed("log-format") {
		cfg.Log.Format = f.logFormat
	}
	return cfg, cfg.Validate()
}

func runValidate(cmd *cobra.Command, f *rootFlags, batchPath string) error {
	cfg, err := loadConfig(cmd, f)
	if err != nil {
		return err
	}
	logging.Init(cfg.Log)
	log := logging.WithComponent("cli")

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
	defer stop()

	checker, err := newChecker(cfg)
	if err != nil {
		return err
	}

	results, err := batch.LoadFile(batchPath)
	if err != nil {
		return err
	}
	filter, err := batch.CompileFilter(cfg.Filter)
	if err != nil {
		return err
	}
	if results, err = filter.Apply(results); err != nil {
		return err
	}

	m := metrics.New()
	agg := batch.NewAggregator(conform.NewValidator(checker),
		batch.WithWorkers(cfg.Workers),
		batch.WithMetrics(m),
		batch.WithLogger(logging.WithComponent("aggregator")),
	)
	start := time.Now()
	validated, summary := agg.Run(results)
	elapsed := time.Since(start)

	if cfg.Output.Enabled() && summary.Failed > 0 {
		if err := persistFailures(ctx, cfg.Output, m, validated); err != nil {
			log.Warn().Err(err).Msg("some failure documents were not written")
		}
	}

	if cfg.MetricsFile != "" {
		if err := m.WriteTextfile(cfg.MetricsFile); err != nil {
			log.Warn().Err(err).Str("path", cfg.MetricsFile).Msg("could not write metrics")
		}
	}

	out := cmd.OutOrStdout()
	if f.jsonOut {
		if err := writeJSON(out, validated); err != nil {
			return err
		}
	} else {
		printSummary(out, validated, summary, elapsed)
	}

	if summary.Failed > 0 {
		return fmt.Errorf("%d of %d validated item(s) failed", summary.Failed, summary.Passed+summary.Failed)
	}
	return nil
}

func newChecker(cfg config.Config) (*conform.SchemaChecker, error) {
	log := logging.WithComponent("schema")
	if cfg.SchemaDir == "" {
		log.Warn().Msg("no schema directory configured; only semantic rules are checked")
		return nil, nil
	}
	schemas, err := conform.LoadSchemaDir(cfg.SchemaDir)
	if err != nil {
		return nil, err
	}
	opts := []conform.CheckerOption{conform.WithLogger(log)}
	if cfg.RootSchema != "" {
		opts = append(opts, conform.WithRootID(cfg.RootSchema))
	}
	return conform.NewSchemaChecker(schemas, opts...), nil
}

func persistFailures(ctx context.Context, cfg report.SinkConfig, m *metrics.Metrics, validated []batch.ValidatedResult) error {
	sink, err := report.NewSink(ctx, cfg)
	if err != nil {
		return fmt.Errorf("create sink: %w", err)
	}
	if c, ok := sink.(io.Closer); ok {
		defer c.Close()
	}
	reporter := report.NewReporter(sink,
		report.WithMetrics(m),
		report.WithLogger(logging.WithComponent("reporter")),
	)
	written, err := reporter.ReportAll(ctx, validated)
	reporterLog := logging.WithComponent("reporter")
	reporterLog.Info().Int("written", written).Msg("Failure documents persisted")
	return err
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func runSchema(cmd *cobra.Command, args []string) error {
	var data []byte
	var err error
	switch args[0] {
	case "batch":
		data, err = batch.GenerateBatchJSONSchema()
	case "failure":
		data, err = report.GenerateFailureJSONSchema()
	default:
		return fmt.Errorf("unknown schema type %q: use 'batch' or 'failure'", args[0])
	}
	if err != nil {
		return fmt.Errorf("generate schema: %w", err)
	}
	fmt.Fprintln(cmd.OutOrStdout(), string(data))
	return nil
}
