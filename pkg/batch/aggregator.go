package batch

import (
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/ormasoftchile/a2ui-conform/pkg/conform"
	"github.com/ormasoftchile/a2ui-conform/pkg/metrics"
	"github.com/rs/zerolog"
)

// Aggregator drives both validation phases over a batch and tallies verdicts.
type Aggregator struct {
	validator *conform.Validator
	workers   int
	metrics   *metrics.Metrics
	logger    zerolog.Logger
}

// Option configures an Aggregator.
type Option func(*Aggregator)

// WithWorkers bounds the number of items validated concurrently. Values
// below 2 validate sequentially.
func WithWorkers(n int) Option {
	return func(a *Aggregator) { a.workers = n }
}

// WithMetrics records item verdicts and finding counts on m.
func WithMetrics(m *metrics.Metrics) Option {
	return func(a *Aggregator) { a.metrics = m }
}

// WithLogger sets the logger for start and summary messages.
func WithLogger(l zerolog.Logger) Option {
	return func(a *Aggregator) { a.logger = l }
}

// NewAggregator returns an aggregator using v for every item.
func NewAggregator(v *conform.Validator, opts ...Option) *Aggregator {
	a := &Aggregator{
		validator: v,
		workers:   1,
		logger:    zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

type itemOutcome struct {
	result ValidatedResult
	counts map[conform.Kind]int
}

// Run validates every item and returns results index-aligned with the input.
// A malformed item only affects its own verdict.
func (a *Aggregator) Run(results []GenerationResult) ([]ValidatedResult, Summary) {
	summary := Summary{RunID: uuid.NewString(), Total: len(results)}
	log := a.logger.With().Str("run_id", summary.RunID).Logger()
	log.Info().Int("items", len(results)).Msg("Starting schema validation")

	outcomes := make([]itemOutcome, len(results))
	if a.workers < 2 || len(results) < 2 {
		for i := range results {
			outcomes[i] = a.validateItem(results[i])
		}
	} else {
		a.runPool(results, outcomes)
	}

	validated := make([]ValidatedResult, len(results))
	for i, o := range outcomes {
		validated[i] = o.result
		switch o.result.Status {
		case StatusPassed:
			summary.Passed++
		case StatusFailed:
			summary.Failed++
		default:
			summary.Skipped++
		}
		a.record(o)
	}

	log.Info().
		Int("passed", summary.Passed).
		Int("failed", summary.Failed).
		Int("skipped", summary.Skipped).
		Msg("Validation complete")
	return validated, summary
}

// runPool fans items out to a bounded set of workers. Each worker writes
// only its own slot, so output order never depends on completion order.
func (a *Aggregator) runPool(results []GenerationResult, outcomes []itemOutcome) {
	workers := a.workers
	if workers > len(results) {
		workers = len(results)
	}

	jobs := make(chan int)
	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				outcomes[i] = a.validateItem(results[i])
			}
		}()
	}
	for i := range results {
		jobs <- i
	}
	close(jobs)
	wg.Wait()
}

func (a *Aggregator) validateItem(r GenerationResult) itemOutcome {
	if !r.Validated() {
		return itemOutcome{result: ValidatedResult{
			GenerationResult: r,
			Status:           StatusSkipped,
			ValidationErrors: []string{},
		}}
	}

	start := time.Now()
	errs := a.validator.Validate(r.Components)
	if a.metrics != nil {
		a.metrics.ValidateDuration.Observe(time.Since(start).Seconds())
	}

	status := StatusPassed
	if len(errs) > 0 {
		status = StatusFailed
	}
	return itemOutcome{
		result: ValidatedResult{
			GenerationResult: r,
			Status:           status,
			ValidationErrors: conform.Messages(errs),
		},
		counts: conform.CountByKind(errs),
	}
}

func (a *Aggregator) record(o itemOutcome) {
	if a.metrics == nil {
		return
	}
	a.metrics.ItemsTotal.WithLabelValues(o.result.Status).Inc()
	for kind, n := range o.counts {
		a.metrics.FindingsTotal.WithLabelValues(string(kind)).Add(float64(n))
	}
}
