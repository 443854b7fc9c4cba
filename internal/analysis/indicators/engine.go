package indicators

import (
	"context"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	apperrors "ta-kernels/internal/errors"
	"ta-kernels/internal/logging"
	"ta-kernels/internal/metrics"
	"ta-kernels/internal/models"
)

// Request names one kernel invocation of a batch.
type Request struct {
	Kernel  string            `mapstructure:"kernel" json:"kernel"`
	Params  map[string]any    `mapstructure:"params" json:"params,omitempty"`
	Columns map[string]string `mapstructure:"columns" json:"columns,omitempty"`
}

// Result holds the output of one request.
type Result struct {
	Request  Request
	Kernel   string
	Output   *models.Output
	Duration time.Duration
}

// Engine runs kernel batches against a shared frame using a bounded worker pool.
type Engine struct {
	workers  int
	registry *Registry
	logger   zerolog.Logger
	metrics  *metrics.Metrics
}

// EngineOption configures an Engine.
type EngineOption func(*Engine)

// WithLogger sets the engine logger.
func WithLogger(logger zerolog.Logger) EngineOption {
	return func(e *Engine) {
		e.logger = logger
	}
}

// WithMetrics sets the collectors observed on every kernel run.
func WithMetrics(m *metrics.Metrics) EngineOption {
	return func(e *Engine) {
		e.metrics = m
	}
}

// WithRegistry replaces the built-in kernel registry.
func WithRegistry(r *Registry) EngineOption {
	return func(e *Engine) {
		e.registry = r
	}
}

// NewEngine creates a new indicator engine with the specified number of workers.
func NewEngine(workers int, opts ...EngineOption) *Engine {
	if workers <= 0 {
		workers = 4
	}
	e := &Engine{
		workers: workers,
		logger:  zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.registry == nil {
		e.registry = Default()
	}
	return e
}

// Workers returns the concurrency limit.
func (e *Engine) Workers() int {
	return e.workers
}

// Run computes one kernel synchronously.
func (e *Engine) Run(f models.Frame, tag string, p map[string]any, c map[string]string) (*models.Output, error) {
	k, err := e.registry.Lookup(tag)
	if err != nil {
		return nil, err
	}
	out, _, err := e.invoke(k, f, p, c)
	return out, err
}

// Compute runs every request concurrently against f and returns the results in request order.
// The first failure cancels requests that have not started yet.
func (e *Engine) Compute(ctx context.Context, f models.Frame, reqs []Request) ([]Result, error) {
	e.metrics.ObserveBatch(len(reqs))

	// Resolve every kernel up front so an unknown tag fails the batch before any work starts.
	kernels := make([]Kernel, len(reqs))
	for i, req := range reqs {
		k, err := e.registry.Lookup(req.Kernel)
		if err != nil {
			return nil, apperrors.NewKernelError(req.Kernel, err)
		}
		kernels[i] = k
	}

	results := make([]Result, len(reqs))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(e.workers)

	for i := range reqs {
		i := i
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			out, elapsed, err := e.invoke(kernels[i], f, reqs[i].Params, reqs[i].Columns)
			if err != nil {
				return apperrors.NewKernelError(kernels[i].Tag, err)
			}
			results[i] = Result{
				Request:  reqs[i],
				Kernel:   kernels[i].Tag,
				Output:   out,
				Duration: elapsed,
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

func (e *Engine) invoke(k Kernel, f models.Frame, p map[string]any, c map[string]string) (*models.Output, time.Duration, error) {
	start := time.Now()
	out, err := k.Run(f, p, c)
	elapsed := time.Since(start)

	var names []string
	if out != nil {
		names = out.Names
	}
	logging.LogKernelRun(e.logger, k.Tag, names, f.Len(), elapsed, err)
	e.metrics.ObserveKernel(k.Tag, elapsed, err)
	return out, elapsed, err
}
