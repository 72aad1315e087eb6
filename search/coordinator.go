package search

import (
	"context"
	"fmt"
	"log/slog"
	"runtime"
	"sync/atomic"
	"time"

	"github.com/panjf2000/ants/v2"
	"golang.org/x/time/rate"
)

// ProgressFunc is an optional callback to report progress like: stage, processed, total, path
type ProgressFunc func(stage string, processed, total int, path string)

// Progress stages reported through ProgressFunc.
const (
	StageDiscover = "discover"
	StageSearch   = "search"
)

// Coordinator states. A coordinator accepts a new Run only when idle or done.
const (
	stateIdle int32 = iota
	stateDispatching
	stateCollecting
	stateDone
)

// progressLogInterval bounds how often the coordinator logs progress.
const progressLogInterval = 2 * time.Second

// Coordinator fans document searches out to a bounded pool of workers and
// collects one DocumentResult per document.
type Coordinator struct {
	workers  int
	registry *ExtractorRegistry
	logger   *slog.Logger
	base     *slog.Logger
	progress ProgressFunc
	state    atomic.Int32
}

// Option configures a Coordinator.
type Option func(*Coordinator) error

// WithWorkers sets the number of concurrent document searches.
// Default is runtime.NumCPU().
func WithWorkers(n int) Option {
	return func(c *Coordinator) error {
		if n < 1 {
			return configError("workers", fmt.Errorf("%w: got %d", ErrInvalidWorkerCount, n))
		}
		c.workers = n
		return nil
	}
}

// WithRegistry sets the extractor registry. Default is NewExtractorRegistry().
func WithRegistry(reg *ExtractorRegistry) Option {
	return func(c *Coordinator) error {
		if reg != nil {
			c.registry = reg
		}
		return nil
	}
}

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(c *Coordinator) error {
		if logger == nil {
			logger = slog.Default()
		}
		c.logger = logger
		return nil
	}
}

// WithProgress registers a callback invoked after each document completes.
// It is called from the collecting goroutine only.
func WithProgress(fn ProgressFunc) Option {
	return func(c *Coordinator) error {
		c.progress = fn
		return nil
	}
}

// NewCoordinator creates a coordinator. An invalid option is reported as a
// *ConfigurationError.
func NewCoordinator(opts ...Option) (*Coordinator, error) {
	c := &Coordinator{
		workers:  max(runtime.NumCPU(), 1),
		registry: NewExtractorRegistry(),
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		if err := opt(c); err != nil {
			return nil, err
		}
	}
	c.base = c.logger
	c.logger = c.logger.With("component", "coordinator")
	return c, nil
}

// Workers returns the configured worker count.
func (c *Coordinator) Workers() int { return c.workers }

// Registry returns the extractor registry used by the workers.
func (c *Coordinator) Registry() *ExtractorRegistry { return c.registry }

type indexedResult struct {
	index  int
	result DocumentResult
}

// Run searches every path with req and returns one entry per distinct path,
// in the order given. Document-level failures are recorded as KindFailed
// entries and never abort the run.
//
// When ctx is cancelled, documents already dispatched finish, documents not
// yet dispatched are recorded as failed, and the partial result is returned
// together with ctx.Err().
func (c *Coordinator) Run(ctx context.Context, paths []string, req *SearchRequest) (*SearchResult, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	if !c.state.CompareAndSwap(stateIdle, stateDispatching) && !c.state.CompareAndSwap(stateDone, stateDispatching) {
		return nil, ErrCoordinatorBusy
	}
	defer c.state.Store(stateDone)

	req = req.Clone()
	paths = dedupePaths(paths)
	total := len(paths)
	results := make([]DocumentResult, total)
	if total == 0 {
		return NewSearchResult(), nil
	}

	pool, err := ants.NewPool(c.workers, ants.WithPanicHandler(func(p any) {
		c.logger.Error("worker panic", "panic", p)
	}))
	if err != nil {
		return nil, fmt.Errorf("create worker pool: %w", err)
	}
	defer pool.Release()

	c.logger.Debug("dispatching", "documents", total, "workers", c.workers, "mode", req.ModeDescription())
	start := time.Now()

	out := make(chan indexedResult, total)
	dispatched := make([]bool, total)
	inFlight := 0
	for i, path := range paths {
		if ctx.Err() != nil {
			break
		}
		i, path := i, path
		submitErr := pool.Submit(func() {
			out <- indexedResult{index: i, result: SearchDocument(path, req, c.registry)}
		})
		if submitErr != nil {
			results[i] = FailedResult(fmt.Errorf("dispatch %s: %w", path, submitErr))
			dispatched[i] = true
			continue
		}
		dispatched[i] = true
		inFlight++
	}

	c.state.Store(stateCollecting)
	logEvery := rate.Sometimes{Interval: progressLogInterval}
	for done := 1; done <= inFlight; done++ {
		r := <-out
		results[r.index] = r.result
		switch r.result.Kind {
		case KindFailed:
			c.logger.Warn("document failed", "path", paths[r.index], "error", r.result.Reason)
		case KindSkipped:
			c.logger.Debug("document skipped", "path", paths[r.index], "reason", r.result.Reason)
		}
		if c.progress != nil {
			c.progress(StageSearch, done, total, paths[r.index])
		}
		logEvery.Do(func() {
			c.logger.Info("search progress", "done", done, "total", total, "elapsed", time.Since(start).Round(time.Millisecond))
		})
	}

	cancelled := 0
	for i := range paths {
		if !dispatched[i] {
			results[i] = FailedResult(fmt.Errorf("search cancelled: %w", ctx.Err()))
			cancelled++
		}
	}

	entries := make([]Entry, total)
	for i, path := range paths {
		entries[i] = Entry{Name: path, Result: results[i]}
	}
	res := NewSearchResult(entries...)

	c.logger.Debug("search finished", "documents", total, "cancelled", cancelled, "elapsed", time.Since(start).Round(time.Millisecond))
	if cancelled > 0 {
		return res, ctx.Err()
	}
	return res, nil
}

// dedupePaths drops repeated paths, keeping the first occurrence.
func dedupePaths(paths []string) []string {
	seen := make(map[string]bool, len(paths))
	out := make([]string, 0, len(paths))
	for _, p := range paths {
		if seen[p] {
			continue
		}
		seen[p] = true
		out = append(out, p)
	}
	return out
}
