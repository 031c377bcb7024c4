// Package worker analyzes queued race cards in the background.
package worker

import (
	"context"
	"fmt"
	"runtime"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"github.com/okian/racecard/internal/domain/model"
	"github.com/okian/racecard/pkg/logger"
	"github.com/okian/racecard/pkg/metrics"
)

const poolShutdownTimeout = 30 * time.Second

// Analyzer parses and ranks one card.
type Analyzer interface {
	Analyze(ctx context.Context, text string, condition model.TrackCondition) (model.CardAnalysis, error)
}

// Sink receives finished analyses.
type Sink interface {
	Save(ctx context.Context, a model.CardAnalysis) error
}

// Queue defines how workers receive jobs.
type Queue interface {
	Dequeue(ctx context.Context) <-chan model.Job
}

// Worker processes jobs until its queue closes or it is shut down.
type Worker interface {
	Run(ctx context.Context)
	Shutdown(ctx context.Context) error
}

// InMemoryWorker implements Worker.
type InMemoryWorker struct {
	queue    Queue
	analyzer Analyzer
	sink     Sink
	name     string
	stats    *counters

	onFailure func(ctx context.Context, j model.Job, err error)

	shutdown chan struct{}
	stopOnce sync.Once
	done     chan struct{}

	logger logger.Logger
}

type counters struct {
	processed atomic.Int64
	failed    atomic.Int64
	active    atomic.Int64
}

// NewInMemoryWorker creates a new worker with configuration options.
func NewInMemoryWorker(q Queue, a Analyzer, s Sink, opts ...Option) *InMemoryWorker {
	w := &InMemoryWorker{
		queue:    q,
		analyzer: a,
		sink:     s,
		name:     "worker",
		stats:    &counters{},
		shutdown: make(chan struct{}),
		done:     make(chan struct{}),
	}

	for _, opt := range opts {
		opt(w)
	}
	if w.logger == nil {
		w.logger = logger.Get().Named(w.name)
	}

	return w
}

// Run starts the worker loop.
func (w *InMemoryWorker) Run(ctx context.Context) {
	defer close(w.done)

	// Cancelling releases the dequeue goroutine when the worker stops early.
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	jobs := w.queue.Dequeue(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case <-w.shutdown:
			return
		case j, ok := <-jobs:
			if !ok {
				return
			}
			if err := w.process(ctx, j); err != nil {
				w.logger.Error(ctx, "error processing card", logger.String("card_id", j.ID), logger.Error(err))
			}
		}
	}
}

// Shutdown stops the worker after its current job.
func (w *InMemoryWorker) Shutdown(ctx context.Context) error {
	w.stop()

	select {
	case <-w.done:
		return nil
	case <-ctx.Done():
		w.logger.Warn(ctx, "shutdown timed out")
		return fmt.Errorf("shutdown timed out: %w", ctx.Err())
	}
}

func (w *InMemoryWorker) stop() {
	w.stopOnce.Do(func() { close(w.shutdown) })
}

func (w *InMemoryWorker) process(ctx context.Context, j model.Job) error {
	start := time.Now()
	metrics.UpdateWorkerActiveCount(int(w.stats.active.Add(1)))
	defer func() {
		metrics.UpdateWorkerActiveCount(int(w.stats.active.Add(-1)))
		metrics.RecordWorkerProcessingLatency(float64(time.Since(start).Microseconds()) / 1000)
	}()

	fail := func(kind string, err error) error {
		w.stats.failed.Add(1)
		metrics.RecordWorkerError()
		metrics.RecordErrorByComponent("worker", kind)
		if w.onFailure != nil {
			w.onFailure(ctx, j, err)
		}
		return err
	}

	a, err := w.analyzer.Analyze(ctx, j.Text, j.Condition)
	if err != nil {
		return fail("analyze", fmt.Errorf("analyze card %s: %w", j.ID, err))
	}
	a.ID = j.ID

	if err := w.sink.Save(ctx, a); err != nil {
		return fail("save", fmt.Errorf("save card %s: %w", j.ID, err))
	}

	w.stats.processed.Add(1)
	w.logger.Debug(ctx, "card analyzed",
		logger.String("card_id", j.ID),
		logger.String("condition", j.Condition.Token()),
		logger.Int("horses", len(a.Ranking)),
	)
	return nil
}

// Pool manages multiple workers sharing one queue.
type Pool struct {
	workers []*InMemoryWorker
	queue   Queue
	stats   *counters
	logger  logger.Logger
}

// NewPool creates workerCount workers. A count below 1 means one per CPU.
func NewPool(workerCount int, q Queue, a Analyzer, s Sink, opts ...Option) *Pool {
	if workerCount < 1 {
		workerCount = runtime.NumCPU()
	}

	p := &Pool{
		workers: make([]*InMemoryWorker, workerCount),
		queue:   q,
		stats:   &counters{},
	}

	base := &InMemoryWorker{name: "worker-pool"}
	for _, opt := range opts {
		opt(base)
	}
	p.logger = base.logger
	if p.logger == nil {
		p.logger = logger.Get().Named("worker-pool")
	}

	for i := range p.workers {
		w := NewInMemoryWorker(q, a, s, append(opts, WithName("worker-"+strconv.Itoa(i)))...)
		w.stats = p.stats
		p.workers[i] = w
	}

	metrics.UpdateWorkerCount(workerCount)
	metrics.UpdateWorkerActiveCount(0)

	return p
}

// Start starts all workers in the pool.
func (p *Pool) Start(ctx context.Context) {
	for _, w := range p.workers {
		go w.Run(ctx)
	}
	p.logger.Info(ctx, "worker pool started", logger.Int("workers", len(p.workers)))
}

// Size returns the number of workers.
func (p *Pool) Size() int { return len(p.workers) }

// Processed returns the number of jobs analyzed and saved.
func (p *Pool) Processed() int64 { return p.stats.processed.Load() }

// Failed returns the number of jobs that failed.
func (p *Pool) Failed() int64 { return p.stats.failed.Load() }

// Stop stops all workers without draining the queue.
func (p *Pool) Stop() {
	ctx, cancel := context.WithTimeout(context.Background(), poolShutdownTimeout)
	defer cancel()
	for _, w := range p.workers {
		_ = w.Shutdown(ctx)
	}
}

// Shutdown closes the queue and waits for workers to drain it, or for ctx.
func (p *Pool) Shutdown(ctx context.Context) error {
	if closer, ok := p.queue.(interface{ Close() error }); ok {
		if err := closer.Close(); err != nil {
			p.logger.Error(ctx, "error closing queue", logger.Error(err))
		}
	}

	for i, w := range p.workers {
		select {
		case <-w.done:
		case <-ctx.Done():
			p.logger.Warn(ctx, "worker shutdown timed out", logger.Int("worker_id", i))
			for _, rest := range p.workers[i:] {
				rest.stop()
			}
			return fmt.Errorf("pool shutdown: %w", ctx.Err())
		}
	}

	p.logger.Info(ctx, "worker pool stopped", logger.Int64("processed", p.Processed()), logger.Int64("failed", p.Failed()))
	return nil
}
