package async

import (
	"context"
	"errors"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/joseph-ayodele/docextract/constants"
	"github.com/joseph-ayodele/docextract/internal/common"
	"github.com/joseph-ayodele/docextract/internal/entity"
)

// ErrQueueClosed is returned by Enqueue after Shutdown.
var ErrQueueClosed = errors.New("queue is shutting down")

// Job is one document to extract.
type Job struct {
	Index   int // caller's ordering key
	URL     string
	DocType constants.DocType
}

type Result struct {
	Job     Job
	Outcome entity.Outcome
	Elapsed time.Duration
}

// Runner executes one extraction run.
type Runner interface {
	Run(ctx context.Context, sourceURL string, kind constants.DocType) entity.Outcome
}

// ProcessorQueue fans extraction jobs out to a fixed set of workers.
type ProcessorQueue struct {
	runner  Runner
	logger  *slog.Logger
	workers int
	timeout time.Duration

	ch      chan Job
	results chan Result
	wg      sync.WaitGroup
	once    sync.Once

	mu      sync.Mutex
	closed  bool
	stop    chan struct{} // closed by Shutdown to release blocked senders
	senders sync.WaitGroup
}

type Option func(*ProcessorQueue)

func WithWorkers(n int) Option {
	return func(q *ProcessorQueue) {
		if n > 0 {
			q.workers = n
		}
	}
}

func WithQueueSize(n int) Option {
	return func(q *ProcessorQueue) {
		if n > 0 {
			q.ch = make(chan Job, n)
		}
	}
}

// WithProcessTimeout bounds each job; 0 runs jobs without a deadline.
func WithProcessTimeout(d time.Duration) Option {
	return func(q *ProcessorQueue) {
		if d >= 0 {
			q.timeout = d
		}
	}
}

// NewProcessorQueue starts the workers. Results must be drained by the caller.
func NewProcessorQueue(runner Runner, logger *slog.Logger, opts ...Option) *ProcessorQueue {
	if logger == nil {
		logger = slog.Default()
	}
	q := &ProcessorQueue{
		runner:  runner,
		logger:  logger,
		workers: 4,
		timeout: 3 * time.Minute,
		ch:      make(chan Job, 256),
		stop:    make(chan struct{}),
	}
	for _, o := range opts {
		o(q)
	}
	q.results = make(chan Result, cap(q.ch))
	q.start()
	return q
}

func (q *ProcessorQueue) start() {
	q.once.Do(func() {
		for i := 0; i < q.workers; i++ {
			q.wg.Add(1)
			go func(workerID int) {
				defer q.wg.Done()
				q.logger.Debug("worker started", "worker_id", workerID)

				for job := range q.ch {
					start := time.Now()
					ctx, cancel := common.WithOptionalTimeout(context.Background(), q.timeout)
					out := q.runner.Run(ctx, job.URL, job.DocType)
					cancel()

					q.logger.Info("job processed",
						"worker_id", workerID,
						"index", job.Index,
						"doc_type", job.DocType,
						"status", out.Status,
					)
					q.results <- Result{Job: job, Outcome: out, Elapsed: time.Since(start)}
				}

				q.logger.Debug("worker stopped", "worker_id", workerID)
			}(i + 1)
		}
		go func() {
			q.wg.Wait()
			close(q.results)
		}()
	})
}

// Results yields one Result per enqueued job and closes once the queue is drained after Shutdown.
func (q *ProcessorQueue) Results() <-chan Result {
	return q.results
}

// Enqueue blocks while the queue is full, until ctx is done or Shutdown starts.
func (q *ProcessorQueue) Enqueue(ctx context.Context, job Job) error {
	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		q.logger.Warn("cannot enqueue: queue is shutting down", "index", job.Index)
		return ErrQueueClosed
	}
	q.senders.Add(1)
	q.mu.Unlock()
	defer q.senders.Done()

	select {
	case q.ch <- job:
		return nil
	default:
		q.logger.Debug("queue full, applying backpressure", "index", job.Index)
	}
	select {
	case q.ch <- job:
		return nil
	case <-q.stop:
		return ErrQueueClosed
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Shutdown stops intake and waits for in-flight jobs or ctx, whichever comes first.
func (q *ProcessorQueue) Shutdown(ctx context.Context) {
	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		return
	}
	q.closed = true
	close(q.stop)
	q.mu.Unlock()

	// ch is closed only once no sender can still write to it
	q.senders.Wait()
	close(q.ch)

	done := make(chan struct{})
	go func() { defer close(done); q.wg.Wait() }()

	select {
	case <-ctx.Done():
		q.logger.Warn("shutdown interrupted by context")
	case <-done:
		q.logger.Debug("queue drained, shutdown complete")
	}
}

// RunBatch pushes jobs through a fresh queue and returns results ordered by Job.Index.
func RunBatch(ctx context.Context, runner Runner, logger *slog.Logger, jobs []Job, opts ...Option) ([]Result, error) {
	q := NewProcessorQueue(runner, logger, opts...)

	var (
		out       = make([]Result, 0, len(jobs))
		collected = make(chan struct{})
	)
	go func() {
		defer close(collected)
		for r := range q.Results() {
			out = append(out, r)
		}
	}()

	var enqueueErr error
	for _, j := range jobs {
		if err := q.Enqueue(ctx, j); err != nil {
			enqueueErr = err
			break
		}
	}
	q.Shutdown(context.Background())
	<-collected

	sort.Slice(out, func(i, k int) bool { return out[i].Job.Index < out[k].Job.Index })
	return out, enqueueErr
}
