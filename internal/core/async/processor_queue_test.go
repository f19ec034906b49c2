package async

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/joseph-ayodele/docextract/constants"
	"github.com/joseph-ayodele/docextract/internal/entity"
)

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type countingRunner struct {
	active, peak int32
	mu           sync.Mutex
	seen         map[string]constants.DocType
}

func (r *countingRunner) Run(ctx context.Context, sourceURL string, kind constants.DocType) entity.Outcome {
	n := atomic.AddInt32(&r.active, 1)
	for {
		p := atomic.LoadInt32(&r.peak)
		if n <= p || atomic.CompareAndSwapInt32(&r.peak, p, n) {
			break
		}
	}
	time.Sleep(5 * time.Millisecond)
	atomic.AddInt32(&r.active, -1)

	if _, ok := ctx.Deadline(); !ok {
		return entity.Outcome{Status: constants.OutcomeFailed, Message: "no deadline"}
	}
	r.mu.Lock()
	r.seen[sourceURL] = kind
	r.mu.Unlock()
	return entity.Outcome{Status: constants.OutcomeNotDocument, Message: sourceURL}
}

func TestRunBatch_OrderedResults(t *testing.T) {
	runner := &countingRunner{seen: map[string]constants.DocType{}}
	jobs := []Job{
		{Index: 0, URL: "https://x.test/0.png", DocType: constants.KTP},
		{Index: 1, URL: "https://x.test/1.png", DocType: constants.Passport},
		{Index: 2, URL: "https://x.test/2.png", DocType: constants.Ijazah},
		{Index: 3, URL: "https://x.test/3.png", DocType: constants.KTP},
		{Index: 4, URL: "https://x.test/4.png", DocType: constants.KTP},
	}

	results, err := RunBatch(context.Background(), runner, quietLogger(), jobs,
		WithWorkers(2), WithQueueSize(1), WithProcessTimeout(time.Minute))
	if err != nil {
		t.Fatalf("RunBatch: %v", err)
	}
	if len(results) != len(jobs) {
		t.Fatalf("got %d results, want %d", len(results), len(jobs))
	}
	for i, r := range results {
		if r.Job.Index != i {
			t.Errorf("result %d has index %d", i, r.Job.Index)
		}
		if r.Outcome.Message != jobs[i].URL {
			t.Errorf("result %d outcome = %+v", i, r.Outcome)
		}
	}
	if runner.seen["https://x.test/1.png"] != constants.Passport {
		t.Errorf("doc type not passed through: %v", runner.seen)
	}
	if p := atomic.LoadInt32(&runner.peak); p > 2 {
		t.Errorf("peak concurrency = %d, want <= 2", p)
	}
}

func TestProcessorQueue_EnqueueAfterShutdown(t *testing.T) {
	q := NewProcessorQueue(&countingRunner{seen: map[string]constants.DocType{}}, quietLogger(), WithWorkers(1))
	q.Shutdown(context.Background())

	if err := q.Enqueue(context.Background(), Job{URL: "https://x.test/a.png", DocType: constants.KTP}); err != ErrQueueClosed {
		t.Errorf("Enqueue after shutdown = %v, want ErrQueueClosed", err)
	}
	if _, open := <-q.Results(); open {
		t.Error("results channel should be closed after shutdown")
	}
	// second shutdown is a no-op
	q.Shutdown(context.Background())
}

type gatedRunner struct {
	started chan struct{}
	release chan struct{}
}

func (g *gatedRunner) Run(ctx context.Context, sourceURL string, _ constants.DocType) entity.Outcome {
	g.started <- struct{}{}
	<-g.release
	return entity.Outcome{Status: constants.OutcomeNotDocument, Message: sourceURL}
}

func TestProcessorQueue_ShutdownReleasesBlockedEnqueue(t *testing.T) {
	runner := &gatedRunner{started: make(chan struct{}, 4), release: make(chan struct{})}
	q := NewProcessorQueue(runner, quietLogger(), WithWorkers(1), WithQueueSize(1))

	var results []Result
	drained := make(chan struct{})
	go func() {
		defer close(drained)
		for r := range q.Results() {
			results = append(results, r)
		}
	}()

	ctx := context.Background()
	if err := q.Enqueue(ctx, Job{Index: 0, URL: "https://x.test/0.png"}); err != nil {
		t.Fatalf("enqueue 0: %v", err)
	}
	<-runner.started // worker is busy with job 0
	if err := q.Enqueue(ctx, Job{Index: 1, URL: "https://x.test/1.png"}); err != nil {
		t.Fatalf("enqueue 1: %v", err)
	}

	blocked := make(chan error, 1)
	go func() { blocked <- q.Enqueue(ctx, Job{Index: 2, URL: "https://x.test/2.png"}) }()
	time.Sleep(20 * time.Millisecond)

	shutdownDone := make(chan struct{})
	go func() {
		defer close(shutdownDone)
		q.Shutdown(context.Background())
	}()

	select {
	case err := <-blocked:
		if err != ErrQueueClosed {
			t.Errorf("blocked Enqueue = %v, want ErrQueueClosed", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Shutdown did not release the blocked Enqueue")
	}

	close(runner.release)
	select {
	case <-shutdownDone:
	case <-time.After(2 * time.Second):
		t.Fatal("Shutdown did not complete")
	}
	<-drained
	if len(results) != 2 {
		t.Errorf("got %d results, want the 2 accepted jobs", len(results))
	}
}

func TestProcessorQueue_ZeroTimeoutMeansNoDeadline(t *testing.T) {
	runner := &deadlineRunner{}
	results, err := RunBatch(context.Background(), runner, quietLogger(),
		[]Job{{URL: "https://x.test/a.png", DocType: constants.KTP}}, WithProcessTimeout(0))
	if err != nil || len(results) != 1 {
		t.Fatalf("RunBatch: %d results, err %v", len(results), err)
	}
	if runner.hasDeadline.Load() {
		t.Error("job context should carry no deadline")
	}
}

type deadlineRunner struct {
	hasDeadline atomic.Bool
}

func (d *deadlineRunner) Run(ctx context.Context, _ string, _ constants.DocType) entity.Outcome {
	_, ok := ctx.Deadline()
	d.hasDeadline.Store(ok)
	return entity.Outcome{Status: constants.OutcomeNotDocument}
}
