package engine

import (
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/wethinkt/go-csvview/internal/dataset"
	"github.com/wethinkt/go-csvview/internal/metrics"
	"github.com/wethinkt/go-csvview/internal/tuilog"
	"github.com/wethinkt/go-csvview/internal/view"
)

// Request asks the pool to compute the rows of one view.
type Request struct {
	View     view.ID
	Snapshot view.Snapshot
	Store    *dataset.Store
}

// Result is a completed Request. Snapshot identifies the inputs the
// indices were computed from.
type Result struct {
	Request
	Indices []int
	Elapsed time.Duration
}

const (
	requestBuffer = 256
	resultBuffer  = 256
)

// Pool runs Compute for submitted requests on a bounded number of
// goroutines. Results arrive on Results in completion order, which is not
// necessarily submission order.
type Pool struct {
	workers  int
	requests chan Request
	results  chan Result
	done     chan struct{}

	closeOnce  sync.Once
	dispatched sync.WaitGroup
}

// NewPool starts a pool with the given number of workers (minimum 1).
func NewPool(workers int) *Pool {
	if workers < 1 {
		workers = 1
	}
	p := &Pool{
		workers:  workers,
		requests: make(chan Request, requestBuffer),
		results:  make(chan Result, resultBuffer),
		done:     make(chan struct{}),
	}
	p.dispatched.Add(1)
	go p.dispatch()
	return p
}

// Submit queues req. It never blocks: when the queue is full the request is
// handed over from a separate goroutine. Requests submitted after Close are
// discarded.
func (p *Pool) Submit(req Request) {
	select {
	case <-p.done:
		return
	default:
	}
	select {
	case p.requests <- req:
	default:
		go func() {
			select {
			case p.requests <- req:
			case <-p.done:
			}
		}()
	}
}

// Results returns the channel completed computations are published on.
// It is closed once Close has stopped every worker.
func (p *Pool) Results() <-chan Result {
	return p.results
}

// Close stops accepting work, waits for running computations and closes
// the results channel. Queued requests that have not started are dropped.
func (p *Pool) Close() {
	p.closeOnce.Do(func() {
		close(p.done)
		p.dispatched.Wait()
		close(p.results)
	})
}

func (p *Pool) dispatch() {
	defer p.dispatched.Done()

	var g errgroup.Group
	g.SetLimit(p.workers)
	defer g.Wait()

	for {
		select {
		case <-p.done:
			return
		case req := <-p.requests:
			g.Go(func() error {
				p.publish(Run(req))
				return nil
			})
		}
	}
}

func (p *Pool) publish(res Result) {
	select {
	case p.results <- res:
	case <-p.done:
	}
}

// Run computes req synchronously.
func Run(req Request) Result {
	start := time.Now()
	indices := Compute(req.Store, req.Snapshot.Query())
	elapsed := time.Since(start)

	metrics.RecomputesTotal.Inc()
	metrics.RecomputeDurationSeconds.Observe(elapsed.Seconds())
	tuilog.Log.Debug("Recomputed view", "view", req.View, "dataset", req.Snapshot.Dataset,
		"filter", req.Snapshot.Filter, "rows", len(indices), "elapsed", elapsed)

	return Result{Request: req, Indices: indices, Elapsed: elapsed}
}
