package harvest

import (
	"context"
	"fmt"
	"sync"

	"vexrank/pkg/logger"

	"vexrank/pkg/robotevents"
)

// eventJob is one event to traverse, tagged with its listing position so
// results can be reassembled in a deterministic order.
type eventJob struct {
	index int
	event robotevents.Event
}

// eventResult carries an event's matches back to the collector.
type eventResult struct {
	index   int
	event   robotevents.Event
	matches []Match
	err     error
}

// processFunc turns one event into its match stream.
type processFunc func(ctx context.Context, event robotevents.Event) ([]Match, error)

// workerPool fans event traversal out to a bounded set of workers. The
// pool bounds in-flight branches only; request pacing is the API client's
// job, so adding workers never adds request rate.
type workerPool struct {
	numWorkers  int
	jobQueue    chan eventJob
	resultQueue chan eventResult
	wg          sync.WaitGroup
	ctx         context.Context
	process     processFunc
	logger      logger.Logger
}

// newWorkerPool creates a pool with the given parallelism.
func newWorkerPool(numWorkers int, process processFunc, log logger.Logger) *workerPool {
	if log == nil {
		log = logger.GetLogger()
	}

	return &workerPool{
		numWorkers:  numWorkers,
		jobQueue:    make(chan eventJob, numWorkers*2),
		resultQueue: make(chan eventResult, numWorkers),
		process:     process,
		logger:      log,
	}
}

// Start launches the workers under the given context.
func (wp *workerPool) Start(ctx context.Context) {
	wp.ctx = ctx

	wp.logger.DebugWithFields("Starting harvest workers", map[string]interface{}{
		"num_workers": wp.numWorkers,
	})

	for i := 0; i < wp.numWorkers; i++ {
		wp.wg.Add(1)
		go wp.worker(i)
	}
}

// Stop signals that no more jobs will arrive and closes the result
// channel once the workers drain. Callers must be consuming Results.
func (wp *workerPool) Stop() {
	close(wp.jobQueue)
	wp.wg.Wait()
	close(wp.resultQueue)
}

// Submit queues one event for traversal.
func (wp *workerPool) Submit(job eventJob) error {
	select {
	case wp.jobQueue <- job:
		return nil
	case <-wp.ctx.Done():
		return fmt.Errorf("worker pool is shutting down: %w", wp.ctx.Err())
	}
}

// Results returns the channel traversal results arrive on.
func (wp *workerPool) Results() <-chan eventResult {
	return wp.resultQueue
}

func (wp *workerPool) worker(id int) {
	defer wp.wg.Done()

	for job := range wp.jobQueue {
		select {
		case <-wp.ctx.Done():
			wp.logger.DebugWithFields("Worker stopping, context cancelled", map[string]interface{}{
				"worker_id": id,
			})
			return
		default:
		}

		matches, err := wp.process(wp.ctx, job.event)

		select {
		case wp.resultQueue <- eventResult{
			index:   job.index,
			event:   job.event,
			matches: matches,
			err:     err,
		}:
		case <-wp.ctx.Done():
			return
		}
	}
}
