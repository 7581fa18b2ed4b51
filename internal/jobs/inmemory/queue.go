package inmemory

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/dvloznov/zenith/internal/jobs"
)

// DefaultWorkers is the number of concurrent workers used when none is given.
const DefaultWorkers = 5

// ErrQueueClosed is returned when publishing to or starting a stopped queue.
var ErrQueueClosed = errors.New("queue is closed")

// Queue is an in-memory implementation of job publisher and consumer.
// It uses Go channels for job distribution and is safe for concurrent use.
type Queue struct {
	jobChan   chan *jobs.PlanJob
	closeChan chan struct{}
	closeOnce sync.Once
	wg        sync.WaitGroup
	mu        sync.RWMutex
	store     jobs.JobStore
	workers   int
	backoff   time.Duration
	closed    bool
	started   bool
}

// NewQueue creates a new in-memory job queue.
// bufferSize determines how many jobs can be queued before PublishPlan
// blocks; workers bounds how many jobs run at once.
func NewQueue(bufferSize, workers int, store jobs.JobStore) *Queue {
	if workers <= 0 {
		workers = DefaultWorkers
	}
	return &Queue{
		jobChan:   make(chan *jobs.PlanJob, bufferSize),
		closeChan: make(chan struct{}),
		store:     store,
		workers:   workers,
		backoff:   time.Second,
	}
}

// PublishPlan implements the Publisher interface.
func (q *Queue) PublishPlan(ctx context.Context, job *jobs.PlanJob) error {
	q.mu.RLock()
	defer q.mu.RUnlock()

	if q.closed {
		return ErrQueueClosed
	}

	if job.JobID == "" {
		job.JobID = uuid.NewString()
	}
	if job.Status == "" {
		job.Status = jobs.JobStatusPending
	}
	if job.CreatedAt.IsZero() {
		job.CreatedAt = time.Now()
	}

	if q.store != nil {
		if err := q.store.SaveJob(ctx, job); err != nil {
			return fmt.Errorf("PublishPlan: save job: %w", err)
		}
	}

	select {
	case q.jobChan <- job:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	case <-q.closeChan:
		return ErrQueueClosed
	}
}

// Start implements the Consumer interface.
// It starts the configured number of workers, each calling handler for the
// jobs it receives.
func (q *Queue) Start(ctx context.Context, handler jobs.JobHandler) error {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.closed {
		return ErrQueueClosed
	}
	if q.started {
		return errors.New("queue already started")
	}
	q.started = true

	for i := 0; i < q.workers; i++ {
		q.wg.Add(1)
		go q.worker(ctx, handler)
	}
	return nil
}

// worker processes jobs until the queue is stopped or ctx ends, then drains
// what is still buffered. Jobs drained after ctx ends still reach handler,
// with the expired ctx, so their owners see them finish.
func (q *Queue) worker(ctx context.Context, handler jobs.JobHandler) {
	defer q.wg.Done()

	for {
		select {
		case <-ctx.Done():
		case <-q.closeChan:
		case job := <-q.jobChan:
			q.processJob(ctx, job, handler)
			continue
		}
		q.shutdown()
		q.drain(ctx, handler)
		return
	}
}

func (q *Queue) drain(ctx context.Context, handler jobs.JobHandler) {
	for {
		select {
		case job := <-q.jobChan:
			q.processJob(ctx, job, handler)
		default:
			return
		}
	}
}

// shutdown stops the queue from accepting jobs. closeChan is closed before
// taking the lock so publishers blocked on a full buffer give up first. Once
// it returns, every accepted job is already buffered.
func (q *Queue) shutdown() {
	q.closeOnce.Do(func() { close(q.closeChan) })

	q.mu.Lock()
	q.closed = true
	q.mu.Unlock()
}

// processJob executes a single job, retrying with linear backoff while the
// job allows it.
func (q *Queue) processJob(ctx context.Context, job *jobs.PlanJob, handler jobs.JobHandler) {
	if job == nil {
		return
	}

	for {
		job.Status = jobs.JobStatusRunning
		now := time.Now()
		job.StartedAt = &now
		job.CompletedAt = nil
		q.save(ctx, job)

		err := runHandler(ctx, job, handler)

		completedAt := time.Now()
		job.CompletedAt = &completedAt

		if err == nil {
			job.Status = jobs.JobStatusCompleted
			job.Error = ""
			q.save(ctx, job)
			return
		}

		job.Error = err.Error()
		if job.RetryCount >= job.MaxRetries {
			job.Status = jobs.JobStatusFailed
			q.save(ctx, job)
			return
		}

		job.RetryCount++
		job.Status = jobs.JobStatusRetrying
		q.save(ctx, job)

		timer := time.NewTimer(time.Duration(job.RetryCount) * q.backoff)
		select {
		case <-timer.C:
		case <-ctx.Done():
			timer.Stop()
			job.Status = jobs.JobStatusFailed
			q.save(context.Background(), job)
			return
		}
	}
}

// runHandler calls handler, turning a panic into an error.
func runHandler(ctx context.Context, job *jobs.PlanJob, handler jobs.JobHandler) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("job %s panicked: %v", job.JobID, r)
		}
	}()
	return handler(ctx, job)
}

func (q *Queue) save(ctx context.Context, job *jobs.PlanJob) {
	if q.store != nil {
		_ = q.store.SaveJob(ctx, job)
	}
}

// Stop implements the Consumer interface.
// It stops accepting jobs and waits for queued and in-flight jobs to finish.
// It is safe to call more than once, including after the Start context ended.
func (q *Queue) Stop(ctx context.Context) error {
	q.shutdown()

	done := make(chan struct{})
	go func() {
		q.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Close implements the Publisher interface.
func (q *Queue) Close() error {
	return q.Stop(context.Background())
}

var (
	_ jobs.Publisher = (*Queue)(nil)
	_ jobs.Consumer  = (*Queue)(nil)
)
