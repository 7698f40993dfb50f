package services

import (
	"log"
	"sync"
	"time"
	"verba/internal/utils"
)

// Job is one unit of background work. Execute must tolerate repeated runs:
// delivery is at-least-once and a transient failure puts the job back on the
// queue.
type Job interface {
	Kind() string
	Execute() error
}

type queuedJob struct {
	id      string
	job     Job
	attempt int
}

// Dispatcher is the in-process task queue behind the fire-and-forget email
// and backup jobs. Handlers enqueue and return immediately; workers drain
// the queue out-of-band and retry failures with bounded exponential backoff.
type Dispatcher struct {
	queue       chan queuedJob
	maxAttempts int
	baseBackoff time.Duration
	maxBackoff  time.Duration

	wg sync.WaitGroup
}

var (
	defaultDispatcher *Dispatcher
	dispatcherOnce    sync.Once
)

// GetDispatcher returns the process-wide dispatcher, starting its worker on
// first use.
func GetDispatcher() *Dispatcher {
	dispatcherOnce.Do(func() {
		defaultDispatcher = NewDispatcher(1000, 5, time.Second, time.Minute)
		defaultDispatcher.Start(2)
	})
	return defaultDispatcher
}

func NewDispatcher(buffer, maxAttempts int, baseBackoff, maxBackoff time.Duration) *Dispatcher {
	return &Dispatcher{
		queue:       make(chan queuedJob, buffer),
		maxAttempts: maxAttempts,
		baseBackoff: baseBackoff,
		maxBackoff:  maxBackoff,
	}
}

// Start launches the worker goroutines.
func (d *Dispatcher) Start(workers int) {
	for i := 0; i < workers; i++ {
		go d.worker()
	}
}

// Enqueue hands a job to the queue and returns its id without waiting for
// execution. A full queue drops the job with a log line rather than stalling
// the request that enqueued it.
func (d *Dispatcher) Enqueue(job Job) string {
	id := utils.RandString(8)
	d.wg.Add(1)
	select {
	case d.queue <- queuedJob{id: id, job: job}:
	default:
		d.wg.Done()
		log.Printf("job queue full, dropping %s job %s", job.Kind(), id)
		return ""
	}
	return id
}

// Wait blocks until every enqueued job has finished or exhausted its
// retries. Used by tests and shutdown paths.
func (d *Dispatcher) Wait() {
	d.wg.Wait()
}

func (d *Dispatcher) worker() {
	for q := range d.queue {
		d.run(q)
	}
}

func (d *Dispatcher) run(q queuedJob) {
	err := q.job.Execute()
	if err == nil {
		d.wg.Done()
		return
	}

	q.attempt++
	if q.attempt >= d.maxAttempts {
		log.Printf("job %s (%s) failed after %d attempts: %v", q.id, q.job.Kind(), q.attempt, err)
		d.wg.Done()
		return
	}

	delay := d.backoffFor(q.attempt)
	log.Printf("job %s (%s) failed (attempt %d): %v, retrying in %s", q.id, q.job.Kind(), q.attempt, err, delay)
	time.AfterFunc(delay, func() {
		select {
		case d.queue <- q:
		default:
			log.Printf("job queue full, dropping retried %s job %s", q.job.Kind(), q.id)
			d.wg.Done()
		}
	})
}

// backoffFor doubles the delay per attempt, capped at maxBackoff.
func (d *Dispatcher) backoffFor(attempt int) time.Duration {
	delay := d.baseBackoff
	for i := 1; i < attempt; i++ {
		delay *= 2
		if delay >= d.maxBackoff {
			return d.maxBackoff
		}
	}
	if delay > d.maxBackoff {
		return d.maxBackoff
	}
	return delay
}
