package services

import (
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// recordingJob counts executions and fails until failures is drained.
type recordingJob struct {
	mu       sync.Mutex
	runs     int
	failures int
}

func (j *recordingJob) Kind() string { return "recording" }

func (j *recordingJob) Execute() error {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.runs++
	if j.failures > 0 {
		j.failures--
		return errors.New("transient failure")
	}
	return nil
}

func (j *recordingJob) Runs() int {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.runs
}

func newTestDispatcher(maxAttempts int) *Dispatcher {
	d := NewDispatcher(16, maxAttempts, time.Millisecond, 10*time.Millisecond)
	d.Start(1)
	return d
}

func TestDispatcherRunsJob(t *testing.T) {
	d := newTestDispatcher(3)

	job := &recordingJob{}
	id := d.Enqueue(job)
	assert.NotEmpty(t, id)

	d.Wait()
	assert.Equal(t, 1, job.Runs())
}

func TestDispatcherRetriesUntilSuccess(t *testing.T) {
	d := newTestDispatcher(5)

	job := &recordingJob{failures: 2}
	d.Enqueue(job)

	d.Wait()
	assert.Equal(t, 3, job.Runs(), "two failures then one success")
}

func TestDispatcherGivesUpAfterMaxAttempts(t *testing.T) {
	d := newTestDispatcher(3)

	job := &recordingJob{failures: 100}
	d.Enqueue(job)

	d.Wait()
	assert.Equal(t, 3, job.Runs())
}

func TestDispatcherBackoffIsBounded(t *testing.T) {
	d := NewDispatcher(1, 10, time.Second, 8*time.Second)

	assert.Equal(t, time.Second, d.backoffFor(1))
	assert.Equal(t, 2*time.Second, d.backoffFor(2))
	assert.Equal(t, 4*time.Second, d.backoffFor(3))
	assert.Equal(t, 8*time.Second, d.backoffFor(4))
	assert.Equal(t, 8*time.Second, d.backoffFor(9), "delay never exceeds the cap")
}

func TestDispatcherDropsWhenQueueFull(t *testing.T) {
	// No worker started: the buffer of one fills immediately
	d := NewDispatcher(1, 3, time.Millisecond, time.Millisecond)

	first := d.Enqueue(&recordingJob{})
	require.NotEmpty(t, first)

	second := d.Enqueue(&recordingJob{})
	assert.Empty(t, second, "a full queue drops instead of blocking the caller")
}
