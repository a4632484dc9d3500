// Package queue implements the bounded-worker-pool job scheduler (C6) that
// serializes expensive report fetches while exposing status and queue
// position to callers.
package queue

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/pullscope/pullscope/pkg/core"
)

// JobState is the caller-visible lifecycle state of a Job.
type JobState string

const (
	JobQueued    JobState = "queued"
	JobRunning   JobState = "running"
	JobCompleted JobState = "completed"
	JobFailed    JobState = "failed"
)

// Task is the unit of work a worker runs for a Job. The context carries
// only the per-job wall-clock timeout — explicit Cancel(id) does not
// cancel it, since a canceled running fetch still completes and publishes
// to the cache; the caller just observes Canceled instead of the result.
type Task func(ctx context.Context) (any, error)

// Job is one admitted unit of work.
type Job struct {
	ID          uuid.UUID
	Fingerprint core.Fingerprint
	CreatedAt   time.Time

	mu        sync.Mutex
	state     JobState
	position  int
	result    any
	err       error
	canceled  bool
	completed chan struct{}
}

func newJob(fingerprint core.Fingerprint) *Job {
	return &Job{
		ID:          uuid.New(),
		Fingerprint: fingerprint,
		CreatedAt:   time.Now(),
		state:       JobQueued,
		completed:   make(chan struct{}),
	}
}

// Status is a point-in-time snapshot of a Job, safe to read after the Job
// itself has moved on.
type Status struct {
	ID       uuid.UUID
	State    JobState
	Position int
	Result   any
	Err      error
}

// Status returns the job's current status.
func (j *Job) Status() Status {
	j.mu.Lock()
	defer j.mu.Unlock()
	return Status{ID: j.ID, State: j.state, Position: j.position, Result: j.result, Err: j.err}
}

// Done returns a channel closed once the job reaches a terminal state,
// for select-based fast-return waits.
func (j *Job) Done() <-chan struct{} { return j.completed }

// Wait blocks until the job reaches a terminal state.
func (j *Job) Wait() Status {
	<-j.completed
	return j.Status()
}

func (j *Job) setPosition(p int) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.position = p
}

func (j *Job) markRunning() {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.state = JobRunning
	j.position = 0
}

func (j *Job) isCanceled() bool {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.canceled
}

func (j *Job) markCanceled() bool {
	j.mu.Lock()
	defer j.mu.Unlock()
	if j.state == JobCompleted || j.state == JobFailed {
		return false
	}
	wasQueued := j.state == JobQueued
	j.canceled = true
	if wasQueued {
		j.state = JobFailed
		j.err = core.ErrCanceled
		close(j.completed)
	}
	return true
}

func (j *Job) finish(result any, err error) {
	j.mu.Lock()
	defer j.mu.Unlock()
	if j.canceled {
		j.state = JobFailed
		j.err = core.ErrCanceled
	} else if err != nil {
		j.state = JobFailed
		j.err = err
	} else {
		j.state = JobCompleted
		j.result = result
	}
	close(j.completed)
}
