package queue

import (
	"container/list"
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/pullscope/pullscope/pkg/core"
)

// Pool is the bounded-worker job scheduler (C6). N workers drain a FIFO
// admission list in strict order; completed/failed jobs are retained for
// completedTTL before garbage collection.
type Pool struct {
	workers      int
	jobTimeout   time.Duration
	completedTTL time.Duration
	logger       *slog.Logger

	mu       sync.Mutex
	admitted *list.List // of *Job, front = next to run
	jobs     map[uuid.UUID]*Job
	cond     *sync.Cond

	closeOnce sync.Once
	closed    chan struct{}
}

// NewPool builds a Pool with the given worker count, per-job wall-clock
// timeout, and completed-job retention window, and starts its workers.
func NewPool(workers int, jobTimeout, completedTTL time.Duration, logger *slog.Logger) *Pool {
	if workers < 1 {
		workers = 1
	}
	if logger == nil {
		logger = slog.Default()
	}
	p := &Pool{
		workers:      workers,
		jobTimeout:   jobTimeout,
		completedTTL: completedTTL,
		logger:       logger.With("component", "job_queue"),
		admitted:     list.New(),
		jobs:         make(map[uuid.UUID]*Job),
		closed:       make(chan struct{}),
	}
	p.cond = sync.NewCond(&p.mu)

	for i := 0; i < workers; i++ {
		go p.runWorker(i)
	}
	return p
}

// Submit admits a job and returns immediately with its handle; the caller
// observes progress via Status/Wait. Position reflects FIFO admission
// order at submission time (0 means running).
func (p *Pool) Submit(fingerprint core.Fingerprint, task Task) *Job {
	job := newJob(fingerprint)
	p.mu.Lock()
	p.admitted.PushBack(&queuedJob{job: job, task: task})
	p.jobs[job.ID] = job
	p.renumberLocked()
	p.mu.Unlock()

	p.cond.Signal()
	return job
}

type queuedJob struct {
	job  *Job
	task Task
}

// renumberLocked recomputes every still-queued job's Position, starting at
// 1 for the next job to run. Must be called with p.mu held.
func (p *Pool) renumberLocked() {
	pos := 1
	for e := p.admitted.Front(); e != nil; e = e.Next() {
		qj := e.Value.(*queuedJob)
		qj.job.setPosition(pos)
		pos++
	}
}

// Status looks up a job's current status by id.
func (p *Pool) Status(id uuid.UUID) (Status, bool) {
	p.mu.Lock()
	job, ok := p.jobs[id]
	p.mu.Unlock()
	if !ok {
		return Status{}, false
	}
	return job.Status(), true
}

// Cancel marks a queued job failed immediately, or flags a running job so
// its eventual status reads Canceled once its task returns.
func (p *Pool) Cancel(id uuid.UUID) bool {
	p.mu.Lock()
	job, ok := p.jobs[id]
	if !ok {
		p.mu.Unlock()
		return false
	}

	for e := p.admitted.Front(); e != nil; e = e.Next() {
		if e.Value.(*queuedJob).job.ID == id {
			p.admitted.Remove(e)
			break
		}
	}
	p.renumberLocked()
	p.mu.Unlock()

	return job.markCanceled()
}

func (p *Pool) runWorker(index int) {
	logger := p.logger.With("worker", index)
	for {
		p.mu.Lock()
		for p.admitted.Len() == 0 {
			select {
			case <-p.closed:
				p.mu.Unlock()
				return
			default:
			}
			p.cond.Wait()
			select {
			case <-p.closed:
				p.mu.Unlock()
				return
			default:
			}
		}
		el := p.admitted.Front()
		p.admitted.Remove(el)
		p.renumberLocked()
		p.mu.Unlock()

		qj := el.Value.(*queuedJob)
		p.runJob(logger, qj)
	}
}

func (p *Pool) runJob(logger *slog.Logger, qj *queuedJob) {
	qj.job.markRunning()

	ctx := context.Background()
	var cancel context.CancelFunc
	if p.jobTimeout > 0 {
		ctx, cancel = context.WithTimeout(ctx, p.jobTimeout)
		defer cancel()
	}

	result, err := qj.task(ctx)
	qj.job.finish(result, err)

	if p.completedTTL > 0 {
		id := qj.job.ID
		time.AfterFunc(p.completedTTL, func() {
			p.mu.Lock()
			delete(p.jobs, id)
			p.mu.Unlock()
		})
	}
	logger.Info("job finished", "job_id", qj.job.ID, "state", qj.job.Status().State)
}

// Close wakes every worker so each exits once the admission list is empty.
// Submit does not check for Close.
func (p *Pool) Close() {
	p.closeOnce.Do(func() {
		close(p.closed)
		p.mu.Lock()
		p.cond.Broadcast()
		p.mu.Unlock()
	})
}
