package orchestrator

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/pullscope/pullscope/pkg/analysis"
	"github.com/pullscope/pullscope/pkg/cache"
	"github.com/pullscope/pullscope/pkg/config"
	"github.com/pullscope/pullscope/pkg/core"
	"github.com/pullscope/pullscope/pkg/queue"
	"github.com/pullscope/pullscope/pkg/report"
)

// Orchestrator is the consumer-facing entry point: Analyze probes the
// cache, and on a miss either completes inline (fast path) or returns a
// JobHandle for the caller to poll.
type Orchestrator struct {
	cfg     *config.Config
	fetcher *report.Fetcher
	cache   *cache.Cache
	pool    *queue.Pool
	logger  *slog.Logger
}

// New wires an Orchestrator from its already-constructed components.
func New(cfg *config.Config, fetcher *report.Fetcher, snapshotCache *cache.Cache, pool *queue.Pool, logger *slog.Logger) *Orchestrator {
	if logger == nil {
		logger = slog.Default()
	}
	return &Orchestrator{cfg: cfg, fetcher: fetcher, cache: snapshotCache, pool: pool, logger: logger.With("component", "orchestrator")}
}

// Analyze implements the admission policy from spec.md §4.5: a cache hit
// returns a Result with no job created; a cache miss admits a job and
// either completes it inline (within fast_return_threshold) or returns a
// JobHandle.
func (o *Orchestrator) Analyze(ctx context.Context, req ReportRequest) (*Result, *JobHandle, error) {
	if len(req.ReportCodes) == 0 {
		return nil, nil, fmt.Errorf("%w: report_codes must be nonempty", core.ErrBadRequest)
	}

	dataTypes, err := dataTypesFor(req.AnalyzerID)
	if err != nil {
		return nil, nil, err
	}

	fp := core.BuildFingerprint(req.ReportCodes, req.FightFilter, string(req.AnalyzerID), dataTypes, req.AbilityIDs, req.Config)

	if !req.Fresh {
		if snap, ok := o.cache.Peek(fp); ok {
			out, err := applyAnalyzer(snap, req)
			if err != nil {
				return nil, nil, err
			}
			return &Result{Analyzer: req.AnalyzerID, Output: out}, nil, nil
		}
	}

	fetchFn := o.fetchFunc(req, dataTypes)
	task := func(taskCtx context.Context) (any, error) {
		snap, err := o.cache.Get(taskCtx, fp, req.Fresh, fetchFn)
		if err != nil {
			return nil, err
		}
		return applyAnalyzer(snap, req)
	}

	job := o.pool.Submit(fp, task)

	select {
	case <-job.Done():
		status := job.Status()
		if status.Err != nil {
			return nil, nil, status.Err
		}
		out, _ := status.Result.(*analysis.AnalyzerResult)
		return &Result{Analyzer: req.AnalyzerID, Output: out}, nil, nil
	case <-time.After(o.cfg.FastReturnThreshold):
		status := job.Status()
		return nil, &JobHandle{ID: job.ID, State: status.State, Position: status.Position}, nil
	case <-ctx.Done():
		return nil, nil, core.ErrCanceled
	}
}

// JobStatus reports a previously admitted job's current state.
func (o *Orchestrator) JobStatus(id uuid.UUID) (*Result, *JobHandle, error) {
	status, ok := o.pool.Status(id)
	if !ok {
		return nil, nil, fmt.Errorf("%w: job %s", core.ErrNotFound, id)
	}
	switch status.State {
	case queue.JobCompleted:
		out, _ := status.Result.(*analysis.AnalyzerResult)
		return &Result{Output: out}, nil, nil
	case queue.JobFailed:
		return nil, nil, status.Err
	default:
		return nil, &JobHandle{ID: id, State: status.State, Position: status.Position}, nil
	}
}

// Cancel requests cancellation of a queued or running job.
func (o *Orchestrator) Cancel(id uuid.UUID) bool {
	return o.pool.Cancel(id)
}

// fetchFunc builds the cache.FetchFunc for req: a single-report fetch, or
// a multi-report fetch (one report after another, in request order)
// merged via report.MergeSnapshots (C8).
func (o *Orchestrator) fetchFunc(req ReportRequest, dataTypes []string) cache.FetchFunc {
	return func(ctx context.Context) (*core.ReportSnapshot, error) {
		if len(req.ReportCodes) == 1 {
			return o.fetcher.Fetch(ctx, report.FetchRequest{
				ReportCode:  req.ReportCodes[0],
				FightFilter: req.FightFilter,
				DataTypes:   dataTypes,
				AbilityIDs:  req.AbilityIDs,
				MaxInflight: o.cfg.MaxInflightPerJob,
			})
		}

		snapshots := make([]*core.ReportSnapshot, len(req.ReportCodes))
		for i, code := range req.ReportCodes {
			snap, err := o.fetcher.Fetch(ctx, report.FetchRequest{
				ReportCode:  code,
				FightFilter: req.FightFilter,
				DataTypes:   dataTypes,
				AbilityIDs:  req.AbilityIDs,
				MaxInflight: o.cfg.MaxInflightPerJob,
			})
			if err != nil {
				return nil, err
			}
			snapshots[i] = snap
		}
		return report.MergeSnapshots(snapshots), nil
	}
}
