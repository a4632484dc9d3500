package report

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/pullscope/pullscope/pkg/core"
	"github.com/pullscope/pullscope/pkg/wowapi"
)

const defaultMaxInflight = 4

// Fetcher pages a single report's master data and event streams into a
// materialized core.ReportSnapshot (C3 + C4).
type Fetcher struct {
	client      *wowapi.Client
	maxInflight int
	logger      *slog.Logger
}

// NewFetcher builds a Fetcher backed by the given GraphQL client.
func NewFetcher(client *wowapi.Client, maxInflight int, logger *slog.Logger) *Fetcher {
	if maxInflight <= 0 {
		maxInflight = defaultMaxInflight
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Fetcher{client: client, maxInflight: maxInflight, logger: logger.With("component", "report_fetcher")}
}

// Fetch runs the six-step fetch-and-normalize algorithm for one report.
func (f *Fetcher) Fetch(ctx context.Context, req FetchRequest) (*core.ReportSnapshot, error) {
	var master masterDataResponse
	if err := f.client.Execute(ctx, wowapi.MasterDataQuery(), map[string]any{"code": req.ReportCode}, &master); err != nil {
		return nil, err
	}
	if master.ReportData.Report == nil {
		return nil, fmt.Errorf("%w: report %s", core.ErrReportNotFound, req.ReportCode)
	}
	rpt := master.ReportData.Report

	actors := buildActors(req.ReportCode, rpt.MasterData.Actors)
	fights := selectFights(req.ReportCode, rpt.Fights, req.FightFilter)

	snapshot := &core.ReportSnapshot{
		ReportCodes: []string{req.ReportCode},
		Fights:      fights,
		Actors:      actors,
		CreatedAt:   time.Now(),
	}
	if len(fights) == 0 {
		return snapshot, nil
	}

	perDataType, err := f.fetchEventStreams(ctx, req, rpt.StartTime, rpt.EndTime)
	if err != nil {
		return nil, err
	}

	events := normalizeEvents(req.ReportCode, perDataType, fights)
	sort.SliceStable(events, func(i, j int) bool {
		if events[i].TimestampMs != events[j].TimestampMs {
			return events[i].TimestampMs < events[j].TimestampMs
		}
		if events[i].SourceID != events[j].SourceID {
			return events[i].SourceID < events[j].SourceID
		}
		return events[i].Sequence < events[j].Sequence
	})
	snapshot.Events = events

	return snapshot, nil
}

// fetchEventStreams pages every requested data type concurrently (bounded
// by maxInflight) and returns raw events in deterministic, request order —
// goroutine completion order never affects the result.
func (f *Fetcher) fetchEventStreams(ctx context.Context, req FetchRequest, startTime, endTime float64) ([][]core.Event, error) {
	results := make([][]core.Event, len(req.DataTypes))

	g, gctx := errgroup.WithContext(ctx)
	limit := f.maxInflight
	if req.MaxInflight > 0 {
		limit = req.MaxInflight
	}
	g.SetLimit(limit)

	for i, dt := range req.DataTypes {
		i, dt := i, dt
		g.Go(func() error {
			enum, ok := wowapi.DataTypeEnum(dt)
			if !ok {
				return fmt.Errorf("%w: unknown data type %q", core.ErrBadRequest, dt)
			}

			var raw []map[string]any
			switch len(req.AbilityIDs) {
			case 0:
				r, err := pageEvents(gctx, f.client, req.ReportCode, enum, nil, startTime, endTime)
				if err != nil {
					return err
				}
				raw = r
			case 1:
				r, err := pageEvents(gctx, f.client, req.ReportCode, enum, &req.AbilityIDs[0], startTime, endTime)
				if err != nil {
					return err
				}
				raw = r
			default:
				merged, err := f.fetchDualAbility(gctx, req, enum, startTime, endTime)
				if err != nil {
					return err
				}
				results[i] = merged
				return nil
			}

			evts := make([]core.Event, len(raw))
			for j, r := range raw {
				evts[j] = parseRawEvent(req.ReportCode, r, j)
			}
			results[i] = evts
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

// fetchDualAbility issues two parallel paged queries (one per ability id)
// and stable-merges them by timestamp, per spec step 4's combined-analyzer
// case.
func (f *Fetcher) fetchDualAbility(ctx context.Context, req FetchRequest, enum string, startTime, endTime float64) ([]core.Event, error) {
	var rawA, rawB []map[string]any
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		rawA, err = pageEvents(gctx, f.client, req.ReportCode, enum, &req.AbilityIDs[0], startTime, endTime)
		return err
	})
	g.Go(func() (err error) {
		rawB, err = pageEvents(gctx, f.client, req.ReportCode, enum, &req.AbilityIDs[1], startTime, endTime)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	a := make([]core.Event, len(rawA))
	for j, r := range rawA {
		a[j] = parseRawEvent(req.ReportCode, r, j)
	}
	b := make([]core.Event, len(rawB))
	for j, r := range rawB {
		b[j] = parseRawEvent(req.ReportCode, r, j)
	}

	merged := make([]core.Event, 0, len(a)+len(b))
	merged = append(merged, a...)
	merged = append(merged, b...)
	sort.SliceStable(merged, func(i, j int) bool { return merged[i].TimestampMs < merged[j].TimestampMs })
	return merged, nil
}

func buildActors(reportCode string, wireActors []wireActor) map[core.ActorKey]core.Actor {
	actors := make(map[core.ActorKey]core.Actor, len(wireActors))
	for _, a := range wireActors {
		actorType := core.ActorTypeNPC
		if strings.EqualFold(a.Type, "player") {
			actorType = core.ActorTypePlayer
		}
		spec := ""
		if len(a.Specs) > 0 {
			spec = a.Specs[0]
		}
		actors[core.ActorKey{ReportCode: reportCode, ID: a.ID}] = core.Actor{
			ID:         a.ID,
			ReportCode: reportCode,
			Name:       a.Name,
			Type:       actorType,
			SubType:    a.SubType,
			Role:       core.RoleForActor(actorType, a.SubType, spec),
		}
	}
	return actors
}

// selectFights applies the fight filter (step 2) and assigns per-fight
// PullIndex (step 5's pull numbering), 1-based ascending start time within
// each fight name.
func selectFights(reportCode string, wireFights []wireFight, fightFilter string) []core.Fight {
	var retained []wireFight
	for _, wf := range wireFights {
		if fightFilter != "" {
			if strings.EqualFold(wf.Name, fightFilter) {
				retained = append(retained, wf)
			}
			continue
		}
		if wf.Boss != nil {
			retained = append(retained, wf)
		}
	}

	sort.Slice(retained, func(i, j int) bool { return retained[i].StartTime < retained[j].StartTime })

	pullCounter := map[string]int{}
	fights := make([]core.Fight, len(retained))
	for i, wf := range retained {
		pullCounter[wf.Name]++
		transitions := make([]core.PhaseTransition, len(wf.PhaseTransitions))
		for j, t := range wf.PhaseTransitions {
			transitions[j] = core.PhaseTransition{ID: t.ID, StartMs: t.StartTime}
		}
		fights[i] = core.Fight{
			ID:               wf.ID,
			ReportCode:       reportCode,
			Name:             wf.Name,
			BossID:           wf.Boss,
			StartMs:          wf.StartTime,
			EndMs:            wf.EndTime,
			Kill:             wf.Kill,
			PhaseTransitions: transitions,
			PullIndex:        pullCounter[wf.Name],
		}
	}
	return fights
}

// normalizeEvents flattens the per-data-type event streams in request
// order (assigning the final Sequence deterministically), then resolves
// FightID, PullIndex, PhaseID and OffsetFromPullMs per event. Events that
// fall outside every retained fight's window are dropped.
func normalizeEvents(reportCode string, perDataType [][]core.Event, fights []core.Fight) []core.Event {
	var flat []core.Event
	seq := 0
	for _, stream := range perDataType {
		for _, evt := range stream {
			evt.Sequence = seq
			seq++
			flat = append(flat, evt)
		}
	}

	out := make([]core.Event, 0, len(flat))
	for _, evt := range flat {
		fight, ok := findContainingFight(fights, evt.TimestampMs)
		if !ok {
			continue
		}
		evt.FightID = fight.ID
		evt.PullIndex = fight.PullIndex
		evt.PhaseID = fight.PhaseAt(evt.TimestampMs)
		evt.OffsetFromPullMs = evt.TimestampMs - fight.StartMs
		out = append(out, evt)
	}
	return out
}

func findContainingFight(fights []core.Fight, timestampMs int64) (core.Fight, bool) {
	for _, f := range fights {
		if f.Contains(timestampMs) {
			return f, true
		}
	}
	return core.Fight{}, false
}
