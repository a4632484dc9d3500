package report

import (
	"sort"

	"github.com/pullscope/pullscope/pkg/core"
)

// MergeSnapshots combines N single-report snapshots into one virtual
// snapshot for multi-report analysis (C8). Event streams are concatenated
// in report-admission order (the order snapshots are passed in) and
// pull_index is renumbered globally per fight name; actor identity stays
// keyed by (report_code, id) internally, so conflicting class/role data
// across reports never collides — callers needing name-based identity use
// ActorOrUnknown per-event, which already resolves within the owning
// report's namespace.
func MergeSnapshots(snapshots []*core.ReportSnapshot) *core.ReportSnapshot {
	merged := &core.ReportSnapshot{
		Actors: make(map[core.ActorKey]core.Actor),
	}

	for _, snap := range snapshots {
		merged.ReportCodes = append(merged.ReportCodes, snap.ReportCodes...)
		for k, v := range snap.Actors {
			if _, exists := merged.Actors[k]; !exists {
				merged.Actors[k] = v
			}
		}
	}
	sort.Strings(merged.ReportCodes)

	globalPullIndex := map[string]int{}
	var allEvents []core.Event
	seq := 0

	for _, snap := range snapshots {
		for _, f := range snap.Fights {
			globalPullIndex[f.Name]++
			f.PullIndex = globalPullIndex[f.Name]
			merged.Fights = append(merged.Fights, f)
		}
	}

	// Recompute each event's pull index from the globally renumbered fight
	// it belongs to, since the per-report PullIndex is no longer unique
	// across the merged fight set.
	fightPullIndex := make(map[core.ActorKey]int, len(merged.Fights))
	for _, f := range merged.Fights {
		fightPullIndex[core.ActorKey{ReportCode: f.ReportCode, ID: f.ID}] = f.PullIndex
	}

	for _, snap := range snapshots {
		for _, evt := range snap.Events {
			evt.PullIndex = fightPullIndex[core.ActorKey{ReportCode: evt.ReportCode, ID: evt.FightID}]
			evt.Sequence = seq
			seq++
			allEvents = append(allEvents, evt)
		}
	}

	sort.SliceStable(allEvents, func(i, j int) bool {
		if allEvents[i].TimestampMs != allEvents[j].TimestampMs {
			return allEvents[i].TimestampMs < allEvents[j].TimestampMs
		}
		if allEvents[i].SourceID != allEvents[j].SourceID {
			return allEvents[i].SourceID < allEvents[j].SourceID
		}
		return allEvents[i].Sequence < allEvents[j].Sequence
	})
	merged.Events = allEvents

	if len(snapshots) > 0 {
		merged.CreatedAt = snapshots[0].CreatedAt
	}
	return merged
}
