package analysis

import (
	"sort"
	"strings"

	"github.com/pullscope/pullscope/pkg/core"
)

// retainedFights returns the snapshot's fights matching fightFilter
// (case-insensitive name match), or every fight when fightFilter is empty.
// pull_count (invariant 4) is always len(retainedFights(...)).
func retainedFights(snap *core.ReportSnapshot, fightFilter string) []core.Fight {
	if fightFilter == "" {
		return snap.Fights
	}
	var out []core.Fight
	for _, f := range snap.Fights {
		if strings.EqualFold(f.Name, fightFilter) {
			out = append(out, f)
		}
	}
	return out
}

// fightKey is the composite key for a fight: fight IDs are only unique
// within one report, so merged multi-report snapshots (spec.md §8) need
// ReportCode alongside ID to avoid collisions between reports.
func fightKey(reportCode string, fightID int) core.ActorKey {
	return core.ActorKey{ReportCode: reportCode, ID: fightID}
}

func fightSet(fights []core.Fight) map[core.ActorKey]core.Fight {
	set := make(map[core.ActorKey]core.Fight, len(fights))
	for _, f := range fights {
		set[fightKey(f.ReportCode, f.ID)] = f
	}
	return set
}

// sortRows orders rows by role priority then name, the default result
// ordering (spec.md §9).
func sortRows(rows []PlayerRow) {
	sort.SliceStable(rows, func(i, j int) bool {
		return core.SortRoleThenName(rows[i].Role, rows[j].Role, rows[i].PlayerName, rows[j].PlayerName)
	})
}

func roleClassMaps(rows []PlayerRow) (classes map[string]string, roles map[string]core.Role) {
	classes = make(map[string]string, len(rows))
	roles = make(map[string]core.Role, len(rows))
	for _, r := range rows {
		classes[r.PlayerName] = r.Class
		roles[r.PlayerName] = r.Role
	}
	return classes, roles
}

// accumulators folds a snapshot's actor roster into one playerAccumulator
// per player actor, keyed by name (cross-report identity basis).
func accumulators(snap *core.ReportSnapshot) map[string]*playerAccumulator {
	out := make(map[string]*playerAccumulator)
	for _, a := range snap.Actors {
		if a.Type != core.ActorTypePlayer {
			continue
		}
		out[a.Name] = newAccumulator(a)
	}
	return out
}

// actorName resolves an id to a display name, synthesizing Unknown-<id>
// for ids absent from the roster.
func actorName(snap *core.ReportSnapshot, reportCode string, id int) core.Actor {
	return snap.ActorOrUnknown(reportCode, id)
}
