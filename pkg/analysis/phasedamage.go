package analysis

import (
	"sort"
	"strconv"

	"github.com/pullscope/pullscope/pkg/core"
)

// phaseLabel describes one phase_id's display label within a boss's
// phase profile.
type phaseLabel struct {
	Label string
}

// phaseProfiles maps a named boss profile to its phase_id → label table.
// Phase identities beyond "which phase_id maps to which label" are a
// presentation detail the fetcher's phase_transitions already assign
// numerically; this table only supplies the labels used in output.
var phaseProfiles = map[string]map[int]phaseLabel{
	"nexus": {
		1: {Label: "Phase 1"},
		2: {Label: "Phase 2"},
		3: {Label: "Phase 3"},
	},
	"dimensius": {
		1: {Label: "Phase 1"},
		2: {Label: "Phase 2"},
		3: {Label: "Phase 3"},
		4: {Label: "Phase 4"},
	},
}

const fullPhaseLabel = "Full Encounter"

// PhaseDamageConfig configures the Phase Damage/Healing analyzer
// (spec.md §4.6.4). Phases is a set of phase ids (as decimal strings) or
// the literal "full" for the whole-pull aggregate.
type PhaseDamageConfig struct {
	PhaseProfile string
	Phases       []string
	FightFilter  string
}

// PhaseDamage sums per-player damage or healing (chosen by role) within
// each selected phase window, divided across all retained pulls
// regardless of whether the player was alive throughout — an explicitly
// documented divergence from a "pulls the player participated in" count.
func PhaseDamage(snap *core.ReportSnapshot, cfg PhaseDamageConfig) (*AnalyzerResult, error) {
	fights := retainedFights(snap, cfg.FightFilter)
	fightByID := fightSet(fights)
	pullCount := len(fights)

	profile := phaseProfiles[cfg.PhaseProfile]
	wantFull, wantPhases := parsePhaseSelection(cfg.Phases)

	base := accumulators(snap)
	type phaseAccum struct {
		accum *playerAccumulator
		total map[int]float64 // phase_id -> total; fullPhaseID sentinel for "full"
	}
	const fullPhaseID = -1
	out := make(map[string]*phaseAccum, len(base))
	for name, a := range base {
		out[name] = &phaseAccum{accum: a, total: make(map[int]float64)}
	}

	for _, evt := range snap.Events {
		if _, ok := fightByID[fightKey(evt.ReportCode, evt.FightID)]; !ok {
			continue
		}
		source := actorName(snap, evt.ReportCode, evt.SourceID)
		if source.Type != core.ActorTypePlayer {
			continue
		}
		metric := metricForRole(source.Role)
		if (metric == "damage" && evt.Type != core.EventTypeDamage) ||
			(metric == "healing" && evt.Type != core.EventTypeHeal) {
			continue
		}

		acc, ok := out[source.Name]
		if !ok {
			acc = &phaseAccum{accum: newAccumulator(source), total: make(map[int]float64)}
			out[source.Name] = acc
		}

		if wantFull {
			acc.total[fullPhaseID] += float64(evt.Amount)
		}
		if wantPhases[evt.PhaseID] {
			acc.total[evt.PhaseID] += float64(evt.Amount)
		}
	}

	rows := make([]PlayerRow, 0, len(out))
	phaseLabels := map[int]string{}
	for id, info := range profile {
		if wantPhases[id] {
			phaseLabels[id] = info.Label
		}
	}
	if wantFull {
		phaseLabels[fullPhaseID] = fullPhaseLabel
	}

	for name, acc := range out {
		row := PlayerRow{
			PlayerName:    name,
			Role:          acc.accum.role,
			Class:         acc.accum.class,
			PhaseTotals:   map[int]float64{},
			PhaseAverages: map[int]float64{},
		}
		for id := range phaseLabels {
			row.PhaseTotals[id] = acc.total[id]
			row.PhaseAverages[id] = core.PerPull(acc.total[id], pullCount)
		}
		rows = append(rows, row)
	}
	sortRows(rows)
	classes, roles := roleClassMaps(rows)

	phaseIDs := make([]int, 0, len(phaseLabels))
	for id := range phaseLabels {
		phaseIDs = append(phaseIDs, id)
	}
	sort.Ints(phaseIDs)

	return &AnalyzerResult{
		Report:        firstReportCode(snap),
		PullCount:     pullCount,
		Entries:       rows,
		Phases:        phaseIDs,
		PhaseLabels:   phaseLabels,
		PlayerClasses: classes,
		PlayerRoles:   roles,
		FiltersEcho: map[string]any{
			"phase_profile": cfg.PhaseProfile,
			"phases":        cfg.Phases,
			"fight_filter":  cfg.FightFilter,
		},
	}, nil
}

func metricForRole(role core.Role) string {
	if role == core.RoleHealer {
		return "healing"
	}
	return "damage"
}

func parsePhaseSelection(phases []string) (wantFull bool, wantPhases map[int]bool) {
	wantPhases = make(map[int]bool)
	for _, p := range phases {
		if p == "full" {
			wantFull = true
			continue
		}
		if id, err := strconv.Atoi(p); err == nil {
			wantPhases[id] = true
		}
	}
	return wantFull, wantPhases
}
