// Package analysis holds the pure analyzer family (C7): folds over a
// normalized core.ReportSnapshot that never fetch, never mutate the
// snapshot, and are deterministic for a given (snapshot, config) pair.
package analysis

import "github.com/pullscope/pullscope/pkg/core"

// AnalyzerResult is the common output shape every analyzer produces
// (spec.md §3's AnalyzerResult entity). Fields unused by a given analyzer
// are left at their zero value.
type AnalyzerResult struct {
	Report        string
	PullCount     int
	Entries       []PlayerRow
	Totals        map[string]float64
	FiltersEcho   map[string]any
	Phases        []int
	PhaseLabels   map[int]string
	AbilityIDs    map[string]int
	PlayerClasses map[string]string
	PlayerRoles   map[string]core.Role
	PlayerEvents  map[string][]core.Event
}

// PlayerRow is one player's row in an AnalyzerResult. Which fields are
// populated depends on the analyzer: Total/PerPull for single-metric
// analyzers (hits, ghosts, add damage, deaths); Metrics for multi-metric
// ones (combined, phase-1 mechanics); PhaseTotals/PhaseAverages for
// phase-damage.
type PlayerRow struct {
	PlayerName string
	Role       core.Role
	Class      string

	Total   float64
	PerPull float64

	Metrics map[string]float64

	PhaseTotals   map[int]float64
	PhaseAverages map[int]float64
}

// FightFilter, when empty, means "all retained fights" throughout the
// analyzer configs below — consistent with the fetcher's own fight_filter
// semantics.
type FightFilter = string

// playerAccumulator tracks one player's running state while folding over
// events in timestamp order; analyzers key a map[string]*playerAccumulator
// by player name since cross-report identity is by name (spec.md §4.7).
type playerAccumulator struct {
	name  string
	role  core.Role
	class string
}

func newAccumulator(actor core.Actor) *playerAccumulator {
	return &playerAccumulator{name: actor.Name, role: actor.Role, class: actor.SubType}
}
