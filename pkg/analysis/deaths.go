package analysis

import "github.com/pullscope/pullscope/pkg/core"

// OblivionFilter selects how Oblivion deaths are treated in the Deaths
// analyzer.
type OblivionFilter string

const (
	OblivionIncludeAll           OblivionFilter = "include_all"
	OblivionExcludeWithoutRecent OblivionFilter = "exclude_without_recent"
	OblivionExcludeAll           OblivionFilter = "exclude_all"
)

const defaultRecentWindowMs = 8000

var oblivionPrecursors = map[string]bool{
	"Airborne":             true,
	"Fists of the Voidlord": true,
	"Devour":                true,
}

// DeathsConfig configures the Deaths analyzer (spec.md §4.6.6).
type DeathsConfig struct {
	OblivionFilter OblivionFilter
	RecentWindowMs int64 // 0 means defaultRecentWindowMs
	FightFilter    string
}

// Deaths counts death events per player per pull, applying the Oblivion
// death filter.
func Deaths(snap *core.ReportSnapshot, cfg DeathsConfig) (*AnalyzerResult, error) {
	window := cfg.RecentWindowMs
	if window <= 0 {
		window = defaultRecentWindowMs
	}

	fights := retainedFights(snap, cfg.FightFilter)
	fightByID := fightSet(fights)
	pullCount := len(fights)

	base := accumulators(snap)
	type deathAccum struct {
		accum  *playerAccumulator
		deaths int
	}
	out := make(map[string]*deathAccum, len(base))
	for name, a := range base {
		out[name] = &deathAccum{accum: a}
	}

	// recentFlags[targetName] holds the timestamps of every precursor
	// debuff/cast event seen so far; hasRecentPrecursor applies the
	// trailing recent_window when a death is checked.
	recentFlags := map[string][]int64{}

	for _, evt := range snap.Events {
		if _, ok := fightByID[fightKey(evt.ReportCode, evt.FightID)]; !ok {
			continue
		}

		if evt.Type != core.EventTypeDeath && oblivionPrecursors[evt.AbilityName] {
			target := actorName(snap, evt.ReportCode, evt.TargetID)
			recentFlags[target.Name] = append(recentFlags[target.Name], evt.TimestampMs)
			continue
		}

		if evt.Type != core.EventTypeDeath {
			continue
		}

		target := actorName(snap, evt.ReportCode, evt.TargetID)
		if target.Type != core.ActorTypePlayer {
			continue
		}

		isOblivion := evt.AbilityName == "Oblivion"
		counted := true
		switch {
		case isOblivion && cfg.OblivionFilter == OblivionExcludeAll:
			counted = false
		case isOblivion && cfg.OblivionFilter == OblivionExcludeWithoutRecent:
			counted = hasRecentPrecursor(recentFlags[target.Name], evt.TimestampMs, window)
		}
		if !counted {
			continue
		}

		acc, ok := out[target.Name]
		if !ok {
			acc = &deathAccum{accum: newAccumulator(target)}
			out[target.Name] = acc
		}
		acc.deaths++
	}

	rows := make([]PlayerRow, 0, len(out))
	for name, acc := range out {
		rows = append(rows, PlayerRow{
			PlayerName: name,
			Role:       acc.accum.role,
			Class:      acc.accum.class,
			Total:      float64(acc.deaths),
			PerPull:    core.PerPull(float64(acc.deaths), pullCount),
		})
	}
	sortRows(rows)
	classes, roles := roleClassMaps(rows)

	return &AnalyzerResult{
		Report:        firstReportCode(snap),
		PullCount:     pullCount,
		Entries:       rows,
		PlayerClasses: classes,
		PlayerRoles:   roles,
		FiltersEcho: map[string]any{
			"oblivion_filter": cfg.OblivionFilter,
			"recent_window":   window,
			"fight_filter":    cfg.FightFilter,
		},
	}, nil
}

func hasRecentPrecursor(timestamps []int64, deathTs, window int64) bool {
	for _, ts := range timestamps {
		if ts <= deathTs && deathTs-ts <= window {
			return true
		}
	}
	return false
}
