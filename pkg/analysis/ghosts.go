package analysis

import "github.com/pullscope/pullscope/pkg/core"

// GhostMode selects how ghost-debuff applications are deduplicated within
// a pull before counting.
type GhostMode string

const (
	GhostModeAll          GhostMode = "all"
	GhostModeFirstPerPull GhostMode = "first_per_pull"
	GhostModeFirstPerSet  GhostMode = "first_per_set"
)

const defaultSetWindowMs = 3000

// GhostConfig configures the Ghost Miss analyzer (spec.md §4.6.2). The
// exact set_window constant is source-ambiguous (one of DESIGN.md's open
// questions); it is a named, overridable field rather than a hardcoded
// literal.
type GhostConfig struct {
	AbilityID   int
	Mode        GhostMode
	SetWindowMs int64 // 0 means defaultSetWindowMs
	FightFilter string
}

// Ghosts counts applydebuff events for AbilityID, attributed to the
// target player, deduplicated per Mode.
func Ghosts(snap *core.ReportSnapshot, cfg GhostConfig) (*AnalyzerResult, error) {
	window := cfg.SetWindowMs
	if window <= 0 {
		window = defaultSetWindowMs
	}

	fights := retainedFights(snap, cfg.FightFilter)
	fightByID := fightSet(fights)
	pullCount := len(fights)

	base := accumulators(snap)
	type ghostAccum struct {
		accum  *playerAccumulator
		misses int
		events []core.Event
	}
	out := make(map[string]*ghostAccum, len(base))
	for name, a := range base {
		out[name] = &ghostAccum{accum: a}
	}

	type pullState struct {
		seenAny      bool
		lastSetEnd   int64
		setStarted   bool
	}
	pullStates := make(map[core.ActorKey]*pullState)

	for _, evt := range snap.Events {
		if evt.Type != core.EventTypeApplyDebuff || evt.AbilityID != cfg.AbilityID {
			continue
		}
		if _, ok := fightByID[fightKey(evt.ReportCode, evt.FightID)]; !ok {
			continue
		}

		key := fightKey(evt.ReportCode, evt.FightID)
		ps := pullStates[key]
		if ps == nil {
			ps = &pullState{}
			pullStates[key] = ps
		}

		newSet := !ps.setStarted || evt.TimestampMs-ps.lastSetEnd > window
		ps.setStarted = true
		ps.lastSetEnd = evt.TimestampMs

		record := false
		switch cfg.Mode {
		case GhostModeFirstPerPull:
			record = !ps.seenAny
		case GhostModeFirstPerSet:
			record = newSet
		default: // all
			record = true
		}
		ps.seenAny = true
		if !record {
			continue
		}

		target := actorName(snap, evt.ReportCode, evt.TargetID)
		acc, ok := out[target.Name]
		if !ok {
			acc = &ghostAccum{accum: newAccumulator(target)}
			out[target.Name] = acc
		}
		acc.misses++
		acc.events = append(acc.events, evt)
	}

	rows := make([]PlayerRow, 0, len(out))
	playerEvents := make(map[string][]core.Event)
	for name, acc := range out {
		rows = append(rows, PlayerRow{
			PlayerName: name,
			Role:       acc.accum.role,
			Class:      acc.accum.class,
			Total:      float64(acc.misses),
			PerPull:    core.PerPull(float64(acc.misses), pullCount),
		})
		if len(acc.events) > 0 {
			playerEvents[name] = acc.events
		}
	}
	sortRows(rows)
	classes, roles := roleClassMaps(rows)

	return &AnalyzerResult{
		Report:        firstReportCode(snap),
		PullCount:     pullCount,
		Entries:       rows,
		PlayerClasses: classes,
		PlayerRoles:   roles,
		PlayerEvents:  playerEvents,
		FiltersEcho: map[string]any{
			"ability_id":   cfg.AbilityID,
			"mode":         cfg.Mode,
			"set_window":   window,
			"fight_filter": cfg.FightFilter,
		},
	}, nil
}
