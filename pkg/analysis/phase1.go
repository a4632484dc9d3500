package analysis

import "github.com/pullscope/pullscope/pkg/core"

// Phase1Config configures the Phase-1 Mechanics analyzer (spec.md
// §4.6.7). ReverseGravityAbilityID and ExcessMassAbilityID are left as
// config rather than hardcoded names/ids — DESIGN.md's open questions note their
// exact ability ids are unconfirmed against upstream master data.
type Phase1Config struct {
	ReverseGravityAbilityID int
	ExcessMassAbilityID     int
	AvoidableAbilityID      int
	EarlyMassWindowSeconds  float64 // must be in [1,15]
	EnableOverlap           bool
	EnableEarlyMass         bool
	EnableAvoidableHits     bool
	FightFilter             string
}

func (c Phase1Config) validate() error {
	if c.EarlyMassWindowSeconds < 1 || c.EarlyMassWindowSeconds > 15 {
		return core.NewValidationError("early_mass_window_seconds", "must be within [1, 15]")
	}
	return nil
}

// Phase1Mechanics detects overlapping Reverse Gravity + Excess Mass
// debuffs, "early mass" collection, and avoidable-ability hits. Each
// enabled detection is an independent metric; fuckup_rate sums the
// enabled metrics' totals / pull_count. Double-counting across metrics
// (a single hit contributing to more than one column) is allowed and
// expected.
func Phase1Mechanics(snap *core.ReportSnapshot, cfg Phase1Config) (*AnalyzerResult, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}

	fights := retainedFights(snap, cfg.FightFilter)
	fightByID := fightSet(fights)
	pullCount := len(fights)
	windowMs := int64(cfg.EarlyMassWindowSeconds * 1000)

	base := accumulators(snap)
	type p1Accum struct {
		accum     *playerAccumulator
		overlap   int
		earlyMass int
		avoidable int
	}
	out := make(map[string]*p1Accum, len(base))
	for name, a := range base {
		out[name] = &p1Accum{accum: a}
	}
	get := func(a core.Actor) *p1Accum {
		acc, ok := out[a.Name]
		if !ok {
			acc = &p1Accum{accum: newAccumulator(a)}
			out[a.Name] = acc
		}
		return acc
	}

	// Reverse Gravity / Excess Mass state resets at every fight boundary
	// (spec.md §9): a pull's wipe never carries a dangling debuff into the
	// next attempt, so both trackers are scoped per fight key.
	type pullState struct {
		rgActive       map[string]bool  // player name -> Reverse Gravity currently applied
		lastExcessMass map[string]int64 // player name -> last Excess Mass apply timestamp
	}
	pullStates := make(map[core.ActorKey]*pullState)

	for _, evt := range snap.Events {
		key := fightKey(evt.ReportCode, evt.FightID)
		if _, ok := fightByID[key]; !ok {
			continue
		}
		ps := pullStates[key]
		if ps == nil {
			ps = &pullState{rgActive: map[string]bool{}, lastExcessMass: map[string]int64{}}
			pullStates[key] = ps
		}

		switch {
		case cfg.EnableAvoidableHits && evt.Type == core.EventTypeDamage && evt.AbilityID == cfg.AvoidableAbilityID:
			target := actorName(snap, evt.ReportCode, evt.TargetID)
			if target.Type == core.ActorTypePlayer {
				get(target).avoidable++
			}

		case evt.Type == core.EventTypeApplyDebuff && evt.AbilityID == cfg.ReverseGravityAbilityID:
			target := actorName(snap, evt.ReportCode, evt.TargetID)
			if target.Type != core.ActorTypePlayer {
				continue
			}
			ps.rgActive[target.Name] = true
			if cfg.EnableEarlyMass {
				if emTs, ok := ps.lastExcessMass[target.Name]; ok && evt.TimestampMs-emTs <= windowMs {
					get(target).earlyMass++
				}
			}

		case evt.Type == core.EventTypeRemoveDebuff && evt.AbilityID == cfg.ReverseGravityAbilityID:
			target := actorName(snap, evt.ReportCode, evt.TargetID)
			ps.rgActive[target.Name] = false

		case evt.Type == core.EventTypeApplyDebuff && evt.AbilityID == cfg.ExcessMassAbilityID:
			target := actorName(snap, evt.ReportCode, evt.TargetID)
			if target.Type != core.ActorTypePlayer {
				continue
			}
			ps.lastExcessMass[target.Name] = evt.TimestampMs
			if cfg.EnableOverlap && ps.rgActive[target.Name] {
				get(target).overlap++
			}
		}
	}

	rows := make([]PlayerRow, 0, len(out))
	for name, acc := range out {
		metrics := map[string]float64{}
		var sum float64
		if cfg.EnableOverlap {
			metrics["overlapping_debuffs"] = float64(acc.overlap)
			sum += float64(acc.overlap)
		}
		if cfg.EnableEarlyMass {
			metrics["early_mass"] = float64(acc.earlyMass)
			sum += float64(acc.earlyMass)
		}
		if cfg.EnableAvoidableHits {
			metrics["avoidable_hits"] = float64(acc.avoidable)
			sum += float64(acc.avoidable)
		}
		metrics["fuckup_rate"] = core.PerPull(sum, pullCount)
		rows = append(rows, PlayerRow{
			PlayerName: name,
			Role:       acc.accum.role,
			Class:      acc.accum.class,
			Metrics:    metrics,
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
			"early_mass_window_seconds": cfg.EarlyMassWindowSeconds,
			"fight_filter":              cfg.FightFilter,
		},
	}, nil
}
