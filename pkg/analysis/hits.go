package analysis

import "github.com/pullscope/pullscope/pkg/core"

// HitConfig configures the Hit Counter analyzer (spec.md §4.6.1).
type HitConfig struct {
	AbilityID          int
	FirstHitOnly       bool
	IgnoreAfterDeaths  *int
	IgnoreFinalSeconds *float64
	FightFilter        string
}

// Hits counts damage events for AbilityID, per source player, per pull.
func Hits(snap *core.ReportSnapshot, cfg HitConfig) (*AnalyzerResult, error) {
	fights := retainedFights(snap, cfg.FightFilter)
	fightByID := fightSet(fights)
	pullCount := len(fights)

	counts := accumulatorHits(snap, cfg, fightByID)

	rows := make([]PlayerRow, 0, len(counts))
	for name, acc := range counts {
		rows = append(rows, PlayerRow{
			PlayerName: name,
			Role:       acc.accum.role,
			Class:      acc.accum.class,
			Total:      float64(acc.hits),
			PerPull:    core.PerPull(float64(acc.hits), pullCount),
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
		FiltersEcho:   hitConfigEcho(cfg),
	}, nil
}

type hitAccum struct {
	accum *playerAccumulator
	hits  int
}

func accumulatorHits(snap *core.ReportSnapshot, cfg HitConfig, fightByID map[core.ActorKey]core.Fight) map[string]*hitAccum {
	base := accumulators(snap)
	out := make(map[string]*hitAccum, len(base))
	for name, a := range base {
		out[name] = &hitAccum{accum: a}
	}

	type pullState struct {
		deaths      int
		firstHitSeen map[int]bool // target_id -> already recorded
	}
	pullStates := make(map[core.ActorKey]*pullState)

	for _, evt := range snap.Events {
		fight, ok := fightByID[fightKey(evt.ReportCode, evt.FightID)]
		if !ok {
			continue
		}
		key := fightKey(fight.ReportCode, fight.ID)
		ps := pullStates[key]
		if ps == nil {
			ps = &pullState{firstHitSeen: make(map[int]bool)}
			pullStates[key] = ps
		}

		if evt.Type == core.EventTypeDeath {
			ps.deaths++
			continue
		}
		if evt.Type != core.EventTypeDamage || evt.AbilityID != cfg.AbilityID {
			continue
		}
		if cfg.IgnoreAfterDeaths != nil && ps.deaths > *cfg.IgnoreAfterDeaths {
			continue
		}
		if cfg.IgnoreFinalSeconds != nil {
			cutoff := fight.DurationMs() - int64(*cfg.IgnoreFinalSeconds*1000)
			if evt.OffsetFromPullMs >= cutoff {
				continue
			}
		}
		if cfg.FirstHitOnly {
			if ps.firstHitSeen[evt.TargetID] {
				continue
			}
			ps.firstHitSeen[evt.TargetID] = true
		}

		source := actorName(snap, evt.ReportCode, evt.SourceID)
		acc, ok := out[source.Name]
		if !ok {
			acc = &hitAccum{accum: newAccumulator(source)}
			out[source.Name] = acc
		}
		acc.hits++
	}
	return out
}

func firstReportCode(snap *core.ReportSnapshot) string {
	if len(snap.ReportCodes) == 0 {
		return ""
	}
	return snap.ReportCodes[0]
}

func hitConfigEcho(cfg HitConfig) map[string]any {
	return map[string]any{
		"ability_id":     cfg.AbilityID,
		"first_hit_only": cfg.FirstHitOnly,
		"fight_filter":   cfg.FightFilter,
	}
}
