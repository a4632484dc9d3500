package analysis

import "github.com/pullscope/pullscope/pkg/core"

const firstAddSetWindowMs = 5000
const firstAddSetSize = 6

// AddDamageConfig configures the Add Damage analyzer (spec.md §4.6.5).
type AddDamageConfig struct {
	AddName           string
	IgnoreFirstAddSet bool
	FightFilter       string
}

// AddDamage sums each player's damage done to add actors named AddName.
// pull_count divides by every retained pull regardless of whether an add
// spawned in it — the source-ambiguous default recorded among DESIGN.md's
// open-question decisions.
func AddDamage(snap *core.ReportSnapshot, cfg AddDamageConfig) (*AnalyzerResult, error) {
	fights := retainedFights(snap, cfg.FightFilter)
	fightByID := fightSet(fights)
	pullCount := len(fights)

	firstSetTargets := map[core.ActorKey]map[int]bool{} // fight key -> target_id -> in first set
	if cfg.IgnoreFirstAddSet {
		firstSetTargets = computeFirstAddSets(snap, cfg.AddName, fightByID)
	}

	base := accumulators(snap)
	type addAccum struct {
		accum *playerAccumulator
		total float64
	}
	out := make(map[string]*addAccum, len(base))
	for name, a := range base {
		out[name] = &addAccum{accum: a}
	}

	for _, evt := range snap.Events {
		if evt.Type != core.EventTypeDamage {
			continue
		}
		if _, ok := fightByID[fightKey(evt.ReportCode, evt.FightID)]; !ok {
			continue
		}
		target := actorName(snap, evt.ReportCode, evt.TargetID)
		if target.Name != cfg.AddName {
			continue
		}
		if cfg.IgnoreFirstAddSet && firstSetTargets[fightKey(evt.ReportCode, evt.FightID)][evt.TargetID] {
			continue
		}

		source := actorName(snap, evt.ReportCode, evt.SourceID)
		if source.Type != core.ActorTypePlayer {
			continue
		}
		acc, ok := out[source.Name]
		if !ok {
			acc = &addAccum{accum: newAccumulator(source)}
			out[source.Name] = acc
		}
		acc.total += float64(evt.Amount)
	}

	rows := make([]PlayerRow, 0, len(out))
	for name, acc := range out {
		rows = append(rows, PlayerRow{
			PlayerName: name,
			Role:       acc.accum.role,
			Class:      acc.accum.class,
			Total:      acc.total,
			PerPull:    core.PerPull(acc.total, pullCount),
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
			"add_name":             cfg.AddName,
			"ignore_first_add_set": cfg.IgnoreFirstAddSet,
			"fight_filter":         cfg.FightFilter,
		},
	}, nil
}

// computeFirstAddSets finds, per fight, the first six distinct target ids
// named addName to appear within the first 5s of the pull.
func computeFirstAddSets(snap *core.ReportSnapshot, addName string, fightByID map[core.ActorKey]core.Fight) map[core.ActorKey]map[int]bool {
	type sighting struct {
		targetID  int
		offsetMs  int64
		timestamp int64
	}
	firstSeen := map[core.ActorKey]map[int]int64{} // fight key -> target_id -> earliest timestamp

	for _, evt := range snap.Events {
		key := fightKey(evt.ReportCode, evt.FightID)
		if _, ok := fightByID[key]; !ok {
			continue
		}
		if evt.OffsetFromPullMs >= firstAddSetWindowMs {
			continue
		}
		target := actorName(snap, evt.ReportCode, evt.TargetID)
		if target.Name != addName {
			continue
		}
		byFight, ok := firstSeen[key]
		if !ok {
			byFight = map[int]int64{}
			firstSeen[key] = byFight
		}
		if existing, ok := byFight[evt.TargetID]; !ok || evt.TimestampMs < existing {
			byFight[evt.TargetID] = evt.TimestampMs
		}
	}

	result := make(map[core.ActorKey]map[int]bool, len(firstSeen))
	for key, byFight := range firstSeen {
		sightings := make([]sighting, 0, len(byFight))
		for targetID, ts := range byFight {
			sightings = append(sightings, sighting{targetID: targetID, timestamp: ts})
		}
		// Sort by first-appearance timestamp (ties by target id) to pick the
		// earliest six.
		for i := 1; i < len(sightings); i++ {
			for j := i; j > 0 && (sightings[j].timestamp < sightings[j-1].timestamp ||
				(sightings[j].timestamp == sightings[j-1].timestamp && sightings[j].targetID < sightings[j-1].targetID)); j-- {
				sightings[j], sightings[j-1] = sightings[j-1], sightings[j]
			}
		}
		set := map[int]bool{}
		for i := 0; i < len(sightings) && i < firstAddSetSize; i++ {
			set[sightings[i].targetID] = true
		}
		result[key] = set
	}
	return result
}
