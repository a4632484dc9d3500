package analysis

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/pullscope/pullscope/pkg/core"
)

func TestCombined_MergesHitsAndGhostsIntoFuckupRate(t *testing.T) {
	snap := twoPullSnapshot()
	snap.Events = []core.Event{
		{ReportCode: reportCode, Type: core.EventTypeDamage, AbilityID: 5, SourceID: 1, TargetID: 99, FightID: 1, TimestampMs: 1000},
		{ReportCode: reportCode, Type: core.EventTypeApplyDebuff, AbilityID: 7, TargetID: 1, FightID: 1, TimestampMs: 1500},
	}

	res, err := Combined(snap, CombinedConfig{HitAbilityID: 5, GhostAbilityID: 7, GhostMode: GhostModeAll})
	assert.NoError(t, err)

	alice := res.Entries[findRow(res.Entries, "Alice")]
	assert.Equal(t, float64(1), alice.Metrics["hits"])
	assert.Equal(t, float64(1), alice.Metrics["ghost_misses"])
	assert.Equal(t, float64(1), alice.Metrics["fuckup_rate"]) // (1+1)/2 pulls
}

func TestCombined_PlayerWithOnlyOneMetricStillMerges(t *testing.T) {
	snap := twoPullSnapshot()
	snap.Events = []core.Event{
		{ReportCode: reportCode, Type: core.EventTypeDamage, AbilityID: 5, SourceID: 1, TargetID: 99, FightID: 1, TimestampMs: 1000},
	}

	res, err := Combined(snap, CombinedConfig{HitAbilityID: 5, GhostAbilityID: 7, GhostMode: GhostModeAll})
	assert.NoError(t, err)

	alice := res.Entries[findRow(res.Entries, "Alice")]
	assert.Equal(t, float64(1), alice.Metrics["hits"])
	assert.Equal(t, float64(0), alice.Metrics["ghost_misses"])
}
