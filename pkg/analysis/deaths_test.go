package analysis

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/pullscope/pullscope/pkg/core"
)

func TestDeaths_CountsPlayerDeaths(t *testing.T) {
	snap := twoPullSnapshot()
	snap.Events = []core.Event{
		{ReportCode: reportCode, Type: core.EventTypeDeath, TargetID: 1, FightID: 1, TimestampMs: 5000, AbilityName: "Shadow Bolt"},
		{ReportCode: reportCode, Type: core.EventTypeDeath, TargetID: 99, FightID: 1, TimestampMs: 5001}, // NPC death, ignored
	}

	res, err := Deaths(snap, DeathsConfig{OblivionFilter: OblivionIncludeAll})
	assert.NoError(t, err)
	assert.Equal(t, float64(1), res.Entries[findRow(res.Entries, "Alice")].Total)
}

func TestDeaths_ExcludeAllOblivion(t *testing.T) {
	snap := twoPullSnapshot()
	snap.Events = []core.Event{
		{ReportCode: reportCode, Type: core.EventTypeDeath, TargetID: 1, FightID: 1, TimestampMs: 5000, AbilityName: "Oblivion"},
		{ReportCode: reportCode, Type: core.EventTypeDeath, TargetID: 1, FightID: 1, TimestampMs: 6000, AbilityName: "Shadow Bolt"},
	}

	res, err := Deaths(snap, DeathsConfig{OblivionFilter: OblivionExcludeAll})
	assert.NoError(t, err)
	assert.Equal(t, float64(1), res.Entries[findRow(res.Entries, "Alice")].Total)
}

func TestDeaths_ExcludeWithoutRecentPrecursor(t *testing.T) {
	snap := twoPullSnapshot()
	snap.Events = []core.Event{
		// Oblivion death with a recent precursor debuff applied shortly before
		{ReportCode: reportCode, Type: core.EventTypeApplyDebuff, AbilityName: "Airborne", TargetID: 1, FightID: 1, TimestampMs: 4000},
		{ReportCode: reportCode, Type: core.EventTypeDeath, TargetID: 1, FightID: 1, TimestampMs: 5000, AbilityName: "Oblivion"},
		// Oblivion death on Bob with no precursor at all
		{ReportCode: reportCode, Type: core.EventTypeDeath, TargetID: 2, FightID: 1, TimestampMs: 5500, AbilityName: "Oblivion"},
	}

	res, err := Deaths(snap, DeathsConfig{OblivionFilter: OblivionExcludeWithoutRecent, RecentWindowMs: 8000})
	assert.NoError(t, err)
	assert.Equal(t, float64(1), res.Entries[findRow(res.Entries, "Alice")].Total)
	assert.Equal(t, float64(0), res.Entries[findRow(res.Entries, "Bob")].Total)
}
