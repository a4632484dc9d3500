package analysis

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/pullscope/pullscope/pkg/core"
)

func phaseSnapshot() *core.ReportSnapshot {
	snap := twoPullSnapshot()
	snap.Actors[core.ActorKey{ReportCode: reportCode, ID: 3}] = core.Actor{
		ID: 3, ReportCode: reportCode, Name: "Carol", Type: core.ActorTypePlayer, Role: core.RoleHealer,
	}
	return snap
}

func TestPhaseDamage_SplitsByPhaseAndRole(t *testing.T) {
	snap := phaseSnapshot()
	snap.Events = []core.Event{
		{ReportCode: reportCode, Type: core.EventTypeDamage, SourceID: 1, TargetID: 99, FightID: 1, TimestampMs: 1000, PhaseID: 1, Amount: 100},
		{ReportCode: reportCode, Type: core.EventTypeDamage, SourceID: 1, TargetID: 99, FightID: 1, TimestampMs: 5000, PhaseID: 2, Amount: 50},
		{ReportCode: reportCode, Type: core.EventTypeHeal, SourceID: 3, TargetID: 1, FightID: 1, TimestampMs: 1000, PhaseID: 1, Amount: 30},
	}

	res, err := PhaseDamage(snap, PhaseDamageConfig{PhaseProfile: "nexus", Phases: []string{"1", "2", "full"}})
	assert.NoError(t, err)

	alice := res.Entries[findRow(res.Entries, "Alice")]
	assert.Equal(t, float64(100), alice.PhaseTotals[1])
	assert.Equal(t, float64(50), alice.PhaseTotals[2])
	assert.Equal(t, float64(150), alice.PhaseTotals[-1])

	carol := res.Entries[findRow(res.Entries, "Carol")]
	assert.Equal(t, float64(30), carol.PhaseTotals[1])
	assert.Equal(t, float64(0), carol.PhaseTotals[2])

	assert.Equal(t, "Phase 1", res.PhaseLabels[1])
	assert.Equal(t, "Full Encounter", res.PhaseLabels[-1])
}

func TestPhaseDamage_RoleDeterminesDamageVsHealingMetric(t *testing.T) {
	snap := phaseSnapshot()
	snap.Events = []core.Event{
		{ReportCode: reportCode, Type: core.EventTypeDamage, SourceID: 3, TargetID: 99, FightID: 1, TimestampMs: 1000, PhaseID: 1, Amount: 999},
	}

	res, err := PhaseDamage(snap, PhaseDamageConfig{PhaseProfile: "nexus", Phases: []string{"1"}})
	assert.NoError(t, err)

	carol := res.Entries[findRow(res.Entries, "Carol")]
	assert.Equal(t, float64(0), carol.PhaseTotals[1])
}
