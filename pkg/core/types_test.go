package core

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFight_PhaseAt(t *testing.T) {
	f := Fight{
		StartMs: 1000,
		EndMs:   9000,
		PhaseTransitions: []PhaseTransition{
			{ID: 1, StartMs: 1000},
			{ID: 2, StartMs: 4000},
			{ID: 3, StartMs: 7000},
		},
	}

	assert.Equal(t, 1, f.PhaseAt(1500))
	assert.Equal(t, 2, f.PhaseAt(4000))
	assert.Equal(t, 2, f.PhaseAt(6999))
	assert.Equal(t, 3, f.PhaseAt(8000))
}

func TestFight_PhaseAt_NoTransitionsDefaultsToOne(t *testing.T) {
	f := Fight{StartMs: 0, EndMs: 1000}
	assert.Equal(t, 1, f.PhaseAt(500))
}

func TestFight_Contains(t *testing.T) {
	f := Fight{StartMs: 100, EndMs: 200}
	assert.True(t, f.Contains(100))
	assert.True(t, f.Contains(200))
	assert.False(t, f.Contains(99))
	assert.False(t, f.Contains(201))
}

func TestReportSnapshot_ActorOrUnknown(t *testing.T) {
	snap := &ReportSnapshot{
		Actors: map[ActorKey]Actor{
			{ReportCode: "ABC", ID: 1}: {ID: 1, ReportCode: "ABC", Name: "Alice", Type: ActorTypePlayer},
		},
	}

	a := snap.ActorOrUnknown("ABC", 1)
	assert.Equal(t, "Alice", a.Name)

	unknown := snap.ActorOrUnknown("ABC", 99)
	assert.Equal(t, "Unknown-99", unknown.Name)
	assert.Equal(t, ActorTypeNPC, unknown.Type)
	assert.Equal(t, RoleUnknown, unknown.Role)
}

func TestReportSnapshot_FightByID(t *testing.T) {
	snap := &ReportSnapshot{
		Fights: []Fight{
			{ID: 1, ReportCode: "ABC", Name: "Nexus"},
			{ID: 2, ReportCode: "ABC", Name: "Dimensius"},
		},
	}

	f, ok := snap.FightByID("ABC", 2)
	assert.True(t, ok)
	assert.Equal(t, "Dimensius", f.Name)

	_, ok = snap.FightByID("ABC", 99)
	assert.False(t, ok)
}

func TestPerPull_ZeroPullCount(t *testing.T) {
	assert.Equal(t, float64(0), PerPull(10, 0))
}

func TestPerPull_Divides(t *testing.T) {
	assert.Equal(t, float64(5), PerPull(10, 2))
}

func TestReportSnapshot_RetainedPullCount(t *testing.T) {
	snap := &ReportSnapshot{Fights: []Fight{{ID: 1}, {ID: 2}, {ID: 3}}}
	assert.Equal(t, 3, snap.RetainedPullCount())
}
