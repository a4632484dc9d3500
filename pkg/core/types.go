package core

import (
	"strconv"
	"time"
)

// EventType identifies the wire-level event kind from the Warcraft Logs
// events API. Unrecognized types are preserved as EventTypeOther with the
// raw payload kept in Event.Extra for diagnostics.
type EventType string

// Recognized event types (spec.md §3).
const (
	EventTypeDamage       EventType = "damage"
	EventTypeHeal         EventType = "heal"
	EventTypeCast         EventType = "cast"
	EventTypeApplyBuff    EventType = "applybuff"
	EventTypeApplyDebuff  EventType = "applydebuff"
	EventTypeRemoveBuff   EventType = "removebuff"
	EventTypeRemoveDebuff EventType = "removedebuff"
	EventTypeDeath        EventType = "death"
	EventTypeOther        EventType = "other"
)

// ActorType distinguishes player-controlled actors from NPCs (bosses, adds).
type ActorType string

const (
	ActorTypePlayer ActorType = "player"
	ActorTypeNPC    ActorType = "npc"
)

// Role is the combat role a player fills, derived from subType/spec via the
// static lookup table in roles.go.
type Role string

// Role constants, ordered by RolePriority for default result sorting.
const (
	RoleTank    Role = "Tank"
	RoleHealer  Role = "Healer"
	RoleMelee   Role = "Melee"
	RoleRanged  Role = "Ranged"
	RoleUnknown Role = "Unknown"
)

// RolePriority orders roles for default sorting of analyzer output, lowest
// value first (Tank, Healer, Melee, Ranged, Unknown).
var RolePriority = map[Role]int{
	RoleTank:    0,
	RoleHealer:  1,
	RoleMelee:   2,
	RoleRanged:  3,
	RoleUnknown: 4,
}

// PhaseTransition marks the start of a fight phase.
type PhaseTransition struct {
	ID      int
	StartMs int64
}

// Fight is a single pull of a boss encounter.
type Fight struct {
	ID               int
	ReportCode       string
	Name             string
	BossID           *int
	StartMs          int64
	EndMs            int64
	Kill             bool
	PhaseTransitions []PhaseTransition

	// PullIndex is 1-based, numbering fights sharing Name in ascending
	// StartMs order. Assigned by the fetcher (single report) or the merger
	// (multi-report, globally renumbered).
	PullIndex int
}

// DurationMs returns the fight's wall-clock duration.
func (f Fight) DurationMs() int64 { return f.EndMs - f.StartMs }

// Contains reports whether a timestamp falls within [StartMs, EndMs].
func (f Fight) Contains(timestampMs int64) bool {
	return timestampMs >= f.StartMs && timestampMs <= f.EndMs
}

// PhaseAt returns the phase id active at the given timestamp: the id of the
// last transition with StartMs <= timestampMs, or 1 if none apply.
func (f Fight) PhaseAt(timestampMs int64) int {
	phase := 1
	for _, t := range f.PhaseTransitions {
		if t.StartMs <= timestampMs {
			phase = t.ID
		} else {
			break
		}
	}
	return phase
}

// ActorKey uniquely identifies an actor across a (possibly merged) snapshot.
type ActorKey struct {
	ReportCode string
	ID         int
}

// Actor is a player or NPC referenced by events.
type Actor struct {
	ID         int
	ReportCode string
	Name       string
	Type       ActorType
	SubType    string
	Role       Role
}

// Event is a single normalized combat-log entry.
type Event struct {
	ReportCode  string
	Type        EventType
	TimestampMs int64
	SourceID    int
	TargetID    int
	AbilityID   int
	AbilityName string
	Amount      int64
	Mitigated   int64
	Overkill    int64
	HitType     string
	Extra       map[string]any

	// Derived during normalization (spec.md §4.3 step 5).
	FightID          int
	PullIndex        int
	PhaseID          int
	OffsetFromPullMs int64

	// Sequence preserves wire/arrival order for stable sort tie-breaks and
	// is reassigned whenever events are re-sorted (fetch merge, multi-report
	// merge).
	Sequence int
}

// ReportSnapshot is the fully materialized, immutable result of fetching
// (and normalizing) one or more reports. Once published to the cache it is
// never mutated; analyzers only ever read from it.
type ReportSnapshot struct {
	ReportCodes []string
	Fights      []Fight
	Actors      map[ActorKey]Actor
	Events      []Event
	CreatedAt   time.Time
}

// ActorOrUnknown resolves an actor reference, synthesizing an
// "Unknown-<id>" Actor entry when the id is not present in the roster —
// spec.md §3's invariant that every source/target resolves to exactly one
// Actor.
func (s *ReportSnapshot) ActorOrUnknown(reportCode string, id int) Actor {
	if s.Actors != nil {
		if a, ok := s.Actors[ActorKey{ReportCode: reportCode, ID: id}]; ok {
			return a
		}
	}
	return Actor{
		ID:         id,
		ReportCode: reportCode,
		Name:       syntheticUnknownName(id),
		Type:       ActorTypeNPC,
		Role:       RoleUnknown,
	}
}

func syntheticUnknownName(id int) string {
	return "Unknown-" + strconv.Itoa(id)
}

// RetainedPullCount returns the number of fights in the snapshot. Analyzers
// compute pull_count from the fights matching their own fight filter, which
// equals this count when no filter is set.
func (s *ReportSnapshot) RetainedPullCount() int {
	return len(s.Fights)
}

// FightByID looks up a fight by its (ReportCode, ID) pair.
func (s *ReportSnapshot) FightByID(reportCode string, id int) (Fight, bool) {
	for _, f := range s.Fights {
		if f.ReportCode == reportCode && f.ID == id {
			return f, true
		}
	}
	return Fight{}, false
}

// PerPull divides total by pullCount, returning 0 when pullCount is 0
// (spec.md §3's PlayerRow invariant).
func PerPull(total float64, pullCount int) float64 {
	if pullCount <= 0 {
		return 0
	}
	return total / float64(pullCount)
}
