package core

import "strings"

// roleBySubType maps a class subType (as returned by masterData.actors) to
// its default role. Specs that can fill more than one role (e.g. Druid,
// Paladin, Monk, Shaman) are resolved via roleBySpec below; this table is
// the fallback when no spec is known.
var roleBySubType = map[string]Role{
	"Warrior":     RoleMelee,
	"Paladin":     RoleMelee,
	"Hunter":      RoleRanged,
	"Rogue":       RoleMelee,
	"Priest":      RoleHealer,
	"DeathKnight": RoleMelee,
	"Shaman":      RoleHealer,
	"Mage":        RoleRanged,
	"Warlock":     RoleRanged,
	"Monk":        RoleHealer,
	"Druid":       RoleHealer,
	"DemonHunter": RoleMelee,
	"Evoker":      RoleRanged,
}

// roleBySpec overrides roleBySubType for specs whose class has no single
// default role. Keyed by "Class/Spec" exactly as reported by masterData.
var roleBySpec = map[string]Role{
	"Warrior/Protection":   RoleTank,
	"Warrior/Arms":         RoleMelee,
	"Warrior/Fury":         RoleMelee,
	"Paladin/Holy":         RoleHealer,
	"Paladin/Protection":   RoleTank,
	"Paladin/Retribution":  RoleMelee,
	"DeathKnight/Blood":    RoleTank,
	"DeathKnight/Frost":    RoleMelee,
	"DeathKnight/Unholy":   RoleMelee,
	"Monk/Brewmaster":      RoleTank,
	"Monk/Windwalker":      RoleMelee,
	"Monk/Mistweaver":      RoleHealer,
	"Druid/Guardian":       RoleTank,
	"Druid/Feral":          RoleMelee,
	"Druid/Balance":        RoleRanged,
	"Druid/Restoration":    RoleHealer,
	"DemonHunter/Vengeance": RoleTank,
	"DemonHunter/Havoc":    RoleMelee,
	"Shaman/Restoration":   RoleHealer,
	"Shaman/Elemental":     RoleRanged,
	"Shaman/Enhancement":   RoleMelee,
	"Evoker/Preservation":  RoleHealer,
	"Evoker/Devastation":   RoleRanged,
	"Evoker/Augmentation":  RoleRanged,
}

// RoleForActor derives a combat role for a player actor from its class
// (subType) and, when known, its active spec. NPCs always resolve to
// RoleUnknown — the phase-damage analyzer only dispatches by role for
// players.
func RoleForActor(actorType ActorType, subType string, spec string) Role {
	if actorType != ActorTypePlayer {
		return RoleUnknown
	}
	if spec != "" {
		if role, ok := roleBySpec[subType+"/"+spec]; ok {
			return role
		}
	}
	if role, ok := roleBySubType[subType]; ok {
		return role
	}
	return RoleUnknown
}

// SortRoleThenName is the default player-row comparator: role priority
// first (Tank, Healer, Melee, Ranged, Unknown), then name.
func SortRoleThenName(roleA, roleB Role, nameA, nameB string) bool {
	pa, pb := RolePriority[roleA], RolePriority[roleB]
	if pa != pb {
		return pa < pb
	}
	return strings.ToLower(nameA) < strings.ToLower(nameB)
}
