package core

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRoleForActor_BySpec(t *testing.T) {
	assert.Equal(t, RoleTank, RoleForActor(ActorTypePlayer, "Warrior", "Protection"))
	assert.Equal(t, RoleHealer, RoleForActor(ActorTypePlayer, "Druid", "Restoration"))
	assert.Equal(t, RoleRanged, RoleForActor(ActorTypePlayer, "Druid", "Balance"))
}

func TestRoleForActor_FallsBackToSubType(t *testing.T) {
	assert.Equal(t, RoleRanged, RoleForActor(ActorTypePlayer, "Mage", ""))
	assert.Equal(t, RoleRanged, RoleForActor(ActorTypePlayer, "Mage", "Frost"))
}

func TestRoleForActor_NPCIsAlwaysUnknown(t *testing.T) {
	assert.Equal(t, RoleUnknown, RoleForActor(ActorTypeNPC, "Warrior", "Protection"))
}

func TestRoleForActor_UnknownSubType(t *testing.T) {
	assert.Equal(t, RoleUnknown, RoleForActor(ActorTypePlayer, "Murloc", ""))
}

func TestSortRoleThenName_OrdersByRolePriorityThenName(t *testing.T) {
	assert.True(t, SortRoleThenName(RoleTank, RoleHealer, "Zzz", "Aaa"))
	assert.False(t, SortRoleThenName(RoleHealer, RoleTank, "Aaa", "Zzz"))
	assert.True(t, SortRoleThenName(RoleMelee, RoleMelee, "alice", "Bob"))
}
