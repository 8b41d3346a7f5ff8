package game

import "strings"

// Role is the secret card dealt to an agent.
type Role string

const (
	RoleVillager  Role = "villager"
	RoleWerewolf  Role = "werewolf"
	RoleSeer      Role = "seer"
	RolePossessed Role = "possessed"
	RoleMedium    Role = "medium"
	RoleBodyguard Role = "bodyguard"
)

// Team is the winning-condition grouping of a role.
type Team string

const (
	TeamVillager Team = "villager"
	TeamWerewolf Team = "werewolf"
)

var roleOrder = []Role{
	RoleVillager,
	RoleWerewolf,
	RoleSeer,
	RolePossessed,
	RoleMedium,
	RoleBodyguard,
}

// Roles lists every known role in a stable order.
func Roles() []Role {
	return append([]Role(nil), roleOrder...)
}

// ParseRole resolves a role label, ignoring case and surrounding space.
func ParseRole(value string) (Role, bool) {
	candidate := Role(strings.ToLower(strings.TrimSpace(value)))
	if candidate.Valid() {
		return candidate, true
	}
	return "", false
}

// Valid reports whether r is a known role.
func (r Role) Valid() bool {
	for _, known := range roleOrder {
		if r == known {
			return true
		}
	}
	return false
}

// Team classifies the role for win evaluation and night channels.
//
// The possessed sides with the werewolves even though divination reports it
// as human.
func (r Role) Team() Team {
	switch r {
	case RoleWerewolf, RolePossessed:
		return TeamWerewolf
	default:
		return TeamVillager
	}
}
