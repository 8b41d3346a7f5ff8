package lifecycle

import (
	"errors"
	"fmt"

	"github.com/louisbranch/jinrou/internal/services/game/domain/game"
)

const (
	MinPlayers = 4
	MaxPlayers = 15
)

var (
	// ErrInvalidPlayerCount indicates a player count outside the supported range.
	ErrInvalidPlayerCount = errors.New("player count is invalid")
	// ErrInvalidComposition indicates a role multiset that cannot make a fair game.
	ErrInvalidComposition = errors.New("role composition is invalid")
)

// Composition is a role multiset.
type Composition map[game.Role]int

// Total returns the number of players the composition seats.
func (c Composition) Total() int {
	total := 0
	for _, count := range c {
		total += count
	}
	return total
}

// Validate checks the player count and that the werewolf team starts as a
// strict minority with at least one werewolf.
func (c Composition) Validate() error {
	total := c.Total()
	if total < MinPlayers || total > MaxPlayers {
		return fmt.Errorf("%w: %d players, want %d to %d", ErrInvalidPlayerCount, total, MinPlayers, MaxPlayers)
	}
	werewolfTeam := 0
	for role, count := range c {
		if !role.Valid() {
			return fmt.Errorf("%w: unknown role %q", ErrInvalidComposition, role)
		}
		if count < 0 {
			return fmt.Errorf("%w: negative %s count", ErrInvalidComposition, role)
		}
		if role.Team() == game.TeamWerewolf {
			werewolfTeam += count
		}
	}
	if c[game.RoleWerewolf] < 1 {
		return fmt.Errorf("%w: at least one werewolf is required", ErrInvalidComposition)
	}
	if werewolfTeam*2 >= total {
		return fmt.Errorf("%w: werewolf team must be a minority", ErrInvalidComposition)
	}
	return nil
}

// Roles expands the composition in the canonical role order.
func (c Composition) Roles() []game.Role {
	roles := make([]game.Role, 0, c.Total())
	for _, role := range game.Roles() {
		for range c[role] {
			roles = append(roles, role)
		}
	}
	return roles
}

// DefaultComposition returns the standard table for n players.
func DefaultComposition(n int) (Composition, error) {
	if n < MinPlayers || n > MaxPlayers {
		return nil, fmt.Errorf("%w: %d players, want %d to %d", ErrInvalidPlayerCount, n, MinPlayers, MaxPlayers)
	}
	c := Composition{
		game.RoleWerewolf: 1 + (n-MinPlayers)/4,
		game.RoleSeer:     1,
	}
	if n >= 5 {
		c[game.RolePossessed] = 1
	}
	if n >= 6 {
		c[game.RoleBodyguard] = 1
	}
	if n >= 8 {
		c[game.RoleMedium] = 1
	}
	c[game.RoleVillager] = n - c.Total()
	return c, nil
}

// Table is a requested game size. An empty Composition means the default
// table for PlayerCount.
type Table struct {
	PlayerCount int         `json:"playerCount,omitempty"`
	Composition Composition `json:"composition,omitempty"`
}

// Resolve returns the validated composition the table asks for.
func (t Table) Resolve() (Composition, error) {
	if len(t.Composition) == 0 {
		return DefaultComposition(t.PlayerCount)
	}
	if t.PlayerCount != 0 && t.PlayerCount != t.Composition.Total() {
		return nil, fmt.Errorf("%w: %d players for %d roles", ErrInvalidPlayerCount, t.PlayerCount, t.Composition.Total())
	}
	if err := t.Composition.Validate(); err != nil {
		return nil, err
	}
	return t.Composition, nil
}
