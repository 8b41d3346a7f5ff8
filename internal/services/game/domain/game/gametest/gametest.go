// Package gametest builds game fixtures for tests.
package gametest

import (
	"fmt"
	"time"

	"github.com/louisbranch/jinrou/internal/services/game/domain/game"
)

// Epoch is the fixed clock used by fixtures.
var Epoch = time.Date(2026, 3, 1, 20, 0, 0, 0, time.UTC)

// New returns an unstarted game with one living agent per role, in order.
// Agent n is played by user "user-n" and named "agent-n".
func New(roles ...game.Role) game.Game {
	agents := make([]game.Agent, len(roles))
	for i, role := range roles {
		id := game.AgentID(i + 1)
		agents[i] = game.Agent{
			ID:     id,
			Role:   role,
			Life:   game.LifeAlive,
			Name:   fmt.Sprintf("agent-%d", id),
			UserID: fmt.Sprintf("user-%d", id),
		}
	}
	return game.Game{
		ID:        "game-1",
		StartedAt: Epoch,
		Agents:    agents,
		Status:    game.InitialStatus(),
	}
}

// At moves g to status by appending the matching status entry.
func At(g game.Game, status game.Status) game.Game {
	g.Status = status
	return g.Append(game.Entry{
		Kind:   game.EntryStatus,
		At:     Epoch,
		Status: &status,
		Event:  "periodStart",
		Lives:  g.Lives(),
	})
}

// Status is shorthand for a status literal.
func Status(day int, period game.Period, phase game.VotePhase) game.Status {
	return game.Status{Day: day, Period: period, VotePhase: phase}
}

// Over appends an over entry for actor on channel.
func Over(g game.Game, actor game.AgentID, channel game.EntryKind) game.Game {
	return g.Append(game.Entry{Kind: game.EntryOver, At: Epoch, Actor: actor, Channel: channel})
}

// Vote appends a vote of kind from actor to target in round.
func Vote(g game.Game, kind game.EntryKind, actor, target game.AgentID, round int) game.Game {
	return g.Append(game.Entry{Kind: kind, At: Epoch, Actor: actor, Target: target, Round: round})
}

// Ability appends a divine or guard entry.
func Ability(g game.Game, kind game.EntryKind, actor, target game.AgentID) game.Game {
	return g.Append(game.Entry{Kind: kind, At: Epoch, Actor: actor, Target: target})
}

// Kinds lists the kinds of entries in order.
func Kinds(entries []game.Entry) []game.EntryKind {
	out := make([]game.EntryKind, len(entries))
	for i, entry := range entries {
		out[i] = entry.Kind
	}
	return out
}

// FixedRand always returns the same index, clamped to the range.
type FixedRand int

// IntN implements game.Rand.
func (f FixedRand) IntN(n int) int {
	if int(f) >= n {
		return n - 1
	}
	return int(f)
}
