package lifecycle

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/louisbranch/jinrou/internal/services/game/domain/engine"
	"github.com/louisbranch/jinrou/internal/services/game/domain/game"
)

var (
	// ErrGameIDRequired indicates a missing game id.
	ErrGameIDRequired = errors.New("game id is required")
	// ErrParticipantMismatch indicates the drawn players do not fill the composition.
	ErrParticipantMismatch = errors.New("participant count does not match composition")
	// ErrDuplicateParticipant indicates the same user was drawn twice.
	ErrDuplicateParticipant = errors.New("participant drawn twice")
	// ErrAlreadyFinished indicates an abort of a game that already ended.
	ErrAlreadyFinished = errors.New("game already finished")
)

// Participant is a drawn player, in arrival order.
type Participant struct {
	UserID string
	Name   string
}

// NewGame deals the composition's roles to participants and runs the first
// advancement pass. Agent ids follow participant order; roles follow a
// permutation drawn from env.Rand.
func NewGame(id string, participants []Participant, comp Composition, env engine.Env) (game.Game, error) {
	if strings.TrimSpace(id) == "" {
		return game.Game{}, ErrGameIDRequired
	}
	if err := comp.Validate(); err != nil {
		return game.Game{}, err
	}
	if len(participants) != comp.Total() {
		return game.Game{}, fmt.Errorf("%w: %d players for %d roles", ErrParticipantMismatch, len(participants), comp.Total())
	}
	if env.Rand == nil {
		return game.Game{}, engine.ErrRandRequired
	}

	roles := comp.Roles()
	game.Shuffle(env.Rand, roles)

	seen := make(map[string]bool, len(participants))
	agents := make([]game.Agent, len(participants))
	for i, participant := range participants {
		if seen[participant.UserID] {
			return game.Game{}, fmt.Errorf("%w: %s", ErrDuplicateParticipant, participant.UserID)
		}
		seen[participant.UserID] = true
		agents[i] = game.Agent{
			ID:     game.AgentID(i + 1),
			Role:   roles[i],
			Life:   game.LifeAlive,
			Name:   participant.Name,
			UserID: participant.UserID,
		}
	}

	startedAt := time.Now().UTC()
	if env.Now != nil {
		startedAt = env.Now().UTC()
	}
	g := game.Game{
		ID:        id,
		StartedAt: startedAt,
		Agents:    agents,
		Status:    game.InitialStatus(),
	}
	return engine.Advance(g, env)
}

// Abort ends g without a winner.
func Abort(g game.Game, now time.Time) (game.Game, error) {
	if g.Finished() {
		return g, ErrAlreadyFinished
	}
	g = g.Finish(now, "")
	g.WasAborted = true
	return g, nil
}
