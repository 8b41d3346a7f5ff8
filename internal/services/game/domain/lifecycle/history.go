package lifecycle

import (
	"errors"
	"time"

	"github.com/louisbranch/jinrou/internal/services/game/domain/game"
)

// ErrNotFinished indicates history was requested for a game still in play.
var ErrNotFinished = errors.New("game is not finished")

// GameHistory is the global record of a finished game.
type GameHistory struct {
	GameID      string    `json:"gameId"`
	FinishedAt  time.Time `json:"finishedAt"`
	PlayerCount int       `json:"playerCount"`
	Winner      game.Team `json:"winner,omitempty"`
	Aborted     bool      `json:"aborted,omitempty"`
}

// PlayerHistory is one participant's record of a finished game.
type PlayerHistory struct {
	GameID      string    `json:"gameId"`
	UserID      string    `json:"userId"`
	FinishedAt  time.Time `json:"finishedAt"`
	PlayerCount int       `json:"playerCount"`
	Role        game.Role `json:"role"`
	Winner      game.Team `json:"winner,omitempty"`
	Won         bool      `json:"won"`
	Aborted     bool      `json:"aborted,omitempty"`
}

// History builds the records written when g finishes.
func History(g game.Game) (GameHistory, []PlayerHistory, error) {
	if !g.Finished() {
		return GameHistory{}, nil, ErrNotFinished
	}
	global := GameHistory{
		GameID:      g.ID,
		FinishedAt:  *g.FinishedAt,
		PlayerCount: len(g.Agents),
		Winner:      g.Winner,
		Aborted:     g.WasAborted,
	}
	players := make([]PlayerHistory, 0, len(g.Agents))
	for _, agent := range g.Agents {
		players = append(players, PlayerHistory{
			GameID:      g.ID,
			UserID:      agent.UserID,
			FinishedAt:  global.FinishedAt,
			PlayerCount: global.PlayerCount,
			Role:        agent.Role,
			Winner:      g.Winner,
			Won:         g.Winner != "" && agent.Role.Team() == g.Winner,
			Aborted:     g.WasAborted,
		})
	}
	return global, players, nil
}

// UserIDs lists the participants of g in agent order.
func UserIDs(g game.Game) []string {
	ids := make([]string, len(g.Agents))
	for i, agent := range g.Agents {
		ids[i] = agent.UserID
	}
	return ids
}
