package game

import (
	"slices"
	"time"
)

// Agent is a player's in-game persona.
type Agent struct {
	ID     AgentID `json:"agentId"`
	Role   Role    `json:"role"`
	Life   Life    `json:"life"`
	Name   string  `json:"name"`
	UserID string  `json:"userId"`
}

// Alive reports whether the agent is still in play.
func (a Agent) Alive() bool { return a.Life == LifeAlive }

// Game is the aggregate root of one werewolf match.
type Game struct {
	ID         string     `json:"id"`
	StartedAt  time.Time  `json:"startedAt"`
	FinishedAt *time.Time `json:"finishedAt,omitempty"`
	WasAborted bool       `json:"wasAborted,omitempty"`
	Winner     Team       `json:"winner,omitempty"`
	Agents     []Agent    `json:"agents"`
	Status     Status     `json:"status"`
	Log        Log        `json:"log"`
}

// Finished reports whether the game was decided or aborted. A finished game
// accepts no further actions.
func (g Game) Finished() bool { return g.FinishedAt != nil }

// Agent returns the agent with the given id.
func (g Game) Agent(id AgentID) (Agent, bool) {
	for _, agent := range g.Agents {
		if agent.ID == id {
			return agent, true
		}
	}
	return Agent{}, false
}

// AgentForUser returns the agent played by userID.
func (g Game) AgentForUser(userID string) (Agent, bool) {
	if userID == "" {
		return Agent{}, false
	}
	for _, agent := range g.Agents {
		if agent.UserID == userID {
			return agent, true
		}
	}
	return Agent{}, false
}

// AliveAgents returns living agents in id order.
func (g Game) AliveAgents() []Agent {
	var out []Agent
	for _, agent := range g.Agents {
		if agent.Alive() {
			out = append(out, agent)
		}
	}
	return out
}

// AliveWithRole returns living agents holding role.
func (g Game) AliveWithRole(role Role) []Agent {
	var out []Agent
	for _, agent := range g.Agents {
		if agent.Alive() && agent.Role == role {
			out = append(out, agent)
		}
	}
	return out
}

// AliveOnTeam returns living agents whose role belongs to team.
func (g Game) AliveOnTeam(team Team) []Agent {
	var out []Agent
	for _, agent := range g.Agents {
		if agent.Alive() && agent.Role.Team() == team {
			out = append(out, agent)
		}
	}
	return out
}

// Lives snapshots every agent's life in id order.
func (g Game) Lives() []Life {
	lives := make([]Life, len(g.Agents))
	for i, agent := range g.Agents {
		lives[i] = agent.Life
	}
	return lives
}

// CurrentPeriod returns the log slice of the period the status points at.
func (g Game) CurrentPeriod() []Entry {
	return g.Log.Current(g.Status)
}

// Append returns a copy of g with entry appended to the log.
func (g Game) Append(entry Entry) Game {
	g.Log = g.Log.Append(entry)
	return g
}

// Kill returns a copy of g in which agent id is dead. Killing a dead or
// unknown agent is a no-op.
func (g Game) Kill(id AgentID) Game {
	idx := slices.IndexFunc(g.Agents, func(a Agent) bool { return a.ID == id })
	if idx < 0 || !g.Agents[idx].Alive() {
		return g
	}
	g.Agents = slices.Clone(g.Agents)
	g.Agents[idx].Life = LifeDead
	return g
}

// Finish returns a copy of g marked finished at the given time. A game that
// is already finished is returned unchanged.
func (g Game) Finish(at time.Time, winner Team) Game {
	if g.Finished() {
		return g
	}
	finishedAt := at.UTC()
	g.FinishedAt = &finishedAt
	g.Winner = winner
	return g
}
