package game

import "time"

// Reading is what a divination or a medium learns about a target.
type Reading string

const (
	ReadingHuman    Reading = "human"
	ReadingWerewolf Reading = "werewolf"
)

// ReadingFor returns the reading a seer or medium gets for role. Only a real
// werewolf reads as one; the possessed reads human.
func ReadingFor(role Role) Reading {
	if role == RoleWerewolf {
		return ReadingWerewolf
	}
	return ReadingHuman
}

// Viewer identifies who a snapshot is rendered for.
type Viewer struct {
	// Agent is the viewer's own agent, or 0 for a non-participant.
	Agent AgentID
	// Omniscient viewers (moderators) see every entry and role.
	Omniscient bool
}

// AgentView is the public face of an agent. Role is empty when hidden.
type AgentView struct {
	ID   AgentID `json:"agentId"`
	Name string  `json:"name"`
	Life Life    `json:"life"`
	Role Role    `json:"role,omitempty"`
}

// EntryView is a log entry as shown to one viewer.
type EntryView struct {
	Entry
	Reading Reading `json:"reading,omitempty"`
}

// Snapshot is the viewer-filtered read model of a game.
type Snapshot struct {
	ID         string      `json:"id"`
	StartedAt  time.Time   `json:"startedAt"`
	FinishedAt *time.Time  `json:"finishedAt,omitempty"`
	WasAborted bool        `json:"wasAborted,omitempty"`
	Winner     Team        `json:"winner,omitempty"`
	Status     Status      `json:"status"`
	Self       AgentID     `json:"self,omitempty"`
	Agents     []AgentView `json:"agents"`
	Log        []EntryView `json:"log"`
}

// View renders g for viewer. User ids never leave the aggregate.
func (g Game) View(viewer Viewer) Snapshot {
	self, _ := g.Agent(viewer.Agent)
	revealAll := viewer.Omniscient || g.Finished()

	agents := make([]AgentView, 0, len(g.Agents))
	for _, agent := range g.Agents {
		view := AgentView{ID: agent.ID, Name: agent.Name, Life: agent.Life}
		switch {
		case revealAll, agent.ID == self.ID && self.ID != 0:
			view.Role = agent.Role
		case self.Role == RoleWerewolf && agent.Role == RoleWerewolf:
			view.Role = agent.Role
		}
		agents = append(agents, view)
	}

	entries := g.Log.Entries()
	logView := make([]EntryView, 0, len(entries))
	for _, entry := range entries {
		if !revealAll && !visibleTo(entry, self) {
			continue
		}
		view := EntryView{Entry: entry}
		if entry.Kind == EntryDivineResult || entry.Kind == EntryMediumResult {
			if target, ok := g.Agent(entry.Target); ok {
				view.Reading = ReadingFor(target.Role)
			}
		}
		logView = append(logView, view)
	}

	return Snapshot{
		ID:         g.ID,
		StartedAt:  g.StartedAt,
		FinishedAt: g.FinishedAt,
		WasAborted: g.WasAborted,
		Winner:     g.Winner,
		Status:     g.Status,
		Self:       self.ID,
		Agents:     agents,
		Log:        logView,
	}
}

func visibleTo(entry Entry, self Agent) bool {
	switch entry.Kind {
	case EntryWhisper, EntryAttackVote:
		return self.ID != 0 && self.Role.Team() == TeamWerewolf
	case EntryOver:
		if entry.Channel == EntryWhisper {
			return self.ID != 0 && self.Role.Team() == TeamWerewolf
		}
		return true
	case EntryDivine, EntryGuard, EntryDivineResult, EntryMediumResult, EntryGuardResult:
		return self.ID != 0 && entry.Actor == self.ID
	default:
		return true
	}
}
