package game

import "time"

// AgentID is the 1-based display position of an agent within a game.
type AgentID int

// Nobody is the target of a kill that did not land.
const Nobody AgentID = 0

// EntryKind tags the variant carried by a log entry.
type EntryKind string

const (
	EntryStatus       EntryKind = "status"
	EntryTalk         EntryKind = "talk"
	EntryWhisper      EntryKind = "whisper"
	EntryOver         EntryKind = "over"
	EntryVote         EntryKind = "vote"
	EntryAttackVote   EntryKind = "attackVote"
	EntryDivine       EntryKind = "divine"
	EntryGuard        EntryKind = "guard"
	EntryDivineResult EntryKind = "divineResult"
	EntryMediumResult EntryKind = "mediumResult"
	EntryGuardResult  EntryKind = "guardResult"
	EntryExecute      EntryKind = "execute"
	EntryAttack       EntryKind = "attack"
	EntryResult       EntryKind = "result"
)

// Life is the one-way alive/dead state of an agent.
type Life string

const (
	LifeAlive Life = "alive"
	LifeDead  Life = "dead"
)

// Survivors counts living agents per team when a game is decided.
type Survivors struct {
	Villager int `json:"villager"`
	Werewolf int `json:"werewolf"`
}

// Entry is one record of the game log.
//
// Only the fields relevant to Kind are set:
//   - status: Status, Event, Lives
//   - talk, whisper: Actor, Text
//   - over: Actor, Channel
//   - vote, attackVote: Actor, Target, Round
//   - divine, guard, divineResult, mediumResult, guardResult: Actor, Target
//   - execute, attack: Target (Nobody when prevented), IntendedTarget
//   - result: Winner, Survivors
type Entry struct {
	ID             int64      `json:"id"`
	Kind           EntryKind  `json:"kind"`
	At             time.Time  `json:"at"`
	Status         *Status    `json:"status,omitempty"`
	Event          string     `json:"event,omitempty"`
	Lives          []Life     `json:"lives,omitempty"`
	Actor          AgentID    `json:"actor,omitempty"`
	Target         AgentID    `json:"target,omitempty"`
	IntendedTarget AgentID    `json:"intendedTarget,omitempty"`
	Round          int        `json:"round,omitempty"`
	Channel        EntryKind  `json:"channel,omitempty"`
	Text           string     `json:"text,omitempty"`
	Winner         Team       `json:"winner,omitempty"`
	Survivors      *Survivors `json:"survivors,omitempty"`
}

// IsChat reports whether the entry is a spoken line on either channel.
func (e Entry) IsChat() bool {
	return e.Kind == EntryTalk || e.Kind == EntryWhisper
}

// IsVote reports whether the entry is a day or night vote.
func (e Entry) IsVote() bool {
	return e.Kind == EntryVote || e.Kind == EntryAttackVote
}
