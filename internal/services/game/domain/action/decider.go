package action

import (
	"time"

	"github.com/louisbranch/jinrou/internal/services/game/domain/game"
)

// validator turns a request from a living participant into a log entry.
type validator func(g game.Game, actor game.Agent, req Request, now time.Time) (game.Entry, error)

var validators = map[Kind]validator{
	KindTalk:       decideChat,
	KindWhisper:    decideChat,
	KindOver:       decideOver,
	KindVote:       decideVote,
	KindAttackVote: decideVote,
	KindDivine:     decideAbility,
	KindGuard:      decideAbility,
}

// Decide validates req against g and returns the entry to append.
//
// The returned error is a *Rejection for anything the caller got wrong and
// game.ErrMissingAnchor when the log cannot be read at all.
func Decide(g game.Game, caller Caller, req Request, now time.Time) (game.Entry, error) {
	validate, ok := validators[req.Kind]
	if !ok {
		return game.Entry{}, reject(CodeUnknownAction, "unknown action")
	}
	if g.Finished() {
		return game.Entry{}, reject(CodeGameFinished, "game already finished")
	}
	if _, ok := g.Log.LastStatus(); !ok {
		return game.Entry{}, game.ErrMissingAnchor
	}
	actor, err := resolveActor(g, caller, req.AsAgent)
	if err != nil {
		return game.Entry{}, err
	}
	if !actor.Alive() {
		return game.Entry{}, reject(CodeAgentDead, "already dead")
	}
	entry, err := validate(g, actor, req, now)
	if err != nil {
		return game.Entry{}, err
	}
	entry.At = now.UTC()
	return entry, nil
}

// Apply validates req and returns g with the resulting entry appended.
func Apply(g game.Game, caller Caller, req Request, now time.Time) (game.Game, error) {
	entry, err := Decide(g, caller, req, now)
	if err != nil {
		return g, err
	}
	return g.Append(entry), nil
}

func resolveActor(g game.Game, caller Caller, asAgent game.AgentID) (game.Agent, error) {
	own, isPlayer := g.AgentForUser(caller.UserID)
	if asAgent == 0 || (isPlayer && own.ID == asAgent) {
		if !isPlayer {
			return game.Agent{}, reject(CodeNotParticipant, "not a participant")
		}
		return own, nil
	}
	if !caller.Admin {
		return game.Agent{}, reject(CodeAdminOnly, "only admins may act for another agent")
	}
	agent, ok := g.Agent(asAgent)
	if !ok {
		return game.Agent{}, reject(CodeNotParticipant, "not a participant")
	}
	return agent, nil
}

// chatKind returns the chat channel open to actor right now.
func chatKind(g game.Game, actor game.Agent) (game.EntryKind, bool) {
	if g.Status.VotePhase != game.VotePhaseChat {
		return "", false
	}
	switch g.Status.Period {
	case game.PeriodDay:
		return game.EntryTalk, true
	case game.PeriodNight:
		if actor.Role.Team() == game.TeamWerewolf {
			return game.EntryWhisper, true
		}
	}
	return "", false
}

func hasOver(period []game.Entry, actor game.AgentID) bool {
	return len(game.Filter(period, func(entry game.Entry) bool {
		return entry.Kind == game.EntryOver && entry.Actor == actor
	})) > 0
}
