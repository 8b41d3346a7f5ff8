package action

import (
	"time"

	"github.com/louisbranch/jinrou/internal/services/game/domain/game"
)

func decideVote(g game.Game, actor game.Agent, req Request, _ time.Time) (game.Entry, error) {
	status := g.Status
	kind := status.Period.VoteKind()
	if !status.VotePhase.IsRound() || string(kind) != string(req.Kind) {
		return game.Entry{}, reject(CodeWrongPhase, "wrong phase for this action")
	}
	if kind == game.EntryAttackVote && actor.Role.Team() != game.TeamWerewolf {
		return game.Entry{}, reject(CodeWrongPhase, "wrong phase for this action")
	}
	target, ok := g.Agent(req.Target)
	switch {
	case !ok:
		return game.Entry{}, reject(CodeInvalidTarget, "unknown target")
	case !target.Alive():
		return game.Entry{}, reject(CodeInvalidTarget, "target is dead")
	case target.ID == actor.ID:
		return game.Entry{}, reject(CodeInvalidTarget, "cannot target yourself")
	case kind == game.EntryAttackVote && target.Role == game.RoleWerewolf:
		return game.Entry{}, reject(CodeInvalidTarget, "target is protected")
	}

	round := status.VotePhase.Round()
	cast := game.Filter(g.CurrentPeriod(), func(entry game.Entry) bool {
		return entry.Kind == kind && entry.Actor == actor.ID && entry.Round == round
	})
	if len(cast) > 0 {
		return game.Entry{}, reject(CodeDuplicate, "already voted this round")
	}
	return game.Entry{Kind: kind, Actor: actor.ID, Target: target.ID, Round: round}, nil
}
