package action

import (
	"time"

	"github.com/louisbranch/jinrou/internal/services/game/domain/game"
)

// abilityRoles maps each night ability to the role that holds it.
var abilityRoles = map[Kind]game.Role{
	KindDivine: game.RoleSeer,
	KindGuard:  game.RoleBodyguard,
}

func decideAbility(g game.Game, actor game.Agent, req Request, _ time.Time) (game.Entry, error) {
	if g.Status.Period != game.PeriodNight {
		return game.Entry{}, reject(CodeWrongPhase, "wrong phase for this action")
	}
	if req.Kind == KindGuard && g.Status.Day == 0 {
		return game.Entry{}, reject(CodeWrongPhase, "wrong phase for this action")
	}
	if actor.Role != abilityRoles[req.Kind] {
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
	}

	kind := game.EntryKind(req.Kind)
	acted := game.Filter(g.CurrentPeriod(), func(entry game.Entry) bool {
		return entry.Kind == kind && entry.Actor == actor.ID
	})
	if len(acted) > 0 {
		return game.Entry{}, reject(CodeDuplicate, "already acted this period")
	}
	return game.Entry{Kind: kind, Actor: actor.ID, Target: target.ID}, nil
}
