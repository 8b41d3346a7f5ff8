package engine

import "github.com/louisbranch/jinrou/internal/services/game/domain/game"

// resolveKill executes or attacks the top-voted target of the ending period.
// Ties are broken with env.Rand. A guarded night target survives.
func resolveKill(g game.Game, _ Transition, env Env) (game.Game, error) {
	if _, ok := g.Log.LastStatus(); !ok {
		return g, nil
	}
	period := g.CurrentPeriod()
	voteKind := g.Status.Period.VoteKind()
	finalRound := 0
	for _, entry := range game.Filter(period, game.OfKind(voteKind)) {
		finalRound = max(finalRound, entry.Round)
	}
	votes := roundVotes(period, voteKind, finalRound)
	if len(votes) == 0 {
		return g, nil
	}
	top, err := game.Tally(votes)
	if err != nil {
		return g, err
	}
	target := top[env.Rand.IntN(len(top))]
	at := env.now()
	killKind := g.Status.Period.KillKind()

	if g.Status.Period == game.PeriodNight {
		guards := game.Filter(period, func(entry game.Entry) bool {
			return entry.Kind == game.EntryGuard && entry.Target == target
		})
		if len(guards) > 0 {
			for _, guard := range guards {
				g = g.Append(game.Entry{Kind: game.EntryGuardResult, At: at, Actor: guard.Actor, Target: target})
			}
			return g.Append(game.Entry{Kind: killKind, At: at, Target: game.Nobody, IntendedTarget: target}), nil
		}
	}
	g = g.Append(game.Entry{Kind: killKind, At: at, Target: target})
	return g.Kill(target), nil
}

// checkWin declares a winner when a night ends with no werewolves alive or
// with the werewolf team matching the rest of the village.
func checkWin(g game.Game, _ Transition, env Env) (game.Game, error) {
	if _, ok := g.Log.LastStatus(); !ok || g.Status.Period != game.PeriodNight {
		return g, nil
	}
	survivors := game.Survivors{
		Villager: len(g.AliveOnTeam(game.TeamVillager)),
		Werewolf: len(g.AliveOnTeam(game.TeamWerewolf)),
	}
	var winner game.Team
	switch {
	case survivors.Werewolf == 0:
		winner = game.TeamVillager
	case survivors.Werewolf >= survivors.Villager:
		winner = game.TeamWerewolf
	default:
		return g, nil
	}
	at := env.now()
	g = g.Append(game.Entry{Kind: game.EntryResult, At: at, Winner: winner, Survivors: &survivors})
	return g.Finish(at, winner), nil
}

// revealDivinations answers last night's divinations at dawn. Results of
// diviners who died overnight are dropped.
func revealDivinations(g game.Game, tr Transition, env Env) (game.Game, error) {
	if tr.Next.Period != game.PeriodDay {
		return g, nil
	}
	at := env.now()
	for _, divine := range game.Filter(g.Log.Previous(g.Status), game.OfKind(game.EntryDivine)) {
		diviner, ok := g.Agent(divine.Actor)
		if !ok || !diviner.Alive() {
			continue
		}
		g = g.Append(game.Entry{Kind: game.EntryDivineResult, At: at, Actor: divine.Actor, Target: divine.Target})
	}
	return g, nil
}

// revealMedium tells every living medium about the previous period's
// execution.
func revealMedium(g game.Game, tr Transition, env Env) (game.Game, error) {
	if tr.Next.Day < 1 {
		return g, nil
	}
	executions := game.Filter(g.Log.Previous(g.Status), func(entry game.Entry) bool {
		return entry.Kind == game.EntryExecute && entry.Target != game.Nobody
	})
	if len(executions) == 0 {
		return g, nil
	}
	at := env.now()
	for _, execution := range executions {
		for _, medium := range g.AliveWithRole(game.RoleMedium) {
			g = g.Append(game.Entry{Kind: game.EntryMediumResult, At: at, Actor: medium.ID, Target: execution.Target})
		}
	}
	return g, nil
}
