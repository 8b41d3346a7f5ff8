package engine

import "github.com/louisbranch/jinrou/internal/services/game/domain/game"

// eligible returns the agents who speak and vote in the current period:
// everyone alive by day, the living werewolf team at night.
func eligible(g game.Game) []game.Agent {
	if g.Status.Period == game.PeriodNight {
		return g.AliveOnTeam(game.TeamWerewolf)
	}
	return g.AliveAgents()
}

// nextPeriod is the chat phase of the period after status.
func nextPeriod(status game.Status) game.Status {
	key := status.Key().Next()
	return game.Status{Day: key.Day, Period: key.Period, VotePhase: game.VotePhaseChat}
}

func checkBootstrap(g game.Game, _ []game.Entry) (Transition, bool, error) {
	if g.Status != game.InitialStatus() || g.Log.Len() > 0 {
		return Transition{}, false, nil
	}
	return Transition{Event: EventPeriodStart, Next: g.Status}, true, nil
}

func checkChatFinish(g game.Game, period []game.Entry) (Transition, bool, error) {
	status := g.Status
	if status.VotePhase != game.VotePhaseChat {
		return Transition{}, false, nil
	}
	speakers := eligible(g)
	lone := status.Period == game.PeriodNight && len(speakers) == 1
	if !lone && !allActed(speakers, game.Filter(period, game.OfKind(game.EntryOver))) {
		return Transition{}, false, nil
	}

	next := status
	switch {
	case status.Day == 0:
		next.VotePhase = game.VotePhaseSettled
		return Transition{Event: EventVoteSettle, Next: next}, true, nil
	case len(speakers) > 0:
		next.VotePhase = game.Round(1)
		return Transition{Event: EventVoteStart, Next: next}, true, nil
	default:
		return Transition{Event: EventPeriodStart, Next: nextPeriod(status)}, true, nil
	}
}

func checkVoteFinish(g game.Game, period []game.Entry) (Transition, bool, error) {
	status := g.Status
	if !status.VotePhase.IsRound() {
		return Transition{}, false, nil
	}
	round := status.VotePhase.Round()
	votes := roundVotes(period, status.Period.VoteKind(), round)
	if !allActed(eligible(g), votes) {
		return Transition{}, false, nil
	}

	next := status
	next.VotePhase = game.VotePhaseSettled
	if len(votes) == 0 {
		return Transition{Event: EventVoteSettle, Next: next}, true, nil
	}
	top, err := game.Tally(votes)
	if err != nil {
		return Transition{}, false, err
	}
	if len(top) > 1 && round < 2 {
		next.VotePhase = game.Round(round + 1)
		return Transition{Event: EventVoteStart, Next: next}, true, nil
	}
	return Transition{Event: EventVoteSettle, Next: next}, true, nil
}

func checkPeriodFinish(g game.Game, period []game.Entry) (Transition, bool, error) {
	status := g.Status
	if status.VotePhase != game.VotePhaseSettled {
		return Transition{}, false, nil
	}
	if status.Period == game.PeriodNight && status.Day > 0 && len(g.AliveAgents()) > 0 {
		seers := g.AliveWithRole(game.RoleSeer)
		if !allActed(seers, game.Filter(period, game.OfKind(game.EntryDivine))) {
			return Transition{}, false, nil
		}
	}
	return Transition{Event: EventPeriodStart, Next: nextPeriod(status)}, true, nil
}

// allActed reports whether every agent authored at least one of entries.
func allActed(agents []game.Agent, entries []game.Entry) bool {
	acted := make(map[game.AgentID]bool, len(entries))
	for _, entry := range entries {
		acted[entry.Actor] = true
	}
	for _, agent := range agents {
		if !acted[agent.ID] {
			return false
		}
	}
	return true
}

func roundVotes(period []game.Entry, kind game.EntryKind, round int) []game.Entry {
	return game.Filter(period, func(entry game.Entry) bool {
		return entry.Kind == kind && entry.Round == round
	})
}
