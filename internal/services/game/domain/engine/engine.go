package engine

import (
	"fmt"
	"time"

	"github.com/louisbranch/jinrou/internal/services/game/domain/game"
)

// Event names written on status entries.
const (
	EventPeriodStart = "periodStart"
	EventVoteStart   = "voteStart"
	EventVoteSettle  = "voteSettle"
)

// maxTransitions bounds one Advance pass. Real cascades stay well below it.
const maxTransitions = 10

// Env carries the impure inputs of a pass.
type Env struct {
	// Rand breaks vote ties. Seed it to make a pass reproducible.
	Rand game.Rand
	// Now stamps appended entries. Defaults to time.Now.
	Now func() time.Time
}

func (e Env) now() time.Time {
	if e.Now == nil {
		return time.Now().UTC()
	}
	return e.Now().UTC()
}

// Transition is what a checker reports when a phase boundary is crossed.
type Transition struct {
	Event string
	Next  game.Status
}

// Checker inspects the current phase and reports a transition if one is due.
type Checker struct {
	Name  string
	Check func(g game.Game, period []game.Entry) (Transition, bool, error)
}

// Handler derives entries around a transition. Before handlers see the
// ending status; after handlers see the new one.
type Handler func(g game.Game, tr Transition, env Env) (game.Game, error)

// Engine holds the checker table and the handler registry.
type Engine struct {
	checkers []Checker
	before   map[string][]Handler
	after    map[string][]Handler
}

// New returns an engine with the standard rule set.
func New() *Engine {
	e := &Engine{
		checkers: []Checker{
			{Name: "bootstrap", Check: checkBootstrap},
			{Name: "chatFinish", Check: checkChatFinish},
			{Name: "voteFinish", Check: checkVoteFinish},
			{Name: "periodFinish", Check: checkPeriodFinish},
		},
		before: map[string][]Handler{},
		after:  map[string][]Handler{},
	}
	e.Before(EventPeriodStart, resolveKill, checkWin)
	e.After(EventPeriodStart, revealDivinations, revealMedium)
	return e
}

// Before registers handlers run before event, in order.
func (e *Engine) Before(event string, handlers ...Handler) {
	e.before[event] = append(e.before[event], handlers...)
}

// After registers handlers run after event, in order.
func (e *Engine) After(event string, handlers ...Handler) {
	e.after[event] = append(e.after[event], handlers...)
}

// Checkers returns the checker table in priority order.
func (e *Engine) Checkers() []Checker {
	return append([]Checker(nil), e.checkers...)
}

// Next evaluates the checkers in order and returns the first transition due.
func (e *Engine) Next(g game.Game) (Transition, bool, error) {
	period := g.CurrentPeriod()
	for _, checker := range e.checkers {
		tr, ok, err := checker.Check(g, period)
		if err != nil {
			return Transition{}, false, fmt.Errorf("%s: %w", checker.Name, err)
		}
		if ok {
			return tr, true, nil
		}
	}
	return Transition{}, false, nil
}

// Advance applies due transitions until none is due or the game finishes.
//
// Any error is an invariant violation and is marked non-retryable; the
// caller must drop the whole update.
func (e *Engine) Advance(g game.Game, env Env) (game.Game, error) {
	if env.Rand == nil {
		return g, wrapNonRetryable(ErrRandRequired)
	}
	for fired := 0; !g.Finished(); fired++ {
		tr, ok, err := e.Next(g)
		if err != nil {
			return g, wrapNonRetryable(err)
		}
		if !ok {
			return g, nil
		}
		if fired == maxTransitions {
			return g, wrapNonRetryable(fmt.Errorf("%w: %d transitions at %s", ErrAdvanceLoop, fired, g.Status))
		}
		if g, err = e.run(e.before[tr.Event], g, tr, env); err != nil {
			return g, err
		}
		if g.Finished() {
			return g, nil
		}
		g = appendStatus(g, tr, env.now())
		if g, err = e.run(e.after[tr.Event], g, tr, env); err != nil {
			return g, err
		}
	}
	return g, nil
}

func (e *Engine) run(handlers []Handler, g game.Game, tr Transition, env Env) (game.Game, error) {
	for _, handle := range handlers {
		next, err := handle(g, tr, env)
		if err != nil {
			return g, wrapNonRetryable(fmt.Errorf("%s handler: %w", tr.Event, err))
		}
		g = next
	}
	return g, nil
}

var standard = New()

// Advance runs the standard rule set over g.
func Advance(g game.Game, env Env) (game.Game, error) {
	return standard.Advance(g, env)
}

func appendStatus(g game.Game, tr Transition, at time.Time) game.Game {
	next := tr.Next
	g.Status = next
	return g.Append(game.Entry{
		Kind:   game.EntryStatus,
		At:     at,
		Status: &next,
		Event:  tr.Event,
		Lives:  g.Lives(),
	})
}
