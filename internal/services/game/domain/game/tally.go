package game

import (
	"errors"
	"slices"
)

var (
	// ErrEmptyTally indicates a tally was requested over no votes.
	ErrEmptyTally = errors.New("tally requires at least one vote")
	// ErrMissingAnchor indicates the log has no status entry to anchor a period.
	ErrMissingAnchor = errors.New("log has no status anchor")
)

// Rand is the random source used for tie-breaks and role dealing.
// *math/rand/v2.Rand satisfies it.
type Rand interface {
	IntN(n int) int
}

// Tally returns the targets tied for the most votes, in ascending id order.
//
// Callers must not pass an empty vote set. No tie-break happens here.
func Tally(votes []Entry) ([]AgentID, error) {
	if len(votes) == 0 {
		return nil, ErrEmptyTally
	}
	counts := make(map[AgentID]int, len(votes))
	best := 0
	for _, vote := range votes {
		counts[vote.Target]++
		best = max(best, counts[vote.Target])
	}
	top := make([]AgentID, 0, len(counts))
	for target, count := range counts {
		if count == best {
			top = append(top, target)
		}
	}
	slices.Sort(top)
	return top, nil
}

// Shuffle permutes items in place with a Fisher-Yates pass driven by rng.
func Shuffle[T any](rng Rand, items []T) {
	for i := len(items) - 1; i > 0; i-- {
		j := rng.IntN(i + 1)
		items[i], items[j] = items[j], items[i]
	}
}
