package game

import (
	"encoding/json"
	"fmt"
	"strconv"
)

// Period is the day or night half of a game day.
type Period string

const (
	PeriodDay   Period = "day"
	PeriodNight Period = "night"
)

// VoteKind is the vote entry kind cast during the period.
func (p Period) VoteKind() EntryKind {
	if p == PeriodNight {
		return EntryAttackVote
	}
	return EntryVote
}

// KillKind is the entry kind written when the period's vote resolves.
func (p Period) KillKind() EntryKind {
	if p == PeriodNight {
		return EntryAttack
	}
	return EntryExecute
}

// VotePhase is the sub-state inside a period: free discussion, a numbered
// voting round, or settled.
//
// The zero value is the chat phase. Positive values are round numbers.
type VotePhase int

const (
	VotePhaseChat    VotePhase = 0
	VotePhaseSettled VotePhase = -1
)

// Round returns the vote phase for voting round n (n >= 1).
func Round(n int) VotePhase {
	if n < 1 {
		n = 1
	}
	return VotePhase(n)
}

// IsRound reports whether v is a numbered voting round.
func (v VotePhase) IsRound() bool { return v > 0 }

// Round returns the round number, or 0 outside of voting.
func (v VotePhase) Round() int {
	if v.IsRound() {
		return int(v)
	}
	return 0
}

func (v VotePhase) String() string {
	switch {
	case v == VotePhaseChat:
		return "chat"
	case v == VotePhaseSettled:
		return "settled"
	default:
		return strconv.Itoa(int(v))
	}
}

// MarshalJSON encodes chat and settled by name and rounds as numbers.
func (v VotePhase) MarshalJSON() ([]byte, error) {
	if v.IsRound() {
		return []byte(strconv.Itoa(int(v))), nil
	}
	return json.Marshal(v.String())
}

// UnmarshalJSON accepts the encodings produced by MarshalJSON.
func (v *VotePhase) UnmarshalJSON(data []byte) error {
	var name string
	if err := json.Unmarshal(data, &name); err == nil {
		switch name {
		case "chat":
			*v = VotePhaseChat
		case "settled":
			*v = VotePhaseSettled
		default:
			return fmt.Errorf("unknown vote phase %q", name)
		}
		return nil
	}
	var round int
	if err := json.Unmarshal(data, &round); err != nil {
		return fmt.Errorf("decode vote phase: %w", err)
	}
	if round < 1 {
		return fmt.Errorf("vote round must be positive, got %d", round)
	}
	*v = VotePhase(round)
	return nil
}

// Status is the phase cursor of a game.
type Status struct {
	Day       int       `json:"day"`
	Period    Period    `json:"period"`
	VotePhase VotePhase `json:"votePhase"`
}

// InitialStatus is the status a freshly created game starts in.
func InitialStatus() Status {
	return Status{Day: 0, Period: PeriodNight, VotePhase: VotePhaseChat}
}

// Key identifies the period the status belongs to.
func (s Status) Key() PeriodKey {
	return PeriodKey{Day: s.Day, Period: s.Period}
}

func (s Status) String() string {
	return fmt.Sprintf("day %d %s %s", s.Day, s.Period, s.VotePhase)
}

// PeriodKey addresses one (day, period) slice of the log.
type PeriodKey struct {
	Day    int
	Period Period
}

// Previous returns the period immediately before k.
func (k PeriodKey) Previous() PeriodKey {
	if k.Period == PeriodNight {
		return PeriodKey{Day: k.Day, Period: PeriodDay}
	}
	return PeriodKey{Day: k.Day - 1, Period: PeriodNight}
}

// Next returns the period immediately after k.
func (k PeriodKey) Next() PeriodKey {
	if k.Period == PeriodDay {
		return PeriodKey{Day: k.Day, Period: PeriodNight}
	}
	return PeriodKey{Day: k.Day + 1, Period: PeriodDay}
}
