package action

import (
	"strings"

	"github.com/louisbranch/jinrou/internal/services/game/domain/game"
)

// Kind names an action a player can submit.
type Kind string

const (
	KindTalk       Kind = "talk"
	KindWhisper    Kind = "whisper"
	KindOver       Kind = "over"
	KindVote       Kind = "vote"
	KindAttackVote Kind = "attackVote"
	KindDivine     Kind = "divine"
	KindGuard      Kind = "guard"
)

// Kinds lists every supported action kind.
func Kinds() []Kind {
	return []Kind{KindTalk, KindWhisper, KindOver, KindVote, KindAttackVote, KindDivine, KindGuard}
}

// ParseKind resolves a wire name to a Kind, ignoring surrounding space.
func ParseKind(value string) (Kind, bool) {
	value = strings.TrimSpace(value)
	for _, kind := range Kinds() {
		if string(kind) == value {
			return kind, true
		}
	}
	return "", false
}

// Request is one submission against a game.
type Request struct {
	Kind    Kind         `json:"kind"`
	Target  game.AgentID `json:"target,omitempty"`
	Content string       `json:"content,omitempty"`
	// AsAgent lets an admin act on behalf of an agent.
	AsAgent game.AgentID `json:"asAgent,omitempty"`
}

// Caller is the trusted identity behind a request.
type Caller struct {
	UserID string
	Admin  bool
}
