package action

import (
	"strings"
	"time"
	"unicode/utf8"

	"github.com/louisbranch/jinrou/internal/services/game/domain/game"
	"golang.org/x/text/unicode/norm"
)

const (
	// MaxChatPerPeriod caps how many lines one agent may say in a period.
	MaxChatPerPeriod = 10
	// MaxChatRunes caps the length of one line.
	MaxChatRunes = 500
)

func decideChat(g game.Game, actor game.Agent, req Request, _ time.Time) (game.Entry, error) {
	kind, ok := chatKind(g, actor)
	if !ok || string(kind) != string(req.Kind) {
		return game.Entry{}, reject(CodeWrongPhase, "wrong phase for this action")
	}
	period := g.CurrentPeriod()
	if hasOver(period, actor.ID) {
		return game.Entry{}, reject(CodeDuplicate, "already finished speaking this period")
	}
	spoken := game.Filter(period, func(entry game.Entry) bool {
		return entry.IsChat() && entry.Actor == actor.ID
	})
	if len(spoken) >= MaxChatPerPeriod {
		return game.Entry{}, reject(CodeChatLimit, "chat limit reached for this period")
	}
	text, err := normalizeContent(req.Content)
	if err != nil {
		return game.Entry{}, err
	}
	return game.Entry{Kind: kind, Actor: actor.ID, Text: text}, nil
}

func decideOver(g game.Game, actor game.Agent, _ Request, _ time.Time) (game.Entry, error) {
	kind, ok := chatKind(g, actor)
	if !ok {
		return game.Entry{}, reject(CodeWrongPhase, "wrong phase for this action")
	}
	if hasOver(g.CurrentPeriod(), actor.ID) {
		return game.Entry{}, reject(CodeDuplicate, "already finished speaking this period")
	}
	return game.Entry{Kind: game.EntryOver, Actor: actor.ID, Channel: kind}, nil
}

// normalizeContent returns the NFC form of content without surrounding space.
func normalizeContent(content string) (string, error) {
	text := strings.TrimSpace(norm.NFC.String(content))
	if text == "" {
		return "", reject(CodeInvalidContent, "content is required")
	}
	if utf8.RuneCountInString(text) > MaxChatRunes {
		return "", reject(CodeInvalidContent, "content is too long")
	}
	return text, nil
}
