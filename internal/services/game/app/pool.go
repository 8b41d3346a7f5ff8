package server

import (
	"context"
	"errors"
	"strings"
	"unicode/utf8"

	apperrors "github.com/louisbranch/jinrou/internal/platform/errors"
	"github.com/louisbranch/jinrou/internal/services/game/storage"
	"go.opentelemetry.io/otel/attribute"
	"golang.org/x/text/unicode/norm"
)

// MaxNameRunes caps display names.
const MaxNameRunes = 32

var errNotInPool = apperrors.New(apperrors.CodeNotInPool, "not in the waiting pool")

func normalizeName(name string) (string, error) {
	name = strings.TrimSpace(norm.NFC.String(name))
	switch {
	case name == "":
		return "", apperrors.New(apperrors.CodeNameRequired, "a display name is required")
	case utf8.RuneCountInString(name) > MaxNameRunes:
		return "", apperrors.WithMetadata(apperrors.CodeInvalidRequest, "display name is too long",
			map[string]string{"max_runes": "32"})
	}
	return name, nil
}

func requireUser(userID string) (string, error) {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return "", apperrors.New(apperrors.CodeUnauthenticated, "caller identity is required")
	}
	return userID, nil
}

// EnterPool adds the caller to the waiting pool, or updates its name and
// ready flag when it is already waiting. Players held by a game cannot
// change their entry until the game releases them.
func (s *Service) EnterPool(ctx context.Context, userID, name string, ready bool) (storage.Player, error) {
	userID, err := requireUser(userID)
	if err != nil {
		return storage.Player{}, err
	}
	name, err = normalizeName(name)
	if err != nil {
		return storage.Player{}, err
	}

	var saved storage.Player
	err = s.retry(ctx, "pool.enter", []attribute.KeyValue{attribute.String("user.id", userID)}, func(ctx context.Context) error {
		current, err := s.store.GetPlayer(ctx, userID)
		switch {
		case errors.Is(err, storage.ErrNotFound):
			current = storage.Player{UserID: userID, JoinedAt: s.now()}
		case err != nil:
			return err
		case !current.Idle():
			return apperrors.WithMetadata(apperrors.CodeAlreadyInGame, "already playing a game",
				map[string]string{"game_id": current.GameID})
		}
		if ready && !current.Ready {
			// Becoming ready again queues at the back.
			current.JoinedAt = s.now()
		}
		current.Name = name
		current.Ready = ready
		saved, err = s.store.PutPlayer(ctx, current)
		return err
	})
	return saved, err
}

// LeavePool removes an idle caller from the waiting pool.
func (s *Service) LeavePool(ctx context.Context, userID string) error {
	userID, err := requireUser(userID)
	if err != nil {
		return err
	}
	return s.retry(ctx, "pool.leave", []attribute.KeyValue{attribute.String("user.id", userID)}, func(ctx context.Context) error {
		current, err := s.store.GetPlayer(ctx, userID)
		switch {
		case errors.Is(err, storage.ErrNotFound):
			return errNotInPool
		case err != nil:
			return err
		case !current.Idle():
			return apperrors.WithMetadata(apperrors.CodeAlreadyInGame, "cannot leave during a game",
				map[string]string{"game_id": current.GameID})
		}
		return s.store.DeletePlayer(ctx, userID, current.Version)
	})
}
