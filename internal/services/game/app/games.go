package server

import (
	"cmp"
	"context"
	"errors"
	"slices"
	"strconv"

	apperrors "github.com/louisbranch/jinrou/internal/platform/errors"
	"github.com/louisbranch/jinrou/internal/services/game/domain/action"
	"github.com/louisbranch/jinrou/internal/services/game/domain/engine"
	"github.com/louisbranch/jinrou/internal/services/game/domain/game"
	"github.com/louisbranch/jinrou/internal/services/game/domain/lifecycle"
	"github.com/louisbranch/jinrou/internal/services/game/storage"
	"go.opentelemetry.io/otel/attribute"
)

// CreateGame draws the caller and the longest-waiting ready players into a
// new game and claims them in the same write.
func (s *Service) CreateGame(ctx context.Context, userID string, table lifecycle.Table) (game.Snapshot, error) {
	userID, err := requireUser(userID)
	if err != nil {
		return game.Snapshot{}, err
	}
	comp, err := table.Resolve()
	if err != nil {
		return game.Snapshot{}, publicError(err)
	}

	var created game.Game
	err = s.retry(ctx, "game.create", []attribute.KeyValue{
		attribute.String("user.id", userID),
		attribute.Int("game.players", comp.Total()),
	}, func(ctx context.Context) error {
		claims, err := s.drawPlayers(ctx, userID, comp.Total())
		if err != nil {
			return err
		}
		gameID, err := s.cfg.NewID()
		if err != nil {
			return apperrors.Wrap(apperrors.CodeInternal, "generate game id", err)
		}
		env, err := s.env()
		if err != nil {
			return err
		}
		participants := make([]lifecycle.Participant, len(claims))
		for i, claim := range claims {
			participants[i] = lifecycle.Participant{UserID: claim.UserID, Name: claim.Name}
		}
		g, err := lifecycle.NewGame(gameID, participants, comp, env)
		if err != nil {
			if engine.IsNonRetryable(err) {
				s.cfg.Logf("game %s: invariant violation at creation: %v", gameID, err)
				return apperrors.Wrap(apperrors.CodeInternal, "create game", err)
			}
			return publicError(err)
		}
		if _, err := s.store.CreateGame(ctx, g, claims); err != nil {
			return err
		}
		created = g
		return nil
	})
	if err != nil {
		return game.Snapshot{}, err
	}
	s.cfg.Logf("game %s created with %d players", created.ID, len(created.Agents))
	return created.View(viewerFor(created, action.Caller{UserID: userID})), nil
}

// drawPlayers returns the caller plus the n-1 longest-waiting ready players,
// in arrival order.
func (s *Service) drawPlayers(ctx context.Context, userID string, n int) ([]storage.Player, error) {
	caller, err := s.store.GetPlayer(ctx, userID)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, errNotInPool
	}
	if err != nil {
		return nil, err
	}
	if !caller.Idle() {
		return nil, apperrors.WithMetadata(apperrors.CodeAlreadyInGame, "already playing a game",
			map[string]string{"game_id": caller.GameID})
	}

	ready, err := s.store.ListReadyPlayers(ctx, n)
	if err != nil {
		return nil, err
	}
	drawn := []storage.Player{caller}
	for _, player := range ready {
		if len(drawn) == n {
			break
		}
		if player.UserID != caller.UserID {
			drawn = append(drawn, player)
		}
	}
	if len(drawn) < n {
		return nil, apperrors.WithMetadata(apperrors.CodeNotEnoughPlayers, "not enough ready players",
			map[string]string{"need": strconv.Itoa(n), "have": strconv.Itoa(len(drawn))})
	}
	slices.SortFunc(drawn, func(a, b storage.Player) int {
		return cmp.Or(a.JoinedAt.Compare(b.JoinedAt), cmp.Compare(a.UserID, b.UserID))
	})
	return drawn, nil
}

// Submit validates one action, appends it with every automatic consequence,
// and commits the result. A game finished by this action is finalized
// before Submit returns.
func (s *Service) Submit(ctx context.Context, caller action.Caller, gameID string, req action.Request) (game.Snapshot, error) {
	if !caller.Admin {
		if _, err := requireUser(caller.UserID); err != nil {
			return game.Snapshot{}, err
		}
	}
	g, err := s.atomicUpdate(ctx, gameID, func(g game.Game, env engine.Env) (game.Game, error) {
		next, err := action.Apply(g, caller, req, env.Now())
		if err != nil {
			return g, err
		}
		return engine.Advance(next, env)
	})
	if err != nil {
		return game.Snapshot{}, err
	}
	if g.Finished() {
		s.finalize(ctx, g)
	}
	return g.View(viewerFor(g, caller)), nil
}

// AbortGame ends a running game without a winner.
func (s *Service) AbortGame(ctx context.Context, caller action.Caller, gameID string) (game.Snapshot, error) {
	if !caller.Admin {
		return game.Snapshot{}, apperrors.New(apperrors.CodeAdminOnly, "only an admin can abort a game")
	}
	g, err := s.atomicUpdate(ctx, gameID, func(g game.Game, env engine.Env) (game.Game, error) {
		return lifecycle.Abort(g, env.Now())
	})
	if err != nil {
		return game.Snapshot{}, err
	}
	s.cfg.Logf("game %s aborted by %s", g.ID, caller.UserID)
	s.finalize(ctx, g)
	return g.View(viewerFor(g, caller)), nil
}

// GetGame returns the game as the caller may see it. Callers outside the
// game get the public view.
func (s *Service) GetGame(ctx context.Context, caller action.Caller, gameID string) (game.Snapshot, error) {
	record, err := s.store.GetGame(ctx, gameID)
	if err != nil {
		return game.Snapshot{}, publicError(err)
	}
	return record.Game.View(viewerFor(record.Game, caller)), nil
}
