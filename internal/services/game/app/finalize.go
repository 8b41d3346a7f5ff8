package server

import (
	"context"
	"fmt"

	apperrors "github.com/louisbranch/jinrou/internal/platform/errors"
	"github.com/louisbranch/jinrou/internal/services/game/core/filter"
	"github.com/louisbranch/jinrou/internal/services/game/domain/game"
	"github.com/louisbranch/jinrou/internal/services/game/domain/lifecycle"
	"go.opentelemetry.io/otel/attribute"
	otelcodes "go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// DefaultHistoryLimit caps history listings when the caller gives no limit.
const DefaultHistoryLimit = 20

// finalize records history for a finished game and returns its players to
// the pool. Failures are logged and left for ReconcileFinished.
func (s *Service) finalize(ctx context.Context, g game.Game) {
	if err := s.finalizeGame(ctx, g); err != nil {
		s.cfg.Logf("game %s: finalize: %v", g.ID, err)
	}
}

func (s *Service) finalizeGame(ctx context.Context, g game.Game) error {
	ctx, span := s.cfg.Tracer.Start(ctx, "game.finalize", trace.WithAttributes(attribute.String("game.id", g.ID)))
	defer span.End()

	global, players, err := lifecycle.History(g)
	if err != nil {
		span.SetStatus(otelcodes.Error, err.Error())
		return err
	}
	if err := s.store.PutHistory(ctx, global, players); err != nil {
		span.SetStatus(otelcodes.Error, err.Error())
		return fmt.Errorf("put history: %w", err)
	}
	released, err := s.store.ReleasePlayers(ctx, g.ID)
	if err != nil {
		span.SetStatus(otelcodes.Error, err.Error())
		return fmt.Errorf("release players: %w", err)
	}
	span.SetAttributes(attribute.Int("game.released", released))
	return nil
}

// ReconcileFinished finalizes finished games whose players are still
// claimed, which happens when a process stops between the finishing commit
// and the release. It returns the number of games finalized.
func (s *Service) ReconcileFinished(ctx context.Context) (int, error) {
	ids, err := s.store.ListUnreleasedGames(ctx, reconcileBatch)
	if err != nil {
		return 0, fmt.Errorf("list unreleased games: %w", err)
	}
	done := 0
	for _, id := range ids {
		record, err := s.store.GetGame(ctx, id)
		if err != nil {
			s.cfg.Logf("reconcile game %s: %v", id, err)
			continue
		}
		if err := s.finalizeGame(ctx, record.Game); err != nil {
			s.cfg.Logf("reconcile game %s: %v", id, err)
			continue
		}
		done++
	}
	return done, nil
}

// ListHistory returns the caller's finished games matching an optional
// AIP-160 filter, newest first.
func (s *Service) ListHistory(ctx context.Context, userID string, limit int, filterStr string) ([]lifecycle.PlayerHistory, error) {
	userID, err := requireUser(userID)
	if err != nil {
		return nil, err
	}
	if limit <= 0 {
		limit = DefaultHistoryLimit
	}
	if limit > 100 {
		return nil, apperrors.New(apperrors.CodeInvalidRequest, "limit must be at most 100")
	}
	where, err := filter.ParseHistoryFilter(filterStr)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.CodeInvalidRequest, fmt.Sprintf("invalid filter: %v", err), err)
	}
	return s.store.ListPlayerHistory(ctx, userID, limit, where)
}
