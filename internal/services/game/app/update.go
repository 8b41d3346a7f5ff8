package server

import (
	"context"
	"errors"
	"fmt"

	apperrors "github.com/louisbranch/jinrou/internal/platform/errors"
	"github.com/louisbranch/jinrou/internal/services/game/domain/engine"
	"github.com/louisbranch/jinrou/internal/services/game/domain/game"
	"github.com/louisbranch/jinrou/internal/services/game/storage"
	"go.opentelemetry.io/otel/attribute"
	otelcodes "go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// mutation derives the next game from a fresh read. It must be pure apart
// from env: it may run once per attempt.
type mutation func(g game.Game, env engine.Env) (game.Game, error)

// atomicUpdate applies mutate to the stored game and commits it with a
// version check, recomputing from the newer record when a concurrent writer
// wins. Validation failures end the loop at once; invariant failures are
// logged and surface as internal errors.
func (s *Service) atomicUpdate(ctx context.Context, gameID string, mutate mutation) (game.Game, error) {
	var committed game.Game
	err := s.retry(ctx, "game.update", []attribute.KeyValue{attribute.String("game.id", gameID)}, func(ctx context.Context) error {
		record, err := s.store.GetGame(ctx, gameID)
		if err != nil {
			return publicError(err)
		}
		env, err := s.env()
		if err != nil {
			return err
		}
		next, err := mutate(record.Game, env)
		if err != nil {
			if engine.IsNonRetryable(err) {
				s.cfg.Logf("game %s: invariant violation: %v", gameID, err)
				return apperrors.Wrap(apperrors.CodeInternal, "advance game", err)
			}
			return publicError(err)
		}
		if _, err := s.store.SwapGame(ctx, next, record.Version); err != nil {
			return err
		}
		committed = next
		return nil
	})
	if err != nil {
		return game.Game{}, err
	}
	return committed, nil
}

// retry runs attempt until it succeeds, fails with anything but a storage
// conflict, or exhausts the configured attempts. Each attempt gets its own
// span.
func (s *Service) retry(ctx context.Context, name string, attrs []attribute.KeyValue, attempt func(ctx context.Context) error) error {
	for n := 1; n <= s.cfg.MaxUpdateAttempts; n++ {
		if err := ctx.Err(); err != nil {
			return err
		}
		attemptCtx, span := s.cfg.Tracer.Start(ctx, name,
			trace.WithAttributes(attrs...),
			trace.WithAttributes(attribute.Int("attempt", n)),
		)
		err := attempt(attemptCtx)
		switch {
		case err == nil:
			span.End()
			return nil
		case errors.Is(err, storage.ErrConflict):
			span.AddEvent("conflict")
			span.End()
			continue
		default:
			span.RecordError(err)
			span.SetStatus(otelcodes.Error, err.Error())
			span.End()
			return err
		}
	}
	s.cfg.Logf("%s: gave up after %d attempts", name, s.cfg.MaxUpdateAttempts)
	return fmt.Errorf("%s: %w", name, ErrCommitFailed)
}
