package server

import (
	"errors"
	"log"
	"time"

	apperrors "github.com/louisbranch/jinrou/internal/platform/errors"
	"github.com/louisbranch/jinrou/internal/platform/id"
	"github.com/louisbranch/jinrou/internal/random"
	"github.com/louisbranch/jinrou/internal/services/game/domain/action"
	"github.com/louisbranch/jinrou/internal/services/game/domain/engine"
	"github.com/louisbranch/jinrou/internal/services/game/domain/game"
	"github.com/louisbranch/jinrou/internal/services/game/domain/lifecycle"
	"github.com/louisbranch/jinrou/internal/services/game/storage"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"
)

const (
	// DefaultMaxUpdateAttempts bounds the optimistic update loop.
	DefaultMaxUpdateAttempts = 8

	reconcileBatch = 50
	tracerName     = "github.com/louisbranch/jinrou/internal/services/game/app"
)

// ErrCommitFailed indicates an update kept losing to concurrent writers.
var ErrCommitFailed = apperrors.New(apperrors.CodeCommitFailed, "could not commit the update, try again")

// Config tunes a Service. Zero values fall back to production defaults.
type Config struct {
	MaxUpdateAttempts int
	Now               func() time.Time
	// NewRand returns the source handed to one update attempt.
	NewRand func() (game.Rand, error)
	NewID   func() (string, error)
	Tracer  trace.Tracer
	Logf    func(format string, args ...any)
}

func (c Config) normalized() Config {
	if c.MaxUpdateAttempts <= 0 {
		c.MaxUpdateAttempts = DefaultMaxUpdateAttempts
	}
	if c.Now == nil {
		c.Now = time.Now
	}
	if c.NewRand == nil {
		c.NewRand = func() (game.Rand, error) { return random.New() }
	}
	if c.NewID == nil {
		c.NewID = id.NewID
	}
	if c.Tracer == nil {
		c.Tracer = otel.Tracer(tracerName)
	}
	if c.Logf == nil {
		c.Logf = log.Printf
	}
	return c
}

// Service implements the game operations over a Store.
type Service struct {
	store storage.Store
	cfg   Config
}

// NewService builds a Service over store.
func NewService(store storage.Store, cfg Config) *Service {
	return &Service{store: store, cfg: cfg.normalized()}
}

func (s *Service) now() time.Time { return s.cfg.Now().UTC() }

// env builds the impure inputs of one update attempt.
func (s *Service) env() (engine.Env, error) {
	source, err := s.cfg.NewRand()
	if err != nil {
		return engine.Env{}, apperrors.Wrap(apperrors.CodeInternal, "seed random source", err)
	}
	return engine.Env{Rand: source, Now: s.now}, nil
}

// publicError maps domain failures onto coded errors the transport layer
// understands. Unknown errors pass through and surface as internal.
func publicError(err error) error {
	if err == nil {
		return nil
	}
	if rejection, ok := action.AsRejection(err); ok {
		return apperrors.Wrap(apperrors.Code(rejection.Code), rejection.Message, err)
	}
	switch {
	case errors.Is(err, lifecycle.ErrInvalidPlayerCount):
		return apperrors.Wrap(apperrors.CodePlayerCountInvalid, err.Error(), err)
	case errors.Is(err, lifecycle.ErrInvalidComposition):
		return apperrors.Wrap(apperrors.CodeCompositionInvalid, err.Error(), err)
	case errors.Is(err, lifecycle.ErrAlreadyFinished):
		return apperrors.Wrap(apperrors.CodeGameFinished, "game already finished", err)
	case errors.Is(err, storage.ErrNotFound):
		return apperrors.Wrap(apperrors.CodeNotFound, "game not found", err)
	}
	return err
}

func viewerFor(g game.Game, caller action.Caller) game.Viewer {
	if caller.Admin {
		return game.Viewer{Omniscient: true}
	}
	agent, _ := g.AgentForUser(caller.UserID)
	return game.Viewer{Agent: agent.ID}
}
