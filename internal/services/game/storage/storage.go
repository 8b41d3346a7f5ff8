package storage

import (
	"context"
	"time"

	apperrors "github.com/louisbranch/jinrou/internal/platform/errors"
	"github.com/louisbranch/jinrou/internal/services/game/core/filter"
	"github.com/louisbranch/jinrou/internal/services/game/domain/game"
	"github.com/louisbranch/jinrou/internal/services/game/domain/lifecycle"
)

// ErrNotFound indicates a requested persistence record is missing.
var ErrNotFound = apperrors.New(apperrors.CodeNotFound, "record not found")

// ErrConflict indicates a conditional write lost to a concurrent writer.
var ErrConflict = apperrors.New(apperrors.CodeConflict, "record changed concurrently")

// GameRecord is a stored game and the version that guards its next write.
type GameRecord struct {
	Game      game.Game
	Version   int64
	UpdatedAt time.Time
}

// Player is a waiting-pool entry. GameID is set while the player is claimed
// by a game.
type Player struct {
	UserID   string
	Name     string
	Ready    bool
	GameID   string
	JoinedAt time.Time
	Version  int64
}

// Idle reports whether the player is free to be drawn into a game.
func (p Player) Idle() bool { return p.GameID == "" }

// GameStore persists game records.
type GameStore interface {
	GetGame(ctx context.Context, id string) (GameRecord, error)
	// CreateGame inserts g and claims every player in claims at the version
	// read by the caller. Either everything is written or nothing is.
	CreateGame(ctx context.Context, g game.Game, claims []Player) (GameRecord, error)
	// SwapGame replaces the game if its stored version still equals version.
	SwapGame(ctx context.Context, g game.Game, version int64) (GameRecord, error)
	// ListUnreleasedGames lists finished games that still hold player claims.
	ListUnreleasedGames(ctx context.Context, limit int) ([]string, error)
}

// PlayerStore persists the waiting pool.
type PlayerStore interface {
	GetPlayer(ctx context.Context, userID string) (Player, error)
	// PutPlayer inserts p when p.Version is zero, otherwise replaces the
	// stored player if its version still equals p.Version.
	PutPlayer(ctx context.Context, p Player) (Player, error)
	DeletePlayer(ctx context.Context, userID string, version int64) error
	// ListReadyPlayers lists ready idle players, earliest arrival first.
	ListReadyPlayers(ctx context.Context, limit int) ([]Player, error)
	// ReleasePlayers frees every player claimed by gameID and clears their
	// ready flag. Releasing twice is harmless.
	ReleasePlayers(ctx context.Context, gameID string) (int, error)
}

// HistoryStore persists finished-game projections.
type HistoryStore interface {
	// PutHistory writes the global and per-player records once; repeated
	// writes for the same game are ignored.
	PutHistory(ctx context.Context, global lifecycle.GameHistory, players []lifecycle.PlayerHistory) error
	// ListPlayerHistory lists up to limit of a player's records matching
	// where, newest first.
	ListPlayerHistory(ctx context.Context, userID string, limit int, where filter.Condition) ([]lifecycle.PlayerHistory, error)
}

// Store is the full persistence surface of the game service.
type Store interface {
	GameStore
	PlayerStore
	HistoryStore
	Close() error
}
