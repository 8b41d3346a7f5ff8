// Package memory provides an in-process game store for tests and
// single-node development.
package memory

import (
	"cmp"
	"context"
	"fmt"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/louisbranch/jinrou/internal/services/game/core/filter"
	"github.com/louisbranch/jinrou/internal/services/game/domain/game"
	"github.com/louisbranch/jinrou/internal/services/game/domain/lifecycle"
	"github.com/louisbranch/jinrou/internal/services/game/storage"
)

type historyKey struct {
	gameID string
	userID string
}

// Store keeps every record in maps guarded by one mutex.
type Store struct {
	mu      sync.Mutex
	now     func() time.Time
	games   map[string]storage.GameRecord
	players map[string]storage.Player
	global  map[string]lifecycle.GameHistory
	history map[historyKey]lifecycle.PlayerHistory
}

// New returns an empty store.
func New() *Store {
	return &Store{
		now:     time.Now,
		games:   make(map[string]storage.GameRecord),
		players: make(map[string]storage.Player),
		global:  make(map[string]lifecycle.GameHistory),
		history: make(map[historyKey]lifecycle.PlayerHistory),
	}
}

// Close is a no-op.
func (s *Store) Close() error { return nil }

func (s *Store) lock(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s == nil || s.games == nil {
		return fmt.Errorf("storage is not configured")
	}
	s.mu.Lock()
	return nil
}

// GetGame returns the stored record for id.
func (s *Store) GetGame(ctx context.Context, id string) (storage.GameRecord, error) {
	if err := s.lock(ctx); err != nil {
		return storage.GameRecord{}, err
	}
	defer s.mu.Unlock()

	record, ok := s.games[strings.TrimSpace(id)]
	if !ok {
		return storage.GameRecord{}, storage.ErrNotFound
	}
	return record, nil
}

// CreateGame stores g at version 1 and claims every player in claims.
func (s *Store) CreateGame(ctx context.Context, g game.Game, claims []storage.Player) (storage.GameRecord, error) {
	if strings.TrimSpace(g.ID) == "" {
		return storage.GameRecord{}, fmt.Errorf("game id is required")
	}
	if err := s.lock(ctx); err != nil {
		return storage.GameRecord{}, err
	}
	defer s.mu.Unlock()

	if _, ok := s.games[g.ID]; ok {
		return storage.GameRecord{}, storage.ErrConflict
	}
	for _, claim := range claims {
		current, ok := s.players[claim.UserID]
		if !ok || current.Version != claim.Version || !current.Idle() {
			return storage.GameRecord{}, storage.ErrConflict
		}
	}
	for _, claim := range claims {
		player := s.players[claim.UserID]
		player.GameID = g.ID
		player.Version++
		s.players[claim.UserID] = player
	}
	record := storage.GameRecord{Game: g, Version: 1, UpdatedAt: s.now().UTC()}
	s.games[g.ID] = record
	return record, nil
}

// SwapGame replaces the game stored at version.
func (s *Store) SwapGame(ctx context.Context, g game.Game, version int64) (storage.GameRecord, error) {
	if err := s.lock(ctx); err != nil {
		return storage.GameRecord{}, err
	}
	defer s.mu.Unlock()

	current, ok := s.games[g.ID]
	if !ok {
		return storage.GameRecord{}, storage.ErrNotFound
	}
	if current.Version != version {
		return storage.GameRecord{}, storage.ErrConflict
	}
	record := storage.GameRecord{Game: g, Version: version + 1, UpdatedAt: s.now().UTC()}
	s.games[g.ID] = record
	return record, nil
}

// ListUnreleasedGames lists finished games still holding claims, oldest
// finish first.
func (s *Store) ListUnreleasedGames(ctx context.Context, limit int) ([]string, error) {
	if limit <= 0 {
		return nil, fmt.Errorf("limit must be greater than zero")
	}
	if err := s.lock(ctx); err != nil {
		return nil, err
	}
	defer s.mu.Unlock()

	claimed := make(map[string]bool)
	for _, player := range s.players {
		if !player.Idle() {
			claimed[player.GameID] = true
		}
	}
	var finished []game.Game
	for id := range claimed {
		record, ok := s.games[id]
		if ok && record.Game.Finished() {
			finished = append(finished, record.Game)
		}
	}
	slices.SortFunc(finished, func(a, b game.Game) int {
		return cmp.Or(a.FinishedAt.Compare(*b.FinishedAt), cmp.Compare(a.ID, b.ID))
	})
	ids := make([]string, 0, min(limit, len(finished)))
	for _, g := range finished[:min(limit, len(finished))] {
		ids = append(ids, g.ID)
	}
	return ids, nil
}

// GetPlayer returns the pool entry for userID.
func (s *Store) GetPlayer(ctx context.Context, userID string) (storage.Player, error) {
	if err := s.lock(ctx); err != nil {
		return storage.Player{}, err
	}
	defer s.mu.Unlock()

	player, ok := s.players[strings.TrimSpace(userID)]
	if !ok {
		return storage.Player{}, storage.ErrNotFound
	}
	return player, nil
}

// PutPlayer inserts or conditionally replaces a pool entry.
func (s *Store) PutPlayer(ctx context.Context, p storage.Player) (storage.Player, error) {
	p.UserID = strings.TrimSpace(p.UserID)
	if p.UserID == "" {
		return storage.Player{}, fmt.Errorf("user id is required")
	}
	if err := s.lock(ctx); err != nil {
		return storage.Player{}, err
	}
	defer s.mu.Unlock()

	current, ok := s.players[p.UserID]
	switch {
	case p.Version == 0 && ok:
		return storage.Player{}, storage.ErrConflict
	case p.Version != 0 && (!ok || current.Version != p.Version):
		return storage.Player{}, storage.ErrConflict
	}
	if p.JoinedAt.IsZero() {
		p.JoinedAt = s.now()
	}
	p.JoinedAt = p.JoinedAt.UTC().Truncate(time.Millisecond)
	p.Version++
	s.players[p.UserID] = p
	return p, nil
}

// DeletePlayer removes the pool entry stored at version.
func (s *Store) DeletePlayer(ctx context.Context, userID string, version int64) error {
	if err := s.lock(ctx); err != nil {
		return err
	}
	defer s.mu.Unlock()

	userID = strings.TrimSpace(userID)
	current, ok := s.players[userID]
	if !ok || current.Version != version {
		return storage.ErrConflict
	}
	delete(s.players, userID)
	return nil
}

// ListReadyPlayers lists ready idle players, earliest arrival first.
func (s *Store) ListReadyPlayers(ctx context.Context, limit int) ([]storage.Player, error) {
	if limit <= 0 {
		return nil, fmt.Errorf("limit must be greater than zero")
	}
	if err := s.lock(ctx); err != nil {
		return nil, err
	}
	defer s.mu.Unlock()

	var ready []storage.Player
	for _, player := range s.players {
		if player.Ready && player.Idle() {
			ready = append(ready, player)
		}
	}
	slices.SortFunc(ready, func(a, b storage.Player) int {
		return cmp.Or(a.JoinedAt.Compare(b.JoinedAt), cmp.Compare(a.UserID, b.UserID))
	})
	return ready[:min(limit, len(ready))], nil
}

// ReleasePlayers frees every player claimed by gameID.
func (s *Store) ReleasePlayers(ctx context.Context, gameID string) (int, error) {
	gameID = strings.TrimSpace(gameID)
	if gameID == "" {
		return 0, fmt.Errorf("game id is required")
	}
	if err := s.lock(ctx); err != nil {
		return 0, err
	}
	defer s.mu.Unlock()

	released := 0
	for id, player := range s.players {
		if player.GameID != gameID {
			continue
		}
		player.GameID = ""
		player.Ready = false
		player.Version++
		s.players[id] = player
		released++
	}
	return released, nil
}

// PutHistory records a finished game once.
func (s *Store) PutHistory(ctx context.Context, global lifecycle.GameHistory, players []lifecycle.PlayerHistory) error {
	if strings.TrimSpace(global.GameID) == "" {
		return fmt.Errorf("game id is required")
	}
	if err := s.lock(ctx); err != nil {
		return err
	}
	defer s.mu.Unlock()

	if _, ok := s.global[global.GameID]; !ok {
		s.global[global.GameID] = global
	}
	for _, player := range players {
		key := historyKey{gameID: player.GameID, userID: player.UserID}
		if _, ok := s.history[key]; !ok {
			s.history[key] = player
		}
	}
	return nil
}

// ListPlayerHistory lists a player's finished games matching where, newest
// first.
func (s *Store) ListPlayerHistory(ctx context.Context, userID string, limit int, where filter.Condition) ([]lifecycle.PlayerHistory, error) {
	if limit <= 0 {
		return nil, fmt.Errorf("limit must be greater than zero")
	}
	if err := s.lock(ctx); err != nil {
		return nil, err
	}
	defer s.mu.Unlock()

	userID = strings.TrimSpace(userID)
	var records []lifecycle.PlayerHistory
	for key, record := range s.history {
		if key.userID == userID && where.Match(record) {
			records = append(records, record)
		}
	}
	slices.SortFunc(records, func(a, b lifecycle.PlayerHistory) int {
		return cmp.Or(b.FinishedAt.Compare(a.FinishedAt), cmp.Compare(b.GameID, a.GameID))
	})
	return records[:min(limit, len(records))], nil
}

var _ storage.Store = (*Store)(nil)
