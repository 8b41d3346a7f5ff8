package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/louisbranch/jinrou/internal/services/game/domain/game"
	"github.com/louisbranch/jinrou/internal/services/game/storage"
)

// GetGame loads one game record.
func (s *Store) GetGame(ctx context.Context, id string) (storage.GameRecord, error) {
	if err := s.ready(ctx); err != nil {
		return storage.GameRecord{}, err
	}
	id = strings.TrimSpace(id)
	if id == "" {
		return storage.GameRecord{}, fmt.Errorf("game id is required")
	}

	var (
		raw       string
		record    storage.GameRecord
		updatedAt int64
	)
	err := s.sqlDB.QueryRowContext(ctx, `
SELECT record, version, updated_at
FROM games
WHERE id = ?
`, id).Scan(&raw, &record.Version, &updatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return storage.GameRecord{}, storage.ErrNotFound
	}
	if err != nil {
		return storage.GameRecord{}, fmt.Errorf("get game: %w", err)
	}
	if err := json.Unmarshal([]byte(raw), &record.Game); err != nil {
		return storage.GameRecord{}, fmt.Errorf("decode game %s: %w", id, err)
	}
	record.UpdatedAt = fromMillis(updatedAt)
	return record, nil
}

// CreateGame inserts g at version 1 and claims its players in one transaction.
func (s *Store) CreateGame(ctx context.Context, g game.Game, claims []storage.Player) (storage.GameRecord, error) {
	if err := s.ready(ctx); err != nil {
		return storage.GameRecord{}, err
	}
	if strings.TrimSpace(g.ID) == "" {
		return storage.GameRecord{}, fmt.Errorf("game id is required")
	}
	raw, err := json.Marshal(g)
	if err != nil {
		return storage.GameRecord{}, fmt.Errorf("encode game: %w", err)
	}
	now := s.now().UTC()

	tx, err := s.sqlDB.BeginTx(ctx, nil)
	if err != nil {
		return storage.GameRecord{}, fmt.Errorf("begin create game: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	for _, player := range claims {
		result, err := tx.ExecContext(ctx, `
UPDATE players
SET game_id = ?, version = version + 1
WHERE user_id = ? AND version = ? AND game_id = ''
`, g.ID, player.UserID, player.Version)
		if err != nil {
			return storage.GameRecord{}, fmt.Errorf("claim player %s: %w", player.UserID, err)
		}
		if err := affectedOrConflict(result); err != nil {
			return storage.GameRecord{}, err
		}
	}

	result, err := tx.ExecContext(ctx, `
INSERT INTO games (id, version, record, finished_at, created_at, updated_at)
VALUES (?, 1, ?, ?, ?, ?)
ON CONFLICT (id) DO NOTHING
`, g.ID, string(raw), toNullMillis(g.FinishedAt), toMillis(now), toMillis(now))
	if err != nil {
		return storage.GameRecord{}, fmt.Errorf("insert game: %w", err)
	}
	if err := affectedOrConflict(result); err != nil {
		return storage.GameRecord{}, err
	}
	if err := tx.Commit(); err != nil {
		return storage.GameRecord{}, fmt.Errorf("commit create game: %w", err)
	}
	return storage.GameRecord{Game: g, Version: 1, UpdatedAt: fromMillis(toMillis(now))}, nil
}

// SwapGame writes g over the stored record if it is still at version.
func (s *Store) SwapGame(ctx context.Context, g game.Game, version int64) (storage.GameRecord, error) {
	if err := s.ready(ctx); err != nil {
		return storage.GameRecord{}, err
	}
	raw, err := json.Marshal(g)
	if err != nil {
		return storage.GameRecord{}, fmt.Errorf("encode game: %w", err)
	}
	now := s.now().UTC()

	result, err := s.sqlDB.ExecContext(ctx, `
UPDATE games
SET record = ?, version = version + 1, finished_at = ?, updated_at = ?
WHERE id = ? AND version = ?
`, string(raw), toNullMillis(g.FinishedAt), toMillis(now), g.ID, version)
	if err != nil {
		return storage.GameRecord{}, fmt.Errorf("swap game: %w", err)
	}
	if err := affectedOrConflict(result); err != nil {
		if _, getErr := s.GetGame(ctx, g.ID); errors.Is(getErr, storage.ErrNotFound) {
			return storage.GameRecord{}, storage.ErrNotFound
		}
		return storage.GameRecord{}, err
	}
	return storage.GameRecord{Game: g, Version: version + 1, UpdatedAt: fromMillis(toMillis(now))}, nil
}

// ListUnreleasedGames lists finished games that still hold claimed players,
// oldest finish first.
func (s *Store) ListUnreleasedGames(ctx context.Context, limit int) ([]string, error) {
	if err := s.ready(ctx); err != nil {
		return nil, err
	}
	if limit <= 0 {
		return nil, fmt.Errorf("limit must be greater than zero")
	}

	rows, err := s.sqlDB.QueryContext(ctx, `
SELECT g.id
FROM games g
WHERE g.finished_at IS NOT NULL
  AND EXISTS (SELECT 1 FROM players p WHERE p.game_id = g.id)
ORDER BY g.finished_at, g.id
LIMIT ?
`, limit)
	if err != nil {
		return nil, fmt.Errorf("list unreleased games: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan game id: %w", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate unreleased games: %w", err)
	}
	return ids, nil
}
