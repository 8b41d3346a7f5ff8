package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/louisbranch/jinrou/internal/services/game/storage"
)

const playerColumns = `user_id, name, ready, game_id, joined_at, version`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanPlayer(row rowScanner) (storage.Player, error) {
	var (
		player   storage.Player
		ready    int
		joinedAt int64
	)
	if err := row.Scan(&player.UserID, &player.Name, &ready, &player.GameID, &joinedAt, &player.Version); err != nil {
		return storage.Player{}, err
	}
	player.Ready = ready != 0
	player.JoinedAt = fromMillis(joinedAt)
	return player, nil
}

// GetPlayer loads one pool entry.
func (s *Store) GetPlayer(ctx context.Context, userID string) (storage.Player, error) {
	if err := s.ready(ctx); err != nil {
		return storage.Player{}, err
	}
	player, err := scanPlayer(s.sqlDB.QueryRowContext(ctx,
		`SELECT `+playerColumns+` FROM players WHERE user_id = ?`, strings.TrimSpace(userID)))
	if errors.Is(err, sql.ErrNoRows) {
		return storage.Player{}, storage.ErrNotFound
	}
	if err != nil {
		return storage.Player{}, fmt.Errorf("get player: %w", err)
	}
	return player, nil
}

// PutPlayer inserts a new pool entry or conditionally replaces an existing one.
func (s *Store) PutPlayer(ctx context.Context, p storage.Player) (storage.Player, error) {
	if err := s.ready(ctx); err != nil {
		return storage.Player{}, err
	}
	p.UserID = strings.TrimSpace(p.UserID)
	if p.UserID == "" {
		return storage.Player{}, fmt.Errorf("user id is required")
	}
	if p.JoinedAt.IsZero() {
		p.JoinedAt = s.now().UTC()
	}

	var (
		result sql.Result
		err    error
	)
	if p.Version == 0 {
		result, err = s.sqlDB.ExecContext(ctx, `
INSERT INTO players (user_id, name, ready, game_id, joined_at, version)
VALUES (?, ?, ?, ?, ?, 1)
ON CONFLICT (user_id) DO NOTHING
`, p.UserID, p.Name, boolToInt(p.Ready), p.GameID, toMillis(p.JoinedAt))
	} else {
		result, err = s.sqlDB.ExecContext(ctx, `
UPDATE players
SET name = ?, ready = ?, game_id = ?, joined_at = ?, version = version + 1
WHERE user_id = ? AND version = ?
`, p.Name, boolToInt(p.Ready), p.GameID, toMillis(p.JoinedAt), p.UserID, p.Version)
	}
	if err != nil {
		return storage.Player{}, fmt.Errorf("put player: %w", err)
	}
	if err := affectedOrConflict(result); err != nil {
		return storage.Player{}, err
	}
	p.Version++
	p.JoinedAt = fromMillis(toMillis(p.JoinedAt))
	return p, nil
}

// DeletePlayer removes a pool entry still at version.
func (s *Store) DeletePlayer(ctx context.Context, userID string, version int64) error {
	if err := s.ready(ctx); err != nil {
		return err
	}
	result, err := s.sqlDB.ExecContext(ctx,
		`DELETE FROM players WHERE user_id = ? AND version = ?`, strings.TrimSpace(userID), version)
	if err != nil {
		return fmt.Errorf("delete player: %w", err)
	}
	return affectedOrConflict(result)
}

// ListReadyPlayers lists ready idle players, earliest arrival first.
func (s *Store) ListReadyPlayers(ctx context.Context, limit int) ([]storage.Player, error) {
	if err := s.ready(ctx); err != nil {
		return nil, err
	}
	if limit <= 0 {
		return nil, fmt.Errorf("limit must be greater than zero")
	}

	rows, err := s.sqlDB.QueryContext(ctx, `
SELECT `+playerColumns+`
FROM players
WHERE ready = 1 AND game_id = ''
ORDER BY joined_at, user_id
LIMIT ?
`, limit)
	if err != nil {
		return nil, fmt.Errorf("list ready players: %w", err)
	}
	defer rows.Close()

	players := make([]storage.Player, 0, limit)
	for rows.Next() {
		player, err := scanPlayer(rows)
		if err != nil {
			return nil, fmt.Errorf("scan player: %w", err)
		}
		players = append(players, player)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate players: %w", err)
	}
	return players, nil
}

// ReleasePlayers frees every player claimed by gameID.
func (s *Store) ReleasePlayers(ctx context.Context, gameID string) (int, error) {
	if err := s.ready(ctx); err != nil {
		return 0, err
	}
	gameID = strings.TrimSpace(gameID)
	if gameID == "" {
		return 0, fmt.Errorf("game id is required")
	}
	result, err := s.sqlDB.ExecContext(ctx, `
UPDATE players
SET game_id = '', ready = 0, version = version + 1
WHERE game_id = ?
`, gameID)
	if err != nil {
		return 0, fmt.Errorf("release players: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("rows affected: %w", err)
	}
	return int(rows), nil
}
