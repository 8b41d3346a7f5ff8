package sqlite

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/louisbranch/jinrou/internal/services/game/core/filter"
	"github.com/louisbranch/jinrou/internal/services/game/domain/game"
	"github.com/louisbranch/jinrou/internal/services/game/domain/lifecycle"
)

// PutHistory writes the history of one finished game. Records already
// present are left untouched.
func (s *Store) PutHistory(ctx context.Context, global lifecycle.GameHistory, players []lifecycle.PlayerHistory) error {
	if err := s.ready(ctx); err != nil {
		return err
	}
	if strings.TrimSpace(global.GameID) == "" {
		return fmt.Errorf("game id is required")
	}

	tx, err := s.sqlDB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin put history: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, `
INSERT OR IGNORE INTO game_history (game_id, finished_at, player_count, winner, aborted)
VALUES (?, ?, ?, ?, ?)
`, global.GameID, toMillis(global.FinishedAt), global.PlayerCount, string(global.Winner), boolToInt(global.Aborted)); err != nil {
		return fmt.Errorf("insert game history: %w", err)
	}
	for _, player := range players {
		if _, err := tx.ExecContext(ctx, `
INSERT OR IGNORE INTO player_history (game_id, user_id, finished_at, player_count, role, winner, won, aborted)
VALUES (?, ?, ?, ?, ?, ?, ?, ?)
`, player.GameID, player.UserID, toMillis(player.FinishedAt), player.PlayerCount, string(player.Role),
			string(player.Winner), boolToInt(player.Won), boolToInt(player.Aborted)); err != nil {
			return fmt.Errorf("insert player history %s: %w", player.UserID, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit put history: %w", err)
	}
	return nil
}

// ListPlayerHistory lists a player's finished games matching where, newest
// first.
func (s *Store) ListPlayerHistory(ctx context.Context, userID string, limit int, where filter.Condition) ([]lifecycle.PlayerHistory, error) {
	if err := s.ready(ctx); err != nil {
		return nil, err
	}
	if limit <= 0 {
		return nil, fmt.Errorf("limit must be greater than zero")
	}

	clause := "user_id = ?"
	params := []any{strings.TrimSpace(userID)}
	if cond := where.SQL(); cond.Clause != "" {
		clause += " AND " + cond.Clause
		for _, param := range cond.Params {
			if t, ok := param.(time.Time); ok {
				param = toMillis(t)
			}
			params = append(params, param)
		}
	}
	params = append(params, limit)

	rows, err := s.sqlDB.QueryContext(ctx, `
SELECT game_id, user_id, finished_at, player_count, role, winner, won, aborted
FROM player_history
WHERE `+clause+`
ORDER BY finished_at DESC, game_id DESC
LIMIT ?
`, params...)
	if err != nil {
		return nil, fmt.Errorf("list player history: %w", err)
	}
	defer rows.Close()

	var records []lifecycle.PlayerHistory
	for rows.Next() {
		var (
			record     lifecycle.PlayerHistory
			finishedAt int64
			role       string
			winner     string
			won        int
			aborted    int
		)
		if err := rows.Scan(&record.GameID, &record.UserID, &finishedAt, &record.PlayerCount, &role, &winner, &won, &aborted); err != nil {
			return nil, fmt.Errorf("scan player history: %w", err)
		}
		record.FinishedAt = fromMillis(finishedAt)
		record.Role = game.Role(role)
		record.Winner = game.Team(winner)
		record.Won = won != 0
		record.Aborted = aborted != 0
		records = append(records, record)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate player history: %w", err)
	}
	return records, nil
}
