package sqlitemigrate

import (
	"context"
	"database/sql"
	"testing"
	"testing/fstest"

	_ "modernc.org/sqlite"
)

func migration(body string) *fstest.MapFile {
	return &fstest.MapFile{Data: []byte(body)}
}

func openDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func appliedNames(t *testing.T, db *sql.DB) []string {
	t.Helper()
	rows, err := db.Query("SELECT name FROM schema_migrations ORDER BY name")
	if err != nil {
		t.Fatalf("list applied: %v", err)
	}
	defer rows.Close()
	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			t.Fatalf("scan applied: %v", err)
		}
		names = append(names, name)
	}
	return names
}

func hasTable(t *testing.T, db *sql.DB, name string) bool {
	t.Helper()
	var count int
	if err := db.QueryRow("SELECT COUNT(*) FROM sqlite_master WHERE type = 'table' AND name = ?", name).Scan(&count); err != nil {
		t.Fatalf("lookup table %s: %v", name, err)
	}
	return count == 1
}

func TestApplyMigrationsRunsInOrderOnce(t *testing.T) {
	db := openDB(t)
	ctx := context.Background()
	migrations := fstest.MapFS{
		"002_games.sql":   migration("-- +migrate Up\nALTER TABLE players ADD COLUMN game_id TEXT;\n-- +migrate Down\nSELECT 1;"),
		"001_players.sql": migration("-- +migrate Up\nCREATE TABLE players(user_id TEXT PRIMARY KEY);"),
		"notes.txt":       migration("not a migration"),
	}

	for range 2 {
		if err := ApplyMigrations(ctx, db, migrations, ""); err != nil {
			t.Fatalf("apply: %v", err)
		}
	}
	names := appliedNames(t, db)
	if len(names) != 2 || names[0] != "001_players.sql" || names[1] != "002_games.sql" {
		t.Fatalf("applied = %v", names)
	}
	if _, err := db.Exec("INSERT INTO players(user_id, game_id) VALUES ('user-1', 'game-1')"); err != nil {
		t.Fatalf("insert after migrations: %v", err)
	}
}

func TestApplyMigrationsLeavesFailedMigrationUnrecorded(t *testing.T) {
	db := openDB(t)
	ctx := context.Background()

	bad := fstest.MapFS{"001_games.sql": migration("CREAT TABLE games(id TEXT);")}
	if err := ApplyMigrations(ctx, db, bad, ""); err == nil {
		t.Fatal("expected a failing migration to return an error")
	}
	if names := appliedNames(t, db); len(names) != 0 {
		t.Fatalf("applied = %v, want none", names)
	}

	fixed := fstest.MapFS{"001_games.sql": migration("CREATE TABLE games(id TEXT PRIMARY KEY);")}
	if err := ApplyMigrations(ctx, db, fixed, ""); err != nil {
		t.Fatalf("apply fixed: %v", err)
	}
	if !hasTable(t, db, "games") {
		t.Fatal("games table missing after fixed migration")
	}
}

func TestApplyMigrationsUnderRoot(t *testing.T) {
	db := openDB(t)
	migrations := fstest.MapFS{
		"history/001_history.sql": migration("CREATE TABLE game_history(game_id TEXT PRIMARY KEY);"),
	}
	if err := ApplyMigrations(context.Background(), db, migrations, "history"); err != nil {
		t.Fatalf("apply: %v", err)
	}
	names := appliedNames(t, db)
	if len(names) != 1 || names[0] != "history/001_history.sql" {
		t.Fatalf("applied = %v", names)
	}
	if !hasTable(t, db, "game_history") {
		t.Fatal("game_history table missing")
	}
}

func TestApplyMigrationsRejects(t *testing.T) {
	migrations := fstest.MapFS{"001_players.sql": migration("CREATE TABLE players(user_id TEXT);")}
	if err := ApplyMigrations(context.Background(), nil, migrations, ""); err == nil {
		t.Fatal("expected nil db to be rejected")
	}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := ApplyMigrations(ctx, openDB(t), migrations, ""); err == nil {
		t.Fatal("expected canceled context to stop migrations")
	}
}

func TestExtractUpMigration(t *testing.T) {
	tests := []struct {
		content string
		want    string
	}{
		{content: "CREATE TABLE a(id INT);", want: "CREATE TABLE a(id INT);"},
		{content: "-- +migrate Up\nCREATE TABLE a(id INT);", want: "\nCREATE TABLE a(id INT);"},
		{content: "-- +migrate Up\nCREATE TABLE a(id INT);\n-- +migrate Down\nDROP TABLE a;", want: "\nCREATE TABLE a(id INT);\n"},
	}
	for _, tc := range tests {
		if got := ExtractUpMigration(tc.content); got != tc.want {
			t.Fatalf("up(%q) = %q, want %q", tc.content, got, tc.want)
		}
	}
}
