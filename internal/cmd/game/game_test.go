package game

import (
	"flag"
	"io"
	"slices"
	"testing"
	"time"
)

func TestParseConfigDefaults(t *testing.T) {
	fs := flag.NewFlagSet("game", flag.ContinueOnError)
	cfg, err := ParseConfig(fs, nil)
	if err != nil {
		t.Fatalf("parse config: %v", err)
	}
	if cfg.Port != 8082 {
		t.Fatalf("expected default port 8082, got %d", cfg.Port)
	}
	if cfg.HTTPAddr != ":8080" {
		t.Fatalf("expected default http addr :8080, got %q", cfg.HTTPAddr)
	}
	if cfg.DBPath != "data/game.db" {
		t.Fatalf("expected default db path, got %q", cfg.DBPath)
	}
	if cfg.MaxUpdateAttempts != 8 {
		t.Fatalf("expected 8 update attempts, got %d", cfg.MaxUpdateAttempts)
	}
	if cfg.ReconcileInterval != 30*time.Second {
		t.Fatalf("expected 30s reconcile interval, got %v", cfg.ReconcileInterval)
	}
	if len(cfg.AdminUserIDs) != 0 {
		t.Fatalf("expected no admins, got %v", cfg.AdminUserIDs)
	}
}

func TestParseConfigEnv(t *testing.T) {
	t.Setenv("JINROU_GAME_DB_PATH", "/tmp/jinrou.db")
	t.Setenv("JINROU_GAME_ADMIN_USER_IDS", "ana,bo")
	fs := flag.NewFlagSet("game", flag.ContinueOnError)
	cfg, err := ParseConfig(fs, nil)
	if err != nil {
		t.Fatalf("parse config: %v", err)
	}
	if cfg.DBPath != "/tmp/jinrou.db" {
		t.Fatalf("expected env db path, got %q", cfg.DBPath)
	}
	if !slices.Equal(cfg.AdminUserIDs, []string{"ana", "bo"}) {
		t.Fatalf("expected env admins, got %v", cfg.AdminUserIDs)
	}
}

func TestParseConfigOverrides(t *testing.T) {
	fs := flag.NewFlagSet("game", flag.ContinueOnError)
	cfg, err := ParseConfig(fs, []string{
		"-port", "9001",
		"-http-addr", "127.0.0.1:9999",
		"-max-update-attempts", "3",
		"-reconcile-interval", "1m",
		"-admins", " ana, ,bo ",
	})
	if err != nil {
		t.Fatalf("parse config: %v", err)
	}
	if cfg.Port != 9001 {
		t.Fatalf("expected port 9001, got %d", cfg.Port)
	}
	if cfg.HTTPAddr != "127.0.0.1:9999" {
		t.Fatalf("expected http addr override, got %q", cfg.HTTPAddr)
	}
	if cfg.MaxUpdateAttempts != 3 || cfg.ReconcileInterval != time.Minute {
		t.Fatalf("unexpected loop settings: %+v", cfg)
	}
	if !slices.Equal(cfg.AdminUserIDs, []string{"ana", "bo"}) {
		t.Fatalf("expected trimmed admins, got %v", cfg.AdminUserIDs)
	}
}

func TestParseConfigRejectsUnknownFlag(t *testing.T) {
	fs := flag.NewFlagSet("game", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	if _, err := ParseConfig(fs, []string{"-lobby", "x"}); err == nil {
		t.Fatal("expected unknown flag error")
	}
}
