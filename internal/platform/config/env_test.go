package config

import (
	"strings"
	"testing"
	"time"
)

type envTestConfig struct {
	Port     int           `env:"PORT" envDefault:"123"`
	Interval time.Duration `env:"INTERVAL" envDefault:"30s"`
	Admins   []string      `env:"ADMINS" envSeparator:","`
}

func TestParseEnvDefaults(t *testing.T) {
	var cfg envTestConfig
	if err := ParseEnv("TEST_", &cfg); err != nil {
		t.Fatalf("parse env: %v", err)
	}
	if cfg.Port != 123 || cfg.Interval != 30*time.Second || len(cfg.Admins) != 0 {
		t.Fatalf("cfg = %+v", cfg)
	}
}

func TestParseEnvReadsPrefixedValues(t *testing.T) {
	t.Setenv("JINROU_TEST_INTERVAL", "5m")
	t.Setenv("JINROU_TEST_ADMINS", "user-1,user-2")
	t.Setenv("INTERVAL", "1h")

	var cfg envTestConfig
	if err := ParseEnv("TEST_", &cfg); err != nil {
		t.Fatalf("parse env: %v", err)
	}
	if cfg.Interval != 5*time.Minute {
		t.Fatalf("interval = %v, want 5m", cfg.Interval)
	}
	if strings.Join(cfg.Admins, "|") != "user-1|user-2" {
		t.Fatalf("admins = %v", cfg.Admins)
	}
}

func TestParseEnvFrom(t *testing.T) {
	t.Setenv("JINROU_TEST_PORT", "999")

	var cfg envTestConfig
	err := ParseEnvFrom("TEST_", &cfg, map[string]string{"JINROU_TEST_INTERVAL": "2s"})
	if err != nil {
		t.Fatalf("parse env: %v", err)
	}
	if cfg.Port != 123 {
		t.Fatalf("port = %d, want the default, not the process environment", cfg.Port)
	}
	if cfg.Interval != 2*time.Second {
		t.Fatalf("interval = %v, want 2s", cfg.Interval)
	}
}

func TestParseEnvError(t *testing.T) {
	var cfg envTestConfig
	err := ParseEnvFrom("TEST_", &cfg, map[string]string{"JINROU_TEST_PORT": "not-an-int"})
	if err == nil {
		t.Fatal("expected error")
	}
	if !strings.Contains(err.Error(), "parse JINROU_TEST_ env:") {
		t.Fatalf("error = %v, want prefixed parse error", err)
	}
}
