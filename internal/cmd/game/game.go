// Package game parses game command flags and starts the game runtime.
package game

import (
	"context"
	"errors"
	"flag"
	"strings"
	"time"

	"github.com/louisbranch/jinrou/internal/platform/callertoken"
	entrypoint "github.com/louisbranch/jinrou/internal/platform/cmd"
	server "github.com/louisbranch/jinrou/internal/services/game/app"
)

// envPrefix scopes the game variables, e.g. JINROU_GAME_PORT.
const envPrefix = "GAME_"

// Config holds game command configuration.
type Config struct {
	Port              int           `env:"PORT" envDefault:"8082"`
	HTTPAddr          string        `env:"HTTP_ADDR" envDefault:":8080"`
	DBPath            string        `env:"DB_PATH" envDefault:"data/game.db"`
	MaxUpdateAttempts int           `env:"MAX_UPDATE_ATTEMPTS" envDefault:"8"`
	ReconcileInterval time.Duration `env:"RECONCILE_INTERVAL" envDefault:"30s"`
	AdminUserIDs      []string      `env:"ADMIN_USER_IDS" envSeparator:","`
}

// ParseConfig parses environment and flags into a Config.
func ParseConfig(fs *flag.FlagSet, args []string) (Config, error) {
	var cfg Config
	if err := entrypoint.ParseConfig(envPrefix, &cfg); err != nil {
		return Config{}, err
	}
	if fs == nil {
		return Config{}, errors.New("flag parser is required")
	}
	fs.IntVar(&cfg.Port, "port", cfg.Port, "The game health check port")
	fs.StringVar(&cfg.HTTPAddr, "http-addr", cfg.HTTPAddr, "The game API listen address")
	fs.StringVar(&cfg.DBPath, "db", cfg.DBPath, "The game SQLite database path")
	fs.IntVar(&cfg.MaxUpdateAttempts, "max-update-attempts", cfg.MaxUpdateAttempts, "Commit attempts per action before giving up")
	fs.DurationVar(&cfg.ReconcileInterval, "reconcile-interval", cfg.ReconcileInterval, "How often to finalize stuck games")
	fs.Func("admins", "Comma-separated admin user IDs", func(value string) error {
		cfg.AdminUserIDs = splitList(value)
		return nil
	})
	if err := entrypoint.ParseArgs(fs, args); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func splitList(value string) []string {
	var out []string
	for _, item := range strings.Split(value, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}

// Run starts the game service.
func Run(ctx context.Context, cfg Config) error {
	tokens, useTokens, err := callertoken.LoadConfigFromEnv(nil)
	if err != nil {
		return err
	}
	runtime := server.RuntimeConfig{
		Port:              cfg.Port,
		HTTPAddr:          cfg.HTTPAddr,
		DBPath:            cfg.DBPath,
		MaxUpdateAttempts: cfg.MaxUpdateAttempts,
		ReconcileInterval: cfg.ReconcileInterval,
		AdminUserIDs:      cfg.AdminUserIDs,
	}
	if useTokens {
		runtime.CallerTokens = &tokens
	}
	return entrypoint.RunWithTelemetry(ctx, entrypoint.ServiceGame, func(ctx context.Context) error {
		return server.Run(ctx, runtime)
	})
}
