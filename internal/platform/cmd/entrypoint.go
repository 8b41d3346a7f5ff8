// Package cmd holds the startup plumbing shared by process entrypoints.
package cmd

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/louisbranch/jinrou/internal/platform/config"
	"github.com/louisbranch/jinrou/internal/platform/otel"
	"github.com/louisbranch/jinrou/internal/platform/timeouts"
)

// ServiceGame names the game process in telemetry and logs.
const ServiceGame = "jinrou-game"

// ParseConfig loads environment defaults under config.Prefix+prefix into cfg.
func ParseConfig[T any](prefix string, cfg *T) error {
	if cfg == nil {
		return errors.New("config target is required")
	}
	return config.ParseEnv(prefix, cfg)
}

// ParseArgs parses command-line flags.
func ParseArgs(fs *flag.FlagSet, args []string) error {
	if fs == nil {
		return errors.New("flag parser is required")
	}
	if args == nil {
		args = []string{}
	}
	return fs.Parse(args)
}

// Main parses the process flags, runs until SIGINT or SIGTERM, and exits
// non-zero on failure.
func Main[T any](logPrefix string, parse func(*flag.FlagSet, []string) (T, error), run func(context.Context, T) error) {
	cfg, err := parse(flag.CommandLine, os.Args[1:])
	if err != nil {
		config.Exitf("parse flags: %v", err)
	}
	log.SetPrefix(logPrefix)
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg); err != nil {
		stop()
		log.Fatalf("failed to serve: %v", err)
	}
}

// RunWithTelemetry installs tracing for service, runs run, and flushes spans
// once run returns.
func RunWithTelemetry(ctx context.Context, service string, run func(context.Context) error) error {
	service = strings.TrimSpace(service)
	if service == "" {
		return fmt.Errorf("service name is required")
	}
	if run == nil {
		return fmt.Errorf("run function is required")
	}
	shutdown, err := otel.Setup(ctx, service)
	if err != nil {
		return fmt.Errorf("setup telemetry: %w", err)
	}
	defer func() {
		flushCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), timeouts.Shutdown)
		defer cancel()
		if err := shutdown(flushCtx); err != nil {
			log.Printf("%s otel shutdown: %v", service, err)
		}
	}()
	return run(ctx)
}
