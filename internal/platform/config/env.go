// Package config loads process configuration from the environment.
//
// Every variable lives under Prefix. Components add their own segment, so
// the game server reads JINROU_GAME_PORT from a field tagged `env:"PORT"`
// parsed with the "GAME_" prefix.
package config

import (
	"fmt"

	"github.com/caarlos0/env/v11"
)

// Prefix starts every environment variable the project reads.
const Prefix = "JINROU_"

// ParseEnv fills target from the variables its struct tags declare under
// Prefix+prefix.
func ParseEnv(prefix string, target any) error {
	return parse(target, env.Options{Prefix: Prefix + prefix})
}

// ParseEnvFrom is ParseEnv reading environ instead of the process
// environment.
func ParseEnvFrom(prefix string, target any, environ map[string]string) error {
	if environ == nil {
		environ = map[string]string{}
	}
	return parse(target, env.Options{Prefix: Prefix + prefix, Environment: environ})
}

func parse(target any, opts env.Options) error {
	if err := env.ParseWithOptions(target, opts); err != nil {
		return fmt.Errorf("parse %s env: %w", opts.Prefix, err)
	}
	return nil
}
