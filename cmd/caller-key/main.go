// Package main generates caller token keys, or signs a development token
// with -user.
package main

import (
	"flag"
	"os"
	"time"

	"github.com/louisbranch/jinrou/internal/platform/config"
	"github.com/louisbranch/jinrou/internal/tools/callerkey"
)

func main() {
	cfg, err := callerkey.ParseConfig(flag.CommandLine, os.Args[1:], os.Getenv)
	if err != nil {
		config.Exitf("parse flags: %v", err)
	}
	if err := callerkey.Run(cfg, os.Stdout, nil, time.Now().UTC()); err != nil {
		config.Exitf("caller key: %v", err)
	}
}
