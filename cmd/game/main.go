package main

import (
	gamecmd "github.com/louisbranch/jinrou/internal/cmd/game"
	entrypoint "github.com/louisbranch/jinrou/internal/platform/cmd"
)

func main() {
	entrypoint.Main("[GAME] ", gamecmd.ParseConfig, gamecmd.Run)
}
