package main

import (
	"errors"
	"fmt"
	"os"

	"citycam/internal/game"
	"citycam/internal/logging"
	"citycam/internal/options"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/spf13/pflag"
)

func main() {
	o, err := options.Load(os.Args[1:])
	if errors.Is(err, pflag.ErrHelp) {
		return
	}
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}

	log := logging.New(os.Stdout, o.LogLevel, o.NoColor)

	g, err := game.NewGame(o, log)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to start")
	}
	defer g.Close()

	ebiten.SetWindowSize(o.WindowWidth, o.WindowHeight)
	ebiten.SetWindowTitle("citycam")
	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)

	if err := ebiten.RunGame(g); err != nil {
		log.Error().Err(err).Msg("game loop stopped")
	}
}
