// Command noodle plays an additive bell wandering over a major scale.
package main

import (
	"context"
	"flag"
	"fmt"
	"math/rand/v2"
	"os"
	"os/signal"
	"syscall"

	"github.com/ingyamilmolinar/noodle/core/beat"
	"github.com/ingyamilmolinar/noodle/core/engine"
	"github.com/ingyamilmolinar/noodle/core/voice"
	"github.com/ingyamilmolinar/noodle/internal/config"
	game_log "github.com/ingyamilmolinar/noodle/internal/log"
	"github.com/ingyamilmolinar/noodle/internal/phrase"
	"github.com/ingyamilmolinar/noodle/internal/player"
	"github.com/ingyamilmolinar/noodle/internal/ring"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, "noodle:", err)
		os.Exit(1)
	}
}

func run() error {
	fs := flag.NewFlagSet("noodle", flag.ExitOnError)
	out := fs.String("out", "noodle.wav", "output file for the wav backend")
	seconds := fs.Float64("seconds", 30, "length to render with the wav backend")
	tonic := fs.Float64("tonic", 220, "scale tonic in Hz")
	seed := fs.Uint64("seed", 0, "random seed, 0 picks one")

	base := config.Default()
	base.Voices = 2
	cfg, err := config.Parse(fs, os.Args[1:], base)
	if err != nil {
		return err
	}
	logger := game_log.New(os.Stderr, game_log.LevelFromString(cfg.LogLevel))

	s, err := beat.New(cfg.SampleRate, cfg.Voices, func() voice.Voice { return voice.NewBell(1) }, logger)
	if err != nil {
		return err
	}
	m := engine.NewMixer(logger)
	m.AddInstrument(0, s)

	if *seed == 0 {
		*seed = rand.Uint64()
	}
	logger.Infof("seed %d", *seed)
	composer := &phrase.Composer{
		Tonic:    *tonic,
		Notes:    100,
		Spacing:  0.3,
		Duration: 0.2,
		Walk:     phrase.Wander(rand.New(rand.NewPCG(*seed, *seed)), -7, 14),
	}

	buf, err := ring.New(cfg.Capacity())
	if err != nil {
		return err
	}
	eng, err := engine.New(m, buf, engine.Options{
		LowWater: cfg.LowWaterMark(),
		Idle:     cfg.Idle(),
		Refill:   composer.Refill,
	}, logger)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return player.Play(ctx, cfg, eng, player.Options{WAVPath: *out, Seconds: *seconds}, logger)
}
