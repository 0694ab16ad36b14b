// Command mutate plays a graph voice and replaces it with a random
// variation of itself on every ';' or 'q'. Each new patch is printed.
package main

import (
	"bytes"
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"math/rand/v2"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/ingyamilmolinar/noodle/core/beat"
	"github.com/ingyamilmolinar/noodle/core/engine"
	"github.com/ingyamilmolinar/noodle/core/voice"
	"github.com/ingyamilmolinar/noodle/internal/config"
	"github.com/ingyamilmolinar/noodle/internal/console"
	game_log "github.com/ingyamilmolinar/noodle/internal/log"
	"github.com/ingyamilmolinar/noodle/internal/phrase"
	"github.com/ingyamilmolinar/noodle/internal/player"
	"github.com/ingyamilmolinar/noodle/internal/ring"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, "mutate:", err)
		os.Exit(1)
	}
}

func loadPreset(path string) (*voice.Graph, error) {
	if path == "" {
		return voice.DefaultGraph(1), nil
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return voice.DecodeYAML(f)
	}
	return voice.DecodeJSON(f)
}

// printPreset writes g with CRLF line ends, since the terminal is in raw mode.
func printPreset(w io.Writer, g *voice.Graph, yaml bool) error {
	var b bytes.Buffer
	var err error
	if yaml {
		err = voice.EncodeYAML(&b, g)
	} else {
		err = voice.EncodeJSON(&b, g)
	}
	if err != nil {
		return err
	}
	_, err = io.WriteString(w, strings.ReplaceAll(b.String(), "\n", "\r\n"))
	return err
}

func newMixer(cfg *config.Config, g *voice.Graph, logger *game_log.Logger) (*engine.Mixer, error) {
	s, err := beat.New(cfg.SampleRate, cfg.Voices, g.Factory(), logger)
	if err != nil {
		return nil, err
	}
	m := engine.NewMixer(logger)
	m.AddInstrument(0, s)
	return m, nil
}

func run() error {
	fs := flag.NewFlagSet("mutate", flag.ExitOnError)
	presetPath := fs.String("preset", "", "starting patch (.json or .yaml); empty uses the built-in FM patch")
	asYAML := fs.Bool("yaml", false, "print patches as YAML instead of JSON")
	out := fs.String("out", "mutate.wav", "output file for the wav backend")
	seconds := fs.Float64("seconds", 30, "length to render with the wav backend")
	spread := fs.Float64("spread", voice.DefaultSpread, "relative range of each mutation")
	seed := fs.Uint64("seed", 0, "random seed, 0 picks one")

	cfg, err := config.Parse(fs, os.Args[1:], config.Default())
	if err != nil {
		return err
	}
	logger := game_log.New(os.Stderr, game_log.LevelFromString(cfg.LogLevel))

	g, err := loadPreset(*presetPath)
	if err != nil {
		return fmt.Errorf("preset: %w", err)
	}
	m, err := newMixer(cfg, g, logger)
	if err != nil {
		return err
	}
	if *seed == 0 {
		*seed = rand.Uint64()
	}
	logger.Infof("seed %d", *seed)
	rng := rand.New(rand.NewPCG(*seed, *seed))

	composer := &phrase.Composer{Tonic: 220, Notes: 100, Spacing: 0.5, Duration: 0.4, Walk: phrase.Ascend(7)}
	buf, err := ring.New(cfg.Capacity())
	if err != nil {
		return err
	}
	eng, err := engine.New(m, buf, engine.Options{
		LowWater: cfg.LowWaterMark(),
		Idle:     cfg.Idle(),
		Refill:   composer.Refill,
		OnControl: func(c engine.Control) *engine.Mixer {
			if c.Kind != engine.ControlRegenerate {
				return nil
			}
			g = voice.Mutate(g, rng, *spread)
			if err := printPreset(os.Stdout, g, *asYAML); err != nil {
				logger.Errorf("print preset: %v", err)
			}
			next, err := newMixer(cfg, g, logger)
			if err != nil {
				logger.Errorf("rebuild mixer: %v", err)
				return nil
			}
			return next
		},
	}, logger)
	if err != nil {
		return err
	}

	keys, err := console.NewKeyReader(os.Stdin, logger)
	if err != nil {
		return err
	}
	defer keys.Restore()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	go func() {
		err := keys.Run(ctx, func(r rune) {
			c := engine.Control{Kind: engine.ControlKey, Key: r}
			if r == ';' || r == 'q' {
				c.Kind = engine.ControlRegenerate
			}
			if !eng.Send(c) {
				logger.Debugf("dropped key %q", r)
			}
		})
		if errors.Is(err, console.ErrInterrupted) {
			cancel()
		} else if err != nil && !errors.Is(err, context.Canceled) {
			logger.Errorf("keys: %v", err)
		}
	}()

	return player.Play(ctx, cfg, eng, player.Options{WAVPath: *out, Seconds: *seconds}, logger)
}
