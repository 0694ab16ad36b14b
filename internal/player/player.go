// Package player connects an engine to the output backend chosen in the
// config.
package player

import (
	"context"
	"fmt"
	"time"

	"github.com/ingyamilmolinar/noodle/core/engine"
	"github.com/ingyamilmolinar/noodle/internal/audio"
	"github.com/ingyamilmolinar/noodle/internal/config"
	game_log "github.com/ingyamilmolinar/noodle/internal/log"
)

// Options covers the file backend, which has no device to pace it.
type Options struct {
	WAVPath string
	Seconds float64
}

// Play runs eng through cfg.Backend until ctx is done. The wav backend
// stops after opts.Seconds instead.
func Play(ctx context.Context, cfg *config.Config, eng *engine.Engine, opts Options, logger *game_log.Logger) error {
	logger = game_log.OrDiscard(logger).With("player")
	logger.Infof("backend %s at %.0fHz", cfg.Backend, cfg.SampleRate)
	switch cfg.Backend {
	case config.BackendOto:
		latency := time.Duration(float64(cfg.FramesPerBuffer) / cfg.SampleRate * float64(time.Second))
		sink, err := audio.NewOtoSink(int(cfg.SampleRate), eng.Buffer(), latency, logger)
		if err != nil {
			return err
		}
		defer sink.Close()
		return runBuffered(ctx, eng, sink)
	case config.BackendPortAudio:
		sink, err := audio.NewPortAudioSink(cfg.SampleRate, cfg.FramesPerBuffer, eng.Buffer(), logger)
		if err != nil {
			return err
		}
		defer sink.Close()
		return runBuffered(ctx, eng, sink)
	case config.BackendPortAudioBlocking:
		sink, err := audio.NewBlockingSink(cfg.SampleRate, cfg.FramesPerBuffer, logger)
		if err != nil {
			return err
		}
		defer sink.Close()
		return sink.Run(ctx, eng)
	case config.BackendWAV:
		return renderWAV(ctx, cfg, eng, opts, logger)
	}
	return fmt.Errorf("player: unknown backend %q", cfg.Backend)
}

type starter interface{ Start() error }

func runBuffered(ctx context.Context, eng *engine.Engine, sink starter) error {
	// prime the buffer so the device does not start on silence
	eng.Step()
	if err := sink.Start(); err != nil {
		return err
	}
	eng.Run(ctx)
	return nil
}

func renderWAV(ctx context.Context, cfg *config.Config, eng *engine.Engine, opts Options, logger *game_log.Logger) error {
	if opts.WAVPath == "" {
		return fmt.Errorf("player: wav backend needs an output path")
	}
	if !(opts.Seconds > 0) {
		return fmt.Errorf("player: wav backend needs a positive duration, got %v", opts.Seconds)
	}
	n := int(opts.Seconds * cfg.SampleRate)
	samples := make([]float32, 0, n)
	for i := 0; i < n; i++ {
		if i%int(cfg.SampleRate) == 0 && ctx.Err() != nil {
			logger.Warnf("interrupted after %d samples", i)
			break
		}
		samples = append(samples, float32(eng.Sample()))
	}
	if err := audio.WriteWAV(opts.WAVPath, int(cfg.SampleRate), samples); err != nil {
		return err
	}
	logger.Infof("wrote %d samples to %s", len(samples), opts.WAVPath)
	return nil
}
