package player

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/ingyamilmolinar/noodle/core/beat"
	"github.com/ingyamilmolinar/noodle/core/engine"
	"github.com/ingyamilmolinar/noodle/core/model"
	"github.com/ingyamilmolinar/noodle/core/voice"
	"github.com/ingyamilmolinar/noodle/internal/audio"
	"github.com/ingyamilmolinar/noodle/internal/config"
	game_log "github.com/ingyamilmolinar/noodle/internal/log"
	"github.com/ingyamilmolinar/noodle/internal/ring"
)

var testLogger = game_log.New(os.Stdout, game_log.LevelError)

func wavEngine(t *testing.T, cfg *config.Config) *engine.Engine {
	t.Helper()
	s, err := beat.New(cfg.SampleRate, cfg.Voices, func() voice.Voice { return voice.NewBell(1) }, testLogger)
	if err != nil {
		t.Fatal(err)
	}
	m := engine.NewMixer(testLogger)
	m.AddInstrument(0, s)
	m.Schedule(model.NoteEvent{Instrument: 0, Pitch: 440, Onset: 0.01, Duration: 0.1, Amplitude: 1})
	buf, err := ring.New(cfg.Capacity())
	if err != nil {
		t.Fatal(err)
	}
	eng, err := engine.New(m, buf, engine.Options{}, testLogger)
	if err != nil {
		t.Fatal(err)
	}
	return eng
}

func TestPlayWAVWritesRequestedLength(t *testing.T) {
	cfg := config.Default()
	cfg.SampleRate = 8000
	cfg.Backend = config.BackendWAV
	path := filepath.Join(t.TempDir(), "out.wav")

	err := Play(context.Background(), cfg, wavEngine(t, cfg), Options{WAVPath: path, Seconds: 0.25}, testLogger)
	if err != nil {
		t.Fatalf("Play: %v", err)
	}
	samples, rate, err := audio.ReadWAV(path)
	if err != nil {
		t.Fatalf("ReadWAV: %v", err)
	}
	if rate != 8000 || len(samples) != 2000 {
		t.Fatalf("got %d samples at %dHz, want 2000 at 8000Hz", len(samples), rate)
	}
	loud := false
	for _, s := range samples {
		if s != 0 {
			loud = true
			break
		}
	}
	if !loud {
		t.Fatalf("rendered file is silent")
	}
}

func TestPlayWAVNeedsPathAndDuration(t *testing.T) {
	cfg := config.Default()
	cfg.SampleRate = 8000
	cfg.Backend = config.BackendWAV
	eng := wavEngine(t, cfg)
	if err := Play(context.Background(), cfg, eng, Options{Seconds: 1}, testLogger); err == nil {
		t.Fatalf("expected error without a path")
	}
	path := filepath.Join(t.TempDir(), "out.wav")
	if err := Play(context.Background(), cfg, eng, Options{WAVPath: path}, testLogger); err == nil {
		t.Fatalf("expected error without a duration")
	}
}

func TestPlayRejectsUnknownBackend(t *testing.T) {
	cfg := config.Default()
	cfg.Backend = "tape"
	if err := Play(context.Background(), cfg, wavEngine(t, cfg), Options{}, testLogger); err == nil {
		t.Fatalf("expected error for unknown backend")
	}
}
