// Command render writes a MIDI file, or a built-in phrase, to a WAV file.
// MIDI channel 10 plays the kick; every other channel gets its own bell
// instrument.
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/ingyamilmolinar/noodle/core/beat"
	"github.com/ingyamilmolinar/noodle/core/engine"
	"github.com/ingyamilmolinar/noodle/core/model"
	"github.com/ingyamilmolinar/noodle/core/voice"
	"github.com/ingyamilmolinar/noodle/internal/audio"
	"github.com/ingyamilmolinar/noodle/internal/config"
	game_log "github.com/ingyamilmolinar/noodle/internal/log"
	"github.com/ingyamilmolinar/noodle/internal/phrase"
	"github.com/ingyamilmolinar/noodle/internal/score"
)

const (
	drumChannel = 9
	tail        = 0.5 // seconds after the last note end
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, "render:", err)
		os.Exit(1)
	}
}

func factoryFor(instrument int) voice.Factory {
	if instrument == drumChannel {
		return func() voice.Voice { return voice.NewKick(1) }
	}
	return func() voice.Voice { return voice.NewBell(1) }
}

// builtinPhrase is two octaves of the A major scale over a kick on the beat.
func builtinPhrase() []model.NoteEvent {
	var notes []model.NoteEvent
	for i := 0; i < 16; i++ {
		onset := 0.05 + float64(i)*0.3
		notes = append(notes, model.NoteEvent{Pitch: phrase.MajorPitch(220, i), Onset: onset, Duration: 0.2, Amplitude: 1})
		if i%2 == 0 {
			notes = append(notes, model.NoteEvent{Instrument: drumChannel, Onset: onset, Duration: 0.05, Amplitude: 1})
		}
	}
	return notes
}

func run() error {
	fs := flag.NewFlagSet("render", flag.ExitOnError)
	in := fs.String("midi", "", "standard MIDI file to render; empty renders a built-in phrase")
	out := fs.String("out", "render.wav", "output WAV file")
	seconds := fs.Float64("seconds", 0, "length to render, 0 renders until the last note has decayed")

	base := config.Default()
	base.Backend = config.BackendWAV
	cfg, err := config.Parse(fs, os.Args[1:], base)
	if err != nil {
		return err
	}
	logger := game_log.New(os.Stderr, game_log.LevelFromString(cfg.LogLevel))

	notes := builtinPhrase()
	if *in != "" {
		if notes, err = score.Load(*in, score.ByChannel); err != nil {
			return err
		}
	}
	logger.Infof("%d notes", len(notes))

	m := engine.NewMixer(logger)
	end := 0.0
	for _, n := range notes {
		if _, ok := m.Scheduler(n.Instrument); !ok {
			s, err := beat.New(cfg.SampleRate, cfg.Voices, factoryFor(n.Instrument), logger)
			if err != nil {
				return err
			}
			m.AddInstrument(n.Instrument, s)
		}
		if m.Schedule(n) {
			end = max(end, n.End())
		}
	}
	logger.Infof("instruments %v", m.Instruments())

	length := *seconds
	if length <= 0 {
		length = end + tail
	}
	samples := engine.Render(m, int(length*cfg.SampleRate))
	peak := float32(0)
	for _, s := range samples {
		peak = max(peak, s, -s)
	}
	if peak > 1 {
		logger.Warnf("peak %.2f will clip", peak)
	}
	if err := audio.WriteWAV(*out, int(cfg.SampleRate), samples); err != nil {
		return err
	}
	logger.Infof("wrote %.2fs to %s", length, *out)
	return nil
}
