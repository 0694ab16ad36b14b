// Package score turns Standard MIDI Files into engine notes.
package score

import (
	"errors"
	"fmt"
	"math"
	"sort"

	"gitlab.com/gomidi/midi/v2"
	"gitlab.com/gomidi/midi/v2/smf"

	"github.com/ingyamilmolinar/noodle/core/model"
)

var ErrNoTiming = errors.New("score: only metric (ticks per quarter) timing is supported")

const defaultBPM = 120.0

// Router maps a MIDI channel to an instrument id.
type Router func(channel uint8) int

// ByChannel routes each channel to the instrument with the same number.
func ByChannel(channel uint8) int { return int(channel) }

// KeyToHz is equal temperament with A4 (key 69) at 440Hz.
func KeyToHz(key uint8) float64 {
	return 440 * math.Pow(2, (float64(key)-69)/12)
}

type tempoChange struct {
	tick uint64
	bpm  float64
}

// tempoMap converts absolute ticks to seconds.
type tempoMap struct {
	resolution float64
	changes    []tempoChange
}

func (m tempoMap) seconds(tick uint64) float64 {
	var secs float64
	last := tempoChange{0, defaultBPM}
	for _, c := range m.changes {
		if c.tick >= tick {
			break
		}
		secs += float64(c.tick-last.tick) * 60 / (last.bpm * m.resolution)
		last = c
	}
	return secs + float64(tick-last.tick)*60/(last.bpm*m.resolution)
}

type openNote struct {
	start uint64
	vel   uint8
}

// FromSMF extracts every note of s. Onsets are seconds from the start of
// the file; notes still held at the end of their track are closed there.
func FromSMF(s *smf.SMF, route Router) ([]model.NoteEvent, error) {
	mt, ok := s.TimeFormat.(smf.MetricTicks)
	if !ok {
		return nil, ErrNoTiming
	}
	if route == nil {
		route = ByChannel
	}
	tm := tempoMap{resolution: float64(mt.Resolution())}
	for _, tr := range s.Tracks {
		var abs uint64
		for _, ev := range tr {
			abs += uint64(ev.Delta)
			var bpm float64
			if ev.Message.GetMetaTempo(&bpm) && bpm > 0 {
				tm.changes = append(tm.changes, tempoChange{abs, bpm})
			}
		}
	}
	sort.SliceStable(tm.changes, func(i, j int) bool { return tm.changes[i].tick < tm.changes[j].tick })

	var notes []model.NoteEvent
	emit := func(ch, key uint8, on openNote, end uint64) {
		onset := tm.seconds(on.start)
		dur := tm.seconds(end) - onset
		if dur <= 0 {
			return
		}
		notes = append(notes, model.NoteEvent{
			Instrument: route(ch),
			Pitch:      KeyToHz(key),
			Onset:      onset,
			Duration:   dur,
			Amplitude:  float64(on.vel) / 127,
		})
	}
	for _, tr := range s.Tracks {
		var abs uint64
		open := map[[2]uint8]openNote{}
		for _, ev := range tr {
			abs += uint64(ev.Delta)
			msg := midi.Message(ev.Message)
			var ch, key, vel uint8
			switch {
			case msg.GetNoteStart(&ch, &key, &vel):
				id := [2]uint8{ch, key}
				if prev, held := open[id]; held {
					emit(ch, key, prev, abs)
				}
				open[id] = openNote{start: abs, vel: vel}
			case msg.GetNoteEnd(&ch, &key):
				id := [2]uint8{ch, key}
				if on, held := open[id]; held {
					emit(ch, key, on, abs)
					delete(open, id)
				}
			}
		}
		held := make([][2]uint8, 0, len(open))
		for id := range open {
			held = append(held, id)
		}
		sort.Slice(held, func(i, j int) bool {
			return held[i][0] < held[j][0] || (held[i][0] == held[j][0] && held[i][1] < held[j][1])
		})
		for _, id := range held {
			emit(id[0], id[1], open[id], abs)
		}
	}
	sort.SliceStable(notes, func(i, j int) bool { return notes[i].Onset < notes[j].Onset })
	return notes, nil
}

// Load reads a .mid file and extracts its notes.
func Load(path string, route Router) ([]model.NoteEvent, error) {
	s, err := smf.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("score: read %s: %w", path, err)
	}
	return FromSMF(s, route)
}
