package model

import (
	"errors"
	"fmt"
	"math"
)

// ErrInvalidNote is returned by Validate for notes no voice can play.
var ErrInvalidNote = errors.New("invalid note")

// NoteEvent is one scheduled note. Onset is measured on the receiving
// scheduler's own clock, in seconds from its origin.
//
// Amplitude is carried through every API but no voice reads it yet.
type NoteEvent struct {
	Instrument int     `json:"instrument"`
	Pitch      float64 `json:"pitch"`
	Onset      float64 `json:"onset"`
	Duration   float64 `json:"duration"`
	Amplitude  float64 `json:"amplitude"`
}

func (n NoteEvent) Validate() error {
	switch {
	case math.IsNaN(n.Onset) || math.IsInf(n.Onset, 0):
		return fmt.Errorf("%w: onset %v", ErrInvalidNote, n.Onset)
	case math.IsNaN(n.Pitch) || math.IsInf(n.Pitch, 0):
		return fmt.Errorf("%w: pitch %v", ErrInvalidNote, n.Pitch)
	case !(n.Duration > 0) || math.IsInf(n.Duration, 0):
		return fmt.Errorf("%w: duration %v must be > 0", ErrInvalidNote, n.Duration)
	}
	return nil
}

// End is the time the note stops sounding on its scheduler's clock.
func (n NoteEvent) End() float64 { return n.Onset + n.Duration }

func (n NoteEvent) String() string {
	return fmt.Sprintf("note{inst=%d pitch=%.2fHz onset=%.3fs dur=%.3fs amp=%.2f}",
		n.Instrument, n.Pitch, n.Onset, n.Duration, n.Amplitude)
}
