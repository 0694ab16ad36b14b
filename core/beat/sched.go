package beat

import (
	"errors"
	"fmt"
	"sort"

	"github.com/ingyamilmolinar/noodle/core/model"
	"github.com/ingyamilmolinar/noodle/core/voice"
	game_log "github.com/ingyamilmolinar/noodle/internal/log"
)

// neverBusy is the busy-until of a slot that has not been triggered yet.
const neverBusy = 100000.0

var ErrPool = errors.New("invalid voice pool")

type slot struct {
	v         voice.Voice
	busyUntil float64
}

// Scheduler drives a fixed pool of voices from a queue of notes ordered by
// onset. Its clock starts at zero and advances by 1/sampleRate per Sample.
//
// Voices are handed out round-robin regardless of whether the next slot is
// still sounding; size the pool for the polyphony you want to hear.
type Scheduler struct {
	slots      []slot
	cursor     int
	pending    []model.NoteEvent
	clock      float64
	dt         float64
	sampleRate float64
	gain       float64
	logger     *game_log.Logger
}

func New(sampleRate float64, voices int, factory voice.Factory, logger *game_log.Logger) (*Scheduler, error) {
	if !(sampleRate > 0) {
		return nil, fmt.Errorf("%w: sample rate %v", ErrPool, sampleRate)
	}
	if voices < 1 {
		return nil, fmt.Errorf("%w: need at least one voice, got %d", ErrPool, voices)
	}
	if factory == nil {
		return nil, fmt.Errorf("%w: nil voice factory", ErrPool)
	}
	s := &Scheduler{
		slots:      make([]slot, voices),
		dt:         1 / sampleRate,
		sampleRate: sampleRate,
		gain:       1,
		logger:     game_log.OrDiscard(logger).With("sched"),
	}
	for i := range s.slots {
		s.slots[i] = slot{v: factory(), busyUntil: neverBusy}
	}
	return s, nil
}

// Schedule queues n and reports whether it was accepted. Notes whose onset
// is already behind the clock, and invalid notes, are dropped.
func (s *Scheduler) Schedule(n model.NoteEvent) bool {
	if err := n.Validate(); err != nil {
		s.logger.Debugf("dropping %v: %v", n, err)
		return false
	}
	if n.Onset < s.clock {
		s.logger.Debugf("dropping late %v at clock %.4f", n, s.clock)
		return false
	}
	// first entry strictly after n keeps equal onsets in arrival order
	i := sort.Search(len(s.pending), func(i int) bool { return s.pending[i].Onset > n.Onset })
	s.pending = append(s.pending, model.NoteEvent{})
	copy(s.pending[i+1:], s.pending[i:])
	s.pending[i] = n
	return true
}

// Sample advances the clock one tick, triggers every note that has come
// due, releases expired slots and returns the summed voice output.
func (s *Scheduler) Sample() float64 {
	s.clock += s.dt
	due := 0
	for due < len(s.pending) && s.pending[due].Onset <= s.clock {
		n := s.pending[due]
		sl := &s.slots[s.cursor]
		sl.v.Play(n.Pitch)
		sl.busyUntil = s.clock + n.Duration
		s.cursor = (s.cursor + 1) % len(s.slots)
		due++
	}
	if due > 0 {
		s.pending = s.pending[due:]
	}
	var sum float64
	for i := range s.slots {
		if s.slots[i].busyUntil < s.clock {
			s.slots[i].v.Stop()
		}
	}
	for i := range s.slots {
		sum += s.slots[i].v.Sample(s.dt)
	}
	return sum * s.gain
}

// Exhausted reports whether no notes remain queued. Release tails of
// voices still sounding are not considered.
func (s *Scheduler) Exhausted() bool { return len(s.pending) == 0 }

// Reset drops all pending notes. The clock keeps running so voices that
// are still sounding continue without a phase jump.
func (s *Scheduler) Reset() {
	s.pending = s.pending[:0]
}

// Clock is the scheduler time in seconds.
func (s *Scheduler) Clock() float64 { return s.clock }

// Pending returns a copy of the queued notes in trigger order.
func (s *Scheduler) Pending() []model.NoteEvent {
	return append([]model.NoteEvent(nil), s.pending...)
}

func (s *Scheduler) SetGain(g float64) { s.gain = g }

func (s *Scheduler) Gain() float64 { return s.gain }

// Voices is the pool size.
func (s *Scheduler) Voices() int { return len(s.slots) }

func (s *Scheduler) SampleRate() float64 { return s.sampleRate }
