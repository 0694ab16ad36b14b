package engine

import (
	"fmt"
	"sort"

	"github.com/ingyamilmolinar/noodle/core/beat"
	"github.com/ingyamilmolinar/noodle/core/model"
	game_log "github.com/ingyamilmolinar/noodle/internal/log"
)

// MasterGain keeps the summed instruments in range as more are added.
const MasterGain = 0.1

// Mixer owns one scheduler per instrument id and sums them each tick.
type Mixer struct {
	instruments map[int]*beat.Scheduler
	order       []int // ascending ids, so summation order is stable
	logger      *game_log.Logger
}

func NewMixer(logger *game_log.Logger) *Mixer {
	return &Mixer{
		instruments: map[int]*beat.Scheduler{},
		logger:      game_log.OrDiscard(logger).With("mixer"),
	}
}

// AddInstrument registers s under id, replacing any scheduler already there.
func (m *Mixer) AddInstrument(id int, s *beat.Scheduler) {
	if _, exists := m.instruments[id]; !exists {
		m.order = append(m.order, id)
		sort.Ints(m.order)
	} else {
		m.logger.Infof("replacing instrument %d", id)
	}
	m.instruments[id] = s
	m.logger.Debugf("instrument %d: %d voices at %.0fHz", id, s.Voices(), s.SampleRate())
}

// Schedule routes n to its instrument. An unknown instrument id means the
// composer and the mixer were wired inconsistently, so it panics.
func (m *Mixer) Schedule(n model.NoteEvent) bool {
	s, ok := m.instruments[n.Instrument]
	if !ok {
		panic(fmt.Sprintf("engine: note for unknown instrument %d (have %v)", n.Instrument, m.order))
	}
	return s.Schedule(n)
}

// Sample advances every instrument one tick and returns the attenuated sum.
func (m *Mixer) Sample() float64 {
	var sum float64
	for _, id := range m.order {
		sum += m.instruments[id].Sample()
	}
	return sum * MasterGain
}

// Exhausted is true when no instrument has pending notes.
func (m *Mixer) Exhausted() bool {
	for _, s := range m.instruments {
		if !s.Exhausted() {
			return false
		}
	}
	return true
}

func (m *Mixer) Reset() {
	for _, s := range m.instruments {
		s.Reset()
	}
}

// Scheduler returns the scheduler registered under id.
func (m *Mixer) Scheduler(id int) (*beat.Scheduler, bool) {
	s, ok := m.instruments[id]
	return s, ok
}

// Instruments lists the registered ids in ascending order.
func (m *Mixer) Instruments() []int {
	return append([]int(nil), m.order...)
}

func (m *Mixer) Len() int { return len(m.order) }

// Render pulls n samples synchronously, for offline use.
func Render(m *Mixer, n int) []float32 {
	out := make([]float32, n)
	for i := range out {
		out[i] = float32(m.Sample())
	}
	return out
}
