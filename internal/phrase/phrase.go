// Package phrase writes simple note sequences into a mixer. It is the
// material the demo programs play, not part of the engine.
package phrase

import (
	"math"
	"math/rand/v2"

	"github.com/ingyamilmolinar/noodle/core/engine"
	"github.com/ingyamilmolinar/noodle/core/model"
)

var majorSteps = [7]int{2, 2, 1, 2, 2, 2, 1}

// MajorPitch is the equal-tempered frequency of a major scale degree above
// (or below, for negative degrees) tonic.
func MajorPitch(tonic float64, degree int) float64 {
	octave := degree / 7
	d := degree % 7
	if d < 0 {
		d += 7
		octave--
	}
	semis := 12 * octave
	for i := 0; i < d; i++ {
		semis += majorSteps[i]
	}
	return tonic * math.Pow(2, float64(semis)/12)
}

// Walk picks the next degree from the current one.
type Walk func(degree int) int

// Ascend cycles through the first n degrees.
func Ascend(n int) Walk {
	return func(d int) int { return (d + 1) % n }
}

// Wander moves up, down or stays put at random, clamped to [lo, hi].
func Wander(rng *rand.Rand, lo, hi int) Walk {
	return func(d int) int {
		d += rng.IntN(3) - 1
		return max(lo, min(hi, d))
	}
}

// Composer schedules Notes evenly spaced notes each time it refills.
type Composer struct {
	Instrument int
	Tonic      float64
	Notes      int
	Spacing    float64
	Duration   float64
	Walk       Walk

	degree int
}

// Refill schedules the next phrase. Onsets start at the instrument's
// current clock so a long-running scheduler keeps playing.
func (c *Composer) Refill(m *engine.Mixer) {
	s, ok := m.Scheduler(c.Instrument)
	if !ok {
		return
	}
	start := s.Clock()
	for i := 0; i < c.Notes; i++ {
		m.Schedule(model.NoteEvent{
			Instrument: c.Instrument,
			Pitch:      MajorPitch(c.Tonic, c.degree),
			Onset:      start + float64(i)*c.Spacing,
			Duration:   c.Duration,
			Amplitude:  1,
		})
		c.degree = c.Walk(c.degree)
	}
}

// Degree is the degree the next note will use.
func (c *Composer) Degree() int { return c.degree }
