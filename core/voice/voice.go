// Package voice holds the sound generators driven by a beat.Scheduler.
//
// Every variant shares the same three-state lifecycle: Idle until the first
// Play, Sounding after Play, Releasing after Stop. The envelope is evaluated
// against the time elapsed since the most recent transition.
package voice

import "math"

// Voice is a single sound generator owned by one scheduler slot.
type Voice interface {
	// Sample advances the voice by dt seconds and returns its signal.
	Sample(dt float64) float64
	// Play (re)triggers the voice at the given frequency in Hz.
	Play(pitch float64)
	// Stop moves a sounding voice into its release phase.
	Stop()
}

// Factory builds a fresh voice for one pool slot.
type Factory func() Voice

type State int

const (
	Idle State = iota
	Sounding
	Releasing
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Sounding:
		return "sounding"
	case Releasing:
		return "releasing"
	default:
		return "unknown"
	}
}

// clock tracks the two timers every variant needs. sinceOnset drives
// oscillator phase, sinceEvent drives the envelope.
type clock struct {
	sinceEvent float64
	sinceOnset float64
	state      State
}

// newClock starts both timers at MaxFloat64 so an untriggered voice sits
// far past its release tail. Oscillator phase is meaningless there (the
// product with a frequency overflows), so variants return 0 while Idle.
func newClock() clock {
	return clock{sinceEvent: math.MaxFloat64, sinceOnset: math.MaxFloat64}
}

func (c *clock) advance(dt float64) {
	c.sinceEvent += dt
	c.sinceOnset += dt
}

func (c *clock) trigger() {
	c.sinceEvent = 0
	c.sinceOnset = 0
	c.state = Sounding
}

func (c *clock) release() {
	if c.state != Sounding {
		return
	}
	c.sinceEvent = 0
	c.state = Releasing
}

func (c *clock) level(env Envelope) float64 {
	return env.Level(c.state, c.sinceEvent)
}

// State reports the lifecycle state.
func (c *clock) State() State { return c.state }
