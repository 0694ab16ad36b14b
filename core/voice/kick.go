package voice

import "math"

const kickFreq = 90.0

// KickEnvelope is a short percussive shape.
var KickEnvelope = Envelope{Attack: 0.005, Decay: 0.005, Sustain: 0.75, Release: 0.01}

// Kick is a fixed-frequency sine under the shared envelope. The triggered
// pitch is ignored.
type Kick struct {
	clock
	Amp float64
	Env Envelope
}

func NewKick(amp float64) *Kick {
	return &Kick{clock: newClock(), Amp: amp, Env: KickEnvelope}
}

func (k *Kick) Sample(dt float64) float64 {
	k.advance(dt)
	if k.state == Idle {
		return 0
	}
	amp := k.Amp * k.level(k.Env)
	return math.Sin(kickFreq*k.sinceOnset*2*math.Pi) * amp
}

func (k *Kick) Play(float64) { k.trigger() }

func (k *Kick) Stop() { k.release() }
