package voice

import "math"

// BellEnvelope rings on for a while after release.
var BellEnvelope = Envelope{Attack: 0.01, Decay: 0.01, Sustain: 0.7, Release: 0.3}

// BellPartials are the inharmonic frequency ratios summed by Bell.
var BellPartials = [10]float64{1.0, 2.23, 3.73, 4.81, 5.43, 6.24, 7.35, 8.12, 9.44, 10.21}

// bellWeights[k] = 1/2^(k+1)
var bellWeights = func() [10]float64 {
	var w [10]float64
	for i := range w {
		w[i] = 1 / math.Pow(2, float64(i+1))
	}
	return w
}()

// Bell is an additive voice: ten partials of the last triggered pitch,
// each halving in weight, under one envelope.
type Bell struct {
	clock
	Amp   float64
	Env   Envelope
	pitch float64
}

func NewBell(amp float64) *Bell {
	return &Bell{clock: newClock(), Amp: amp, Env: BellEnvelope, pitch: 440}
}

func (b *Bell) Sample(dt float64) float64 {
	b.advance(dt)
	amp := b.Amp * b.level(b.Env)
	if amp <= 0 {
		return 0
	}
	var sample float64
	for i, m := range BellPartials {
		sample += math.Sin(b.pitch*m*b.sinceOnset*2*math.Pi) * amp * bellWeights[i]
	}
	return sample
}

func (b *Bell) Play(pitch float64) {
	b.trigger()
	b.pitch = pitch
}

func (b *Bell) Stop() { b.release() }

// Pitch is the most recently triggered frequency.
func (b *Bell) Pitch() float64 { return b.pitch }
