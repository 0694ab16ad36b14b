package voice

// ADS is the attack-decay-sustain shape: a ramp 0→1 over attack, 1→sustain
// over decay, then flat at sustain.
func ADS(attack, decay, sustain, t float64) float64 {
	switch {
	case t <= attack:
		if attack <= 0 {
			return 1
		}
		return t / attack
	case t <= attack+decay:
		m := -(1 - sustain) / decay
		return 1 + m*(t-attack)
	default:
		return sustain
	}
}

// SR is the release shape: a ramp sustain→0 over release, then silence.
func SR(sustain, release, t float64) float64 {
	if t > release {
		return 0
	}
	if release <= 0 {
		return sustain
	}
	return sustain - sustain/release*t
}

// Envelope bundles the four parameters of the shared ADS/SR model.
type Envelope struct {
	Attack  float64 `json:"attack" yaml:"attack"`
	Decay   float64 `json:"decay" yaml:"decay"`
	Sustain float64 `json:"sustain" yaml:"sustain"`
	Release float64 `json:"release" yaml:"release"`
}

// Level returns ADS while sounding and SR otherwise. Idle voices have
// timers far past the release so they evaluate to zero.
func (e Envelope) Level(s State, t float64) float64 {
	if s == Sounding {
		return ADS(e.Attack, e.Decay, e.Sustain, t)
	}
	return SR(e.Sustain, e.Release, t)
}
