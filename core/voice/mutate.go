package voice

import "math/rand/v2"

// DefaultSpread perturbs each register by up to ±20%.
const DefaultSpread = 0.2

// Mutate returns an untriggered child of g whose initial snapshot has every
// register scaled by a factor drawn uniformly from [1-spread, 1+spread).
// The program and g itself are left untouched.
func Mutate(g *Graph, rng *rand.Rand, spread float64) *Graph {
	child := g.Clone()
	for i := range child.initial {
		child.initial[i] *= 1 + spread*(2*rng.Float64()-1)
	}
	copy(child.regs, child.initial)
	return child
}
