package voice

import (
	"errors"
	"fmt"
	"math"
)

// ErrBadProgram is returned when a register program references registers
// that do not exist or uses an operation with the wrong number of operands.
var ErrBadProgram = errors.New("bad graph program")

// OpKind selects what an Op does to the register file.
type OpKind uint8

const (
	// OpSine: regs[out] = sin(2π·regs[freq]·t + regs[phase]), t since onset.
	OpSine OpKind = iota + 1
	// OpCopy: regs[dst] = regs[src].
	OpCopy
	// OpMul: regs[out] = regs[a]·regs[b].
	OpMul
	// OpScale: regs[out] = regs[in]·(1 + regs[x]).
	OpScale
	// OpAdd: regs[out] = regs[a] + regs[b].
	OpAdd
	// OpEnv: regs[acc] *= envelope(regs[attack], regs[decay], regs[sustain], regs[release]).
	OpEnv
)

var opNames = map[OpKind]string{
	OpSine:  "sine",
	OpCopy:  "copy",
	OpMul:   "mul",
	OpScale: "scale",
	OpAdd:   "add",
	OpEnv:   "env",
}

var opArity = map[OpKind]int{
	OpSine:  3,
	OpCopy:  2,
	OpMul:   3,
	OpScale: 3,
	OpAdd:   3,
	OpEnv:   5,
}

func (k OpKind) String() string {
	if n, ok := opNames[k]; ok {
		return n
	}
	return fmt.Sprintf("op(%d)", uint8(k))
}

// ParseOpKind is the inverse of OpKind.String.
func ParseOpKind(s string) (OpKind, error) {
	for k, n := range opNames {
		if n == s {
			return k, nil
		}
	}
	return 0, fmt.Errorf("%w: unknown op %q", ErrBadProgram, s)
}

// Op is one instruction of a graph program. Regs holds register indices in
// the operand order documented on each OpKind.
type Op struct {
	Kind OpKind
	Regs []int
}

func Sine(freq, phase, out int) Op { return Op{OpSine, []int{freq, phase, out}} }
func Copy(src, dst int) Op         { return Op{OpCopy, []int{src, dst}} }
func Mul(a, b, out int) Op         { return Op{OpMul, []int{a, b, out}} }
func Scale(x, in, out int) Op      { return Op{OpScale, []int{x, in, out}} }
func Add(a, b, out int) Op         { return Op{OpAdd, []int{a, b, out}} }
func Env(a, d, s, r, acc int) Op   { return Op{OpEnv, []int{a, d, s, r, acc}} }

// PitchReg is the register Play writes the triggered frequency to.
const PitchReg = 0

// Graph is a programmable voice: a register file and a fixed list of
// operations run in order on every sample. The last register is the output.
//
// The initial snapshot is restored on every Play, so two voices built from
// the same snapshot and program produce identical audio for identical
// triggers.
type Graph struct {
	clock
	amp     float64
	initial []float64
	regs    []float64
	ops     []Op
}

func NewGraph(amp float64, registers []float64, ops []Op) (*Graph, error) {
	if len(registers) < 2 {
		return nil, fmt.Errorf("%w: need at least 2 registers, got %d", ErrBadProgram, len(registers))
	}
	for i, v := range registers {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return nil, fmt.Errorf("%w: register %d is %v", ErrBadProgram, i, v)
		}
	}
	prog := make([]Op, len(ops))
	for i, op := range ops {
		want, ok := opArity[op.Kind]
		if !ok {
			return nil, fmt.Errorf("%w: op %d has unknown kind %d", ErrBadProgram, i, op.Kind)
		}
		if len(op.Regs) != want {
			return nil, fmt.Errorf("%w: op %d (%s) wants %d registers, got %d", ErrBadProgram, i, op.Kind, want, len(op.Regs))
		}
		for _, r := range op.Regs {
			if r < 0 || r >= len(registers) {
				return nil, fmt.Errorf("%w: op %d (%s) register %d out of range [0,%d)", ErrBadProgram, i, op.Kind, r, len(registers))
			}
		}
		prog[i] = Op{Kind: op.Kind, Regs: append([]int(nil), op.Regs...)}
	}
	g := &Graph{
		clock:   newClock(),
		amp:     amp,
		initial: append([]float64(nil), registers...),
		regs:    make([]float64, len(registers)),
		ops:     prog,
	}
	copy(g.regs, g.initial)
	return g, nil
}

func (g *Graph) Play(pitch float64) {
	copy(g.regs, g.initial)
	g.regs[PitchReg] = pitch
	g.trigger()
}

func (g *Graph) Stop() { g.release() }

func (g *Graph) Sample(dt float64) float64 {
	g.advance(dt)
	if g.state == Idle {
		return 0
	}
	r := g.regs
	for _, op := range g.ops {
		a := op.Regs
		switch op.Kind {
		case OpSine:
			r[a[2]] = math.Sin(2*math.Pi*r[a[0]]*g.sinceOnset + r[a[1]])
		case OpCopy:
			r[a[1]] = r[a[0]]
		case OpMul:
			r[a[2]] = r[a[0]] * r[a[1]]
		case OpScale:
			r[a[2]] = r[a[1]] * (1 + r[a[0]])
		case OpAdd:
			r[a[2]] = r[a[0]] + r[a[1]]
		case OpEnv:
			env := Envelope{Attack: r[a[0]], Decay: r[a[1]], Sustain: r[a[2]], Release: r[a[3]]}
			r[a[4]] *= g.level(env)
		}
	}
	return r[len(r)-1] * g.amp
}

// Amp is the voice-level output gain.
func (g *Graph) Amp() float64 { return g.amp }

// Snapshot returns a copy of the initial register values.
func (g *Graph) Snapshot() []float64 { return append([]float64(nil), g.initial...) }

// Ops returns a copy of the program.
func (g *Graph) Ops() []Op {
	out := make([]Op, len(g.ops))
	for i, op := range g.ops {
		out[i] = Op{Kind: op.Kind, Regs: append([]int(nil), op.Regs...)}
	}
	return out
}

// Clone returns an untriggered voice with the same snapshot and program.
func (g *Graph) Clone() *Graph {
	c := &Graph{
		clock:   newClock(),
		amp:     g.amp,
		initial: append([]float64(nil), g.initial...),
		regs:    make([]float64, len(g.initial)),
		ops:     g.ops, // never mutated after NewGraph
	}
	copy(c.regs, c.initial)
	return c
}

// Factory returns a voice.Factory producing clones of g.
func (g *Graph) Factory() Factory {
	return func() Voice { return g.Clone() }
}

// Registers of the DefaultGraph patch.
const (
	fmPitch = iota
	fmRatio
	fmModFreq
	fmPhase
	fmModOut
	fmIndex
	fmModScaled
	fmCarrierFreq
	fmAttack
	fmDecay
	fmSustain
	fmRelease
	fmOut
	fmRegisters
)

// DefaultGraph is a two-operator FM patch: a modulator at pitch·ratio bends
// the carrier frequency by ±index, and the carrier runs through the envelope.
func DefaultGraph(amp float64) *Graph {
	regs := make([]float64, fmRegisters)
	regs[fmPitch] = 440
	regs[fmRatio] = 2
	regs[fmIndex] = 0.5
	regs[fmAttack] = 0.01
	regs[fmDecay] = 0.1
	regs[fmSustain] = 0.6
	regs[fmRelease] = 0.3
	g, err := NewGraph(amp, regs, []Op{
		Mul(fmPitch, fmRatio, fmModFreq),
		Sine(fmModFreq, fmPhase, fmModOut),
		Mul(fmModOut, fmIndex, fmModScaled),
		Scale(fmModScaled, fmPitch, fmCarrierFreq),
		Sine(fmCarrierFreq, fmPhase, fmOut),
		Env(fmAttack, fmDecay, fmSustain, fmRelease, fmOut),
	})
	if err != nil {
		panic(err)
	}
	return g
}
