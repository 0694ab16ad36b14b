package voice

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"gopkg.in/yaml.v3"
)

// ErrBadPreset wraps decode failures and invalid preset contents.
var ErrBadPreset = errors.New("bad preset")

// PresetOp is the serialized form of an Op.
type PresetOp struct {
	Op   string `json:"op" yaml:"op"`
	Regs []int  `json:"regs" yaml:"regs,flow"`
}

// Preset is the interchange form of a Graph: its program as tagged
// operations plus the flat initial register snapshot. Live state is not
// saved, so replaying a decoded preset reproduces the encoded graph's audio
// bit for bit.
type Preset struct {
	Amp       float64    `json:"amp" yaml:"amp"`
	Registers []float64  `json:"registers" yaml:"registers,flow"`
	Ops       []PresetOp `json:"ops" yaml:"ops"`
}

func (g *Graph) Preset() Preset {
	p := Preset{
		Amp:       g.amp,
		Registers: g.Snapshot(),
		Ops:       make([]PresetOp, len(g.ops)),
	}
	for i, op := range g.ops {
		p.Ops[i] = PresetOp{Op: op.Kind.String(), Regs: append([]int(nil), op.Regs...)}
	}
	return p
}

// FromPreset validates p and builds an untriggered Graph from it.
func FromPreset(p Preset) (*Graph, error) {
	ops := make([]Op, len(p.Ops))
	for i, po := range p.Ops {
		kind, err := ParseOpKind(po.Op)
		if err != nil {
			return nil, fmt.Errorf("%w: op %d: %w", ErrBadPreset, i, err)
		}
		ops[i] = Op{Kind: kind, Regs: po.Regs}
	}
	g, err := NewGraph(p.Amp, p.Registers, ops)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrBadPreset, err)
	}
	return g, nil
}

func EncodeJSON(w io.Writer, g *Graph) error {
	return json.NewEncoder(w).Encode(g.Preset())
}

func DecodeJSON(r io.Reader) (*Graph, error) {
	var p Preset
	if err := json.NewDecoder(r).Decode(&p); err != nil {
		return nil, fmt.Errorf("%w: json: %w", ErrBadPreset, err)
	}
	return FromPreset(p)
}

func EncodeYAML(w io.Writer, g *Graph) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(g.Preset()); err != nil {
		return err
	}
	return enc.Close()
}

func DecodeYAML(r io.Reader) (*Graph, error) {
	var p Preset
	if err := yaml.NewDecoder(r).Decode(&p); err != nil {
		return nil, fmt.Errorf("%w: yaml: %w", ErrBadPreset, err)
	}
	return FromPreset(p)
}
