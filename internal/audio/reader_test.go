package audio

import (
	"encoding/binary"
	"math"
	"testing"

	"github.com/ingyamilmolinar/noodle/internal/ring"
)

func TestFillSubstitutesSilence(t *testing.T) {
	buf, _ := ring.New(16)
	buf.Push(0.25)
	buf.Push(-0.5)
	r := NewRingReader(buf)
	out := []float32{9, 9, 9, 9}
	r.Fill(out)
	want := []float32{0.25, -0.5, 0, 0}
	for i := range want {
		if out[i] != want[i] {
			t.Fatalf("out = %v, want %v", out, want)
		}
	}
	if r.Underruns() != 2 {
		t.Fatalf("underruns = %d, want 2", r.Underruns())
	}
}

func TestFillClips(t *testing.T) {
	buf, _ := ring.New(4)
	buf.Push(2)
	buf.Push(-7)
	r := NewRingReader(buf)
	out := make([]float32, 2)
	r.Fill(out)
	if out[0] != 1 || out[1] != -1 {
		t.Fatalf("clipped = %v", out)
	}
	if r.Underruns() != 0 {
		t.Fatalf("unexpected underruns %d", r.Underruns())
	}
}

func TestReadEncodesFloat32LE(t *testing.T) {
	buf, _ := ring.New(8)
	buf.Push(0.5)
	r := NewRingReader(buf)
	p := make([]byte, 10) // two whole samples and a stray byte
	n, err := r.Read(p)
	if err != nil || n != 8 {
		t.Fatalf("Read = %d, %v", n, err)
	}
	if v := math.Float32frombits(binary.LittleEndian.Uint32(p[0:])); v != 0.5 {
		t.Fatalf("first sample = %v", v)
	}
	if v := math.Float32frombits(binary.LittleEndian.Uint32(p[4:])); v != 0 {
		t.Fatalf("underrun sample = %v", v)
	}
}

func TestReadGrowsScratch(t *testing.T) {
	buf, _ := ring.New(4)
	r := NewRingReader(buf)
	p := make([]byte, 4*4096)
	if n, _ := r.Read(p); n != len(p) {
		t.Fatalf("Read = %d, want %d", n, len(p))
	}
	if r.Underruns() != 4096 {
		t.Fatalf("underruns = %d", r.Underruns())
	}
}
