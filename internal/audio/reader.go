// Package audio connects the engine to things that consume samples: audio
// devices and WAV files.
package audio

import (
	"encoding/binary"
	"math"
	"sync/atomic"

	"github.com/ingyamilmolinar/noodle/internal/ring"
)

// Source produces one mono sample per call. *engine.Engine and
// *engine.Mixer both satisfy it.
type Source interface {
	Sample() float64
}

// Clip limits s to [-1, 1].
func Clip(s float32) float32 {
	if s > 1 {
		return 1
	} else if s < -1 {
		return -1
	}
	return s
}

// RingReader is the realtime side of buffered playback. It only drains the
// ring; any shortfall becomes silence and is counted, never waited for.
type RingReader struct {
	buf       *ring.Buffer
	scratch   []float32
	underruns atomic.Uint64
}

func NewRingReader(buf *ring.Buffer) *RingReader {
	return &RingReader{buf: buf, scratch: make([]float32, 1024)}
}

// Fill writes len(out) clipped samples, padding with zeros on underrun.
func (r *RingReader) Fill(out []float32) {
	n := r.buf.Drain(out)
	for i := 0; i < n; i++ {
		out[i] = Clip(out[i])
	}
	if n < len(out) {
		clear(out[n:])
		r.underruns.Add(uint64(len(out) - n))
	}
}

// Read implements io.Reader as little-endian float32 mono PCM, the format
// oto is opened with.
func (r *RingReader) Read(p []byte) (int, error) {
	numSamples := len(p) / 4
	if len(r.scratch) < numSamples {
		r.scratch = make([]float32, numSamples)
	}
	samples := r.scratch[:numSamples]
	r.Fill(samples)
	for i, s := range samples {
		binary.LittleEndian.PutUint32(p[4*i:], math.Float32bits(s))
	}
	return numSamples * 4, nil
}

// Underruns is the number of samples replaced by silence so far.
func (r *RingReader) Underruns() uint64 { return r.underruns.Load() }
