package engine

import (
	"context"
	"testing"
	"time"

	"github.com/ingyamilmolinar/noodle/core/beat"
	"github.com/ingyamilmolinar/noodle/core/model"
	"github.com/ingyamilmolinar/noodle/core/voice"
	"github.com/ingyamilmolinar/noodle/internal/ring"
)

func bellMixer(t *testing.T) *Mixer {
	t.Helper()
	m := NewMixer(testLogger)
	s, err := beat.New(8000, 3, func() voice.Voice { return voice.NewBell(1) }, testLogger)
	if err != nil {
		t.Fatal(err)
	}
	m.AddInstrument(0, s)
	return m
}

func phrase(m *Mixer) {
	s, _ := m.Scheduler(0)
	start := s.Clock()
	for i := 0; i < 4; i++ {
		m.Schedule(model.NoteEvent{Pitch: 220 * float64(i+1), Onset: start + float64(i)*0.01, Duration: 0.008, Amplitude: 1})
	}
}

// longPhrase outlasts every test that uses it, so it is scheduled once.
func longPhrase(m *Mixer) {
	for i := 0; i < 20; i++ {
		m.Schedule(model.NoteEvent{Pitch: 110 * float64(i%5+1), Onset: float64(i) * 0.05, Duration: 0.04, Amplitude: 1})
	}
}

func newEngine(t *testing.T, capacity, lowWater int, opts Options) *Engine {
	t.Helper()
	buf, err := ring.New(capacity)
	if err != nil {
		t.Fatal(err)
	}
	opts.LowWater = lowWater
	e, err := New(bellMixer(t), buf, opts, testLogger)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return e
}

func TestNewValidates(t *testing.T) {
	buf, _ := ring.New(4)
	if _, err := New(nil, buf, Options{}, nil); err == nil {
		t.Fatalf("nil mixer accepted")
	}
	if _, err := New(NewMixer(nil), nil, Options{}, nil); err == nil {
		t.Fatalf("nil buffer accepted")
	}
	if _, err := New(NewMixer(nil), buf, Options{LowWater: 5}, nil); err == nil {
		t.Fatalf("low-water above capacity accepted")
	}
	e, err := New(NewMixer(nil), buf, Options{}, nil)
	if err != nil || e.opts.LowWater != 2 || e.opts.Idle != defaultIdle {
		t.Fatalf("defaults not applied: %+v, %v", e, err)
	}
}

func TestStepFillsBelowLowWater(t *testing.T) {
	e := newEngine(t, 100, 40, Options{})
	if n := e.Step(); n != 100 {
		t.Fatalf("first step produced %d, want 100", n)
	}
	dst := make([]float32, 50)
	e.Buffer().Drain(dst)
	if n := e.Step(); n != 0 {
		t.Fatalf("step above low water produced %d", n)
	}
	e.Buffer().Drain(dst[:20])
	if n := e.Step(); n != 70 {
		t.Fatalf("refill step produced %d, want 70", n)
	}
}

func TestStepRefillsExhaustedMixer(t *testing.T) {
	calls := 0
	e := newEngine(t, 64, 32, Options{Refill: func(m *Mixer) {
		calls++
		phrase(m)
	}})
	e.Step()
	if calls != 1 {
		t.Fatalf("refill called %d times, want 1", calls)
	}
	dst := make([]float32, 64)
	e.Buffer().Drain(dst)
	e.Step()
	if calls != 1 {
		t.Fatalf("refill called while notes pending")
	}
	var energy float64
	for _, v := range dst {
		energy += float64(v * v)
	}
	if energy == 0 {
		t.Fatalf("refilled phrase produced silence")
	}
}

func TestSendDropsNewestWhenFull(t *testing.T) {
	var seen []Control
	e := newEngine(t, 8, 4, Options{OnControl: func(c Control) *Mixer {
		seen = append(seen, c)
		return nil
	}})
	if !e.Send(Control{Kind: ControlKey, Key: 'a'}) {
		t.Fatalf("first send rejected")
	}
	if e.Send(Control{Kind: ControlKey, Key: 'b'}) {
		t.Fatalf("second send accepted into full channel")
	}
	e.Step()
	e.Step()
	if len(seen) != 1 || seen[0].Key != 'a' {
		t.Fatalf("handled %v, want only 'a'", seen)
	}
}

func TestControlCanReplaceMixer(t *testing.T) {
	replacement := bellMixer(t)
	e := newEngine(t, 8, 4, Options{OnControl: func(c Control) *Mixer {
		if c.Kind == ControlRegenerate {
			return replacement
		}
		return nil
	}})
	e.Send(Control{Kind: ControlKey, Key: 'x'})
	e.Step()
	if e.Mixer() == replacement {
		t.Fatalf("key event replaced the mixer")
	}
	e.Send(Control{Kind: ControlRegenerate})
	e.Step()
	if e.Mixer() != replacement {
		t.Fatalf("regenerate did not replace the mixer")
	}
}

func TestRunProducesSameAudioAsDirectPull(t *testing.T) {
	e := newEngine(t, 256, 128, Options{Idle: time.Millisecond, Refill: longPhrase})
	ref := bellMixer(t)
	direct, err := New(ref, e.Buffer(), Options{Refill: longPhrase}, testLogger)
	if err != nil {
		t.Fatal(err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		e.Run(ctx)
		close(done)
	}()

	const want = 2000
	got := make([]float32, 0, want)
	dst := make([]float32, 32)
	deadline := time.After(5 * time.Second)
	for len(got) < want {
		select {
		case <-deadline:
			t.Fatalf("timed out after %d samples", len(got))
		default:
		}
		n := e.Buffer().Drain(dst)
		got = append(got, dst[:n]...)
	}
	cancel()
	<-done

	for i := 0; i < want; i++ {
		if v := float32(direct.Sample()); got[i] != v {
			t.Fatalf("sample %d: buffered %v, direct %v", i, got[i], v)
		}
	}
}
