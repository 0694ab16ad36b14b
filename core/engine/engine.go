package engine

import (
	"context"
	"errors"
	"fmt"
	"time"

	game_log "github.com/ingyamilmolinar/noodle/internal/log"
	"github.com/ingyamilmolinar/noodle/internal/ring"
)

type ControlKind int

const (
	// ControlRegenerate asks for the current material to be replaced.
	ControlRegenerate ControlKind = iota + 1
	// ControlKey forwards a raw key press.
	ControlKey
)

// Control is an event from outside the production loop.
type Control struct {
	Kind ControlKind
	Key  rune
}

const defaultIdle = 5 * time.Millisecond

// Options configures the production loop.
type Options struct {
	// LowWater is the queue length below which the loop refills the
	// buffer to capacity. Zero means half the capacity.
	LowWater int
	// Idle is how long the loop sleeps when the buffer is above LowWater.
	Idle time.Duration
	// Refill is called with the mixer whenever it runs out of notes, before
	// the buffer is topped up.
	Refill func(m *Mixer)
	// OnControl handles one control event. A non-nil return value replaces
	// the mixer.
	OnControl func(c Control) *Mixer
}

// Engine is the non-realtime side of playback: it computes samples ahead
// of need into a ring buffer that a realtime callback drains.
//
// Everything except Send must be called from the goroutine running the
// loop.
type Engine struct {
	mixer   *Mixer
	buf     *ring.Buffer
	control chan Control
	opts    Options
	logger  *game_log.Logger
}

func New(m *Mixer, buf *ring.Buffer, opts Options, logger *game_log.Logger) (*Engine, error) {
	if m == nil {
		return nil, errors.New("engine: nil mixer")
	}
	if buf == nil {
		return nil, errors.New("engine: nil sample buffer")
	}
	if opts.LowWater == 0 {
		opts.LowWater = buf.Cap() / 2
	}
	if opts.LowWater < 0 || opts.LowWater > buf.Cap() {
		return nil, fmt.Errorf("engine: low-water mark %d outside [0,%d]", opts.LowWater, buf.Cap())
	}
	if opts.Idle <= 0 {
		opts.Idle = defaultIdle
	}
	return &Engine{
		mixer:   m,
		buf:     buf,
		control: make(chan Control, 1),
		opts:    opts,
		logger:  game_log.OrDiscard(logger).With("engine"),
	}, nil
}

// Send offers c to the loop without blocking. If an event is already
// waiting, c is dropped and Send returns false.
func (e *Engine) Send(c Control) bool {
	select {
	case e.control <- c:
		return true
	default:
		return false
	}
}

func (e *Engine) pollControl() {
	select {
	case c := <-e.control:
		e.logger.Debugf("control %+v", c)
		if e.opts.OnControl == nil {
			return
		}
		if m := e.opts.OnControl(c); m != nil {
			e.Replace(m)
		}
	default:
	}
}

func (e *Engine) refill() {
	if !e.mixer.Exhausted() {
		return
	}
	e.mixer.Reset()
	if e.opts.Refill != nil {
		e.opts.Refill(e.mixer)
		e.logger.Debugf("refilled mixer (exhausted=%v)", e.mixer.Exhausted())
	}
}

// Step runs one loop iteration: handle at most one control event, then, if
// the buffer is below the low-water mark, fill it to capacity. It returns
// the number of samples produced.
func (e *Engine) Step() int {
	e.pollControl()
	if e.buf.Len() >= e.opts.LowWater {
		return 0
	}
	e.refill()
	n := 0
	// only the consumer moves head, so a non-full buffer stays non-full
	for !e.buf.Full() {
		e.buf.Push(float32(e.mixer.Sample()))
		n++
	}
	return n
}

// Run loops until ctx is done, sleeping Idle between checks whenever the
// buffer is above the low-water mark.
func (e *Engine) Run(ctx context.Context) {
	timer := time.NewTimer(e.opts.Idle)
	defer timer.Stop()
	e.logger.Infof("production loop started (capacity %d, low water %d)", e.buf.Cap(), e.opts.LowWater)
	for {
		select {
		case <-ctx.Done():
			e.logger.Infof("production loop stopped")
			return
		default:
		}
		if e.Step() > 0 {
			continue
		}
		timer.Reset(e.opts.Idle)
		select {
		case <-timer.C:
		case <-ctx.Done():
			e.logger.Infof("production loop stopped")
			return
		}
	}
}

// Sample computes one sample directly, bypassing the buffer, for sinks that
// pull synchronously. Control events and refills are handled as in Step.
func (e *Engine) Sample() float64 {
	e.pollControl()
	e.refill()
	return e.mixer.Sample()
}

// Replace swaps in a new mixer.
func (e *Engine) Replace(m *Mixer) {
	e.mixer = m
	e.logger.Infof("mixer replaced (%d instruments)", m.Len())
}

func (e *Engine) Mixer() *Mixer { return e.mixer }

func (e *Engine) Buffer() *ring.Buffer { return e.buf }
