//go:build headless

package audio

import (
	"context"
	"errors"
	"time"

	game_log "github.com/ingyamilmolinar/noodle/internal/log"
	"github.com/ingyamilmolinar/noodle/internal/ring"
)

// ErrNoDevice is returned by every device sink in headless builds.
var ErrNoDevice = errors.New("audio: built without device support")

type OtoSink struct{}

func NewOtoSink(int, *ring.Buffer, time.Duration, *game_log.Logger) (*OtoSink, error) {
	return nil, ErrNoDevice
}

func (*OtoSink) Start() error      { return ErrNoDevice }
func (*OtoSink) Close() error      { return nil }
func (*OtoSink) Underruns() uint64 { return 0 }

type PortAudioSink struct{}

func NewPortAudioSink(float64, int, *ring.Buffer, *game_log.Logger) (*PortAudioSink, error) {
	return nil, ErrNoDevice
}

func (*PortAudioSink) Start() error      { return ErrNoDevice }
func (*PortAudioSink) Close() error      { return nil }
func (*PortAudioSink) Underruns() uint64 { return 0 }

type BlockingSink struct{}

func NewBlockingSink(float64, int, *game_log.Logger) (*BlockingSink, error) {
	return nil, ErrNoDevice
}

func (*BlockingSink) Run(context.Context, Source) error { return ErrNoDevice }
func (*BlockingSink) Xruns() uint64                     { return 0 }
func (*BlockingSink) Close() error                      { return nil }
