//go:build !headless

package audio

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	pa "github.com/gordonklaus/portaudio"

	game_log "github.com/ingyamilmolinar/noodle/internal/log"
	"github.com/ingyamilmolinar/noodle/internal/ring"
)

// PortAudioSink drains a ring buffer from a portaudio callback.
type PortAudioSink struct {
	stream *pa.Stream
	reader *RingReader
	logger *game_log.Logger
}

func NewPortAudioSink(sampleRate float64, frames int, buf *ring.Buffer, logger *game_log.Logger) (*PortAudioSink, error) {
	if err := pa.Initialize(); err != nil {
		return nil, fmt.Errorf("portaudio: initialize: %w", err)
	}
	s := &PortAudioSink{
		reader: NewRingReader(buf),
		logger: game_log.OrDiscard(logger).With("portaudio"),
	}
	stream, err := pa.OpenDefaultStream(0, 1, sampleRate, frames, s.reader.Fill)
	if err != nil {
		pa.Terminate()
		return nil, fmt.Errorf("portaudio: open stream: %w", err)
	}
	s.stream = stream
	return s, nil
}

func (s *PortAudioSink) Start() error {
	if err := s.stream.Start(); err != nil {
		return fmt.Errorf("portaudio: start: %w", err)
	}
	s.logger.Infof("callback stream started")
	return nil
}

func (s *PortAudioSink) Close() error {
	s.logger.Infof("closing after %d underrun samples", s.reader.Underruns())
	err := s.stream.Close()
	if terr := pa.Terminate(); err == nil {
		err = terr
	}
	return err
}

func (s *PortAudioSink) Underruns() uint64 { return s.reader.Underruns() }

// BlockingSink pulls samples synchronously from a Source just before
// writing them, checking how much the device can take first.
type BlockingSink struct {
	stream     *pa.Stream
	out        []float32
	poll       time.Duration
	xruns      atomic.Uint64
	logger     *game_log.Logger
	sampleRate float64
}

func NewBlockingSink(sampleRate float64, frames int, logger *game_log.Logger) (*BlockingSink, error) {
	if err := pa.Initialize(); err != nil {
		return nil, fmt.Errorf("portaudio: initialize: %w", err)
	}
	s := &BlockingSink{
		out:        make([]float32, frames),
		poll:       time.Duration(float64(frames) / sampleRate / 2 * float64(time.Second)),
		logger:     game_log.OrDiscard(logger).With("portaudio"),
		sampleRate: sampleRate,
	}
	stream, err := pa.OpenDefaultStream(0, 1, sampleRate, frames, &s.out)
	if err != nil {
		pa.Terminate()
		return nil, fmt.Errorf("portaudio: open blocking stream: %w", err)
	}
	s.stream = stream
	return s, nil
}

func isXrun(err error) bool {
	return errors.Is(err, pa.OutputUnderflowed) || errors.Is(err, pa.InputOverflowed)
}

// Run writes src to the device until ctx is done. Device underflow and
// overflow reports are counted and the affected write is skipped.
func (s *BlockingSink) Run(ctx context.Context, src Source) error {
	if err := s.stream.Start(); err != nil {
		return fmt.Errorf("portaudio: start: %w", err)
	}
	defer s.stream.Stop()
	s.logger.Infof("blocking stream started at %.0fHz, %d frames", s.sampleRate, len(s.out))
	for {
		select {
		case <-ctx.Done():
			return nil
		default:
		}
		avail, err := s.stream.AvailableToWrite()
		switch {
		case isXrun(err):
			s.xruns.Add(1)
			avail = 0
		case err != nil:
			return fmt.Errorf("portaudio: available: %w", err)
		}
		if avail < len(s.out) {
			time.Sleep(s.poll)
			continue
		}
		for i := range s.out {
			s.out[i] = Clip(float32(src.Sample()))
		}
		if err := s.stream.Write(); err != nil {
			if isXrun(err) {
				s.xruns.Add(1)
				continue
			}
			return fmt.Errorf("portaudio: write: %w", err)
		}
	}
}

// Xruns counts underflow/overflow reports from the device.
func (s *BlockingSink) Xruns() uint64 { return s.xruns.Load() }

func (s *BlockingSink) Close() error {
	s.logger.Infof("closing after %d xruns", s.Xruns())
	err := s.stream.Close()
	if terr := pa.Terminate(); err == nil {
		err = terr
	}
	return err
}
