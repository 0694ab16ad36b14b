//go:build !headless

package audio

import (
	"fmt"
	"time"

	"github.com/ebitengine/oto/v3"

	game_log "github.com/ingyamilmolinar/noodle/internal/log"
	"github.com/ingyamilmolinar/noodle/internal/ring"
)

// OtoSink plays a ring buffer through oto. oto pulls from a RingReader on
// its own goroutine.
type OtoSink struct {
	ctx    *oto.Context
	player *oto.Player
	reader *RingReader
	logger *game_log.Logger
}

// NewOtoSink opens the default device. oto allows one context per process.
func NewOtoSink(sampleRate int, buf *ring.Buffer, latency time.Duration, logger *game_log.Logger) (*OtoSink, error) {
	ctx, ready, err := oto.NewContext(&oto.NewContextOptions{
		SampleRate:   sampleRate,
		ChannelCount: 1,
		Format:       oto.FormatFloat32LE,
		BufferSize:   latency,
	})
	if err != nil {
		return nil, fmt.Errorf("oto: open context: %w", err)
	}
	<-ready
	s := &OtoSink{
		ctx:    ctx,
		reader: NewRingReader(buf),
		logger: game_log.OrDiscard(logger).With("oto"),
	}
	s.player = ctx.NewPlayer(s.reader)
	return s, nil
}

func (s *OtoSink) Start() error {
	s.player.Play()
	s.logger.Infof("playing")
	return nil
}

func (s *OtoSink) Close() error {
	s.logger.Infof("closing after %d underrun samples", s.reader.Underruns())
	return s.player.Close()
}

func (s *OtoSink) Underruns() uint64 { return s.reader.Underruns() }
