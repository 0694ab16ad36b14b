// Package console reads single key presses from a terminal.
package console

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"golang.org/x/term"

	game_log "github.com/ingyamilmolinar/noodle/internal/log"
)

// ErrInterrupted is returned by Run when Ctrl-C arrives in raw mode.
var ErrInterrupted = errors.New("console: interrupted")

const ctrlC = 0x03

// KeyReader puts a terminal into raw mode so keys arrive without Enter.
// Non-terminal inputs (pipes, files) are read as-is.
type KeyReader struct {
	in     *os.File
	fd     int
	old    *term.State
	logger *game_log.Logger
}

func NewKeyReader(in *os.File, logger *game_log.Logger) (*KeyReader, error) {
	k := &KeyReader{
		in:     in,
		fd:     int(in.Fd()),
		logger: game_log.OrDiscard(logger).With("console"),
	}
	if !term.IsTerminal(k.fd) {
		k.logger.Debugf("input is not a terminal, reading lines")
		return k, nil
	}
	old, err := term.MakeRaw(k.fd)
	if err != nil {
		return nil, fmt.Errorf("console: raw mode: %w", err)
	}
	k.old = old
	return k, nil
}

// Run calls emit for every key until ctx is done, input ends, or Ctrl-C is
// read. Carriage returns are reported as '\n'.
func (k *KeyReader) Run(ctx context.Context, emit func(rune)) error {
	r := bufio.NewReader(k.in)
	for {
		ch, _, err := r.ReadRune()
		if err != nil {
			if errors.Is(err, io.EOF) {
				return nil
			}
			return fmt.Errorf("console: read: %w", err)
		}
		switch ch {
		case ctrlC:
			return ErrInterrupted
		case '\r':
			ch = '\n'
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}
		emit(ch)
	}
}

// Restore leaves raw mode. It is safe to call more than once.
func (k *KeyReader) Restore() error {
	if k.old == nil {
		return nil
	}
	err := term.Restore(k.fd, k.old)
	k.old = nil
	return err
}
