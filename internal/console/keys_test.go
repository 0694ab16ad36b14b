package console

import (
	"context"
	"errors"
	"os"
	"testing"
)

func pipeWith(t *testing.T, input string) *os.File {
	t.Helper()
	r, w, err := os.Pipe()
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { r.Close() })
	go func() {
		w.WriteString(input)
		w.Close()
	}()
	return r
}

func TestRunEmitsKeysUntilEOF(t *testing.T) {
	k, err := NewKeyReader(pipeWith(t, "a;\rq"), nil)
	if err != nil {
		t.Fatalf("NewKeyReader: %v", err)
	}
	var got []rune
	if err := k.Run(context.Background(), func(r rune) { got = append(got, r) }); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if string(got) != "a;\nq" {
		t.Fatalf("keys = %q", string(got))
	}
	if err := k.Restore(); err != nil {
		t.Fatalf("Restore on a pipe: %v", err)
	}
}

func TestRunStopsOnCtrlC(t *testing.T) {
	k, _ := NewKeyReader(pipeWith(t, "x\x03y"), nil)
	var got []rune
	err := k.Run(context.Background(), func(r rune) { got = append(got, r) })
	if !errors.Is(err, ErrInterrupted) {
		t.Fatalf("expected ErrInterrupted, got %v", err)
	}
	if string(got) != "x" {
		t.Fatalf("keys = %q", string(got))
	}
}

func TestRunStopsOnCancel(t *testing.T) {
	k, _ := NewKeyReader(pipeWith(t, "abc"), nil)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := k.Run(ctx, func(rune) { t.Fatalf("emitted after cancel") }); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}
