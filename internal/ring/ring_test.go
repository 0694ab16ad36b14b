package ring

import (
	"errors"
	"sync"
	"testing"
)

func TestNewRejectsZero(t *testing.T) {
	if _, err := New(0); !errors.Is(err, ErrCapacity) {
		t.Fatalf("expected ErrCapacity, got %v", err)
	}
}

func TestPushPopFIFO(t *testing.T) {
	b, _ := New(4)
	for i := 0; i < 4; i++ {
		if !b.Push(float32(i)) {
			t.Fatalf("push %d failed", i)
		}
	}
	if b.Push(99) {
		t.Fatalf("push into full buffer succeeded")
	}
	if !b.Full() || b.Len() != 4 {
		t.Fatalf("Full=%v Len=%d", b.Full(), b.Len())
	}
	for i := 0; i < 4; i++ {
		v, ok := b.Pop()
		if !ok || v != float32(i) {
			t.Fatalf("pop %d = %v,%v", i, v, ok)
		}
	}
	if _, ok := b.Pop(); ok {
		t.Fatalf("pop from empty buffer succeeded")
	}
}

func TestWrapAround(t *testing.T) {
	b, _ := New(3)
	next := float32(0)
	want := float32(0)
	for round := 0; round < 10; round++ {
		for b.Push(next) {
			next++
		}
		for i := 0; i < 2; i++ {
			v, _ := b.Pop()
			if v != want {
				t.Fatalf("round %d: got %v want %v", round, v, want)
			}
			want++
		}
	}
}

func TestDrainPartial(t *testing.T) {
	b, _ := New(8)
	for i := 0; i < 3; i++ {
		b.Push(float32(i + 1))
	}
	dst := make([]float32, 5)
	if n := b.Drain(dst); n != 3 {
		t.Fatalf("drained %d, want 3", n)
	}
	if dst[0] != 1 || dst[2] != 3 || dst[3] != 0 {
		t.Fatalf("unexpected contents %v", dst)
	}
	if b.Len() != 0 {
		t.Fatalf("buffer not empty after drain")
	}
}

func TestConcurrentProducerConsumer(t *testing.T) {
	const total = 100000
	b, _ := New(64)
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		for i := 0; i < total; {
			if b.Push(float32(i)) {
				i++
			}
		}
	}()
	dst := make([]float32, 16)
	expect := 0
	for expect < total {
		n := b.Drain(dst)
		for _, v := range dst[:n] {
			if v != float32(expect) {
				t.Fatalf("got %v want %d", v, expect)
			}
			expect++
		}
	}
	wg.Wait()
}
