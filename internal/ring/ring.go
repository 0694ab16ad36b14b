// Package ring is a bounded single-producer/single-consumer sample queue.
//
// Exactly one goroutine may call Push and exactly one may call Pop/Drain.
// Neither side ever blocks or takes a lock.
package ring

import (
	"errors"
	"fmt"
	"sync/atomic"
)

var ErrCapacity = errors.New("ring capacity must be positive")

type Buffer struct {
	data []float32
	// head is the next index to read, tail the next to write. Both only
	// grow; slots are addressed modulo len(data).
	head atomic.Uint64
	_    [56]byte // keep producer and consumer counters on separate cache lines
	tail atomic.Uint64
}

func New(capacity int) (*Buffer, error) {
	if capacity <= 0 {
		return nil, fmt.Errorf("%w: %d", ErrCapacity, capacity)
	}
	return &Buffer{data: make([]float32, capacity)}, nil
}

// Push appends v, returning false if the buffer is full. Producer only.
func (b *Buffer) Push(v float32) bool {
	tail := b.tail.Load()
	if tail-b.head.Load() >= uint64(len(b.data)) {
		return false
	}
	b.data[tail%uint64(len(b.data))] = v
	b.tail.Store(tail + 1)
	return true
}

// Pop removes the oldest sample. Consumer only.
func (b *Buffer) Pop() (float32, bool) {
	head := b.head.Load()
	if head == b.tail.Load() {
		return 0, false
	}
	v := b.data[head%uint64(len(b.data))]
	b.head.Store(head + 1)
	return v, true
}

// Drain fills dst with as many queued samples as are available and returns
// how many were copied. Consumer only.
func (b *Buffer) Drain(dst []float32) int {
	head := b.head.Load()
	avail := b.tail.Load() - head
	n := uint64(len(dst))
	if avail < n {
		n = avail
	}
	size := uint64(len(b.data))
	for i := uint64(0); i < n; i++ {
		dst[i] = b.data[(head+i)%size]
	}
	b.head.Store(head + n)
	return int(n)
}

// Len is the number of queued samples. From either side it is a snapshot
// that may be stale by the time it is used.
func (b *Buffer) Len() int {
	return int(b.tail.Load() - b.head.Load())
}

func (b *Buffer) Cap() int { return len(b.data) }

func (b *Buffer) Full() bool { return b.Len() >= len(b.data) }
