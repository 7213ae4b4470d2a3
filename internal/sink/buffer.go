package sink

import (
	"sync"
)

// growThreshold is the fill percentage at which a Buffer doubles.
const growThreshold = 70

// Buffer is a thread-safe FIFO ring that doubles its capacity when it
// reaches 70% full. Send never blocks, so producers are never throttled
// by slow consumers.
type Buffer[T any] struct {
	mu     sync.Mutex
	cond   *sync.Cond
	ring   []T
	head   int // next read
	tail   int // next write
	count  int
	closed bool

	sent     int64
	received int64
	resizes  int
}

// BufferStats contains buffer statistics.
type BufferStats struct {
	Len      int
	Cap      int
	Sent     int64 // Items accepted by Send
	Received int64 // Items handed to consumers
	Resizes  int
}

// NewBuffer creates a buffer with the given initial capacity (minimum 1).
func NewBuffer[T any](capacity int) *Buffer[T] {
	if capacity < 1 {
		capacity = 1
	}
	b := &Buffer[T]{ring: make([]T, capacity)}
	b.cond = sync.NewCond(&b.mu)
	return b
}

// Send enqueues item. Returns false if the buffer is closed.
func (b *Buffer[T]) Send(item T) bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return false
	}

	limit := len(b.ring) * growThreshold / 100
	if limit < 1 {
		limit = 1
	}
	if b.count+1 >= limit {
		b.grow()
	}

	b.ring[b.tail] = item
	b.tail = (b.tail + 1) % len(b.ring)
	b.count++
	b.sent++

	b.cond.Signal()
	return true
}

// Receive blocks until an item is available or the buffer is closed and empty.
func (b *Buffer[T]) Receive() (T, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()

	for b.count == 0 && !b.closed {
		b.cond.Wait()
	}
	if b.count == 0 {
		var zero T
		return zero, false
	}
	return b.pop(), true
}

// TryReceive returns the oldest item without blocking.
func (b *Buffer[T]) TryReceive() (T, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.count == 0 {
		var zero T
		return zero, false
	}
	return b.pop(), true
}

// DrainTo removes up to max items (all if max <= 0) in FIFO order.
// Returns nil when the buffer is empty.
func (b *Buffer[T]) DrainTo(max int) []T {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.count == 0 {
		return nil
	}

	n := b.count
	if max > 0 && max < n {
		n = max
	}
	out := make([]T, n)
	for i := range out {
		out[i] = b.pop()
	}
	return out
}

// Close stops accepting items. Pending items can still be received.
func (b *Buffer[T]) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.closed = true
	b.cond.Broadcast()
}

// Len returns the number of queued items.
func (b *Buffer[T]) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.count
}

// Stats returns buffer statistics.
func (b *Buffer[T]) Stats() BufferStats {
	b.mu.Lock()
	defer b.mu.Unlock()
	return BufferStats{
		Len:      b.count,
		Cap:      len(b.ring),
		Sent:     b.sent,
		Received: b.received,
		Resizes:  b.resizes,
	}
}

// pop removes the head item. Must be called with lock held and count > 0.
func (b *Buffer[T]) pop() T {
	item := b.ring[b.head]
	var zero T
	b.ring[b.head] = zero
	b.head = (b.head + 1) % len(b.ring)
	b.count--
	b.received++
	return item
}

// grow doubles the ring, unwrapping queued items to the front.
// Must be called with lock held.
func (b *Buffer[T]) grow() {
	next := make([]T, len(b.ring)*2)
	if b.count > 0 {
		if b.head < b.tail {
			copy(next, b.ring[b.head:b.tail])
		} else {
			n := copy(next, b.ring[b.head:])
			copy(next[n:], b.ring[:b.tail])
		}
	}
	b.ring = next
	b.head = 0
	b.tail = b.count
	b.resizes++
}
