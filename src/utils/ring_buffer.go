package utils

// DefaultTickCapacity covers a full 6.5h session at one tick per minute.
const DefaultTickCapacity = 400

// RingBuffer keeps the newest Cap() items; pushing onto a full buffer
// overwrites the oldest one. Not safe for concurrent use.
type RingBuffer[T any] struct {
	items []T
	head  int // next write slot
	count int
}

func NewRingBuffer[T any](capacity int) *RingBuffer[T] {
	if capacity <= 0 {
		capacity = DefaultTickCapacity
	}
	return &RingBuffer[T]{items: make([]T, capacity)}
}

// -----------------------------------------------------------------------------

func (rb *RingBuffer[T]) Push(v T) {
	rb.items[rb.head] = v
	rb.head = (rb.head + 1) % len(rb.items)
	if rb.count < len(rb.items) {
		rb.count++
	}
}

// Latest copies out up to n of the newest items, oldest first.
func (rb *RingBuffer[T]) Latest(n int) []T {
	n = min(n, rb.count)
	if n <= 0 {
		return []T{}
	}
	out := make([]T, n)
	start := rb.head - n
	if start < 0 {
		start += len(rb.items)
	}
	for i := range out {
		out[i] = rb.items[(start+i)%len(rb.items)]
	}
	return out
}

func (rb *RingBuffer[T]) All() []T {
	return rb.Latest(rb.count)
}

// Last returns the newest item.
func (rb *RingBuffer[T]) Last() (T, bool) {
	var zero T
	if rb.count == 0 {
		return zero, false
	}
	i := rb.head - 1
	if i < 0 {
		i = len(rb.items) - 1
	}
	return rb.items[i], true
}

func (rb *RingBuffer[T]) Len() int   { return rb.count }
func (rb *RingBuffer[T]) Cap() int   { return len(rb.items) }
func (rb *RingBuffer[T]) Full() bool { return rb.count == len(rb.items) }

func (rb *RingBuffer[T]) Reset() {
	var zero T
	for i := range rb.items {
		rb.items[i] = zero
	}
	rb.head, rb.count = 0, 0
}
