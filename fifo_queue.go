// fifo_queue.go
package asyncqueue

const (
	initialFifoCapacity = 16
)

// fifoQueue is the waiting buffer for tasks submitted above capacity.
//
// Entries are popped strictly in the order they were pushed. The ring
// buffer doubles when full, so Push never drops. Not safe for
// concurrent use; the Queue guards it with its mutex.
type fifoQueue[R any] struct {
	buf        []*entry[R] // circular buffer
	head, tail int         // read/write indices
	size       int         // number of entries currently buffered
	capacity   int
}

func newFifoQueue[R any](capacity int) *fifoQueue[R] {
	if capacity <= 0 {
		capacity = initialFifoCapacity
	}
	return &fifoQueue[R]{
		buf:      make([]*entry[R], capacity),
		capacity: capacity,
	}
}

// Len returns the number of entries currently waiting.
func (q *fifoQueue[R]) Len() int { return q.size }

// Push inserts an entry at the tail.
func (q *fifoQueue[R]) Push(e *entry[R]) {
	if q.size == q.capacity {
		q.grow()
	}
	q.buf[q.tail] = e
	q.tail++
	if q.tail == q.capacity {
		q.tail = 0
	}
	q.size++
}

// Pop removes and returns the oldest entry.
func (q *fifoQueue[R]) Pop() (*entry[R], bool) {
	if q.size == 0 {
		return nil, false
	}
	e := q.buf[q.head]
	q.buf[q.head] = nil
	q.head++
	if q.head == q.capacity {
		q.head = 0
	}
	q.size--
	return e, true
}

// grow doubles the buffer and unwraps it so head lands on index 0.
func (q *fifoQueue[R]) grow() {
	next := make([]*entry[R], q.capacity*2)
	n := copy(next, q.buf[q.head:])
	copy(next[n:], q.buf[:q.head])
	q.buf = next
	q.head = 0
	q.tail = q.size
	q.capacity = len(next)
}
