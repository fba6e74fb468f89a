// Package session ties a pseudo-terminal session to a screen: a background
// relay moves output bytes onto a queue and the coordinator drains, decodes
// and applies them on the caller's goroutine.
package session

import "sync"

// Message is one relay event. Closed messages carry no data.
type Message struct {
	Data   []byte
	Closed bool
}

// Queue is an unbounded FIFO between one producer and one consumer. Push
// never blocks; the consumer polls with Drain and may wait on Ready.
type Queue struct {
	mu     sync.Mutex
	items  []Message
	closed bool
	ready  chan struct{}
}

// NewQueue returns an empty queue.
func NewQueue() *Queue {
	return &Queue{ready: make(chan struct{}, 1)}
}

// Push appends m. It reports false once the consumer has closed the queue,
// telling the producer to stop.
func (q *Queue) Push(m Message) bool {
	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		return false
	}
	q.items = append(q.items, m)
	q.mu.Unlock()

	select {
	case q.ready <- struct{}{}:
	default:
	}
	return true
}

// Drain appends every pending message to dst in arrival order and returns
// it. It never blocks.
func (q *Queue) Drain(dst []Message) []Message {
	q.mu.Lock()
	defer q.mu.Unlock()
	if len(q.items) == 0 {
		return dst
	}
	dst = append(dst, q.items...)
	clear(q.items)
	q.items = q.items[:0]
	return dst
}

// Len returns the number of pending messages.
func (q *Queue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.items)
}

// Ready is signalled after a Push. A single signal may cover several messages.
func (q *Queue) Ready() <-chan struct{} { return q.ready }

// Close detaches the consumer. Pending messages are dropped.
func (q *Queue) Close() {
	q.mu.Lock()
	q.closed = true
	q.items = nil
	q.mu.Unlock()
}

// Closed reports whether Close was called.
func (q *Queue) Closed() bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.closed
}
