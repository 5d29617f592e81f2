// Package util provides a lock-free multi-producer single-consumer queue.
//
// The queue backs the suspended backend: every caller pushes its operation
// and one worker goroutine drains the queue through the Recv() channel.
//
// Features and Guarantees:
//
//   - Lock-Free pushes: producers append with atomic compare-and-swap only
//   - Unbounded Size: the queue grows as needed, limited only by available memory
//   - Per-Producer FIFO: items pushed by one goroutine are received in push order.
//     Across producers, the order is the order in which the appends succeeded.
//   - Drain on Close: items pushed before Close are still delivered, then Recv() is closed
package util

import (
	"runtime"
	"sync"
	"sync/atomic"
)

// node is one linked list element of the queue
type node[T any] struct {
	value T
	next  atomic.Pointer[node[T]]
}

// Queue is a lock-free multi-producer single-consumer queue built on a
// linked list with a sentinel head.
type Queue[T any] struct {
	head   atomic.Pointer[node[T]]
	tail   atomic.Pointer[node[T]]
	out    chan T
	closed atomic.Bool

	// wakes the consumer when it is idle
	mu   sync.Mutex
	cond *sync.Cond
}

// NewQueue creates a queue and starts its consumer goroutine.
func NewQueue[T any]() *Queue[T] {
	sentinel := &node[T]{}

	q := &Queue[T]{
		out: make(chan T),
	}
	q.cond = sync.NewCond(&q.mu)
	q.head.Store(sentinel)
	q.tail.Store(sentinel)

	go q.consume()

	return q
}

// Push appends an item to the queue.
// Returns false if the queue is closed and the item was not added.
//
// Thread-safety: This method is thread-safe and can be called concurrently.
func (q *Queue[T]) Push(value T) bool {
	if q.closed.Load() {
		return false
	}

	newNode := &node[T]{value: value}

	var retries uint8
	for {
		tailNode := q.tail.Load()
		next := tailNode.next.Load()

		if next == nil {
			if tailNode.next.CompareAndSwap(nil, newNode) {
				// a failed CAS here means another producer already moved the tail
				q.tail.CompareAndSwap(tailNode, newNode)
				q.wake()
				return true
			}
		} else {
			// another producer appended but has not moved the tail yet
			q.tail.CompareAndSwap(tailNode, next)
		}

		if retries < 8 {
			retries++
			for i := 0; i < 1<<retries; i++ {
				runtime.Gosched()
			}
		}
		runtime.Gosched()
	}
}

// wake signals the consumer. The signal is sent while holding the mutex so
// it cannot slip in between the consumer's emptiness check and its Wait.
func (q *Queue[T]) wake() {
	q.mu.Lock()
	q.cond.Signal()
	q.mu.Unlock()
}

// consume moves items from the linked list to the output channel until the
// queue is closed and drained.
func (q *Queue[T]) consume() {
	defer close(q.out)

	var zero T
	for {
		delivered := false

		for {
			head := q.head.Load()
			next := head.next.Load()
			if next == nil {
				break
			}

			delivered = true
			value := next.value

			// next becomes the new sentinel
			q.head.Store(next)
			q.out <- value

			next.value = zero
		}

		if delivered {
			continue
		}

		q.mu.Lock()
		if q.head.Load().next.Load() == nil {
			if q.closed.Load() {
				q.mu.Unlock()
				return
			}
			q.cond.Wait()
		}
		q.mu.Unlock()
	}
}

// Recv returns the channel the single consumer reads from.
// The channel is closed after Close once every pending item was delivered.
func (q *Queue[T]) Recv() <-chan T {
	return q.out
}

// Close stops accepting new items. Pending items are still delivered.
// A Push racing with Close may be dropped even if it returned true, so
// producers must be stopped before the queue is closed.
func (q *Queue[T]) Close() {
	q.closed.Store(true)
	q.wake()
}

// IsClosed returns true if the queue is closed.
func (q *Queue[T]) IsClosed() bool {
	return q.closed.Load()
}

// Len returns the number of items waiting to be delivered.
// This is O(n) and should only be used for debugging.
func (q *Queue[T]) Len() int {
	count := 0
	for current := q.head.Load().next.Load(); current != nil; current = current.next.Load() {
		count++
	}
	return count
}
