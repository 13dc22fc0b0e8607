// Copyright The OpenTelemetry Authors
// SPDX-License-Identifier: Apache-2.0

package exporterhelper // import "github.com/grpcarch/otlpbatch/exporter/exporterhelper"

import (
	"sync"
)

// boundedQueue is the pending buffer of a queued exporter. Producers append
// under a short-held mutex; the flusher swaps the whole buffer out at once.
// When the buffer is full new items are refused, never blocked on.
type boundedQueue[T any] struct {
	mu       sync.Mutex
	items    []T
	capacity int
	closed   bool
}

func newBoundedQueue[T any](capacity int) *boundedQueue[T] {
	return &boundedQueue[T]{
		items:    make([]T, 0, capacity),
		capacity: capacity,
	}
}

// push appends item. It returns ErrQueueFull at capacity and ErrStopped
// after close.
func (q *boundedQueue[T]) push(item T) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.closed {
		return ErrStopped
	}
	if len(q.items) >= q.capacity {
		return ErrQueueFull
	}
	q.items = append(q.items, item)
	return nil
}

// drain takes ownership of every queued item, in enqueue order, and leaves
// the queue empty.
func (q *boundedQueue[T]) drain() []T {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.swapLocked()
}

// close refuses further pushes and returns the items still queued.
func (q *boundedQueue[T]) close() []T {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.closed = true
	return q.swapLocked()
}

func (q *boundedQueue[T]) swapLocked() []T {
	if len(q.items) == 0 {
		return nil
	}
	batch := q.items
	q.items = make([]T, 0, q.capacity)
	return batch
}

// size returns the current number of queued items.
func (q *boundedQueue[T]) size() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.items)
}
