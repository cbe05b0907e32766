package fifoqueue

import (
	"fmt"
	"math"
	"sync"

	"github.com/ef-ds/deque"
)

// FifoQueue is a bounded FIFO queue of T, safe for concurrent use. Pushing
// onto a full queue fails instead of blocking.
type FifoQueue[T any] struct {
	mu       sync.Mutex
	elements deque.Deque
	capacity int
	observe  func(length int)
}

// Option configures a FifoQueue.
type Option func(*options) error

type options struct {
	capacity int
	observe  func(int)
}

// WithCapacity bounds the queue to capacity elements. Without it the queue is
// bounded by math.MaxInt.
func WithCapacity(capacity int) Option {
	return func(o *options) error {
		if capacity < 1 {
			return fmt.Errorf("capacity must be positive, got %d", capacity)
		}
		o.capacity = capacity
		return nil
	}
}

// WithLengthObserver registers observe, which is called with the new length
// after every successful push and pop. It runs outside the queue's lock but
// on the caller's goroutine, so it must not block.
func WithLengthObserver(observe func(length int)) Option {
	return func(o *options) error {
		if observe == nil {
			return fmt.Errorf("length observer must not be nil")
		}
		o.observe = observe
		return nil
	}
}

func NewFifoQueue[T any](opts ...Option) (*FifoQueue[T], error) {
	o := options{
		capacity: math.MaxInt,
		observe:  func(int) {},
	}
	for _, opt := range opts {
		if err := opt(&o); err != nil {
			return nil, fmt.Errorf("invalid fifo queue option: %w", err)
		}
	}
	return &FifoQueue[T]{capacity: o.capacity, observe: o.observe}, nil
}

// Push appends element. It returns false, and drops element, if the queue is full.
func (q *FifoQueue[T]) Push(element T) bool {
	q.mu.Lock()
	if q.elements.Len() >= q.capacity {
		q.mu.Unlock()
		return false
	}
	q.elements.PushBack(element)
	length := q.elements.Len()
	q.mu.Unlock()

	q.observe(length)
	return true
}

// Pop removes and returns the oldest element. The boolean is false if the
// queue is empty.
func (q *FifoQueue[T]) Pop() (T, bool) {
	q.mu.Lock()
	element, ok := q.elements.PopFront()
	length := q.elements.Len()
	q.mu.Unlock()

	if !ok {
		var zero T
		return zero, false
	}
	q.observe(length)
	return element.(T), true
}

// Front returns the oldest element without removing it.
func (q *FifoQueue[T]) Front() (T, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()

	element, ok := q.elements.Front()
	if !ok {
		var zero T
		return zero, false
	}
	return element.(T), true
}

func (q *FifoQueue[T]) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.elements.Len()
}
