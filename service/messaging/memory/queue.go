package memory

import (
	"context"
	"sync"

	"github.com/naushadh/streamly/service/messaging"
)

// Queue implements an unbounded in-memory messaging.Queue. Producers never
// block; a single consumer drains messages in publish order. Per-producer
// ordering is preserved because each Publish appends under the same lock.
type Queue[T any] struct {
	mu     sync.Mutex
	items  []*T
	notify chan struct{}
}

// NewQueue creates a new unbounded in-memory queue.
func NewQueue[T any]() *Queue[T] {
	return &Queue[T]{
		notify: make(chan struct{}, 1),
	}
}

// Publish adds a new item to the queue.
func (q *Queue[T]) Publish(ctx context.Context, t *T) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}
	q.mu.Lock()
	q.items = append(q.items, t)
	q.mu.Unlock()

	select {
	case q.notify <- struct{}{}:
	default:
	}
	return nil
}

// Consume retrieves a single item, blocking until one is published or ctx
// is done.
func (q *Queue[T]) Consume(ctx context.Context) (*T, error) {
	for {
		q.mu.Lock()
		if len(q.items) > 0 {
			item := q.items[0]
			q.items = q.items[1:]
			q.mu.Unlock()
			return item, nil
		}
		q.mu.Unlock()

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-q.notify:
		}
	}
}

// Size returns the current number of messages in the queue.
func (q *Queue[T]) Size() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.items)
}

// ensure Queue implements messaging.Queue interface
var _ messaging.Queue[any] = (*Queue[any])(nil)
