package messaging

import (
	"context"
)

// Queue represents an abstract message queue for any payload type. The
// engine uses it as the per-run result channel: many producing workers, one
// consuming driver.
type Queue[T any] interface {
	// Publish adds a new message with payload to the queue. Implementations
	// used as a run's result channel must not block producers indefinitely.
	Publish(ctx context.Context, t *T) error

	// Consume retrieves a single message from the queue, blocking until one
	// is available or ctx is done.
	Consume(ctx context.Context) (*T, error)

	// Size returns the number of messages currently buffered.
	Size() int
}
