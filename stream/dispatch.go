package stream

import (
	"context"
	"log/slog"

	"github.com/naushadh/streamly/internal/idgen"
	"github.com/naushadh/streamly/service/messaging/memory"
)

// event is what workers publish onto the run's result queue: either one
// produced value or, with w set, the worker's terminal signal.
type event[T any] struct {
	value T
	ok    bool
	w     *worker
	err   error
}

// outlet wraps the run's result queue with typed publish helpers.
type outlet[T any] struct {
	queue *memory.Queue[event[T]]
}

func newOutlet[T any]() *outlet[T] {
	return &outlet[T]{queue: memory.NewQueue[event[T]]()}
}

func (o *outlet[T]) publish(ctx context.Context, v T) error {
	return o.queue.Publish(ctx, &event[T]{value: v, ok: true})
}

// finished signals that a worker produced its last value. Published outside
// the run context so the terminal signal is never dropped on cancellation.
func (o *outlet[T]) finished(w *worker, err error) {
	_ = o.queue.Publish(context.Background(), &event[T]{w: w, err: err})
}

func (o *outlet[T]) receive(ctx context.Context) (*event[T], error) {
	return o.queue.Consume(ctx)
}

// worker is the handle of one dispatched branch, held in the pending
// registry until its terminal signal is drained. credited records whether
// the dispatch consumed a credit, so retirement releases exactly what was
// taken.
type worker struct {
	id       string
	credited bool
}

// dispatch hands a branch to a new worker wired to the run's result queue.
// It reports false, without starting anything, when the outlet's element
// type does not match; the caller then runs the branch inline.
func dispatch[T any](ctx context.Context, ec *ExecCtx, s *Stream[T], credited bool) bool {
	out, ok := ec.core.outlet.(*outlet[T])
	if !ok {
		return false
	}
	w := &worker{id: idgen.New(), credited: credited}
	ec.core.register(w)
	child := ec.fork()
	go runWorker(ctx, w, child, s, out)
	return true
}

// runWorker advances the branch to exhaustion, publishing every produced
// value in per-worker order, then publishes the terminal signal.
func runWorker[T any](ctx context.Context, w *worker, ec *ExecCtx, s *Stream[T], out *outlet[T]) {
	defer ec.core.wg.Done()

	var err error
	cur := s
	for cur != nil {
		var st step[T]
		st, err = cur.advanceStep(ctx, ec)
		if err != nil {
			break
		}
		switch st.kind {
		case stepExhausted:
			cur = nil
		case stepFinal:
			err = out.publish(ctx, st.value)
			cur = nil
		default:
			if err = out.publish(ctx, st.value); err != nil {
				cur = nil
			} else {
				cur = st.rest
			}
		}
		if err != nil {
			break
		}
	}
	if err == nil {
		ec.finish()
	} else {
		slog.Debug("worker stopped before exhaustion", "worker", w.id, "branch", ec.branch.id, "err", err)
	}
	out.finished(w, err)
}
