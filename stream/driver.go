package stream

import (
	"context"
	"errors"

	"github.com/naushadh/streamly/journal"
)

// newRun builds the shared state for one top-level run. The credit counter
// starts unlimited; a Threads wrapper inside the computation installs the
// actual bound on first advance.
func newRun[T any](recording bool) (*ExecCtx, *outlet[T]) {
	core := &runCore{recording: recording}
	core.setLimit(Unlimited)
	out := newOutlet[T]()
	core.outlet = out
	return newExecCtx(core), out
}

// drive repeatedly advances s; produced values are handed to collect. When
// the inline line is exhausted it drains the result queue until the pending
// registry empties. The derived context is cancelled on return and all
// dispatched workers are joined, so no goroutine outlives a run.
func drive[T any](ctx context.Context, ec *ExecCtx, out *outlet[T], s *Stream[T], collect func(T)) error {
	ctx, cancel := context.WithCancel(ctx)
	defer func() {
		cancel()
		ec.core.wg.Wait()
	}()

	cur := s
	for {
		for cur != nil {
			st, err := cur.advanceStep(ctx, ec)
			if err != nil {
				return err
			}
			switch st.kind {
			case stepExhausted:
				cur = nil
			case stepFinal:
				collect(st.value)
				cur = nil
			default:
				collect(st.value)
				cur = st.rest
			}
		}
		// The inline line reached a terminal outcome; only dispatched
		// branches remain.
		ec.finish()

		if ec.core.pendingCount() == 0 {
			return nil
		}
		ev, err := out.receive(ctx)
		if err != nil {
			return err
		}
		if ev.w != nil {
			ec.core.retire(ev.w)
			if ev.err != nil {
				return ev.err
			}
			continue
		}
		collect(ev.value)
	}
}

// Drain runs s to exhaustion, discarding every produced value.
func Drain[T any](ctx context.Context, s *Stream[T]) error {
	ec, out := newRun[T](false)
	return drive(ctx, ec, out, s, func(T) {})
}

// Collect runs s to exhaustion and returns every produced value. Values
// from the inline line arrive in declaration order; values crossing a
// dispatch boundary arrive in queue order, which is a function of relative
// worker progress. Callers that need a deterministic order must wrap the
// computation in Threads(0, ...).
func Collect[T any](ctx context.Context, s *Stream[T]) ([]T, error) {
	var values []T
	ec, out := newRun[T](false)
	err := drive(ctx, ec, out, s, func(v T) { values = append(values, v) })
	return values, err
}

// DrainRecorded runs s with journaling enabled for every lifted effect,
// discarding produced values. It returns the journals of the branches that
// existed but never reached a terminal outcome when the run ended.
// Cancelling ctx is the supported way to pause a run mid-flight: the
// unfinished branches' journals come back with a nil error and can be
// resumed later through PlayRecordings.
func DrainRecorded[T any](ctx context.Context, s *Stream[T]) ([]*journal.Journal, error) {
	ec, out := newRun[T](true)
	err := drive(ctx, ec, out, s, func(T) {})
	journals := ec.core.unfinishedJournals()
	if err != nil && (errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)) {
		return journals, nil
	}
	return journals, err
}
