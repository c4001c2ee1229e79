package stream

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/naushadh/streamly/journal"
)

// Stream is a lazy, resumable producer of zero or more values of type T.
// Streams compose by sequencing (FlatMap, Concat) and alternation (Or);
// alternation declares that two streams are independent and may execute on
// separate workers, subject to the credit limit of the run that drives them.
//
// A stream value is inert until a driver (Drain, Collect, DrainRecorded)
// advances it. Advancing produces exactly one step outcome at a time:
// exhausted, a final value, or a value plus the remaining stream.
type Stream[T any] struct {
	// Exactly one of the following is set. An advance function is a leaf
	// producer; left/right form an alternation node that the dispatcher may
	// hand to a new worker; force defers construction of a derived stream.
	advance func(ctx context.Context, ec *ExecCtx) (step[T], error)
	left    *Stream[T]
	right   *Stream[T]
	force   func() *Stream[T]
}

type stepKind int

const (
	stepExhausted stepKind = iota
	stepFinal
	stepMore
)

// step is the tri-state outcome of advancing a stream by one unit.
type step[T any] struct {
	kind  stepKind
	value T
	rest  *Stream[T]
}

func exhausted[T any]() (step[T], error) {
	return step[T]{kind: stepExhausted}, nil
}

func final[T any](v T) (step[T], error) {
	return step[T]{kind: stepFinal, value: v}, nil
}

func more[T any](v T, rest *Stream[T]) (step[T], error) {
	return step[T]{kind: stepMore, value: v, rest: rest}, nil
}

// resolve forces deferred construction until a leaf or alternation node
// surfaces.
func (s *Stream[T]) resolve() *Stream[T] {
	for s != nil && s.force != nil {
		s = s.force()
	}
	return s
}

// advanceStep advances the stream by one unit within the given execution
// context. At an alternation node it consults the run's credit counter: with
// credit available the right branch is dispatched to a new worker and the
// left continues inline; without credit the whole alternation executes
// inline in the current worker.
func (s *Stream[T]) advanceStep(ctx context.Context, ec *ExecCtx) (step[T], error) {
	if err := ctx.Err(); err != nil {
		return step[T]{}, err
	}
	s = s.resolve()
	if s == nil {
		return exhausted[T]()
	}
	if s.advance != nil {
		return s.advance(ctx, ec)
	}

	if admitted, credited := ec.core.acquire(); admitted {
		if dispatch(ctx, ec, s.right, credited) {
			return s.left.advanceStep(ctx, ec)
		}
		if credited {
			ec.core.release()
		}
	}

	st, err := s.left.advanceStep(ctx, ec)
	if err != nil {
		return st, err
	}
	switch st.kind {
	case stepExhausted:
		return s.right.advanceStep(ctx, ec)
	case stepFinal:
		return more(st.value, s.right)
	default:
		return more(st.value, Or(st.rest, s.right))
	}
}

// Empty returns a stream that immediately reports exhaustion.
func Empty[T any]() *Stream[T] {
	return &Stream[T]{advance: func(ctx context.Context, ec *ExecCtx) (step[T], error) {
		return exhausted[T]()
	}}
}

// Of returns a stream producing exactly one value.
func Of[T any](v T) *Stream[T] {
	return &Stream[T]{advance: func(ctx context.Context, ec *ExecCtx) (step[T], error) {
		return final(v)
	}}
}

// Lift turns a blocking or effectful operation into a single-value stream.
// When the active branch is replaying a journal the recorded outcome is
// returned instead of running fn; when the run is recorded the outcome is
// appended to the branch's journal. Recorded outcomes must round-trip
// through JSON.
func Lift[T any](fn func(ctx context.Context) (T, error)) *Stream[T] {
	return &Stream[T]{advance: func(ctx context.Context, ec *ExecCtx) (step[T], error) {
		if entry, ok := ec.nextReplay(); ok {
			var v T
			if err := json.Unmarshal(entry.Data, &v); err != nil {
				return step[T]{}, fmt.Errorf("failed to replay journal entry %d: %w", entry.Seq, err)
			}
			return final(v)
		}
		v, err := fn(ctx)
		if err != nil {
			return step[T]{}, err
		}
		if err := ec.record(v); err != nil {
			return step[T]{}, err
		}
		return final(v)
	}}
}

// Or composes two streams as alternatives. The result logically produces
// the union of both; whether the right branch runs inline or on a new
// worker is decided at advance time by the run's credit counter.
func Or[T any](left, right *Stream[T]) *Stream[T] {
	if left == nil {
		return right
	}
	if right == nil {
		return left
	}
	return &Stream[T]{left: left, right: right}
}

// Each lifts a finite sequence into a stream of alternatives, one per
// element, right-associated over Empty. Every element becomes independently
// eligible for dispatch.
func Each[T any](values []T) *Stream[T] {
	result := Empty[T]()
	for i := len(values) - 1; i >= 0; i-- {
		result = Or(Of(values[i]), result)
	}
	return result
}

// Concat produces all of a's values followed by all of b's. Alternation
// nodes inside a keep their dispatch eligibility.
func Concat[T any](a, b *Stream[T]) *Stream[T] {
	a = a.resolve()
	if a == nil {
		return b
	}
	if b == nil {
		return a
	}
	if a.advance == nil {
		return Or(a.left, &Stream[T]{force: func() *Stream[T] { return Concat(a.right, b) }})
	}
	return &Stream[T]{advance: func(ctx context.Context, ec *ExecCtx) (step[T], error) {
		st, err := a.advanceStep(ctx, ec)
		if err != nil {
			return st, err
		}
		switch st.kind {
		case stepExhausted:
			return b.advanceStep(ctx, ec)
		case stepFinal:
			return more(st.value, b)
		default:
			return more(st.value, Concat(st.rest, b))
		}
	}}
}

// FlatMap runs f over every value a produces, concatenating the resulting
// streams. Values originating from the same branch keep their relative
// order. FlatMap distributes over alternation so that fork points inside a
// surface at the run's element type and stay dispatch-eligible.
func FlatMap[A, B any](a *Stream[A], f func(A) *Stream[B]) *Stream[B] {
	a = a.resolve()
	if a == nil {
		return Empty[B]()
	}
	if a.advance == nil {
		return Or(
			&Stream[B]{force: func() *Stream[B] { return FlatMap(a.left, f) }},
			&Stream[B]{force: func() *Stream[B] { return FlatMap(a.right, f) }},
		)
	}
	return &Stream[B]{advance: func(ctx context.Context, ec *ExecCtx) (step[B], error) {
		st, err := a.advanceStep(ctx, ec)
		if err != nil {
			return step[B]{}, err
		}
		switch st.kind {
		case stepExhausted:
			return exhausted[B]()
		case stepFinal:
			return f(st.value).advanceStep(ctx, ec)
		default:
			return Concat(f(st.value), FlatMap(st.rest, f)).advanceStep(ctx, ec)
		}
	}}
}

// Map transforms every produced value.
func Map[A, B any](a *Stream[A], f func(A) B) *Stream[B] {
	return FlatMap(a, func(v A) *Stream[B] { return Of(f(v)) })
}

// Threads bounds the number of additional workers the wrapped stream may
// occupy. A limit of zero forces fully inline, deterministic execution; a
// negative limit removes the bound. The limit applies to the whole run from
// the moment the wrapper is first advanced.
func Threads[T any](limit int, s *Stream[T]) *Stream[T] {
	return &Stream[T]{advance: func(ctx context.Context, ec *ExecCtx) (step[T], error) {
		ec.core.setLimit(limit)
		return s.advanceStep(ctx, ec)
	}}
}

// reseed marks the stream as continuing a previously paused branch: the
// journal's recorded decisions are installed for replay before s advances.
func reseed[T any](s *Stream[T], j *journal.Journal) *Stream[T] {
	return &Stream[T]{advance: func(ctx context.Context, ec *ExecCtx) (step[T], error) {
		ec.Replay(j)
		return s.advanceStep(ctx, ec)
	}}
}
