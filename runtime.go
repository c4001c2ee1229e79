package streamly

import (
	"context"
	"fmt"

	"github.com/naushadh/streamly/internal/clock"
	"github.com/naushadh/streamly/internal/idgen"
	"github.com/naushadh/streamly/journal"
	"github.com/naushadh/streamly/service/dao"
	"github.com/naushadh/streamly/stream"
	"github.com/naushadh/streamly/tracing"
)

// Runtime is the handle through which computations are run and recordings
// are persisted. One Runtime may drive any number of runs; each run owns
// its execution context and shares nothing with its siblings.
type Runtime struct {
	threads      int
	recordingDAO dao.Service[string, journal.Recording]
}

// bound applies the runtime's default credit limit to a computation. An
// explicit Threads wrapper inside s still wins: it re-installs its own
// limit when advanced.
func bound[T any](r *Runtime, s *stream.Stream[T]) *stream.Stream[T] {
	if r == nil || r.threads < 0 {
		return s
	}
	return stream.Threads(r.threads, s)
}

// RunAsyncly runs the computation to exhaustion, discarding every produced
// value.
func RunAsyncly[T any](ctx context.Context, r *Runtime, s *stream.Stream[T]) (err error) {
	ctx, span := tracing.StartSpan(ctx, "streamly.RunAsyncly", "INTERNAL")
	defer func() { tracing.EndSpan(span, err) }()
	err = stream.Drain(ctx, bound(r, s))
	return err
}

// ToList runs the computation to exhaustion and returns every produced
// value. Results crossing a dispatch boundary arrive in queue order; wrap
// the computation in stream.Threads(0, ...) for a deterministic order.
func ToList[T any](ctx context.Context, r *Runtime, s *stream.Stream[T]) (values []T, err error) {
	ctx, span := tracing.StartSpan(ctx, "streamly.ToList", "INTERNAL")
	defer func() { tracing.EndSpan(span, err) }()
	values, err = stream.Collect(ctx, bound(r, s))
	return values, err
}

// RunAsynclyRecorded runs the computation with journaling enabled and
// returns the journals of the branches left unfinished when the run ended.
// Cancelling ctx pauses the run; the returned journals can be persisted via
// SaveRecording and resumed later through PlayRecordings.
func RunAsynclyRecorded[T any](ctx context.Context, r *Runtime, s *stream.Stream[T]) (journals []*journal.Journal, err error) {
	ctx, span := tracing.StartSpan(ctx, "streamly.RunAsynclyRecorded", "INTERNAL")
	defer func() { tracing.EndSpan(span, err) }()
	journals, err = stream.DrainRecorded(ctx, bound(r, s))
	if span != nil {
		span.WithAttributes(map[string]string{"recording.journals": fmt.Sprintf("%d", len(journals))})
	}
	return journals, err
}

// PlayRecordings resumes a recording set: one alternative per journal, each
// seeded with its own recorded state, all continuing into s.
func PlayRecordings[T any](s *stream.Stream[T], journals []*journal.Journal) *stream.Stream[T] {
	return stream.PlayRecordings(s, journals)
}

// Each lifts a finite sequence into a stream of alternatives, one per
// element.
func Each[T any](values []T) *stream.Stream[T] {
	return stream.Each(values)
}

// Threads bounds the number of additional workers the wrapped computation
// may occupy.
func Threads[T any](limit int, s *stream.Stream[T]) *stream.Stream[T] {
	return stream.Threads(limit, s)
}

// SaveRecording wraps the journals of a paused run into a Recording and
// persists it, returning the stored envelope.
func (r *Runtime) SaveRecording(ctx context.Context, journals []*journal.Journal) (*journal.Recording, error) {
	if r == nil || r.recordingDAO == nil {
		return nil, fmt.Errorf("runtime not fully initialised – recording store missing")
	}
	recording := &journal.Recording{
		ID:        idgen.New(),
		CreatedAt: clock.Now(),
		Journals:  journals,
	}
	if err := r.recordingDAO.Save(ctx, recording); err != nil {
		return nil, fmt.Errorf("failed to save recording: %w", err)
	}
	return recording, nil
}

// LoadRecording retrieves a previously persisted recording by id.
func (r *Runtime) LoadRecording(ctx context.Context, id string) (*journal.Recording, error) {
	if r == nil || r.recordingDAO == nil {
		return nil, fmt.Errorf("runtime not fully initialised – recording store missing")
	}
	return r.recordingDAO.Load(ctx, id)
}

// ListRecordings returns every persisted recording.
func (r *Runtime) ListRecordings(ctx context.Context) ([]*journal.Recording, error) {
	if r == nil || r.recordingDAO == nil {
		return nil, fmt.Errorf("runtime not fully initialised – recording store missing")
	}
	return r.recordingDAO.List(ctx)
}

// DeleteRecording removes a persisted recording.
func (r *Runtime) DeleteRecording(ctx context.Context, id string) error {
	if r == nil || r.recordingDAO == nil {
		return fmt.Errorf("runtime not fully initialised – recording store missing")
	}
	return r.recordingDAO.Delete(ctx, id)
}
