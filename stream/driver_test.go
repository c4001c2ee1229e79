package stream

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCollectBoundedYieldsExactSet(t *testing.T) {
	values, err := Collect(context.Background(), Threads(1, Each([]int{1, 2, 3})))
	assert.NoError(t, err)
	assert.ElementsMatch(t, []int{1, 2, 3}, values)
}

func TestCollectUnlimitedYieldsExactSet(t *testing.T) {
	input := make([]int, 50)
	for i := range input {
		input[i] = i
	}
	values, err := Collect(context.Background(), Each(input))
	assert.NoError(t, err)
	assert.ElementsMatch(t, input, values)
}

func TestDrainEmptyProducesNoQueueTraffic(t *testing.T) {
	ec, out := newRun[int](false)
	err := drive(ctx(t), ec, out, Each([]int(nil)), func(int) {})
	assert.NoError(t, err)
	assert.Equal(t, 0, out.queue.Size())
	assert.Equal(t, 0, ec.core.pendingCount())
	assert.Len(t, ec.core.branches, 1)
}

func TestCreditConservation(t *testing.T) {
	ec, out := newRun[int](false)
	input := make([]int, 20)
	for i := range input {
		input[i] = i
	}
	err := drive(ctx(t), ec, out, Threads(3, Each(input)), func(int) {})
	require.NoError(t, err)
	assert.Equal(t, int64(3), ec.core.initial)
	assert.Equal(t, ec.core.initial, ec.core.credit.Load())
	assert.Equal(t, 0, ec.core.pendingCount())
}

func TestCreditConservationLateBound(t *testing.T) {
	// The outer alternation dispatches while the counter is still in its
	// default unlimited state; that worker must not hand back a credit it
	// never took once the inner Threads wrapper installs the bound.
	ec, out := newRun[int](false)
	s := Or(Of(1), Threads(2, Each([]int{2, 3, 4, 5})))
	err := drive(ctx(t), ec, out, s, func(int) {})
	require.NoError(t, err)
	assert.Equal(t, int64(2), ec.core.initial)
	assert.Equal(t, ec.core.initial, ec.core.credit.Load())
	assert.Equal(t, 0, ec.core.pendingCount())
}

func TestZeroCreditNeverDispatches(t *testing.T) {
	ec, out := newRun[int](false)
	err := drive(ctx(t), ec, out, Threads(0, Each([]int{1, 2, 3, 4})), func(int) {})
	require.NoError(t, err)
	assert.Equal(t, 0, out.queue.Size())
	assert.Len(t, ec.core.branches, 1)
}

func TestEffectFailurePropagates(t *testing.T) {
	boom := errors.New("boom")
	s := FlatMap(Each([]int{1, 2}), func(n int) *Stream[int] {
		return Lift(func(ctx context.Context) (int, error) {
			if n == 2 {
				return 0, boom
			}
			return n, nil
		})
	})
	_, err := Collect(context.Background(), Threads(0, s))
	assert.ErrorIs(t, err, boom)
}

func TestDispatchedFailurePropagates(t *testing.T) {
	boom := errors.New("boom")
	s := FlatMap(Each([]int{1, 2, 3}), func(n int) *Stream[int] {
		return Lift(func(ctx context.Context) (int, error) {
			if n == 3 {
				return 0, boom
			}
			return n, nil
		})
	})
	_, err := Collect(context.Background(), s)
	assert.ErrorIs(t, err, boom)
}

func TestWorkersReapedOnCancel(t *testing.T) {
	var running atomic.Int32
	blocked := make(chan struct{})
	s := FlatMap(Each([]int{1, 2, 3}), func(n int) *Stream[int] {
		return Lift(func(ctx context.Context) (int, error) {
			running.Add(1)
			defer running.Add(-1)
			select {
			case <-blocked:
				return n, nil
			case <-ctx.Done():
				return 0, ctx.Err()
			}
		})
	})

	runCtx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		_, err := Collect(runCtx, s)
		done <- err
	}()

	assert.Eventually(t, func() bool { return running.Load() > 0 }, time.Second, time.Millisecond)
	cancel()

	select {
	case err := <-done:
		assert.Error(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("driver did not return after cancellation")
	}
	// drive joins all workers before returning.
	assert.Equal(t, int32(0), running.Load())
}

func ctx(t *testing.T) context.Context {
	t.Helper()
	c, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	t.Cleanup(cancel)
	return c
}
