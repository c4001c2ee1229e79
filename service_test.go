package streamly_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/naushadh/streamly"
	"github.com/naushadh/streamly/journal"
	"github.com/naushadh/streamly/stream"
)

func TestService(t *testing.T) {
	srv := streamly.New(streamly.WithThreads(0))

	runtime := srv.Runtime()
	require.NotNil(t, runtime)

	ctx := context.Background()
	s := streamly.Each([]int{1, 2, 3})
	values, err := streamly.ToList(ctx, runtime, s)
	assert.Nil(t, err)
	assert.Equal(t, []int{1, 2, 3}, values)
}

func TestRunAsyncly(t *testing.T) {
	srv := streamly.New()
	runtime := srv.Runtime()

	var produced int
	s := stream.FlatMap(streamly.Each([]int{1, 2, 3}), func(n int) *stream.Stream[int] {
		return stream.Lift(func(ctx context.Context) (int, error) {
			produced++
			return n, nil
		})
	})
	err := streamly.RunAsyncly(context.Background(), runtime, streamly.Threads(0, s))
	assert.Nil(t, err)
	assert.Equal(t, 3, produced)
}

func TestConfigValidate(t *testing.T) {
	config := streamly.DefaultConfig()
	assert.Nil(t, config.Validate())

	config.Engine.Threads = -2
	assert.Error(t, config.Validate())
}

func TestLoadConfig(t *testing.T) {
	location := filepath.Join(t.TempDir(), "config.yaml")
	data := []byte("engine:\n  threads: 2\nrecording:\n  baseURL: \"\"\n")
	require.NoError(t, os.WriteFile(location, data, 0o644))

	config, err := streamly.LoadConfig(context.Background(), location)
	require.NoError(t, err)
	assert.Equal(t, 2, config.Engine.Threads)
	assert.Empty(t, config.Recording.BaseURL)
}

func TestLoadConfigMissing(t *testing.T) {
	_, err := streamly.LoadConfig(context.Background(), filepath.Join(t.TempDir(), "absent.yaml"))
	assert.Error(t, err)
}

func TestRecordingLifecycle(t *testing.T) {
	srv := streamly.New(streamly.WithConfig(&streamly.Config{
		Engine:    streamly.EngineConfig{Threads: 0},
		Recording: streamly.RecordingConfig{BaseURL: t.TempDir()},
	}))
	runtime := srv.Runtime()
	ctx := context.Background()

	gateReached := make(chan struct{}, 1)
	build := func(gateOpen bool) *stream.Stream[string] {
		return stream.FlatMap(streamly.Each([]string{"a", "b"}), func(name string) *stream.Stream[string] {
			return stream.Lift(func(ctx context.Context) (string, error) {
				if name == "b" && !gateOpen {
					gateReached <- struct{}{}
					<-ctx.Done()
					return "", ctx.Err()
				}
				return "done:" + name, nil
			})
		})
	}

	// The run executes fully inline, so pausing it leaves exactly the root
	// line unfinished, with branch a's result already journaled.
	runCtx, cancel := context.WithCancel(ctx)
	var capturedJournals []*journal.Journal
	var capturedErr error
	done := make(chan struct{})
	go func() {
		capturedJournals, capturedErr = streamly.RunAsynclyRecorded(runCtx, runtime, build(false))
		close(done)
	}()

	select {
	case <-gateReached:
	case <-time.After(2 * time.Second):
		t.Fatal("blocked branch never started")
	}
	cancel()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("recorded run did not return")
	}
	require.NoError(t, capturedErr)
	require.Len(t, capturedJournals, 1)

	// Persist, reload and resume.
	recording, err := runtime.SaveRecording(ctx, capturedJournals)
	require.NoError(t, err)
	require.NotEmpty(t, recording.ID)

	loaded, err := runtime.LoadRecording(ctx, recording.ID)
	require.NoError(t, err)
	require.Len(t, loaded.Journals, 1)

	resumed := streamly.PlayRecordings(build(true), loaded.Journals)
	values, err := streamly.ToList(ctx, runtime, resumed)
	require.NoError(t, err)
	assert.Equal(t, []string{"done:a", "done:b"}, values)

	// Housekeeping round-trip.
	all, err := runtime.ListRecordings(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 1)
	require.NoError(t, runtime.DeleteRecording(ctx, recording.ID))
	_, err = runtime.LoadRecording(ctx, recording.ID)
	assert.Error(t, err)
}
