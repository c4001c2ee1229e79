package fs

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/naushadh/streamly/journal"
	"github.com/naushadh/streamly/service/dao"
)

func sampleRecording(id string) *journal.Recording {
	j := journal.New()
	_ = j.Append(journal.KindEffect, "/0", map[string]string{"k": "v"})
	return &journal.Recording{
		ID:        id,
		CreatedAt: time.Now().UTC(),
		Journals:  []*journal.Journal{j},
	}
}

func TestNewRequiresBasePath(t *testing.T) {
	_, err := New("")
	assert.Error(t, err)
}

func TestRoundTrip(t *testing.T) {
	svc, err := New(t.TempDir())
	require.NoError(t, err)
	ctx := context.Background()

	rec := sampleRecording("rec-1")
	require.NoError(t, svc.Save(ctx, rec))

	loaded, err := svc.Load(ctx, "rec-1")
	require.NoError(t, err)
	assert.Equal(t, rec.ID, loaded.ID)
	require.Len(t, loaded.Journals, 1)
	require.Equal(t, 1, loaded.Journals[0].Len())
	assert.Equal(t, rec.Journals[0].Entries[0].Branch, loaded.Journals[0].Entries[0].Branch)
	assert.JSONEq(t, string(rec.Journals[0].Entries[0].Data), string(loaded.Journals[0].Entries[0].Data))
}

func TestLoadMissing(t *testing.T) {
	svc, err := New(t.TempDir())
	require.NoError(t, err)
	ctx := context.Background()

	_, err = svc.Load(ctx, "missing")
	assert.ErrorIs(t, err, dao.ErrNotFound)
	_, err = svc.Load(ctx, "")
	assert.ErrorIs(t, err, dao.ErrInvalidID)
}

func TestDeleteAndList(t *testing.T) {
	svc, err := New(t.TempDir())
	require.NoError(t, err)
	ctx := context.Background()

	require.NoError(t, svc.Save(ctx, sampleRecording("rec-1")))
	require.NoError(t, svc.Save(ctx, sampleRecording("rec-2")))

	recordings, err := svc.List(ctx)
	require.NoError(t, err)
	assert.Len(t, recordings, 2)

	require.NoError(t, svc.Delete(ctx, "rec-2"))
	assert.ErrorIs(t, svc.Delete(ctx, "rec-2"), dao.ErrNotFound)

	recordings, err = svc.List(ctx)
	require.NoError(t, err)
	require.Len(t, recordings, 1)
	assert.Equal(t, "rec-1", recordings[0].ID)
}
