package journal

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAppendAssignsSequence(t *testing.T) {
	j := New()
	require.NoError(t, j.Append(KindEffect, "", "first"))
	require.NoError(t, j.Append(KindEffect, "/0", 42))

	require.Equal(t, 2, j.Len())
	assert.Equal(t, 1, j.Entries[0].Seq)
	assert.Equal(t, 2, j.Entries[1].Seq)
	assert.Equal(t, KindEffect, j.Entries[0].Kind)
	assert.Equal(t, "/0", j.Entries[1].Branch)
	assert.JSONEq(t, `"first"`, string(j.Entries[0].Data))
	assert.JSONEq(t, `42`, string(j.Entries[1].Data))
}

func TestAppendRejectsUnencodableValue(t *testing.T) {
	j := New()
	err := j.Append(KindEffect, "", make(chan int))
	assert.Error(t, err)
	assert.Equal(t, 0, j.Len())
}

func TestCloneDiverges(t *testing.T) {
	j := New()
	require.NoError(t, j.Append(KindEffect, "", "shared"))

	clone := j.Clone()
	require.NoError(t, clone.Append(KindEffect, "/1", "child only"))

	assert.Equal(t, 1, j.Len())
	assert.Equal(t, 2, clone.Len())
	assert.Equal(t, j.Entries[0], clone.Entries[0])
}

func TestNilJournal(t *testing.T) {
	var j *Journal
	assert.Equal(t, 0, j.Len())
	assert.Nil(t, j.Clone())
}
