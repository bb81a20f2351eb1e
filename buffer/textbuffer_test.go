package buffer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sfurman3/inftext/chunk"
)

func TestInsertAndErase(t *testing.T) {
	b := New()
	require.NoError(t, b.InsertChunk(0, chunk.FromString(1, "hello"), 1))
	assert.Equal(t, "hello", b.String())
	assert.True(t, b.Modified())

	require.NoError(t, b.Erase(1, 3, 1))
	assert.Equal(t, "ho", b.String())
}

func TestSuppressedNotifications(t *testing.T) {
	b := New()
	var inserts int
	b.OnInsert(func(pos int, c *chunk.Chunk, author uint32) { inserts++ })

	b.SetNotificationsSuppressed(true)
	require.NoError(t, b.InsertChunk(0, chunk.FromString(1, "x"), 1))
	assert.Equal(t, 0, inserts)

	b.SetNotificationsSuppressed(false)
	require.NoError(t, b.InsertChunk(1, chunk.FromString(1, "y"), 1))
	assert.Equal(t, 1, inserts)
}

func TestModifiedFlagTransitionFires(t *testing.T) {
	b := New()
	var transitions []bool
	b.OnModifiedChanged(func(m bool) { transitions = append(transitions, m) })

	require.NoError(t, b.InsertChunk(0, chunk.FromString(1, "a"), 1))
	b.SetModified(false)
	b.SetModified(false) // no-op, no duplicate transition
	b.SetModified(true)

	assert.Equal(t, []bool{true, false, true}, transitions)
}

func TestEraseOutOfRange(t *testing.T) {
	b := New()
	require.NoError(t, b.InsertChunk(0, chunk.FromString(1, "ab"), 1))
	assert.Error(t, b.Erase(1, 5, 1))
}
