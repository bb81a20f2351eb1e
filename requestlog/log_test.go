package requestlog

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sfurman3/inftext/chunk"
	"github.com/sfurman3/inftext/operation"
	"github.com/sfurman3/inftext/request"
	"github.com/sfurman3/inftext/vector"
)

func vecAt(userID uint32, n uint64) *vector.Vector {
	v := vector.New()
	v.Set(userID, n)
	return v
}

func doAt(userID uint32, n uint64) *request.Request {
	op := operation.NewInsert(0, chunk.FromString(userID, "x"))
	return request.NewDo(vecAt(userID, n), userID, op, 0)
}

func TestAddRejectsWrongUser(t *testing.T) {
	l := New(1)
	err := l.Add(doAt(2, 0))
	assert.Error(t, err)
}

func TestAddRejectsNonDenseIndex(t *testing.T) {
	l := New(1)
	err := l.Add(doAt(1, 1)) // must be 0
	assert.Error(t, err)
}

func TestAddAndGet(t *testing.T) {
	l := New(1)
	r0 := doAt(1, 0)
	require.NoError(t, l.Add(r0))
	r1 := doAt(1, 1)
	require.NoError(t, l.Add(r1))

	assert.Equal(t, 0, l.Begin())
	assert.Equal(t, 2, l.End())

	got, ok := l.Get(0)
	require.True(t, ok)
	assert.Same(t, r0, got)
}

func TestUndoRedoAssociation(t *testing.T) {
	l := New(1)
	require.NoError(t, l.Add(doAt(1, 0)))

	undoIdx, ok := l.NextUndo()
	require.True(t, ok)
	assert.Equal(t, 0, undoIdx)

	undo := request.NewUndo(vecAt(1, 1), 1, 0)
	require.NoError(t, l.Add(undo))

	// The Do is now canceled: no more undo available, but a redo is.
	_, ok = l.NextUndo()
	assert.False(t, ok)
	redoIdx, ok := l.NextRedo()
	require.True(t, ok)
	assert.Equal(t, 1, redoIdx)

	assoc, ok := l.NextAssociated(0)
	require.True(t, ok)
	assert.Equal(t, 1, assoc)

	prev, ok := l.PrevAssociated(1)
	require.True(t, ok)
	assert.Equal(t, 0, prev)

	redo := request.NewRedo(vecAt(1, 2), 1, 0)
	require.NoError(t, l.Add(redo))

	_, ok = l.NextRedo()
	assert.False(t, ok)
	undoIdx2, ok := l.NextUndo()
	require.True(t, ok)
	assert.Equal(t, 2, undoIdx2)
}

func TestUndoWithoutTargetFails(t *testing.T) {
	l := New(1)
	err := l.Add(request.NewUndo(vecAt(1, 0), 1, 0))
	assert.Error(t, err)
}

func TestOriginalRequest(t *testing.T) {
	l := New(1)
	require.NoError(t, l.Add(doAt(1, 0)))
	require.NoError(t, l.Add(request.NewUndo(vecAt(1, 1), 1, 0)))
	require.NoError(t, l.Add(request.NewRedo(vecAt(1, 2), 1, 0)))

	orig, err := l.OriginalRequest(2)
	require.NoError(t, err)
	assert.Equal(t, 0, orig)
}

func TestUpperRelatedSimplePair(t *testing.T) {
	l := New(1)
	require.NoError(t, l.Add(doAt(1, 0)))
	require.NoError(t, l.Add(request.NewUndo(vecAt(1, 1), 1, 0)))

	assert.Equal(t, 2, l.UpperRelated(0))
}

func TestRemoveRequestsPrunesFrontAndCache(t *testing.T) {
	l := New(1)
	require.NoError(t, l.Add(doAt(1, 0)))
	require.NoError(t, l.Add(doAt(1, 1)))
	require.NoError(t, l.Add(doAt(1, 2)))

	stale := vecAt(1, 0)
	l.CachePut(stale, doAt(1, 0))
	fresh := vecAt(1, 2)
	l.CachePut(fresh, doAt(1, 2))

	l.RemoveRequests(2)

	assert.Equal(t, 2, l.Begin())
	assert.Equal(t, 3, l.End())
	assert.Equal(t, 1, l.Len())

	_, ok := l.CacheGet(stale)
	assert.False(t, ok)
	_, ok = l.CacheGet(fresh)
	assert.True(t, ok)
}
