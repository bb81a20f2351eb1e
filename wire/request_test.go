package wire

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sfurman3/inftext/chunk"
	"github.com/sfurman3/inftext/operation"
	"github.com/sfurman3/inftext/request"
	"github.com/sfurman3/inftext/vector"
)

func TestEncodeDecodeInsertRoundTrips(t *testing.T) {
	base := vector.New()
	base.Set(1, 3)

	v := vector.New()
	v.Set(1, 4)
	v.Set(2, 1)

	op := operation.NewInsert(5, chunk.FromString(1, "hi"))
	r := request.NewDo(v, 1, op, 0)

	data, err := EncodeRequest(r, base)
	require.NoError(t, err)

	out, err := DecodeRequest(data, base)
	require.NoError(t, err)

	assert.Equal(t, request.Do, out.Type())
	assert.Equal(t, uint32(1), out.UserID())
	assert.True(t, out.Vector().Equal(v))
	assert.Equal(t, operation.Insert, out.Operation().Kind())
	assert.Equal(t, 5, out.Operation().Pos())
	assert.Equal(t, "hi", out.Operation().Chunk().String())
}

func TestEncodeDecodeDeleteRoundTrips(t *testing.T) {
	base := vector.New()
	v := vector.New()
	v.Set(2, 1)

	op := operation.NewDelete(2, 3)
	r := request.NewDo(v, 2, op, 0)

	data, err := EncodeRequest(r, base)
	require.NoError(t, err)

	out, err := DecodeRequest(data, base)
	require.NoError(t, err)
	assert.Equal(t, operation.Delete, out.Operation().Kind())
	assert.Equal(t, 2, out.Operation().Pos())
	assert.Equal(t, 3, out.Operation().Length())
}

func TestEncodeDecodeSplitRoundTrips(t *testing.T) {
	base := vector.New()
	v := vector.New()
	v.Set(1, 1)

	op := operation.NewSplit(
		operation.NewDelete(0, 2),
		operation.NewDelete(5, 1),
	)
	r := request.NewDo(v, 1, op, 0)

	data, err := EncodeRequest(r, base)
	require.NoError(t, err)

	out, err := DecodeRequest(data, base)
	require.NoError(t, err)
	require.Equal(t, operation.Split, out.Operation().Kind())
	assert.Equal(t, 0, out.Operation().First().Pos())
	assert.Equal(t, 5, out.Operation().Second().Pos())
}

func TestEncodeDecodeUndoRedoRoundTrip(t *testing.T) {
	base := vector.New()
	base.Set(1, 1)
	v := vector.New()
	v.Set(1, 2)

	undo := request.NewUndo(v, 1, 0)
	data, err := EncodeRequest(undo, base)
	require.NoError(t, err)
	out, err := DecodeRequest(data, base)
	require.NoError(t, err)
	assert.Equal(t, request.Undo, out.Type())
	assert.True(t, out.Vector().Equal(v))

	redo := request.NewRedo(v, 1, 0)
	data, err = EncodeRequest(redo, base)
	require.NoError(t, err)
	out, err = DecodeRequest(data, base)
	require.NoError(t, err)
	assert.Equal(t, request.Redo, out.Type())
}

func TestSyncEnvelopeRoundTrip(t *testing.T) {
	begin := SyncBegin{NumMessages: 7}
	data, err := Marshal(begin)
	require.NoError(t, err)
	name, err := PeekElementName(data)
	require.NoError(t, err)
	assert.Equal(t, "sync-begin", name)

	out, err := UnmarshalSyncBegin(data)
	require.NoError(t, err)
	assert.Equal(t, 7, out.NumMessages)

	sErr := SyncError{Condition: "conflict", Text: "causality violation"}
	data, err = Marshal(sErr)
	require.NoError(t, err)
	outErr, err := UnmarshalSyncError(data)
	require.NoError(t, err)
	assert.Equal(t, "conflict", outErr.Condition)
	assert.Equal(t, "causality violation", outErr.Text)
}
