package session

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sfurman3/inftext/chunk"
	"github.com/sfurman3/inftext/operation"
	"github.com/sfurman3/inftext/request"
	"github.com/sfurman3/inftext/usertable"
	"github.com/sfurman3/inftext/vector"
)

func newTestSession(t *testing.T) *Session {
	t.Helper()
	s := New(DefaultConfig(), nil)
	s.Start()
	return s
}

func bufText(t *testing.T, s *Session) string {
	t.Helper()
	c, err := s.Buffer().Slice(0, s.Buffer().Len())
	require.NoError(t, err)
	return c.String()
}

func vecOf(t *testing.T, pairs ...uint64) *vector.Vector {
	t.Helper()
	v := vector.New()
	for i := 0; i < len(pairs); i += 2 {
		v.Set(uint32(pairs[i]), pairs[i+1])
	}
	return v
}

func TestStartTransitionsPresyncToRunning(t *testing.T) {
	s := New(DefaultConfig(), nil)
	assert.Equal(t, Presync, s.Status())
	s.Start()
	assert.Equal(t, Running, s.Status())
}

func TestExecuteSimpleDoInsert(t *testing.T) {
	s := newTestSession(t)
	_, err := s.Users().AddUser(1, "alice", usertable.Local)
	require.NoError(t, err)

	op := operation.NewInsert(0, chunk.FromString(1, "a"))
	r := request.NewDo(vecOf(t, 1, 0), 1, op, 0)

	logEntry, translated, err := s.ExecuteRequest(r, true)
	require.NoError(t, err)
	assert.Equal(t, "a", bufText(t, s))
	assert.Same(t, op, translated.Operation())
	assert.Equal(t, uint64(1), s.CurrentVector().Get(1))
	assert.Same(t, r, logEntry)
}

func TestExecuteConcurrentInsertsConverge(t *testing.T) {
	s := newTestSession(t)
	_, err := s.Users().AddUser(1, "alice", usertable.Local)
	require.NoError(t, err)
	_, err = s.Users().AddUser(2, "bob", 0)
	require.NoError(t, err)

	op1 := operation.NewInsert(0, chunk.FromString(1, "a"))
	r1 := request.NewDo(vecOf(t, 1, 0, 2, 0), 1, op1, 0)
	_, _, err = s.ExecuteRequest(r1, true)
	require.NoError(t, err)

	op2 := operation.NewInsert(0, chunk.FromString(2, "b"))
	r2 := request.NewDo(vecOf(t, 1, 0, 2, 0), 2, op2, 0)
	_, _, err = s.ExecuteRequest(r2, true)
	require.NoError(t, err)

	assert.Equal(t, "ab", bufText(t, s))
}

func TestExecuteUndoThenRedo(t *testing.T) {
	s := newTestSession(t)
	_, err := s.Users().AddUser(1, "alice", usertable.Local)
	require.NoError(t, err)

	op := operation.NewInsert(0, chunk.FromString(1, "x"))
	doReq := request.NewDo(vecOf(t, 1, 0), 1, op, 0)
	_, _, err = s.ExecuteRequest(doReq, true)
	require.NoError(t, err)
	assert.Equal(t, "x", bufText(t, s))
	assert.True(t, s.CanUndo(1))

	undoReq := request.NewUndo(vecOf(t, 1, 1), 1, 0)
	_, _, err = s.ExecuteRequest(undoReq, true)
	require.NoError(t, err)
	assert.Equal(t, "", bufText(t, s))
	assert.True(t, s.CanRedo(1))
	assert.False(t, s.CanUndo(1))

	redoReq := request.NewRedo(vecOf(t, 1, 2), 1, 0)
	_, _, err = s.ExecuteRequest(redoReq, true)
	require.NoError(t, err)
	assert.Equal(t, "x", bufText(t, s))
	assert.True(t, s.CanUndo(1))
	assert.False(t, s.CanRedo(1))
}

func TestExecuteUndoWithoutHistoryFails(t *testing.T) {
	s := newTestSession(t)
	_, err := s.Users().AddUser(1, "alice", usertable.Local)
	require.NoError(t, err)

	undoReq := request.NewUndo(vecOf(t, 1, 0), 1, 0)
	_, _, err = s.ExecuteRequest(undoReq, true)
	assert.Error(t, err)
	var sessErr *Error
	require.ErrorAs(t, err, &sessErr)
	assert.Equal(t, NoUndoAvailable, sessErr.Kind)
}

func TestExecuteRejectsCausalityViolation(t *testing.T) {
	s := newTestSession(t)
	_, err := s.Users().AddUser(1, "alice", usertable.Local)
	require.NoError(t, err)

	op := operation.NewInsert(0, chunk.FromString(1, "x"))
	r := request.NewDo(vecOf(t, 1, 5), 1, op, 0) // claims 5 prior ops that don't exist
	_, _, err = s.ExecuteRequest(r, true)
	assert.Error(t, err)
	var sessErr *Error
	require.ErrorAs(t, err, &sessErr)
	assert.Equal(t, CausalityViolation, sessErr.Kind)
}

func TestExecuteReentrancyPanics(t *testing.T) {
	s := newTestSession(t)
	_, err := s.Users().AddUser(1, "alice", usertable.Local)
	require.NoError(t, err)

	s.OnBeginExecute(func(userID uint32, r *request.Request) {
		assert.Panics(t, func() {
			_, _, _ = s.ExecuteRequest(r, true)
		})
	})

	op := operation.NewInsert(0, chunk.FromString(1, "x"))
	r := request.NewDo(vecOf(t, 1, 0), 1, op, 0)
	_, _, err = s.ExecuteRequest(r, true)
	require.NoError(t, err)
}

func TestExecuteUnknownUserPanics(t *testing.T) {
	s := newTestSession(t)
	op := operation.NewInsert(0, chunk.FromString(9, "x"))
	r := request.NewDo(vecOf(t, 9, 0), 9, op, 0)
	assert.Panics(t, func() {
		_, _, _ = s.ExecuteRequest(r, true)
	})
}
