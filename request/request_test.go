package request

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/sfurman3/inftext/chunk"
	"github.com/sfurman3/inftext/operation"
	"github.com/sfurman3/inftext/vector"
)

func TestNewDoCarriesOperation(t *testing.T) {
	v := vector.New()
	v.Set(1, 3)
	op := operation.NewInsert(0, chunk.FromString(1, "x"))
	r := NewDo(v, 1, op, 1000)

	assert.Equal(t, Do, r.Type())
	assert.Equal(t, uint32(1), r.UserID())
	assert.Same(t, op, r.Operation())
	assert.Equal(t, int64(1000), r.ReceiveTime())
	assert.Equal(t, int64(0), r.ExecuteTime())
}

func TestNewUndoRedoHaveNoOperation(t *testing.T) {
	v := vector.New()
	undo := NewUndo(v, 2, 10)
	redo := NewRedo(v, 2, 20)

	assert.Equal(t, Undo, undo.Type())
	assert.Nil(t, undo.Operation())
	assert.Equal(t, Redo, redo.Type())
	assert.Nil(t, redo.Operation())
}

func TestSetExecuteTime(t *testing.T) {
	r := NewDo(vector.New(), 1, operation.NewNoOp(), 0)
	r.SetExecuteTime(500)
	assert.Equal(t, int64(500), r.ExecuteTime())
}

func TestWithOperationDoesNotMutateOriginal(t *testing.T) {
	op1 := operation.NewInsert(0, chunk.FromString(1, "a"))
	op2 := operation.NewDelete(0, 1)
	r := NewDo(vector.New(), 1, op1, 0)

	r2 := r.WithOperation(op2)

	assert.Same(t, op1, r.Operation())
	assert.Same(t, op2, r2.Operation())
}

func TestWithVectorDoesNotMutateOriginal(t *testing.T) {
	v1 := vector.New()
	v1.Set(1, 1)
	v2 := vector.New()
	v2.Set(1, 2)

	r := NewDo(v1, 1, operation.NewNoOp(), 0)
	r2 := r.WithVector(v2)

	assert.Same(t, v1, r.Vector())
	assert.Same(t, v2, r2.Vector())
}

func TestTypeString(t *testing.T) {
	assert.Equal(t, "do", Do.String())
	assert.Equal(t, "undo", Undo.String())
	assert.Equal(t, "redo", Redo.String())
}
