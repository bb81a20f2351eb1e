// Package request implements Request (spec component C): an operation
// tagged with its originating participant, origin state vector, and a
// do/undo/redo discriminator.
package request

import (
	"github.com/sfurman3/inftext/operation"
	"github.com/sfurman3/inftext/vector"
)

// Type discriminates what kind of request this is.
type Type int

const (
	// Do carries an operation to apply.
	Do Type = iota
	// Undo references the most recent undoable Do/Redo by the same user.
	Undo
	// Redo references the most recent redoable Undo by the same user.
	Redo
)

func (t Type) String() string {
	switch t {
	case Do:
		return "do"
	case Undo:
		return "undo"
	case Redo:
		return "redo"
	default:
		return "unknown"
	}
}

// Request is an atomic, originating edit intent by one participant.
type Request struct {
	typ    Type
	userID uint32
	vector *vector.Vector
	op     *operation.Operation // only populated for Do

	receiveTimeMicros int64
	executeTimeMicros int64
}

// NewDo returns a new Do request.
func NewDo(v *vector.Vector, userID uint32, op *operation.Operation, receiveTimeMicros int64) *Request {
	return &Request{typ: Do, userID: userID, vector: v, op: op, receiveTimeMicros: receiveTimeMicros}
}

// NewUndo returns a new Undo request. Its target is resolved via the
// user's request log (see package requestlog), not stored here.
func NewUndo(v *vector.Vector, userID uint32, receiveTimeMicros int64) *Request {
	return &Request{typ: Undo, userID: userID, vector: v, receiveTimeMicros: receiveTimeMicros}
}

// NewRedo returns a new Redo request.
func NewRedo(v *vector.Vector, userID uint32, receiveTimeMicros int64) *Request {
	return &Request{typ: Redo, userID: userID, vector: v, receiveTimeMicros: receiveTimeMicros}
}

// Type returns the request's discriminator.
func (r *Request) Type() Type { return r.typ }

// UserID returns the originating participant's id.
func (r *Request) UserID() uint32 { return r.userID }

// Vector returns the request's origin state vector. Callers must not
// mutate the returned vector; requests are immutable once logged.
func (r *Request) Vector() *vector.Vector { return r.vector }

// Operation returns the request's operation. Only meaningful for Do
// requests; returns nil for Undo/Redo.
func (r *Request) Operation() *operation.Operation { return r.op }

// ReceiveTime returns the receive timestamp in microseconds, or 0 if unset.
func (r *Request) ReceiveTime() int64 { return r.receiveTimeMicros }

// ExecuteTime returns the execute timestamp in microseconds, or 0 if not
// yet executed.
func (r *Request) ExecuteTime() int64 { return r.executeTimeMicros }

// SetExecuteTime is called by the execution driver once a request commits.
func (r *Request) SetExecuteTime(micros int64) { r.executeTimeMicros = micros }

// WithOperation returns a shallow copy of r with its operation replaced.
// Used by the execution driver to store a reversible rewrite of a Do
// request's operation without mutating the original (requests are
// immutable once appended to a log).
func (r *Request) WithOperation(op *operation.Operation) *Request {
	out := *r
	out.op = op
	return &out
}

// WithVector returns a shallow copy of r with its vector replaced. Used by
// the transformation engine to produce translated requests.
func (r *Request) WithVector(v *vector.Vector) *Request {
	out := *r
	out.vector = v
	return &out
}
