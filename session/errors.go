package session

import "github.com/pkg/errors"

// ErrorKind classifies the error conditions the driver and façade can
// surface, per the external-interfaces contract.
type ErrorKind int

const (
	// CausalityViolation: a request's origin vector is not
	// causally_before the current state.
	CausalityViolation ErrorKind = iota
	// NoUndoAvailable: an Undo was requested with nothing to undo.
	NoUndoAvailable
	// NoRedoAvailable: a Redo was requested with nothing to redo.
	NoRedoAvailable
	// OperationApplyFailure: the buffer rejected an apply (e.g.
	// out-of-range position).
	OperationApplyFailure
	// DuplicateUserID: a user join collided on id.
	DuplicateUserID
	// DuplicateUserName: a user join collided on name.
	DuplicateUserName
	// SyncProtocolError: an inbound sync envelope violated the
	// sync-begin/segment/end/ack protocol.
	SyncProtocolError
	// TransportError: the transport delivered a malformed or
	// undecodable envelope.
	TransportError
)

func (k ErrorKind) String() string {
	switch k {
	case CausalityViolation:
		return "causality-violation"
	case NoUndoAvailable:
		return "no-undo-available"
	case NoRedoAvailable:
		return "no-redo-available"
	case OperationApplyFailure:
		return "operation-apply-failure"
	case DuplicateUserID:
		return "duplicate-user-id"
	case DuplicateUserName:
		return "duplicate-user-name"
	case SyncProtocolError:
		return "sync-protocol-error"
	case TransportError:
		return "transport-error"
	default:
		return "unknown"
	}
}

// Error is the error type returned by the driver and façade; it carries a
// stable Kind subscribers can switch on in addition to the usual wrapped
// message chain.
type Error struct {
	Kind ErrorKind
	err  error
}

func newError(kind ErrorKind, msg string) *Error {
	return &Error{Kind: kind, err: errors.New(msg)}
}

func wrapError(kind ErrorKind, err error, msg string) *Error {
	return &Error{Kind: kind, err: errors.Wrap(err, msg)}
}

func (e *Error) Error() string { return e.Kind.String() + ": " + e.err.Error() }

// Unwrap exposes the underlying error chain to errors.Is/errors.As.
func (e *Error) Unwrap() error { return e.err }
