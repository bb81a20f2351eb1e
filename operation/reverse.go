package operation

import "github.com/pkg/errors"

// Reverse returns op's inverse: applying op then Reverse(op) is the
// identity. op must be reversible (see IsReversible); Move and NoOp have no
// buffer effect and reverse to NoOp.
func Reverse(op *Operation) (*Operation, error) {
	switch op.kind {
	case Insert:
		return NewDelete(op.pos, op.chunk.Len()), nil
	case Delete:
		if op.chunk == nil {
			return nil, errors.New("operation: reverse: delete is not reversible")
		}
		return NewInsert(op.pos, op.chunk), nil
	case Move, NoOp:
		return NewNoOp(), nil
	case Split:
		first, err := Reverse(op.first)
		if err != nil {
			return nil, err
		}
		second, err := Reverse(op.second)
		if err != nil {
			return nil, err
		}
		// Undo the second half before the first, mirroring the
		// forward application order.
		return NewSplit(second, first), nil
	default:
		return nil, errors.Errorf("operation: reverse: unknown kind %v", op.kind)
	}
}
