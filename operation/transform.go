package operation

import (
	"github.com/pkg/errors"

	"github.com/sfurman3/inftext/chunk"
)

// NeedConcurrencyID reports whether transforming a against b requires a
// tie-breaker (the concurrency id) because both operations reference the
// same buffer position and the algebra can't otherwise order them. This
// only arises when b is an Insert and a references a position that could
// coincide with b's: another Insert, or a Move whose caret sits exactly at
// b's insertion point.
func NeedConcurrencyID(a, b *Operation) bool {
	if b.kind != Insert {
		return false
	}
	switch a.kind {
	case Insert:
		return a.pos == b.pos
	case Move:
		return a.pos == b.pos || a.pos+a.length == b.pos
	default:
		return false
	}
}

// Transform rewrites a so that applying b then the result has the same
// effect as applying a then b. aOwner and bOwner are the originating user
// ids of a and b respectively, used to break position ties
// (NeedConcurrencyID) deterministically: the operation from the
// lower-numbered user is considered to have happened first.
func Transform(a, b *Operation, aOwner, bOwner uint32) (*Operation, error) {
	if b.kind == Split {
		mid, err := Transform(a, b.first, aOwner, bOwner)
		if err != nil {
			return nil, err
		}
		return Transform(mid, b.second, aOwner, bOwner)
	}

	if a.kind == Split {
		newFirst, err := Transform(a.first, b, aOwner, bOwner)
		if err != nil {
			return nil, err
		}
		bAfterFirst, err := Transform(b, a.first, bOwner, aOwner)
		if err != nil {
			return nil, err
		}
		newSecond, err := Transform(a.second, bAfterFirst, aOwner, bOwner)
		if err != nil {
			return nil, err
		}
		return NewSplit(newFirst, newSecond), nil
	}

	if a.kind == NoOp || b.kind == NoOp || b.kind == Move {
		return a.Clone(), nil
	}

	switch a.kind {
	case Insert:
		return transformInsert(a, b, aOwner, bOwner)
	case Delete:
		return transformDelete(a, b)
	case Move:
		return transformMove(a, b, aOwner, bOwner)
	default:
		return nil, errors.Errorf("operation: transform: unknown kind %v", a.kind)
	}
}

// transformPoint adjusts a single cursor position pos (owned by posOwner)
// across b (an Insert or Delete owned by bOwner).
func transformPoint(pos int, posOwner uint32, b *Operation, bOwner uint32) int {
	switch b.kind {
	case Insert:
		switch {
		case pos < b.pos:
			return pos
		case pos > b.pos:
			return pos + b.chunk.Len()
		default: // pos == b.pos: tie-break
			if posOwner <= bOwner {
				return pos
			}
			return pos + b.chunk.Len()
		}
	case Delete:
		end := b.pos + b.length
		switch {
		case pos <= b.pos:
			return pos
		case pos >= end:
			return pos - b.length
		default:
			return b.pos
		}
	default:
		return pos
	}
}

func transformInsert(a, b *Operation, aOwner, bOwner uint32) (*Operation, error) {
	return NewInsert(transformPoint(a.pos, aOwner, b, bOwner), a.chunk), nil
}

func transformMove(a, b *Operation, aOwner, bOwner uint32) (*Operation, error) {
	start := transformPoint(a.pos, aOwner, b, bOwner)
	end := transformPoint(a.pos+a.length, aOwner, b, bOwner)
	if end < start {
		end = start
	}
	return NewMove(start, end-start), nil
}

// deleteAt returns a Delete at pos spanning length characters, carrying c
// as its erased content when a's own delete was reversible (c non-nil).
func deleteAt(pos, length int, c *chunk.Chunk) *Operation {
	if c == nil {
		return NewDelete(pos, length)
	}
	return NewReversibleDelete(pos, c)
}

func transformDelete(a, b *Operation) (*Operation, error) {
	switch b.kind {
	case Insert:
		insLen := b.chunk.Len()
		switch {
		case b.pos <= a.pos:
			return deleteAt(a.pos+insLen, a.length, a.chunk), nil
		case b.pos >= a.pos+a.length:
			return a.Clone(), nil
		default:
			// b falls strictly inside a's range: split a around it.
			// The two pieces are applied in sequence on the buffer
			// that already has b applied, so the second piece's
			// position must account for the first piece's removal.
			firstLen := b.pos - a.pos
			secondLen := a.length - firstLen
			var firstChunk, secondChunk *chunk.Chunk
			if a.chunk != nil {
				var err error
				firstChunk, err = a.chunk.Slice(0, firstLen)
				if err != nil {
					return nil, errors.Wrap(err, "operation: transform delete: split erased chunk")
				}
				secondChunk, err = a.chunk.Slice(firstLen, secondLen)
				if err != nil {
					return nil, errors.Wrap(err, "operation: transform delete: split erased chunk")
				}
			}
			return NewSplit(
				deleteAt(a.pos, firstLen, firstChunk),
				deleteAt(a.pos+insLen, secondLen, secondChunk),
			), nil
		}
	case Delete:
		aStart, aEnd := a.pos, a.pos+a.length
		bStart, bEnd := b.pos, b.pos+b.length

		overlapStart := max(aStart, bStart)
		overlapEnd := min(aEnd, bEnd)
		overlap := 0
		if overlapEnd > overlapStart {
			overlap = overlapEnd - overlapStart
		}

		newLen := a.length - overlap
		if newLen <= 0 {
			return NewNoOp(), nil
		}

		// Shift aStart left by however much of b's deleted range falls
		// at or before it; this covers both the disjoint (pure shift)
		// and overlapping cases uniformly.
		before := min(bEnd, aStart) - bStart
		if before < 0 {
			before = 0
		}
		newPos := aStart - before

		if a.chunk == nil {
			return NewDelete(newPos, newLen), nil
		}
		remaining := a.chunk
		if overlap > 0 {
			localStart := overlapStart - aStart
			var err error
			remaining, err = a.chunk.Erase(localStart, overlap)
			if err != nil {
				return nil, errors.Wrap(err, "operation: transform delete: trim erased chunk")
			}
		}
		return NewReversibleDelete(newPos, remaining), nil
	default:
		return a.Clone(), nil
	}
}
