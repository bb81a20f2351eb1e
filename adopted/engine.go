// Package adopted implements the transformation engine (spec component G):
// translating any request into the form it must take to be applied at a
// causally-later state, by folding paired undo/redo sequences and
// transforming across genuinely concurrent operations from other
// participants.
package adopted

import (
	"github.com/pkg/errors"

	"github.com/sfurman3/inftext/operation"
	"github.com/sfurman3/inftext/request"
	"github.com/sfurman3/inftext/usertable"
	"github.com/sfurman3/inftext/vector"
)

// Engine translates requests against the session's user table. It holds
// no state of its own beyond a reference to the table; all durable state
// (logs, caches) lives on the users themselves.
type Engine struct {
	users *usertable.Table
}

// New returns a transformation engine over users.
func New(users *usertable.Table) *Engine {
	return &Engine{users: users}
}

// Translate rewrites original (which callers must already have resolved
// to its originating Do form, e.g. via a Request Log's OriginalRequest)
// so it applies cleanly at target. target must be causally reachable
// from original.Vector() and itself causally before the session's
// current state. The result is always in Do form; callers reconstruct an
// Undo/Redo identity via the log's association links.
func (e *Engine) Translate(original *request.Request, target *vector.Vector) (*request.Request, error) {
	user, ok := e.users.ByID(original.UserID())
	if !ok {
		return nil, errors.Errorf("adopted: translate: unknown user %d", original.UserID())
	}
	cur := original

	if target.Equal(cur.Vector()) {
		return cur, nil
	}

	// Step 2: consult the translation cache.
	if cur.Operation() != nil && cur.Operation().AffectsBuffer() && cur.Operation().IsReversible() {
		if cached, ok := user.Log().CacheGet(target); ok {
			return cached, nil
		}
	}

	v := cur.Vector().Copy()
	for !v.Equal(target) {
		progressed, next, nextV, err := e.step(cur, v, target)
		if err != nil {
			return nil, err
		}
		if !progressed {
			progressed, next, nextV, err = e.lateMirror(cur, v, target)
			if err != nil {
				return nil, err
			}
			if !progressed {
				return nil, errors.New("adopted: translate: no progress toward target vector")
			}
		}
		cur, v = next, nextV
	}

	// cur has accumulated the right operation but still carries its
	// origin vector; give callers (and the next Translate call, which
	// seeds v from cur.Vector()) the promised invariant that a
	// translated request's vector is the target it was translated to.
	cur = cur.WithVector(target)

	if cur.Operation() != nil && cur.Operation().AffectsBuffer() && cur.Operation().IsReversible() {
		user.Log().CachePut(target, cur)
	}
	return cur, nil
}

// step performs one iteration of the forward-translation loop's body (a):
// scan active participants other than cur's own for the first with a
// pending range, and either fold across an associated pair or transform
// against a translated concurrent operation.
func (e *Engine) step(cur *request.Request, v, target *vector.Vector) (progressed bool, next *request.Request, nextV *vector.Vector, err error) {
	for _, other := range e.users.Users() {
		p := other.ID()
		if p == cur.UserID() {
			continue
		}
		lo, hi := v.Get(p), target.Get(p)
		if lo >= hi {
			continue
		}

		pLog := other.Log()
		if _, ok := pLog.Get(int(lo)); !ok {
			continue
		}

		if assoc, hasAssoc := pLog.NextAssociated(int(lo)); hasAssoc && assoc < int(hi) {
			// Fold: pReq and its associate are inverses of one
			// another, so their combined effect on cur is the
			// identity; only the tracking vector advances.
			nextV = v.Copy()
			nextV.Set(p, uint64(assoc+1))
			return true, cur, nextV, nil
		}

		// Transform: bring pReq's originating Do up to v, then
		// transform cur against it.
		origIdx, err := pLog.OriginalRequest(int(lo))
		if err != nil {
			return false, nil, nil, err
		}
		pOrig, ok := pLog.Get(origIdx)
		if !ok {
			return false, nil, nil, errors.Errorf("adopted: step: user %d missing original at %d", p, origIdx)
		}
		translatedPartner, err := e.Translate(pOrig, v)
		if err != nil {
			return false, nil, nil, err
		}

		newOp, err := operation.Transform(cur.Operation(), translatedPartner.Operation(), cur.UserID(), p)
		if err != nil {
			return false, nil, nil, err
		}

		nextV = v.Copy()
		nextV.Add(p, 1)
		return true, cur.WithOperation(newOp), nextV, nil
	}
	return false, nil, nil, nil
}

// lateMirror handles the case where the only remaining gap is in cur's
// own user's component. Later requests by cur's own user never need a
// transform against cur (they're serialized after it in that user's own
// log, not concurrent with it) — they only matter if one of them is the
// associate that undoes or redoes cur itself, in which case cur folds
// across that pair exactly as it would across another user's. Otherwise
// the gap is just cur's user's later, unrelated history passing by, and
// v catches straight up to target with cur unchanged.
func (e *Engine) lateMirror(cur *request.Request, v, target *vector.Vector) (progressed bool, next *request.Request, nextV *vector.Vector, err error) {
	user, ok := e.users.ByID(cur.UserID())
	if !ok {
		return false, nil, nil, errors.Errorf("adopted: late-mirror: unknown user %d", cur.UserID())
	}
	idx := int(v.Get(cur.UserID()))
	hi := int(target.Get(cur.UserID()))
	if idx >= hi {
		return false, nil, nil, nil
	}
	nextV = v.Copy()
	if assoc, hasAssoc := user.Log().NextAssociated(idx); hasAssoc && assoc < hi {
		nextV.Set(cur.UserID(), uint64(assoc+1))
	} else {
		nextV.Set(cur.UserID(), uint64(hi))
	}
	return true, cur, nextV, nil
}
