// Package requestlog implements the per-participant request log (spec
// component D): a dense, append-only sequence of a single user's requests
// with associative undo/redo links and a translation cache.
package requestlog

import (
	"github.com/pkg/errors"

	"github.com/sfurman3/inftext/request"
	"github.com/sfurman3/inftext/vector"
)

type entry struct {
	req *request.Request

	// target is the index this entry's Undo/Redo operates on: the
	// request it undoes or redoes. -1 for Do entries.
	target int

	// canceledBy is the index of the Undo/Redo that later paired with
	// this entry (an Undo cancels a Do/Redo; a Redo cancels an Undo).
	// -1 while unpaired.
	canceledBy int
}

// Log is one user's request log. The zero value is not usable; use New.
type Log struct {
	userID  uint32
	begin   int
	entries []entry

	// cache maps a target state vector's canonical string form to a
	// previously computed translation of this user's original request.
	cache map[string]*request.Request
}

// New returns an empty log for the given user, starting at index 0.
func New(userID uint32) *Log {
	return &Log{userID: userID, cache: make(map[string]*request.Request)}
}

// UserID returns the user this log belongs to.
func (l *Log) UserID() uint32 { return l.userID }

// Begin returns the smallest valid index (inclusive).
func (l *Log) Begin() int { return l.begin }

// End returns one past the largest valid index (exclusive); also the
// index the next Add call must use.
func (l *Log) End() int { return l.begin + len(l.entries) }

// Len returns the number of retained entries (End - Begin).
func (l *Log) Len() int { return len(l.entries) }

func (l *Log) indexOf(n int) (int, bool) {
	if n < l.begin || n >= l.End() {
		return 0, false
	}
	return n - l.begin, true
}

// Get returns the request at absolute index n.
func (l *Log) Get(n int) (*request.Request, bool) {
	i, ok := l.indexOf(n)
	if !ok {
		return nil, false
	}
	return l.entries[i].req, true
}

// Add appends r, which must be this log's user's next request: its
// vector's component for this user must equal End(). For Undo/Redo
// requests, the association (target) is resolved against NextUndo /
// NextRedo at the moment of insertion.
func (l *Log) Add(r *request.Request) error {
	if r.UserID() != l.userID {
		return errors.Errorf("requestlog: add: request user %d does not belong to log for user %d", r.UserID(), l.userID)
	}
	idx := l.End()
	if got := r.Vector().Get(l.userID); got != uint64(idx) {
		return errors.Errorf("requestlog: add: request vector component %d does not match next index %d", got, idx)
	}

	e := entry{req: r, target: -1, canceledBy: -1}
	switch r.Type() {
	case request.Undo:
		target, ok := l.NextUndo()
		if !ok {
			return errors.New("requestlog: add: no undoable request available")
		}
		e.target = target
		l.entries[target-l.begin].canceledBy = idx
	case request.Redo:
		target, ok := l.NextRedo()
		if !ok {
			return errors.New("requestlog: add: no redoable request available")
		}
		e.target = target
		l.entries[target-l.begin].canceledBy = idx
	}
	l.entries = append(l.entries, e)
	return nil
}

// NextUndo returns the index of the request the user would currently
// undo: the newest Do or Redo not yet canceled by an Undo.
func (l *Log) NextUndo() (int, bool) {
	for i := len(l.entries) - 1; i >= 0; i-- {
		e := l.entries[i]
		if e.canceledBy != -1 {
			continue
		}
		if e.req.Type() == request.Do || e.req.Type() == request.Redo {
			return l.begin + i, true
		}
	}
	return 0, false
}

// NextRedo returns the index of the request the user would currently
// redo: the newest Undo not yet canceled by a Redo.
func (l *Log) NextRedo() (int, bool) {
	for i := len(l.entries) - 1; i >= 0; i-- {
		e := l.entries[i]
		if e.canceledBy != -1 {
			continue
		}
		if e.req.Type() == request.Undo {
			return l.begin + i, true
		}
	}
	return 0, false
}

// NextAssociated returns the index of the request that pairs with and
// comes after n: for a Do/Redo, the Undo that cancels it; for an Undo,
// the Redo that cancels it. Returns ok=false if n is unpaired so far.
func (l *Log) NextAssociated(n int) (int, bool) {
	i, ok := l.indexOf(n)
	if !ok {
		return 0, false
	}
	if l.entries[i].canceledBy == -1 {
		return 0, false
	}
	return l.entries[i].canceledBy, true
}

// PrevAssociated returns the index of the request n (an Undo or Redo)
// operates on. Returns ok=false for a Do, which has no predecessor link.
func (l *Log) PrevAssociated(n int) (int, bool) {
	i, ok := l.indexOf(n)
	if !ok {
		return 0, false
	}
	if l.entries[i].target == -1 {
		return 0, false
	}
	return l.entries[i].target, true
}

// OriginalRequest walks n's prev-associated chain back to the Do that
// originated it.
func (l *Log) OriginalRequest(n int) (int, error) {
	cur := n
	for {
		i, ok := l.indexOf(cur)
		if !ok {
			return 0, errors.Errorf("requestlog: original-request: index %d out of range", cur)
		}
		if l.entries[i].req.Type() == request.Do {
			return cur, nil
		}
		target := l.entries[i].target
		if target == -1 {
			return 0, errors.Errorf("requestlog: original-request: index %d has no predecessor", cur)
		}
		cur = target
	}
}

// UpperRelated returns the smallest index m >= n+1 such that no entry at
// or after m points (via its target) back into [n, m); this identifies
// a self-contained, closed cluster of mutually paired requests starting
// at n, suitable for bulk removal by cleanup.
func (l *Log) UpperRelated(n int) int {
	m := n + 1
	for {
		grown := false
		for i := m; i < l.End(); i++ {
			target := l.entries[i-l.begin].target
			if target >= n && target < m {
				m = i + 1
				grown = true
			}
		}
		if !grown {
			break
		}
	}
	return m
}

// RemoveRequests drops all entries with index < n and purges any cached
// translation whose target vector's component for this user already
// falls before n (such translations reference a state this log can no
// longer represent).
func (l *Log) RemoveRequests(n int) {
	if n <= l.begin {
		return
	}
	if n > l.End() {
		n = l.End()
	}
	l.entries = l.entries[n-l.begin:]
	l.begin = n

	for key, cached := range l.cache {
		if cached.Vector().Get(l.userID) < uint64(n) {
			delete(l.cache, key)
		}
	}
}

// CacheGet returns a cached translation of this user's original request
// to target, if one was previously stored.
func (l *Log) CacheGet(target *vector.Vector) (*request.Request, bool) {
	r, ok := l.cache[target.String()]
	return r, ok
}

// CachePut stores a translation of this user's original request to
// target. Callers (the transformation engine) only call this for
// requests that are both AffectsBuffer and Reversible.
func (l *Log) CachePut(target *vector.Vector, translated *request.Request) {
	l.cache[target.String()] = translated
}
