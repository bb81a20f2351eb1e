package session

import (
	"fmt"

	"github.com/sfurman3/inftext/operation"
	"github.com/sfurman3/inftext/request"
	"github.com/sfurman3/inftext/usertable"
	"github.com/sfurman3/inftext/vector"
)

// ExecuteRequest is the execution driver (spec component H): it validates
// r, translates it to the current state, applies it to the buffer (unless
// applyToBuffer is false, meaning a local editor already mutated the
// buffer directly), appends the resulting log entry, and maintains
// derived state (current vector, modified flag, can-undo/can-redo).
//
// It returns the request actually appended to the log (which may differ
// from r for a Do whose operation gained reversibility) and the
// translated form applied against the buffer.
//
// Not safe to call re-entrantly: a request already being executed must
// finish before another may start. Re-entry, and passing a request for an
// unknown or inactive user, are contract violations and panic rather than
// returning an error (see spec §7's assertion-failure carve-out).
func (s *Session) ExecuteRequest(r *request.Request, applyToBuffer bool) (*request.Request, *request.Request, error) {
	if s.executing != nil {
		panic(fmt.Sprintf("session: contract violation: re-entrant ExecuteRequest while executing request for user %d", s.executing.UserID()))
	}

	user, ok := s.users.ByID(r.UserID())
	s.assertf(ok, "request references unknown user %d", r.UserID())
	s.assertf(user.Status() == usertable.Active, "request references inactive user %d", r.UserID())

	if !r.Vector().CausallyBefore(s.current) {
		err := newError(CausalityViolation, "request origin vector is not causally before the current state")
		return nil, nil, err
	}
	if !applyToBuffer {
		s.assertf(r.Vector().Equal(s.current) && r.Type() == request.Do,
			"apply_to_buffer=false requires a Do request exactly at the current vector")
	}

	s.executing = r
	defer func() { s.executing = nil }()

	r.SetExecuteTime(s.clock.NowMicros())
	s.fireBeginExecute(user.ID(), r)

	original, err := s.resolveOriginal(user, r)
	if err != nil {
		return nil, nil, s.failExecute(user.ID(), err)
	}

	translated, err := s.engine.Translate(original, s.current)
	if err != nil {
		return nil, nil, s.failExecute(user.ID(), wrapError(OperationApplyFailure, err, "execute_request: translate"))
	}

	logEntry, err := s.applyRequest(user, r, original, translated, applyToBuffer)
	if err != nil {
		return nil, nil, s.failExecute(user.ID(), err)
	}

	if err := user.Log().Add(logEntry); err != nil {
		panic("session: contract violation: request log add failed: " + err.Error())
	}
	s.current.Add(user.ID(), 1)

	for _, u := range s.users.Users() {
		if u.IsLocal() {
			u.SetVector(s.current.Copy())
		}
	}

	s.maintainModifiedFlag()
	s.recomputeUndoRedo()

	s.fireEndExecute(user.ID(), logEntry, translated, nil)
	return logEntry, translated, nil
}

// resolveOriginal validates Undo/Redo availability and returns the
// originating Do request r ultimately resolves to.
func (s *Session) resolveOriginal(user *usertable.User, r *request.Request) (*request.Request, error) {
	switch r.Type() {
	case request.Do:
		return r, nil
	case request.Undo:
		idx, ok := user.Log().NextUndo()
		if !ok {
			return nil, newError(NoUndoAvailable, fmt.Sprintf("user %d has nothing to undo", user.ID()))
		}
		origIdx, err := user.Log().OriginalRequest(idx)
		if err != nil {
			return nil, wrapError(OperationApplyFailure, err, "resolve undo target")
		}
		orig, ok := user.Log().Get(origIdx)
		s.assertf(ok, "user %d log missing resolved original at %d", user.ID(), origIdx)
		return orig, nil
	case request.Redo:
		idx, ok := user.Log().NextRedo()
		if !ok {
			return nil, newError(NoRedoAvailable, fmt.Sprintf("user %d has nothing to redo", user.ID()))
		}
		origIdx, err := user.Log().OriginalRequest(idx)
		if err != nil {
			return nil, wrapError(OperationApplyFailure, err, "resolve redo target")
		}
		orig, ok := user.Log().Get(origIdx)
		s.assertf(ok, "user %d log missing resolved original at %d", user.ID(), origIdx)
		return orig, nil
	default:
		panic(fmt.Sprintf("session: contract violation: unknown request type %v", r.Type()))
	}
}

// applyRequest performs step 5 of the execution algorithm: mutating the
// buffer (unless applyToBuffer is false) and producing the request to
// append to the log.
func (s *Session) applyRequest(user *usertable.User, r, original, translated *request.Request, applyToBuffer bool) (*request.Request, error) {
	if !applyToBuffer {
		return r, nil
	}
	s.buf.SetNotificationsSuppressed(true)
	defer s.buf.SetNotificationsSuppressed(false)
	switch r.Type() {
	case request.Do:
		rewritten, err := operation.ApplyTransformed(original.Operation(), translated.Operation(), user.ID(), s.buf)
		if err != nil {
			return nil, wrapError(OperationApplyFailure, err, "apply_transformed")
		}
		if rewritten == original.Operation() {
			return r, nil
		}
		return r.WithOperation(rewritten), nil
	case request.Undo:
		// Undo always reverses the translated form of the original
		// Do; Redo re-applies it forward (the pairing toggles which
		// direction is "current").
		op, err := operation.Reverse(translated.Operation())
		if err != nil {
			return nil, wrapError(OperationApplyFailure, err, "reverse for undo")
		}
		if err := operation.Apply(op, user.ID(), s.buf); err != nil {
			return nil, wrapError(OperationApplyFailure, err, "apply undo")
		}
		return r, nil
	case request.Redo:
		if err := operation.Apply(translated.Operation(), user.ID(), s.buf); err != nil {
			return nil, wrapError(OperationApplyFailure, err, "apply redo")
		}
		return r, nil
	default:
		panic(fmt.Sprintf("session: contract violation: unknown request type %v", r.Type()))
	}
}

func (s *Session) failExecute(userID uint32, err error) error {
	s.fireEndExecute(userID, nil, nil, err)
	return err
}

func (s *Session) fireBeginExecute(userID uint32, r *request.Request) {
	s.log.Debugw("begin-execute", "user_id", userID, "type", r.Type().String())
	for _, h := range s.onBeginExecute {
		h(userID, r)
	}
}

func (s *Session) fireEndExecute(userID uint32, logEntry, translated *request.Request, err error) {
	if err != nil {
		s.log.Infow("end-execute failed", "user_id", userID, "error", err)
	} else {
		s.log.Debugw("end-execute", "user_id", userID)
	}
	for _, h := range s.onEndExecute {
		h(userID, logEntry, translated, err)
	}
}

// maintainModifiedFlag implements spec §4.H step 8: if the session is
// tracking a buffer-modified reference vector, and the current vector is
// state-equivalent to it (reachable only by folding paired undo/redo
// sequences), force the buffer's modified flag back to false.
func (s *Session) maintainModifiedFlag() {
	if s.modifiedTracking == nil {
		return
	}
	if s.equivalent(s.modifiedTracking, s.current) {
		s.buf.SetModified(false)
		s.modifiedTracking = s.current.Copy()
	}
}

// TrackModified starts (or resets) modified-flag equivalence tracking at
// the current vector; call this whenever the document is considered
// saved.
func (s *Session) TrackModified() {
	s.modifiedTracking = s.current.Copy()
	s.buf.SetModified(false)
}

// equivalent reports whether b is reachable from a solely by sequences of
// Undo/Redo requests that pair within their own per-user range (spec
// §4.H "state equivalence").
func (s *Session) equivalent(a, b *vector.Vector) bool {
	if !a.CausallyBefore(b) {
		return false
	}
	for _, u := range s.users.Users() {
		lo, hi := a.Get(u.ID()), b.Get(u.ID())
		for n := lo; n < hi; n++ {
			req, ok := u.Log().Get(int(n))
			if !ok || req.Type() == request.Do {
				return false
			}
			target, ok := u.Log().PrevAssociated(int(n))
			if !ok || uint64(target) < lo {
				return false
			}
		}
	}
	return true
}

// recomputeUndoRedo implements spec §4.H step 9: for every local user,
// recompute can-undo/can-redo and emit change signals on transitions.
func (s *Session) recomputeUndoRedo() {
	for _, u := range s.users.Users() {
		if !u.IsLocal() {
			continue
		}
		canUndo := s.withinLogBudget(u, u.Log().NextUndo)
		if s.canUndo[u.ID()] != canUndo {
			s.canUndo[u.ID()] = canUndo
			for _, h := range s.onCanUndoChanged {
				h(u.ID(), canUndo)
			}
		}
		canRedo := s.withinLogBudget(u, u.Log().NextRedo)
		if s.canRedo[u.ID()] != canRedo {
			s.canRedo[u.ID()] = canRedo
			for _, h := range s.onCanRedoChanged {
				h(u.ID(), canRedo)
			}
		}
	}
}

func (s *Session) withinLogBudget(u *usertable.User, lookup func() (int, bool)) bool {
	idx, ok := lookup()
	if !ok {
		return false
	}
	req, ok := u.Log().Get(idx)
	if !ok {
		return false
	}
	return vector.VDiff(req.Vector(), u.Vector()) < s.cfg.MaxTotalLogSize
}

// CanUndo reports the last computed can-undo state for a local user.
func (s *Session) CanUndo(userID uint32) bool { return s.canUndo[userID] }

// CanRedo reports the last computed can-redo state for a local user.
func (s *Session) CanRedo(userID uint32) bool { return s.canRedo[userID] }
