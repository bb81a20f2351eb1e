package session

import (
	"github.com/sfurman3/inftext/request"
)

// BeginExecuteHook fires once ExecuteRequest has accepted r (known active
// user, origin vector causally before the current state), before Undo/Redo
// availability is checked.
type BeginExecuteHook func(userID uint32, r *request.Request)

// EndExecuteHook fires when an execution that fired BeginExecuteHook
// finishes, successfully or not; a request rejected for a causality
// violation fires neither hook. logEntry and translated are nil on failure.
type EndExecuteHook func(userID uint32, logEntry, translated *request.Request, err error)

// CanUndoChangedHook fires when a local user's can-undo state flips.
type CanUndoChangedHook func(userID uint32, can bool)

// CanRedoChangedHook fires when a local user's can-redo state flips.
type CanRedoChangedHook func(userID uint32, can bool)

// StatusChangedHook fires on every lifecycle transition.
type StatusChangedHook func(from, to Status)

// SyncProgressHook fires as an outbound or inbound synchronization
// pipeline makes progress; phase is one of "begin", "progress",
// "complete", "failed".
type SyncProgressHook func(phase string, correlationID string)

// OnBeginExecute registers h to run before each request executes.
func (s *Session) OnBeginExecute(h BeginExecuteHook) { s.onBeginExecute = append(s.onBeginExecute, h) }

// OnEndExecute registers h to run after each request execution attempt.
func (s *Session) OnEndExecute(h EndExecuteHook) { s.onEndExecute = append(s.onEndExecute, h) }

// OnCanUndoChanged registers h to run on can-undo transitions.
func (s *Session) OnCanUndoChanged(h CanUndoChangedHook) {
	s.onCanUndoChanged = append(s.onCanUndoChanged, h)
}

// OnCanRedoChanged registers h to run on can-redo transitions.
func (s *Session) OnCanRedoChanged(h CanRedoChangedHook) {
	s.onCanRedoChanged = append(s.onCanRedoChanged, h)
}

// OnStatusChanged registers h to run on every lifecycle transition.
func (s *Session) OnStatusChanged(h StatusChangedHook) { s.onStatusChanged = append(s.onStatusChanged, h) }

// OnSyncProgress registers h to run on outbound/inbound sync milestones.
func (s *Session) OnSyncProgress(h SyncProgressHook) { s.onSyncProgress = append(s.onSyncProgress, h) }
