// Package session implements the Execution Driver (spec component H) and
// Session Façade (component I): request execution, undo/redo bookkeeping,
// history cleanup, and session lifecycle.
package session

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/sfurman3/inftext/adopted"
	"github.com/sfurman3/inftext/buffer"
	"github.com/sfurman3/inftext/request"
	"github.com/sfurman3/inftext/usertable"
	"github.com/sfurman3/inftext/vector"
)

// Status is the session's lifecycle state.
type Status int

const (
	// Presync: the session shell exists but no snapshot has been fed.
	Presync Status = iota
	// Synchronizing: a snapshot is being streamed in from a peer.
	Synchronizing
	// Running: requests may be generated and executed.
	Running
	// Closed: terminal.
	Closed
)

func (s Status) String() string {
	switch s {
	case Presync:
		return "presync"
	case Synchronizing:
		return "synchronizing"
	case Running:
		return "running"
	case Closed:
		return "closed"
	default:
		return "unknown"
	}
}

// Session owns the User Table, Buffer, and current state vector, and
// drives request execution through the transformation engine. It is not
// safe for concurrent use from multiple goroutines: the engine's
// scheduling model is single-threaded cooperative, and ExecuteRequest is
// explicitly non-reentrant (see ExecuteRequest and §5 of the design).
type Session struct {
	status Status
	cfg    Config
	log    *zap.SugaredLogger
	clock  Clock

	users   *usertable.Table
	buf     buffer.Buffer
	current *vector.Vector
	engine  *adopted.Engine

	// executing holds the request currently mid-execution, detecting
	// (but not preventing by locking) re-entrant ExecuteRequest calls.
	executing *request.Request

	modifiedTracking *vector.Vector

	canUndo map[uint32]bool
	canRedo map[uint32]bool

	group    SubscriptionGroup
	pipeline *syncPipeline

	onBeginExecute    []BeginExecuteHook
	onEndExecute      []EndExecuteHook
	onCanUndoChanged  []CanUndoChangedHook
	onCanRedoChanged  []CanRedoChangedHook
	onStatusChanged   []StatusChangedHook
	onSyncProgress    []SyncProgressHook
}

// New returns a session in Presync status, with an empty user table and
// buffer. log may be nil, in which case a no-op logger is used so the
// core stays instantiable without side effects.
func New(cfg Config, log *zap.SugaredLogger) *Session {
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	users := usertable.New()
	s := &Session{
		status:  Presync,
		cfg:     cfg,
		log:     log,
		clock:   SystemClock{},
		users:   users,
		buf:     buffer.New(),
		current: vector.New(),
		engine:  adopted.New(users),
		canUndo: make(map[uint32]bool),
		canRedo: make(map[uint32]bool),
	}
	users.OnAddLocalUser(func(u *usertable.User) {
		u.SetVector(s.current.Copy())
	})
	users.OnRemoveLocalUser(func(u *usertable.User) {
		delete(s.canUndo, u.ID())
		delete(s.canRedo, u.ID())
	})
	return s
}

// Status returns the session's current lifecycle state.
func (s *Session) Status() Status { return s.status }

// Users returns the session's user table.
func (s *Session) Users() *usertable.Table { return s.users }

// Buffer returns the session's buffer.
func (s *Session) Buffer() buffer.Buffer { return s.buf }

// CurrentVector returns a copy of the session's current state vector.
func (s *Session) CurrentVector() *vector.Vector { return s.current.Copy() }

// Config returns the session's configuration.
func (s *Session) Config() Config { return s.cfg }

// SetClock overrides the session's time source; intended for tests that
// need deterministic timestamps.
func (s *Session) SetClock(c Clock) { s.clock = c }

func (s *Session) transitionTo(to Status) {
	from := s.status
	s.status = to
	s.log.Infow("session status transition", "from", from.String(), "to", to.String())
	for _, h := range s.onStatusChanged {
		h(from, to)
	}
}

func (s *Session) assertf(cond bool, format string, args ...interface{}) {
	if !cond {
		panic(fmt.Sprintf("session: contract violation: "+format, args...))
	}
}
