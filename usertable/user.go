// Package usertable implements the User Table (spec component E): the set
// of session participants, each owning a request log, keyed by both id
// and name, with change notifications the transformation engine and
// execution driver observe.
package usertable

import (
	"github.com/sfurman3/inftext/requestlog"
	"github.com/sfurman3/inftext/vector"
)

// Status is a participant's connectedness.
type Status int

const (
	// Active participants may generate and receive requests.
	Active Status = iota
	// Inactive participants are known but have left the session.
	Inactive
	// Unavailable participants are known but currently unreachable
	// (e.g. a transient network partition); excluded from cleanup's
	// lcp computation, so their vectors do not hold back the removal of
	// old history.
	Unavailable
)

func (s Status) String() string {
	switch s {
	case Active:
		return "active"
	case Inactive:
		return "inactive"
	case Unavailable:
		return "unavailable"
	default:
		return "unknown"
	}
}

// Flags is a bitset of per-user attributes.
type Flags uint8

// Local marks a user as a local editor (one whose requests originate on
// this process, as opposed to a remote peer relayed over the network).
const Local Flags = 1 << 0

// User is one session participant.
type User struct {
	id     uint32
	name   string
	status Status
	flags  Flags
	vector *vector.Vector
	log    *requestlog.Log
}

func newUser(id uint32, name string, flags Flags) *User {
	return &User{
		id:     id,
		name:   name,
		status: Active,
		flags:  flags,
		vector: vector.New(),
		log:    requestlog.New(id),
	}
}

// ID returns the user's unique id.
func (u *User) ID() uint32 { return u.id }

// Name returns the user's unique display name.
func (u *User) Name() string { return u.name }

// Status returns the user's current connectedness.
func (u *User) Status() Status { return u.status }

// SetStatus updates the user's connectedness.
func (u *User) SetStatus(s Status) { u.status = s }

// Flags returns the user's flag bitset.
func (u *User) Flags() Flags { return u.flags }

// IsLocal reports whether this user's requests originate locally.
func (u *User) IsLocal() bool { return u.flags&Local != 0 }

// Vector returns the latest state at which this user has produced a
// request. Callers must not mutate the returned vector.
func (u *User) Vector() *vector.Vector { return u.vector }

// SetVector replaces the user's tracked vector.
func (u *User) SetVector(v *vector.Vector) { u.vector = v }

// Log returns the user's request log.
func (u *User) Log() *requestlog.Log { return u.log }
