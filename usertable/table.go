package usertable

import (
	"sync"

	"github.com/pkg/errors"
)

// AddUserHook is called whenever a new user, local or remote, joins the
// table.
type AddUserHook func(u *User)

// LocalUserHook is called when a local user joins or leaves.
type LocalUserHook func(u *User)

// Table is the set of session participants, keyed by id and by name.
type Table struct {
	mu     sync.Mutex
	byID   map[uint32]*User
	byName map[string]*User

	onAddUser         []AddUserHook
	onAddLocalUser    []LocalUserHook
	onRemoveLocalUser []LocalUserHook
}

// New returns an empty user table.
func New() *Table {
	return &Table{
		byID:   make(map[uint32]*User),
		byName: make(map[string]*User),
	}
}

// OnAddUser registers a hook fired after any user (local or remote) is added.
func (t *Table) OnAddUser(h AddUserHook) { t.onAddUser = append(t.onAddUser, h) }

// OnAddLocalUser registers a hook fired after a local user is added.
func (t *Table) OnAddLocalUser(h LocalUserHook) { t.onAddLocalUser = append(t.onAddLocalUser, h) }

// OnRemoveLocalUser registers a hook fired after a local user is removed.
func (t *Table) OnRemoveLocalUser(h LocalUserHook) {
	t.onRemoveLocalUser = append(t.onRemoveLocalUser, h)
}

// AddUser adds a new participant with a unique id and name. flags may
// include Local to mark the user as a local editor.
func (t *Table) AddUser(id uint32, name string, flags Flags) (*User, error) {
	t.mu.Lock()
	if _, ok := t.byID[id]; ok {
		t.mu.Unlock()
		return nil, errors.Errorf("usertable: add user: duplicate id %d", id)
	}
	if _, ok := t.byName[name]; ok {
		t.mu.Unlock()
		return nil, errors.Errorf("usertable: add user: duplicate name %q", name)
	}
	u := newUser(id, name, flags)
	t.byID[id] = u
	t.byName[name] = u
	addHooks := append([]AddUserHook(nil), t.onAddUser...)
	var localHooks []LocalUserHook
	if u.IsLocal() {
		localHooks = append([]LocalUserHook(nil), t.onAddLocalUser...)
	}
	t.mu.Unlock()

	for _, h := range addHooks {
		h(u)
	}
	for _, h := range localHooks {
		h(u)
	}
	return u, nil
}

// RemoveUser removes a participant entirely. Firing OnRemoveLocalUser is
// only meaningful for local users; remote users are simply dropped from
// the table (their history lives on in whatever peer relays them, if any).
func (t *Table) RemoveUser(id uint32) error {
	t.mu.Lock()
	u, ok := t.byID[id]
	if !ok {
		t.mu.Unlock()
		return errors.Errorf("usertable: remove user: unknown id %d", id)
	}
	delete(t.byID, id)
	delete(t.byName, u.Name())
	var localHooks []LocalUserHook
	if u.IsLocal() {
		localHooks = append([]LocalUserHook(nil), t.onRemoveLocalUser...)
	}
	t.mu.Unlock()

	for _, h := range localHooks {
		h(u)
	}
	return nil
}

// ByID looks up a participant by id.
func (t *Table) ByID(id uint32) (*User, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	u, ok := t.byID[id]
	return u, ok
}

// ByName looks up a participant by name.
func (t *Table) ByName(name string) (*User, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	u, ok := t.byName[name]
	return u, ok
}

// Users returns a snapshot slice of every participant, in no particular
// order.
func (t *Table) Users() []*User {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := make([]*User, 0, len(t.byID))
	for _, u := range t.byID {
		out = append(out, u)
	}
	return out
}

// Len returns the number of participants.
func (t *Table) Len() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.byID)
}
