package usertable

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAddUserRejectsDuplicateID(t *testing.T) {
	tbl := New()
	_, err := tbl.AddUser(1, "alice", 0)
	require.NoError(t, err)
	_, err = tbl.AddUser(1, "bob", 0)
	assert.Error(t, err)
}

func TestAddUserRejectsDuplicateName(t *testing.T) {
	tbl := New()
	_, err := tbl.AddUser(1, "alice", 0)
	require.NoError(t, err)
	_, err = tbl.AddUser(2, "alice", 0)
	assert.Error(t, err)
}

func TestLookupByIDAndName(t *testing.T) {
	tbl := New()
	u, err := tbl.AddUser(1, "alice", Local)
	require.NoError(t, err)

	got, ok := tbl.ByID(1)
	require.True(t, ok)
	assert.Same(t, u, got)

	got, ok = tbl.ByName("alice")
	require.True(t, ok)
	assert.Same(t, u, got)
	assert.True(t, got.IsLocal())
}

func TestAddUserHooksFire(t *testing.T) {
	tbl := New()
	var addedIDs []uint32
	var addedLocal []uint32
	tbl.OnAddUser(func(u *User) { addedIDs = append(addedIDs, u.ID()) })
	tbl.OnAddLocalUser(func(u *User) { addedLocal = append(addedLocal, u.ID()) })

	_, err := tbl.AddUser(1, "alice", Local)
	require.NoError(t, err)
	_, err = tbl.AddUser(2, "bob", 0)
	require.NoError(t, err)

	assert.Equal(t, []uint32{1, 2}, addedIDs)
	assert.Equal(t, []uint32{1}, addedLocal)
}

func TestRemoveLocalUserHookFires(t *testing.T) {
	tbl := New()
	var removed []uint32
	tbl.OnRemoveLocalUser(func(u *User) { removed = append(removed, u.ID()) })

	_, err := tbl.AddUser(1, "alice", Local)
	require.NoError(t, err)
	require.NoError(t, tbl.RemoveUser(1))

	assert.Equal(t, []uint32{1}, removed)
	_, ok := tbl.ByID(1)
	assert.False(t, ok)
}

func TestRemoveUnknownUserFails(t *testing.T) {
	tbl := New()
	assert.Error(t, tbl.RemoveUser(99))
}

func TestUserHasOwnRequestLog(t *testing.T) {
	tbl := New()
	u, err := tbl.AddUser(1, "alice", Local)
	require.NoError(t, err)
	assert.NotNil(t, u.Log())
	assert.Equal(t, uint32(1), u.Log().UserID())
}
