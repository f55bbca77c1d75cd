package presence

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/snigenigmatic/QuadChat/internal/domain"
)

type fakeConn struct {
	id     string
	events []interface{}
}

func (c *fakeConn) ID() string { return c.id }

func (c *fakeConn) Push(v interface{}) error {
	c.events = append(c.events, v)
	return nil
}

func newFakeConn(id string) *fakeConn { return &fakeConn{id: id} }

func ident(id string) domain.Identity {
	return domain.Identity{ID: id, Name: "user-" + id}
}

func TestRegisterAndLookup(t *testing.T) {
	r := NewRegistry()
	c := newFakeConn("conn-1")

	r.Register(ident("u1"), c)

	conns := r.Lookup("u1")
	require.Len(t, conns, 1)
	assert.Equal(t, "conn-1", conns[0].ID())
	assert.True(t, r.Online("u1"))
}

func TestLookupOfflineIsEmpty(t *testing.T) {
	r := NewRegistry()

	assert.Empty(t, r.Lookup("nobody"))
	assert.False(t, r.Online("nobody"))
}

func TestRegisterThenUnregisterLeavesNoTrace(t *testing.T) {
	r := NewRegistry()
	before := r.Snapshot()

	c := newFakeConn("conn-1")
	r.Register(ident("u1"), c)
	require.True(t, r.Unregister(c))

	assert.Equal(t, before, r.Snapshot())
	assert.Empty(t, r.Lookup("u1"))
	assert.Empty(t, r.Conns())
}

func TestMultipleConnectionsPerIdentity(t *testing.T) {
	r := NewRegistry()
	c1 := newFakeConn("conn-1")
	c2 := newFakeConn("conn-2")

	r.Register(ident("u1"), c1)
	r.Register(ident("u1"), c2)

	assert.Len(t, r.Lookup("u1"), 2)
	require.Len(t, r.Snapshot(), 1)

	// Dropping one device keeps the identity online.
	require.True(t, r.Unregister(c1))
	assert.Len(t, r.Lookup("u1"), 1)
	assert.True(t, r.Online("u1"))

	// Dropping the last one removes the presence entry entirely.
	require.True(t, r.Unregister(c2))
	assert.False(t, r.Online("u1"))
	assert.Empty(t, r.Snapshot())
}

func TestUnregisterUnknownConnIsNoop(t *testing.T) {
	r := NewRegistry()
	r.Register(ident("u1"), newFakeConn("conn-1"))

	assert.False(t, r.Unregister(newFakeConn("never-registered")))
	assert.Len(t, r.Snapshot(), 1)
}

func TestUnregisterIsIdempotent(t *testing.T) {
	r := NewRegistry()
	c := newFakeConn("conn-1")
	r.Register(ident("u1"), c)

	assert.True(t, r.Unregister(c))
	assert.False(t, r.Unregister(c))
}

func TestSnapshotIsOrdered(t *testing.T) {
	r := NewRegistry()
	for _, id := range []string{"u3", "u1", "u2"} {
		r.Register(ident(id), newFakeConn("conn-"+id))
	}

	snapshot := r.Snapshot()
	require.Len(t, snapshot, 3)
	assert.Equal(t, "u1", snapshot[0].ID)
	assert.Equal(t, "u2", snapshot[1].ID)
	assert.Equal(t, "u3", snapshot[2].ID)
}

func TestConnsReturnsEveryHandle(t *testing.T) {
	r := NewRegistry()
	for i := 0; i < 3; i++ {
		r.Register(ident("u1"), newFakeConn(fmt.Sprintf("a-%d", i)))
	}
	r.Register(ident("u2"), newFakeConn("b-0"))

	assert.Len(t, r.Conns(), 4)
}
