// Package presence holds the authoritative, process-local record of which
// identities currently have open, authenticated connections.
package presence

import (
	"sort"
	"sync"

	"github.com/snigenigmatic/QuadChat/internal/domain"
)

// Conn is one live transport connection belonging to an identity. The
// registry only needs to address it and push events to it; the transport
// layer owns everything else.
type Conn interface {
	// ID returns the transport-assigned connection ID.
	ID() string
	// Push enqueues an event for delivery on this connection. Pushing to a
	// connection that has closed is a silent no-op.
	Push(v interface{}) error
}

// entry groups all live connections of one identity.
type entry struct {
	identity domain.Identity
	conns    map[string]Conn // connection ID -> conn
}

// Registry maps identities to their active connection handles. An identity
// may hold several simultaneous connections (multiple devices or tabs); each
// one is tracked individually and delivery fans out to all of them.
//
// Register and Unregister are atomic with respect to the registry's data:
// a single mutex, no I/O inside the critical section. Instances are
// constructor-injected, never package-level.
type Registry struct {
	mu         sync.RWMutex
	byIdentity map[string]*entry
	byConn     map[string]string // connection ID -> identity ID
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		byIdentity: make(map[string]*entry),
		byConn:     make(map[string]string),
	}
}

// Register adds a connection for the given identity. Always succeeds; a
// second registration of the same connection ID replaces the stale handle.
func (r *Registry) Register(identity domain.Identity, c Conn) {
	r.mu.Lock()
	defer r.mu.Unlock()

	e, ok := r.byIdentity[identity.ID]
	if !ok {
		e = &entry{identity: identity, conns: make(map[string]Conn)}
		r.byIdentity[identity.ID] = e
	}
	e.conns[c.ID()] = c
	r.byConn[c.ID()] = identity.ID
}

// Unregister removes the specific connection handle. When it was the
// identity's last handle the whole presence entry goes away. Unregistering
// a connection that was never registered (or already removed) is a no-op;
// the return value reports whether anything changed.
func (r *Registry) Unregister(c Conn) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	identityID, ok := r.byConn[c.ID()]
	if !ok {
		return false
	}
	delete(r.byConn, c.ID())

	if e, ok := r.byIdentity[identityID]; ok {
		delete(e.conns, c.ID())
		if len(e.conns) == 0 {
			delete(r.byIdentity, identityID)
		}
	}
	return true
}

// Lookup returns all live connections of the identity. An empty result
// means the identity is offline.
func (r *Registry) Lookup(identityID string) []Conn {
	r.mu.RLock()
	defer r.mu.RUnlock()

	e, ok := r.byIdentity[identityID]
	if !ok {
		return nil
	}
	conns := make([]Conn, 0, len(e.conns))
	for _, c := range e.conns {
		conns = append(conns, c)
	}
	return conns
}

// Online reports whether the identity has at least one live connection.
func (r *Registry) Online(identityID string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.byIdentity[identityID]
	return ok
}

// Snapshot returns all currently online identities, ordered by ID so
// repeated broadcasts are stable.
func (r *Registry) Snapshot() []domain.Identity {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]domain.Identity, 0, len(r.byIdentity))
	for _, e := range r.byIdentity {
		out = append(out, e.identity)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// Conns returns every live connection across all identities, for
// broadcasts addressed to everyone (the presence snapshot itself).
func (r *Registry) Conns() []Conn {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]Conn, 0, len(r.byConn))
	for _, e := range r.byIdentity {
		for _, c := range e.conns {
			out = append(out, c)
		}
	}
	return out
}
