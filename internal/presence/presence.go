package presence

import (
	"slices"
	"sync"
)

// Registry maps a user id to the ids of its live connections. A user has an
// entry iff it has at least one connection; state is process-local and starts
// empty on every boot.
type Registry struct {
	mu    sync.RWMutex
	conns map[int][]string
}

func NewRegistry() *Registry {
	return &Registry{
		conns: make(map[int][]string),
	}
}

// Register adds connId to the user's connection set. Registering the same
// connection id twice is a no-op.
func (r *Registry) Register(userId int, connId string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if slices.Contains(r.conns[userId], connId) {
		return
	}
	r.conns[userId] = append(r.conns[userId], connId)
}

// Unregister removes connId from the user's connection set and drops the
// user entry entirely when the last connection closes.
func (r *Registry) Unregister(userId int, connId string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	ids, ok := r.conns[userId]
	if !ok {
		return
	}

	i := slices.Index(ids, connId)
	if i < 0 {
		return
	}

	ids = slices.Delete(ids, i, i+1)
	if len(ids) == 0 {
		delete(r.conns, userId)
		return
	}
	r.conns[userId] = ids
}

// ConnectionsFor returns the user's live connection ids in registration
// order. Unknown users yield an empty slice, never an error.
func (r *Registry) ConnectionsFor(userId int) []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return slices.Clone(r.conns[userId])
}

// Online reports whether the user has at least one live connection.
func (r *Registry) Online(userId int) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return len(r.conns[userId]) > 0
}

// NumOnline returns the number of users with at least one live connection.
func (r *Registry) NumOnline() int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return len(r.conns)
}
