package server

import (
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/cwbudde/algo-eeg/eeg/session"
)

type entry struct {
	monitor *session.Monitor
	path    string
	created time.Time
}

// registry holds the live sessions (thread-safe).
type registry struct {
	mu       sync.RWMutex
	sessions map[uuid.UUID]*entry
}

func newRegistry() *registry {
	return &registry{sessions: make(map[uuid.UUID]*entry)}
}

func (r *registry) add(id uuid.UUID, e *entry) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sessions[id] = e
}

func (r *registry) get(id uuid.UUID) (*entry, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	e, ok := r.sessions[id]
	return e, ok
}

// remove stops and forgets a session.
func (r *registry) remove(id uuid.UUID) bool {
	r.mu.Lock()
	e, ok := r.sessions[id]
	delete(r.sessions, id)
	r.mu.Unlock()
	if ok {
		e.monitor.Stop()
	}
	return ok
}

// list returns the sessions ordered by creation time.
func (r *registry) list() []*entry {
	r.mu.RLock()
	out := make([]*entry, 0, len(r.sessions))
	for _, e := range r.sessions {
		out = append(out, e)
	}
	r.mu.RUnlock()
	sort.Slice(out, func(i, j int) bool { return out[i].created.Before(out[j].created) })
	return out
}

func (r *registry) stopAll() {
	r.mu.Lock()
	entries := r.sessions
	r.sessions = make(map[uuid.UUID]*entry)
	r.mu.Unlock()
	for _, e := range entries {
		e.monitor.Stop()
	}
}
