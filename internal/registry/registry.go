// Package registry holds live activity handles for the lifetime of the process.
package registry

import "sync"

// Registry maps activity ids to handles. Safe for concurrent use.
type Registry[H any] struct {
	mu      sync.RWMutex
	entries map[string]H
}

// New creates an empty registry.
func New[H any]() *Registry[H] {
	return &Registry[H]{entries: make(map[string]H)}
}

// Insert stores h under id, replacing any existing entry.
func (r *Registry[H]) Insert(id string, h H) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries[id] = h
}

// Lookup returns the handle for id. Absent is a normal outcome.
func (r *Registry[H]) Lookup(id string) (H, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	h, ok := r.entries[id]
	return h, ok
}

// Remove deletes id. Removing a missing id is a no-op.
func (r *Registry[H]) Remove(id string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.entries, id)
}

// Len returns the number of live entries.
func (r *Registry[H]) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.entries)
}
