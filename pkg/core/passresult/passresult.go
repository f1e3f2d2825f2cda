// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

// Package passresult stores results produced by analysis passes, keyed by the
// compilation session and the pass name, so that downstream stages (e.g., the
// buffer-aliasing rewriter consuming a memory-reuse plan) can pick them up.
//
// A Registry is owned by the orchestrating caller and injected into passes;
// there is deliberately no package-level default instance. Distinct sessions
// never collide, and a second publication under the same (session, pass) key
// overwrites the first. Values must be treated as immutable once published.
package passresult

import "sync"

// Key identifies one pass result: which compilation session produced it and
// under which pass name.
type Key struct {
	SessionID string
	PassName  string
}

// Registry is a concurrency-safe map from (session, pass) to the pass's
// result. The zero value is not usable, create it with NewRegistry.
type Registry struct {
	mu      sync.RWMutex
	results map[Key]any
}

// NewRegistry creates an empty Registry.
func NewRegistry() *Registry {
	return &Registry{results: make(map[Key]any)}
}

// Set publishes value under (sessionID, passName), overwriting any previous
// value under the same key (last-writer-wins).
func (r *Registry) Set(sessionID, passName string, value any) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.results[Key{SessionID: sessionID, PassName: passName}] = value
}

// Get returns the value published under (sessionID, passName), and whether
// one was published.
func (r *Registry) Get(sessionID, passName string) (any, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	value, found := r.results[Key{SessionID: sessionID, PassName: passName}]
	return value, found
}

// Delete removes the value published under (sessionID, passName), if any.
// Used when tearing down a compilation session.
func (r *Registry) Delete(sessionID, passName string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.results, Key{SessionID: sessionID, PassName: passName})
}

// Len returns the number of published results.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.results)
}
