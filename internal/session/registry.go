package session

import (
	"context"
	"sync"
)

// Registry holds one Manager per signed-in identity, so a browser's
// requests keep hitting the same idle timer and cached profile. The
// factory builds a manager for a new identity; the registry logs it in
// on first sight and touches it on every lookup.
type Registry struct {
	factory func(identity string, mode PrivacyMode) *Manager

	mu       sync.Mutex
	sessions map[string]*Manager
}

// NewRegistry creates an empty registry around the manager factory.
func NewRegistry(factory func(identity string, mode PrivacyMode) *Manager) *Registry {
	return &Registry{
		factory:  factory,
		sessions: make(map[string]*Manager),
	}
}

// Get returns the manager for identity, creating and logging it in on
// first use. The lookup counts as activity for the idle timeout. A
// manager the idle timer already signed out is treated as absent and
// rebuilt, so a still-valid cookie gets a fresh session rather than
// the dead one.
func (r *Registry) Get(ctx context.Context, identity string, mode PrivacyMode) (*Manager, error) {
	r.mu.Lock()
	m, ok := r.sessions[identity]
	if ok && !m.Authenticated() {
		delete(r.sessions, identity)
		ok = false
	}
	if !ok {
		m = r.factory(identity, mode)
		r.sessions[identity] = m
	}
	r.mu.Unlock()

	if !ok {
		if err := m.Login(ctx, mode); err != nil {
			r.mu.Lock()
			delete(r.sessions, identity)
			r.mu.Unlock()
			return nil, err
		}
	}
	m.Touch()
	return m, nil
}

// Drop signs the identity's manager out and forgets it.
func (r *Registry) Drop(ctx context.Context, identity string) error {
	r.mu.Lock()
	m, ok := r.sessions[identity]
	delete(r.sessions, identity)
	r.mu.Unlock()
	if !ok {
		return nil
	}
	return m.Logout(ctx)
}
