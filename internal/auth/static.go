package auth

import (
	"context"
	"sync"

	"github.com/chymezy/decentra-client/internal/session"
)

// StaticProvider is a session.IdentityProvider that already holds its
// identity: the server completes the OAuth dance itself, then hands the
// exchanged token to a StaticProvider so the session manager's login is
// a local step. Also serves as the provider fake in tests.
type StaticProvider struct {
	mu       sync.Mutex
	identity string

	// LastOptions records what the most recent Login requested, which
	// is how tests assert the mode-derived ceiling.
	LastOptions session.LoginOptions
}

// NewStaticProvider wraps an already-established identity token.
func NewStaticProvider(identity string) *StaticProvider {
	return &StaticProvider{identity: identity}
}

func (p *StaticProvider) Login(ctx context.Context, opts session.LoginOptions) (string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.LastOptions = opts
	return p.identity, nil
}

func (p *StaticProvider) Resume(ctx context.Context) (string, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.identity, p.identity != ""
}

func (p *StaticProvider) Logout(ctx context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.identity = ""
	return nil
}
