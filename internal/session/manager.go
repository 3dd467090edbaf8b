package session

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/chymezy/decentra-client/internal/apperror"
	"github.com/chymezy/decentra-client/internal/guard"
	"github.com/chymezy/decentra-client/internal/model"
	"github.com/chymezy/decentra-client/internal/remote"
)

// DefaultIdleTimeout signs the session out after this much inactivity,
// regardless of how much lifetime the identity provider granted.
const DefaultIdleTimeout = 30 * time.Minute

// Phase is where the session currently stands.
type Phase string

const (
	// PhaseSignedOut means no identity is held.
	PhaseSignedOut Phase = "signed_out"
	// PhaseNeedsProfile means the identity is live but the backend has
	// no profile for it yet; registration must happen before posting.
	PhaseNeedsProfile Phase = "needs_profile"
	// PhaseProfileUnknown means the identity is live but the last
	// profile fetch failed, so registration state is undetermined. The
	// next successful load settles it either way.
	PhaseProfileUnknown Phase = "profile_unknown"
	// PhaseReady means identity and profile are both in hand.
	PhaseReady Phase = "ready"
)

// LoginOptions carries the mode-derived parameters to the provider.
type LoginOptions struct {
	PrivacyMode    PrivacyMode
	SessionCeiling time.Duration
}

// IdentityProvider abstracts the external authentication service.
type IdentityProvider interface {
	// Login runs the interactive flow and returns an identity token.
	Login(ctx context.Context, opts LoginOptions) (string, error)
	// Resume returns a previously established identity, if one survives.
	Resume(ctx context.Context) (string, bool)
	// Logout discards provider-side session state.
	Logout(ctx context.Context) error
}

// State is a point-in-time snapshot of the session.
type State struct {
	Phase   Phase
	Mode    PrivacyMode
	Profile *model.Profile
}

// Manager owns the session lifecycle. All methods are safe for
// concurrent use.
type Manager struct {
	provider    IdentityProvider
	gateway     remote.Gateway
	logger      *slog.Logger
	idleTimeout time.Duration

	mu        sync.Mutex
	phase     Phase
	mode      PrivacyMode
	identity  string
	profile   *model.Profile
	idleTimer *time.Timer
}

// Option configures a Manager.
type Option func(*Manager)

// WithIdleTimeout overrides the inactivity window.
func WithIdleTimeout(d time.Duration) Option {
	return func(m *Manager) {
		if d > 0 {
			m.idleTimeout = d
		}
	}
}

// NewManager wires a signed-out manager.
func NewManager(provider IdentityProvider, gateway remote.Gateway, logger *slog.Logger, opts ...Option) *Manager {
	if logger == nil {
		logger = slog.Default()
	}
	m := &Manager{
		provider:    provider,
		gateway:     gateway,
		logger:      logger,
		idleTimeout: DefaultIdleTimeout,
		phase:       PhaseSignedOut,
		mode:        ModeStandard,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Initialize resumes a surviving provider session, if any, and loads the
// profile for it. Callers run this once at startup; a missing session is
// not an error.
func (m *Manager) Initialize(ctx context.Context) error {
	identity, ok := m.provider.Resume(ctx)
	if !ok {
		return nil
	}
	m.mu.Lock()
	m.identity = identity
	m.mu.Unlock()
	return m.loadProfile(ctx)
}

// Login authenticates through the provider in the given privacy mode.
// The session ceiling passed to the provider is derived from the mode,
// so a whistleblower session can never outlive its two hours.
func (m *Manager) Login(ctx context.Context, mode PrivacyMode) error {
	if !mode.Valid() {
		return apperror.ValidationFailed("privacyMode", "Unknown privacy mode")
	}

	identity, err := m.provider.Login(ctx, LoginOptions{
		PrivacyMode:    mode,
		SessionCeiling: mode.SessionCeiling(),
	})
	if err != nil {
		return err
	}

	m.mu.Lock()
	m.identity = identity
	m.mode = mode
	m.mu.Unlock()

	m.Touch()
	m.logger.InfoContext(ctx, "session established", slog.String("mode", string(mode)))
	return m.loadProfile(ctx)
}

// loadProfile fetches the caller's profile and settles the phase. A
// not-found answer is the normal first-login case and selects the
// needs-profile phase; transport failures leave the session live with
// the profile unknown and are reported to the caller.
func (m *Manager) loadProfile(ctx context.Context) error {
	profile, err := m.gateway.GetMyProfile(m.withIdentity(ctx))
	m.mu.Lock()
	defer m.mu.Unlock()
	switch {
	case err == nil:
		m.profile = profile
		m.phase = PhaseReady
		return nil
	case errors.Is(err, apperror.ErrNotFound):
		m.profile = nil
		m.phase = PhaseNeedsProfile
		return nil
	default:
		m.profile = nil
		m.phase = PhaseProfileUnknown
		return err
	}
}

// CreateProfile registers the caller's profile, completing first login.
func (m *Manager) CreateProfile(ctx context.Context, username, bio, avatar string) (*model.Profile, error) {
	if !m.Authenticated() {
		return nil, apperror.AuthRequired()
	}
	if err := guard.ValidateUsername(username); err != nil {
		return nil, err
	}
	if err := guard.ValidateBio(bio); err != nil {
		return nil, err
	}
	if err := guard.ValidateAvatar(avatar); err != nil {
		return nil, err
	}

	profile, err := m.gateway.CreateUserProfile(m.withIdentity(ctx), username, bio, avatar)
	if err != nil {
		return nil, err
	}
	m.mu.Lock()
	m.profile = profile
	m.phase = PhaseReady
	m.mu.Unlock()
	return profile, nil
}

// UpdateProfile edits the caller's profile with the same validation as
// registration.
func (m *Manager) UpdateProfile(ctx context.Context, username, bio, avatar string) (*model.Profile, error) {
	if !m.Authenticated() {
		return nil, apperror.AuthRequired()
	}
	if err := guard.ValidateUsername(username); err != nil {
		return nil, err
	}
	if err := guard.ValidateBio(bio); err != nil {
		return nil, err
	}
	if err := guard.ValidateAvatar(avatar); err != nil {
		return nil, err
	}

	profile, err := m.gateway.UpdateUserProfile(m.withIdentity(ctx), username, bio, avatar)
	if err != nil {
		return nil, err
	}
	m.mu.Lock()
	m.profile = profile
	m.mu.Unlock()
	return profile, nil
}

// Logout discards the session. The privacy mode resets to standard so a
// whistleblower choice never leaks into the next user's login.
func (m *Manager) Logout(ctx context.Context) error {
	err := m.provider.Logout(ctx)

	m.mu.Lock()
	if m.idleTimer != nil {
		m.idleTimer.Stop()
		m.idleTimer = nil
	}
	m.identity = ""
	m.profile = nil
	m.phase = PhaseSignedOut
	m.mode = ModeStandard
	m.mu.Unlock()

	m.logger.InfoContext(ctx, "session ended")
	return err
}

// Touch records user activity, pushing the idle deadline out.
func (m *Manager) Touch() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.identity == "" {
		return
	}
	if m.idleTimer != nil {
		m.idleTimer.Stop()
	}
	m.idleTimer = time.AfterFunc(m.idleTimeout, m.expire)
}

// expire fires when the idle window lapses without a Touch.
func (m *Manager) expire() {
	m.logger.Info("session expired after inactivity")
	if err := m.Logout(context.Background()); err != nil {
		m.logger.Warn("provider logout during expiry failed", slog.String("error", err.Error()))
	}
}

// Authenticated reports whether an identity is held.
func (m *Manager) Authenticated() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.identity != ""
}

// Profile returns the loaded profile, or nil before registration.
func (m *Manager) Profile() *model.Profile {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.profile
}

// Mode returns the active privacy mode.
func (m *Manager) Mode() PrivacyMode {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.mode
}

// Snapshot returns the current state in one consistent read.
func (m *Manager) Snapshot() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return State{Phase: m.phase, Mode: m.mode, Profile: m.profile}
}

// Context returns ctx with the session identity attached, ready for
// gateway calls made outside the manager.
func (m *Manager) Context(ctx context.Context) context.Context {
	return m.withIdentity(ctx)
}

func (m *Manager) withIdentity(ctx context.Context) context.Context {
	m.mu.Lock()
	identity := m.identity
	m.mu.Unlock()
	if identity == "" {
		return ctx
	}
	return remote.WithIdentity(ctx, identity)
}
