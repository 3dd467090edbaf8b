package session

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/chymezy/decentra-client/internal/apperror"
	"github.com/chymezy/decentra-client/internal/model"
	"github.com/chymezy/decentra-client/internal/remote"
)

type fakeProvider struct {
	identity    string
	loginErr    error
	resumed     string
	lastOptions LoginOptions
	logoutCalls int
}

func (p *fakeProvider) Login(ctx context.Context, opts LoginOptions) (string, error) {
	p.lastOptions = opts
	if p.loginErr != nil {
		return "", p.loginErr
	}
	return p.identity, nil
}

func (p *fakeProvider) Resume(ctx context.Context) (string, bool) {
	return p.resumed, p.resumed != ""
}

func (p *fakeProvider) Logout(ctx context.Context) error {
	p.logoutCalls++
	return nil
}

type fakeGateway struct {
	remote.Gateway

	profile      *model.Profile
	myProfileErr error
	created      *model.Profile
	seenIdentity string
}

func (f *fakeGateway) GetMyProfile(ctx context.Context) (*model.Profile, error) {
	f.seenIdentity, _ = remote.IdentityFromContext(ctx)
	if f.myProfileErr != nil {
		return nil, f.myProfileErr
	}
	if f.profile == nil {
		return nil, apperror.NotFound("profile", "")
	}
	return f.profile, nil
}

func (f *fakeGateway) CreateUserProfile(ctx context.Context, username, bio, avatar string) (*model.Profile, error) {
	f.created = &model.Profile{ID: "me", Username: username, Bio: bio, Avatar: avatar}
	return f.created, nil
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestLoginRequestsModeCeiling(t *testing.T) {
	tests := []struct {
		mode    PrivacyMode
		ceiling time.Duration
	}{
		{ModeStandard, 7 * 24 * time.Hour},
		{ModeAnonymous, 24 * time.Hour},
		{ModeWhistleblower, 2 * time.Hour},
	}
	for _, tt := range tests {
		t.Run(string(tt.mode), func(t *testing.T) {
			p := &fakeProvider{identity: "id-1"}
			m := NewManager(p, &fakeGateway{profile: &model.Profile{ID: "me"}}, testLogger())

			if err := m.Login(context.Background(), tt.mode); err != nil {
				t.Fatalf("Login: %v", err)
			}
			if p.lastOptions.SessionCeiling != tt.ceiling {
				t.Fatalf("ceiling = %v, want %v", p.lastOptions.SessionCeiling, tt.ceiling)
			}
			if m.Mode() != tt.mode {
				t.Fatalf("mode = %v", m.Mode())
			}
		})
	}
}

func TestLoginRejectsUnknownMode(t *testing.T) {
	m := NewManager(&fakeProvider{}, &fakeGateway{}, testLogger())
	err := m.Login(context.Background(), PrivacyMode("stealth"))
	if !errors.Is(err, apperror.ErrValidation) {
		t.Fatalf("err = %v, want validation error", err)
	}
}

func TestLoginWithoutProfileNeedsRegistration(t *testing.T) {
	gw := &fakeGateway{} // backend has no profile for this identity
	m := NewManager(&fakeProvider{identity: "id-1"}, gw, testLogger())

	if err := m.Login(context.Background(), ModeStandard); err != nil {
		t.Fatalf("Login: %v", err)
	}
	if got := m.Snapshot().Phase; got != PhaseNeedsProfile {
		t.Fatalf("phase = %v, want needs_profile", got)
	}
	if !m.Authenticated() {
		t.Fatal("missing profile must not break authentication")
	}
	if gw.seenIdentity != "id-1" {
		t.Fatalf("gateway saw identity %q", gw.seenIdentity)
	}
}

func TestLoginProfileTransportErrorStaysAuthenticated(t *testing.T) {
	gw := &fakeGateway{myProfileErr: apperror.Timeout("get_my_profile")}
	m := NewManager(&fakeProvider{identity: "id-1"}, gw, testLogger())

	err := m.Login(context.Background(), ModeStandard)
	if !errors.Is(err, apperror.ErrTimeout) {
		t.Fatalf("err = %v, want the transport error surfaced", err)
	}
	if !m.Authenticated() {
		t.Fatal("transport failure on profile load must not sign the user out")
	}
	// Ready means profile-in-hand; a failed fetch is neither ready nor
	// needs-profile.
	if got := m.Snapshot().Phase; got != PhaseProfileUnknown {
		t.Fatalf("phase = %v, want profile_unknown", got)
	}
}

func TestCreateProfileCompletesRegistration(t *testing.T) {
	gw := &fakeGateway{}
	m := NewManager(&fakeProvider{identity: "id-1"}, gw, testLogger())
	ctx := context.Background()

	if err := m.Login(ctx, ModeStandard); err != nil {
		t.Fatalf("Login: %v", err)
	}
	if _, err := m.CreateProfile(ctx, "_bad", "", ""); !errors.Is(err, apperror.ErrValidation) {
		t.Fatalf("invalid username: %v", err)
	}

	p, err := m.CreateProfile(ctx, "alice", "hello", "")
	if err != nil {
		t.Fatalf("CreateProfile: %v", err)
	}
	if p.Username != "alice" {
		t.Fatalf("profile = %+v", p)
	}
	if got := m.Snapshot().Phase; got != PhaseReady {
		t.Fatalf("phase = %v, want ready", got)
	}
}

func TestLogoutResetsMode(t *testing.T) {
	p := &fakeProvider{identity: "id-1"}
	m := NewManager(p, &fakeGateway{profile: &model.Profile{ID: "me"}}, testLogger())
	ctx := context.Background()

	if err := m.Login(ctx, ModeWhistleblower); err != nil {
		t.Fatalf("Login: %v", err)
	}
	if err := m.Logout(ctx); err != nil {
		t.Fatalf("Logout: %v", err)
	}
	if m.Authenticated() {
		t.Fatal("still authenticated after logout")
	}
	if m.Mode() != ModeStandard {
		t.Fatalf("mode = %v, want standard after logout", m.Mode())
	}
	if m.Profile() != nil {
		t.Fatal("profile must be cleared")
	}
	if p.logoutCalls != 1 {
		t.Fatalf("provider logout calls = %d", p.logoutCalls)
	}
}

func TestIdleTimeoutSignsOut(t *testing.T) {
	p := &fakeProvider{identity: "id-1"}
	m := NewManager(p, &fakeGateway{profile: &model.Profile{ID: "me"}}, testLogger(),
		WithIdleTimeout(30*time.Millisecond))

	if err := m.Login(context.Background(), ModeStandard); err != nil {
		t.Fatalf("Login: %v", err)
	}

	// Activity keeps the session alive past the original deadline.
	time.Sleep(20 * time.Millisecond)
	m.Touch()
	time.Sleep(20 * time.Millisecond)
	if !m.Authenticated() {
		t.Fatal("session expired despite activity")
	}

	// Silence lets it lapse.
	deadline := time.Now().Add(time.Second)
	for m.Authenticated() {
		if time.Now().After(deadline) {
			t.Fatal("session never expired")
		}
		time.Sleep(5 * time.Millisecond)
	}
	if got := m.Snapshot().Phase; got != PhaseSignedOut {
		t.Fatalf("phase = %v, want signed_out", got)
	}
}

func TestInitializeResumesSession(t *testing.T) {
	p := &fakeProvider{resumed: "id-9"}
	gw := &fakeGateway{profile: &model.Profile{ID: "me", Username: "alice"}}
	m := NewManager(p, gw, testLogger())

	if err := m.Initialize(context.Background()); err != nil {
		t.Fatalf("Initialize: %v", err)
	}
	if !m.Authenticated() {
		t.Fatal("resumed identity must authenticate")
	}
	if m.Profile() == nil || m.Profile().Username != "alice" {
		t.Fatalf("profile = %+v", m.Profile())
	}
}
