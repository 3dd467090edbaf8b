package auth

import (
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/chymezy/decentra-client/internal/session"
)

const testSecret = "test-secret-key-for-auth-tests"

func TestGenerateValidateRoundtrip(t *testing.T) {
	s, err := NewTokenService(testSecret)
	if err != nil {
		t.Fatalf("NewTokenService: %v", err)
	}

	token, err := s.Generate("identity-1", session.ModeAnonymous)
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}

	identity, mode, err := s.Validate(token)
	if err != nil {
		t.Fatalf("Validate: %v", err)
	}
	if identity != "identity-1" {
		t.Fatalf("identity = %q", identity)
	}
	if mode != session.ModeAnonymous {
		t.Fatalf("mode = %q", mode)
	}
}

func TestTokenLifetimeFollowsMode(t *testing.T) {
	s, _ := NewTokenService(testSecret)

	tests := []struct {
		mode session.PrivacyMode
		ttl  time.Duration
	}{
		{session.ModeStandard, 7 * 24 * time.Hour},
		{session.ModeWhistleblower, 2 * time.Hour},
	}
	for _, tt := range tests {
		t.Run(string(tt.mode), func(t *testing.T) {
			tokenStr, err := s.Generate("id", tt.mode)
			if err != nil {
				t.Fatalf("Generate: %v", err)
			}

			// Decode the claims without validation to inspect expiry.
			var c claims
			if _, _, err := jwt.NewParser().ParseUnverified(tokenStr, &c); err != nil {
				t.Fatalf("ParseUnverified: %v", err)
			}
			got := c.ExpiresAt.Sub(c.IssuedAt.Time)
			if got != tt.ttl {
				t.Fatalf("token lifetime = %v, want %v", got, tt.ttl)
			}
		})
	}
}

func TestValidateRejectsTamperedToken(t *testing.T) {
	s, _ := NewTokenService(testSecret)
	token, _ := s.Generate("identity-1", session.ModeStandard)

	parts := strings.Split(token, ".")
	tampered := parts[0] + "." + parts[1] + "." + "forgedsignature"
	if _, _, err := s.Validate(tampered); err == nil {
		t.Fatal("tampered token must not validate")
	}
}

func TestValidateRejectsWrongSecret(t *testing.T) {
	s1, _ := NewTokenService(testSecret)
	s2, _ := NewTokenService("a-completely-different-secret")

	token, _ := s1.Generate("identity-1", session.ModeStandard)
	if _, _, err := s2.Validate(token); err == nil {
		t.Fatal("token signed with another secret must not validate")
	}
}

func TestNewTokenServiceRejectsShortSecret(t *testing.T) {
	if _, err := NewTokenService("short"); err == nil {
		t.Fatal("short secret must be rejected")
	}
}

func TestValidateDefaultsUnknownMode(t *testing.T) {
	s, _ := NewTokenService(testSecret)

	// Forge a token with an unknown mode claim using the same secret.
	c := claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "identity-1",
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
			Issuer:    issuer,
		},
		Mode: "stealth",
	}
	tokenStr, err := jwt.NewWithClaims(jwt.SigningMethodHS256, c).SignedString([]byte(testSecret))
	if err != nil {
		t.Fatalf("signing: %v", err)
	}

	_, mode, err := s.Validate(tokenStr)
	if err != nil {
		t.Fatalf("Validate: %v", err)
	}
	if mode != session.ModeStandard {
		t.Fatalf("mode = %q, want fallback to standard", mode)
	}
}
