// Package auth handles the server side of sign-in: the OAuth exchange
// with the identity provider, the signed session cookie, and the
// middleware that turns the cookie back into a session.
//
// FLOW:
//  1. Browser hits /auth/login?mode=... → redirected to the identity provider
//  2. Provider calls back with a code; we exchange it for an identity token
//  3. We mint a JWT session cookie whose lifetime is the privacy mode's
//     ceiling, so a whistleblower cookie dies within two hours no matter what
//  4. Middleware validates the cookie on every request and exposes the
//     identity and mode through the request context
package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/chymezy/decentra-client/internal/session"
)

const issuer = "decentra-client"

// TokenService signs and validates session tokens.
type TokenService struct {
	secret []byte
}

// NewTokenService creates a TokenService with the given HMAC secret.
// Use at least 32 bytes of random data in production.
func NewTokenService(secret string) (*TokenService, error) {
	if len(secret) < 16 {
		return nil, errors.New("auth: JWT secret must be at least 16 characters")
	}
	return &TokenService{secret: []byte(secret)}, nil
}

// claims stores the identity token in "sub" and the privacy mode in a
// private claim, so the mode survives server restarts without any
// server-side session store.
type claims struct {
	jwt.RegisteredClaims
	Mode string `json:"pm"`
}

// Generate signs a session token for the identity. The expiry is the
// privacy mode's session ceiling, never longer.
func (s *TokenService) Generate(identity string, mode session.PrivacyMode) (string, error) {
	now := time.Now()

	c := claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   identity,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(mode.SessionCeiling())),
			Issuer:    issuer,
		},
		Mode: string(mode),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, c)
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("auth: signing token: %w", err)
	}
	return signed, nil
}

// Validate parses and verifies a session token, returning the identity
// and privacy mode it carries. Restricting the accepted algorithms
// blocks algorithm-confusion attacks.
func (s *TokenService) Validate(tokenStr string) (string, session.PrivacyMode, error) {
	token, err := jwt.ParseWithClaims(
		tokenStr,
		&claims{},
		func(token *jwt.Token) (any, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("auth: unexpected signing method: %v", token.Header["alg"])
			}
			return s.secret, nil
		},
		jwt.WithValidMethods([]string{"HS256"}),
		jwt.WithIssuer(issuer),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return "", "", fmt.Errorf("auth: token expired")
		}
		return "", "", fmt.Errorf("auth: invalid token: %w", err)
	}

	c, ok := token.Claims.(*claims)
	if !ok || !token.Valid {
		return "", "", fmt.Errorf("auth: invalid token claims")
	}
	if c.Subject == "" {
		return "", "", fmt.Errorf("auth: token has no subject")
	}

	mode := session.PrivacyMode(c.Mode)
	if !mode.Valid() {
		mode = session.ModeStandard
	}
	return c.Subject, mode, nil
}
