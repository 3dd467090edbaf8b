package auth

import (
	"context"
	"net/http"

	"github.com/chymezy/decentra-client/internal/middleware"
	"github.com/chymezy/decentra-client/internal/session"
)

// SessionCookie is the name of the HttpOnly cookie carrying the JWT.
// HttpOnly keeps it out of reach of injected scripts.
const SessionCookie = "decentra_session"

// contextKey is unexported so only this package can read or write the
// session values it stores in a request context.
type contextKey string

const (
	identityKey contextKey = "identity"
	modeKey     contextKey = "mode"
)

// RequireSession enforces a valid session cookie on protected routes.
// On success the identity token and privacy mode land in the request
// context; on failure the chain stops with a 401.
func RequireSession(tokens *TokenService) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			identity, mode, err := extractSession(r, tokens)
			if err != nil {
				http.Error(w, `{"error":"auth_required","message":"Please log in to continue"}`, http.StatusUnauthorized)
				return
			}
			middleware.RecordActor(r.Context(), identity, mode)
			next.ServeHTTP(w, r.WithContext(withSession(r.Context(), identity, mode)))
		})
	}
}

// OptionalSession extracts the session if a valid cookie is present but
// never blocks the request. Public reads use this so signed-in users
// still get personalized responses.
func OptionalSession(tokens *TokenService) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if identity, mode, err := extractSession(r, tokens); err == nil {
				middleware.RecordActor(r.Context(), identity, mode)
				r = r.WithContext(withSession(r.Context(), identity, mode))
			}
			next.ServeHTTP(w, r)
		})
	}
}

// IdentityFromContext returns the identity token for the request, or
// ("", false) for an anonymous request.
func IdentityFromContext(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(identityKey).(string)
	return id, ok && id != ""
}

// ModeFromContext returns the privacy mode the session was opened in.
// Anonymous requests report the standard mode.
func ModeFromContext(ctx context.Context) session.PrivacyMode {
	if mode, ok := ctx.Value(modeKey).(session.PrivacyMode); ok && mode.Valid() {
		return mode
	}
	return session.ModeStandard
}

func withSession(ctx context.Context, identity string, mode session.PrivacyMode) context.Context {
	ctx = context.WithValue(ctx, identityKey, identity)
	return context.WithValue(ctx, modeKey, mode)
}

func extractSession(r *http.Request, tokens *TokenService) (string, session.PrivacyMode, error) {
	cookie, err := r.Cookie(SessionCookie)
	if err != nil {
		return "", "", err
	}
	return tokens.Validate(cookie.Value)
}
