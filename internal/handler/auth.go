package handler

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/rs/xid"

	"github.com/chymezy/decentra-client/internal/apperror"
	"github.com/chymezy/decentra-client/internal/auth"
	"github.com/chymezy/decentra-client/internal/session"
)

const (
	stateCookie = "decentra_oauth_state"
	modeCookie  = "decentra_oauth_mode"
)

// AuthHandler runs the login dance: redirect to the identity provider,
// exchange the callback code, and mint the session cookie.
type AuthHandler struct {
	provider *auth.OAuthProvider
	tokens   *auth.TokenService
	registry *session.Registry
	logger   *slog.Logger
	secure   bool
}

// NewAuthHandler wires an AuthHandler. secure controls the Secure flag
// on cookies; turn it off only for local HTTP development.
func NewAuthHandler(provider *auth.OAuthProvider, tokens *auth.TokenService, registry *session.Registry, logger *slog.Logger, secure bool) *AuthHandler {
	return &AuthHandler{provider: provider, tokens: tokens, registry: registry, logger: logger, secure: secure}
}

// HandleLogin starts the flow. The privacy mode comes from the "mode"
// query parameter and defaults to standard; it rides through the
// redirect in a short-lived cookie.
func (h *AuthHandler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	mode := session.PrivacyMode(r.URL.Query().Get("mode"))
	if mode == "" {
		mode = session.ModeStandard
	}
	if !mode.Valid() {
		writeError(w, apperror.ValidationFailed("mode", "Unknown privacy mode"))
		return
	}

	state := xid.New().String()
	h.setCookie(w, stateCookie, state, 10*time.Minute)
	h.setCookie(w, modeCookie, string(mode), 10*time.Minute)

	http.Redirect(w, r, h.provider.AuthURL(state, mode.SessionCeiling()), http.StatusTemporaryRedirect)
}

// HandleCallback finishes the flow: verify state, exchange the code,
// mint a session cookie whose lifetime is the mode's ceiling.
func (h *AuthHandler) HandleCallback(w http.ResponseWriter, r *http.Request) {
	stateParam := r.URL.Query().Get("state")
	stateSaved, err := r.Cookie(stateCookie)
	if err != nil || stateParam == "" || stateParam != stateSaved.Value {
		writeError(w, apperror.ValidationFailed("state", "OAuth state mismatch"))
		return
	}

	mode := session.ModeStandard
	if c, err := r.Cookie(modeCookie); err == nil && session.PrivacyMode(c.Value).Valid() {
		mode = session.PrivacyMode(c.Value)
	}

	identity, err := h.provider.Exchange(r.Context(), r.URL.Query().Get("code"))
	if err != nil {
		h.logger.Error("OAuth exchange failed", slog.String("error", err.Error()))
		writeError(w, apperror.RemoteFailed(apperror.KindUnknown, "Login failed, please try again"))
		return
	}

	token, err := h.tokens.Generate(identity, mode)
	if err != nil {
		h.logger.Error("session token generation failed", slog.String("error", err.Error()))
		writeError(w, apperror.RemoteFailed(apperror.KindUnknown, "Login failed, please try again"))
		return
	}

	h.setCookie(w, auth.SessionCookie, token, mode.SessionCeiling())
	h.clearCookie(w, stateCookie)
	h.clearCookie(w, modeCookie)

	http.Redirect(w, r, "/", http.StatusTemporaryRedirect)
}

// HandleLogout drops the server-side session and expires the cookie.
func (h *AuthHandler) HandleLogout(w http.ResponseWriter, r *http.Request) {
	if identity, ok := auth.IdentityFromContext(r.Context()); ok {
		if err := h.registry.Drop(r.Context(), identity); err != nil {
			h.logger.Warn("session drop failed", slog.String("error", err.Error()))
		}
	}
	h.clearCookie(w, auth.SessionCookie)
	writeJSON(w, http.StatusOK, map[string]string{"status": "signed_out"})
}

// HandleSession reports the current session snapshot to the frontend.
func (h *AuthHandler) HandleSession(w http.ResponseWriter, r *http.Request) {
	identity, ok := auth.IdentityFromContext(r.Context())
	if !ok {
		writeJSON(w, http.StatusOK, map[string]any{"phase": session.PhaseSignedOut})
		return
	}

	m, err := h.registry.Get(r.Context(), identity, auth.ModeFromContext(r.Context()))
	if err != nil {
		writeError(w, err)
		return
	}
	snap := m.Snapshot()
	writeJSON(w, http.StatusOK, map[string]any{
		"phase":   snap.Phase,
		"mode":    snap.Mode,
		"profile": snap.Profile,
	})
}

func (h *AuthHandler) setCookie(w http.ResponseWriter, name, value string, ttl time.Duration) {
	http.SetCookie(w, &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     "/",
		MaxAge:   int(ttl.Seconds()),
		HttpOnly: true,
		Secure:   h.secure,
		SameSite: http.SameSiteLaxMode,
	})
}

func (h *AuthHandler) clearCookie(w http.ResponseWriter, name string) {
	http.SetCookie(w, &http.Cookie{
		Name:     name,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   h.secure,
		SameSite: http.SameSiteLaxMode,
	})
}
