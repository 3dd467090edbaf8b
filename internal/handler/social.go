package handler

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/chymezy/decentra-client/internal/apperror"
	"github.com/chymezy/decentra-client/internal/auth"
	"github.com/chymezy/decentra-client/internal/model"
	"github.com/chymezy/decentra-client/internal/session"
	"github.com/chymezy/decentra-client/internal/social"
)

// SocialHandler serves the like and follow toggles. The frontend posts
// the state it is currently rendering; the response is the state it
// should render once the toggle settles.
type SocialHandler struct {
	toggler  *social.Toggler
	registry *session.Registry
	logger   *slog.Logger
}

func NewSocialHandler(toggler *social.Toggler, registry *session.Registry, logger *slog.Logger) *SocialHandler {
	return &SocialHandler{toggler: toggler, registry: registry, logger: logger}
}

func (h *SocialHandler) manager(r *http.Request) (*session.Manager, error) {
	identity, ok := auth.IdentityFromContext(r.Context())
	if !ok {
		return nil, apperror.AuthRequired()
	}
	return h.registry.Get(r.Context(), identity, auth.ModeFromContext(r.Context()))
}

type toggleRequest struct {
	Active bool   `json:"active"`
	Count  uint64 `json:"count"`
}

// HandleToggleLike serves POST /api/posts/{id}/like.
func (h *SocialHandler) HandleToggleLike(w http.ResponseWriter, r *http.Request) {
	m, err := h.manager(r)
	if err != nil {
		writeError(w, err)
		return
	}
	postID, err := postIDParam(r)
	if err != nil {
		writeError(w, err)
		return
	}
	var req toggleRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}

	state, err := h.toggler.ToggleLike(m.Context(r.Context()), m, postID,
		social.ToggleState{Active: req.Active, Count: req.Count}, nil)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, state)
}

// HandleToggleFollow serves POST /api/users/{id}/follow.
func (h *SocialHandler) HandleToggleFollow(w http.ResponseWriter, r *http.Request) {
	m, err := h.manager(r)
	if err != nil {
		writeError(w, err)
		return
	}
	userID := model.UserID(chi.URLParam(r, "id"))
	if userID == "" {
		writeError(w, apperror.InvalidUserID(""))
		return
	}
	var req toggleRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}

	state, err := h.toggler.ToggleFollow(m.Context(r.Context()), m, userID,
		social.ToggleState{Active: req.Active, Count: req.Count}, nil)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, state)
}
