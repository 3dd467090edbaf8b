package handler

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/chymezy/decentra-client/internal/apperror"
	"github.com/chymezy/decentra-client/internal/auth"
	"github.com/chymezy/decentra-client/internal/feed"
	"github.com/chymezy/decentra-client/internal/guard"
	"github.com/chymezy/decentra-client/internal/model"
	"github.com/chymezy/decentra-client/internal/remote"
	"github.com/chymezy/decentra-client/internal/session"
)

// ProfileHandler serves profile registration and lookups, the follow
// graph listings, and platform stats.
type ProfileHandler struct {
	gateway  remote.Gateway
	cache    feed.ProfileCache
	registry *session.Registry
	logger   *slog.Logger
}

func NewProfileHandler(gateway remote.Gateway, cache feed.ProfileCache, registry *session.Registry, logger *slog.Logger) *ProfileHandler {
	return &ProfileHandler{gateway: gateway, cache: cache, registry: registry, logger: logger}
}

func (h *ProfileHandler) manager(r *http.Request) (*session.Manager, error) {
	identity, ok := auth.IdentityFromContext(r.Context())
	if !ok {
		return nil, apperror.AuthRequired()
	}
	return h.registry.Get(r.Context(), identity, auth.ModeFromContext(r.Context()))
}

type profileRequest struct {
	Username string `json:"username"`
	Bio      string `json:"bio"`
	Avatar   string `json:"avatar"`
}

// HandleCreateProfile serves POST /api/profile, completing first login.
func (h *ProfileHandler) HandleCreateProfile(w http.ResponseWriter, r *http.Request) {
	m, err := h.manager(r)
	if err != nil {
		writeError(w, err)
		return
	}
	var req profileRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}

	profile, err := m.CreateProfile(r.Context(), req.Username, req.Bio, req.Avatar)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, profile)
}

// HandleUpdateProfile serves PUT /api/profile. The cache entry is
// invalidated so other users' feeds pick the edit up within a fetch.
func (h *ProfileHandler) HandleUpdateProfile(w http.ResponseWriter, r *http.Request) {
	m, err := h.manager(r)
	if err != nil {
		writeError(w, err)
		return
	}
	var req profileRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}

	profile, err := m.UpdateProfile(r.Context(), req.Username, req.Bio, req.Avatar)
	if err != nil {
		writeError(w, err)
		return
	}
	if invalidator, ok := h.cache.(interface {
		Invalidate(ctx context.Context, id model.UserID) error
	}); ok {
		if err := invalidator.Invalidate(r.Context(), profile.ID); err != nil {
			h.logger.Warn("profile cache invalidation failed", slog.String("error", err.Error()))
		}
	}
	writeJSON(w, http.StatusOK, profile)
}

// HandleMyProfile serves GET /api/profile.
func (h *ProfileHandler) HandleMyProfile(w http.ResponseWriter, r *http.Request) {
	m, err := h.manager(r)
	if err != nil {
		writeError(w, err)
		return
	}
	profile, err := h.gateway.GetMyProfile(m.Context(r.Context()))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, profile)
}

// HandleGetProfile serves GET /api/users/{id}, cache first.
func (h *ProfileHandler) HandleGetProfile(w http.ResponseWriter, r *http.Request) {
	userID := model.UserID(chi.URLParam(r, "id"))
	if userID == "" {
		writeError(w, apperror.InvalidUserID(""))
		return
	}

	if h.cache != nil {
		if p, err := h.cache.Get(r.Context(), userID); err == nil {
			writeJSON(w, http.StatusOK, p)
			return
		}
	}

	profile, err := h.gateway.GetUserProfile(r.Context(), userID)
	if err != nil {
		writeError(w, err)
		return
	}
	if h.cache != nil {
		if err := h.cache.Put(r.Context(), profile); err != nil {
			h.logger.Warn("profile cache write failed", slog.String("error", err.Error()))
		}
	}
	writeJSON(w, http.StatusOK, profile)
}

// HandleCheckUsername serves GET /api/usernames/{username}. Validation
// failures report as unavailable rather than erroring, so the signup
// form gets one uniform answer shape.
func (h *ProfileHandler) HandleCheckUsername(w http.ResponseWriter, r *http.Request) {
	username := chi.URLParam(r, "username")
	if err := guard.ValidateUsername(username); err != nil {
		writeJSON(w, http.StatusOK, map[string]any{"available": false, "reason": err.Error()})
		return
	}

	available, err := h.gateway.CheckUsernameAvailability(r.Context(), username)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"available": available})
}

// HandleFollowers serves GET /api/users/{id}/followers?offset=&limit=.
func (h *ProfileHandler) HandleFollowers(w http.ResponseWriter, r *http.Request) {
	h.listConnections(w, r, h.gateway.GetFollowers)
}

// HandleFollowing serves GET /api/users/{id}/following?offset=&limit=.
func (h *ProfileHandler) HandleFollowing(w http.ResponseWriter, r *http.Request) {
	h.listConnections(w, r, h.gateway.GetFollowing)
}

func (h *ProfileHandler) listConnections(w http.ResponseWriter, r *http.Request,
	list func(ctx context.Context, id model.UserID, offset, limit int) ([]model.Profile, error)) {

	userID := model.UserID(chi.URLParam(r, "id"))
	if userID == "" {
		writeError(w, apperror.InvalidUserID(""))
		return
	}
	offset, limit := pageParams(r)
	page := guard.ValidatePagination(offset, limit)

	users, err := list(r.Context(), userID, page.Offset, page.Limit)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, users)
}

// HandleIsFollowing serves GET /api/users/{id}/follow: whether the
// caller currently follows the user.
func (h *ProfileHandler) HandleIsFollowing(w http.ResponseWriter, r *http.Request) {
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
	following, err := h.gateway.IsFollowing(m.Context(r.Context()), userID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"following": following})
}

// HandlePendingRequests serves GET /api/follow-requests.
func (h *ProfileHandler) HandlePendingRequests(w http.ResponseWriter, r *http.Request) {
	m, err := h.manager(r)
	if err != nil {
		writeError(w, err)
		return
	}
	reqs, err := h.gateway.GetPendingFollowRequests(m.Context(r.Context()))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, reqs)
}

// HandleApproveRequest serves POST /api/follow-requests/{id}/approve.
func (h *ProfileHandler) HandleApproveRequest(w http.ResponseWriter, r *http.Request) {
	h.settleRequest(w, r, h.gateway.ApproveFollowRequest, "approved")
}

// HandleRejectRequest serves POST /api/follow-requests/{id}/reject.
func (h *ProfileHandler) HandleRejectRequest(w http.ResponseWriter, r *http.Request) {
	h.settleRequest(w, r, h.gateway.RejectFollowRequest, "rejected")
}

func (h *ProfileHandler) settleRequest(w http.ResponseWriter, r *http.Request,
	settle func(ctx context.Context, id model.FollowRequestID) error, status string) {

	m, err := h.manager(r)
	if err != nil {
		writeError(w, err)
		return
	}
	raw := chi.URLParam(r, "id")
	id, err := strconv.ParseUint(raw, 10, 64)
	if err != nil {
		writeError(w, apperror.ValidationFailed("requestId", "Invalid follow request id"))
		return
	}
	if err := settle(m.Context(r.Context()), model.FollowRequestID(id)); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": status})
}

// HandlePlatformStats serves GET /api/stats.
func (h *ProfileHandler) HandlePlatformStats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.gateway.GetPlatformStats(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, stats)
}
