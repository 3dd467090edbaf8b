package handler

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/chymezy/decentra-client/internal/apperror"
	"github.com/chymezy/decentra-client/internal/auth"
	"github.com/chymezy/decentra-client/internal/feed"
	"github.com/chymezy/decentra-client/internal/model"
	"github.com/chymezy/decentra-client/internal/session"
)

// FeedHandler serves feeds, posts, and comments.
type FeedHandler struct {
	engine   *feed.Engine
	registry *session.Registry
	logger   *slog.Logger
}

func NewFeedHandler(engine *feed.Engine, registry *session.Registry, logger *slog.Logger) *FeedHandler {
	return &FeedHandler{engine: engine, registry: registry, logger: logger}
}

// manager resolves the caller's session manager, or an auth error.
func (h *FeedHandler) manager(r *http.Request) (*session.Manager, error) {
	identity, ok := auth.IdentityFromContext(r.Context())
	if !ok {
		return nil, apperror.AuthRequired()
	}
	return h.registry.Get(r.Context(), identity, auth.ModeFromContext(r.Context()))
}

// HandleUserFeed serves GET /api/feed/me?offset=&limit=.
func (h *FeedHandler) HandleUserFeed(w http.ResponseWriter, r *http.Request) {
	m, err := h.manager(r)
	if err != nil {
		writeError(w, err)
		return
	}
	offset, limit := pageParams(r)
	posts, err := h.engine.GetUserFeed(m.Context(r.Context()), m, offset, limit)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, posts)
}

// HandleSocialFeed serves GET /api/feed?offset=&limit=.
func (h *FeedHandler) HandleSocialFeed(w http.ResponseWriter, r *http.Request) {
	m, err := h.manager(r)
	if err != nil {
		writeError(w, err)
		return
	}
	offset, limit := pageParams(r)
	posts, err := h.engine.GetSocialFeed(m.Context(r.Context()), m, offset, limit)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, posts)
}

type createPostRequest struct {
	Content    string               `json:"content"`
	Visibility model.PostVisibility `json:"visibility"`
}

// HandleCreatePost serves POST /api/posts.
func (h *FeedHandler) HandleCreatePost(w http.ResponseWriter, r *http.Request) {
	m, err := h.manager(r)
	if err != nil {
		writeError(w, err)
		return
	}
	var req createPostRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}

	id, err := h.engine.CreatePost(m.Context(r.Context()), m, req.Content, req.Visibility)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{"post_id": id})
}

type addCommentRequest struct {
	Content string `json:"content"`
}

// HandleAddComment serves POST /api/posts/{id}/comments.
func (h *FeedHandler) HandleAddComment(w http.ResponseWriter, r *http.Request) {
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
	var req addCommentRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}

	id, err := h.engine.AddComment(m.Context(r.Context()), m, postID, req.Content)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{"comment_id": id})
}

// HandleGetPost serves GET /api/posts/{id}. Works without a session for
// public posts.
func (h *FeedHandler) HandleGetPost(w http.ResponseWriter, r *http.Request) {
	postID, err := postIDParam(r)
	if err != nil {
		writeError(w, err)
		return
	}
	post, err := h.engine.GetPost(r.Context(), postID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, post)
}

// HandleUserPosts serves GET /api/users/{id}/posts?offset=&limit=.
func (h *FeedHandler) HandleUserPosts(w http.ResponseWriter, r *http.Request) {
	userID := model.UserID(chi.URLParam(r, "id"))
	offset, limit := pageParams(r)
	posts, err := h.engine.GetUserPosts(r.Context(), userID, offset, limit)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, posts)
}

// HandleGetComments serves GET /api/posts/{id}/comments. Works without
// a session for public posts.
func (h *FeedHandler) HandleGetComments(w http.ResponseWriter, r *http.Request) {
	postID, err := postIDParam(r)
	if err != nil {
		writeError(w, err)
		return
	}
	comments, err := h.engine.GetPostComments(r.Context(), postID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, comments)
}

func pageParams(r *http.Request) (offset, limit int) {
	offset, _ = strconv.Atoi(r.URL.Query().Get("offset"))
	limit, _ = strconv.Atoi(r.URL.Query().Get("limit"))
	return offset, limit
}

func postIDParam(r *http.Request) (model.PostID, error) {
	raw := chi.URLParam(r, "id")
	id, err := strconv.ParseUint(raw, 10, 64)
	if err != nil || id == 0 {
		return 0, apperror.InvalidPostID(raw)
	}
	return model.PostID(id), nil
}
