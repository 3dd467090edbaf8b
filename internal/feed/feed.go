// Package feed assembles display-ready feeds: it pages raw posts out of
// the backend, enriches them with author profiles and like status in
// concurrent batches, and drops what cannot be rendered rather than
// failing the page.
package feed

import (
	"context"
	"log/slog"

	"github.com/chymezy/decentra-client/internal/apperror"
	"github.com/chymezy/decentra-client/internal/guard"
	"github.com/chymezy/decentra-client/internal/model"
	"github.com/chymezy/decentra-client/internal/remote"
	"github.com/chymezy/decentra-client/internal/resolve"
)

// Session is the slice of session state the engine needs: whether the
// caller is signed in, and who they are.
type Session interface {
	Authenticated() bool
	Profile() *model.Profile
}

// ProfileCache is the optional read-through store for author profiles.
type ProfileCache interface {
	Get(ctx context.Context, id model.UserID) (*model.Profile, error)
	Put(ctx context.Context, p *model.Profile) error
}

// Engine fetches and enriches feeds. Mutations (posting, commenting) go
// through validation and the rate limiter; reads do not, so pagination
// is never throttled.
type Engine struct {
	gateway remote.Gateway
	cache   ProfileCache
	limiter *guard.RateLimiter
	logger  *slog.Logger
}

// NewEngine wires an engine. cache may be nil, in which case every
// author lookup goes to the backend.
func NewEngine(gateway remote.Gateway, cache ProfileCache, limiter *guard.RateLimiter, logger *slog.Logger) *Engine {
	if logger == nil {
		logger = slog.Default()
	}
	if limiter == nil {
		limiter = guard.NewRateLimiter(0)
	}
	return &Engine{gateway: gateway, cache: cache, limiter: limiter, logger: logger}
}

// GetUserFeed returns the caller's own posts, enriched, newest first.
// The caller needs a registered profile, not just an identity.
func (e *Engine) GetUserFeed(ctx context.Context, sess Session, offset, limit int) ([]model.FeedPost, error) {
	if err := requireProfile(sess); err != nil {
		return nil, err
	}
	page := guard.ValidatePagination(offset, limit)

	posts, err := e.gateway.GetUserFeed(ctx, page.Offset, page.Limit)
	if err != nil {
		return nil, err
	}
	if len(posts) == 0 {
		return []model.FeedPost{}, nil
	}
	return e.enrich(ctx, posts)
}

// GetSocialFeed returns posts from followed users plus the caller's
// own. The backend joins authors and like status itself for this feed,
// so no enrichment pass runs here.
func (e *Engine) GetSocialFeed(ctx context.Context, sess Session, offset, limit int) ([]model.FeedPost, error) {
	if err := requireProfile(sess); err != nil {
		return nil, err
	}
	page := guard.ValidatePagination(offset, limit)

	posts, err := e.gateway.GetSocialFeed(ctx, page.Offset, page.Limit)
	if err != nil {
		return nil, err
	}
	if posts == nil {
		posts = []model.FeedPost{}
	}
	return posts, nil
}

// GetPost returns one post enriched for display. Public posts are
// readable without a session; for a signed-out viewer the like status
// degrades to "not liked".
func (e *Engine) GetPost(ctx context.Context, postID model.PostID) (*model.FeedPost, error) {
	if postID == 0 {
		return nil, apperror.InvalidPostID("0")
	}
	post, err := e.gateway.GetPost(ctx, postID)
	if err != nil {
		return nil, err
	}
	enriched, err := e.enrich(ctx, []model.Post{*post})
	if err != nil {
		return nil, err
	}
	if len(enriched) == 0 {
		// Author unresolved, so the post cannot be rendered.
		return nil, apperror.NotFound("post", resolve.Key(postID))
	}
	return &enriched[0], nil
}

// GetUserPosts pages one author's posts, enriched. The backend filters
// by visibility for the requesting viewer.
func (e *Engine) GetUserPosts(ctx context.Context, userID model.UserID, offset, limit int) ([]model.FeedPost, error) {
	if userID == "" {
		return nil, apperror.InvalidUserID("")
	}
	page := guard.ValidatePagination(offset, limit)
	posts, err := e.gateway.GetUserPosts(ctx, userID, page.Offset, page.Limit)
	if err != nil {
		return nil, err
	}
	if len(posts) == 0 {
		return []model.FeedPost{}, nil
	}
	return e.enrich(ctx, posts)
}

// requireProfile gates the personalized feeds: an identity alone is not
// enough, the backend only serves them to registered accounts.
func requireProfile(sess Session) error {
	if sess == nil || !sess.Authenticated() {
		return apperror.AuthRequired()
	}
	if sess.Profile() == nil {
		return apperror.ProfileRequired()
	}
	return nil
}

// enrich resolves author profiles and like statuses concurrently, then
// joins them onto the posts. Posts whose author cannot be resolved are
// dropped with a warning; a missing like status degrades to "not liked".
func (e *Engine) enrich(ctx context.Context, posts []model.Post) ([]model.FeedPost, error) {
	authorIDs := make([]model.UserID, 0, len(posts))
	postIDs := make([]model.PostID, 0, len(posts))
	for _, p := range posts {
		authorIDs = append(authorIDs, p.AuthorID)
		postIDs = append(postIDs, p.ID)
	}

	authorsCh := make(chan map[string]*model.Profile, 1)
	likesCh := make(chan map[string]bool, 1)

	go func() {
		authors, _ := resolve.Batch(ctx, authorIDs, resolve.DefaultChunkSize, e.resolveAuthors, e.logger)
		authorsCh <- authors
	}()
	go func() {
		likes, _ := resolve.Batch(ctx, postIDs, resolve.DefaultChunkSize, e.resolveLikes, e.logger)
		likesCh <- likes
	}()
	authors := <-authorsCh
	likes := <-likesCh

	out := make([]model.FeedPost, 0, len(posts))
	for _, p := range posts {
		author, ok := authors[resolve.Key(p.AuthorID)]
		if !ok || author == nil {
			e.logger.WarnContext(ctx, "dropping post with unresolved author",
				slog.Uint64("post_id", uint64(p.ID)),
				slog.String("author_id", string(p.AuthorID)))
			continue
		}
		out = append(out, model.FeedPost{
			Post:    p,
			Author:  *author,
			IsLiked: likes[resolve.Key(p.ID)],
		})
	}
	return out, nil
}

// resolveAuthors fills one chunk of author ids, consulting the cache
// before the backend. Each id settles on its own: a failed lookup is
// logged and left absent, never failing the ids around it.
func (e *Engine) resolveAuthors(ctx context.Context, ids []model.UserID) (map[model.UserID]*model.Profile, error) {
	out := make(map[model.UserID]*model.Profile, len(ids))
	for _, id := range ids {
		if ctx.Err() != nil {
			return out, ctx.Err()
		}
		if e.cache != nil {
			if p, err := e.cache.Get(ctx, id); err == nil {
				out[id] = p
				continue
			}
		}
		p, err := e.gateway.GetUserProfile(ctx, id)
		if err != nil {
			e.logger.WarnContext(ctx, "author lookup failed",
				slog.String("user_id", string(id)),
				slog.String("error", err.Error()))
			continue
		}
		out[id] = p
		if e.cache != nil {
			if err := e.cache.Put(ctx, p); err != nil {
				e.logger.WarnContext(ctx, "profile cache write failed",
					slog.String("user_id", string(id)),
					slog.String("error", err.Error()))
			}
		}
	}
	return out, nil
}

// resolveLikes settles per post id as well; a failed status check is
// left absent and the join degrades it to "not liked".
func (e *Engine) resolveLikes(ctx context.Context, ids []model.PostID) (map[model.PostID]bool, error) {
	out := make(map[model.PostID]bool, len(ids))
	for _, id := range ids {
		if ctx.Err() != nil {
			return out, ctx.Err()
		}
		liked, err := e.gateway.IsPostLiked(ctx, id)
		if err != nil {
			e.logger.WarnContext(ctx, "like status lookup failed",
				slog.Uint64("post_id", uint64(id)),
				slog.String("error", err.Error()))
			continue
		}
		out[id] = liked
	}
	return out, nil
}

// CreatePost validates, rate-limits, and submits a new post.
func (e *Engine) CreatePost(ctx context.Context, sess Session, content string, visibility model.PostVisibility) (model.PostID, error) {
	if sess == nil || !sess.Authenticated() {
		return 0, apperror.AuthRequired()
	}
	if err := guard.ValidateContent(content); err != nil {
		return 0, err
	}
	if err := e.limiter.Check("createPost"); err != nil {
		return 0, err
	}
	if visibility == "" {
		visibility = model.VisibilityPublic
	}
	return e.gateway.CreatePost(ctx, content, visibility)
}

// AddComment validates, rate-limits, and submits a comment.
func (e *Engine) AddComment(ctx context.Context, sess Session, postID model.PostID, content string) (model.CommentID, error) {
	if sess == nil || !sess.Authenticated() {
		return 0, apperror.AuthRequired()
	}
	if postID == 0 {
		return 0, apperror.InvalidPostID("0")
	}
	if err := guard.ValidateComment(content); err != nil {
		return 0, err
	}
	if err := e.limiter.Check("addComment"); err != nil {
		return 0, err
	}
	return e.gateway.AddComment(ctx, postID, content)
}

// GetPostComments lists a post's comments. Public posts are readable
// without a session, so no auth check here.
func (e *Engine) GetPostComments(ctx context.Context, postID model.PostID) ([]model.Comment, error) {
	if postID == 0 {
		return nil, apperror.InvalidPostID("0")
	}
	return e.gateway.GetPostComments(ctx, postID)
}
