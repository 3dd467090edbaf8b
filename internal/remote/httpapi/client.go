// Package httpapi implements the remote gateway over the backend's
// JSON-RPC-style HTTP surface: one POST per method, an Ok/Err envelope
// per response.
package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/chymezy/decentra-client/internal/apperror"
	"github.com/chymezy/decentra-client/internal/model"
	"github.com/chymezy/decentra-client/internal/remote"
)

// DefaultCallTimeout bounds every backend call. The backend's own upper
// bound is higher; we give up earlier so the UI can show a retry path.
const DefaultCallTimeout = 15 * time.Second

const identityHeader = "X-Identity"

// Client talks to the backend over HTTP. It is safe for concurrent use.
type Client struct {
	base    string
	http    *http.Client
	timeout time.Duration
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient substitutes the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

// WithCallTimeout overrides the per-call deadline.
func WithCallTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.timeout = d
		}
	}
}

// New returns a Client for the backend at base, e.g. "https://api.decentra.network".
func New(base string, opts ...Option) *Client {
	c := &Client{
		base:    base,
		http:    &http.Client{},
		timeout: DefaultCallTimeout,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

var _ remote.Gateway = (*Client)(nil)

// envelope is the backend's uniform response shape: exactly one of Ok
// or Err is set.
type envelope struct {
	Ok  json.RawMessage `json:"ok,omitempty"`
	Err string          `json:"err,omitempty"`
}

// call performs one method invocation. Failures surface as kind-tagged
// errors; backend-reported messages are preserved verbatim so duplicate
// state detection upstream keeps working.
func (c *Client) call(ctx context.Context, method string, kind apperror.Kind, args, out any) error {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	if args == nil {
		args = struct{}{}
	}
	body, err := json.Marshal(args)
	if err != nil {
		return fmt.Errorf("httpapi: marshal %s args: %w", method, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.base+"/rpc/"+method, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("httpapi: build %s request: %w", method, err)
	}
	req.Header.Set("Content-Type", "application/json")
	if token, ok := remote.IdentityFromContext(ctx); ok {
		req.Header.Set(identityHeader, token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) || ctx.Err() != nil {
			return apperror.Timeout(method)
		}
		return apperror.RemoteFailed(kind, err.Error())
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 10<<20))
	if err != nil {
		return apperror.RemoteFailed(kind, err.Error())
	}

	var env envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return apperror.RemoteFailed(kind, fmt.Sprintf("malformed response (status %d)", resp.StatusCode))
	}
	if env.Err != "" {
		return apperror.RemoteFailed(kind, env.Err)
	}
	if resp.StatusCode != http.StatusOK {
		return apperror.RemoteFailed(kind, resp.Status)
	}

	if out != nil {
		if err := json.Unmarshal(env.Ok, out); err != nil {
			return apperror.RemoteFailed(kind, "malformed response payload")
		}
	}
	return nil
}

type postArgs struct {
	Content    string               `json:"content"`
	Visibility model.PostVisibility `json:"visibility"`
}

func (c *Client) CreatePost(ctx context.Context, content string, visibility model.PostVisibility) (model.PostID, error) {
	var id model.PostID
	err := c.call(ctx, "create_post", apperror.KindPostFailed, postArgs{Content: content, Visibility: visibility}, &id)
	return id, err
}

func (c *Client) GetPost(ctx context.Context, id model.PostID) (*model.Post, error) {
	var post *model.Post
	err := c.call(ctx, "get_post", apperror.KindFeedFetchFailed, postIDArgs{PostID: id}, &post)
	if err != nil {
		return nil, err
	}
	if post == nil {
		return nil, apperror.NotFound("post", fmt.Sprintf("%d", id))
	}
	return post, nil
}

func (c *Client) GetUserPosts(ctx context.Context, userID model.UserID, offset, limit int) ([]model.Post, error) {
	var posts []model.Post
	err := c.call(ctx, "get_user_posts", apperror.KindFeedFetchFailed, connectionArgs{UserID: userID, Offset: offset, Limit: limit}, &posts)
	return posts, err
}

type pageArgs struct {
	Offset int `json:"offset"`
	Limit  int `json:"limit"`
}

func (c *Client) GetUserFeed(ctx context.Context, offset, limit int) ([]model.Post, error) {
	var posts []model.Post
	err := c.call(ctx, "get_user_feed", apperror.KindFeedFetchFailed, pageArgs{Offset: offset, Limit: limit}, &posts)
	return posts, err
}

func (c *Client) GetSocialFeed(ctx context.Context, offset, limit int) ([]model.FeedPost, error) {
	var posts []model.FeedPost
	err := c.call(ctx, "get_social_feed", apperror.KindFeedFetchFailed, pageArgs{Offset: offset, Limit: limit}, &posts)
	return posts, err
}

type postIDArgs struct {
	PostID model.PostID `json:"post_id"`
}

func (c *Client) LikePost(ctx context.Context, id model.PostID) error {
	return c.call(ctx, "like_post", apperror.KindLikeFailed, postIDArgs{PostID: id}, nil)
}

func (c *Client) UnlikePost(ctx context.Context, id model.PostID) error {
	return c.call(ctx, "unlike_post", apperror.KindUnlikeFailed, postIDArgs{PostID: id}, nil)
}

func (c *Client) IsPostLiked(ctx context.Context, id model.PostID) (bool, error) {
	var liked bool
	err := c.call(ctx, "is_post_liked", apperror.KindUnknown, postIDArgs{PostID: id}, &liked)
	return liked, err
}

type userIDArgs struct {
	UserID model.UserID `json:"user_id"`
}

func (c *Client) FollowUser(ctx context.Context, id model.UserID) error {
	return c.call(ctx, "follow_user", apperror.KindFollowFailed, userIDArgs{UserID: id}, nil)
}

func (c *Client) UnfollowUser(ctx context.Context, id model.UserID) error {
	return c.call(ctx, "unfollow_user", apperror.KindUnfollowFailed, userIDArgs{UserID: id}, nil)
}

func (c *Client) IsFollowing(ctx context.Context, id model.UserID) (bool, error) {
	var following bool
	err := c.call(ctx, "is_following", apperror.KindUnknown, userIDArgs{UserID: id}, &following)
	return following, err
}

type connectionArgs struct {
	UserID model.UserID `json:"user_id"`
	Offset int          `json:"offset"`
	Limit  int          `json:"limit"`
}

func (c *Client) GetFollowers(ctx context.Context, id model.UserID, offset, limit int) ([]model.Profile, error) {
	var users []model.Profile
	err := c.call(ctx, "get_followers", apperror.KindUnknown, connectionArgs{UserID: id, Offset: offset, Limit: limit}, &users)
	return users, err
}

func (c *Client) GetFollowing(ctx context.Context, id model.UserID, offset, limit int) ([]model.Profile, error) {
	var users []model.Profile
	err := c.call(ctx, "get_following", apperror.KindUnknown, connectionArgs{UserID: id, Offset: offset, Limit: limit}, &users)
	return users, err
}

func (c *Client) GetPendingFollowRequests(ctx context.Context) ([]model.FollowRequest, error) {
	var reqs []model.FollowRequest
	err := c.call(ctx, "get_pending_follow_requests", apperror.KindUnknown, nil, &reqs)
	return reqs, err
}

type followRequestArgs struct {
	RequestID model.FollowRequestID `json:"request_id"`
}

func (c *Client) ApproveFollowRequest(ctx context.Context, id model.FollowRequestID) error {
	return c.call(ctx, "approve_follow_request", apperror.KindFollowFailed, followRequestArgs{RequestID: id}, nil)
}

func (c *Client) RejectFollowRequest(ctx context.Context, id model.FollowRequestID) error {
	return c.call(ctx, "reject_follow_request", apperror.KindFollowFailed, followRequestArgs{RequestID: id}, nil)
}

func (c *Client) GetMyProfile(ctx context.Context) (*model.Profile, error) {
	return c.profileCall(ctx, "get_my_profile", nil)
}

func (c *Client) GetUserProfile(ctx context.Context, id model.UserID) (*model.Profile, error) {
	return c.profileCall(ctx, "get_user_profile", userIDArgs{UserID: id})
}

type profileArgs struct {
	Username string `json:"username"`
	Bio      string `json:"bio,omitempty"`
	Avatar   string `json:"avatar,omitempty"`
}

func (c *Client) CreateUserProfile(ctx context.Context, username, bio, avatar string) (*model.Profile, error) {
	var p model.Profile
	err := c.call(ctx, "create_user_profile", apperror.KindProfileFailed,
		profileArgs{Username: username, Bio: bio, Avatar: avatar}, &p)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (c *Client) UpdateUserProfile(ctx context.Context, username, bio, avatar string) (*model.Profile, error) {
	var p model.Profile
	err := c.call(ctx, "update_user_profile", apperror.KindProfileFailed,
		profileArgs{Username: username, Bio: bio, Avatar: avatar}, &p)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

type usernameArgs struct {
	Username string `json:"username"`
}

func (c *Client) CheckUsernameAvailability(ctx context.Context, username string) (bool, error) {
	var available bool
	err := c.call(ctx, "check_username_availability", apperror.KindProfileFailed, usernameArgs{Username: username}, &available)
	return available, err
}

type commentArgs struct {
	PostID  model.PostID `json:"post_id"`
	Content string       `json:"content"`
}

func (c *Client) AddComment(ctx context.Context, postID model.PostID, content string) (model.CommentID, error) {
	var id model.CommentID
	err := c.call(ctx, "add_comment", apperror.KindCommentFailed, commentArgs{PostID: postID, Content: content}, &id)
	return id, err
}

func (c *Client) GetPostComments(ctx context.Context, postID model.PostID) ([]model.Comment, error) {
	var comments []model.Comment
	err := c.call(ctx, "get_post_comments", apperror.KindCommentFailed, postIDArgs{PostID: postID}, &comments)
	return comments, err
}

func (c *Client) GetPlatformStats(ctx context.Context) (*model.PlatformStats, error) {
	var stats model.PlatformStats
	if err := c.call(ctx, "get_platform_stats", apperror.KindUnknown, nil, &stats); err != nil {
		return nil, err
	}
	return &stats, nil
}

func (c *Client) HealthCheck(ctx context.Context) error {
	return c.call(ctx, "health_check", apperror.KindUnknown, nil, nil)
}

// profileCall shares the null-means-absent handling: the backend returns
// Ok(null) for a caller without a profile, which maps to ErrNotFound so
// callers can use errors.Is to tell absence from transport failure.
func (c *Client) profileCall(ctx context.Context, method string, args any) (*model.Profile, error) {
	var p *model.Profile
	if err := c.call(ctx, method, apperror.KindProfileFailed, args, &p); err != nil {
		return nil, err
	}
	if p == nil {
		return nil, apperror.NotFound("profile", "")
	}
	return p, nil
}
