// Package remote defines the gateway to the backend. Everything above
// this layer speaks typed Go; everything below it is wire format.
package remote

import (
	"context"

	"github.com/chymezy/decentra-client/internal/model"
)

// Gateway is the full backend surface the client depends on. Every call
// takes a context; implementations must honor its deadline and report
// expiry as a timeout error.
type Gateway interface {
	// Posts and feeds. The user feed returns raw posts that the feed
	// engine joins with authors client-side; the social feed comes back
	// already joined by the backend.
	CreatePost(ctx context.Context, content string, visibility model.PostVisibility) (model.PostID, error)
	GetPost(ctx context.Context, id model.PostID) (*model.Post, error)
	GetUserPosts(ctx context.Context, userID model.UserID, offset, limit int) ([]model.Post, error)
	GetUserFeed(ctx context.Context, offset, limit int) ([]model.Post, error)
	GetSocialFeed(ctx context.Context, offset, limit int) ([]model.FeedPost, error)

	// Likes.
	LikePost(ctx context.Context, id model.PostID) error
	UnlikePost(ctx context.Context, id model.PostID) error
	IsPostLiked(ctx context.Context, id model.PostID) (bool, error)

	// Follow graph.
	FollowUser(ctx context.Context, id model.UserID) error
	UnfollowUser(ctx context.Context, id model.UserID) error
	IsFollowing(ctx context.Context, id model.UserID) (bool, error)
	GetFollowers(ctx context.Context, id model.UserID, offset, limit int) ([]model.Profile, error)
	GetFollowing(ctx context.Context, id model.UserID, offset, limit int) ([]model.Profile, error)
	GetPendingFollowRequests(ctx context.Context) ([]model.FollowRequest, error)
	ApproveFollowRequest(ctx context.Context, id model.FollowRequestID) error
	RejectFollowRequest(ctx context.Context, id model.FollowRequestID) error

	// Profiles.
	GetMyProfile(ctx context.Context) (*model.Profile, error)
	GetUserProfile(ctx context.Context, id model.UserID) (*model.Profile, error)
	CreateUserProfile(ctx context.Context, username, bio, avatar string) (*model.Profile, error)
	UpdateUserProfile(ctx context.Context, username, bio, avatar string) (*model.Profile, error)
	CheckUsernameAvailability(ctx context.Context, username string) (bool, error)

	// Comments.
	AddComment(ctx context.Context, postID model.PostID, content string) (model.CommentID, error)
	GetPostComments(ctx context.Context, postID model.PostID) ([]model.Comment, error)

	// Platform.
	GetPlatformStats(ctx context.Context) (*model.PlatformStats, error)
	HealthCheck(ctx context.Context) error
}
