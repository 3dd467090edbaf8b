package model

// PostVisibility controls who can see a post in feeds.
type PostVisibility string

const (
	// VisibilityPublic — anyone can view and interact.
	VisibilityPublic PostVisibility = "public"
	// VisibilityFollowersOnly — only the author's followers can view.
	VisibilityFollowersOnly PostVisibility = "followers_only"
	// VisibilityUnlisted — viewable with a direct link only, never in feeds.
	VisibilityUnlisted PostVisibility = "unlisted"
)

// Post is a raw post record as returned by the backend. Immutable once
// created, except for the aggregate counters the backend maintains as
// likes and comments arrive.
type Post struct {
	ID           PostID         `json:"id"`
	AuthorID     UserID         `json:"authorId"`
	Content      string         `json:"content"`
	Visibility   PostVisibility `json:"visibility"`
	LikeCount    uint64         `json:"likeCount"`
	CommentCount uint64         `json:"commentCount"`
	CreatedAt    Nanos          `json:"createdAt"`
}

// FeedPost is the denormalized view model the UI renders directly: a post
// joined with its author's profile and the viewer's like status. It is
// synthesized on every feed fetch and never persisted. Every FeedPost has
// a resolved Author — posts whose author cannot be resolved are dropped
// rather than shown with partial data.
type FeedPost struct {
	Post    Post    `json:"post"`
	Author  Profile `json:"author"`
	IsLiked bool    `json:"isLiked"`
}

// Comment is a comment on a post. Append-only from the client's view.
type Comment struct {
	ID        CommentID `json:"id"`
	PostID    PostID    `json:"postId"`
	AuthorID  UserID    `json:"authorId"`
	Content   string    `json:"content"`
	CreatedAt Nanos     `json:"createdAt"`
}
