// Package model defines the data structures shared across the client:
// profiles, posts, comments, follow requests, and the view models built
// from them. In Go, we use structs to represent our data — similar to
// classes in other languages, but without inheritance.
package model

import (
	"strconv"
	"time"
)

// UserID is the opaque actor identifier issued by the identity provider
// after authentication. The client never generates, parses, or persists
// these — it only carries them between the provider and the backend.
type UserID string

// String returns the textual form of the identifier, used as a map key
// when batching lookups.
func (id UserID) String() string { return string(id) }

// PostID identifies a post. The backend allocates these sequentially.
type PostID uint64

func (id PostID) String() string { return strconv.FormatUint(uint64(id), 10) }

// CommentID identifies a comment on a post.
type CommentID uint64

func (id CommentID) String() string { return strconv.FormatUint(uint64(id), 10) }

// FollowRequestID identifies a pending follow request.
type FollowRequestID uint64

func (id FollowRequestID) String() string { return strconv.FormatUint(uint64(id), 10) }

// Nanos is a backend timestamp: a 64-bit count of nanoseconds since the
// Unix epoch. The raw value routinely exceeds 2^53, so it must never pass
// through a float — all conversions below stay in integer arithmetic.
type Nanos int64

// Millis converts the timestamp to millisecond resolution for display
// and date arithmetic.
func (n Nanos) Millis() int64 { return int64(n) / 1_000_000 }

// Time converts the timestamp to a time.Time at millisecond resolution.
func (n Nanos) Time() time.Time { return time.UnixMilli(n.Millis()) }
