package apperror

import (
	"errors"
	"fmt"
	"testing"
	"time"
)

func TestErrorsIs(t *testing.T) {
	tests := []struct {
		name      string
		err       error
		target    error
		wantMatch bool
	}{
		{
			name:      "AuthRequired wraps ErrAuthRequired",
			err:       AuthRequired(),
			target:    ErrAuthRequired,
			wantMatch: true,
		},
		{
			name:      "RateLimited wraps ErrRateLimited",
			err:       RateLimited("likePost", time.Second),
			target:    ErrRateLimited,
			wantMatch: true,
		},
		{
			name:      "ContentEmpty wraps ErrValidation",
			err:       ContentEmpty("content"),
			target:    ErrValidation,
			wantMatch: true,
		},
		{
			name:      "ContentTooLong wraps ErrValidation",
			err:       ContentTooLong("content", 10000, 10001),
			target:    ErrValidation,
			wantMatch: true,
		},
		{
			name:      "RemoteFailed wraps ErrRemote",
			err:       RemoteFailed(KindLikeFailed, "Post not found"),
			target:    ErrRemote,
			wantMatch: true,
		},
		{
			name:      "NotFound does NOT match ErrValidation",
			err:       NotFound("profile", "abc"),
			target:    ErrValidation,
			wantMatch: false,
		},
		{
			name:      "wrapped AppError still matches through fmt.Errorf",
			err:       fmt.Errorf("fetching feed: %w", AuthRequired()),
			target:    ErrAuthRequired,
			wantMatch: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := errors.Is(tt.err, tt.target)
			if got != tt.wantMatch {
				t.Errorf("errors.Is(%v, %v) = %v, want %v", tt.err, tt.target, got, tt.wantMatch)
			}
		})
	}
}

func TestKindOf(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want Kind
	}{
		{name: "auth required", err: AuthRequired(), want: KindAuthRequired},
		{name: "timeout", err: Timeout("likePost"), want: KindTimeout},
		{name: "remote kind preserved", err: RemoteFailed(KindFeedFetchFailed, "boom"), want: KindFeedFetchFailed},
		{name: "wrapped error keeps its kind", err: fmt.Errorf("ctx: %w", Pending("post 4")), want: KindOperationPending},
		{name: "plain error reports unknown", err: errors.New("plain"), want: KindUnknown},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := KindOf(tt.err); got != tt.want {
				t.Errorf("KindOf() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestRemoteFailedPreservesBackendMessage(t *testing.T) {
	err := RemoteFailed(KindFollowFailed, "User has blocked you")
	if err.Error() != "User has blocked you" {
		t.Errorf("Error() = %q, want backend message verbatim", err.Error())
	}

	empty := RemoteFailed(KindFollowFailed, "")
	if empty.Error() == "" {
		t.Error("RemoteFailed with empty message should substitute a fallback")
	}
}

func TestIsDuplicateAction(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{name: "already liked", err: RemoteFailed(KindLikeFailed, "Already liked this post"), want: true},
		{name: "already following", err: RemoteFailed(KindFollowFailed, "Already following this user"), want: true},
		{name: "have not liked", err: RemoteFailed(KindUnlikeFailed, "Haven't liked this post"), want: true},
		{name: "not following", err: RemoteFailed(KindUnfollowFailed, "Not following this user"), want: true},
		{name: "unrelated failure", err: RemoteFailed(KindLikeFailed, "Post not found"), want: false},
		{name: "nil error", err: nil, want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsDuplicateAction(tt.err); got != tt.want {
				t.Errorf("IsDuplicateAction(%v) = %v, want %v", tt.err, got, tt.want)
			}
		})
	}
}

func TestValidationFailedField(t *testing.T) {
	err := ValidationFailed("username", "username is reserved")

	if err.Field != "username" {
		t.Errorf("Field = %q, want %q", err.Field, "username")
	}
}
