// Package apperror defines the tagged error taxonomy shared by every layer
// of the client. Expected failure paths (auth required, validation, rate
// limits, remote-call failures) travel as values of this package — never as
// panics or untyped errors — so callers can branch with errors.Is/As and
// the HTTP layer can map each kind to a status code.
package apperror

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// Sentinel classes. These group kinds into the coarse categories callers
// actually branch on; errors.Is against one of these matches every kind in
// its class.
var (
	ErrAuthRequired = errors.New("authentication required")
	ErrRateLimited  = errors.New("rate limit exceeded")
	ErrValidation   = errors.New("validation error")
	ErrNotFound     = errors.New("not found")
	ErrRemote       = errors.New("remote call failed")
	ErrTimeout      = errors.New("remote call timed out")
	ErrPending      = errors.New("operation already in progress")
)

// Kind is the machine-readable tag attached to every AppError. It is what
// the UI switches on and what error responses carry in their "error" field.
type Kind string

const (
	KindAuthRequired     Kind = "auth_required"
	KindProfileRequired  Kind = "profile_required"
	KindRateLimited      Kind = "rate_limit_exceeded"
	KindContentEmpty     Kind = "content_empty"
	KindContentTooLong   Kind = "content_too_long"
	KindContentSecurity  Kind = "content_security_violation"
	KindValidation       Kind = "validation_error"
	KindInvalidPostID    Kind = "invalid_post_id"
	KindInvalidUserID    Kind = "invalid_user_id"
	KindNotFound         Kind = "not_found"
	KindFeedFetchFailed  Kind = "feed_fetch_failed"
	KindPostFailed       Kind = "post_creation_failed"
	KindFollowFailed     Kind = "follow_failed"
	KindUnfollowFailed   Kind = "unfollow_failed"
	KindLikeFailed       Kind = "like_failed"
	KindUnlikeFailed     Kind = "unlike_failed"
	KindCommentFailed    Kind = "comment_creation_failed"
	KindProfileFailed    Kind = "profile_operation_failed"
	KindTimeout          Kind = "timeout"
	KindOperationPending Kind = "operation_pending"
	KindUnknown          Kind = "unknown_error"
)

// AppError carries a sentinel class (for errors.Is), a kind tag, and a
// human-readable message. The message for remote failures is the backend's
// own text, passed through as untrusted display text.
type AppError struct {
	Err     error  // sentinel class
	Kind    Kind   // machine-readable tag
	Message string // human-readable message
	Field   string // optional: input field causing a validation error
}

func (e *AppError) Error() string {
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// KindOf extracts the kind tag from any error in a chain. Errors that are
// not AppErrors report KindUnknown.
func KindOf(err error) Kind {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Kind
	}
	return KindUnknown
}

// AuthRequired means the operation needs an authenticated identity. The UI
// routes the user toward login rather than showing a dead-end message.
func AuthRequired() *AppError {
	return &AppError{
		Err:     ErrAuthRequired,
		Kind:    KindAuthRequired,
		Message: "Authentication required. Please log in.",
	}
}

// ProfileRequired means the identity is live but has not registered a
// profile yet; the operation needs one. The UI routes the user toward
// registration.
func ProfileRequired() *AppError {
	return &AppError{
		Err:     ErrAuthRequired,
		Kind:    KindProfileRequired,
		Message: "Complete your profile to continue.",
	}
}

// RateLimited means an operation was repeated inside its throttle window.
func RateLimited(operation string, retryAfter time.Duration) *AppError {
	return &AppError{
		Err:     ErrRateLimited,
		Kind:    KindRateLimited,
		Message: fmt.Sprintf("Too many %s requests. Try again in %v.", operation, retryAfter.Round(time.Millisecond)),
	}
}

// ContentEmpty rejects empty or whitespace-only input.
func ContentEmpty(field string) *AppError {
	return &AppError{
		Err:     ErrValidation,
		Kind:    KindContentEmpty,
		Message: "Content cannot be empty",
		Field:   field,
	}
}

// ContentTooLong rejects input over its length ceiling.
func ContentTooLong(field string, max, actual int) *AppError {
	return &AppError{
		Err:     ErrValidation,
		Kind:    KindContentTooLong,
		Message: fmt.Sprintf("Content too long: %d characters (max: %d)", actual, max),
		Field:   field,
	}
}

// SecurityViolation rejects input matching a dangerous pattern. This is an
// early UI-level deterrent, not a substitute for server-side sanitization.
func SecurityViolation(field string) *AppError {
	return &AppError{
		Err:     ErrValidation,
		Kind:    KindContentSecurity,
		Message: "Content contains potentially harmful material",
		Field:   field,
	}
}

// ValidationFailed is the generic validation error for rules that don't
// have a dedicated kind (username format, bio length, avatar domain).
func ValidationFailed(field, message string) *AppError {
	return &AppError{
		Err:     ErrValidation,
		Kind:    KindValidation,
		Message: message,
		Field:   field,
	}
}

// InvalidPostID rejects a malformed post identifier before any remote call.
func InvalidPostID(raw string) *AppError {
	return &AppError{
		Err:     ErrValidation,
		Kind:    KindInvalidPostID,
		Message: fmt.Sprintf("Invalid post id: %q", raw),
		Field:   "postId",
	}
}

// InvalidUserID rejects a malformed user identifier before any remote call.
func InvalidUserID(raw string) *AppError {
	return &AppError{
		Err:     ErrValidation,
		Kind:    KindInvalidUserID,
		Message: fmt.Sprintf("Invalid user id: %q", raw),
		Field:   "userId",
	}
}

// NotFound reports a missing resource. For profiles this is frequently not
// an error at all — a first-time identity has no profile yet — so callers
// check errors.Is(err, ErrNotFound) and decide.
func NotFound(resource, id string) *AppError {
	return &AppError{
		Err:     ErrNotFound,
		Kind:    KindNotFound,
		Message: fmt.Sprintf("%s not found with id %s", resource, id),
	}
}

// RemoteFailed wraps a backend-reported failure under the given kind,
// preserving the backend's message as display text.
func RemoteFailed(kind Kind, message string) *AppError {
	if message == "" {
		message = "The server reported an error"
	}
	return &AppError{
		Err:     ErrRemote,
		Kind:    kind,
		Message: message,
	}
}

// Timeout reports a remote call that exceeded its deadline. Optimistic
// state must be reverted when this is returned.
func Timeout(operation string) *AppError {
	return &AppError{
		Err:     ErrTimeout,
		Kind:    KindTimeout,
		Message: fmt.Sprintf("The %s request timed out. Please try again.", operation),
	}
}

// Pending rejects a second toggle on a target whose first toggle has not
// settled yet.
func Pending(target string) *AppError {
	return &AppError{
		Err:     ErrPending,
		Kind:    KindOperationPending,
		Message: fmt.Sprintf("An action on %s is still in progress", target),
	}
}

// duplicateMarkers are the backend's duplicate-state failure messages.
// They mean the local assumption about current state was already stale:
// the action had (or had not) already happened server-side.
var duplicateMarkers = []string{
	"already liked",
	"already following",
	"haven't liked",
	"not following",
}

// IsDuplicateAction reports whether an error is a backend duplicate-state
// rejection. Callers resynchronize silently instead of rolling back.
func IsDuplicateAction(err error) bool {
	if err == nil {
		return false
	}
	msg := strings.ToLower(err.Error())
	for _, marker := range duplicateMarkers {
		if strings.Contains(msg, marker) {
			return true
		}
	}
	return false
}
