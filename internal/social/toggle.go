// Package social implements the optimistic like/follow toggles: the UI
// state flips immediately, the backend is told afterwards, and the flip
// is reverted if the backend disagrees.
package social

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/chymezy/decentra-client/internal/apperror"
	"github.com/chymezy/decentra-client/internal/guard"
	"github.com/chymezy/decentra-client/internal/model"
	"github.com/chymezy/decentra-client/internal/remote"
)

// Session is the slice of session state the toggler needs.
type Session interface {
	Authenticated() bool
	Profile() *model.Profile
}

// ToggleState is the caller-visible state of one like or follow toggle:
// whether it is active for the caller and the associated counter.
type ToggleState struct {
	Active bool   `json:"active"`
	Count  uint64 `json:"count"`
}

// Listener observes state transitions. It is called once with the
// optimistic state before the remote call and once more with the
// reverted state if the call fails.
type Listener func(ToggleState)

// Toggler runs like and follow toggles. One toggle per target may be in
// flight at a time; a second one is rejected rather than queued, since
// toggling twice quickly means "put it back" and the first call already
// races that intent.
type Toggler struct {
	gateway remote.Gateway
	limiter *guard.RateLimiter
	logger  *slog.Logger

	mu       sync.Mutex
	inflight map[string]struct{}
}

// NewToggler wires a toggler around the gateway.
func NewToggler(gateway remote.Gateway, limiter *guard.RateLimiter, logger *slog.Logger) *Toggler {
	if logger == nil {
		logger = slog.Default()
	}
	if limiter == nil {
		limiter = guard.NewRateLimiter(0)
	}
	return &Toggler{
		gateway:  gateway,
		limiter:  limiter,
		logger:   logger,
		inflight: make(map[string]struct{}),
	}
}

// ToggleLike flips the like state of a post. current is the state the
// caller is rendering; the returned state is what it should render
// after the call settles.
func (t *Toggler) ToggleLike(ctx context.Context, sess Session, postID model.PostID, current ToggleState, notify Listener) (ToggleState, error) {
	if sess == nil || !sess.Authenticated() {
		return current, apperror.AuthRequired()
	}
	if postID == 0 {
		return current, apperror.InvalidPostID("0")
	}

	target := fmt.Sprintf("like:%d", postID)
	release, err := t.acquire(target)
	if err != nil {
		return current, err
	}
	defer release()

	op, call := "likePost", t.gateway.LikePost
	if current.Active {
		op, call = "unlikePost", t.gateway.UnlikePost
	}
	if err := t.limiter.Check(op); err != nil {
		return current, err
	}

	return t.run(ctx, op, target, current, notify, func(ctx context.Context) error {
		return call(ctx, postID)
	})
}

// ToggleFollow flips the follow state of a user. Following yourself is a
// silent no-op: the state comes back unchanged with no error and no
// remote call.
func (t *Toggler) ToggleFollow(ctx context.Context, sess Session, userID model.UserID, current ToggleState, notify Listener) (ToggleState, error) {
	if sess == nil || !sess.Authenticated() {
		return current, apperror.AuthRequired()
	}
	if userID == "" {
		return current, apperror.InvalidUserID("")
	}
	if me := sess.Profile(); me != nil && me.ID == userID {
		return current, nil
	}

	target := fmt.Sprintf("follow:%s", userID)
	release, err := t.acquire(target)
	if err != nil {
		return current, err
	}
	defer release()

	op, call := "followUser", t.gateway.FollowUser
	if current.Active {
		op, call = "unfollowUser", t.gateway.UnfollowUser
	}
	if err := t.limiter.Check(op); err != nil {
		return current, err
	}

	return t.run(ctx, op, target, current, notify, func(ctx context.Context) error {
		return call(ctx, userID)
	})
}

// run executes the optimistic protocol: flip and notify, call the
// backend, and either commit, revert, or resync on a duplicate-state
// answer. Duplicate-state failures mean the rendered state was already
// stale, so the caller gets its own baseline back without an error and
// the next feed refresh supplies the truth.
func (t *Toggler) run(ctx context.Context, op, target string, current ToggleState, notify Listener, call func(ctx context.Context) error) (ToggleState, error) {
	optimistic := flip(current)
	emit(notify, optimistic)

	err := call(ctx)
	if err == nil {
		return optimistic, nil
	}

	emit(notify, current)
	if apperror.IsDuplicateAction(err) {
		t.logger.InfoContext(ctx, "toggle state was stale, resyncing",
			slog.String("op", op),
			slog.String("target", target))
		return current, nil
	}

	t.logger.WarnContext(ctx, "toggle reverted",
		slog.String("op", op),
		slog.String("target", target),
		slog.String("error", err.Error()))
	return current, err
}

// acquire marks target in flight, or fails if it already is. The
// returned release must be called once the toggle settles.
func (t *Toggler) acquire(target string) (func(), error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if _, busy := t.inflight[target]; busy {
		return nil, apperror.Pending(target)
	}
	t.inflight[target] = struct{}{}
	return func() {
		t.mu.Lock()
		delete(t.inflight, target)
		t.mu.Unlock()
	}, nil
}

func flip(s ToggleState) ToggleState {
	if s.Active {
		s.Active = false
		if s.Count > 0 {
			s.Count--
		}
		return s
	}
	s.Active = true
	s.Count++
	return s
}

func emit(notify Listener, s ToggleState) {
	if notify != nil {
		notify(s)
	}
}
