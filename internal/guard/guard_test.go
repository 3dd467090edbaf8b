package guard

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/chymezy/decentra-client/internal/apperror"
)

func TestValidateContent(t *testing.T) {
	tests := []struct {
		name     string
		content  string
		wantErr  error
		wantKind apperror.Kind
	}{
		{name: "ok", content: "hello world"},
		{name: "empty", content: "", wantErr: apperror.ErrValidation, wantKind: apperror.KindContentEmpty},
		{name: "whitespace only", content: "   \n\t ", wantErr: apperror.ErrValidation, wantKind: apperror.KindContentEmpty},
		{name: "exactly at limit", content: strings.Repeat("a", MaxPostContent)},
		{name: "one over limit", content: strings.Repeat("a", MaxPostContent+1), wantErr: apperror.ErrValidation, wantKind: apperror.KindContentTooLong},
		{name: "script tag", content: "hi <script>alert(1)</script>", wantErr: apperror.ErrValidation, wantKind: apperror.KindContentSecurity},
		{name: "script tag mixed case", content: "hi <SCRipt>x", wantErr: apperror.ErrValidation, wantKind: apperror.KindContentSecurity},
		{name: "javascript protocol", content: "click javascript:doEvil()", wantErr: apperror.ErrValidation, wantKind: apperror.KindContentSecurity},
		{name: "event handler", content: `<img onerror=steal()>`, wantErr: apperror.ErrValidation, wantKind: apperror.KindContentSecurity},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateContent(tt.content)
			if tt.wantErr == nil {
				if err != nil {
					t.Fatalf("ValidateContent() = %v, want nil", err)
				}
				return
			}
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("ValidateContent() = %v, want errors.Is %v", err, tt.wantErr)
			}
			if got := apperror.KindOf(err); got != tt.wantKind {
				t.Fatalf("KindOf() = %q, want %q", got, tt.wantKind)
			}
		})
	}
}

func TestValidateComment(t *testing.T) {
	if err := ValidateComment(strings.Repeat("b", MaxCommentContent)); err != nil {
		t.Fatalf("comment at limit: %v", err)
	}
	err := ValidateComment(strings.Repeat("b", MaxCommentContent+1))
	if apperror.KindOf(err) != apperror.KindContentTooLong {
		t.Fatalf("comment over limit: got %v", err)
	}
	if err := ValidateComment(" "); !errors.Is(err, apperror.ErrValidation) {
		t.Fatalf("blank comment: got %v", err)
	}
}

func TestValidateUsername(t *testing.T) {
	valid := []string{"abc", "user_name", "user-name", "Alice42", strings.Repeat("x", MaxUsernameLength)}
	for _, u := range valid {
		if err := ValidateUsername(u); err != nil {
			t.Errorf("ValidateUsername(%q) = %v, want nil", u, err)
		}
	}

	invalid := []struct {
		name     string
		username string
	}{
		{"too short", "ab"},
		{"too long", strings.Repeat("x", MaxUsernameLength+1)},
		{"bad character", "user name"},
		{"bad symbol", "user@home"},
		{"leading underscore", "_user"},
		{"trailing hyphen", "user-"},
		{"consecutive separators", "user__name"},
		{"mixed consecutive separators", "user-_name"},
		{"reserved", "admin"},
		{"reserved mixed case", "Moderator"},
	}
	for _, tt := range invalid {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateUsername(tt.username)
			if !errors.Is(err, apperror.ErrValidation) {
				t.Fatalf("ValidateUsername(%q) = %v, want validation error", tt.username, err)
			}
			var appErr *apperror.AppError
			if !errors.As(err, &appErr) || appErr.Field != "username" {
				t.Fatalf("ValidateUsername(%q): field = %v, want username", tt.username, err)
			}
		})
	}
}

func TestValidateAvatar(t *testing.T) {
	tests := []struct {
		name   string
		avatar string
		ok     bool
	}{
		{"emoji", "🙂", true},
		{"empty", "", true},
		{"allowed domain", "https://i.imgur.com/abc.png", true},
		{"allowed subdomain", "https://avatars.githubusercontent.com/u/1", true},
		{"plain http", "http://imgur.com/abc.png", false},
		{"unknown domain", "https://evil.example.com/a.png", false},
		{"lookalike domain", "https://imgur.com.evil.net/a.png", false},
		{"too long", "https://imgur.com/" + strings.Repeat("a", MaxAvatarLength), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateAvatar(tt.avatar)
			if tt.ok && err != nil {
				t.Fatalf("ValidateAvatar(%q) = %v, want nil", tt.avatar, err)
			}
			if !tt.ok && err == nil {
				t.Fatalf("ValidateAvatar(%q) = nil, want error", tt.avatar)
			}
		})
	}
}

func TestValidateBio(t *testing.T) {
	if err := ValidateBio(strings.Repeat("c", MaxBioLength)); err != nil {
		t.Fatalf("bio at limit: %v", err)
	}
	if err := ValidateBio(strings.Repeat("c", MaxBioLength+1)); err == nil {
		t.Fatal("bio over limit: want error")
	}
	if err := ValidateBio("my site javascript:alert(1)"); apperror.KindOf(err) != apperror.KindContentSecurity {
		t.Fatalf("bio with script marker: got %v", err)
	}
}

func TestValidatePagination(t *testing.T) {
	tests := []struct {
		name           string
		offset, limit  int
		wantOff, wantL int
	}{
		{"defaults", 0, 0, 0, DefaultFeedLimit},
		{"negative limit", 5, -3, 5, DefaultFeedLimit},
		{"limit clamped", 0, 500, 0, MaxFeedLimit},
		{"negative offset", -10, 20, 0, 20},
		{"offset clamped", MaxOffset + 1, 20, MaxOffset, 20},
		{"passthrough", 30, 25, 30, 25},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ValidatePagination(tt.offset, tt.limit)
			if got.Offset != tt.wantOff || got.Limit != tt.wantL {
				t.Fatalf("ValidatePagination(%d, %d) = %+v, want {%d %d}",
					tt.offset, tt.limit, got, tt.wantOff, tt.wantL)
			}
		})
	}
}

func TestRateLimiterWindow(t *testing.T) {
	clock := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	rl := NewRateLimiter(time.Second)
	rl.now = func() time.Time { return clock }

	if err := rl.Check("likePost"); err != nil {
		t.Fatalf("first check: %v", err)
	}

	clock = clock.Add(400 * time.Millisecond)
	err := rl.Check("likePost")
	if !errors.Is(err, apperror.ErrRateLimited) {
		t.Fatalf("second check within window: got %v, want rate-limit error", err)
	}

	// An op under a different name is unaffected.
	if err := rl.Check("followUser"); err != nil {
		t.Fatalf("unrelated op: %v", err)
	}

	// The rejected call must not have refreshed the timestamp.
	clock = clock.Add(700 * time.Millisecond)
	if err := rl.Check("likePost"); err != nil {
		t.Fatalf("check after window elapsed: %v", err)
	}
}
