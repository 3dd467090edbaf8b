// Package guard holds the pure input checks that run before any remote
// call: content validation, username/bio/avatar rules, pagination
// clamping, and the per-operation rate limiter. Every rejection here is
// a fail-fast with zero network cost.
package guard

import (
	"net/url"
	"strings"
	"unicode"

	"github.com/chymezy/decentra-client/internal/apperror"
)

// Validation ceilings. These mirror the backend's own limits so the client
// rejects hopeless input without spending a round-trip.
const (
	MaxPostContent    = 10_000
	MaxCommentContent = 500
	MinUsernameLength = 3
	MaxUsernameLength = 50
	MaxBioLength      = 500
	MaxAvatarLength   = 200

	DefaultFeedLimit = 10
	MaxFeedLimit     = 50
	MaxOffset        = 10_000
)

// dangerousPatterns are substring markers for script injection attempts.
// Matching one rejects the input outright. This is a UI-level deterrent —
// the backend performs its own sanitization and is the real gatekeeper.
var dangerousPatterns = []string{
	"<script",
	"</script>",
	"javascript:",
	"onclick=",
	"onerror=",
	"onload=",
}

// reservedUsernames cannot be registered.
var reservedUsernames = map[string]struct{}{
	"admin": {}, "administrator": {}, "mod": {}, "moderator": {},
	"system": {}, "root": {}, "api": {}, "www": {}, "mail": {},
	"email": {}, "support": {}, "help": {}, "info": {}, "news": {},
	"blog": {}, "decentra": {}, "anonymous": {}, "null": {},
	"undefined": {}, "true": {}, "false": {}, "test": {}, "demo": {},
}

// avatarDomainAllowList are the hosts avatar URLs may point at.
var avatarDomainAllowList = []string{
	"imgur.com",
	"i.imgur.com",
	"github.com",
	"githubusercontent.com",
	"gravatar.com",
	"cloudinary.com",
	"unsplash.com",
	"pexels.com",
}

// ValidateContent checks post content: non-empty after trimming, at most
// MaxPostContent characters, free of script markers. Content of exactly
// MaxPostContent characters is accepted.
func ValidateContent(text string) error {
	if strings.TrimSpace(text) == "" {
		return apperror.ContentEmpty("content")
	}
	if len(text) > MaxPostContent {
		return apperror.ContentTooLong("content", MaxPostContent, len(text))
	}
	if containsDangerousPattern(text) {
		return apperror.SecurityViolation("content")
	}
	return nil
}

// ValidateComment checks comment content against its own, much lower,
// ceiling.
func ValidateComment(text string) error {
	if strings.TrimSpace(text) == "" {
		return apperror.ContentEmpty("comment")
	}
	if len(text) > MaxCommentContent {
		return apperror.ContentTooLong("comment", MaxCommentContent, len(text))
	}
	if containsDangerousPattern(text) {
		return apperror.SecurityViolation("comment")
	}
	return nil
}

// ValidateUsername enforces the registration rules: 3-50 characters,
// letters/digits/underscore/hyphen only, no leading/trailing separator,
// no consecutive separators, and nothing from the reserved list.
func ValidateUsername(username string) error {
	if len(username) < MinUsernameLength {
		return apperror.ValidationFailed("username", "Username must be at least 3 characters")
	}
	if len(username) > MaxUsernameLength {
		return apperror.ValidationFailed("username", "Username must be at most 50 characters")
	}

	for _, r := range username {
		if !unicode.IsLetter(r) && !unicode.IsDigit(r) && r != '_' && r != '-' {
			return apperror.ValidationFailed("username",
				"Username can only contain letters, numbers, underscores, and hyphens")
		}
	}

	if isSeparator(rune(username[0])) || isSeparator(rune(username[len(username)-1])) {
		return apperror.ValidationFailed("username",
			"Username cannot start or end with underscore or hyphen")
	}

	prevSeparator := false
	for _, r := range username {
		sep := isSeparator(r)
		if sep && prevSeparator {
			return apperror.ValidationFailed("username",
				"Username cannot have consecutive special characters")
		}
		prevSeparator = sep
	}

	if _, reserved := reservedUsernames[strings.ToLower(username)]; reserved {
		return apperror.ValidationFailed("username", "Username is reserved and cannot be used")
	}

	return nil
}

// ValidateBio checks an optional profile biography.
func ValidateBio(bio string) error {
	if len(bio) > MaxBioLength {
		return apperror.ContentTooLong("bio", MaxBioLength, len(bio))
	}
	if containsDangerousPattern(bio) {
		return apperror.SecurityViolation("bio")
	}
	return nil
}

// ValidateAvatar checks an avatar value, which is either a short emoji
// string or a URL. URLs must be HTTPS and point at an allow-listed domain.
func ValidateAvatar(avatar string) error {
	if len(avatar) > MaxAvatarLength {
		return apperror.ContentTooLong("avatar", MaxAvatarLength, len(avatar))
	}
	if containsDangerousPattern(avatar) {
		return apperror.SecurityViolation("avatar")
	}

	if strings.HasPrefix(avatar, "http://") {
		return apperror.ValidationFailed("avatar", "Avatar URL must use HTTPS")
	}
	if strings.HasPrefix(avatar, "https://") {
		u, err := url.Parse(avatar)
		if err != nil || u.Host == "" {
			return apperror.ValidationFailed("avatar", "Invalid avatar URL format")
		}
		if !isAllowedAvatarHost(u.Hostname()) {
			return apperror.ValidationFailed("avatar", "Avatar URL must be from a trusted domain")
		}
	}

	return nil
}

// Page is a validated pagination window. Every downstream call receives
// one of these, never raw caller input.
type Page struct {
	Offset int
	Limit  int
}

// ValidatePagination clamps offset into [0, MaxOffset] and limit into
// [1, MaxFeedLimit], substituting DefaultFeedLimit when the limit is zero
// or negative (i.e. unspecified).
func ValidatePagination(offset, limit int) Page {
	if offset < 0 {
		offset = 0
	}
	if offset > MaxOffset {
		offset = MaxOffset
	}

	if limit <= 0 {
		limit = DefaultFeedLimit
	}
	if limit > MaxFeedLimit {
		limit = MaxFeedLimit
	}

	return Page{Offset: offset, Limit: limit}
}

func containsDangerousPattern(text string) bool {
	lower := strings.ToLower(text)
	for _, pattern := range dangerousPatterns {
		if strings.Contains(lower, pattern) {
			return true
		}
	}
	return false
}

func isSeparator(r rune) bool {
	return r == '_' || r == '-'
}

func isAllowedAvatarHost(host string) bool {
	host = strings.ToLower(host)
	for _, domain := range avatarDomainAllowList {
		if host == domain || strings.HasSuffix(host, "."+domain) {
			return true
		}
	}
	return false
}
