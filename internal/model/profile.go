package model

// VerificationStatus indicates what kind of identity verification, if any,
// the backend has recorded for an account.
type VerificationStatus string

const (
	VerificationUnverified    VerificationStatus = "unverified"
	VerificationVerified      VerificationStatus = "verified"
	VerificationOrganization  VerificationStatus = "organization"
	VerificationJournalist    VerificationStatus = "journalist"
	VerificationWhistleblower VerificationStatus = "whistleblower"
)

// ProfileVisibility controls who can view a profile. Follow requests are
// only relevant for profiles with a non-public visibility setting.
type ProfileVisibility string

const (
	ProfilePublic        ProfileVisibility = "public"
	ProfileFollowersOnly ProfileVisibility = "followers_only"
	ProfilePrivate       ProfileVisibility = "private"
)

// Profile is a user profile as the backend reports it. The backend owns
// this data; the client holds at most a read-through cache populated on
// demand and is never authoritative.
type Profile struct {
	ID                 UserID             `json:"id"`
	Username           string             `json:"username"`
	Bio                string             `json:"bio"`
	Avatar             string             `json:"avatar"`
	FollowerCount      uint64             `json:"followerCount"`
	FollowingCount     uint64             `json:"followingCount"`
	PostCount          uint64             `json:"postCount"`
	CreatedAt          Nanos              `json:"createdAt"`
	Visibility         ProfileVisibility  `json:"visibility"`
	VerificationStatus VerificationStatus `json:"verificationStatus"`
}

// PlatformStats is the backend's platform-wide counters.
type PlatformStats struct {
	TotalUsers    uint64 `json:"totalUsers"`
	TotalPosts    uint64 `json:"totalPosts"`
	TotalLikes    uint64 `json:"totalLikes"`
	TotalComments uint64 `json:"totalComments"`
}
