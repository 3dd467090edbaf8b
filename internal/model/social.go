package model

// FollowRequestStatus is the lifecycle state of a follow request.
type FollowRequestStatus string

const (
	FollowRequestPending  FollowRequestStatus = "pending"
	FollowRequestApproved FollowRequestStatus = "approved"
	FollowRequestRejected FollowRequestStatus = "rejected"
)

// FollowRequest is a pending (or settled) request to follow a profile
// whose visibility is not public.
type FollowRequest struct {
	ID          FollowRequestID     `json:"id"`
	RequesterID UserID              `json:"requesterId"`
	TargetID    UserID              `json:"targetId"`
	Status      FollowRequestStatus `json:"status"`
	CreatedAt   Nanos               `json:"createdAt"`
}
