package model

import "time"

// UserType is the role a user takes when joining an event.
type UserType string

const (
	UserTypeRunner      UserType = "RUNNER"
	UserTypeVisitor     UserType = "VISITOR"
	UserTypeParticipant UserType = "PARTICIPANT"
)

// UserTypes lists every participation role.
var UserTypes = []UserType{UserTypeRunner, UserTypeVisitor, UserTypeParticipant}

// Participation records that a user joined an event.
// Only runners verify a finish; FinishedAt is set once IsFinished is.
type Participation struct {
	ID         string     `json:"id"`
	UserID     string     `json:"user_id"`
	EventID    string     `json:"event_id"`
	UserType   UserType   `json:"user_type"`
	IsFinished bool       `json:"is_finished"`
	FinishedAt *time.Time `json:"finished_at,omitempty"`
	JoinedAt   time.Time  `json:"joined_at"`
}

// JoinEventRequest is the DTO for POST /api/events/:id/join.
type JoinEventRequest struct {
	UserType UserType `json:"user_type" validate:"required,usertype"`
}

// FinishRequest is the DTO for POST /api/events/:id/finish.
type FinishRequest struct {
	FinishCode string `json:"finish_code" validate:"required,notblank,max=64"`
}

// EventProgress counts what a user has done in an event.
type EventProgress struct {
	VisitedPosts  int
	TotalPosts    int
	ActiveCoupons int
	Stamps        int
}

// MyEventStatus is a user's view of their participation in one event.
type MyEventStatus struct {
	EventID      string     `json:"event_id"`
	UserType     UserType   `json:"user_type"`
	JoinedAt     time.Time  `json:"joined_at"`
	VisitedPosts int        `json:"visited_posts"`
	TotalPosts   int        `json:"total_posts"`
	CouponsCount int        `json:"coupons_count"`
	StampsCount  int        `json:"stamps_count"`
	IsFinished   bool       `json:"is_finished"`
	FinishedAt   *time.Time `json:"finished_at,omitempty"`
	Rewards      []Reward   `json:"rewards"`
}

// FinishResult is returned after a runner's finish is verified.
type FinishResult struct {
	EventID    string    `json:"event_id"`
	Verified   bool      `json:"verified"`
	FinishedAt time.Time `json:"finished_at"`
}

// PostMerchant is the merchant shown next to a post on the map.
type PostMerchant struct {
	ID       string   `json:"id"`
	Name     string   `json:"name"`
	Category Category `json:"category"`
}

// PostListing is a post of an event as seen by one user.
type PostListing struct {
	ID           string        `json:"id"`
	Name         string        `json:"name"`
	IsRewardPost bool          `json:"is_reward_post"`
	Merchant     *PostMerchant `json:"merchant,omitempty"`
	Visited      bool          `json:"is_visited"`
}

// PostFilter narrows an event's post listing.
type PostFilter struct {
	Category Category `query:"category" validate:"omitempty,category"`
	Visited  *bool    `query:"-"`
}

// JoinResult is returned when a user joins an event.
type JoinResult struct {
	ParticipationID string    `json:"participation_id"`
	Event           *Event    `json:"event"`
	UserType        UserType  `json:"user_type"`
	JoinedAt        time.Time `json:"joined_at"`
}
