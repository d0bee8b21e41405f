package model

import "time"

// RewardTier names a stamp threshold.
type RewardTier string

const (
	RewardTier3  RewardTier = "TIER_3"
	RewardTier5  RewardTier = "TIER_5"
	RewardTier10 RewardTier = "TIER_10"
)

// RewardStatus only moves forward: AVAILABLE -> REDEEMED.
type RewardStatus string

const (
	RewardStatusAvailable RewardStatus = "AVAILABLE"
	RewardStatusRedeemed  RewardStatus = "REDEEMED"
)

// RewardTemplate is the inventory a tier draws from.
type RewardTemplate struct {
	ID                string     `json:"id"`
	EventID           string     `json:"event_id"`
	Name              string     `json:"name"`
	Tier              RewardTier `json:"tier"`
	RequiredStamps    int        `json:"required_stamps"`
	TotalQuantity     int        `json:"total_quantity"`
	RemainingQuantity int        `json:"remaining_quantity"`
	IsActive          bool       `json:"is_active"`
}

// Reward is a claimed tier, redeemable once at a reward post.
type Reward struct {
	ID           string       `json:"id"`
	UserID       string       `json:"user_id"`
	EventID      string       `json:"event_id"`
	TemplateID   string       `json:"template_id"`
	TemplateName string       `json:"name,omitempty"`
	Tier         RewardTier   `json:"tier"`
	Code         string       `json:"code"`
	Status       RewardStatus `json:"status"`
	RedeemPostID *string      `json:"redeem_post_id,omitempty"`
	RedeemedAt   *time.Time   `json:"redeemed_at,omitempty"`
	CreatedAt    time.Time    `json:"created_at"`
}

// RewardRedemption is returned after a reward is redeemed.
type RewardRedemption struct {
	RewardID   string    `json:"reward_id"`
	PostID     string    `json:"post_id"`
	RedeemedAt time.Time `json:"redeemed_at"`
}

// NextReward describes the closest tier a user has not reached yet.
type NextReward struct {
	Tier           RewardTier `json:"tier"`
	Name           string     `json:"name"`
	RequiredStamps int        `json:"required_stamps"`
	Remaining      int        `json:"remaining"`
}

// StampStatus summarises a user's progress in an event.
type StampStatus struct {
	EventID    string           `json:"event_id"`
	Total      int              `json:"total_stamps"`
	Stamps     []Stamp          `json:"stamps"`
	NextReward *NextReward      `json:"next_reward"`
	Claimable  []RewardTemplate `json:"claimable_rewards"`
}

// RedeemRewardRequest is the DTO for POST /api/rewards/:id/redeem.
type RedeemRewardRequest struct {
	PostID string `json:"post_id" validate:"required,uuid"`
}
