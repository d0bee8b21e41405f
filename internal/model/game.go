package model

import "time"

// GameType is the minigame a client animates. It has no influence on the prize.
type GameType string

const (
	GameTypeRoulette GameType = "ROULETTE"
	GameTypeLadder   GameType = "LADDER"
	GameTypeCapsule  GameType = "CAPSULE"
	GameTypeCard     GameType = "CARD"
	GameTypeSlot     GameType = "SLOT"
)

// GameTypes lists every playable kind.
var GameTypes = []GameType{GameTypeRoulette, GameTypeLadder, GameTypeCapsule, GameTypeCard, GameTypeSlot}

// GameLog records that a visit's chance event has been consumed.
type GameLog struct {
	ID             string    `json:"id"`
	UserID         string    `json:"user_id"`
	EventID        string    `json:"event_id"`
	VisitID        string    `json:"visit_id"`
	GameType       GameType  `json:"game_type"`
	ResultCategory Category  `json:"result_category"`
	CouponID       string    `json:"coupon_id"`
	PlayedAt       time.Time `json:"played_at"`
}

// PlayGameRequest is the DTO for POST /api/games/:id/play.
type PlayGameRequest struct {
	GameType GameType `json:"game_type" validate:"required,gametype"`
}

// SelectCategoryRequest is the DTO for POST /api/games/:id/select-category.
// GameType is optional and recorded on the game log when present.
type SelectCategoryRequest struct {
	Category Category `json:"category" validate:"required,category"`
	GameType GameType `json:"game_type" validate:"omitempty,gametype"`
}
