package service

import "errors"

// Kind is a stable, machine-readable failure category. Handlers map it to HTTP status codes.
type Kind string

const (
	KindNotFound     Kind = "not_found"
	KindBadRequest   Kind = "bad_request"
	KindConflict     Kind = "conflict"
	KindForbidden    Kind = "forbidden"
	KindUnauthorized Kind = "unauthorized"
)

// Error is a business failure with a Kind and a message that is safe to show to clients.
type Error struct {
	Kind Kind
	Msg  string
}

func (e *Error) Error() string {
	return e.Msg
}

func newError(kind Kind, msg string) *Error {
	return &Error{Kind: kind, Msg: msg}
}

// KindOf returns the Kind of err, or "" when err is not a business failure.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return ""
}

var (
	// ErrInvalidRequest is returned when request data is invalid or incomplete
	ErrInvalidRequest = newError(KindBadRequest, "invalid request")

	// Visit ledger
	ErrPostNotFound    = newError(KindNotFound, "post not found")
	ErrEventNotFound   = newError(KindNotFound, "event not found")
	ErrPostInactive    = newError(KindBadRequest, "post is not active")
	ErrInvalidQRCode   = newError(KindBadRequest, "invalid qr code")
	ErrEventNotActive  = newError(KindBadRequest, "event is not active")
	ErrAlreadyVisited  = newError(KindConflict, "already visited this post")
	ErrStampDuplicated = newError(KindConflict, "stamp already collected for this post")

	// Participation
	ErrEventEnded      = newError(KindBadRequest, "event has ended")
	ErrAlreadyJoined   = newError(KindConflict, "already joined this event")
	ErrNotJoined       = newError(KindNotFound, "not participating in this event")
	ErrNotRunner       = newError(KindBadRequest, "only runners can verify finish")
	ErrAlreadyFinished = newError(KindConflict, "finish already verified")

	// Minigame and issuance
	ErrVisitNotFound     = newError(KindNotFound, "game session not found")
	ErrVisitNotOwned     = newError(KindForbidden, "not your game session")
	ErrGameAlreadyPlayed = newError(KindConflict, "game already played for this visit")
	ErrNoCategories      = newError(KindBadRequest, "no categories available")
	ErrPoolExhausted     = newError(KindBadRequest, "coupon pool exhausted for this category")
	ErrCouponPeriodEnded = newError(KindBadRequest, "coupon period for this event has ended")

	// ErrCodeCollision is returned when a generated redemption code is already taken.
	// It is not a business failure and surfaces as an internal error.
	ErrCodeCollision = errors.New("redemption code collision")

	// Coupon redemption
	ErrCouponNotFound      = newError(KindNotFound, "coupon not found")
	ErrCouponNotOwned      = newError(KindForbidden, "not your coupon")
	ErrCouponNotActive     = newError(KindConflict, "coupon already used or expired")
	ErrCouponOutsideWindow = newError(KindBadRequest, "coupon not valid at this time")
	ErrMerchantNotFound    = newError(KindNotFound, "merchant not found")
	ErrWrongCategory       = newError(KindForbidden, "coupon not valid for this merchant category")
	ErrNotParticipating    = newError(KindForbidden, "merchant not participating in this event")

	// Reward tiers
	ErrRewardTemplateNotFound = newError(KindNotFound, "reward template not found")
	ErrRewardUnavailable      = newError(KindBadRequest, "reward not available")
	ErrNotEnoughStamps        = newError(KindBadRequest, "not enough stamps for this tier")
	ErrRewardExhausted        = newError(KindBadRequest, "reward inventory exhausted")
	ErrTierAlreadyClaimed     = newError(KindConflict, "already claimed this tier reward")
	ErrRewardNotFound         = newError(KindNotFound, "reward not found")
	ErrRewardNotOwned         = newError(KindForbidden, "not your reward")
	ErrRewardAlreadyRedeemed  = newError(KindConflict, "reward already redeemed")
	ErrNotRewardPost          = newError(KindBadRequest, "post is not a reward exchange point")
	ErrPostOtherEvent         = newError(KindBadRequest, "post does not belong to the reward's event")
)
