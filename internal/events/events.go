// Package events publishes domain events for downstream consumers
// (notifications, analytics, settlement reports).
package events

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Type names a domain event.
type Type string

const (
	TypeEventJoined    Type = "event.joined"
	TypeRunnerFinished Type = "event.finished"
	TypeVisitRecorded  Type = "visit.recorded"
	TypeCouponIssued   Type = "coupon.issued"
	TypeCouponUsed     Type = "coupon.used"
	TypeCouponsExpired Type = "coupon.expired"
	TypeRewardClaimed  Type = "reward.claimed"
	TypeRewardRedeemed Type = "reward.redeemed"
)

// Event is the envelope written to the broker. Key identifies the aggregate
// (participation, visit, coupon or reward id) and is used as the partition key.
// EventID is the promotional event the change belongs to.
type Event struct {
	ID         string    `json:"id"`
	Type       Type      `json:"type"`
	Key        string    `json:"key"`
	UserID     string    `json:"user_id,omitempty"`
	EventID    string    `json:"event_id,omitempty"`
	OccurredAt time.Time `json:"occurred_at"`
	Data       any       `json:"data,omitempty"`
}

// New builds an event with a fresh id.
func New(t Type, key, userID, eventID string, occurredAt time.Time, data any) Event {
	return Event{
		ID:         uuid.NewString(),
		Type:       t,
		Key:        key,
		UserID:     userID,
		EventID:    eventID,
		OccurredAt: occurredAt.UTC(),
		Data:       data,
	}
}

// Noop discards every event. It is used when no broker is configured.
type Noop struct{}

// Publish implements the publisher contract and always succeeds.
func (Noop) Publish(context.Context, Event) error {
	return nil
}
