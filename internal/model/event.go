package model

import "time"

// EventType distinguishes how an event rewards visits.
type EventType string

const (
	EventTypeRunning  EventType = "RUNNING"
	EventTypeFestival EventType = "FESTIVAL"
	EventTypeSingle   EventType = "SINGLE"
)

// EventStatus is admin-driven and only moves forward.
type EventStatus string

const (
	EventStatusUpcoming EventStatus = "UPCOMING"
	EventStatusActive   EventStatus = "ACTIVE"
	EventStatusEnded    EventStatus = "ENDED"
)

// Event represents a running or festival event.
// CouponStartTime and CouponEndTime are "HH:MM" clock times in the business timezone.
type Event struct {
	ID              string      `json:"id"`
	Name            string      `json:"name"`
	Type            EventType   `json:"type"`
	Status          EventStatus `json:"status"`
	StartDate       time.Time   `json:"start_date"`
	EndDate         time.Time   `json:"end_date"`
	CouponStartTime string      `json:"coupon_start_time"`
	CouponEndTime   string      `json:"coupon_end_time"`
}

// IsActive reports whether coupons may be issued for the event.
func (e *Event) IsActive() bool {
	return e.Status == EventStatusActive
}

// Post is a physical location tied to one event.
type Post struct {
	ID           string  `json:"id"`
	EventID      string  `json:"event_id"`
	MerchantID   *string `json:"merchant_id,omitempty"`
	Name         string  `json:"name"`
	QRCode       string  `json:"-"`
	IsRewardPost bool    `json:"is_reward_post"`
	IsActive     bool    `json:"is_active"`
}

// Location is the optional position a client reports with a scan.
type Location struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// Visit records a user's first scan of a post.
type Visit struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	PostID    string    `json:"post_id"`
	EventID   string    `json:"event_id"`
	Location  *Location `json:"location,omitempty"`
	VisitedAt time.Time `json:"visited_at"`
}

// Stamp is proof of a qualifying visit on a festival event.
type Stamp struct {
	ID          string    `json:"id"`
	UserID      string    `json:"user_id"`
	EventID     string    `json:"event_id"`
	PostID      string    `json:"post_id"`
	PostName    string    `json:"post_name,omitempty"`
	CollectedAt time.Time `json:"collected_at"`
}

// GameDescriptor tells the client which game it may play for a visit.
type GameDescriptor struct {
	VisitID             string     `json:"visit_id"`
	GameType            GameType   `json:"game_type"`
	AvailableCategories []Category `json:"available_categories"`
}

// VisitResult is returned by a successful scan.
type VisitResult struct {
	VisitID        string         `json:"visit_id"`
	VisitedAt      time.Time      `json:"visited_at"`
	StampCollected bool           `json:"stamp_collected"`
	StampCount     int            `json:"stamp_count"`
	Game           GameDescriptor `json:"game"`
}

// VisitRequest is the DTO for POST /api/posts/:id/visit.
type VisitRequest struct {
	QRCode    string   `json:"qr_code" validate:"required,notblank,max=255"`
	Latitude  *float64 `json:"latitude" validate:"omitempty,gte=-90,lte=90"`
	Longitude *float64 `json:"longitude" validate:"omitempty,gte=-180,lte=180"`
}

// Location returns the reported location, or nil unless both coordinates are present.
func (r *VisitRequest) Location() *Location {
	if r.Latitude == nil || r.Longitude == nil {
		return nil
	}
	return &Location{Latitude: *r.Latitude, Longitude: *r.Longitude}
}
