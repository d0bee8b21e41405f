package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Jsun-cre8bara/eatsrun-api/internal/events"
	"github.com/Jsun-cre8bara/eatsrun-api/internal/model"
)

// EventService manages a user's participation in an event: joining, progress,
// a runner's finish and the post map.
// Visits and coupons do not require a participation.
type EventService struct {
	events         EventRepositoryInterface
	posts          PostRepositoryInterface
	participations ParticipationRepositoryInterface
	rewards        RewardRepositoryInterface
	publisher      Publisher
	now            func() time.Time
}

// NewEventService creates a new EventService with the given repositories.
func NewEventService(repos Repositories, publisher Publisher) *EventService {
	if publisher == nil {
		publisher = events.Noop{}
	}
	return &EventService{
		events:         repos.Events,
		posts:          repos.Posts,
		participations: repos.Participations,
		rewards:        repos.Rewards,
		publisher:      publisher,
		now:            time.Now,
	}
}

// JoinEvent registers the user in an event under the given role.
// Returns:
//   - ErrEventNotFound if the event doesn't exist
//   - ErrEventEnded if the event has ended
//   - ErrAlreadyJoined if the user already joined
func (s *EventService) JoinEvent(ctx context.Context, userID, eventID string, userType model.UserType) (*model.JoinResult, error) {
	event, err := s.events.GetByID(ctx, eventID)
	if err != nil {
		return nil, fmt.Errorf("get event: %w", err)
	}
	if event == nil {
		return nil, ErrEventNotFound
	}
	if event.Status == model.EventStatusEnded {
		return nil, ErrEventEnded
	}

	now := s.now().UTC()
	p := &model.Participation{UserID: userID, EventID: eventID, UserType: userType, JoinedAt: now}
	if err := s.participations.Insert(ctx, p); err != nil {
		if errors.Is(err, ErrAlreadyJoined) {
			return nil, ErrAlreadyJoined
		}
		return nil, fmt.Errorf("insert participation: %w", err)
	}

	publish(ctx, s.publisher, events.New(events.TypeEventJoined, p.ID, userID, eventID, now, map[string]any{
		"user_type": userType,
	}))

	return &model.JoinResult{
		ParticipationID: p.ID,
		Event:           event,
		UserType:        userType,
		JoinedAt:        now,
	}, nil
}

// MyStatus summarises the user's progress in an event they joined.
// Returns ErrNotJoined if the user has not joined the event.
func (s *EventService) MyStatus(ctx context.Context, userID, eventID string) (*model.MyEventStatus, error) {
	p, err := s.participations.Get(ctx, userID, eventID)
	if err != nil {
		return nil, fmt.Errorf("get participation: %w", err)
	}
	if p == nil {
		return nil, ErrNotJoined
	}

	progress, err := s.participations.Progress(ctx, userID, eventID)
	if err != nil {
		return nil, fmt.Errorf("count progress: %w", err)
	}
	rewards, err := s.rewards.ListByUser(ctx, userID, eventID)
	if err != nil {
		return nil, fmt.Errorf("list rewards: %w", err)
	}

	return &model.MyEventStatus{
		EventID:      eventID,
		UserType:     p.UserType,
		JoinedAt:     p.JoinedAt,
		VisitedPosts: progress.VisitedPosts,
		TotalPosts:   progress.TotalPosts,
		CouponsCount: progress.ActiveCoupons,
		StampsCount:  progress.Stamps,
		IsFinished:   p.IsFinished,
		FinishedAt:   p.FinishedAt,
		Rewards:      rewards,
	}, nil
}

// VerifyFinish records that a runner crossed the finish line with the given code.
// Returns:
//   - ErrNotJoined if the user has not joined the event
//   - ErrAlreadyFinished if the finish was already verified
//   - ErrNotRunner if the user joined as anything but a runner
func (s *EventService) VerifyFinish(ctx context.Context, userID, eventID, code string) (*model.FinishResult, error) {
	p, err := s.participations.Get(ctx, userID, eventID)
	if err != nil {
		return nil, fmt.Errorf("get participation: %w", err)
	}
	if p == nil {
		return nil, ErrNotJoined
	}
	if p.IsFinished {
		return nil, ErrAlreadyFinished
	}
	if p.UserType != model.UserTypeRunner {
		return nil, ErrNotRunner
	}

	now := s.now().UTC()
	if err := s.participations.MarkFinished(ctx, userID, eventID, code, now); err != nil {
		if errors.Is(err, ErrAlreadyFinished) {
			return nil, ErrAlreadyFinished
		}
		return nil, fmt.Errorf("mark finished: %w", err)
	}

	publish(ctx, s.publisher, events.New(events.TypeRunnerFinished, p.ID, userID, eventID, now, nil))

	return &model.FinishResult{EventID: eventID, Verified: true, FinishedAt: now}, nil
}

// ListPosts returns the event's active posts with the user's visited flag.
// Returns ErrEventNotFound if the event doesn't exist.
func (s *EventService) ListPosts(ctx context.Context, userID, eventID string, filter model.PostFilter) ([]model.PostListing, error) {
	event, err := s.events.GetByID(ctx, eventID)
	if err != nil {
		return nil, fmt.Errorf("get event: %w", err)
	}
	if event == nil {
		return nil, ErrEventNotFound
	}

	posts, err := s.posts.ListByEvent(ctx, eventID, userID, filter)
	if err != nil {
		return nil, fmt.Errorf("list posts: %w", err)
	}
	return posts, nil
}
