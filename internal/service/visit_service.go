package service

import (
	"context"
	"crypto/subtle"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog/log"

	"github.com/Jsun-cre8bara/eatsrun-api/internal/events"
	"github.com/Jsun-cre8bara/eatsrun-api/internal/minigame"
	"github.com/Jsun-cre8bara/eatsrun-api/internal/model"
)

// VisitService records QR scans and collects stamps for festival events.
type VisitService struct {
	pool      TxBeginner
	posts     PostRepositoryInterface
	events    EventRepositoryInterface
	visits    VisitRepositoryInterface
	stamps    StampRepositoryInterface
	merchants MerchantRepositoryInterface
	rng       minigame.Rand
	publisher Publisher
	now       func() time.Time
}

// NewVisitService creates a new VisitService with the given pool and repositories.
func NewVisitService(pool *pgxpool.Pool, repos Repositories, rng minigame.Rand, publisher Publisher) *VisitService {
	return NewVisitServiceWithTxBeginner(pool, repos, rng, publisher)
}

// NewVisitServiceWithTxBeginner creates a VisitService with a custom TxBeginner.
// Primarily used for testing.
func NewVisitServiceWithTxBeginner(pool TxBeginner, repos Repositories, rng minigame.Rand, publisher Publisher) *VisitService {
	if publisher == nil {
		publisher = events.Noop{}
	}
	return &VisitService{
		pool:      pool,
		posts:     repos.Posts,
		events:    repos.Events,
		visits:    repos.Visits,
		stamps:    repos.Stamps,
		merchants: repos.Merchants,
		rng:       rng,
		publisher: publisher,
		now:       time.Now,
	}
}

// RecordVisit records the first scan of a post by a user.
// Checks run in order and the first failure wins:
//   - ErrPostNotFound if the post doesn't exist
//   - ErrPostInactive if the post is disabled
//   - ErrInvalidQRCode if the scanned code does not match the post's secret
//   - ErrEventNotFound / ErrEventNotActive if the post's event is missing or not ACTIVE
//   - ErrAlreadyVisited if the user already visited the post in this event
//
// For FESTIVAL events a stamp is collected in the same transaction as the visit.
func (s *VisitService) RecordVisit(ctx context.Context, userID, postID, code string, loc *model.Location) (*model.VisitResult, error) {
	post, err := s.posts.GetByID(ctx, postID)
	if err != nil {
		return nil, fmt.Errorf("get post: %w", err)
	}
	if post == nil {
		return nil, ErrPostNotFound
	}
	if !post.IsActive {
		return nil, ErrPostInactive
	}
	if subtle.ConstantTimeCompare([]byte(code), []byte(post.QRCode)) != 1 {
		return nil, ErrInvalidQRCode
	}

	event, err := s.events.GetByID(ctx, post.EventID)
	if err != nil {
		return nil, fmt.Errorf("get event: %w", err)
	}
	if event == nil {
		return nil, ErrEventNotFound
	}
	if !event.IsActive() {
		return nil, ErrEventNotActive
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }() // Safe: no-op if committed

	visit := &model.Visit{
		UserID:    userID,
		PostID:    post.ID,
		EventID:   event.ID,
		Location:  loc,
		VisitedAt: s.now().UTC(),
	}
	if err := s.visits.Insert(ctx, tx, visit); err != nil {
		return nil, err
	}

	result := &model.VisitResult{
		VisitID:   visit.ID,
		VisitedAt: visit.VisitedAt,
	}

	if event.Type == model.EventTypeFestival {
		stamp := &model.Stamp{
			UserID:      userID,
			EventID:     event.ID,
			PostID:      post.ID,
			CollectedAt: visit.VisitedAt,
		}
		if err := s.stamps.Insert(ctx, tx, stamp); err != nil {
			return nil, err
		}
		count, err := s.stamps.Count(ctx, tx, userID, event.ID)
		if err != nil {
			return nil, fmt.Errorf("count stamps: %w", err)
		}
		result.StampCollected = true
		result.StampCount = count
	}

	categories, err := s.merchants.ListCategories(ctx, tx, event.ID)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit visit: %w", err)
	}

	result.Game = model.GameDescriptor{
		VisitID:             visit.ID,
		GameType:            minigame.RandomGameType(s.rng),
		AvailableCategories: minigame.Distinct(categories),
	}

	publish(ctx, s.publisher, events.New(events.TypeVisitRecorded, visit.ID, userID, event.ID, visit.VisitedAt, map[string]any{
		"post_id":         post.ID,
		"stamp_collected": result.StampCollected,
		"stamp_count":     result.StampCount,
	}))

	return result, nil
}

// publish emits e after the change it describes has committed. Failures are logged and
// never undo the change.
func publish(ctx context.Context, p Publisher, e events.Event) {
	if err := p.Publish(ctx, e); err != nil {
		log.Warn().Err(err).Str("event_type", string(e.Type)).Str("key", e.Key).Msg("failed to publish event")
	}
}
