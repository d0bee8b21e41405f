package service

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog/log"

	"github.com/Jsun-cre8bara/eatsrun-api/internal/events"
	"github.com/Jsun-cre8bara/eatsrun-api/internal/minigame"
	"github.com/Jsun-cre8bara/eatsrun-api/internal/model"
)

// GameService resolves minigames and turns the chosen category into a coupon.
type GameService struct {
	pool      TxBeginner
	events    EventRepositoryInterface
	visits    VisitRepositoryInterface
	merchants MerchantRepositoryInterface
	templates CouponTemplateRepositoryInterface
	coupons   CouponRepositoryInterface
	gameLogs  GameLogRepositoryInterface
	rng       minigame.Rand
	codes     CodeGenerator
	publisher Publisher
	loc       *time.Location
	now       func() time.Time
}

// GameServiceDeps carries the collaborators a GameService needs besides its repositories.
type GameServiceDeps struct {
	Rand      minigame.Rand
	Codes     CodeGenerator
	Publisher Publisher
	Location  *time.Location
}

// NewGameService creates a new GameService with the given pool and repositories.
func NewGameService(pool *pgxpool.Pool, repos Repositories, deps GameServiceDeps) *GameService {
	return NewGameServiceWithTxBeginner(pool, repos, deps)
}

// NewGameServiceWithTxBeginner creates a GameService with a custom TxBeginner.
// Primarily used for testing.
func NewGameServiceWithTxBeginner(pool TxBeginner, repos Repositories, deps GameServiceDeps) *GameService {
	if deps.Publisher == nil {
		deps.Publisher = events.Noop{}
	}
	if deps.Location == nil {
		deps.Location = time.UTC
	}
	return &GameService{
		pool:      pool,
		events:    repos.Events,
		visits:    repos.Visits,
		merchants: repos.Merchants,
		templates: repos.CouponTemplates,
		coupons:   repos.Coupons,
		gameLogs:  repos.GameLogs,
		rng:       deps.Rand,
		codes:     deps.Codes,
		publisher: deps.Publisher,
		loc:       deps.Location,
		now:       time.Now,
	}
}

// ResolveGame draws a category and an animation for a visit without changing any state.
// It may be called repeatedly until a coupon has been issued for the visit.
// Returns:
//   - ErrVisitNotFound if the visit doesn't exist
//   - ErrVisitNotOwned if the visit belongs to another user
//   - ErrGameAlreadyPlayed if a coupon has already been issued for the visit
//   - ErrNoCategories if the event has no participating merchants
//   - ErrInvalidRequest if kind is not a known game type
func (s *GameService) ResolveGame(ctx context.Context, userID, visitID string, kind model.GameType) (*minigame.Result, error) {
	visit, err := s.visits.GetByID(ctx, visitID)
	if err != nil {
		return nil, fmt.Errorf("get visit: %w", err)
	}
	if visit == nil {
		return nil, ErrVisitNotFound
	}
	if visit.UserID != userID {
		return nil, ErrVisitNotOwned
	}

	played, err := s.gameLogs.Exists(ctx, s.pool, visit.ID)
	if err != nil {
		return nil, fmt.Errorf("check game log: %w", err)
	}
	if played {
		return nil, ErrGameAlreadyPlayed
	}

	categories, err := s.merchants.ListCategories(ctx, s.pool, visit.EventID)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}

	result, err := minigame.Play(s.rng, kind, categories)
	switch {
	case errors.Is(err, minigame.ErrNoCategories):
		return nil, ErrNoCategories
	case errors.Is(err, minigame.ErrUnknownGameType):
		return nil, ErrInvalidRequest
	case err != nil:
		return nil, fmt.Errorf("play game: %w", err)
	}
	return result, nil
}

// IssueCoupon converts the chosen category into a coupon for the visit.
// The template counter increment, the coupon and the game log commit together or not at all.
// An empty kind is recorded as ROULETTE.
// Returns:
//   - ErrVisitNotFound / ErrVisitNotOwned for an unknown or foreign visit
//   - ErrGameAlreadyPlayed if a coupon has already been issued for the visit
//   - ErrEventNotFound / ErrEventNotActive if the event is missing or not ACTIVE
//   - ErrPoolExhausted if the category is no longer offered or every template is at its cap
//   - ErrCouponPeriodEnded if the event's coupon cutoff has already passed
func (s *GameService) IssueCoupon(ctx context.Context, userID, visitID string, category model.Category, kind model.GameType) (*model.IssuedCoupon, error) {
	if kind == "" {
		kind = model.GameTypeRoulette
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }() // Safe: no-op if committed

	// 1. Lock the visit row so concurrent issuance for it serializes here
	visit, err := s.visits.GetForUpdate(ctx, tx, visitID)
	if err != nil {
		if errors.Is(err, ErrVisitNotFound) {
			return nil, ErrVisitNotFound
		}
		return nil, fmt.Errorf("get visit for update: %w", err)
	}
	if visit.UserID != userID {
		return nil, ErrVisitNotOwned
	}

	// 2. Exactly one issuance per visit
	played, err := s.gameLogs.Exists(ctx, tx, visit.ID)
	if err != nil {
		return nil, fmt.Errorf("check game log: %w", err)
	}
	if played {
		return nil, ErrGameAlreadyPlayed
	}

	event, err := s.events.GetByID(ctx, visit.EventID)
	if err != nil {
		return nil, fmt.Errorf("get event: %w", err)
	}
	if event == nil {
		return nil, ErrEventNotFound
	}
	if !event.IsActive() {
		return nil, ErrEventNotActive
	}

	// 3. The category must still be offered
	categories, err := s.merchants.ListCategories(ctx, tx, event.ID)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	if !slices.Contains(categories, category) {
		return nil, ErrPoolExhausted
	}

	// The window must still be open before a unit of the cap is taken
	now := s.now().UTC()
	validFrom, validUntil, err := ValidityWindow(now, s.loc, event)
	if err != nil {
		return nil, err
	}

	// 4. Take one unit from the first template with stock
	template, err := s.templates.IncrementIssued(ctx, tx, event.ID, category)
	if err != nil {
		if errors.Is(err, ErrPoolExhausted) {
			return nil, ErrPoolExhausted
		}
		return nil, fmt.Errorf("increment issued: %w", err)
	}

	code, err := s.codes.Generate()
	if err != nil {
		return nil, fmt.Errorf("generate code: %w", err)
	}

	// 5. Coupon snapshot of the template
	coupon := &model.Coupon{
		UserID:         userID,
		EventID:        event.ID,
		TemplateID:     template.ID,
		TemplateName:   template.Name,
		Category:       template.Category,
		Kind:           template.Kind,
		DiscountAmount: template.DiscountAmount,
		Code:           code,
		Status:         model.CouponStatusActive,
		ValidFrom:      validFrom,
		ValidUntil:     validUntil,
		CreatedAt:      now,
	}
	if err := s.coupons.Insert(ctx, tx, coupon); err != nil {
		return nil, err
	}

	// 6. Consume the visit's game (UNIQUE constraint catches races past the lock)
	gameLog := &model.GameLog{
		UserID:         userID,
		EventID:        event.ID,
		VisitID:        visit.ID,
		GameType:       kind,
		ResultCategory: category,
		CouponID:       coupon.ID,
		PlayedAt:       now,
	}
	if err := s.gameLogs.Insert(ctx, tx, gameLog); err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit issuance: %w", err)
	}

	merchants, err := s.merchants.ListAvailable(ctx, event.ID, coupon.Category)
	if err != nil {
		log.Warn().Err(err).Str("coupon_id", coupon.ID).Msg("failed to list available merchants")
		merchants = []model.MerchantSummary{}
	}

	publish(ctx, s.publisher, events.New(events.TypeCouponIssued, coupon.ID, userID, event.ID, now, map[string]any{
		"visit_id":        visit.ID,
		"template_id":     template.ID,
		"category":        coupon.Category,
		"kind":            coupon.Kind,
		"discount_amount": coupon.DiscountAmount,
		"game_type":       kind,
	}))

	return &model.IssuedCoupon{Coupon: coupon, AvailableMerchants: merchants}, nil
}
