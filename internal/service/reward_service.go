package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Jsun-cre8bara/eatsrun-api/internal/events"
	"github.com/Jsun-cre8bara/eatsrun-api/internal/model"
)

// RewardService computes stamp progress and claims and redeems tier rewards.
type RewardService struct {
	pool      TxBeginner
	posts     PostRepositoryInterface
	stamps    StampRepositoryInterface
	rewards   RewardRepositoryInterface
	codes     CodeGenerator
	publisher Publisher
	now       func() time.Time
}

// NewRewardService creates a new RewardService with the given pool and repositories.
func NewRewardService(pool *pgxpool.Pool, repos Repositories, codes CodeGenerator, publisher Publisher) *RewardService {
	return NewRewardServiceWithTxBeginner(pool, repos, codes, publisher)
}

// NewRewardServiceWithTxBeginner creates a RewardService with a custom TxBeginner.
// Primarily used for testing.
func NewRewardServiceWithTxBeginner(pool TxBeginner, repos Repositories, codes CodeGenerator, publisher Publisher) *RewardService {
	if publisher == nil {
		publisher = events.Noop{}
	}
	return &RewardService{
		pool:      pool,
		posts:     repos.Posts,
		stamps:    repos.Stamps,
		rewards:   repos.Rewards,
		codes:     codes,
		publisher: publisher,
		now:       time.Now,
	}
}

// ComputeClaimable returns the reward templates the user can claim right now: active,
// in stock, threshold met and tier not yet claimed. Ordered by required stamps.
func (s *RewardService) ComputeClaimable(ctx context.Context, userID, eventID string) ([]model.RewardTemplate, error) {
	templates, err := s.rewards.ListTemplates(ctx, eventID)
	if err != nil {
		return nil, fmt.Errorf("list reward templates: %w", err)
	}
	count, err := s.stamps.Count(ctx, s.pool, userID, eventID)
	if err != nil {
		return nil, fmt.Errorf("count stamps: %w", err)
	}
	claimed, err := s.rewards.ClaimedTiers(ctx, s.pool, userID, eventID)
	if err != nil {
		return nil, fmt.Errorf("list claimed tiers: %w", err)
	}
	return claimable(templates, count, claimed), nil
}

// StampStatus summarises a user's stamps in an event: the collected stamps, the next
// tier to reach and what can be claimed now.
func (s *RewardService) StampStatus(ctx context.Context, userID, eventID string) (*model.StampStatus, error) {
	stamps, err := s.stamps.ListByUserEvent(ctx, userID, eventID)
	if err != nil {
		return nil, fmt.Errorf("list stamps: %w", err)
	}
	templates, err := s.rewards.ListTemplates(ctx, eventID)
	if err != nil {
		return nil, fmt.Errorf("list reward templates: %w", err)
	}
	claimed, err := s.rewards.ClaimedTiers(ctx, s.pool, userID, eventID)
	if err != nil {
		return nil, fmt.Errorf("list claimed tiers: %w", err)
	}

	return &model.StampStatus{
		EventID:    eventID,
		Total:      len(stamps),
		Stamps:     stamps,
		NextReward: nextReward(templates, len(stamps)),
		Claimable:  claimable(templates, len(stamps), claimed),
	}, nil
}

// ListRewards returns the rewards a user has claimed. An empty eventID covers every event.
func (s *RewardService) ListRewards(ctx context.Context, userID, eventID string) ([]model.Reward, error) {
	rewards, err := s.rewards.ListByUser(ctx, userID, eventID)
	if err != nil {
		return nil, fmt.Errorf("list rewards: %w", err)
	}
	return rewards, nil
}

// ClaimReward claims the tier of a reward template for a user.
// The reward insert and the inventory decrement commit together.
// Returns:
//   - ErrRewardTemplateNotFound if the template doesn't exist
//   - ErrRewardUnavailable if the template is disabled
//   - ErrNotEnoughStamps if the user's stamp count is below the threshold
//   - ErrTierAlreadyClaimed if the user already holds this tier
//   - ErrRewardExhausted if no inventory remains
func (s *RewardService) ClaimReward(ctx context.Context, userID, templateID string) (*model.Reward, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }() // Safe: no-op if committed

	template, err := s.rewards.GetTemplate(ctx, tx, templateID)
	if err != nil {
		return nil, fmt.Errorf("get reward template: %w", err)
	}
	if template == nil {
		return nil, ErrRewardTemplateNotFound
	}
	if !template.IsActive {
		return nil, ErrRewardUnavailable
	}

	count, err := s.stamps.Count(ctx, tx, userID, template.EventID)
	if err != nil {
		return nil, fmt.Errorf("count stamps: %w", err)
	}
	if count < template.RequiredStamps {
		return nil, ErrNotEnoughStamps
	}

	claimed, err := s.rewards.ClaimedTiers(ctx, tx, userID, template.EventID)
	if err != nil {
		return nil, fmt.Errorf("list claimed tiers: %w", err)
	}
	for _, tier := range claimed {
		if tier == template.Tier {
			return nil, ErrTierAlreadyClaimed
		}
	}

	code, err := s.codes.Generate()
	if err != nil {
		return nil, fmt.Errorf("generate code: %w", err)
	}

	now := s.now().UTC()
	reward := &model.Reward{
		UserID:       userID,
		EventID:      template.EventID,
		TemplateID:   template.ID,
		TemplateName: template.Name,
		Tier:         template.Tier,
		Code:         code,
		Status:       model.RewardStatusAvailable,
		CreatedAt:    now,
	}
	// UNIQUE(user_id, event_id, tier) catches concurrent claims past the pre-check
	if err := s.rewards.Insert(ctx, tx, reward); err != nil {
		return nil, err
	}

	if err := s.rewards.DecrementRemaining(ctx, tx, template.ID); err != nil {
		if errors.Is(err, ErrRewardExhausted) {
			return nil, ErrRewardExhausted
		}
		return nil, fmt.Errorf("decrement remaining: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit claim: %w", err)
	}

	publish(ctx, s.publisher, events.New(events.TypeRewardClaimed, reward.ID, userID, reward.EventID, now, map[string]any{
		"template_id": template.ID,
		"tier":        reward.Tier,
	}))

	return reward, nil
}

// RedeemReward exchanges a claimed reward at a reward post of the same event.
// Returns:
//   - ErrRewardNotFound / ErrRewardNotOwned for an unknown or foreign reward
//   - ErrRewardAlreadyRedeemed if the reward is not AVAILABLE or another redemption won
//   - ErrPostNotFound if the post doesn't exist
//   - ErrNotRewardPost if the post is not a reward exchange point
//   - ErrPostOtherEvent if the post belongs to another event
func (s *RewardService) RedeemReward(ctx context.Context, userID, rewardID, postID string) (*model.RewardRedemption, error) {
	reward, err := s.rewards.GetByID(ctx, rewardID)
	if err != nil {
		return nil, fmt.Errorf("get reward: %w", err)
	}
	if reward == nil {
		return nil, ErrRewardNotFound
	}
	if reward.UserID != userID {
		return nil, ErrRewardNotOwned
	}
	if reward.Status != model.RewardStatusAvailable {
		return nil, ErrRewardAlreadyRedeemed
	}

	post, err := s.posts.GetByID(ctx, postID)
	if err != nil {
		return nil, fmt.Errorf("get post: %w", err)
	}
	if post == nil {
		return nil, ErrPostNotFound
	}
	if !post.IsRewardPost {
		return nil, ErrNotRewardPost
	}
	if post.EventID != reward.EventID {
		return nil, ErrPostOtherEvent
	}

	now := s.now().UTC()
	if err := s.rewards.MarkRedeemed(ctx, reward.ID, post.ID, now); err != nil {
		if errors.Is(err, ErrRewardAlreadyRedeemed) {
			return nil, ErrRewardAlreadyRedeemed
		}
		return nil, fmt.Errorf("mark reward redeemed: %w", err)
	}

	publish(ctx, s.publisher, events.New(events.TypeRewardRedeemed, reward.ID, userID, reward.EventID, now, map[string]any{
		"post_id": post.ID,
		"tier":    reward.Tier,
	}))

	return &model.RewardRedemption{
		RewardID:   reward.ID,
		PostID:     post.ID,
		RedeemedAt: now,
	}, nil
}
