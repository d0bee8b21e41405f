package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Jsun-cre8bara/eatsrun-api/internal/model"
	"github.com/Jsun-cre8bara/eatsrun-api/internal/service"
	"github.com/Jsun-cre8bara/eatsrun-api/pkg/database"
)

const (
	rewardTemplateColumns = `id, event_id, name, tier, required_stamps, total_quantity, remaining_quantity, is_active`

	rewardSelect = `SELECT r.id, r.user_id, r.event_id, r.template_id, t.name, r.tier, r.code, r.status,
		r.redeem_post_id, r.redeemed_at, r.created_at
	FROM rewards r
	JOIN reward_templates t ON t.id = r.template_id`
)

// RewardRepository provides data access for reward templates and claimed rewards using pgx.
type RewardRepository struct {
	pool PoolInterface
}

// NewRewardRepository creates a new RewardRepository with the given pool.
func NewRewardRepository(pool *pgxpool.Pool) *RewardRepository {
	return &RewardRepository{pool: pool}
}

// NewRewardRepositoryWithPool creates a new RewardRepository with a custom pool interface.
// This is primarily used for testing.
func NewRewardRepositoryWithPool(pool PoolInterface) *RewardRepository {
	return &RewardRepository{pool: pool}
}

// GetTemplate retrieves a reward template by id.
// Returns nil, nil if the template is not found.
func (r *RewardRepository) GetTemplate(ctx context.Context, q database.TxQuerier, id string) (*model.RewardTemplate, error) {
	query := `SELECT ` + rewardTemplateColumns + ` FROM reward_templates WHERE id = $1`

	t, err := scanRewardTemplate(q.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get reward template %s: %w", id, err)
	}
	return t, nil
}

// ListTemplates returns the active reward templates of an event by ascending threshold.
// On success, returns an empty slice (not nil) when there are none.
func (r *RewardRepository) ListTemplates(ctx context.Context, eventID string) ([]model.RewardTemplate, error) {
	query := `SELECT ` + rewardTemplateColumns + ` FROM reward_templates
		WHERE event_id = $1 AND is_active
		ORDER BY required_stamps, id`

	rows, err := r.pool.Query(ctx, query, eventID)
	if err != nil {
		return nil, fmt.Errorf("list reward templates for event %s: %w", eventID, err)
	}
	defer rows.Close()

	templates := []model.RewardTemplate{}
	for rows.Next() {
		t, err := scanRewardTemplate(rows)
		if err != nil {
			return nil, fmt.Errorf("scan reward template: %w", err)
		}
		templates = append(templates, *t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate reward template rows: %w", err)
	}
	return templates, nil
}

// DecrementRemaining takes one unit of inventory. Must be called within the claim transaction.
// Returns service.ErrRewardExhausted if nothing is left.
func (r *RewardRepository) DecrementRemaining(ctx context.Context, tx database.TxQuerier, templateID string) error {
	tag, err := tx.Exec(ctx,
		`UPDATE reward_templates SET remaining_quantity = remaining_quantity - 1
		WHERE id = $1 AND remaining_quantity > 0`,
		templateID)
	if err != nil {
		return fmt.Errorf("decrement reward template %s: %w", templateID, err)
	}
	if tag.RowsAffected() == 0 {
		return service.ErrRewardExhausted
	}
	return nil
}

// ClaimedTiers returns the tiers a user already holds in an event.
func (r *RewardRepository) ClaimedTiers(ctx context.Context, q database.TxQuerier, userID, eventID string) ([]model.RewardTier, error) {
	rows, err := q.Query(ctx,
		`SELECT tier FROM rewards WHERE user_id = $1 AND event_id = $2 ORDER BY tier`,
		userID, eventID)
	if err != nil {
		return nil, fmt.Errorf("list claimed tiers: %w", err)
	}
	defer rows.Close()

	tiers := []model.RewardTier{}
	for rows.Next() {
		var tier model.RewardTier
		if err := rows.Scan(&tier); err != nil {
			return nil, fmt.Errorf("scan tier: %w", err)
		}
		tiers = append(tiers, tier)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate tier rows: %w", err)
	}
	return tiers, nil
}

// Insert stores a claimed reward within the claim transaction. An empty ID is filled in.
// Returns service.ErrTierAlreadyClaimed if the user already holds this tier in the event,
// and service.ErrCodeCollision if the redemption code is taken.
func (r *RewardRepository) Insert(ctx context.Context, tx database.TxQuerier, reward *model.Reward) error {
	if reward.ID == "" {
		reward.ID = uuid.NewString()
	}

	_, err := tx.Exec(ctx,
		`INSERT INTO rewards (id, user_id, event_id, template_id, tier, code, status, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		reward.ID, reward.UserID, reward.EventID, reward.TemplateID, reward.Tier, reward.Code, reward.Status, reward.CreatedAt)
	if err != nil {
		switch {
		case database.IsUniqueViolation(err, "rewards_user_event_tier_key"):
			return service.ErrTierAlreadyClaimed
		case database.IsUniqueViolation(err, "rewards_code_key"):
			return service.ErrCodeCollision
		}
		return fmt.Errorf("insert reward: %w", err)
	}
	return nil
}

// GetByID retrieves a reward by id.
// Returns nil, nil if the reward is not found.
func (r *RewardRepository) GetByID(ctx context.Context, id string) (*model.Reward, error) {
	reward, err := scanReward(r.pool.QueryRow(ctx, rewardSelect+` WHERE r.id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get reward %s: %w", id, err)
	}
	return reward, nil
}

// MarkRedeemed performs the AVAILABLE -> REDEEMED transition at the given post.
// Returns service.ErrRewardAlreadyRedeemed if the reward is no longer AVAILABLE.
func (r *RewardRepository) MarkRedeemed(ctx context.Context, id, postID string, at time.Time) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE rewards SET status = 'REDEEMED', redeem_post_id = $2, redeemed_at = $3
		WHERE id = $1 AND status = 'AVAILABLE'`,
		id, postID, at)
	if err != nil {
		return fmt.Errorf("mark reward %s redeemed: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return service.ErrRewardAlreadyRedeemed
	}
	return nil
}

// ListByUser returns a user's rewards, oldest first. An empty eventID lists every event.
// On success, returns an empty slice (not nil) when there are none.
func (r *RewardRepository) ListByUser(ctx context.Context, userID, eventID string) ([]model.Reward, error) {
	query := rewardSelect + ` WHERE r.user_id = $1`
	args := []any{userID}
	if eventID != "" {
		query += ` AND r.event_id = $2`
		args = append(args, eventID)
	}
	query += ` ORDER BY r.created_at, r.id`

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list rewards: %w", err)
	}
	defer rows.Close()

	rewards := []model.Reward{}
	for rows.Next() {
		reward, err := scanReward(rows)
		if err != nil {
			return nil, fmt.Errorf("scan reward: %w", err)
		}
		rewards = append(rewards, *reward)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate reward rows: %w", err)
	}
	return rewards, nil
}

func scanRewardTemplate(row pgx.Row) (*model.RewardTemplate, error) {
	var t model.RewardTemplate
	err := row.Scan(&t.ID, &t.EventID, &t.Name, &t.Tier, &t.RequiredStamps, &t.TotalQuantity, &t.RemainingQuantity, &t.IsActive)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func scanReward(row pgx.Row) (*model.Reward, error) {
	var r model.Reward
	err := row.Scan(
		&r.ID,
		&r.UserID,
		&r.EventID,
		&r.TemplateID,
		&r.TemplateName,
		&r.Tier,
		&r.Code,
		&r.Status,
		&r.RedeemPostID,
		&r.RedeemedAt,
		&r.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &r, nil
}
