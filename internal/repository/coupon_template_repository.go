package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Jsun-cre8bara/eatsrun-api/internal/model"
	"github.com/Jsun-cre8bara/eatsrun-api/internal/service"
	"github.com/Jsun-cre8bara/eatsrun-api/pkg/database"
)

// CouponTemplateRepository provides data access for coupon templates using pgx.
type CouponTemplateRepository struct {
	pool PoolInterface
}

// NewCouponTemplateRepository creates a new CouponTemplateRepository with the given pool.
func NewCouponTemplateRepository(pool *pgxpool.Pool) *CouponTemplateRepository {
	return &CouponTemplateRepository{pool: pool}
}

// NewCouponTemplateRepositoryWithPool creates a new CouponTemplateRepository with a custom pool interface.
// This is primarily used for testing.
func NewCouponTemplateRepositoryWithPool(pool PoolInterface) *CouponTemplateRepository {
	return &CouponTemplateRepository{pool: pool}
}

// IncrementIssued draws one coupon from the first eligible template of a category and
// returns the template as it is after the increment. Must be called within a transaction.
//
// Every eligible template row is locked in creation order first. A row that a concurrent
// transaction filled up while we waited is re-checked by PostgreSQL and drops out, so the
// next template is picked instead of reporting a false exhaustion. The UPDATE repeats the
// cap condition and the table carries a CHECK constraint on it.
//
// Returns service.ErrPoolExhausted if no active template has stock left.
func (r *CouponTemplateRepository) IncrementIssued(ctx context.Context, tx database.TxQuerier, eventID string, category model.Category) (*model.CouponTemplate, error) {
	lockQuery := `SELECT id FROM coupon_templates
		WHERE event_id = $1 AND category = $2 AND is_active
		  AND (max_issue_count IS NULL OR issued_count < max_issue_count)
		ORDER BY created_at, id
		FOR UPDATE`

	rows, err := tx.Query(ctx, lockQuery, eventID, category)
	if err != nil {
		return nil, fmt.Errorf("lock coupon templates: %w", err)
	}
	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			rows.Close()
			return nil, fmt.Errorf("scan coupon template id: %w", err)
		}
		ids = append(ids, id)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate coupon template rows: %w", err)
	}
	if len(ids) == 0 {
		return nil, service.ErrPoolExhausted
	}

	updateQuery := `UPDATE coupon_templates
		SET issued_count = issued_count + 1, updated_at = now()
		WHERE id = $1 AND is_active
		  AND (max_issue_count IS NULL OR issued_count < max_issue_count)
		RETURNING id, event_id, name, category, kind, discount_amount, max_issue_count, issued_count, is_active`

	var t model.CouponTemplate
	err = tx.QueryRow(ctx, updateQuery, ids[0]).Scan(
		&t.ID,
		&t.EventID,
		&t.Name,
		&t.Category,
		&t.Kind,
		&t.DiscountAmount,
		&t.MaxIssueCount,
		&t.IssuedCount,
		&t.IsActive,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, service.ErrPoolExhausted
		}
		return nil, fmt.Errorf("increment issued count for template %s: %w", ids[0], err)
	}
	return &t, nil
}
