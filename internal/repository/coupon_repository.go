package repository

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Jsun-cre8bara/eatsrun-api/internal/model"
	"github.com/Jsun-cre8bara/eatsrun-api/internal/service"
	"github.com/Jsun-cre8bara/eatsrun-api/pkg/database"
)

const couponSelect = `SELECT c.id, c.user_id, c.event_id, c.template_id, t.name, c.category, c.kind,
		c.discount_amount, c.code, c.status, c.valid_from, c.valid_until, c.merchant_id, c.used_at, c.created_at
	FROM coupons c
	JOIN coupon_templates t ON t.id = c.template_id`

// CouponRepository provides data access for coupons using pgx.
type CouponRepository struct {
	pool PoolInterface
}

// NewCouponRepository creates a new CouponRepository with the given pool.
func NewCouponRepository(pool *pgxpool.Pool) *CouponRepository {
	return &CouponRepository{pool: pool}
}

// NewCouponRepositoryWithPool creates a new CouponRepository with a custom pool interface.
// This is primarily used for testing.
func NewCouponRepositoryWithPool(pool PoolInterface) *CouponRepository {
	return &CouponRepository{pool: pool}
}

// Insert stores a freshly issued coupon within the issuance transaction. An empty ID is filled in.
// Returns service.ErrCodeCollision if the redemption code is already taken.
func (r *CouponRepository) Insert(ctx context.Context, tx database.TxQuerier, coupon *model.Coupon) error {
	if coupon.ID == "" {
		coupon.ID = uuid.NewString()
	}

	_, err := tx.Exec(ctx,
		`INSERT INTO coupons (id, user_id, event_id, template_id, category, kind, discount_amount,
			code, status, valid_from, valid_until, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`,
		coupon.ID, coupon.UserID, coupon.EventID, coupon.TemplateID, coupon.Category, coupon.Kind,
		coupon.DiscountAmount, coupon.Code, coupon.Status, coupon.ValidFrom, coupon.ValidUntil, coupon.CreatedAt)
	if err != nil {
		if database.IsUniqueViolation(err, "coupons_code_key") {
			return service.ErrCodeCollision
		}
		return fmt.Errorf("insert coupon: %w", err)
	}
	return nil
}

// GetByID retrieves a coupon by id.
// Returns nil, nil if the coupon is not found.
func (r *CouponRepository) GetByID(ctx context.Context, id string) (*model.Coupon, error) {
	coupon, err := scanCoupon(r.pool.QueryRow(ctx, couponSelect+` WHERE c.id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get coupon %s: %w", id, err)
	}
	return coupon, nil
}

// GetByCode retrieves a coupon by its redemption code.
// Returns nil, nil if no coupon carries the code.
func (r *CouponRepository) GetByCode(ctx context.Context, code string) (*model.Coupon, error) {
	coupon, err := scanCoupon(r.pool.QueryRow(ctx, couponSelect+` WHERE c.code = $1`, code))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get coupon by code: %w", err)
	}
	return coupon, nil
}

// MarkUsed performs the ACTIVE -> USED transition and records the redeeming merchant.
// Only one of several concurrent callers can match the status condition.
// Returns service.ErrCouponNotActive if the coupon is no longer ACTIVE.
func (r *CouponRepository) MarkUsed(ctx context.Context, id, merchantID string, usedAt time.Time) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE coupons SET status = 'USED', used_at = $3, merchant_id = $2
		WHERE id = $1 AND status = 'ACTIVE'`,
		id, merchantID, usedAt)
	if err != nil {
		return fmt.Errorf("mark coupon %s used: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return service.ErrCouponNotActive
	}
	return nil
}

// ListByUser returns a user's coupons, newest first, narrowed by the filter.
// Filtering on ACTIVE leaves out coupons already past valid_until.
// On success, returns an empty slice (not nil) when there are none.
func (r *CouponRepository) ListByUser(ctx context.Context, userID string, filter model.CouponFilter) ([]model.Coupon, error) {
	conds := []string{"c.user_id = $1"}
	args := []any{userID}
	if filter.EventID != "" {
		args = append(args, filter.EventID)
		conds = append(conds, "c.event_id = $"+strconv.Itoa(len(args)))
	}
	if filter.Status != "" {
		args = append(args, filter.Status)
		conds = append(conds, "c.status = $"+strconv.Itoa(len(args)))
		// ACTIVE rows the expiry sweep has not reached yet are no longer usable
		if filter.Status == model.CouponStatusActive {
			conds = append(conds, "c.valid_until >= now()")
		}
	}
	if filter.Category != "" {
		args = append(args, filter.Category)
		conds = append(conds, "c.category = $"+strconv.Itoa(len(args)))
	}

	query := couponSelect + ` WHERE ` + strings.Join(conds, " AND ") + ` ORDER BY c.created_at DESC, c.id`

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list coupons: %w", err)
	}
	defer rows.Close()

	coupons := []model.Coupon{}
	for rows.Next() {
		c, err := scanCoupon(rows)
		if err != nil {
			return nil, fmt.Errorf("scan coupon: %w", err)
		}
		coupons = append(coupons, *c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate coupon rows: %w", err)
	}
	return coupons, nil
}

// ListUsedByMerchant returns the coupons a merchant redeemed, most recent first, with the
// unmasked customer name. An empty eventID lists every event.
// On success, returns an empty slice (not nil) when there are none.
func (r *CouponRepository) ListUsedByMerchant(ctx context.Context, merchantID, eventID string) ([]model.CouponUsageRecord, error) {
	query := `SELECT c.id, c.event_id, t.name, c.kind, c.discount_amount, u.name, c.used_at
		FROM coupons c
		JOIN coupon_templates t ON t.id = c.template_id
		JOIN users u ON u.id = c.user_id
		WHERE c.merchant_id = $1 AND c.status = 'USED'`
	args := []any{merchantID}
	if eventID != "" {
		query += ` AND c.event_id = $2`
		args = append(args, eventID)
	}
	query += ` ORDER BY c.used_at DESC, c.id`

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list used coupons: %w", err)
	}
	defer rows.Close()

	records := []model.CouponUsageRecord{}
	for rows.Next() {
		var rec model.CouponUsageRecord
		if err := rows.Scan(&rec.CouponID, &rec.EventID, &rec.Name, &rec.Kind, &rec.DiscountAmount, &rec.CustomerName, &rec.UsedAt); err != nil {
			return nil, fmt.Errorf("scan coupon usage: %w", err)
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate coupon usage rows: %w", err)
	}
	return records, nil
}

// ExpireBefore flips every ACTIVE coupon whose window closed before t to EXPIRED.
// It is idempotent and only ever narrows the set of ACTIVE coupons.
func (r *CouponRepository) ExpireBefore(ctx context.Context, t time.Time) (int64, error) {
	tag, err := r.pool.Exec(ctx,
		`UPDATE coupons SET status = 'EXPIRED' WHERE status = 'ACTIVE' AND valid_until < $1`, t)
	if err != nil {
		return 0, fmt.Errorf("expire coupons: %w", err)
	}
	return tag.RowsAffected(), nil
}

func scanCoupon(row pgx.Row) (*model.Coupon, error) {
	var c model.Coupon
	err := row.Scan(
		&c.ID,
		&c.UserID,
		&c.EventID,
		&c.TemplateID,
		&c.TemplateName,
		&c.Category,
		&c.Kind,
		&c.DiscountAmount,
		&c.Code,
		&c.Status,
		&c.ValidFrom,
		&c.ValidUntil,
		&c.MerchantID,
		&c.UsedAt,
		&c.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &c, nil
}
