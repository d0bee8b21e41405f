package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Jsun-cre8bara/eatsrun-api/internal/model"
	"github.com/Jsun-cre8bara/eatsrun-api/pkg/database"
)

// participatingJoin restricts merchants to approved ones with an active link to event $1.
const participatingJoin = `FROM event_merchants em
		JOIN merchants m ON m.id = em.merchant_id
		WHERE em.event_id = $1 AND em.is_active AND m.status = 'APPROVED'`

// MerchantRepository provides data access for merchants and their event links using pgx.
type MerchantRepository struct {
	pool PoolInterface
}

// NewMerchantRepository creates a new MerchantRepository with the given pool.
func NewMerchantRepository(pool *pgxpool.Pool) *MerchantRepository {
	return &MerchantRepository{pool: pool}
}

// NewMerchantRepositoryWithPool creates a new MerchantRepository with a custom pool interface.
// This is primarily used for testing.
func NewMerchantRepositoryWithPool(pool PoolInterface) *MerchantRepository {
	return &MerchantRepository{pool: pool}
}

// GetByID retrieves a merchant by id.
// Returns nil, nil if the merchant is not found.
func (r *MerchantRepository) GetByID(ctx context.Context, id string) (*model.Merchant, error) {
	query := `SELECT id, name, category, status, address, phone FROM merchants WHERE id = $1`

	var m model.Merchant
	err := r.pool.QueryRow(ctx, query, id).Scan(&m.ID, &m.Name, &m.Category, &m.Status, &m.Address, &m.Phone)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get merchant %s: %w", id, err)
	}
	return &m, nil
}

// IsParticipating reports whether an approved merchant is actively linked to the event.
func (r *MerchantRepository) IsParticipating(ctx context.Context, merchantID, eventID string) (bool, error) {
	query := `SELECT EXISTS (SELECT 1 ` + participatingJoin + ` AND em.merchant_id = $2)`

	var ok bool
	if err := r.pool.QueryRow(ctx, query, eventID, merchantID).Scan(&ok); err != nil {
		return false, fmt.Errorf("check participation of merchant %s: %w", merchantID, err)
	}
	return ok, nil
}

// ListCategories returns the distinct categories offered in an event, sorted.
// On success, returns an empty slice (not nil) when no merchant participates.
func (r *MerchantRepository) ListCategories(ctx context.Context, q database.TxQuerier, eventID string) ([]model.Category, error) {
	query := `SELECT DISTINCT m.category ` + participatingJoin + ` ORDER BY m.category`

	rows, err := q.Query(ctx, query, eventID)
	if err != nil {
		return nil, fmt.Errorf("list categories for event %s: %w", eventID, err)
	}
	defer rows.Close()

	categories := []model.Category{}
	for rows.Next() {
		var c model.Category
		if err := rows.Scan(&c); err != nil {
			return nil, fmt.Errorf("scan category: %w", err)
		}
		categories = append(categories, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate category rows: %w", err)
	}
	return categories, nil
}

// ListAvailable returns the participating merchants of one category, by name.
// On success, returns an empty slice (not nil) when there are none.
func (r *MerchantRepository) ListAvailable(ctx context.Context, eventID string, category model.Category) ([]model.MerchantSummary, error) {
	query := `SELECT m.id, m.name, m.address ` + participatingJoin + ` AND m.category = $2 ORDER BY m.name, m.id`

	rows, err := r.pool.Query(ctx, query, eventID, category)
	if err != nil {
		return nil, fmt.Errorf("list merchants for event %s: %w", eventID, err)
	}
	defer rows.Close()

	merchants := []model.MerchantSummary{}
	for rows.Next() {
		var m model.MerchantSummary
		if err := rows.Scan(&m.ID, &m.Name, &m.Address); err != nil {
			return nil, fmt.Errorf("scan merchant: %w", err)
		}
		merchants = append(merchants, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate merchant rows: %w", err)
	}
	return merchants, nil
}
