package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Jsun-cre8bara/eatsrun-api/internal/model"
	"github.com/Jsun-cre8bara/eatsrun-api/internal/service"
	"github.com/Jsun-cre8bara/eatsrun-api/pkg/database"
)

// StampRepository provides data access for stamps using pgx.
type StampRepository struct {
	pool PoolInterface
}

// NewStampRepository creates a new StampRepository with the given pool.
func NewStampRepository(pool *pgxpool.Pool) *StampRepository {
	return &StampRepository{pool: pool}
}

// NewStampRepositoryWithPool creates a new StampRepository with a custom pool interface.
// This is primarily used for testing.
func NewStampRepositoryWithPool(pool PoolInterface) *StampRepository {
	return &StampRepository{pool: pool}
}

// Insert records a stamp within the visit's transaction. An empty ID is filled in.
// Returns service.ErrStampDuplicated if the post was already stamped for this user and event.
func (r *StampRepository) Insert(ctx context.Context, tx database.TxQuerier, stamp *model.Stamp) error {
	if stamp.ID == "" {
		stamp.ID = uuid.NewString()
	}

	_, err := tx.Exec(ctx,
		`INSERT INTO stamps (id, user_id, event_id, post_id, collected_at) VALUES ($1, $2, $3, $4, $5)`,
		stamp.ID, stamp.UserID, stamp.EventID, stamp.PostID, stamp.CollectedAt)
	if err != nil {
		if database.IsUniqueViolation(err, "stamps_user_event_post_key") {
			return service.ErrStampDuplicated
		}
		return fmt.Errorf("insert stamp: %w", err)
	}
	return nil
}

// Count returns the number of stamps a user holds in an event.
func (r *StampRepository) Count(ctx context.Context, q database.TxQuerier, userID, eventID string) (int, error) {
	var n int
	err := q.QueryRow(ctx,
		`SELECT COUNT(*) FROM stamps WHERE user_id = $1 AND event_id = $2`,
		userID, eventID).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count stamps: %w", err)
	}
	return n, nil
}

// ListByUserEvent returns a user's stamps in collection order.
// On success, returns an empty slice (not nil) when there are none.
func (r *StampRepository) ListByUserEvent(ctx context.Context, userID, eventID string) ([]model.Stamp, error) {
	query := `SELECT s.id, s.user_id, s.event_id, s.post_id, p.name, s.collected_at
		FROM stamps s
		JOIN posts p ON p.id = s.post_id
		WHERE s.user_id = $1 AND s.event_id = $2
		ORDER BY s.collected_at, s.id`

	rows, err := r.pool.Query(ctx, query, userID, eventID)
	if err != nil {
		return nil, fmt.Errorf("list stamps: %w", err)
	}
	defer rows.Close()

	stamps := []model.Stamp{}
	for rows.Next() {
		var s model.Stamp
		if err := rows.Scan(&s.ID, &s.UserID, &s.EventID, &s.PostID, &s.PostName, &s.CollectedAt); err != nil {
			return nil, fmt.Errorf("scan stamp: %w", err)
		}
		stamps = append(stamps, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate stamp rows: %w", err)
	}
	return stamps, nil
}
