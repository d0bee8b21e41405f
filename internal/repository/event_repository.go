package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Jsun-cre8bara/eatsrun-api/internal/model"
)

// EventRepository provides data access for events using pgx.
type EventRepository struct {
	pool PoolInterface
}

// NewEventRepository creates a new EventRepository with the given pool.
func NewEventRepository(pool *pgxpool.Pool) *EventRepository {
	return &EventRepository{pool: pool}
}

// NewEventRepositoryWithPool creates a new EventRepository with a custom pool interface.
// This is primarily used for testing.
func NewEventRepositoryWithPool(pool PoolInterface) *EventRepository {
	return &EventRepository{pool: pool}
}

// GetByID retrieves an event by id.
// Returns nil, nil if the event is not found.
func (r *EventRepository) GetByID(ctx context.Context, id string) (*model.Event, error) {
	query := `SELECT id, name, type, status, start_date, end_date, coupon_start_time, coupon_end_time
		FROM events WHERE id = $1`

	var e model.Event
	err := r.pool.QueryRow(ctx, query, id).Scan(
		&e.ID,
		&e.Name,
		&e.Type,
		&e.Status,
		&e.StartDate,
		&e.EndDate,
		&e.CouponStartTime,
		&e.CouponEndTime,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get event %s: %w", id, err)
	}
	return &e, nil
}
