package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Jsun-cre8bara/eatsrun-api/internal/model"
	"github.com/Jsun-cre8bara/eatsrun-api/internal/service"
	"github.com/Jsun-cre8bara/eatsrun-api/pkg/database"
)

const visitColumns = `id, user_id, post_id, event_id, latitude, longitude, visited_at`

// VisitRepository provides data access for post visits using pgx.
type VisitRepository struct {
	pool PoolInterface
}

// NewVisitRepository creates a new VisitRepository with the given pool.
func NewVisitRepository(pool *pgxpool.Pool) *VisitRepository {
	return &VisitRepository{pool: pool}
}

// NewVisitRepositoryWithPool creates a new VisitRepository with a custom pool interface.
// This is primarily used for testing.
func NewVisitRepositoryWithPool(pool PoolInterface) *VisitRepository {
	return &VisitRepository{pool: pool}
}

// Insert records a visit within a transaction. An empty ID is filled in.
// Returns service.ErrAlreadyVisited if the user already visited the post in this event.
func (r *VisitRepository) Insert(ctx context.Context, tx database.TxQuerier, visit *model.Visit) error {
	if visit.ID == "" {
		visit.ID = uuid.NewString()
	}

	var lat, lng *float64
	if visit.Location != nil {
		lat, lng = &visit.Location.Latitude, &visit.Location.Longitude
	}

	_, err := tx.Exec(ctx,
		`INSERT INTO post_visits (id, user_id, post_id, event_id, latitude, longitude, visited_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		visit.ID, visit.UserID, visit.PostID, visit.EventID, lat, lng, visit.VisitedAt)
	if err != nil {
		if database.IsUniqueViolation(err, "post_visits_user_post_event_key") {
			return service.ErrAlreadyVisited
		}
		return fmt.Errorf("insert visit: %w", err)
	}
	return nil
}

// GetByID retrieves a visit by id.
// Returns nil, nil if the visit is not found.
func (r *VisitRepository) GetByID(ctx context.Context, id string) (*model.Visit, error) {
	query := `SELECT ` + visitColumns + ` FROM post_visits WHERE id = $1`

	visit, err := scanVisit(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get visit %s: %w", id, err)
	}
	return visit, nil
}

// GetForUpdate retrieves a visit with a row lock (SELECT FOR UPDATE).
// Concurrent issuance attempts for the same visit queue on this lock.
// Returns service.ErrVisitNotFound if the visit doesn't exist.
func (r *VisitRepository) GetForUpdate(ctx context.Context, tx database.TxQuerier, id string) (*model.Visit, error) {
	query := `SELECT ` + visitColumns + ` FROM post_visits WHERE id = $1 FOR UPDATE`

	visit, err := scanVisit(tx.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, service.ErrVisitNotFound
		}
		return nil, fmt.Errorf("get visit for update %s: %w", id, err)
	}
	return visit, nil
}

func scanVisit(row pgx.Row) (*model.Visit, error) {
	var v model.Visit
	var lat, lng *float64
	if err := row.Scan(&v.ID, &v.UserID, &v.PostID, &v.EventID, &lat, &lng, &v.VisitedAt); err != nil {
		return nil, err
	}
	if lat != nil && lng != nil {
		v.Location = &model.Location{Latitude: *lat, Longitude: *lng}
	}
	return &v, nil
}
