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

// ParticipationRepository provides data access for event participations using pgx.
type ParticipationRepository struct {
	pool PoolInterface
}

// NewParticipationRepository creates a new ParticipationRepository with the given pool.
func NewParticipationRepository(pool *pgxpool.Pool) *ParticipationRepository {
	return &ParticipationRepository{pool: pool}
}

// NewParticipationRepositoryWithPool creates a new ParticipationRepository with a custom pool interface.
// This is primarily used for testing.
func NewParticipationRepositoryWithPool(pool PoolInterface) *ParticipationRepository {
	return &ParticipationRepository{pool: pool}
}

// Insert records that a user joined an event. An empty ID is filled in.
// Returns service.ErrAlreadyJoined if the user already joined the event.
func (r *ParticipationRepository) Insert(ctx context.Context, p *model.Participation) error {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}

	_, err := r.pool.Exec(ctx,
		`INSERT INTO user_events (id, user_id, event_id, user_type, joined_at) VALUES ($1, $2, $3, $4, $5)`,
		p.ID, p.UserID, p.EventID, p.UserType, p.JoinedAt)
	if err != nil {
		if database.IsUniqueViolation(err, "user_events_user_event_key") {
			return service.ErrAlreadyJoined
		}
		return fmt.Errorf("insert participation: %w", err)
	}
	return nil
}

// Get retrieves a user's participation in an event.
// Returns nil, nil if the user has not joined.
func (r *ParticipationRepository) Get(ctx context.Context, userID, eventID string) (*model.Participation, error) {
	query := `SELECT id, user_id, event_id, user_type, is_finished, finished_at, joined_at
		FROM user_events WHERE user_id = $1 AND event_id = $2`

	var p model.Participation
	err := r.pool.QueryRow(ctx, query, userID, eventID).Scan(
		&p.ID,
		&p.UserID,
		&p.EventID,
		&p.UserType,
		&p.IsFinished,
		&p.FinishedAt,
		&p.JoinedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get participation %s/%s: %w", userID, eventID, err)
	}
	return &p, nil
}

// MarkFinished records a runner's verified finish.
// Returns service.ErrAlreadyFinished if the finish was already verified.
func (r *ParticipationRepository) MarkFinished(ctx context.Context, userID, eventID, code string, at time.Time) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE user_events SET is_finished = TRUE, finish_code = $3, finished_at = $4
		WHERE user_id = $1 AND event_id = $2 AND user_type = 'RUNNER' AND NOT is_finished`,
		userID, eventID, code, at)
	if err != nil {
		return fmt.Errorf("mark participation %s/%s finished: %w", userID, eventID, err)
	}
	if tag.RowsAffected() == 0 {
		return service.ErrAlreadyFinished
	}
	return nil
}

// Progress counts a user's visits, active coupons and stamps in an event together with
// the event's active posts. Coupons past valid_until are not counted as active.
func (r *ParticipationRepository) Progress(ctx context.Context, userID, eventID string) (*model.EventProgress, error) {
	query := `SELECT
		(SELECT COUNT(*) FROM post_visits WHERE user_id = $1 AND event_id = $2),
		(SELECT COUNT(*) FROM posts WHERE event_id = $2 AND is_active),
		(SELECT COUNT(*) FROM coupons WHERE user_id = $1 AND event_id = $2 AND status = 'ACTIVE' AND valid_until >= now()),
		(SELECT COUNT(*) FROM stamps WHERE user_id = $1 AND event_id = $2)`

	var p model.EventProgress
	err := r.pool.QueryRow(ctx, query, userID, eventID).Scan(
		&p.VisitedPosts,
		&p.TotalPosts,
		&p.ActiveCoupons,
		&p.Stamps,
	)
	if err != nil {
		return nil, fmt.Errorf("count progress %s/%s: %w", userID, eventID, err)
	}
	return &p, nil
}
