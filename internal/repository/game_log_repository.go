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

// GameLogRepository provides data access for game logs using pgx.
type GameLogRepository struct {
	pool PoolInterface
}

// NewGameLogRepository creates a new GameLogRepository with the given pool.
func NewGameLogRepository(pool *pgxpool.Pool) *GameLogRepository {
	return &GameLogRepository{pool: pool}
}

// NewGameLogRepositoryWithPool creates a new GameLogRepository with a custom pool interface.
// This is primarily used for testing.
func NewGameLogRepositoryWithPool(pool PoolInterface) *GameLogRepository {
	return &GameLogRepository{pool: pool}
}

// Exists reports whether the visit's game has already been played.
func (r *GameLogRepository) Exists(ctx context.Context, q database.TxQuerier, visitID string) (bool, error) {
	var ok bool
	err := q.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM game_logs WHERE post_visit_id = $1)`, visitID).Scan(&ok)
	if err != nil {
		return false, fmt.Errorf("check game log for visit %s: %w", visitID, err)
	}
	return ok, nil
}

// Insert records the consumed game within the issuance transaction. An empty ID is filled in.
// Returns service.ErrGameAlreadyPlayed if the visit already has a game log.
func (r *GameLogRepository) Insert(ctx context.Context, tx database.TxQuerier, log *model.GameLog) error {
	if log.ID == "" {
		log.ID = uuid.NewString()
	}

	_, err := tx.Exec(ctx,
		`INSERT INTO game_logs (id, user_id, event_id, post_visit_id, game_type, result_category, coupon_id, played_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		log.ID, log.UserID, log.EventID, log.VisitID, log.GameType, log.ResultCategory, log.CouponID, log.PlayedAt)
	if err != nil {
		if database.IsUniqueViolation(err, "game_logs_post_visit_key") {
			return service.ErrGameAlreadyPlayed
		}
		return fmt.Errorf("insert game log: %w", err)
	}
	return nil
}
