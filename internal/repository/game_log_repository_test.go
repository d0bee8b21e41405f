package repository

import (
	"context"
	"errors"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Jsun-cre8bara/eatsrun-api/internal/model"
	"github.com/Jsun-cre8bara/eatsrun-api/internal/service"
)

func TestGameLogRepository_Exists(t *testing.T) {
	for _, played := range []bool{true, false} {
		q := &mockPool{
			queryRowFn: func(ctx context.Context, sql string, args ...any) pgx.Row {
				return &mockRow{values: []any{played}}
			},
		}

		got, err := NewGameLogRepositoryWithPool(&mockPool{}).Exists(context.Background(), q, "v-1")

		require.NoError(t, err)
		assert.Equal(t, played, got)
	}
}

func TestGameLogRepository_Exists_Error(t *testing.T) {
	q := &mockPool{
		queryRowFn: func(ctx context.Context, sql string, args ...any) pgx.Row {
			return &mockRow{err: errors.New("timeout")}
		},
	}

	_, err := NewGameLogRepositoryWithPool(&mockPool{}).Exists(context.Background(), q, "v-1")

	assert.Contains(t, err.Error(), "check game log for visit v-1")
}

func TestGameLogRepository_Insert(t *testing.T) {
	var capturedArgs []any
	tx := &mockPool{
		execFn: func(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error) {
			capturedArgs = arguments
			return pgconn.NewCommandTag("INSERT 0 1"), nil
		},
	}
	log := &model.GameLog{
		UserID:         "u-1",
		EventID:        "e-1",
		VisitID:        "v-1",
		GameType:       model.GameTypeSlot,
		ResultCategory: model.CategoryCafe,
		CouponID:       "c-1",
		PlayedAt:       testTime,
	}

	err := NewGameLogRepositoryWithPool(&mockPool{}).Insert(context.Background(), tx, log)

	require.NoError(t, err)
	assert.NotEmpty(t, log.ID)
	assert.Equal(t, "v-1", capturedArgs[3])
	assert.Equal(t, model.GameTypeSlot, capturedArgs[4])
	assert.Equal(t, "c-1", capturedArgs[6])
}

func TestGameLogRepository_Insert_AlreadyPlayed(t *testing.T) {
	tx := &mockPool{
		execFn: func(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error) {
			return pgconn.CommandTag{}, uniqueViolation("game_logs_post_visit_key")
		},
	}

	err := NewGameLogRepositoryWithPool(&mockPool{}).Insert(context.Background(), tx, &model.GameLog{})

	assert.True(t, errors.Is(err, service.ErrGameAlreadyPlayed))
}

func TestNewGameLogRepository_Production(t *testing.T) {
	require.NotNil(t, NewGameLogRepository(nil))
}
