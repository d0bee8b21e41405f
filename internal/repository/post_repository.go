package repository

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Jsun-cre8bara/eatsrun-api/internal/model"
)

// PostRepository provides data access for posts using pgx.
type PostRepository struct {
	pool PoolInterface
}

// NewPostRepository creates a new PostRepository with the given pool.
func NewPostRepository(pool *pgxpool.Pool) *PostRepository {
	return &PostRepository{pool: pool}
}

// NewPostRepositoryWithPool creates a new PostRepository with a custom pool interface.
// This is primarily used for testing.
func NewPostRepositoryWithPool(pool PoolInterface) *PostRepository {
	return &PostRepository{pool: pool}
}

// GetByID retrieves a post, including its QR secret, by id.
// Returns nil, nil if the post is not found.
func (r *PostRepository) GetByID(ctx context.Context, id string) (*model.Post, error) {
	query := `SELECT id, event_id, merchant_id, name, qr_code, is_reward_post, is_active
		FROM posts WHERE id = $1`

	var p model.Post
	err := r.pool.QueryRow(ctx, query, id).Scan(
		&p.ID,
		&p.EventID,
		&p.MerchantID,
		&p.Name,
		&p.QRCode,
		&p.IsRewardPost,
		&p.IsActive,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get post %s: %w", id, err)
	}
	return &p, nil
}

// ListByEvent returns the active posts of an event by name, each flagged with whether
// userID has visited it. The filter narrows by merchant category and visited flag.
// On success, returns an empty slice (not nil) when there are none.
func (r *PostRepository) ListByEvent(ctx context.Context, eventID, userID string, filter model.PostFilter) ([]model.PostListing, error) {
	query := `SELECT p.id, p.name, p.is_reward_post, m.id, m.name, m.category,
			EXISTS (SELECT 1 FROM post_visits v WHERE v.post_id = p.id AND v.event_id = p.event_id AND v.user_id = $2)
		FROM posts p
		LEFT JOIN merchants m ON m.id = p.merchant_id
		WHERE p.event_id = $1 AND p.is_active`
	args := []any{eventID, userID}
	if filter.Category != "" {
		args = append(args, filter.Category)
		query += ` AND m.category = $` + strconv.Itoa(len(args))
	}
	query += ` ORDER BY p.name, p.id`

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list posts: %w", err)
	}
	defer rows.Close()

	posts := []model.PostListing{}
	for rows.Next() {
		var (
			p                model.PostListing
			merchantID, name *string
			merchantCategory *model.Category
		)
		if err := rows.Scan(&p.ID, &p.Name, &p.IsRewardPost, &merchantID, &name, &merchantCategory, &p.Visited); err != nil {
			return nil, fmt.Errorf("scan post: %w", err)
		}
		if filter.Visited != nil && p.Visited != *filter.Visited {
			continue
		}
		if merchantID != nil {
			p.Merchant = &model.PostMerchant{ID: *merchantID, Name: *name, Category: *merchantCategory}
		}
		posts = append(posts, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate post rows: %w", err)
	}
	return posts, nil
}
