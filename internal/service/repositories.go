package service

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/Jsun-cre8bara/eatsrun-api/internal/events"
	"github.com/Jsun-cre8bara/eatsrun-api/internal/model"
	"github.com/Jsun-cre8bara/eatsrun-api/pkg/database"
)

// TxBeginner begins transactions and runs single statements outside of one.
// *pgxpool.Pool satisfies it.
type TxBeginner interface {
	Begin(ctx context.Context) (pgx.Tx, error)
	database.TxQuerier
}

// Methods that take a database.TxQuerier run on whatever they are given: the open
// transaction when called inside one, the pool otherwise.

// EventRepositoryInterface defines the interface for event data access.
type EventRepositoryInterface interface {
	GetByID(ctx context.Context, id string) (*model.Event, error)
}

// PostRepositoryInterface defines the interface for post data access.
type PostRepositoryInterface interface {
	GetByID(ctx context.Context, id string) (*model.Post, error)
	ListByEvent(ctx context.Context, eventID, userID string, filter model.PostFilter) ([]model.PostListing, error)
}

// ParticipationRepositoryInterface defines the interface for event participation data access.
type ParticipationRepositoryInterface interface {
	Insert(ctx context.Context, p *model.Participation) error
	Get(ctx context.Context, userID, eventID string) (*model.Participation, error)
	MarkFinished(ctx context.Context, userID, eventID, code string, at time.Time) error
	Progress(ctx context.Context, userID, eventID string) (*model.EventProgress, error)
}

// VisitRepositoryInterface defines the interface for visit data access.
type VisitRepositoryInterface interface {
	Insert(ctx context.Context, tx database.TxQuerier, visit *model.Visit) error
	GetByID(ctx context.Context, id string) (*model.Visit, error)
	GetForUpdate(ctx context.Context, tx database.TxQuerier, id string) (*model.Visit, error)
}

// StampRepositoryInterface defines the interface for stamp data access.
type StampRepositoryInterface interface {
	Insert(ctx context.Context, tx database.TxQuerier, stamp *model.Stamp) error
	Count(ctx context.Context, q database.TxQuerier, userID, eventID string) (int, error)
	ListByUserEvent(ctx context.Context, userID, eventID string) ([]model.Stamp, error)
}

// MerchantRepositoryInterface defines the interface for merchant data access.
type MerchantRepositoryInterface interface {
	GetByID(ctx context.Context, id string) (*model.Merchant, error)
	IsParticipating(ctx context.Context, merchantID, eventID string) (bool, error)
	ListCategories(ctx context.Context, q database.TxQuerier, eventID string) ([]model.Category, error)
	ListAvailable(ctx context.Context, eventID string, category model.Category) ([]model.MerchantSummary, error)
}

// CouponTemplateRepositoryInterface defines the interface for coupon template data access.
type CouponTemplateRepositoryInterface interface {
	IncrementIssued(ctx context.Context, tx database.TxQuerier, eventID string, category model.Category) (*model.CouponTemplate, error)
}

// CouponRepositoryInterface defines the interface for coupon data access.
type CouponRepositoryInterface interface {
	Insert(ctx context.Context, tx database.TxQuerier, coupon *model.Coupon) error
	GetByID(ctx context.Context, id string) (*model.Coupon, error)
	GetByCode(ctx context.Context, code string) (*model.Coupon, error)
	MarkUsed(ctx context.Context, id, merchantID string, usedAt time.Time) error
	ListByUser(ctx context.Context, userID string, filter model.CouponFilter) ([]model.Coupon, error)
	ListUsedByMerchant(ctx context.Context, merchantID, eventID string) ([]model.CouponUsageRecord, error)
	ExpireBefore(ctx context.Context, t time.Time) (int64, error)
}

// GameLogRepositoryInterface defines the interface for game log data access.
type GameLogRepositoryInterface interface {
	Exists(ctx context.Context, q database.TxQuerier, visitID string) (bool, error)
	Insert(ctx context.Context, tx database.TxQuerier, log *model.GameLog) error
}

// RewardRepositoryInterface defines the interface for reward and reward template data access.
type RewardRepositoryInterface interface {
	GetTemplate(ctx context.Context, q database.TxQuerier, id string) (*model.RewardTemplate, error)
	ListTemplates(ctx context.Context, eventID string) ([]model.RewardTemplate, error)
	DecrementRemaining(ctx context.Context, tx database.TxQuerier, templateID string) error
	ClaimedTiers(ctx context.Context, q database.TxQuerier, userID, eventID string) ([]model.RewardTier, error)
	Insert(ctx context.Context, tx database.TxQuerier, reward *model.Reward) error
	GetByID(ctx context.Context, id string) (*model.Reward, error)
	MarkRedeemed(ctx context.Context, id, postID string, at time.Time) error
	ListByUser(ctx context.Context, userID, eventID string) ([]model.Reward, error)
}

// UserRepositoryInterface defines the interface for user data access.
type UserRepositoryInterface interface {
	GetName(ctx context.Context, id string) (string, error)
}

// Repositories bundles the data access dependencies of the services.
// A service only uses the fields it needs.
type Repositories struct {
	Events          EventRepositoryInterface
	Posts           PostRepositoryInterface
	Visits          VisitRepositoryInterface
	Stamps          StampRepositoryInterface
	Merchants       MerchantRepositoryInterface
	CouponTemplates CouponTemplateRepositoryInterface
	Coupons         CouponRepositoryInterface
	GameLogs        GameLogRepositoryInterface
	Rewards         RewardRepositoryInterface
	Users           UserRepositoryInterface
	Participations  ParticipationRepositoryInterface
}

// Publisher emits domain events after a state change has committed.
type Publisher interface {
	Publish(ctx context.Context, event events.Event) error
}

// CodeGenerator produces bearer redemption codes.
type CodeGenerator interface {
	Generate() (string, error)
}
