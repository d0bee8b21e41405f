package service

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/Jsun-cre8bara/eatsrun-api/internal/events"
	"github.com/Jsun-cre8bara/eatsrun-api/internal/model"
	"github.com/Jsun-cre8bara/eatsrun-api/pkg/database"
)

var fixedNow = time.Date(2025, 5, 10, 3, 0, 0, 0, time.UTC)

func fixedClock() time.Time { return fixedNow }

// mockTx is a mock implementation of pgx.Tx for testing transactions.
type mockTx struct {
	commitFn   func(ctx context.Context) error
	rollbackFn func(ctx context.Context) error
	committed  bool
}

func (m *mockTx) Begin(ctx context.Context) (pgx.Tx, error) {
	return nil, errors.New("nested transactions not supported")
}

func (m *mockTx) Commit(ctx context.Context) error {
	if m.commitFn != nil {
		return m.commitFn(ctx)
	}
	m.committed = true
	return nil
}

func (m *mockTx) Rollback(ctx context.Context) error {
	if m.rollbackFn != nil {
		return m.rollbackFn(ctx)
	}
	return nil
}

func (m *mockTx) CopyFrom(ctx context.Context, tableName pgx.Identifier, columnNames []string, rowSrc pgx.CopyFromSource) (int64, error) {
	return 0, nil
}

func (m *mockTx) SendBatch(ctx context.Context, b *pgx.Batch) pgx.BatchResults {
	return nil
}

func (m *mockTx) LargeObjects() pgx.LargeObjects {
	return pgx.LargeObjects{}
}

func (m *mockTx) Prepare(ctx context.Context, name, sql string) (*pgconn.StatementDescription, error) {
	return nil, nil
}

func (m *mockTx) Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error) {
	return pgconn.CommandTag{}, nil
}

func (m *mockTx) Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error) {
	return nil, nil
}

func (m *mockTx) QueryRow(ctx context.Context, sql string, args ...any) pgx.Row {
	return nil
}

func (m *mockTx) Conn() *pgx.Conn {
	return nil
}

// mockTxBeginner is a mock implementation of TxBeginner.
type mockTxBeginner struct {
	beginFn func(ctx context.Context) (pgx.Tx, error)
}

func (m *mockTxBeginner) Begin(ctx context.Context) (pgx.Tx, error) {
	if m.beginFn != nil {
		return m.beginFn(ctx)
	}
	return &mockTx{}, nil
}

func (m *mockTxBeginner) Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error) {
	return pgconn.CommandTag{}, nil
}

func (m *mockTxBeginner) Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error) {
	return nil, nil
}

func (m *mockTxBeginner) QueryRow(ctx context.Context, sql string, args ...any) pgx.Row {
	return nil
}

func beginnerFor(tx pgx.Tx) *mockTxBeginner {
	return &mockTxBeginner{
		beginFn: func(ctx context.Context) (pgx.Tx, error) {
			return tx, nil
		},
	}
}

// mockEventRepository is a mock implementation of EventRepositoryInterface.
type mockEventRepository struct {
	getByIDFn func(ctx context.Context, id string) (*model.Event, error)
}

func (m *mockEventRepository) GetByID(ctx context.Context, id string) (*model.Event, error) {
	if m.getByIDFn != nil {
		return m.getByIDFn(ctx, id)
	}
	return nil, nil
}

// mockPostRepository is a mock implementation of PostRepositoryInterface.
type mockPostRepository struct {
	getByIDFn     func(ctx context.Context, id string) (*model.Post, error)
	listByEventFn func(ctx context.Context, eventID, userID string, filter model.PostFilter) ([]model.PostListing, error)
}

func (m *mockPostRepository) GetByID(ctx context.Context, id string) (*model.Post, error) {
	if m.getByIDFn != nil {
		return m.getByIDFn(ctx, id)
	}
	return nil, nil
}

func (m *mockPostRepository) ListByEvent(ctx context.Context, eventID, userID string, filter model.PostFilter) ([]model.PostListing, error) {
	if m.listByEventFn != nil {
		return m.listByEventFn(ctx, eventID, userID, filter)
	}
	return []model.PostListing{}, nil
}

// mockParticipationRepository is a mock implementation of ParticipationRepositoryInterface.
type mockParticipationRepository struct {
	insertFn       func(ctx context.Context, p *model.Participation) error
	getFn          func(ctx context.Context, userID, eventID string) (*model.Participation, error)
	markFinishedFn func(ctx context.Context, userID, eventID, code string, at time.Time) error
	progressFn     func(ctx context.Context, userID, eventID string) (*model.EventProgress, error)
}

func (m *mockParticipationRepository) Insert(ctx context.Context, p *model.Participation) error {
	if m.insertFn != nil {
		return m.insertFn(ctx, p)
	}
	if p.ID == "" {
		p.ID = "participation-1"
	}
	return nil
}

func (m *mockParticipationRepository) Get(ctx context.Context, userID, eventID string) (*model.Participation, error) {
	if m.getFn != nil {
		return m.getFn(ctx, userID, eventID)
	}
	return nil, nil
}

func (m *mockParticipationRepository) MarkFinished(ctx context.Context, userID, eventID, code string, at time.Time) error {
	if m.markFinishedFn != nil {
		return m.markFinishedFn(ctx, userID, eventID, code, at)
	}
	return nil
}

func (m *mockParticipationRepository) Progress(ctx context.Context, userID, eventID string) (*model.EventProgress, error) {
	if m.progressFn != nil {
		return m.progressFn(ctx, userID, eventID)
	}
	return &model.EventProgress{}, nil
}

// mockVisitRepository is a mock implementation of VisitRepositoryInterface.
type mockVisitRepository struct {
	insertFn       func(ctx context.Context, tx database.TxQuerier, visit *model.Visit) error
	getByIDFn      func(ctx context.Context, id string) (*model.Visit, error)
	getForUpdateFn func(ctx context.Context, tx database.TxQuerier, id string) (*model.Visit, error)
}

func (m *mockVisitRepository) Insert(ctx context.Context, tx database.TxQuerier, visit *model.Visit) error {
	if m.insertFn != nil {
		return m.insertFn(ctx, tx, visit)
	}
	if visit.ID == "" {
		visit.ID = "visit-1"
	}
	return nil
}

func (m *mockVisitRepository) GetByID(ctx context.Context, id string) (*model.Visit, error) {
	if m.getByIDFn != nil {
		return m.getByIDFn(ctx, id)
	}
	return nil, nil
}

func (m *mockVisitRepository) GetForUpdate(ctx context.Context, tx database.TxQuerier, id string) (*model.Visit, error) {
	if m.getForUpdateFn != nil {
		return m.getForUpdateFn(ctx, tx, id)
	}
	return nil, ErrVisitNotFound
}

// mockStampRepository is a mock implementation of StampRepositoryInterface.
type mockStampRepository struct {
	insertFn          func(ctx context.Context, tx database.TxQuerier, stamp *model.Stamp) error
	countFn           func(ctx context.Context, q database.TxQuerier, userID, eventID string) (int, error)
	listByUserEventFn func(ctx context.Context, userID, eventID string) ([]model.Stamp, error)
}

func (m *mockStampRepository) Insert(ctx context.Context, tx database.TxQuerier, stamp *model.Stamp) error {
	if m.insertFn != nil {
		return m.insertFn(ctx, tx, stamp)
	}
	return nil
}

func (m *mockStampRepository) Count(ctx context.Context, q database.TxQuerier, userID, eventID string) (int, error) {
	if m.countFn != nil {
		return m.countFn(ctx, q, userID, eventID)
	}
	return 0, nil
}

func (m *mockStampRepository) ListByUserEvent(ctx context.Context, userID, eventID string) ([]model.Stamp, error) {
	if m.listByUserEventFn != nil {
		return m.listByUserEventFn(ctx, userID, eventID)
	}
	return []model.Stamp{}, nil
}

// mockMerchantRepository is a mock implementation of MerchantRepositoryInterface.
type mockMerchantRepository struct {
	getByIDFn         func(ctx context.Context, id string) (*model.Merchant, error)
	isParticipatingFn func(ctx context.Context, merchantID, eventID string) (bool, error)
	listCategoriesFn  func(ctx context.Context, q database.TxQuerier, eventID string) ([]model.Category, error)
	listAvailableFn   func(ctx context.Context, eventID string, category model.Category) ([]model.MerchantSummary, error)
}

func (m *mockMerchantRepository) GetByID(ctx context.Context, id string) (*model.Merchant, error) {
	if m.getByIDFn != nil {
		return m.getByIDFn(ctx, id)
	}
	return nil, nil
}

func (m *mockMerchantRepository) IsParticipating(ctx context.Context, merchantID, eventID string) (bool, error) {
	if m.isParticipatingFn != nil {
		return m.isParticipatingFn(ctx, merchantID, eventID)
	}
	return true, nil
}

func (m *mockMerchantRepository) ListCategories(ctx context.Context, q database.TxQuerier, eventID string) ([]model.Category, error) {
	if m.listCategoriesFn != nil {
		return m.listCategoriesFn(ctx, q, eventID)
	}
	return []model.Category{}, nil
}

func (m *mockMerchantRepository) ListAvailable(ctx context.Context, eventID string, category model.Category) ([]model.MerchantSummary, error) {
	if m.listAvailableFn != nil {
		return m.listAvailableFn(ctx, eventID, category)
	}
	return []model.MerchantSummary{}, nil
}

// mockCouponTemplateRepository is a mock implementation of CouponTemplateRepositoryInterface.
type mockCouponTemplateRepository struct {
	incrementIssuedFn func(ctx context.Context, tx database.TxQuerier, eventID string, category model.Category) (*model.CouponTemplate, error)
}

func (m *mockCouponTemplateRepository) IncrementIssued(ctx context.Context, tx database.TxQuerier, eventID string, category model.Category) (*model.CouponTemplate, error) {
	if m.incrementIssuedFn != nil {
		return m.incrementIssuedFn(ctx, tx, eventID, category)
	}
	return nil, ErrPoolExhausted
}

// mockCouponRepository is a mock implementation of CouponRepositoryInterface.
type mockCouponRepository struct {
	insertFn             func(ctx context.Context, tx database.TxQuerier, coupon *model.Coupon) error
	getByIDFn            func(ctx context.Context, id string) (*model.Coupon, error)
	getByCodeFn          func(ctx context.Context, code string) (*model.Coupon, error)
	markUsedFn           func(ctx context.Context, id, merchantID string, usedAt time.Time) error
	listByUserFn         func(ctx context.Context, userID string, filter model.CouponFilter) ([]model.Coupon, error)
	listUsedByMerchantFn func(ctx context.Context, merchantID, eventID string) ([]model.CouponUsageRecord, error)
	expireBeforeFn       func(ctx context.Context, t time.Time) (int64, error)
}

func (m *mockCouponRepository) Insert(ctx context.Context, tx database.TxQuerier, coupon *model.Coupon) error {
	if m.insertFn != nil {
		return m.insertFn(ctx, tx, coupon)
	}
	if coupon.ID == "" {
		coupon.ID = "coupon-1"
	}
	return nil
}

func (m *mockCouponRepository) GetByID(ctx context.Context, id string) (*model.Coupon, error) {
	if m.getByIDFn != nil {
		return m.getByIDFn(ctx, id)
	}
	return nil, nil
}

func (m *mockCouponRepository) GetByCode(ctx context.Context, code string) (*model.Coupon, error) {
	if m.getByCodeFn != nil {
		return m.getByCodeFn(ctx, code)
	}
	return nil, nil
}

func (m *mockCouponRepository) MarkUsed(ctx context.Context, id, merchantID string, usedAt time.Time) error {
	if m.markUsedFn != nil {
		return m.markUsedFn(ctx, id, merchantID, usedAt)
	}
	return nil
}

func (m *mockCouponRepository) ListByUser(ctx context.Context, userID string, filter model.CouponFilter) ([]model.Coupon, error) {
	if m.listByUserFn != nil {
		return m.listByUserFn(ctx, userID, filter)
	}
	return []model.Coupon{}, nil
}

func (m *mockCouponRepository) ListUsedByMerchant(ctx context.Context, merchantID, eventID string) ([]model.CouponUsageRecord, error) {
	if m.listUsedByMerchantFn != nil {
		return m.listUsedByMerchantFn(ctx, merchantID, eventID)
	}
	return []model.CouponUsageRecord{}, nil
}

func (m *mockCouponRepository) ExpireBefore(ctx context.Context, t time.Time) (int64, error) {
	if m.expireBeforeFn != nil {
		return m.expireBeforeFn(ctx, t)
	}
	return 0, nil
}

// mockGameLogRepository is a mock implementation of GameLogRepositoryInterface.
type mockGameLogRepository struct {
	existsFn func(ctx context.Context, q database.TxQuerier, visitID string) (bool, error)
	insertFn func(ctx context.Context, tx database.TxQuerier, log *model.GameLog) error
}

func (m *mockGameLogRepository) Exists(ctx context.Context, q database.TxQuerier, visitID string) (bool, error) {
	if m.existsFn != nil {
		return m.existsFn(ctx, q, visitID)
	}
	return false, nil
}

func (m *mockGameLogRepository) Insert(ctx context.Context, tx database.TxQuerier, log *model.GameLog) error {
	if m.insertFn != nil {
		return m.insertFn(ctx, tx, log)
	}
	return nil
}

// mockRewardRepository is a mock implementation of RewardRepositoryInterface.
type mockRewardRepository struct {
	getTemplateFn        func(ctx context.Context, q database.TxQuerier, id string) (*model.RewardTemplate, error)
	listTemplatesFn      func(ctx context.Context, eventID string) ([]model.RewardTemplate, error)
	decrementRemainingFn func(ctx context.Context, tx database.TxQuerier, templateID string) error
	claimedTiersFn       func(ctx context.Context, q database.TxQuerier, userID, eventID string) ([]model.RewardTier, error)
	insertFn             func(ctx context.Context, tx database.TxQuerier, reward *model.Reward) error
	getByIDFn            func(ctx context.Context, id string) (*model.Reward, error)
	markRedeemedFn       func(ctx context.Context, id, postID string, at time.Time) error
	listByUserFn         func(ctx context.Context, userID, eventID string) ([]model.Reward, error)
}

func (m *mockRewardRepository) GetTemplate(ctx context.Context, q database.TxQuerier, id string) (*model.RewardTemplate, error) {
	if m.getTemplateFn != nil {
		return m.getTemplateFn(ctx, q, id)
	}
	return nil, nil
}

func (m *mockRewardRepository) ListTemplates(ctx context.Context, eventID string) ([]model.RewardTemplate, error) {
	if m.listTemplatesFn != nil {
		return m.listTemplatesFn(ctx, eventID)
	}
	return []model.RewardTemplate{}, nil
}

func (m *mockRewardRepository) DecrementRemaining(ctx context.Context, tx database.TxQuerier, templateID string) error {
	if m.decrementRemainingFn != nil {
		return m.decrementRemainingFn(ctx, tx, templateID)
	}
	return nil
}

func (m *mockRewardRepository) ClaimedTiers(ctx context.Context, q database.TxQuerier, userID, eventID string) ([]model.RewardTier, error) {
	if m.claimedTiersFn != nil {
		return m.claimedTiersFn(ctx, q, userID, eventID)
	}
	return []model.RewardTier{}, nil
}

func (m *mockRewardRepository) Insert(ctx context.Context, tx database.TxQuerier, reward *model.Reward) error {
	if m.insertFn != nil {
		return m.insertFn(ctx, tx, reward)
	}
	if reward.ID == "" {
		reward.ID = "reward-1"
	}
	return nil
}

func (m *mockRewardRepository) GetByID(ctx context.Context, id string) (*model.Reward, error) {
	if m.getByIDFn != nil {
		return m.getByIDFn(ctx, id)
	}
	return nil, nil
}

func (m *mockRewardRepository) MarkRedeemed(ctx context.Context, id, postID string, at time.Time) error {
	if m.markRedeemedFn != nil {
		return m.markRedeemedFn(ctx, id, postID, at)
	}
	return nil
}

func (m *mockRewardRepository) ListByUser(ctx context.Context, userID, eventID string) ([]model.Reward, error) {
	if m.listByUserFn != nil {
		return m.listByUserFn(ctx, userID, eventID)
	}
	return []model.Reward{}, nil
}

// mockUserRepository is a mock implementation of UserRepositoryInterface.
type mockUserRepository struct {
	getNameFn func(ctx context.Context, id string) (string, error)
}

func (m *mockUserRepository) GetName(ctx context.Context, id string) (string, error) {
	if m.getNameFn != nil {
		return m.getNameFn(ctx, id)
	}
	return "", nil
}

// recordingPublisher captures published events.
type recordingPublisher struct {
	mu     sync.Mutex
	events []events.Event
	err    error
}

func (p *recordingPublisher) Publish(ctx context.Context, e events.Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, e)
	return p.err
}

func (p *recordingPublisher) types() []events.Type {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]events.Type, 0, len(p.events))
	for _, e := range p.events {
		out = append(out, e.Type)
	}
	return out
}

// stubCodes returns a fixed code or error.
type stubCodes struct {
	code string
	err  error
}

func (s stubCodes) Generate() (string, error) {
	return s.code, s.err
}

func strPtr(s string) *string {
	return &s
}

func intPtr(i int) *int {
	return &i
}
