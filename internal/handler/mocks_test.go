package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/require"

	"github.com/Jsun-cre8bara/eatsrun-api/internal/middleware"
	"github.com/Jsun-cre8bara/eatsrun-api/internal/minigame"
	"github.com/Jsun-cre8bara/eatsrun-api/internal/model"
	"github.com/Jsun-cre8bara/eatsrun-api/internal/validator"
)

const (
	testUserID     = "6f1c2d3e-4a5b-4c6d-8e7f-001122334455"
	testMerchantID = "9a8b7c6d-5e4f-4a3b-9c2d-1e0f11223344"
	testPostID     = "11111111-2222-4333-8444-555555555555"
	testVisitID    = "22222222-3333-4444-8555-666666666666"
	testCouponID   = "33333333-4444-4555-8666-777777777777"
	testEventID    = "44444444-5555-4666-8777-888888888888"
	testRewardID   = "55555555-6666-4777-8888-999999999999"
	testTemplateID = "66666666-7777-4888-8999-aaaaaaaaaaaa"
)

var (
	userIdentity     = middleware.Identity{UserID: testUserID, Role: middleware.RoleUser}
	merchantIdentity = middleware.Identity{UserID: testUserID, Role: middleware.RoleMerchant, MerchantID: testMerchantID}
)

type mockEventService struct {
	joinFn   func(ctx context.Context, userID, eventID string, userType model.UserType) (*model.JoinResult, error)
	statusFn func(ctx context.Context, userID, eventID string) (*model.MyEventStatus, error)
	finishFn func(ctx context.Context, userID, eventID, code string) (*model.FinishResult, error)
	postsFn  func(ctx context.Context, userID, eventID string, filter model.PostFilter) ([]model.PostListing, error)
}

func (m *mockEventService) JoinEvent(ctx context.Context, userID, eventID string, userType model.UserType) (*model.JoinResult, error) {
	return m.joinFn(ctx, userID, eventID, userType)
}

func (m *mockEventService) MyStatus(ctx context.Context, userID, eventID string) (*model.MyEventStatus, error) {
	return m.statusFn(ctx, userID, eventID)
}

func (m *mockEventService) VerifyFinish(ctx context.Context, userID, eventID, code string) (*model.FinishResult, error) {
	return m.finishFn(ctx, userID, eventID, code)
}

func (m *mockEventService) ListPosts(ctx context.Context, userID, eventID string, filter model.PostFilter) ([]model.PostListing, error) {
	return m.postsFn(ctx, userID, eventID, filter)
}

type mockVisitService struct {
	recordVisitFn func(ctx context.Context, userID, postID, code string, loc *model.Location) (*model.VisitResult, error)
}

func (m *mockVisitService) RecordVisit(ctx context.Context, userID, postID, code string, loc *model.Location) (*model.VisitResult, error) {
	return m.recordVisitFn(ctx, userID, postID, code, loc)
}

type mockGameService struct {
	resolveFn func(ctx context.Context, userID, visitID string, kind model.GameType) (*minigame.Result, error)
	issueFn   func(ctx context.Context, userID, visitID string, category model.Category, kind model.GameType) (*model.IssuedCoupon, error)
}

func (m *mockGameService) ResolveGame(ctx context.Context, userID, visitID string, kind model.GameType) (*minigame.Result, error) {
	return m.resolveFn(ctx, userID, visitID, kind)
}

func (m *mockGameService) IssueCoupon(ctx context.Context, userID, visitID string, category model.Category, kind model.GameType) (*model.IssuedCoupon, error) {
	return m.issueFn(ctx, userID, visitID, category, kind)
}

type mockCouponService struct {
	listFn     func(ctx context.Context, userID string, filter model.CouponFilter) ([]model.Coupon, error)
	getFn      func(ctx context.Context, userID, couponID string) (*model.CouponDetail, error)
	validateFn func(ctx context.Context, merchantID, code string) (*model.CouponValidation, error)
	useFn      func(ctx context.Context, merchantID, couponID string) (*model.CouponUsage, error)
	historyFn  func(ctx context.Context, merchantID, eventID string) ([]model.CouponUsageRecord, error)
}

func (m *mockCouponService) ListCoupons(ctx context.Context, userID string, filter model.CouponFilter) ([]model.Coupon, error) {
	return m.listFn(ctx, userID, filter)
}

func (m *mockCouponService) GetCoupon(ctx context.Context, userID, couponID string) (*model.CouponDetail, error) {
	return m.getFn(ctx, userID, couponID)
}

func (m *mockCouponService) ValidateCoupon(ctx context.Context, merchantID, code string) (*model.CouponValidation, error) {
	return m.validateFn(ctx, merchantID, code)
}

func (m *mockCouponService) UseCoupon(ctx context.Context, merchantID, couponID string) (*model.CouponUsage, error) {
	return m.useFn(ctx, merchantID, couponID)
}

func (m *mockCouponService) UsageHistory(ctx context.Context, merchantID, eventID string) ([]model.CouponUsageRecord, error) {
	return m.historyFn(ctx, merchantID, eventID)
}

type mockRewardService struct {
	stampStatusFn func(ctx context.Context, userID, eventID string) (*model.StampStatus, error)
	claimableFn   func(ctx context.Context, userID, eventID string) ([]model.RewardTemplate, error)
	listFn        func(ctx context.Context, userID, eventID string) ([]model.Reward, error)
	claimFn       func(ctx context.Context, userID, templateID string) (*model.Reward, error)
	redeemFn      func(ctx context.Context, userID, rewardID, postID string) (*model.RewardRedemption, error)
}

func (m *mockRewardService) StampStatus(ctx context.Context, userID, eventID string) (*model.StampStatus, error) {
	return m.stampStatusFn(ctx, userID, eventID)
}

func (m *mockRewardService) ComputeClaimable(ctx context.Context, userID, eventID string) ([]model.RewardTemplate, error) {
	return m.claimableFn(ctx, userID, eventID)
}

func (m *mockRewardService) ListRewards(ctx context.Context, userID, eventID string) ([]model.Reward, error) {
	return m.listFn(ctx, userID, eventID)
}

func (m *mockRewardService) ClaimReward(ctx context.Context, userID, templateID string) (*model.Reward, error) {
	return m.claimFn(ctx, userID, templateID)
}

func (m *mockRewardService) RedeemReward(ctx context.Context, userID, rewardID, postID string) (*model.RewardRedemption, error) {
	return m.redeemFn(ctx, userID, rewardID, postID)
}

type testServices struct {
	events  *mockEventService
	visits  *mockVisitService
	games   *mockGameService
	coupons *mockCouponService
	rewards *mockRewardService
}

// setupTestApp mounts the full route table with identity injected in place of token auth.
func setupTestApp(identity middleware.Identity, svc testServices) *fiber.App {
	if svc.events == nil {
		svc.events = &mockEventService{}
	}
	if svc.visits == nil {
		svc.visits = &mockVisitService{}
	}
	if svc.games == nil {
		svc.games = &mockGameService{}
	}
	if svc.coupons == nil {
		svc.coupons = &mockCouponService{}
	}
	if svc.rewards == nil {
		svc.rewards = &mockRewardService{}
	}

	v := validator.New()
	app := fiber.New()
	Register(app, Handlers{
		Health:   NewHealthHandler(&mockPinger{}),
		Event:    NewEventHandler(svc.events, v),
		Visit:    NewVisitHandler(svc.visits, v),
		Game:     NewGameHandler(svc.games, v),
		Coupon:   NewCouponHandler(svc.coupons, v),
		Merchant: NewMerchantHandler(svc.coupons, v),
		Reward:   NewRewardHandler(svc.rewards, v),
	}, middleware.WithIdentity(identity), nil)
	return app
}

// doRequest sends a JSON request and decodes the JSON response into a map.
func doRequest(t *testing.T, app *fiber.App, method, path, body string) (int, map[string]any) {
	t.Helper()
	var reader io.Reader
	if body != "" {
		reader = bytes.NewBufferString(body)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req)
	require.NoError(t, err)
	defer func() {
		_ = resp.Body.Close()
	}()

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	var decoded map[string]any
	if len(raw) > 0 {
		require.NoError(t, json.Unmarshal(raw, &decoded), "body: %s", raw)
	}
	return resp.StatusCode, decoded
}
