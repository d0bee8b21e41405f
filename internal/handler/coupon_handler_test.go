package handler

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/Jsun-cre8bara/eatsrun-api/internal/model"
	"github.com/Jsun-cre8bara/eatsrun-api/internal/service"
)

func sampleCoupon() *model.Coupon {
	return &model.Coupon{
		ID:             testCouponID,
		UserID:         testUserID,
		EventID:        testEventID,
		TemplateID:     testTemplateID,
		TemplateName:   "5,000원 할인",
		Category:       model.CategoryRestaurant,
		Kind:           model.CouponKindDiscount5000,
		DiscountAmount: 5000,
		Code:           "AB12CD34",
		Status:         model.CouponStatusActive,
		ValidFrom:      time.Date(2025, 10, 9, 15, 0, 0, 0, time.UTC),
		ValidUntil:     time.Date(2025, 10, 12, 14, 59, 0, 0, time.UTC),
		CreatedAt:      time.Date(2025, 10, 10, 2, 0, 0, 0, time.UTC),
	}
}

func TestCouponHandler_ListCoupons(t *testing.T) {
	t.Run("passes filters through", func(t *testing.T) {
		var got model.CouponFilter
		svc := &mockCouponService{
			listFn: func(ctx context.Context, userID string, filter model.CouponFilter) ([]model.Coupon, error) {
				assert.Equal(t, testUserID, userID)
				got = filter
				return []model.Coupon{*sampleCoupon()}, nil
			},
		}
		app := setupTestApp(userIdentity, testServices{coupons: svc})

		status, body := doRequest(t, app, "GET", "/api/coupons?event_id="+testEventID+"&status=ACTIVE&category=RESTAURANT", "")

		assert.Equal(t, 200, status)
		assert.Equal(t, model.CouponFilter{
			EventID:  testEventID,
			Status:   model.CouponStatusActive,
			Category: model.CategoryRestaurant,
		}, got)
		coupons, ok := body["coupons"].([]any)
		assert.True(t, ok)
		assert.Len(t, coupons, 1)
	})

	t.Run("empty wallet is an empty list", func(t *testing.T) {
		svc := &mockCouponService{
			listFn: func(ctx context.Context, userID string, filter model.CouponFilter) ([]model.Coupon, error) {
				return []model.Coupon{}, nil
			},
		}
		app := setupTestApp(userIdentity, testServices{coupons: svc})

		status, body := doRequest(t, app, "GET", "/api/coupons", "")

		assert.Equal(t, 200, status)
		assert.Equal(t, []any{}, body["coupons"])
	})

	tests := []struct {
		name    string
		query   string
		wantMsg string
	}{
		{name: "unknown status", query: "?status=LOST", wantMsg: "invalid request: status is not a known value"},
		{name: "unknown category", query: "?category=BAR", wantMsg: "invalid request: category is not a known value"},
		{name: "malformed event id", query: "?event_id=nope", wantMsg: "invalid request: event_id must be a UUID"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			called := false
			svc := &mockCouponService{
				listFn: func(ctx context.Context, userID string, filter model.CouponFilter) ([]model.Coupon, error) {
					called = true
					return nil, nil
				},
			}
			app := setupTestApp(userIdentity, testServices{coupons: svc})

			status, body := doRequest(t, app, "GET", "/api/coupons"+tt.query, "")

			assert.False(t, called)
			assert.Equal(t, 400, status)
			assert.Equal(t, tt.wantMsg, body["error"])
		})
	}

	t.Run("service failure is hidden", func(t *testing.T) {
		svc := &mockCouponService{
			listFn: func(ctx context.Context, userID string, filter model.CouponFilter) ([]model.Coupon, error) {
				return nil, errors.New("connection reset")
			},
		}
		app := setupTestApp(userIdentity, testServices{coupons: svc})

		status, body := doRequest(t, app, "GET", "/api/coupons", "")

		assert.Equal(t, 500, status)
		assert.Equal(t, "internal server error", body["error"])
	})
}

func TestCouponHandler_GetCoupon(t *testing.T) {
	tests := []struct {
		name       string
		path       string
		err        error
		wantStatus int
		wantError  string
	}{
		{name: "owner reads coupon", path: "/api/coupons/" + testCouponID, wantStatus: 200},
		{name: "malformed id", path: "/api/coupons/abc", wantStatus: 400, wantError: "invalid request: coupon id must be a UUID"},
		{name: "not found", path: "/api/coupons/" + testCouponID, err: service.ErrCouponNotFound, wantStatus: 404, wantError: "coupon not found"},
		{name: "someone else's coupon", path: "/api/coupons/" + testCouponID, err: service.ErrCouponNotOwned, wantStatus: 403, wantError: "not your coupon"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := &mockCouponService{
				getFn: func(ctx context.Context, userID, couponID string) (*model.CouponDetail, error) {
					assert.Equal(t, testUserID, userID)
					assert.Equal(t, testCouponID, couponID)
					if tt.err != nil {
						return nil, tt.err
					}
					return &model.CouponDetail{
						Coupon:             sampleCoupon(),
						AvailableMerchants: []model.MerchantSummary{{ID: testMerchantID, Name: "국밥집", Address: "중앙로 1"}},
					}, nil
				},
			}
			app := setupTestApp(userIdentity, testServices{coupons: svc})

			status, body := doRequest(t, app, "GET", tt.path, "")

			assert.Equal(t, tt.wantStatus, status)
			if tt.wantError != "" {
				assert.Equal(t, tt.wantError, body["error"])
				return
			}
			assert.Equal(t, testCouponID, body["id"])
			assert.Equal(t, "AB12CD34", body["code"])
			merchants, ok := body["available_merchants"].([]any)
			assert.True(t, ok)
			assert.Len(t, merchants, 1)
		})
	}
}

func TestCouponHandler_MerchantCannotBrowseWallet(t *testing.T) {
	app := setupTestApp(merchantIdentity, testServices{})

	status, body := doRequest(t, app, "GET", "/api/coupons", "")

	assert.Equal(t, 403, status)
	assert.Equal(t, "insufficient role", body["error"])
}
