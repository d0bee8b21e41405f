package handler

import (
	"context"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"github.com/Jsun-cre8bara/eatsrun-api/internal/model"
)

// CouponServiceInterface defines the coupon operations used over HTTP.
type CouponServiceInterface interface {
	ListCoupons(ctx context.Context, userID string, filter model.CouponFilter) ([]model.Coupon, error)
	GetCoupon(ctx context.Context, userID, couponID string) (*model.CouponDetail, error)
	ValidateCoupon(ctx context.Context, merchantID, code string) (*model.CouponValidation, error)
	UseCoupon(ctx context.Context, merchantID, couponID string) (*model.CouponUsage, error)
	UsageHistory(ctx context.Context, merchantID, eventID string) ([]model.CouponUsageRecord, error)
}

// CouponHandler handles the coupon wallet of a user.
type CouponHandler struct {
	service   CouponServiceInterface
	validator *validator.Validate
}

// NewCouponHandler creates a new CouponHandler with the given service and validator.
func NewCouponHandler(svc CouponServiceInterface, v *validator.Validate) *CouponHandler {
	return &CouponHandler{service: svc, validator: v}
}

// ListCoupons handles GET /api/coupons with optional event_id, status and category filters.
func (h *CouponHandler) ListCoupons(c *fiber.Ctx) error {
	identity, ok := caller(c)
	if !ok {
		return missingIdentity(c)
	}

	var filter model.CouponFilter
	if err := c.QueryParser(&filter); err != nil {
		return badRequest(c, "invalid query parameters")
	}
	if err := h.validator.Struct(filter); err != nil {
		return badRequest(c, formatValidationError(err))
	}

	coupons, err := h.service.ListCoupons(c.UserContext(), identity.UserID, filter)
	if err != nil {
		return writeServiceError(c, err, "list coupons")
	}
	return c.JSON(fiber.Map{"coupons": coupons})
}

// GetCoupon handles GET /api/coupons/:id. Only the owner may read a coupon.
func (h *CouponHandler) GetCoupon(c *fiber.Ctx) error {
	identity, ok := caller(c)
	if !ok {
		return missingIdentity(c)
	}
	couponID, ok := uuidParam(c, "id")
	if !ok {
		return badRequest(c, "invalid request: coupon id must be a UUID")
	}

	detail, err := h.service.GetCoupon(c.UserContext(), identity.UserID, couponID)
	if err != nil {
		return writeServiceError(c, err, "get coupon")
	}
	return c.JSON(detail)
}
