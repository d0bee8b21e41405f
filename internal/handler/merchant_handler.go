package handler

import (
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/Jsun-cre8bara/eatsrun-api/internal/model"
)

// MerchantHandler handles coupon redemption at a merchant counter.
type MerchantHandler struct {
	service   CouponServiceInterface
	validator *validator.Validate
}

// NewMerchantHandler creates a new MerchantHandler with the given service and validator.
func NewMerchantHandler(svc CouponServiceInterface, v *validator.Validate) *MerchantHandler {
	return &MerchantHandler{service: svc, validator: v}
}

func merchantRequired(c *fiber.Ctx) error {
	return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "merchant account required"})
}

// ValidateCoupon handles POST /api/merchant/coupons/validate.
// A coupon that cannot be redeemed is still a 200 with valid=false and a reason.
func (h *MerchantHandler) ValidateCoupon(c *fiber.Ctx) error {
	identity, ok := caller(c)
	if !ok {
		return missingIdentity(c)
	}
	if identity.MerchantID == "" {
		return merchantRequired(c)
	}
	merchant := identity.MerchantID

	var req model.ValidateCouponRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "invalid request body")
	}
	if err := h.validator.Struct(req); err != nil {
		return badRequest(c, formatValidationError(err))
	}

	result, err := h.service.ValidateCoupon(c.UserContext(), merchant, req.Code)
	if err != nil {
		return writeServiceError(c, err, "validate coupon")
	}
	return c.JSON(result)
}

// UseCoupon handles POST /api/merchant/coupons/:id/use.
func (h *MerchantHandler) UseCoupon(c *fiber.Ctx) error {
	identity, ok := caller(c)
	if !ok {
		return missingIdentity(c)
	}
	if identity.MerchantID == "" {
		return merchantRequired(c)
	}
	merchant := identity.MerchantID
	couponID, ok := uuidParam(c, "id")
	if !ok {
		return badRequest(c, "invalid request: coupon id must be a UUID")
	}

	usage, err := h.service.UseCoupon(c.UserContext(), merchant, couponID)
	if err != nil {
		return writeServiceError(c, err, "use coupon")
	}

	log.Info().
		Str("request_id", requestID(c)).
		Str("merchant_id", merchant).
		Str("coupon_id", couponID).
		Int("discount_amount", usage.DiscountAmount).
		Msg("coupon used")

	return c.JSON(usage)
}

// UsageHistory handles GET /api/merchant/coupons with an optional event_id filter.
func (h *MerchantHandler) UsageHistory(c *fiber.Ctx) error {
	identity, ok := caller(c)
	if !ok {
		return missingIdentity(c)
	}
	if identity.MerchantID == "" {
		return merchantRequired(c)
	}
	merchant := identity.MerchantID
	eventID := c.Query("event_id")
	if eventID != "" {
		if _, err := uuid.Parse(eventID); err != nil {
			return badRequest(c, "invalid request: event_id must be a UUID")
		}
	}

	records, err := h.service.UsageHistory(c.UserContext(), merchant, eventID)
	if err != nil {
		return writeServiceError(c, err, "list coupon usage")
	}
	return c.JSON(fiber.Map{"coupons": records})
}
