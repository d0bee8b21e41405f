package handler

import (
	"context"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"

	"github.com/Jsun-cre8bara/eatsrun-api/internal/model"
)

// RewardServiceInterface defines the stamp and reward operations used over HTTP.
type RewardServiceInterface interface {
	StampStatus(ctx context.Context, userID, eventID string) (*model.StampStatus, error)
	ComputeClaimable(ctx context.Context, userID, eventID string) ([]model.RewardTemplate, error)
	ListRewards(ctx context.Context, userID, eventID string) ([]model.Reward, error)
	ClaimReward(ctx context.Context, userID, templateID string) (*model.Reward, error)
	RedeemReward(ctx context.Context, userID, rewardID, postID string) (*model.RewardRedemption, error)
}

// RewardHandler handles stamp progress and tier rewards.
type RewardHandler struct {
	service   RewardServiceInterface
	validator *validator.Validate
}

// NewRewardHandler creates a new RewardHandler with the given service and validator.
func NewRewardHandler(svc RewardServiceInterface, v *validator.Validate) *RewardHandler {
	return &RewardHandler{service: svc, validator: v}
}

// StampStatus handles GET /api/events/:id/stamps.
func (h *RewardHandler) StampStatus(c *fiber.Ctx) error {
	identity, ok := caller(c)
	if !ok {
		return missingIdentity(c)
	}
	eventID, ok := uuidParam(c, "id")
	if !ok {
		return badRequest(c, "invalid request: event id must be a UUID")
	}

	status, err := h.service.StampStatus(c.UserContext(), identity.UserID, eventID)
	if err != nil {
		return writeServiceError(c, err, "get stamp status")
	}
	return c.JSON(status)
}

// Claimable handles GET /api/events/:id/rewards/claimable.
func (h *RewardHandler) Claimable(c *fiber.Ctx) error {
	identity, ok := caller(c)
	if !ok {
		return missingIdentity(c)
	}
	eventID, ok := uuidParam(c, "id")
	if !ok {
		return badRequest(c, "invalid request: event id must be a UUID")
	}

	templates, err := h.service.ComputeClaimable(c.UserContext(), identity.UserID, eventID)
	if err != nil {
		return writeServiceError(c, err, "compute claimable rewards")
	}
	return c.JSON(fiber.Map{"claimable_rewards": templates})
}

// ListRewards handles GET /api/events/:id/rewards.
func (h *RewardHandler) ListRewards(c *fiber.Ctx) error {
	identity, ok := caller(c)
	if !ok {
		return missingIdentity(c)
	}
	eventID, ok := uuidParam(c, "id")
	if !ok {
		return badRequest(c, "invalid request: event id must be a UUID")
	}

	rewards, err := h.service.ListRewards(c.UserContext(), identity.UserID, eventID)
	if err != nil {
		return writeServiceError(c, err, "list rewards")
	}
	return c.JSON(fiber.Map{"rewards": rewards})
}

// ClaimReward handles POST /api/rewards/templates/:id/claim.
func (h *RewardHandler) ClaimReward(c *fiber.Ctx) error {
	identity, ok := caller(c)
	if !ok {
		return missingIdentity(c)
	}
	templateID, ok := uuidParam(c, "id")
	if !ok {
		return badRequest(c, "invalid request: template id must be a UUID")
	}

	reward, err := h.service.ClaimReward(c.UserContext(), identity.UserID, templateID)
	if err != nil {
		return writeServiceError(c, err, "claim reward")
	}

	log.Info().
		Str("request_id", requestID(c)).
		Str("user_id", identity.UserID).
		Str("reward_id", reward.ID).
		Str("tier", string(reward.Tier)).
		Msg("reward claimed")

	return c.Status(fiber.StatusCreated).JSON(reward)
}

// RedeemReward handles POST /api/rewards/:id/redeem.
func (h *RewardHandler) RedeemReward(c *fiber.Ctx) error {
	identity, ok := caller(c)
	if !ok {
		return missingIdentity(c)
	}
	rewardID, ok := uuidParam(c, "id")
	if !ok {
		return badRequest(c, "invalid request: reward id must be a UUID")
	}

	var req model.RedeemRewardRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "invalid request body")
	}
	if err := h.validator.Struct(req); err != nil {
		return badRequest(c, formatValidationError(err))
	}

	redemption, err := h.service.RedeemReward(c.UserContext(), identity.UserID, rewardID, req.PostID)
	if err != nil {
		return writeServiceError(c, err, "redeem reward")
	}

	log.Info().
		Str("request_id", requestID(c)).
		Str("user_id", identity.UserID).
		Str("reward_id", rewardID).
		Str("post_id", req.PostID).
		Msg("reward redeemed")

	return c.JSON(redemption)
}
