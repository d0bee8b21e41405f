package handler

import (
	"context"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"

	"github.com/Jsun-cre8bara/eatsrun-api/internal/minigame"
	"github.com/Jsun-cre8bara/eatsrun-api/internal/model"
)

// GameServiceInterface defines the minigame and issuance operations used over HTTP.
type GameServiceInterface interface {
	ResolveGame(ctx context.Context, userID, visitID string, kind model.GameType) (*minigame.Result, error)
	IssueCoupon(ctx context.Context, userID, visitID string, category model.Category, kind model.GameType) (*model.IssuedCoupon, error)
}

// GameHandler handles the minigame played after a visit.
type GameHandler struct {
	service   GameServiceInterface
	validator *validator.Validate
}

// NewGameHandler creates a new GameHandler with the given service and validator.
func NewGameHandler(svc GameServiceInterface, v *validator.Validate) *GameHandler {
	return &GameHandler{service: svc, validator: v}
}

// Play handles POST /api/games/:id/play, where :id is the visit id.
// The draw is advisory and can be repeated until a category is selected.
func (h *GameHandler) Play(c *fiber.Ctx) error {
	identity, ok := caller(c)
	if !ok {
		return missingIdentity(c)
	}
	visitID, ok := uuidParam(c, "id")
	if !ok {
		return badRequest(c, "invalid request: game id must be a UUID")
	}

	var req model.PlayGameRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "invalid request body")
	}
	if err := h.validator.Struct(req); err != nil {
		return badRequest(c, formatValidationError(err))
	}

	result, err := h.service.ResolveGame(c.UserContext(), identity.UserID, visitID, req.GameType)
	if err != nil {
		return writeServiceError(c, err, "resolve game")
	}
	return c.JSON(result)
}

// SelectCategory handles POST /api/games/:id/select-category and issues the coupon.
func (h *GameHandler) SelectCategory(c *fiber.Ctx) error {
	identity, ok := caller(c)
	if !ok {
		return missingIdentity(c)
	}
	visitID, ok := uuidParam(c, "id")
	if !ok {
		return badRequest(c, "invalid request: game id must be a UUID")
	}

	var req model.SelectCategoryRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "invalid request body")
	}
	if err := h.validator.Struct(req); err != nil {
		return badRequest(c, formatValidationError(err))
	}

	issued, err := h.service.IssueCoupon(c.UserContext(), identity.UserID, visitID, req.Category, req.GameType)
	if err != nil {
		return writeServiceError(c, err, "issue coupon")
	}

	log.Info().
		Str("request_id", requestID(c)).
		Str("user_id", identity.UserID).
		Str("visit_id", visitID).
		Str("coupon_id", issued.Coupon.ID).
		Str("category", string(issued.Coupon.Category)).
		Msg("coupon issued")

	return c.Status(fiber.StatusCreated).JSON(issued)
}
