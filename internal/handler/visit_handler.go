package handler

import (
	"context"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"

	"github.com/Jsun-cre8bara/eatsrun-api/internal/model"
)

// VisitServiceInterface defines the visit ledger operations used over HTTP.
type VisitServiceInterface interface {
	RecordVisit(ctx context.Context, userID, postID, code string, loc *model.Location) (*model.VisitResult, error)
}

// VisitHandler handles QR scans at posts.
type VisitHandler struct {
	service   VisitServiceInterface
	validator *validator.Validate
}

// NewVisitHandler creates a new VisitHandler with the given service and validator.
func NewVisitHandler(svc VisitServiceInterface, v *validator.Validate) *VisitHandler {
	return &VisitHandler{service: svc, validator: v}
}

// RecordVisit handles POST /api/posts/:id/visit.
func (h *VisitHandler) RecordVisit(c *fiber.Ctx) error {
	identity, ok := caller(c)
	if !ok {
		return missingIdentity(c)
	}
	postID, ok := uuidParam(c, "id")
	if !ok {
		return badRequest(c, "invalid request: post id must be a UUID")
	}

	var req model.VisitRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "invalid request body")
	}
	if err := h.validator.Struct(req); err != nil {
		return badRequest(c, formatValidationError(err))
	}

	result, err := h.service.RecordVisit(c.UserContext(), identity.UserID, postID, req.QRCode, req.Location())
	if err != nil {
		return writeServiceError(c, err, "record visit")
	}

	log.Info().
		Str("request_id", requestID(c)).
		Str("user_id", identity.UserID).
		Str("post_id", postID).
		Str("visit_id", result.VisitID).
		Bool("stamp_collected", result.StampCollected).
		Msg("visit recorded")

	return c.Status(fiber.StatusCreated).JSON(result)
}
