package handler

import (
	"context"
	"strconv"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"

	"github.com/Jsun-cre8bara/eatsrun-api/internal/model"
)

// EventServiceInterface defines the participation operations used over HTTP.
type EventServiceInterface interface {
	JoinEvent(ctx context.Context, userID, eventID string, userType model.UserType) (*model.JoinResult, error)
	MyStatus(ctx context.Context, userID, eventID string) (*model.MyEventStatus, error)
	VerifyFinish(ctx context.Context, userID, eventID, code string) (*model.FinishResult, error)
	ListPosts(ctx context.Context, userID, eventID string, filter model.PostFilter) ([]model.PostListing, error)
}

// EventHandler handles joining an event and the participant's view of it.
type EventHandler struct {
	service   EventServiceInterface
	validator *validator.Validate
}

// NewEventHandler creates a new EventHandler with the given service and validator.
func NewEventHandler(svc EventServiceInterface, v *validator.Validate) *EventHandler {
	return &EventHandler{service: svc, validator: v}
}

// JoinEvent handles POST /api/events/:id/join.
func (h *EventHandler) JoinEvent(c *fiber.Ctx) error {
	identity, ok := caller(c)
	if !ok {
		return missingIdentity(c)
	}
	eventID, ok := uuidParam(c, "id")
	if !ok {
		return badRequest(c, "invalid request: event id must be a UUID")
	}

	var req model.JoinEventRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "invalid request body")
	}
	if err := h.validator.Struct(req); err != nil {
		return badRequest(c, formatValidationError(err))
	}

	res, err := h.service.JoinEvent(c.UserContext(), identity.UserID, eventID, req.UserType)
	if err != nil {
		return writeServiceError(c, err, "join event")
	}

	log.Info().
		Str("request_id", requestID(c)).
		Str("user_id", identity.UserID).
		Str("event_id", eventID).
		Str("user_type", string(req.UserType)).
		Msg("event joined")

	return c.Status(fiber.StatusCreated).JSON(res)
}

// MyStatus handles GET /api/events/:id/my-status.
func (h *EventHandler) MyStatus(c *fiber.Ctx) error {
	identity, ok := caller(c)
	if !ok {
		return missingIdentity(c)
	}
	eventID, ok := uuidParam(c, "id")
	if !ok {
		return badRequest(c, "invalid request: event id must be a UUID")
	}

	status, err := h.service.MyStatus(c.UserContext(), identity.UserID, eventID)
	if err != nil {
		return writeServiceError(c, err, "get event status")
	}
	return c.JSON(status)
}

// VerifyFinish handles POST /api/events/:id/finish.
func (h *EventHandler) VerifyFinish(c *fiber.Ctx) error {
	identity, ok := caller(c)
	if !ok {
		return missingIdentity(c)
	}
	eventID, ok := uuidParam(c, "id")
	if !ok {
		return badRequest(c, "invalid request: event id must be a UUID")
	}

	var req model.FinishRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "invalid request body")
	}
	if err := h.validator.Struct(req); err != nil {
		return badRequest(c, formatValidationError(err))
	}

	res, err := h.service.VerifyFinish(c.UserContext(), identity.UserID, eventID, req.FinishCode)
	if err != nil {
		return writeServiceError(c, err, "verify finish")
	}

	log.Info().
		Str("request_id", requestID(c)).
		Str("user_id", identity.UserID).
		Str("event_id", eventID).
		Msg("runner finish verified")

	return c.JSON(res)
}

// ListPosts handles GET /api/events/:id/posts with optional category and visited filters.
func (h *EventHandler) ListPosts(c *fiber.Ctx) error {
	identity, ok := caller(c)
	if !ok {
		return missingIdentity(c)
	}
	eventID, ok := uuidParam(c, "id")
	if !ok {
		return badRequest(c, "invalid request: event id must be a UUID")
	}

	var filter model.PostFilter
	if err := c.QueryParser(&filter); err != nil {
		return badRequest(c, "invalid query parameters")
	}
	if raw := c.Query("visited"); raw != "" {
		visited, err := strconv.ParseBool(raw)
		if err != nil {
			return badRequest(c, "invalid request: visited must be true or false")
		}
		filter.Visited = &visited
	}
	if err := h.validator.Struct(filter); err != nil {
		return badRequest(c, formatValidationError(err))
	}

	posts, err := h.service.ListPosts(c.UserContext(), identity.UserID, eventID, filter)
	if err != nil {
		return writeServiceError(c, err, "list posts")
	}
	return c.JSON(fiber.Map{"posts": posts})
}
