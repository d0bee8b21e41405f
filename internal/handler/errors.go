package handler

import (
	"errors"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/Jsun-cre8bara/eatsrun-api/internal/middleware"
	"github.com/Jsun-cre8bara/eatsrun-api/internal/service"
)

var kindStatus = map[service.Kind]int{
	service.KindNotFound:     fiber.StatusNotFound,
	service.KindBadRequest:   fiber.StatusBadRequest,
	service.KindConflict:     fiber.StatusConflict,
	service.KindForbidden:    fiber.StatusForbidden,
	service.KindUnauthorized: fiber.StatusUnauthorized,
}

// writeServiceError maps a service failure to its status code.
// Anything that is not a business failure is logged and hidden behind a 500.
func writeServiceError(c *fiber.Ctx, err error, action string) error {
	if status, ok := kindStatus[service.KindOf(err)]; ok {
		return c.Status(status).JSON(fiber.Map{"error": err.Error()})
	}

	log.Error().
		Err(err).
		Str("request_id", requestID(c)).
		Str("method", c.Method()).
		Str("path", c.Path()).
		Msg("failed to " + action)
	return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal server error"})
}

// formatValidationError converts validator errors into a client message naming the first bad field.
func formatValidationError(err error) string {
	var ve validator.ValidationErrors
	if !errors.As(err, &ve) || len(ve) == 0 {
		return "invalid request"
	}

	fe := ve[0]
	field := fe.Field()
	switch fe.Tag() {
	case "required":
		return "invalid request: " + field + " is required"
	case "notblank":
		return "invalid request: " + field + " cannot be whitespace only"
	case "max":
		return "invalid request: " + field + " exceeds maximum length of " + fe.Param()
	case "uuid":
		return "invalid request: " + field + " must be a UUID"
	case "gte", "lte":
		return "invalid request: " + field + " is out of range"
	case "category", "gametype", "couponstatus", "usertype":
		return "invalid request: " + field + " is not a known value"
	}
	return "invalid request: " + field + " is invalid"
}

func badRequest(c *fiber.Ctx, msg string) error {
	return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": msg})
}

// uuidParam returns the named route parameter when it is a UUID.
func uuidParam(c *fiber.Ctx, name string) (string, bool) {
	id := c.Params(name)
	if _, err := uuid.Parse(id); err != nil {
		return "", false
	}
	return id, true
}

// caller returns the authenticated identity. Routes are always mounted behind Auth.
func caller(c *fiber.Ctx) (middleware.Identity, bool) {
	return middleware.IdentityFrom(c)
}

func missingIdentity(c *fiber.Ctx) error {
	return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "missing identity"})
}

func requestID(c *fiber.Ctx) string {
	return c.GetRespHeader(fiber.HeaderXRequestID)
}
