// Package middleware holds the fiber middleware that sits in front of the handlers.
package middleware

import (
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// Role is the kind of caller a token was issued to.
type Role string

const (
	RoleUser     Role = "user"
	RoleMerchant Role = "merchant"
	RoleAdmin    Role = "admin"
)

const identityKey = "identity"

// Identity is the authenticated caller.
// MerchantID is only set for merchant tokens.
type Identity struct {
	UserID     string
	Role       Role
	MerchantID string
}

// Claims is the JWT payload issued by the auth service.
type Claims struct {
	Role       Role   `json:"role"`
	MerchantID string `json:"merchant_id,omitempty"`
	jwt.RegisteredClaims
}

// AuthConfig configures token verification.
type AuthConfig struct {
	Secret []byte
	// Issuer is checked when set.
	Issuer string
}

// Auth verifies the HS256 bearer token and stores the caller's Identity.
func Auth(cfg AuthConfig) fiber.Handler {
	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
	}
	if cfg.Issuer != "" {
		opts = append(opts, jwt.WithIssuer(cfg.Issuer))
	}
	parser := jwt.NewParser(opts...)
	keyFunc := func(*jwt.Token) (any, error) { return cfg.Secret, nil }

	return func(c *fiber.Ctx) error {
		raw, ok := bearerToken(c.Get(fiber.HeaderAuthorization))
		if !ok {
			return unauthorized(c, "missing bearer token")
		}

		var claims Claims
		if _, err := parser.ParseWithClaims(raw, &claims, keyFunc); err != nil {
			log.Debug().Err(err).Str("path", c.Path()).Msg("rejected bearer token")
			if errors.Is(err, jwt.ErrTokenExpired) {
				return unauthorized(c, "token expired")
			}
			return unauthorized(c, "invalid token")
		}

		identity, err := identityFromClaims(&claims)
		if err != nil {
			return unauthorized(c, err.Error())
		}
		c.Locals(identityKey, identity)
		return c.Next()
	}
}

// RequireRole rejects callers whose role is not one of roles with 403.
// It must run after Auth.
func RequireRole(roles ...Role) fiber.Handler {
	return func(c *fiber.Ctx) error {
		identity, ok := IdentityFrom(c)
		if !ok {
			return unauthorized(c, "missing identity")
		}
		for _, r := range roles {
			if identity.Role == r {
				return c.Next()
			}
		}
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "insufficient role"})
	}
}

// IdentityFrom returns the caller stored by Auth.
func IdentityFrom(c *fiber.Ctx) (Identity, bool) {
	identity, ok := c.Locals(identityKey).(Identity)
	return identity, ok
}

// WithIdentity stores identity on the request.
// Handler tests use it in place of Auth.
func WithIdentity(identity Identity) fiber.Handler {
	return func(c *fiber.Ctx) error {
		c.Locals(identityKey, identity)
		return c.Next()
	}
}

func identityFromClaims(claims *Claims) (Identity, error) {
	if _, err := uuid.Parse(claims.Subject); err != nil {
		return Identity{}, errors.New("invalid subject")
	}
	switch claims.Role {
	case RoleUser, RoleAdmin:
	case RoleMerchant:
		if _, err := uuid.Parse(claims.MerchantID); err != nil {
			return Identity{}, errors.New("merchant token without merchant id")
		}
	default:
		return Identity{}, errors.New("unknown role")
	}
	return Identity{UserID: claims.Subject, Role: claims.Role, MerchantID: claims.MerchantID}, nil
}

func bearerToken(header string) (string, bool) {
	scheme, token, ok := strings.Cut(header, " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}

func unauthorized(c *fiber.Ctx, msg string) error {
	return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": msg})
}
