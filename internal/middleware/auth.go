// Package middleware provides authentication and request middleware for the application.
package middleware

import (
	"strings"

	"pawfeed/internal/config"
	"pawfeed/internal/identity"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
)

// identityLocal is the Fiber locals key carrying the caller's identity.
const identityLocal = "identity"

// moderatorRole is the token role claim granting resolve/delete privilege.
const moderatorRole = "moderator"

var cfg *config.Config

// InitMiddleware initializes authentication middleware with the given config.
func InitMiddleware(c *config.Config) {
	cfg = c
}

func parseIdentity(c *fiber.Ctx) (identity.Identity, bool, bool, error) {
	authHeader := c.Get("Authorization")
	if authHeader == "" {
		return identity.Identity{}, false, false, nil
	}

	parts := strings.Split(authHeader, " ")
	if len(parts) != 2 || parts[0] != "Bearer" {
		return identity.Identity{}, false, false, fiber.NewError(fiber.StatusUnauthorized, "Invalid authorization header format")
	}

	token, err := jwt.Parse(parts[1], func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fiber.NewError(fiber.StatusUnauthorized, "Invalid signing method")
		}
		return []byte(cfg.JWTSecret), nil
	})
	if err != nil || !token.Valid {
		return identity.Identity{}, false, false, fiber.NewError(fiber.StatusUnauthorized, "Invalid or expired token")
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return identity.Identity{}, false, false, fiber.NewError(fiber.StatusUnauthorized, "Invalid token claims")
	}
	sub, _ := claims["sub"].(string)
	if sub == "" {
		return identity.Identity{}, false, false, fiber.NewError(fiber.StatusUnauthorized, "Invalid token structure - missing subject")
	}

	id := identity.Identity{ID: sub}
	id.Email, _ = claims["email"].(string)
	id.DisplayName, _ = claims["name"].(string)
	id.PhotoRef, _ = claims["photo"].(string)
	role, _ := claims["role"].(string)
	return id, true, role == moderatorRole, nil
}

func attach(c *fiber.Ctx, id identity.Identity, privileged bool) {
	c.Locals(identityLocal, id)
	c.SetUserContext(identity.WithIdentity(c.UserContext(), id, privileged))
}

// AuthRequired enforces authentication for protected routes and attaches
// the caller's identity to the request context.
func AuthRequired(c *fiber.Ctx) error {
	id, present, privileged, err := parseIdentity(c)
	if err != nil {
		return err
	}
	if !present {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": "Authorization header required",
		})
	}
	attach(c, id, privileged)
	return c.Next()
}

// AuthOptional parses the identity when a token is present; anonymous
// requests pass through.
func AuthOptional(c *fiber.Ctx) error {
	id, present, privileged, err := parseIdentity(c)
	if err != nil {
		return err
	}
	if present {
		attach(c, id, privileged)
	}
	return c.Next()
}

// IdentityFrom returns the identity stored by AuthRequired/AuthOptional.
func IdentityFrom(c *fiber.Ctx) (identity.Identity, bool) {
	id, ok := c.Locals(identityLocal).(identity.Identity)
	return id, ok
}
