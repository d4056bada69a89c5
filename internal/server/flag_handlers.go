package server

import (
	"pawfeed/internal/middleware"

	"github.com/gofiber/fiber/v2"
)

// handleFeatureFlags returns configured feature flags and their evaluated
// state for the current identity. Anonymous callers see the raw flags with
// rollouts evaluated against the empty identity.
func (s *Server) handleFeatureFlags(c *fiber.Ctx) error {
	var identityID string
	if id, ok := middleware.IdentityFrom(c); ok {
		identityID = id.ID
	}

	if s.featureFlags == nil {
		return c.JSON(fiber.Map{
			"raw":       map[string]string{},
			"evaluated": map[string]bool{},
		})
	}

	return c.JSON(fiber.Map{
		"raw":       s.featureFlags.Raw(),
		"evaluated": s.featureFlags.Snapshot(identityID),
	})
}
