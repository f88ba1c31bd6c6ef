package handlers

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"alfredoptarigan/talent-matcher/internal/models"
)

const (
	HeaderUserID         = "X-User-ID"
	HeaderOrganizationID = "X-Organization-ID"

	callerKey = "caller"
)

// RequireCaller reads the caller identity set by the upstream gateway.
// Requests without it are rejected with 401.
func RequireCaller() fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID := strings.TrimSpace(c.Get(HeaderUserID))
		orgID := strings.TrimSpace(c.Get(HeaderOrganizationID))
		if userID == "" || orgID == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "X-User-ID and X-Organization-ID headers are required",
			})
		}

		c.Locals(callerKey, models.Caller{UserID: userID, OrganizationID: orgID})
		return c.Next()
	}
}

func callerFrom(c *fiber.Ctx) models.Caller {
	caller, _ := c.Locals(callerKey).(models.Caller)
	return caller
}
