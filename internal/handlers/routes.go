package handlers

import (
	"time"

	"github.com/gofiber/fiber/v2"
)

type Handlers struct {
	Rules    *RuleHandler
	Profiles *ProfileHandler
	Matches  *MatchHandler
	Bulk     *BulkHandler
}

// Register mounts the API under router. The health check is public, every
// other route requires caller identity.
func Register(router fiber.Router, h Handlers) {
	router.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status": "healthy",
			"time":   time.Now(),
		})
	})

	api := router.Group("", RequireCaller())

	api.Put("/jd/rule/:jobId", h.Rules.HandleSaveRules)
	api.Get("/jd/rule/:jobId", h.Rules.HandleGetRules)

	api.Post("/profiles", h.Profiles.HandleCreateProfile)
	api.Get("/profiles/:id", h.Profiles.HandleGetProfile)

	// static paths before /match/:id
	api.Post("/match", h.Matches.HandleMatch)
	api.Post("/match/keywords", h.Matches.HandleKeywordMatch)
	api.Get("/match/search", h.Matches.HandleSearch)
	api.Get("/match/search/export", h.Matches.HandleExport)

	api.Post("/match/bulk", h.Bulk.HandleCreate)
	api.Get("/match/bulk/:id", h.Bulk.HandleGet)
	api.Post("/match/bulk/:id/cancel", h.Bulk.HandleCancel)

	api.Get("/match/:id", h.Matches.HandleGetMatch)
}
