package handlers

import (
	"errors"
	"log"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"alfredoptarigan/talent-matcher/internal/models"
)

func badRequest(c *fiber.Ctx, msg string) error {
	return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
		"error": msg,
	})
}

// respondError maps domain errors to status codes. Anything unknown is
// logged and reported as 500.
func respondError(c *fiber.Ctx, err error) error {
	var validationErrs validator.ValidationErrors

	switch {
	case errors.Is(err, models.ErrRuleNotFound),
		errors.Is(err, models.ErrProfileNotFound),
		errors.Is(err, models.ErrMatchNotFound),
		errors.Is(err, models.ErrBulkRunNotFound):
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": err.Error(),
		})
	case errors.Is(err, models.ErrBulkRunNotCancellable),
		errors.Is(err, models.ErrImmutableRecord):
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{
			"error": err.Error(),
		})
	case errors.Is(err, models.ErrInvalidRuleSet), errors.As(err, &validationErrs):
		return badRequest(c, err.Error())
	}

	log.Printf("❌ %s %s failed: %v\n", c.Method(), c.Path(), err)
	return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
		"error": "Internal server error",
	})
}
