package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/summitapp/summit-api/internal/services"
)

// statsError maps engine errors onto HTTP statuses: validation -> 400,
// exhausted update retries -> 409, unknown record -> 404.
func statsError(c *fiber.Ctx, err error, notFoundMsg string) error {
	switch {
	case errors.Is(err, services.ErrValidation):
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": err.Error(),
		})
	case errors.Is(err, services.ErrConflict):
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{
			"error": "Update conflicted with a concurrent request, please retry",
		})
	default:
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": notFoundMsg,
		})
	}
}

// achievementEvents keeps the JSON response shape stable when no milestone
// completed.
func achievementEvents(events []services.AchievementEvent) []services.AchievementEvent {
	if events == nil {
		return []services.AchievementEvent{}
	}
	return events
}
