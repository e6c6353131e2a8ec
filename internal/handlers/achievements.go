package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/summitapp/summit-api/internal/database"
	"github.com/summitapp/summit-api/internal/middleware"
	"github.com/summitapp/summit-api/internal/models"
)

// GetAchievements lists the user's achievements, optionally filtered by
// milestone type and completion state.
func GetAchievements(c *fiber.Ctx) error {
	userID := middleware.GetUserID(c)

	query := database.DB.Where("user_id = ?", userID)

	if t := c.Query("type"); t != "" {
		if !models.ValidMilestoneType(t) {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "Unknown milestone type",
			})
		}
		query = query.Where("type = ?", t)
	}

	if completed := c.Query("completed"); completed != "" {
		switch completed {
		case "true":
			query = query.Where("is_completed = ?", true)
		case "false":
			query = query.Where("is_completed = ?", false)
		default:
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "completed must be true or false",
			})
		}
	}

	var achievements []models.Achievement
	if err := query.Order("threshold ASC").Find(&achievements).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to load achievements",
		})
	}

	return c.JSON(achievements)
}
