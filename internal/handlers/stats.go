package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/summitapp/summit-api/internal/cache"
	"github.com/summitapp/summit-api/internal/database"
	"github.com/summitapp/summit-api/internal/middleware"
	"github.com/summitapp/summit-api/internal/models"
	"github.com/summitapp/summit-api/internal/services"
	"gorm.io/gorm"
)

// GetMyStats returns the user-scope snapshot, read through the cache. A user
// with no activity yet gets an empty row rather than a 404.
func GetMyStats(c *fiber.Ctx) error {
	userID := middleware.GetUserID(c)

	var stats models.UserStats
	key := cache.UserStatsKey(userID)
	if cache.GetSnapshot(key, &stats) {
		return c.JSON(stats)
	}

	err := database.DB.Where("user_id = ?", userID).First(&stats).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		stats = models.UserStats{UserID: userID}
	} else if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to load stats",
		})
	}

	cache.SetSnapshot(key, stats)
	return c.JSON(stats)
}

func GetGoalStats(c *fiber.Ctx) error {
	userID := middleware.GetUserID(c)
	goalID, err := parseID(c, "id")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid goal ID",
		})
	}

	var goal models.Goal
	if err := database.DB.Where("id = ? AND user_id = ?", goalID, userID).First(&goal).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "Goal not found",
		})
	}

	var stats models.GoalStats
	key := cache.GoalStatsKey(goalID)
	if cache.GetSnapshot(key, &stats) {
		return c.JSON(stats)
	}

	dbErr := database.DB.Where("goal_id = ?", goalID).First(&stats).Error
	if errors.Is(dbErr, gorm.ErrRecordNotFound) {
		stats = models.GoalStats{GoalID: goalID, UserID: userID}
	} else if dbErr != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to load stats",
		})
	}

	cache.SetSnapshot(key, stats)
	return c.JSON(stats)
}

// RecomputeStats is the administrative repair endpoint: a full fold over the
// user's task/goal history that replaces the incremental aggregates, prunes
// stranded future occurrences and reports whether anything had drifted.
func RecomputeStats(c *fiber.Ctx) error {
	userID := middleware.GetUserID(c)

	result, err := services.Stats.Recompute(userID)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Recompute failed",
		})
	}

	if result.AchievementsUpdated == nil {
		result.AchievementsUpdated = []services.AchievementEvent{}
	}
	return c.JSON(result)
}
