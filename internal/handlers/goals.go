package handlers

import (
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/summitapp/summit-api/internal/database"
	"github.com/summitapp/summit-api/internal/middleware"
	"github.com/summitapp/summit-api/internal/models"
	"github.com/summitapp/summit-api/internal/services"
)

func parseID(c *fiber.Ctx, name string) (uint, error) {
	id, err := strconv.ParseUint(c.Params(name), 10, 32)
	return uint(id), err
}

func CreateGoal(c *fiber.Ctx) error {
	userID := middleware.GetUserID(c)

	var req models.CreateGoalRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}

	if req.Title == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Title is required",
		})
	}
	if !models.ValidGoalType(req.GoalType) {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Goal type must be short, medium or long",
		})
	}
	if req.Deadline.IsZero() {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Deadline is required",
		})
	}

	if req.ParentGoalID != nil {
		var parent models.Goal
		if err := database.DB.Where("id = ? AND user_id = ?", *req.ParentGoalID, userID).First(&parent).Error; err != nil {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"error": "Parent goal not found",
			})
		}
	}

	goal := models.Goal{
		UserID:       userID,
		ParentGoalID: req.ParentGoalID,
		Title:        req.Title,
		Description:  req.Description,
		GoalType:     req.GoalType,
		Deadline:     req.Deadline,
	}

	if err := database.DB.Create(&goal).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to create goal",
		})
	}

	return c.Status(fiber.StatusCreated).JSON(goal)
}

func UpdateGoal(c *fiber.Ctx) error {
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

	var req models.UpdateGoalRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}

	if req.Title != nil {
		goal.Title = *req.Title
	}
	if req.Description != nil {
		goal.Description = *req.Description
	}
	if req.GoalType != nil {
		if !models.ValidGoalType(*req.GoalType) {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "Goal type must be short, medium or long",
			})
		}
		goal.GoalType = *req.GoalType
	}
	if req.Deadline != nil {
		// Occurrences stranded beyond a shortened deadline are pruned by the
		// next recompute, not here.
		goal.Deadline = *req.Deadline
	}
	if req.ParentGoalID != nil {
		var siblings []models.Goal
		if err := database.DB.Where("user_id = ?", userID).Find(&siblings).Error; err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": "Failed to load goals",
			})
		}
		parentExists := false
		for _, g := range siblings {
			if g.ID == *req.ParentGoalID {
				parentExists = true
				break
			}
		}
		if !parentExists {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"error": "Parent goal not found",
			})
		}
		if services.WouldCreateCycle(siblings, goal.ID, *req.ParentGoalID) {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "Parent change would create a cycle",
			})
		}
		goal.ParentGoalID = req.ParentGoalID
	}

	if err := database.DB.Save(&goal).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to update goal",
		})
	}

	return c.JSON(goal)
}

// GetGoalTree returns the user's goal forest. Archived goals are hidden;
// corrupted goals (parent cycles or dangling parents) are demoted to roots
// and reported so the client can flag them for repair.
func GetGoalTree(c *fiber.Ctx) error {
	userID := middleware.GetUserID(c)

	var goals []models.Goal
	if err := database.DB.Where("user_id = ? AND is_archived = ?", userID, false).Find(&goals).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to load goals",
		})
	}

	roots, corrupted := services.BuildGoalForest(goals)
	if roots == nil {
		roots = []*services.GoalNode{}
	}
	if corrupted == nil {
		corrupted = []uint{}
	}

	return c.JSON(fiber.Map{
		"roots":            roots,
		"corruptedGoalIds": corrupted,
	})
}

func CompleteGoal(c *fiber.Ctx) error {
	userID := middleware.GetUserID(c)
	goalID, err := parseID(c, "id")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid goal ID",
		})
	}

	goal, events, err := services.Stats.OnGoalCompleted(goalID, userID, time.Now())
	if err != nil {
		return statsError(c, err, "Goal not found")
	}

	return c.JSON(fiber.Map{
		"goal":         goal,
		"achievements": achievementEvents(events),
	})
}

func ArchiveGoal(c *fiber.Ctx) error {
	userID := middleware.GetUserID(c)
	goalID, err := parseID(c, "id")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid goal ID",
		})
	}

	goal, err := services.Stats.OnGoalArchived(goalID, userID)
	if err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "Goal not found",
		})
	}

	return c.JSON(goal)
}
