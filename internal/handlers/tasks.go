package handlers

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/summitapp/summit-api/internal/database"
	"github.com/summitapp/summit-api/internal/middleware"
	"github.com/summitapp/summit-api/internal/models"
	"github.com/summitapp/summit-api/internal/services"
)

// CreateTask persists a task template and, for repeating tasks, the whole
// occurrence series bounded by min(repeatUntil, goal deadline).
func CreateTask(c *fiber.Ctx) error {
	userID := middleware.GetUserID(c)

	var req models.CreateTaskRequest
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
	if req.ScheduledAt.IsZero() {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Scheduled date is required",
		})
	}
	if req.TimeOfDay == "" {
		req.TimeOfDay = models.TimeOfDayNotSet
	}
	if !models.ValidTimeOfDay(req.TimeOfDay) {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Time of day must be morning, afternoon, evening or not_set",
		})
	}
	if req.RepeatType == "" {
		req.RepeatType = models.RepeatNone
	}
	if !models.ValidRepeatType(req.RepeatType) {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Unknown repeat type",
		})
	}

	var goal models.Goal
	if err := database.DB.Where("id = ? AND user_id = ?", req.GoalID, userID).First(&goal).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "Goal not found",
		})
	}

	template := models.Task{
		GoalID:      goal.ID,
		UserID:      userID,
		Title:       req.Title,
		Description: req.Description,
		ScheduledAt: req.ScheduledAt,
		TimeOfDay:   req.TimeOfDay,
		RepeatType:  req.RepeatType,
		RepeatUntil: req.RepeatUntil,
	}

	series, truncated, err := services.Stats.OnTaskCreated(template, goal)
	if err != nil {
		return statsError(c, err, "Failed to create task")
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"tasks": series,
		// true when the bound precedes the first step: only the original
		// occurrence exists, surfaced as "no recurrence possible"
		"recurrenceTruncated": truncated,
	})
}

func GetGoalTasks(c *fiber.Ctx) error {
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

	var tasks []models.Task
	database.DB.Where("goal_id = ?", goalID).Order("scheduled_at ASC").Find(&tasks)

	return c.JSON(tasks)
}

// CompleteTask is the completion trigger: it marks the task done and fans
// the event out to stats, streaks and achievements. Completing an already
// completed task is a no-op.
func CompleteTask(c *fiber.Ctx) error {
	userID := middleware.GetUserID(c)
	taskID, err := parseID(c, "id")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid task ID",
		})
	}

	var req models.CompleteTaskRequest
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&req); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "Invalid request body",
			})
		}
	}
	completedAt := time.Now()
	if req.CompletedAt != nil {
		completedAt = *req.CompletedAt
	}

	task, events, err := services.Stats.OnTaskCompleted(taskID, userID, completedAt)
	if err != nil {
		return statsError(c, err, "Task not found")
	}

	return c.JSON(fiber.Map{
		"task":         task,
		"achievements": achievementEvents(events),
	})
}
