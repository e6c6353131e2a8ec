package routes

import (
	"github.com/gofiber/fiber/v2"
	"github.com/summitapp/summit-api/internal/handlers"
	"github.com/summitapp/summit-api/internal/middleware"
)

func Setup(app *fiber.App) {
	api := app.Group("/api")

	auth := api.Group("/auth")
	auth.Post("/register", handlers.Register)
	auth.Post("/login", handlers.Login)

	protected := api.Group("/", middleware.Protected())

	protected.Get("/me", handlers.GetMe)

	goals := protected.Group("/goals")
	goals.Post("/", handlers.CreateGoal)
	goals.Get("/tree", handlers.GetGoalTree)
	goals.Put("/:id", handlers.UpdateGoal)
	goals.Post("/:id/complete", handlers.CompleteGoal)
	goals.Post("/:id/archive", handlers.ArchiveGoal)
	goals.Get("/:id/tasks", handlers.GetGoalTasks)
	goals.Get("/:id/stats", handlers.GetGoalStats)

	tasks := protected.Group("/tasks")
	tasks.Post("/", handlers.CreateTask)
	tasks.Post("/:id/complete", handlers.CompleteTask)

	stats := protected.Group("/stats")
	stats.Get("/me", handlers.GetMyStats)
	stats.Post("/recompute", handlers.RecomputeStats)

	protected.Get("/achievements", handlers.GetAchievements)

	notifications := protected.Group("/notifications")
	notifications.Get("/", handlers.GetNotifications)
	notifications.Put("/:id/read", handlers.MarkNotificationRead)
}
