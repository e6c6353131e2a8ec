package main

import (
	"log"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/joho/godotenv"
	"github.com/summitapp/summit-api/internal/cache"
	"github.com/summitapp/summit-api/internal/config"
	"github.com/summitapp/summit-api/internal/database"
	"github.com/summitapp/summit-api/internal/routes"
	"github.com/summitapp/summit-api/internal/services"
)

func main() {
	// .env is optional, env vars win either way
	_ = godotenv.Load()

	cfg := config.Load()

	if err := config.InitLogger(cfg.LogFile); err != nil {
		log.Fatalf("failed to initialize logger: %v", err)
	}
	defer config.Logger.Sync()

	if err := database.Connect(cfg); err != nil {
		config.Logger.Fatalf("failed to connect database: %v", err)
	}
	if err := database.Migrate(); err != nil {
		config.Logger.Fatalf("failed to migrate database: %v", err)
	}

	if err := cache.Init(cfg); err != nil {
		config.Logger.Fatalf("failed to connect cache: %v", err)
	}

	services.InitStats(database.DB)

	app := fiber.New()
	app.Use(cors.New())

	routes.Setup(app)

	config.Logger.Infof("listening on :%s", cfg.Port)
	if err := app.Listen(":" + cfg.Port); err != nil {
		config.Logger.Fatalf("server stopped: %v", err)
	}
}
