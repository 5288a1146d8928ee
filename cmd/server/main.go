package main

import (
	"log"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"github.com/j-planelles/projecte-dam/internal/config"
	"github.com/j-planelles/projecte-dam/internal/database"
	"github.com/j-planelles/projecte-dam/internal/keys"
	"github.com/j-planelles/projecte-dam/internal/routes"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	if cfg.DBUrl == "" {
		log.Fatal("DB_URL is required")
	}
	if err := database.ConnectDB(cfg.DBUrl); err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer database.CloseDB()

	// Password transport keypair. Regenerated on every boot, so tokens
	// survive a restart but in-flight login attempts do not.
	keyService, err := keys.NewKeyService()
	if err != nil {
		log.Fatalf("Failed to generate RSA keypair: %v", err)
	}

	app := fiber.New()

	app.Use(cors.New())
	app.Use(logger.New())
	app.Use(recover.New())

	routes.RegisterRoutes(app, cfg, database.DB, keyService)

	log.Printf("%s starting on port %s", cfg.ServerName, cfg.Port)
	if err := app.Listen(":" + cfg.Port); err != nil {
		log.Fatalf("Server failed to start: %v", err)
	}
}
