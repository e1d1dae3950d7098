package main

import (
	"log"
	"log/slog"
	"os"

	"github.com/gin-gonic/gin"

	"booktrack/internal/config"
	"booktrack/internal/cover"
	"booktrack/internal/db"
	"booktrack/internal/handler"
	"booktrack/internal/model"
	"booktrack/internal/repository"
)

func main() {
	cfg := config.Load()

	gin.SetMode(cfg.GinMode)

	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))

	database, err := db.Connect(cfg, logger)
	if err != nil {
		log.Fatalf("could not connect to database: %v", err)
	}

	if err := database.AutoMigrate(&model.Book{}); err != nil {
		log.Fatalf("could not run migrations: %v", err)
	}

	e := gin.Default()

	e.SetTrustedProxies([]string{
		"127.0.0.1",
		"::1",
	})

	healthHandler := handler.NewHealthHandler(database)
	healthHandler.RegisterRoutes(e)

	bookRepo := repository.NewGormBookRepository(database)
	coverClient := cover.NewClient(cfg.CoverAPIURL, logger)

	bookHandler := handler.NewBookHandler(bookRepo, coverClient)
	bookHandler.RegisterRoutes(e.Group(""))

	e.NoRoute(handler.NoRoute)

	if err := e.Run(":" + cfg.Port); err != nil {
		log.Fatalf("server stopped: %v", err)
	}
}
