package main // Entry point for the identity service

import (
	"log"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"

	"github.com/amitkrsingh19/parking-services/internal/config"
	"github.com/amitkrsingh19/parking-services/internal/database"
	"github.com/amitkrsingh19/parking-services/internal/handler"
	"github.com/amitkrsingh19/parking-services/internal/repository"
	"github.com/amitkrsingh19/parking-services/internal/router"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Printf("no .env file loaded: %v", err) // fine in containerized deployments
	}
	cfg := config.Load()

	db, err := database.Open(cfg)
	if err != nil {
		log.Fatalf("open database: %v", err)
	}
	defer db.Close()

	users := repository.NewUserRepo(db)
	auth := handler.NewAuthHandler(cfg, users)
	profile := handler.NewProfileHandler(cfg, users)

	e := echo.New()
	e.HideBanner = true
	router.RegisterRoutes(e)
	router.RegisterUserRoutes(e, auth, profile, cfg.JWTSecret)

	addr := ":" + cfg.Port
	log.Printf("user service listening on %s (env=%s)", addr, cfg.Env)
	if err := e.Start(addr); err != nil {
		log.Fatal(err)
	}
}
