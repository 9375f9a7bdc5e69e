package main // Entry point for the inventory service

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
		log.Printf("no .env file loaded: %v", err)
	}
	cfg := config.Load()

	db, err := database.Open(cfg)
	if err != nil {
		log.Fatalf("open database: %v", err)
	}
	defer db.Close()

	stations := repository.NewStationRepo(db)
	slots := repository.NewSlotRepo(db)
	stationHandler := handler.NewStationHandler(stations)
	slotHandler := handler.NewSlotHandler(slots, stations)

	e := echo.New()
	e.HideBanner = true
	router.RegisterRoutes(e)
	router.RegisterParkingRoutes(e, stationHandler, slotHandler, cfg.JWTSecret)

	addr := ":" + cfg.Port
	log.Printf("parking service listening on %s (env=%s)", addr, cfg.Env)
	if err := e.Start(addr); err != nil {
		log.Fatal(err)
	}
}
