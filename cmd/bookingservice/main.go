package main // Entry point for the booking service

import (
	"log"
	"os"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"

	"github.com/amitkrsingh19/parking-services/internal/booking"
	"github.com/amitkrsingh19/parking-services/internal/config"
	"github.com/amitkrsingh19/parking-services/internal/database"
	"github.com/amitkrsingh19/parking-services/internal/handler"
	"github.com/amitkrsingh19/parking-services/internal/middleware"
	"github.com/amitkrsingh19/parking-services/internal/queue"
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

	slots := repository.NewSlotRepo(db)
	bookings := repository.NewBookingRepo(db)
	stations := repository.NewStationRepo(db)
	engine := booking.NewEngine(slots, bookings)

	publishEvents := os.Getenv("DISABLE_EVENTS") == ""
	bookingHandler := handler.NewBookingHandler(engine, publishEvents)
	adminHandler := handler.NewAdminBookingHandler(engine, bookings, stations)

	// Event log consumer runs alongside the HTTP server and reconnects
	// on its own; it never takes the service down.
	if publishEvents {
		go func() {
			if err := queue.StartBookingConsumer(); err != nil {
				log.Printf("booking consumer stopped: %v", err)
			}
		}()
	}

	rlCfg := config.LoadRateLimitConfig()
	rdb := config.NewRedisClient()
	limiter := middleware.NewTokenBucket(rlCfg, rdb)

	e := echo.New()
	e.HideBanner = true
	router.RegisterRoutes(e)
	router.RegisterBookingRoutes(e, bookingHandler, adminHandler, cfg.JWTSecret, limiter)

	addr := ":" + cfg.Port
	log.Printf("booking service listening on %s (env=%s)", addr, cfg.Env)
	if err := e.Start(addr); err != nil {
		log.Fatal(err)
	}
}
