package main // Entry point for the API gateway

import (
	"log"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"

	"github.com/amitkrsingh19/parking-services/internal/config"
	"github.com/amitkrsingh19/parking-services/internal/gateway"
	"github.com/amitkrsingh19/parking-services/internal/middleware"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Printf("no .env file loaded: %v", err)
	}
	cfg := config.LoadGateway()

	rlCfg := config.LoadRateLimitConfig()
	rdb := config.NewRedisClient()
	limiter := middleware.NewTokenBucket(rlCfg, rdb)

	e := echo.New()
	e.HideBanner = true
	gateway.RegisterRoutes(e, gateway.NewProxy(), cfg, limiter)

	addr := ":" + cfg.Port
	log.Printf("gateway listening on %s (env=%s)", addr, cfg.Env)
	if err := e.Start(addr); err != nil {
		log.Fatal(err)
	}
}
