package main

import (
	"log"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"

	"github.com/healthlog/healthlog/internal/anthropic"
	"github.com/healthlog/healthlog/internal/config"
	"github.com/healthlog/healthlog/internal/database"
	"github.com/healthlog/healthlog/internal/handler"
	"github.com/healthlog/healthlog/internal/middleware"
	"github.com/healthlog/healthlog/internal/queue"
	"github.com/healthlog/healthlog/internal/repository"
	"github.com/healthlog/healthlog/internal/router"
)

func main() {
	// Missing .env is fine in deployed environments where real env vars
	// are set by the platform.
	if err := godotenv.Load(); err != nil {
		log.Printf("no .env file loaded: %v", err)
	}

	cfg := config.Load()

	db, err := database.Open(database.Config{
		User:            cfg.DBUser,
		Pass:            cfg.DBPass,
		Host:            cfg.DBHost,
		Port:            cfg.DBPort,
		Name:            cfg.DBName,
		MaxOpenConns:    cfg.DBMaxOpenConns,
		MaxIdleConns:    cfg.DBMaxIdleConns,
		ConnMaxLifetime: cfg.DBConnMaxLifetime,
	})
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	defer db.Close()

	ai, err := anthropic.NewClient(cfg.AnthropicKey, cfg.AnthropicModel)
	if err != nil {
		log.Fatalf("anthropic: %v", err)
	}

	users := repository.NewUserRepo(db)
	providers := repository.NewProviderRepo(db)
	symptoms := repository.NewSymptomRepo(db)
	medications := repository.NewMedicationRepo(db)
	visits := repository.NewVisitRepo(db)
	preps := repository.NewVisitPrepRepo(db)
	summaries := repository.NewVisitSummaryRepo(db)

	h := router.Handlers{
		Users:       handler.NewUserHandler(cfg, users),
		Providers:   handler.NewProviderHandler(providers),
		Symptoms:    handler.NewSymptomHandler(symptoms),
		Medications: handler.NewMedicationHandler(medications, providers, visits),
		Visits:      handler.NewVisitHandler(visits, providers, true),
		Preps:       handler.NewVisitPrepHandler(preps, visits, users),
		Summaries:   handler.NewVisitSummaryHandler(summaries, visits),
		Assistant:   handler.NewAssistantHandler(ai, visits, providers, symptoms, medications),
	}

	e := echo.New()
	e.HideBanner = true

	// The limiter degrades to a pass-through when redis is unreachable.
	rdb := config.NewRedisClient()
	if rdb == nil {
		log.Printf("redis unavailable, rate limiting disabled")
	}
	limiter := middleware.RateLimit(config.LoadRateLimitConfig(), rdb)

	router.Register(e, h, cfg.JWTSecret, limiter)

	// Background consumer writes completed-visit audit lines; it keeps
	// reconnecting on its own and never takes the API down.
	go func() {
		if err := queue.StartVisitConsumer(); err != nil {
			log.Printf("visit consumer stopped: %v", err)
		}
	}()

	addr := ":" + cfg.Port
	log.Printf("listening on %s (env=%s)", addr, cfg.Env)
	if err := e.Start(addr); err != nil {
		log.Fatal(err)
	}
}
