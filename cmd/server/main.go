package main

import (
	"context"
	"time"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"

	"github.com/jrosariodev/cultural-center-api/internal/config"
	"github.com/jrosariodev/cultural-center-api/internal/database"
	"github.com/jrosariodev/cultural-center-api/internal/handler"
	"github.com/jrosariodev/cultural-center-api/internal/logger"
	"github.com/jrosariodev/cultural-center-api/internal/mailer"
	appmw "github.com/jrosariodev/cultural-center-api/internal/middleware"
	"github.com/jrosariodev/cultural-center-api/internal/queue"
	"github.com/jrosariodev/cultural-center-api/internal/repository"
	"github.com/jrosariodev/cultural-center-api/internal/router"
	"github.com/jrosariodev/cultural-center-api/internal/service"
)

func main() {
	_ = godotenv.Load() // .env is optional, real env wins

	cfg := config.Load()
	log := logger.New(cfg.Env)

	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		log.Fatal().Err(err).Msg("database connect failed")
	}
	defer db.Close()
	log.Info().Str("host", cfg.DBHost).Str("db", cfg.DBName).Msg("database connected")

	if cfg.MigrationsDir != "" {
		if err := database.MigrateUp(db, cfg.MigrationsDir); err != nil {
			log.Fatal().Err(err).Msg("migration failed")
		}
		log.Info().Str("dir", cfg.MigrationsDir).Msg("migrations applied")
	}

	rdb := config.NewRedisClient()
	if rdb == nil {
		log.Warn().Msg("redis unavailable, rate limiting and stats cache disabled")
	}

	users := repository.NewUserRepo(db)
	events := repository.NewEventRepo(db)
	reservations := repository.NewReservationRepo(db)
	tokens := repository.NewTokenRepo(db)
	stats := repository.NewStatsRepo(db)

	go service.PurgeTokens(context.Background(), tokens, time.Hour, log)

	var notifier service.Notifier
	if cfg.AMQPURL != "" {
		notifier = queue.NewPublisher(cfg.AMQPURL, log)
		m := mailer.New(cfg.SMTPAddr, cfg.SMTPFrom, cfg.SMTPPass, log)
		go queue.NewConsumer(cfg.AMQPURL, m, log).Run()
		log.Info().Msg("reservation notifications enabled")
	} else {
		log.Warn().Msg("RABBITMQ_URL unset, reservation notifications disabled")
	}

	reservationSvc := service.NewReservationService(reservations, users, events, notifier, log)
	checkinSvc := service.NewCheckinService(reservations, users, events, log)
	statsSvc := service.NewStatsService(stats, rdb, log)

	e := echo.New()
	e.HideBanner = true
	e.Use(echomw.Recover())
	e.Use(echomw.RequestID())

	rateLimit := appmw.NewTokenBucket(config.LoadRateLimitConfig(), rdb)

	router.Register(e, router.Handlers{
		Health:       handler.NewHealth(db),
		Auth:         handler.NewAuthHandler(cfg, users, tokens),
		Events:       handler.NewEventHandler(events),
		AdminEvents:  handler.NewAdminEventHandler(events, reservations, statsSvc),
		Reservations: handler.NewReservationHandler(reservationSvc),
		Checkin:      handler.NewCheckinHandler(checkinSvc),
		Dashboard:    handler.NewDashboardHandler(statsSvc),
		AdminUsers:   handler.NewAdminUserHandler(users, tokens),
	}, cfg.JWTSecret, rateLimit)

	addr := ":" + cfg.Port
	log.Info().Str("addr", addr).Str("env", cfg.Env).Msg("listening")
	if err := e.Start(addr); err != nil {
		log.Fatal().Err(err).Msg("server stopped")
	}
}
