package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/Jsun-cre8bara/eatsrun-api/internal/cache"
	"github.com/Jsun-cre8bara/eatsrun-api/internal/config"
	"github.com/Jsun-cre8bara/eatsrun-api/internal/events"
	"github.com/Jsun-cre8bara/eatsrun-api/internal/handler"
	"github.com/Jsun-cre8bara/eatsrun-api/internal/middleware"
	"github.com/Jsun-cre8bara/eatsrun-api/internal/minigame"
	"github.com/Jsun-cre8bara/eatsrun-api/internal/repository"
	"github.com/Jsun-cre8bara/eatsrun-api/internal/scheduler"
	"github.com/Jsun-cre8bara/eatsrun-api/internal/service"
	"github.com/Jsun-cre8bara/eatsrun-api/internal/validator"
	"github.com/Jsun-cre8bara/eatsrun-api/pkg/database"
	"github.com/Jsun-cre8bara/eatsrun-api/pkg/redeemcode"
)

func main() {
	// A missing .env is fine; the environment wins over the file either way.
	envErr := godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}

	initLogger(cfg)
	if envErr != nil && !os.IsNotExist(envErr) {
		log.Warn().Err(envErr).Msg("failed to read .env file")
	}

	ctx := context.Background()

	// Initialize database pool with retry
	pool, err := database.NewPool(ctx, cfg.DB.DSN(), 5)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to database")
	}
	if cfg.DB.MigrateOnStart {
		if err := database.Migrate(ctx, pool); err != nil {
			log.Fatal().Err(err).Msg("failed to apply schema")
		}
		log.Info().Msg("schema applied")
	}

	loc, err := cfg.Business.Location()
	if err != nil {
		log.Fatal().Err(err).Msg("invalid business timezone")
	}

	rng, err := minigame.NewSource()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to seed minigame source")
	}

	var publisher service.Publisher = events.Noop{}
	var producer *events.Producer
	if cfg.Kafka.Enabled {
		producer, err = events.NewProducer(cfg.Kafka.Brokers, cfg.Kafka.Topic)
		if err != nil {
			log.Fatal().Err(err).Strs("brokers", cfg.Kafka.Brokers).Msg("failed to connect to kafka")
		}
		publisher = producer
		log.Info().Str("topic", cfg.Kafka.Topic).Msg("publishing domain events")
	}

	repos := service.Repositories{
		Events:          repository.NewEventRepository(pool),
		Posts:           repository.NewPostRepository(pool),
		Visits:          repository.NewVisitRepository(pool),
		Stamps:          repository.NewStampRepository(pool),
		Merchants:       repository.NewMerchantRepository(pool),
		CouponTemplates: repository.NewCouponTemplateRepository(pool),
		Coupons:         repository.NewCouponRepository(pool),
		GameLogs:        repository.NewGameLogRepository(pool),
		Rewards:         repository.NewRewardRepository(pool),
		Users:           repository.NewUserRepository(pool),
		Participations:  repository.NewParticipationRepository(pool),
	}
	codes := redeemcode.New()

	eventService := service.NewEventService(repos, publisher)
	visitService := service.NewVisitService(pool, repos, rng, publisher)
	gameService := service.NewGameService(pool, repos, service.GameServiceDeps{
		Rand:      rng,
		Codes:     codes,
		Publisher: publisher,
		Location:  loc,
	})
	couponService := service.NewCouponService(repos, publisher)
	rewardService := service.NewRewardService(pool, repos, codes, publisher)

	healthHandler := handler.NewHealthHandler(pool)

	var redisClient *cache.Client
	var scanLimit fiber.Handler
	if cfg.Redis.Enabled {
		redisClient, err = cache.Connect(ctx, cfg.Redis)
		if err != nil {
			log.Fatal().Err(err).Str("addr", cfg.Redis.Addr).Msg("failed to connect to redis")
		}
		limiter := cache.NewLimiter(redisClient, "scan", cfg.RateLimit.Requests, cfg.RateLimit.Window())
		scanLimit = middleware.RateLimit(limiter)
		healthHandler.WithDependency("redis", redisClient)
	}

	sweeper, err := scheduler.New(couponService, cfg.Scheduler.ExpirySweepInterval())
	if err != nil {
		log.Fatal().Err(err).Msg("failed to create scheduler")
	}
	sweeper.Start()

	app := fiber.New(fiber.Config{
		AppName:      "EatsRun API",
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  120 * time.Second,
		BodyLimit:    1 * 1024 * 1024,
	})

	app.Use(recover.New())
	app.Use(requestid.New())
	app.Use(logger.New())

	validate := validator.New()
	auth := middleware.Auth(middleware.AuthConfig{
		Secret: []byte(cfg.Auth.JWTSecret),
		Issuer: cfg.Auth.JWTIssuer,
	})

	handler.Register(app, handler.Handlers{
		Health:   healthHandler,
		Event:    handler.NewEventHandler(eventService, validate),
		Visit:    handler.NewVisitHandler(visitService, validate),
		Game:     handler.NewGameHandler(gameService, validate),
		Coupon:   handler.NewCouponHandler(couponService, validate),
		Merchant: handler.NewMerchantHandler(couponService, validate),
		Reward:   handler.NewRewardHandler(rewardService, validate),
	}, auth, scanLimit)

	go func() {
		log.Info().Str("port", cfg.Server.Port).Msg("starting server")
		if err := app.Listen(":" + cfg.Server.Port); err != nil {
			log.Fatal().Err(err).Msg("failed to start server")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit

	log.Info().Str("signal", sig.String()).Msg("received shutdown signal")
	log.Info().Int("timeout_seconds", cfg.Server.ShutdownTimeout).Msg("shutting down server...")

	shutdownCtx, shutdownCancel := context.WithTimeout(
		context.Background(),
		time.Duration(cfg.Server.ShutdownTimeout)*time.Second,
	)
	defer shutdownCancel()

	// Stop accepting requests first, then the background jobs, then the backends they use.
	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("error during server shutdown")
	}
	if err := sweeper.Shutdown(); err != nil {
		log.Error().Err(err).Msg("error stopping scheduler")
	}
	if producer != nil {
		if err := producer.Close(); err != nil {
			log.Error().Err(err).Msg("error closing kafka producer")
		}
	}
	if err := redisClient.Close(); err != nil {
		log.Error().Err(err).Msg("error closing redis client")
	}

	log.Info().Msg("closing database connections...")
	pool.Close()
	log.Info().Msg("server stopped")
}

// initLogger configures zerolog based on the application configuration.
func initLogger(cfg *config.Config) {
	level, err := zerolog.ParseLevel(cfg.Log.Level)
	if err != nil {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)

	if cfg.Log.Pretty {
		log.Logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stdout}).
			With().Timestamp().Logger()
	} else {
		zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
		log.Logger = zerolog.New(os.Stdout).With().Timestamp().Logger()
	}
}
