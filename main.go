package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"spots/internal/config"
	"spots/internal/database"
	"spots/internal/geo"
	"spots/internal/handlers"
	"spots/internal/logging"
	"spots/internal/middleware"
	"spots/internal/repositories"
	"spots/internal/services"
	"spots/pkg/rabbitmq"
)

// Server is the wired HTTP application and the resources it owns.
type Server struct {
	App  *fiber.App
	DB   *gorm.DB
	MQ   *rabbitmq.Client
	Auth *services.AuthService
}

// NewApp opens the database, optionally connects to RabbitMQ, and registers
// every route.
func NewApp(cfg *config.Config) (*Server, error) {
	db, err := database.Open(cfg.Database)
	if err != nil {
		return nil, err
	}

	if cfg.Database.AutoMigrate {
		if err := database.Migrate(context.Background(), db, cfg.Database.Driver); err != nil {
			_ = database.Close(db)
			return nil, err
		}
	}

	srv := &Server{DB: db}

	// A nil *rabbitmq.Client must not end up inside the interface.
	var publisher services.EventPublisher
	if cfg.RabbitMQ.Enabled() {
		mqClient, err := rabbitmq.NewClient(rabbitmq.Config{URL: cfg.RabbitMQ.URL})
		if err != nil {
			_ = database.Close(db)
			return nil, fmt.Errorf("failed to initialize RabbitMQ client: %w", err)
		}
		srv.MQ = mqClient
		publisher = mqClient
	} else {
		log.Info().Msg("RABBITMQ_URL not set, domain events disabled")
	}

	// --- Initialize Repositories ---
	userRepo := repositories.NewGORMUserRepository(db)
	spotRepo, err := repositories.NewGORMSpotRepository(db, database.Dialect(cfg.Database.Driver))
	if err != nil {
		srv.Close()
		return nil, err
	}
	reviewRepo := repositories.NewGORMReviewRepository(db)
	favoriteRepo := repositories.NewGORMFavoriteRepository(db)

	// --- Initialize Services ---
	classifier := geo.Classifier{
		Reference:   geo.Point{Lat: cfg.Landmark.Lat, Lon: cfg.Landmark.Lon},
		ThresholdKm: cfg.Landmark.RadiusKm,
	}
	srv.Auth = services.NewAuthService(userRepo, cfg.Session.Secret,
		services.WithTokenTTL(cfg.Session.TTL),
		services.WithEmailDomain(cfg.Auth.EmailDomain),
	)
	spotService := services.NewSpotService(spotRepo, reviewRepo, favoriteRepo, classifier, publisher)
	reviewService := services.NewReviewService(reviewRepo, spotRepo, publisher)
	favoriteService := services.NewFavoriteService(favoriteRepo, spotRepo, publisher)

	// --- Initialize Fiber App ---
	app := fiber.New(fiber.Config{
		AppName:      "spots",
		ErrorHandler: errorHandler,
	})
	app.Use(recover.New())
	app.Use(requestid.New(requestid.Config{Generator: uuid.NewString}))
	app.Use(logger.New(logger.Config{
		Format: "${time} ${locals:requestid} ${status} ${method} ${path} ${latency}\n",
	}))
	app.Use(middleware.Authenticate(srv.Auth, cfg.Session.CookieName))

	app.Get("/health", srv.handleHealth)

	handlers.NewAuthHandler(srv.Auth, cfg.Session.CookieName).RegisterRoutes(app)
	handlers.NewSpotHandler(spotService).RegisterRoutes(app)
	handlers.NewReviewHandler(reviewService).RegisterRoutes(app)
	handlers.NewFavoriteHandler(favoriteService).RegisterRoutes(app)

	srv.App = app
	return srv, nil
}

func (s *Server) handleHealth(c *fiber.Ctx) error {
	status := fiber.StatusOK
	dbState := "connected"
	if sqlDB, err := s.DB.DB(); err != nil || sqlDB.PingContext(c.UserContext()) != nil {
		status = fiber.StatusServiceUnavailable
		dbState = "unreachable"
	}
	mqState := "disabled"
	if s.MQ != nil {
		mqState = "connected"
	}

	health := "healthy"
	if status != fiber.StatusOK {
		health = "degraded"
	}
	return c.Status(status).JSON(fiber.Map{
		"status":   health,
		"time":     time.Now().Format(time.RFC3339),
		"database": dbState,
		"rabbitmq": mqState,
	})
}

// Close releases the broker connection and the database.
func (s *Server) Close() {
	if s.MQ != nil {
		if err := s.MQ.Close(); err != nil {
			log.Error().Err(err).Msg("error closing RabbitMQ client")
		}
	}
	if s.DB != nil {
		if err := database.Close(s.DB); err != nil {
			log.Error().Err(err).Msg("error closing database")
		}
	}
}

func errorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	var fe *fiber.Error
	if errors.As(err, &fe) {
		code = fe.Code
	}
	if code >= fiber.StatusInternalServerError {
		log.Error().Err(err).Str("path", c.Path()).Msg("unhandled error")
		return c.Status(code).JSON(fiber.Map{"message": "Internal server error"})
	}
	return c.Status(code).JSON(fiber.Map{"message": err.Error()})
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "invalid configuration: %v\n", err)
		os.Exit(1)
	}
	logging.Init("spots", cfg.Log.Level, cfg.Log.Format)
	if cfg.DotenvLoaded {
		log.Info().Msg("loaded .env")
	}

	srv, err := NewApp(cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to create app")
	}
	defer srv.Close()

	if srv.MQ != nil {
		if err := srv.MQ.ConsumeEvents(rabbitmq.LogEvent); err != nil {
			log.Error().Err(err).Msg("failed to start RabbitMQ consumer")
		}
	}

	// Graceful shutdown handling
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		log.Info().Str("addr", cfg.AppPort).Str("driver", cfg.Database.Driver).Msg("starting server")
		if err := srv.App.Listen(cfg.AppPort); err != nil {
			log.Fatal().Err(err).Msg("server failed to start")
		}
	}()

	<-quit
	log.Info().Msg("shutting down server")

	if err := srv.App.ShutdownWithTimeout(10 * time.Second); err != nil {
		log.Error().Err(err).Msg("error during Fiber shutdown")
	}
	log.Info().Msg("server gracefully stopped")
}
