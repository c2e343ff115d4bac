package app

import (
	"context"
	"fmt"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"

	"github.com/veldran/cinerec/internal/config"
	"github.com/veldran/cinerec/internal/database"
	"github.com/veldran/cinerec/internal/handlers"
	"github.com/veldran/cinerec/internal/messaging"
	"github.com/veldran/cinerec/internal/middleware"
	"github.com/veldran/cinerec/internal/services"
)

type App struct {
	config   *config.Config
	logger   *logrus.Logger
	db       *database.Database
	bus      *messaging.EventBus
	services *services.Services
	handlers *handlers.Handlers
	router   *gin.Engine
}

func New(cfg *config.Config) (*App, error) {
	app := &App{
		config: cfg,
		logger: setupLogger(cfg),
	}

	db, err := database.New(cfg, app.logger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}
	app.db = db

	// Kafka is optional in development; events are dropped without it.
	bus, err := messaging.NewEventBus(cfg, app.logger)
	if err != nil {
		app.logger.WithError(err).Warn("Event bus disabled")
		bus = nil
	}
	app.bus = bus

	svcs, err := services.New(cfg, db, bus, app.logger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize services: %w", err)
	}
	app.services = svcs

	app.handlers = handlers.New(app.logger, svcs)
	app.setupRouter()

	return app, nil
}

func (a *App) Router() *gin.Engine {
	return a.router
}

func (a *App) Shutdown(ctx context.Context) error {
	a.logger.Info("Shutting down application...")

	if a.bus != nil {
		if err := a.bus.Close(); err != nil {
			a.logger.WithError(err).Error("Error closing event bus")
		}
	}

	if err := a.db.Close(); err != nil {
		a.logger.WithError(err).Error("Error closing database connections")
		return err
	}

	return nil
}

func setupLogger(cfg *config.Config) *logrus.Logger {
	logger := logrus.New()

	level, err := logrus.ParseLevel(cfg.Logging.Level)
	if err != nil {
		level = logrus.InfoLevel
	}
	logger.SetLevel(level)

	if cfg.Logging.Format == "json" {
		logger.SetFormatter(&logrus.JSONFormatter{})
	} else {
		logger.SetFormatter(&logrus.TextFormatter{
			FullTimestamp: true,
		})
	}

	return logger
}

func (a *App) setupRouter() {
	if a.config.Server.Mode == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()

	router.Use(middleware.Logger(a.logger))
	router.Use(middleware.Recovery(a.logger))
	router.Use(middleware.CORS())

	// Health and metrics stay outside auth
	router.GET("/health", a.handlers.Health.Check)
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := router.Group("/api/v1")
	{
		api.Use(middleware.Auth(a.services.Auth, a.logger))
		api.Use(middleware.RateLimit(a.services.RateLimiter, a.config, a.logger))

		recommendations := api.Group("/recommendations")
		{
			recommendations.GET("/:userId", a.handlers.Recommendation.Get)
			recommendations.GET("/:userId/saved", a.handlers.Recommendation.GetSaved)
		}

		api.POST("/feedback", a.handlers.Recommendation.SubmitFeedback)

		movies := api.Group("/movies")
		{
			movies.GET("/trending", a.handlers.Movie.Trending)
			movies.GET("/search", a.handlers.Movie.Search)
			movies.GET("/:movieId", a.handlers.Movie.Get)
			movies.POST("/seed", a.handlers.Movie.Seed)
		}

		api.POST("/reviews", a.handlers.Review.Create)
	}

	a.router = router
}
