package main

import (
	"context"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gofiber/contrib/otelfiber"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/swagger"
	_ "github.com/joho/godotenv/autoload"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"filevault/docs"
	"filevault/internal/auth"
	"filevault/internal/config"
	"filevault/internal/database"
	"filevault/internal/database/migration"
	handlers "filevault/internal/http/handler"
	"filevault/internal/http/middleware"
	"filevault/internal/logging"
	tracing "filevault/internal/otel"
	"filevault/internal/repository/postgres"
	"filevault/internal/service"
	"filevault/internal/storage"
)

// @title File Vault API
// @version 1.0
// @description Authenticated file storage with ownership-checked download and Range-aware streaming.
// @BasePath /
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	// Load configuration from environment variables (.env auto-loaded if present)
	cfg := config.Load()
	logger := logging.NewStdout(cfg.Log.Level, cfg.Log.Timezone)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	shutdownTracing, err := tracing.Init(ctx, logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to initialize tracing")
	}
	defer func() {
		sctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = shutdownTracing(sctx)
	}()

	// Initialize PostgreSQL connection (with pooling via database/sql)
	db, err := database.NewPostgres(ctx, cfg.Database, logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer db.Close()

	if err := migration.EnsureMigrated(ctx, db, logger, cfg.Database.Host); err != nil {
		logger.Fatal().Err(err).Msg("failed to migrate database")
	}

	// Object storage backend (MinIO or AWS S3)
	objStore, err := storage.New(ctx, cfg.Storage)
	if err != nil {
		logger.Fatal().Err(err).Str("driver", cfg.Storage.Driver).Msg("failed to initialize object storage")
	}

	authn, err := auth.NewAuthenticator(cfg.JWT.Secret, cfg.JWT.TTL)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to initialize authenticator")
	}

	streamMetrics, err := service.NewStreamMetrics(prometheus.DefaultRegisterer)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to register stream metrics")
	}
	promMiddleware, err := middleware.NewPrometheusMiddleware(prometheus.DefaultRegisterer)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to register http metrics")
	}

	// Initialize repositories and services
	fileRepo := postgres.NewFilePostgres(db)
	userRepo := postgres.NewUserPostgres(db)
	folderRepo := postgres.NewFolderPostgres(db)

	access := service.NewAccessResolver(fileRepo, cfg.Cache.Size, cfg.Cache.TTL)
	svcs := handlers.Services{
		Users:   service.NewUserService(userRepo, auth.NewHasher(0), authn),
		Files:   service.NewFileService(objStore, fileRepo, userRepo, folderRepo, access),
		Folders: service.NewFolderService(folderRepo),
		Streams: service.NewStreamService(access, objStore, service.StreamOptions{
			OpenTimeout: cfg.Stream.OpenTimeout,
			ChunkSize:   cfg.Stream.ChunkSize,
			OpenRetries: cfg.Stream.OpenRetries,
			StrictRange: cfg.Stream.StrictRange,
		}, streamMetrics, logger),
	}

	app := fiber.New(fiber.Config{
		ErrorHandler: handlers.ErrorHandler(),
		BodyLimit:    cfg.BodyLimit,
	})

	// Streaming routes open their own server span; see handlers.SkipServerSpan
	app.Use(otelfiber.Middleware(otelfiber.WithNext(handlers.SkipServerSpan)))
	// RequestID middleware adds/propagates X-Request-ID and binds the request logger
	app.Use(middleware.RequestID(logger))
	// JSON Logger middleware for structured request logs
	app.Use(middleware.Logger(logger))
	app.Use(promMiddleware.Handler())

	app.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))

	// Register HTTP routes with injected services
	handlers.RegisterRoutes(app, db, svcs, authn)

	// Swagger UI with dynamic host and scheme
	app.Get("/swagger/*", func(c *fiber.Ctx) error {
		scheme := c.Protocol()
		if proto := c.Get("X-Forwarded-Proto"); proto != "" {
			scheme = strings.Split(proto, ",")[0]
		}

		docs.SwaggerInfo.Host = c.Get("Host")
		docs.SwaggerInfo.Schemes = []string{scheme}

		return swagger.HandlerDefault(c)
	})

	go func() {
		<-ctx.Done()
		logger.Info().Str("event", "shutdown").Msg("shutting down http server")
		if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
			logger.Error().Err(err).Msg("graceful shutdown failed")
		}
	}()

	addr := ":" + cfg.Port
	logger.Info().Str("event", "listening").Str("addr", addr).Str("storage_driver", cfg.Storage.Driver).Msg("server starting")
	if err := app.Listen(addr); err != nil {
		logger.Fatal().Err(err).Msg("failed to start server")
	}
}
