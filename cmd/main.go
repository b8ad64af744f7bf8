package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/kreasi-ai/backend/config"
	"github.com/kreasi-ai/backend/internal/core"
	"github.com/kreasi-ai/backend/internal/core/repository"
	"github.com/kreasi-ai/backend/internal/imagestore"
	logicv1 "github.com/kreasi-ai/backend/internal/logic/v1"
	"github.com/kreasi-ai/backend/internal/mail"
	"github.com/kreasi-ai/backend/internal/migrate"
	"github.com/kreasi-ai/backend/internal/provider"
	v1 "github.com/kreasi-ai/backend/internal/web/v1"
	"github.com/kreasi-ai/backend/middleware"
)

func main() {
	// Load configuration
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		panic("Configuration validation failed: " + err.Error())
	}

	setupLogger(cfg.Logging.Level)

	log.Info().
		Str("service", cfg.Service.Name).
		Str("version", cfg.Service.Version).
		Str("env", cfg.Service.Env).
		Str("port", cfg.Service.Port).
		Msg("Service starting")

	// Initialize OpenTelemetry tracing
	var tp interface{ Shutdown(context.Context) error }
	var err error
	if cfg.Tracing.Enabled {
		tp, err = middleware.InitTracing(cfg)
		if err != nil {
			log.Warn().Err(err).Msg("Failed to initialize tracing")
		} else {
			log.Info().
				Str("endpoint", cfg.Tracing.Endpoint).
				Float64("sample_rate", cfg.Tracing.SampleRate).
				Msg("Tracing initialized")
		}
	} else {
		log.Info().Msg("Tracing disabled (TRACING_ENABLED=false)")
	}

	// Initialize Pyroscope profiling
	if cfg.Profiling.Enabled {
		if err := middleware.InitProfiling(cfg); err != nil {
			log.Warn().Err(err).Msg("Failed to initialize profiling")
		} else {
			log.Info().
				Str("endpoint", cfg.Profiling.Endpoint).
				Msg("Profiling initialized")
			defer middleware.StopProfiling()
		}
	} else {
		log.Info().Msg("Profiling disabled (PROFILING_ENABLED=false)")
	}

	// Initialize database connection pool (pgx)
	pool, err := core.Connect(context.Background(), cfg.Database.DSN)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to database")
	}
	defer pool.Close()
	log.Info().Msg("Database connection pool established")

	// Apply schema migrations
	if err := migrate.Up(context.Background(), cfg.Database.DSN); err != nil {
		log.Fatal().Err(err).Msg("Failed to apply migrations")
	}
	log.Info().Msg("Migrations applied")

	// Repositories
	userRepo := repository.NewUserRepository(pool)
	sessionRepo := repository.NewSessionRepository(pool)
	textRepo := repository.NewGenerationRepository(pool, repository.TableTextGenerations)
	imageRepo := repository.NewGenerationRepository(pool, repository.TableImageGenerations)

	// Password-reset mail delivery
	var mailer mail.Mailer
	if cfg.Mail.Host != "" {
		mailer = mail.NewSMTPMailer(cfg.Mail.Host, cfg.Mail.Port, cfg.Mail.Username, cfg.Mail.Password, cfg.Mail.From)
		log.Info().Str("host", cfg.Mail.Host).Msg("SMTP mailer configured")
	} else {
		mailer = mail.LogMailer{}
		log.Info().Msg("SMTP not configured, reset links will be logged")
	}

	// Inference providers
	hfClient := provider.NewClient(nil, cfg.Provider.BaseURL, cfg.Provider.APIKey)
	textProvider := provider.NewTextProvider(hfClient, cfg.Provider.TextModel)

	var store imagestore.Store
	if cfg.S3.Enabled {
		store, err = imagestore.NewS3Store(context.Background(), imagestore.S3Config{
			Region:        cfg.S3.Region,
			Endpoint:      cfg.S3.Endpoint,
			Bucket:        cfg.S3.Bucket,
			AccessKey:     cfg.S3.AccessKey,
			SecretKey:     cfg.S3.SecretKey,
			PublicBaseURL: cfg.S3.PublicBaseURL,
		})
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to configure S3 image store")
		}
		log.Info().Str("bucket", cfg.S3.Bucket).Msg("S3 image store configured")
	} else {
		store = imagestore.DataURIStore{}
		log.Info().Msg("S3 disabled, images stored inline as data URIs")
	}
	imageProvider := provider.NewImageProvider(hfClient, cfg.Provider.ImageModel, store)

	// Services
	authSvc := logicv1.NewAuthService(userRepo, mailer, logicv1.AuthConfig{
		Secret:       []byte(cfg.Auth.JWTSecret),
		AccessTTL:    cfg.Auth.AccessTTL,
		ResetTTL:     cfg.Auth.ResetTTL,
		ResetURLBase: cfg.Auth.ResetURLBase,
	})
	textSvc := logicv1.NewGenerationService("text", textProvider, sessionRepo, textRepo)
	imageSvc := logicv1.NewGenerationService("image", imageProvider, sessionRepo, imageRepo)

	r := gin.Default()

	var isShuttingDown atomic.Bool

	// Tracing middleware
	r.Use(middleware.TracingMiddleware())

	// Logging middleware
	r.Use(middleware.LoggingMiddleware())

	// Prometheus middleware
	r.Use(middleware.PrometheusMiddleware())

	// Health check
	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	// Readiness check
	// Returns 503 once shutdown has started, to drain traffic before HTTP shutdown.
	r.GET("/ready", func(c *gin.Context) {
		if isShuttingDown.Load() {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "shutting_down"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	// Metrics endpoint
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// API v1 (canonical API - frontend-aligned)
	apiV1 := r.Group("/api/v1")
	v1.NewAuthHandler(authSvc).RegisterRoutes(apiV1)

	authed := apiV1.Group("", middleware.Authenticate(authSvc))
	v1.NewTextGenerationHandler(textSvc).RegisterRoutes(authed.Group("/text-generation"))
	v1.NewImageGenerationHandler(imageSvc).RegisterRoutes(authed.Group("/text-to-image"))

	// Create HTTP server
	srv := &http.Server{
		Addr:    ":" + cfg.Service.Port,
		Handler: r,
	}

	// Start server in a goroutine
	go func() {
		log.Info().Str("port", cfg.Service.Port).Msg("Starting kreasi backend")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("Failed to start server")
		}
	}()

	// Graceful shutdown
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
	defer stop()

	// Wait for shutdown signal
	<-ctx.Done()
	log.Info().Msg("Shutdown signal received")

	// Fail readiness first and wait for propagation before HTTP shutdown.
	isShuttingDown.Store(true)
	drainDelay := cfg.GetReadinessDrainDelayDuration()
	if drainDelay > 0 {
		log.Info().Dur("delay", drainDelay).Msg("Readiness drain delay started")
		time.Sleep(drainDelay)
		log.Info().Dur("delay", drainDelay).Msg("Readiness drain delay completed")
	}

	// Shutdown context with configurable timeout
	shutdownTimeout := cfg.GetShutdownTimeoutDuration()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	log.Info().Dur("timeout", shutdownTimeout).Msg("Shutting down server...")

	// 1. Shutdown HTTP server
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("HTTP server shutdown error")
	} else {
		log.Info().Msg("HTTP server shutdown complete")
	}

	// 2. Close database connections
	pool.Close()
	log.Info().Msg("Database pool closed")

	// 3. Shutdown tracer
	if tp != nil {
		if err := tp.Shutdown(shutdownCtx); err != nil {
			log.Error().Err(err).Msg("Tracer shutdown error")
		} else {
			log.Info().Msg("Tracer shutdown complete")
		}
	}

	log.Info().Msg("Graceful shutdown complete")
}

// setupLogger configures the global zerolog logger from LOG_LEVEL.
func setupLogger(level string) {
	lvl, err := zerolog.ParseLevel(level)
	if err != nil {
		lvl = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(lvl)
	zerolog.TimeFieldFormat = time.RFC3339
	log.Logger = zerolog.New(os.Stdout).With().Timestamp().Logger()
}
