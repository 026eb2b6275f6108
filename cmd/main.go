package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/duynhne/profile-service/config"
	database "github.com/duynhne/profile-service/internal/core"
	"github.com/duynhne/profile-service/internal/core/repository/psql"
	logicv1 "github.com/duynhne/profile-service/internal/logic/v1"
	webv1 "github.com/duynhne/profile-service/internal/web/v1"
	"github.com/duynhne/profile-service/middleware"
)

func main() {
	// Load configuration from environment variables (with .env file support for local dev)
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}
	if err := cfg.Validate(); err != nil {
		panic("Configuration validation failed: " + err.Error())
	}

	logger, err := middleware.NewLogger(cfg.Logging)
	if err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}
	defer logger.Sync()

	logger.Info("Service starting",
		zap.String("service", cfg.Service.Name),
		zap.String("version", cfg.Service.Version),
		zap.String("env", cfg.Service.Env),
		zap.String("port", cfg.Service.Port),
	)

	var tp interface{ Shutdown(context.Context) error }
	if cfg.Tracing.Enabled {
		provider, err := middleware.InitTracing(cfg)
		if err != nil {
			logger.Warn("Failed to initialize tracing", zap.Error(err))
		} else {
			tp = provider
			logger.Info("Tracing initialized",
				zap.String("endpoint", cfg.Tracing.Endpoint),
				zap.Float64("sample_rate", cfg.Tracing.SampleRate),
			)
		}
	} else {
		logger.Info("Tracing disabled (TRACING_ENABLED=false)")
	}

	if cfg.Profiling.Enabled {
		if err := middleware.InitProfiling(cfg.Profiling); err != nil {
			logger.Warn("Failed to initialize profiling", zap.Error(err))
		} else {
			logger.Info("Profiling initialized", zap.String("endpoint", cfg.Profiling.Endpoint))
			defer middleware.StopProfiling()
		}
	} else {
		logger.Info("Profiling disabled (PROFILING_ENABLED=false)")
	}

	connectCtx, cancelConnect := context.WithTimeout(context.Background(), 30*time.Second)
	pool, err := database.Connect(connectCtx, cfg.Database)
	cancelConnect()
	if err != nil {
		logger.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer pool.Close()
	db := database.OpenDB(pool)
	logger.Info("Database connection pool established",
		zap.String("host", cfg.Database.Host),
		zap.Int("max_connections", cfg.Database.MaxConnections),
	)

	if cfg.Database.MigrateOnStart {
		if err := database.RunMigrations(cfg.Database.BuildMigrationURL()); err != nil {
			logger.Fatal("Failed to run migrations", zap.Error(err))
		}
		logger.Info("Database migrations applied")
	}

	if err := webv1.RegisterValidations(); err != nil {
		logger.Fatal("Failed to register request validations", zap.Error(err))
	}

	profileService := logicv1.NewProfileService(
		psql.NewProfileRepository(db),
		psql.NewGateway(),
		psql.NewTxRunner(db),
		logger,
	)
	profileHandler := webv1.NewProfileHandler(profileService)

	// gin debug output only in development
	if !cfg.IsDevelopment() {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()
	r.Use(gin.Recovery())

	var isShuttingDown atomic.Bool

	// Tracing middleware (must be first for context propagation)
	r.Use(middleware.TracingMiddleware())

	// Logging middleware (must be before Prometheus middleware)
	r.Use(middleware.LoggingMiddleware(logger))

	if cfg.Metrics.Enabled {
		r.Use(middleware.PrometheusMiddleware())
		r.GET(cfg.Metrics.Path, gin.WrapH(promhttp.Handler()))
	}

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	// Returns 503 once shutdown has started, to drain traffic before HTTP shutdown.
	r.GET("/ready", func(c *gin.Context) {
		if isShuttingDown.Load() {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "shutting_down"})
			return
		}
		if err := pool.Ping(c.Request.Context()); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "database_unavailable"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	webv1.RegisterRoutes(r, profileHandler)
	r.NoRoute(webv1.NotFound)

	srv := &http.Server{
		Addr:              ":" + cfg.Service.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Info("Starting profile service", zap.String("port", cfg.Service.Port))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
	defer stop()

	<-ctx.Done()
	logger.Info("Shutdown signal received")

	// Fail readiness first and wait for propagation.
	isShuttingDown.Store(true)
	if cfg.ReadinessDrainDelay > 0 {
		logger.Info("Readiness drain delay started", zap.Duration("delay", cfg.ReadinessDrainDelay))
		time.Sleep(cfg.ReadinessDrainDelay)
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	logger.Info("Shutting down server...", zap.Duration("timeout", cfg.ShutdownTimeout))

	// Explicit cleanup sequence: HTTP Server → Database → Tracer

	// 1. Stop accepting new connections, wait for in-flight requests
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("HTTP server shutdown error", zap.Error(err))
	} else {
		logger.Info("HTTP server shutdown complete")
	}

	// 2. Close the sql handle before the pool it borrows from
	if err := db.Close(); err != nil {
		logger.Error("Database handle close error", zap.Error(err))
	}
	pool.Close()
	logger.Info("Database pool closed")

	// 3. Flush pending spans
	if tp != nil {
		if err := tp.Shutdown(shutdownCtx); err != nil {
			logger.Error("Tracer shutdown error", zap.Error(err))
		} else {
			logger.Info("Tracer shutdown complete")
		}
	}

	logger.Info("Graceful shutdown complete")
}
