package main

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"google.golang.org/grpc"

	"qrguard-lab/internal/api"
	"qrguard-lab/internal/api/handlers"
	apimiddleware "qrguard-lab/internal/api/middleware"
	"qrguard-lab/internal/config"
	"qrguard-lab/internal/domain/models"
	"qrguard-lab/internal/domain/services"
	grpcserver "qrguard-lab/internal/grpc/qrguard"
	"qrguard-lab/internal/infrastructure/cache"
	"qrguard-lab/internal/metrics"
	"qrguard-lab/pkg/logger"
)

func main() {
	// Load configuration; QRGUARD_CONFIG names an explicit file
	cfg, err := config.Load(os.Getenv("QRGUARD_CONFIG"))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	log := logger.ForEnvironment(cfg.App.Environment, logger.Config{
		Level:      cfg.Logger.Level,
		Format:     cfg.Logger.Format,
		TimeFormat: cfg.Logger.TimeFormat,
	})
	logger.SetGlobal(log)

	log.Info().
		Str("app", cfg.App.Name).
		Str("env", cfg.App.Environment).
		Str("version", cfg.App.Version).
		Msg("starting QRGuard Lab")

	// Create context for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Initialize infrastructure
	redisCache := initRedis(ctx, cfg, log)
	defer func() {
		if redisCache != nil {
			redisCache.Close()
		}
	}()

	// Initialize the risk model
	weights, err := loadWeights(cfg.Scoring)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load model weights")
	}
	assessor := services.NewAssessor(weights, cfg.Scoring.Threshold, log)

	log.Info().
		Str("model", weights.Version).
		Float64("threshold", cfg.Scoring.Threshold).
		Msg("risk model loaded")

	// Metrics
	var promMetrics *metrics.PrometheusMetrics
	var recorder handlers.ScanRecorder
	if cfg.Metrics.Enabled {
		promMetrics = metrics.NewPrometheusMetrics(cfg.Metrics.Namespace, log)
		assessor.SetObserver(promMetrics)
		recorder = promMetrics
	}

	// Assessment cache
	var resultCache services.ResultCache
	if redisCache != nil && cfg.Cache.Enabled {
		resultCache = redisCache
	}

	qrService := services.NewQRSecurityService(assessor, resultCache, services.QRSecurityConfig{
		PaymentLinkPrefix: cfg.Payment.LinkPrefix,
		CacheTTL:          cfg.Cache.AssessmentTTL,
	}, log)

	// Initialize handlers
	h := handlers.NewHandlers(handlers.Dependencies{
		QRService:         qrService,
		Recorder:          recorder,
		Cache:             redisCache,
		PaymentLinkPrefix: cfg.Payment.LinkPrefix,
		Version:           cfg.App.Version,
		Logger:            log,
	})

	// Create router
	var rateLimiter apimiddleware.RateLimitChecker
	if redisCache != nil {
		rateLimiter = redisCache
	} else if cfg.RateLimit.Enabled {
		log.Warn().Msg("rate limiting enabled but Redis is not available, skipping")
	}
	router := api.NewRouter(*cfg, h, rateLimiter, promMetrics, log)
	httpHandler := router.Setup()

	// Start HTTP server
	httpServer := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.HTTPPort),
		Handler:      httpHandler,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	go func() {
		log.Info().
			Str("addr", httpServer.Addr).
			Msg("starting HTTP server")
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("HTTP server failed")
		}
	}()

	// Start gRPC server
	grpcListener, err := net.Listen("tcp", fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.GRPCPort))
	if err != nil {
		log.Fatal().Err(err).Msg("failed to create gRPC listener")
	}

	grpcServer := grpc.NewServer(grpc.UnaryInterceptor(grpcserver.UnaryLogger(log)))
	var grpcRecorder grpcserver.ScanRecorder
	if promMetrics != nil {
		grpcRecorder = promMetrics
	}
	grpcserver.NewServer(qrService, grpcRecorder, cfg.Payment.LinkPrefix, log).Register(grpcServer)

	// Register gRPC health check service
	var pinger grpcserver.Pinger
	if redisCache != nil {
		pinger = redisCache
	}
	grpcserver.RegisterHealthServer(ctx, grpcServer, pinger, 10*time.Second)

	go func() {
		log.Info().
			Str("addr", grpcListener.Addr().String()).
			Msg("starting gRPC server")
		if err := grpcServer.Serve(grpcListener); err != nil {
			log.Fatal().Err(err).Msg("gRPC server failed")
		}
	}()

	// Wait for shutdown signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutting down...")

	// Cancel context to stop background checks
	cancel()

	// Graceful shutdown with timeout
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer shutdownCancel()

	// Stop gRPC server
	grpcServer.GracefulStop()

	// Stop HTTP server
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("HTTP server shutdown error")
	}

	log.Info().Msg("shutdown complete")
}

// initRedis connects to Redis when enabled. A failed connection is logged and
// the service continues without caching or rate limiting.
func initRedis(ctx context.Context, cfg *config.Config, log *logger.Logger) *cache.RedisCache {
	if !cfg.Redis.Enabled {
		log.Info().Msg("redis disabled, running without assessment cache")
		return nil
	}

	connectCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	redisCache, err := cache.NewRedis(connectCtx, cfg.Redis, log)
	if err != nil {
		log.WithError(err).Warn().Msg("failed to connect to Redis, continuing without it")
		return nil
	}
	return redisCache
}

// loadWeights returns the embedded weight table unless a file overrides it
func loadWeights(cfg config.ScoringConfig) (models.Weights, error) {
	if cfg.WeightsFile == "" {
		return services.DefaultWeights(), nil
	}
	return services.LoadWeights(cfg.WeightsFile)
}
