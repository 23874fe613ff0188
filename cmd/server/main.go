package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/anonto42/nano-midea/social/internal/logger"
	"github.com/anonto42/nano-midea/social/internal/monitoring"
	"github.com/anonto42/nano-midea/social/internal/router"
	"github.com/anonto42/nano-midea/social/pkg/config"
	"github.com/anonto42/nano-midea/social/pkg/firebase"
	"github.com/anonto42/nano-midea/social/validators"
	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/zap"
)

func main() {
	bootLogger := zap.NewExample()
	config.LoadEnv(bootLogger)

	// Load configuration
	cfg := config.Load()

	log, err := logger.New(cfg.LogLevel)
	if err != nil {
		bootLogger.Fatal("Failed to build logger", zap.Error(err))
	}
	defer log.Sync()

	// Initialize database connections
	db, err := config.InitDB(cfg, log)
	if err != nil {
		log.Fatal("Failed to initialize databases", zap.Error(err))
	}
	defer db.CloseDB()

	opts := router.Options{
		JWTSecret:     cfg.JWTSecret,
		UploadDir:     cfg.UploadDir,
		MongoDatabase: cfg.MongoDatabase,
		Logger:        log,
	}

	// Firebase sign-in is optional
	ctx := context.Background()
	if cfg.FirebaseCredentialsPath != "" {
		firebaseApp, err := firebase.InitFirebase(ctx, cfg.FirebaseCredentialsPath, log)
		if err != nil {
			log.Fatal("Failed to initialize Firebase", zap.Error(err))
		}
		opts.Firebase = firebaseApp.AuthClient
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	opts.Metrics = monitoring.NewMetrics(reg)

	if err := os.MkdirAll(cfg.UploadDir, 0o755); err != nil {
		log.Fatal("Failed to create upload directory", zap.String("dir", cfg.UploadDir), zap.Error(err))
	}

	// Create Echo instance
	e := echo.New()
	e.HideBanner = true
	e.Validator = validators.NewValidator()

	// Setup global middleware
	router.SetupMiddleware(e, opts.Metrics, log)

	// Setup routes and dependencies
	if err := router.SetupRoutes(e, db.SQL, db.Mongo, opts); err != nil {
		log.Fatal("Failed to set up routes", zap.Error(err))
	}

	// Metrics may also be served on a dedicated port
	if cfg.MetricsPort != "" {
		go func() {
			mux := http.NewServeMux()
			mux.Handle("/metrics", opts.Metrics.Handler())
			log.Info("Metrics server listening", zap.String("port", cfg.MetricsPort))
			if err := http.ListenAndServe(":"+cfg.MetricsPort, mux); err != nil {
				log.Error("Metrics server stopped", zap.Error(err))
			}
		}()
	}

	go func() {
		log.Info("Server starting", zap.String("port", cfg.Port), zap.String("env", cfg.Env))
		if err := e.Start(":" + cfg.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("Server failed", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Error("Server shutdown failed", zap.Error(err))
	}
	log.Info("Server stopped")
}
