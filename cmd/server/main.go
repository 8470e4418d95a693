// Package main runs the back-office administration API server.
package main

import (
	"context"
	"database/sql"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	app "github.com/commercegrid/backoffice/internal/app"
	"github.com/commercegrid/backoffice/internal/app/httpapi"
	"github.com/commercegrid/backoffice/internal/app/storage/postgres"
	"github.com/commercegrid/backoffice/internal/config"
	"github.com/commercegrid/backoffice/internal/metrics"
	"github.com/commercegrid/backoffice/internal/middleware"
	"github.com/commercegrid/backoffice/internal/platform/database"
	"github.com/commercegrid/backoffice/pkg/logger"
)

func main() {
	configPath := flag.String("config", "config/backoffice.yaml", "path to the YAML configuration file")
	flag.Parse()

	// Missing .env files are fine; explicit env always wins.
	_ = godotenv.Load()

	cfg, err := config.Load(*configPath)
	if err != nil {
		logger.NewDefault("server").WithError(err).Error("load configuration")
		os.Exit(1)
	}

	log := logger.New(logger.LoggingConfig{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Output: cfg.Logging.Output,
	}).WithField("component", "server")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var db *sql.DB
	var stores app.Stores
	if cfg.Database.DSN != "" {
		db, err = database.Open(ctx, cfg.Database, log)
		if err != nil {
			log.WithError(err).Error("connect database")
			os.Exit(1)
		}
		defer db.Close()

		if cfg.Database.Migrate {
			if err := database.Migrate(db, log); err != nil {
				log.WithError(err).Error("apply migrations")
				os.Exit(1)
			}
		}

		store := postgres.New(db)
		stores = app.Stores{
			Users:       store,
			Groups:      store,
			Regions:     store,
			Pricing:     store,
			Catalog:     store,
			Publication: store,
		}
	} else {
		log.Warn("no database DSN configured; using in-memory stores")
	}

	application, err := app.New(stores, db, log)
	if err != nil {
		log.WithError(err).Error("initialise application")
		os.Exit(1)
	}

	m := metrics.New("backoffice")
	auth := middleware.NewAuthMiddleware([]byte(cfg.Auth.Secret), log, []string{"/healthz", "/metrics", "/auth/login"})

	var limiter *middleware.RateLimiter
	if cfg.RateLimit.Enabled {
		limiter = middleware.NewRateLimiter(cfg.RateLimit.RequestsPerSecond, cfg.RateLimit.Burst, log)
		limiter.StartCleanup(10*time.Minute, ctx.Done())
	}

	handler := httpapi.NewHandler(application, httpapi.Options{
		Auth:      auth,
		RateLimit: limiter,
		CORS:      middleware.NewCORSMiddleware(cfg.CORS.AllowedOrigins),
		Metrics:   m,
		Log:       log,
		TokenTTL:  cfg.Auth.TokenTTL,
	})

	server := &http.Server{
		Addr:         cfg.Server.Addr(),
		Handler:      handler,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		log.WithField("addr", server.Addr).Info("server listening")
		errCh <- server.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		log.Info("shutdown signal received")
	case err := <-errCh:
		if err != nil && err != http.ErrServerClosed {
			log.WithError(err).Error("server failed")
			os.Exit(1)
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.WithError(err).Warn("graceful shutdown incomplete")
	}
	log.Info("server stopped")
}
