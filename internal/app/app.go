package app

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"

	"line-reservation-bot/internal/config"
	"line-reservation-bot/internal/database"
	"line-reservation-bot/internal/handlers"
	"line-reservation-bot/internal/line"
	"line-reservation-bot/internal/metrics"
	"line-reservation-bot/internal/ratelimit"
	"line-reservation-bot/internal/reminder"
	"line-reservation-bot/internal/repository"
	"line-reservation-bot/internal/server"
	"line-reservation-bot/internal/signature"
	"line-reservation-bot/internal/webhook"
)

// Run initializes and starts the application
func Run() error {
	logrus.SetFormatter(&logrus.JSONFormatter{})
	logrus.SetLevel(logrus.InfoLevel)

	logrus.Info("Starting LINE Reservation Bot")

	cfg, err := config.LoadConfig()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("configuration validation failed: %w", err)
	}

	if cfg.Line.SkipSignatureValidation {
		logrus.Warn("Webhook signature validation is DISABLED; do not run this in production")
	}

	db, err := database.InitDatabase(cfg.Database)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}

	m := metrics.NewMetrics()
	repo := repository.New(db)
	verifier := signature.NewVerifier(cfg.Line.ChannelSecret, cfg.Line.SkipSignatureValidation)
	limiter := ratelimit.NewLimiter(cfg.RateLimit.Window, cfg.RateLimit.Max, cfg.RateLimit.MaxSenders)
	client := line.NewClient(&cfg.Line)

	wh := webhook.NewHandler(cfg, verifier, limiter, repo, client, m)

	var rem *reminder.Scheduler
	if cfg.Reminder.Enabled {
		rem = reminder.NewScheduler(&cfg.Reminder, cfg.Store.ID, repo, client)
		if err := rem.Start(); err != nil {
			return fmt.Errorf("failed to start reminder scheduler: %w", err)
		}
	}

	h := handlers.NewHandlers(db, limiter, rem, cfg.Store.ID)
	router := server.SetupRouter(h, wh, cfg.Server.AllowedOrigins)
	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	go func() {
		logrus.Infof("Starting HTTP server on port %s", cfg.Server.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logrus.Fatalf("HTTP server error: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logrus.Info("Shutting down server...")
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logrus.Errorf("HTTP server shutdown error: %v", err)
	}

	// Acknowledged batches may still be in flight; give them a chance
	// to finish replying before the process exits.
	wh.Drain()

	if rem != nil {
		if err := rem.Stop(); err != nil {
			logrus.Errorf("Failed to stop reminder scheduler: %v", err)
		}
		rem.Wait()
	}

	logrus.Info("Server stopped gracefully")
	return nil
}
