package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/robfig/cron/v3"

	"github.com/jfrancis537/budget-oracle-sub000/internal/auth"
	"github.com/jfrancis537/budget-oracle-sub000/internal/config"
	"github.com/jfrancis537/budget-oracle-sub000/internal/database"
	"github.com/jfrancis537/budget-oracle-sub000/internal/notifications"
	"github.com/jfrancis537/budget-oracle-sub000/internal/prices"
	"github.com/jfrancis537/budget-oracle-sub000/internal/projection"
	"github.com/jfrancis537/budget-oracle-sub000/internal/repository"
	"github.com/jfrancis537/budget-oracle-sub000/internal/server"
)

func main() {
	issueToken := flag.String("issue-token", "", "print an access token for the household UUID and exit")
	flag.Parse()

	ensureEnvFile()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", slog.String("error", err.Error()))
		os.Exit(1)
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: cfg.LogLevel}))
	slog.SetDefault(logger)

	tokens := auth.NewTokenManager(cfg.Auth.JWTSecret, cfg.Auth.JWTIssuer, cfg.Auth.AccessTokenTTL)
	if *issueToken != "" {
		if err := printToken(tokens, *issueToken); err != nil {
			logger.Error("failed to issue token", slog.String("error", err.Error()))
			os.Exit(1)
		}
		return
	}

	db, err := database.Open(context.Background(), cfg.Database, logger)
	if err != nil {
		logger.Error("failed to connect to database", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer func() {
		db.Close()
	}()

	if err := database.Migrate(context.Background(), db, logger); err != nil {
		logger.Error("failed to apply migrations", slog.String("error", err.Error()))
		os.Exit(1)
	}

	quotes := prices.NewHTTPSource(cfg.Prices.APIKey, cfg.Prices.BaseURL, cfg.Prices.Timeout, cfg.Prices.RateLimitPerMinute, cfg.Prices.RateLimitBurst)
	priceSource := prices.WithHistory(quotes, repository.NewQuoteRepository(db), logger)
	if cfg.Prices.BaseURL == "" {
		logger.Warn("PRICES_BASE_URL is not set, holdings use stored quotes or cost basis")
	}

	hub := notifications.NewHub()
	engine := projection.NewEngine(priceSource, logger, cfg.Projection.Concurrency)
	service := projection.NewService(engine, repository.NewSnapshotRepository(db), hub, logger, projection.Options{
		Debounce:      cfg.Projection.Debounce,
		HorizonMonths: cfg.Projection.HorizonMonths,
		Concurrency:   cfg.Projection.Concurrency,
	})

	scheduler := cron.New()
	if _, err := scheduler.AddFunc(cfg.Projection.RefreshSchedule, func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
		defer cancel()

		if err := service.RefreshAll(ctx); err != nil {
			logger.Error("scheduled refresh failed", slog.String("error", err.Error()))
		}
	}); err != nil {
		logger.Error("invalid refresh schedule", slog.String("error", err.Error()))
		os.Exit(1)
	}
	scheduler.Start()

	e := server.New(cfg, logger, server.Dependencies{
		DB:          db,
		Projections: service,
		Hub:         hub,
		Tokens:      tokens,
	})
	httpServer := server.NewHTTPServer(cfg.Server, e)

	go func() {
		logger.Info("http server started", slog.String("addr", httpServer.Addr), slog.String("env", cfg.Env))
		if err := e.StartServer(httpServer); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server failed", slog.String("error", err.Error()))
		}
	}()

	shutdownSignal := make(chan os.Signal, 1)
	signal.Notify(shutdownSignal, syscall.SIGINT, syscall.SIGTERM)
	<-shutdownSignal

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	<-scheduler.Stop().Done()
	service.Close()

	if err := e.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown failed", slog.String("error", err.Error()))
	}
}

func printToken(tokens *auth.TokenManager, value string) error {
	householdID, err := uuid.Parse(value)
	if err != nil {
		return fmt.Errorf("parse household id: %w", err)
	}

	token, expiresAt, err := tokens.Issue(householdID)
	if err != nil {
		return err
	}

	fmt.Printf("%s\nexpires at %s\n", token, expiresAt.Format(time.RFC3339))
	return nil
}

func ensureEnvFile() {
	if os.Getenv("ENV_FILE") != "" {
		return
	}

	if _, err := os.Stat(".env"); err == nil {
		_ = os.Setenv("ENV_FILE", ".env")
		return
	}

	if _, err := os.Stat("../.env"); err == nil {
		_ = os.Setenv("ENV_FILE", "../.env")
	}
}
