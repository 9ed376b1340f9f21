package database

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/jfrancis537/budget-oracle-sub000/internal/config"
)

const pingTimeout = 5 * time.Second

// Open открывает пул подключений к PostgreSQL. Неудачные попытки повторяются
// cfg.ConnectRetries раз, пауза между ними удваивается от cfg.ConnectBackoff.
func Open(ctx context.Context, cfg config.DatabaseConfig, logger *slog.Logger) (*pgxpool.Pool, error) {
	if logger == nil {
		logger = slog.Default()
	}

	poolConfig, err := poolConfig(cfg)
	if err != nil {
		return nil, err
	}

	backoff := cfg.ConnectBackoff
	var lastErr error
	for attempt := 1; attempt <= cfg.ConnectRetries; attempt++ {
		pool, err := connect(ctx, poolConfig)
		if err == nil {
			return pool, nil
		}
		lastErr = err

		if attempt == cfg.ConnectRetries {
			break
		}

		logger.Warn("database connection attempt failed",
			slog.Int("attempt", attempt),
			slog.Int("retries", cfg.ConnectRetries),
			slog.Duration("backoff", backoff),
			slog.String("error", err.Error()),
		)

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(backoff):
			backoff *= 2
		}
	}

	return nil, fmt.Errorf("connect to database after %d attempts: %w", cfg.ConnectRetries, lastErr)
}

func poolConfig(cfg config.DatabaseConfig) (*pgxpool.Config, error) {
	parsed, err := pgxpool.ParseConfig(cfg.DSN())
	if err != nil {
		return nil, fmt.Errorf("parse database config: %w", err)
	}

	parsed.MaxConns = int32(cfg.MaxOpenConns)
	// В pgxpool нет лимита простаивающих соединений, ближе всего MinConns.
	parsed.MinConns = int32(cfg.MaxIdleConns)
	parsed.MaxConnIdleTime = cfg.ConnMaxIdleTime
	parsed.MaxConnLifetime = cfg.ConnMaxLifetime

	return parsed, nil
}

func connect(ctx context.Context, poolConfig *pgxpool.Config) (*pgxpool.Pool, error) {
	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, err
	}

	pingCtx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()

	if err := pool.Ping(pingCtx); err != nil {
		pool.Close()
		return nil, err
	}

	return pool, nil
}
