package config

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

// SetupMongo connects to the MongoDB deployment described by cfg.MongoDB and
// verifies it with a ping. The pool is capped at database.pool.max_open_conns.
// The caller owns the returned client and must Disconnect it.
func SetupMongo(ctx context.Context, cfg *DatabaseConfig, logger *slog.Logger) (*mongo.Client, error) {
	if cfg == nil {
		return nil, errors.New("database config is nil")
	}
	if logger == nil {
		return nil, errors.New("logger is nil")
	}

	pool, err := cfg.Pool.settings()
	if err != nil {
		return nil, err
	}
	timeout := cfg.MongoDB.ConnectTimeoutDuration()

	opts := options.Client().
		ApplyURI(cfg.MongoDB.URI).
		SetConnectTimeout(timeout).
		SetServerSelectionTimeout(timeout).
		SetMaxPoolSize(uint64(pool.maxOpen))

	client, err := mongo.Connect(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to mongodb: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	if err := client.Ping(pingCtx, readpref.Primary()); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("failed to ping mongodb: %w", err)
	}

	logger.Info("database connected",
		slog.String("driver", DriverMongoDB),
		slog.String("database", cfg.MongoDB.Database),
		slog.String("collection", cfg.MongoDB.Collection),
		slog.Int("max_pool_size", pool.maxOpen),
		slog.Duration("connect_timeout", timeout),
	)

	return client, nil
}
