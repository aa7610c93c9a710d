package database

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	"github.com/Shivanand-hulikatti/event-rsvp/internal/config"
)

// ConnectMongo opens a client and returns the configured database. Like
// NewPool it retries while the server comes up.
func ConnectMongo(ctx context.Context, cfg config.Mongo, logger *slog.Logger) (*mongo.Client, *mongo.Database, error) {
	opts := options.Client().
		ApplyURI(cfg.URI).
		SetServerSelectionTimeout(5 * time.Second).
		SetSocketTimeout(45 * time.Second)

	client, err := mongo.Connect(ctx, opts)
	if err != nil {
		return nil, nil, fmt.Errorf("connect to mongo: %w", err)
	}

	for attempt := 1; attempt <= connectAttempts; attempt++ {
		if err = client.Ping(ctx, readpref.Primary()); err == nil {
			return client, client.Database(cfg.Database), nil
		}
		logger.Warn("mongo ping failed",
			"attempt", attempt, "max", connectAttempts, "error", err)
		if attempt < connectAttempts {
			select {
			case <-ctx.Done():
				_ = client.Disconnect(context.Background())
				return nil, nil, ctx.Err()
			case <-time.After(retryDelay):
			}
		}
	}
	_ = client.Disconnect(context.Background())
	return nil, nil, fmt.Errorf("ping mongo: %w", err)
}
