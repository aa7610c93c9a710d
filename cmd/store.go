package main

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"log/slog"

	"github.com/Shivanand-hulikatti/event-rsvp/internal/auth"
	"github.com/Shivanand-hulikatti/event-rsvp/internal/config"
	"github.com/Shivanand-hulikatti/event-rsvp/internal/database"
	"github.com/Shivanand-hulikatti/event-rsvp/internal/repository"
	"github.com/Shivanand-hulikatti/event-rsvp/internal/repository/memstore"
	"github.com/Shivanand-hulikatti/event-rsvp/internal/repository/mongostore"
	"github.com/Shivanand-hulikatti/event-rsvp/internal/service"
)

// openStore connects the backend selected by STORE_DRIVER. The returned
// closer releases everything openStore acquired.
func openStore(ctx context.Context, cfg config.Config, logger *slog.Logger) (repository.Store, func(), error) {
	switch cfg.StoreDriver {
	case config.DriverPostgres:
		pool, err := database.NewPool(ctx, cfg.DB, logger)
		if err != nil {
			return nil, nil, err
		}
		store := repository.NewPostgres(database.OpenDB(pool))
		logger.Info("connected to postgres", "host", cfg.DB.Host, "db", cfg.DB.DBName)
		return store, func() {
			_ = store.Close()
			pool.Close()
		}, nil

	case config.DriverMongo:
		client, db, err := database.ConnectMongo(ctx, cfg.Mongo, logger)
		if err != nil {
			return nil, nil, err
		}
		store := mongostore.New(client, db)
		if err := store.EnsureIndexes(ctx); err != nil {
			_ = store.Close()
			return nil, nil, err
		}
		logger.Info("connected to mongo", "db", cfg.Mongo.Database)
		return store, func() { _ = store.Close() }, nil

	case config.DriverMemory:
		logger.Warn("using in-memory store; data is lost on exit")
		return memstore.New(), func() {}, nil
	}
	return nil, nil, fmt.Errorf("unknown store driver %q", cfg.StoreDriver)
}

// services builds the service layer over store.
type services struct {
	events   *service.EventService
	users    *service.UserService
	comments *service.CommentService
}

func newServices(store repository.Store, cfg config.Config, logger *slog.Logger) (*services, error) {
	secret := cfg.Auth.JWTSecret
	if secret == "" {
		// Only the memory driver may run without a secret; tokens die with
		// the process anyway.
		b := make([]byte, 32)
		if _, err := rand.Read(b); err != nil {
			return nil, fmt.Errorf("generate token secret: %w", err)
		}
		secret = hex.EncodeToString(b)
		logger.Warn("JWT_SECRET not set; using a random secret")
	}
	tokens, err := auth.NewTokens(secret, cfg.Auth.Issuer, cfg.Auth.TokenTTL)
	if err != nil {
		return nil, err
	}

	opts := service.Options{StoreTimeout: cfg.StoreTimeout, Logger: logger}
	users := service.NewUserService(store, tokens, opts)
	return &services{
		events:   service.NewEventService(store, store, store, users, opts),
		users:    users,
		comments: service.NewCommentService(store, store, store, opts),
	}, nil
}
