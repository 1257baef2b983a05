package main

import (
	"context"
	"os"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	"github.com/dmarchuk/accountd/internal/auth"
	"github.com/dmarchuk/accountd/internal/config"
	"github.com/dmarchuk/accountd/internal/httpapi"
	"github.com/dmarchuk/accountd/internal/logging"
	"github.com/dmarchuk/accountd/internal/store"
)

func main() {
	logger := logging.NewDefault()

	cfg, err := config.Load()
	if err != nil {
		logger.Error("configuration error", "error", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.MongoURI))
	if err != nil {
		logger.Error("could not connect to store", "error", err)
		os.Exit(1)
	}
	defer func() {
		_ = client.Disconnect(context.Background())
	}()

	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		logger.Error("store is unreachable", "error", err)
		os.Exit(1)
	}
	logger.Info("connected to store", "database", cfg.MongoDatabase)

	users := store.NewMongoUsers(client.Database(cfg.MongoDatabase))
	if err := users.EnsureIndexes(ctx); err != nil {
		logger.Error("could not ensure indexes", "error", err)
		os.Exit(1)
	}

	tokens := auth.NewTokenService(cfg.AccessTokenSecret, cfg.RefreshTokenSecret, cfg.AccessTokenTTL)
	svc := auth.NewService(users, tokens, auth.WithLogger(logger))
	mw := auth.NewMiddleware(tokens, users, auth.WithMiddlewareLogger(logger))

	srv := httpapi.New(httpapi.Config{
		Auth:       svc,
		Middleware: mw,
		Users:      users,
		Logger:     logger,
	})

	logger.Info("listening", "addr", cfg.Address)
	if err := srv.Listen(cfg.Address); err != nil {
		logger.Error("server stopped", "error", err)
		os.Exit(1)
	}
}
