package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/linguameet/linguameet-api/docs"
	"github.com/linguameet/linguameet-api/internal/api"
	"github.com/linguameet/linguameet-api/internal/core/service"
	"github.com/linguameet/linguameet-api/internal/infrastructure/chat"
	"github.com/linguameet/linguameet-api/internal/infrastructure/config"
	mongostore "github.com/linguameet/linguameet-api/internal/infrastructure/db/mongo"
	redisstore "github.com/linguameet/linguameet-api/internal/infrastructure/db/redis"
	"github.com/linguameet/linguameet-api/internal/infrastructure/queue"
	"github.com/linguameet/linguameet-api/pkg/logger"
)

// @title          LinguaMeet API
// @version        1.0
// @description    Language-exchange social backend: profiles, friend requests, chat tokens.
// @BasePath       /
func main() {
	cfg := config.Load()
	log := logger.Init(logger.Options{
		Level:  cfg.LogLevel,
		Pretty: cfg.Env == "development",
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	client, db, err := mongostore.Connect(ctx, mongostore.Config{
		URI:      cfg.Mongo.URI,
		Database: cfg.Mongo.Database,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("mongo connection failed")
	}

	rdb, err := redisstore.Connect(ctx, redisstore.Config{
		Addr: cfg.Redis.Addr,
		DB:   cfg.Redis.DB,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("redis connection failed")
	}

	if err := mongostore.NewUserRepository(db).EnsureIndexes(ctx); err != nil {
		log.Fatal().Err(err).Msg("user index creation failed")
	}
	if err := mongostore.NewFriendRequestRepository(db).EnsureIndexes(ctx); err != nil {
		log.Fatal().Err(err).Msg("friend request index creation failed")
	}

	// Chat platform client: created once here, injected everywhere.
	chatClient := chat.NewClient(chat.Config{
		APIKey:    cfg.Chat.APIKey,
		APISecret: cfg.Chat.APISecret,
		BaseURL:   cfg.Chat.BaseURL,
	})

	syncer := service.NewProfileSyncService(chatClient, log)
	dispatcher := queue.NewDispatcher(cfg.SyncWorkers, syncer, log)
	dispatcher.Start(ctx)

	e := api.NewRouter(client, db, rdb, chatClient, dispatcher, cfg, log)

	go func() {
		if err := e.Start(":" + cfg.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("server start failed")
		}
	}()
	log.Info().Str("port", cfg.Port).Str("env", cfg.Env).Msg("server started")

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit
	log.Info().Msg("shutting down")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("server shutdown failed")
	}
	cancel() // stop sync workers

	if err := client.Disconnect(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("mongo disconnect failed")
	}
	if err := rdb.Close(); err != nil {
		log.Error().Err(err).Msg("redis close failed")
	}

	log.Info().Msg("server stopped")
}
