package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"campaignpulse/internal/api"
	"campaignpulse/internal/campaign"
	"campaignpulse/internal/classifier"
	"campaignpulse/internal/config"
	"campaignpulse/internal/logger"
	"campaignpulse/internal/redis"
	"campaignpulse/internal/storage"
)

func main() {
	cfg, err := config.Load(os.Getenv("CAMPAIGNPULSE_CONFIG"))
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	l, err := logger.New(cfg.Log)
	if err != nil {
		log.Fatalf("failed to build logger: %v", err)
	}
	defer l.Sync()

	camp, err := campaign.LoadOrDefault(cfg.Classifier.CampaignFile)
	if err != nil {
		l.Fatal("failed to load campaign", zap.Error(err))
	}
	engine, err := camp.Engine(classifier.WithLogger(l))
	if err != nil {
		l.Fatal("failed to build classifier", zap.Error(err))
	}

	repo, err := storage.NewPostgres(cfg.Storage.DSN)
	if err != nil {
		l.Fatal("failed to connect to storage", zap.Error(err))
	}
	defer repo.Close()

	if err := repo.Migrate(context.Background()); err != nil {
		l.Fatal("failed to migrate storage", zap.Error(err))
	}

	rdb, err := redis.New(cfg.Redis.Addr)
	if err != nil {
		l.Fatal("failed to connect to redis", zap.Error(err))
	}
	defer rdb.Close()

	server := api.NewServer(api.ServerDeps{
		Repo:     repo,
		Queries:  rdb,
		Engine:   engine,
		Campaign: camp.Metadata,
		Logger:   l,
	})

	go func() {
		l.Info("server starting", zap.String("addr", cfg.Server.Port))
		if err := server.Start(cfg.Server.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			l.Error("server stopped", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	l.Info("shutting down")
	_ = server.Shutdown()
}
