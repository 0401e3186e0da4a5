package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"campaignpulse/internal/config"
	"campaignpulse/internal/logger"
	"campaignpulse/internal/queue"
	"campaignpulse/internal/redis"
	"campaignpulse/internal/scraper"
	"campaignpulse/internal/worker"
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

	rdb, err := redis.New(cfg.Redis.Addr)
	if err != nil {
		l.Fatal("failed to connect to redis", zap.Error(err))
	}
	defer rdb.Close()

	publisher, err := queue.NewKafka(cfg.Queue.Brokers, cfg.Queue.Topic)
	if err != nil {
		l.Fatal("failed to create queue", zap.Error(err))
	}
	defer publisher.Close()

	nitter := scraper.NewNitter(cfg.Scraper.Instance)

	w := worker.NewScraper(nitter, publisher, rdb, rdb, cfg.Scraper, l)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go w.Start(ctx)

	l.Info("scraper started",
		zap.String("instance", cfg.Scraper.Instance),
		zap.Strings("queries", cfg.Scraper.Queries))

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	l.Info("shutting down")
	cancel()
}
