package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"campaignpulse/internal/campaign"
	"campaignpulse/internal/classifier"
	"campaignpulse/internal/config"
	"campaignpulse/internal/logger"
	"campaignpulse/internal/notifier"
	"campaignpulse/internal/queue"
	"campaignpulse/internal/redis"
	"campaignpulse/internal/storage"
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

	camp, err := campaign.LoadOrDefault(cfg.Classifier.CampaignFile)
	if err != nil {
		l.Fatal("failed to load campaign", zap.Error(err))
	}
	engine, err := camp.Engine(classifier.WithLogger(l))
	if err != nil {
		l.Fatal("failed to build classifier", zap.Error(err))
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	repo, err := storage.NewPostgres(cfg.Storage.DSN)
	if err != nil {
		l.Fatal("failed to connect to storage", zap.Error(err))
	}
	defer repo.Close()

	if err := repo.Migrate(ctx); err != nil {
		l.Fatal("failed to migrate storage", zap.Error(err))
	}

	rdb, err := redis.New(cfg.Redis.Addr)
	if err != nil {
		l.Fatal("failed to connect to redis", zap.Error(err))
	}
	defer rdb.Close()

	consumer, err := queue.NewKafkaConsumer(cfg.Queue.Brokers, cfg.Queue.GroupID, cfg.Queue.Topic, l)
	if err != nil {
		l.Fatal("failed to create consumer", zap.Error(err))
	}
	defer consumer.Close()

	var nt notifier.Notifier = notifier.Nop{}
	if cfg.Notifier.TelegramToken != "" {
		nt = notifier.NewTelegram(cfg.Notifier.TelegramToken, cfg.Notifier.TelegramChatIDs)
	}

	w := worker.NewConsumer(worker.ConsumerDeps{
		Queue:       consumer,
		Repo:        repo,
		Classifier:  classifier.NewRuleBased(camp.Metadata.CampaignName, engine),
		Notifier:    nt,
		Counter:     rdb,
		AlertTopics: cfg.Notifier.AlertTopics,
		Logger:      l,
	})

	go func() {
		if err := w.Start(ctx); err != nil {
			l.Error("consumer stopped", zap.Error(err))
		}
	}()

	l.Info("consumer started", zap.String("campaign", camp.Metadata.CampaignName))

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	l.Info("shutting down")
	cancel()
}
