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
	"campaignpulse/internal/notifier"
	"campaignpulse/internal/queue"
	"campaignpulse/internal/redis"
	"campaignpulse/internal/scraper"
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
	if err := camp.Validate(); err != nil {
		l.Fatal("invalid campaign", zap.Error(err))
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

	publisher, err := queue.NewKafka(cfg.Queue.Brokers, cfg.Queue.Topic)
	if err != nil {
		l.Fatal("failed to create publisher", zap.Error(err))
	}
	defer publisher.Close()

	consumer, err := queue.NewKafkaConsumer(cfg.Queue.Brokers, cfg.Queue.GroupID, cfg.Queue.Topic, l)
	if err != nil {
		l.Fatal("failed to create consumer", zap.Error(err))
	}
	defer consumer.Close()

	var nt notifier.Notifier = notifier.Nop{}
	if cfg.Notifier.TelegramToken != "" {
		nt = notifier.NewTelegram(cfg.Notifier.TelegramToken, cfg.Notifier.TelegramChatIDs)
	}

	server := api.NewServer(api.ServerDeps{
		Repo:     repo,
		Queries:  rdb,
		Counts:   rdb,
		Engine:   engine,
		Campaign: camp.Metadata,
		Logger:   l,
	})

	cw := worker.NewConsumer(worker.ConsumerDeps{
		Queue:       consumer,
		Repo:        repo,
		Classifier:  classifier.NewRuleBased(camp.Metadata.CampaignName, engine),
		Notifier:    nt,
		Counter:     rdb,
		Broadcaster: server,
		AlertTopics: cfg.Notifier.AlertTopics,
		Logger:      l,
	})

	sw := worker.NewScraper(scraper.NewNitter(cfg.Scraper.Instance), publisher, rdb, rdb, cfg.Scraper, l)

	go func() {
		if err := cw.Start(ctx); err != nil {
			l.Error("consumer stopped", zap.Error(err))
		}
	}()

	go sw.Start(ctx)

	go func() {
		l.Info("server starting", zap.String("addr", cfg.Server.Port))
		if err := server.Start(cfg.Server.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			l.Error("server stopped", zap.Error(err))
		}
	}()

	l.Info("app started",
		zap.String("campaign", camp.Metadata.CampaignName),
		zap.Int("rules", engine.RuleCount()))

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	l.Info("shutting down")
	cancel()
	_ = server.Shutdown()
}
