package worker

import (
	"context"
	"time"

	"go.uber.org/zap"

	"campaignpulse/internal/config"
	"campaignpulse/internal/logger"
	"campaignpulse/internal/queue"
	"campaignpulse/internal/scraper"
)

// SeenStore remembers comment IDs across scraper runs and restarts.
type SeenStore interface {
	MarkSeen(ctx context.Context, id string, ttl time.Duration) (bool, error)
}

// QuerySource supplies search queries added at runtime.
type QuerySource interface {
	GetQueries(ctx context.Context) ([]string, error)
}

type Scraper struct {
	scraper   scraper.Scraper
	publisher queue.Publisher
	seen      SeenStore
	tracked   QuerySource
	queries   []string
	interval  time.Duration
	seenTTL   time.Duration
	logger    *zap.Logger
}

// NewScraper falls back to the default interval and seen TTL when the
// configured values are not positive.
func NewScraper(s scraper.Scraper, p queue.Publisher, seen SeenStore, tracked QuerySource, cfg config.ScraperConfig, l *zap.Logger) *Scraper {
	if l == nil {
		l = zap.NewNop()
	}
	if cfg.Interval <= 0 {
		l.Warn("invalid scrape interval, using default",
			zap.Duration("interval", cfg.Interval),
			zap.Duration("default", config.DefaultScrapeInterval))
		cfg.Interval = config.DefaultScrapeInterval
	}
	if cfg.SeenTTL <= 0 {
		l.Warn("invalid seen ttl, using default",
			zap.Duration("seen_ttl", cfg.SeenTTL),
			zap.Duration("default", config.DefaultSeenTTL))
		cfg.SeenTTL = config.DefaultSeenTTL
	}

	return &Scraper{
		scraper:   s,
		publisher: p,
		seen:      seen,
		tracked:   tracked,
		queries:   cfg.Queries,
		interval:  cfg.Interval,
		seenTTL:   cfg.SeenTTL,
		logger:    l,
	}
}

func (w *Scraper) Start(ctx context.Context) {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	w.scrapeAll(ctx)

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			w.scrapeAll(ctx)
		}
	}
}

func (w *Scraper) scrapeAll(ctx context.Context) {
	for _, query := range w.allQueries(ctx) {
		comments, err := w.scraper.Scrape(ctx, query)
		if err != nil {
			w.logger.Error("scrape failed", zap.String("query", query), zap.Error(err))
			continue
		}

		newCount := 0
		dupCount := 0

		for _, c := range comments {
			isNew, err := w.seen.MarkSeen(ctx, c.ID, w.seenTTL)
			if err != nil {
				w.logger.Error("mark seen failed", zap.String("id", c.ID), zap.Error(err))
				continue
			}
			if !isNew {
				dupCount++
				continue
			}
			newCount++

			if err := w.publisher.Publish(ctx, c); err != nil {
				w.logger.Error("publish failed", zap.String("id", c.ID), zap.Error(err))
				continue
			}
			w.logger.Debug("comment queued",
				zap.String("username", c.Username),
				zap.String("content", logger.Truncate(c.Content, 60)))
		}

		w.logger.Info("scrape done",
			zap.String("query", query),
			zap.Int("fetched", len(comments)),
			zap.Int("new", newCount),
			zap.Int("duplicates", dupCount))
	}
}

// allQueries merges configured and tracked queries, keeping configured ones first.
func (w *Scraper) allQueries(ctx context.Context) []string {
	queries := append([]string(nil), w.queries...)
	if w.tracked == nil {
		return queries
	}

	tracked, err := w.tracked.GetQueries(ctx)
	if err != nil {
		w.logger.Error("load tracked queries failed", zap.Error(err))
		return queries
	}

	seen := make(map[string]bool, len(queries))
	for _, q := range queries {
		seen[q] = true
	}
	for _, q := range tracked {
		if !seen[q] {
			seen[q] = true
			queries = append(queries, q)
		}
	}
	return queries
}
