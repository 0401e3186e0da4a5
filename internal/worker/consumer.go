package worker

import (
	"bytes"
	"context"
	"html/template"
	"time"

	"go.uber.org/zap"

	"campaignpulse/internal/classifier"
	"campaignpulse/internal/domain"
	"campaignpulse/internal/logger"
	"campaignpulse/internal/notifier"
	"campaignpulse/internal/queue"
	"campaignpulse/internal/storage"
)

type Broadcaster interface {
	Broadcast(msg string)
}

// TopicCounter keeps live per-topic totals.
type TopicCounter interface {
	IncrTopic(ctx context.Context, campaign, topic string) (int64, error)
}

type Consumer struct {
	consumer    queue.Consumer
	repo        storage.CommentRepository
	classifier  classifier.Classifier
	notifier    notifier.Notifier
	counter     TopicCounter
	broadcaster Broadcaster
	alertTopics map[classifier.Topic]bool
	feedTmpl    *template.Template
	logger      *zap.Logger
	now         func() time.Time
}

type ConsumerDeps struct {
	Queue       queue.Consumer
	Repo        storage.CommentRepository
	Classifier  classifier.Classifier
	Notifier    notifier.Notifier
	Counter     TopicCounter
	Broadcaster Broadcaster
	AlertTopics []string
	Logger      *zap.Logger
}

func NewConsumer(d ConsumerDeps) *Consumer {
	tmpl := template.Must(template.New("feed-item").Parse(`
<div class="item">
    <div class="item-head">
        <div class="item-author">@{{.Username}}</div>
        <div class="item-time">{{.TimeAgo}}</div>
    </div>
    <div class="item-body">{{.Content}}</div>
    <div class="tag">{{.Topic}}</div>
</div>`))

	alerts := make(map[classifier.Topic]bool, len(d.AlertTopics))
	for _, t := range d.AlertTopics {
		alerts[classifier.Topic(t)] = true
	}

	n := d.Notifier
	if n == nil {
		n = notifier.Nop{}
	}
	l := d.Logger
	if l == nil {
		l = zap.NewNop()
	}

	return &Consumer{
		consumer:    d.Queue,
		repo:        d.Repo,
		classifier:  d.Classifier,
		notifier:    n,
		counter:     d.Counter,
		broadcaster: d.Broadcaster,
		alertTopics: alerts,
		feedTmpl:    tmpl,
		logger:      l,
		now:         time.Now,
	}
}

func (w *Consumer) Start(ctx context.Context) error {
	return w.consumer.Consume(ctx, w.handleComment)
}

func (w *Consumer) handleComment(ctx context.Context, c domain.Comment) error {
	w.logger.Debug("comment received",
		zap.String("id", c.ID),
		zap.String("content", logger.Truncate(c.Content, 60)))

	result, err := w.classifier.Classify(ctx, c)
	if err != nil {
		// RuleBased never fails; other implementations leave the message for redelivery.
		w.logger.Error("classify failed", zap.String("id", c.ID), zap.Error(err))
		return err
	}

	classified := domain.ClassifiedComment{
		Comment:      c,
		Campaign:     result.Campaign,
		Topic:        string(result.Topic),
		Rule:         result.Rule,
		ClassifiedAt: w.now(),
	}

	if err := w.repo.Save(ctx, classified); err != nil {
		w.logger.Error("save failed", zap.String("id", c.ID), zap.Error(err))
		return err
	}

	if w.counter != nil {
		if _, err := w.counter.IncrTopic(ctx, result.Campaign, string(result.Topic)); err != nil {
			w.logger.Warn("topic counter failed", zap.String("topic", string(result.Topic)), zap.Error(err))
		}
	}

	if w.broadcaster != nil {
		var buf bytes.Buffer
		view := map[string]string{
			"Username": c.Username,
			"Content":  c.Content,
			"TimeAgo":  "just now",
			"Topic":    string(result.Topic),
		}
		if err := w.feedTmpl.Execute(&buf, view); err == nil {
			w.broadcaster.Broadcast(buf.String())
		}
	}

	w.logger.Info("comment classified",
		zap.String("id", c.ID),
		zap.String("topic", string(result.Topic)),
		zap.String("rule", result.Rule))

	if w.alertTopics[result.Topic] {
		if err := w.notifier.Notify(ctx, notifier.Notification{
			Comment: c,
			Result:  *result,
		}); err != nil {
			w.logger.Error("notify failed", zap.String("id", c.ID), zap.Error(err))
		}
	}

	return nil
}
