package worker

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"campaignpulse/internal/campaign"
	"campaignpulse/internal/classifier"
	"campaignpulse/internal/config"
	"campaignpulse/internal/domain"
	"campaignpulse/internal/notifier"
)

type fakeScraper struct {
	byQuery map[string][]domain.Comment
	err     map[string]error
	calls   []string
}

func (f *fakeScraper) Scrape(_ context.Context, query string) ([]domain.Comment, error) {
	f.calls = append(f.calls, query)
	if err := f.err[query]; err != nil {
		return nil, err
	}
	return f.byQuery[query], nil
}

type fakePublisher struct {
	published []domain.Comment
	failID    string
}

func (f *fakePublisher) Publish(_ context.Context, c domain.Comment) error {
	if c.ID == f.failID {
		return errors.New("broker down")
	}
	f.published = append(f.published, c)
	return nil
}

func (f *fakePublisher) Close() error { return nil }

type fakeSeen struct {
	ids map[string]bool
}

func (f *fakeSeen) MarkSeen(_ context.Context, id string, _ time.Duration) (bool, error) {
	if f.ids[id] {
		return false, nil
	}
	f.ids[id] = true
	return true, nil
}

type fakeQueries []string

func (f fakeQueries) GetQueries(context.Context) ([]string, error) { return f, nil }

func TestScraper_ScrapeAll(t *testing.T) {
	s := &fakeScraper{
		byQuery: map[string][]domain.Comment{
			"bon yurt":  {{ID: "1", Content: "muy caro"}, {ID: "2", Content: "delicioso"}},
			"morenitas": {{ID: "2", Content: "delicioso"}, {ID: "3", Content: "jaja"}},
		},
		err: map[string]error{"broken": errors.New("HTTP 500")},
	}
	pub := &fakePublisher{}
	seen := &fakeSeen{ids: map[string]bool{}}

	w := NewScraper(s, pub, seen, fakeQueries{"morenitas", "bon yurt", "broken"},
		config.ScraperConfig{Queries: []string{"bon yurt"}, Interval: time.Minute, SeenTTL: time.Hour}, zap.NewNop())

	w.scrapeAll(context.Background())

	assert.Equal(t, []string{"bon yurt", "morenitas", "broken"}, s.calls)
	require.Len(t, pub.published, 3)
	assert.Equal(t, "1", pub.published[0].ID)
	assert.Equal(t, "2", pub.published[1].ID)
	assert.Equal(t, "3", pub.published[2].ID)

	// A second run sees only duplicates.
	w.scrapeAll(context.Background())
	assert.Len(t, pub.published, 3)
}

func TestScraper_StartStopsOnCancel(t *testing.T) {
	s := &fakeScraper{}
	w := NewScraper(s, &fakePublisher{}, &fakeSeen{ids: map[string]bool{}}, nil,
		config.ScraperConfig{Queries: []string{"q"}, Interval: time.Hour}, zap.NewNop())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		w.Start(ctx)
		close(done)
	}()

	cancel()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("scraper did not stop")
	}
}

func TestNewScraper_NonPositiveDurations(t *testing.T) {
	for _, d := range []time.Duration{0, -time.Second} {
		w := NewScraper(&fakeScraper{}, &fakePublisher{}, &fakeSeen{ids: map[string]bool{}}, nil,
			config.ScraperConfig{Queries: []string{"q"}, Interval: d, SeenTTL: d}, nil)

		assert.Equal(t, config.DefaultScrapeInterval, w.interval)
		assert.Equal(t, config.DefaultSeenTTL, w.seenTTL)

		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		assert.NotPanics(t, func() { w.Start(ctx) })
	}
}

type fakeRepo struct {
	saved   []domain.ClassifiedComment
	saveErr error
}

func (f *fakeRepo) Save(_ context.Context, c domain.ClassifiedComment) error {
	if f.saveErr != nil {
		return f.saveErr
	}
	f.saved = append(f.saved, c)
	return nil
}

func (f *fakeRepo) FindByID(context.Context, string) (*domain.ClassifiedComment, error) {
	return nil, nil
}

func (f *fakeRepo) FindAll(context.Context, int, int) ([]domain.ClassifiedComment, error) {
	return f.saved, nil
}

func (f *fakeRepo) FindByTopic(context.Context, string, int, int) ([]domain.ClassifiedComment, error) {
	return nil, nil
}

func (f *fakeRepo) Exists(context.Context, string) (bool, error) { return false, nil }

func (f *fakeRepo) TopicCounts(context.Context, string) (map[string]int64, error) {
	return nil, nil
}

type fakeCounter struct {
	counts map[string]int64
}

func (f *fakeCounter) IncrTopic(_ context.Context, campaign, topic string) (int64, error) {
	f.counts[campaign+"/"+topic]++
	return f.counts[campaign+"/"+topic], nil
}

type fakeNotifier struct {
	sent []notifier.Notification
}

func (f *fakeNotifier) Notify(_ context.Context, n notifier.Notification) error {
	f.sent = append(f.sent, n)
	return nil
}

type fakeBroadcaster struct {
	mu   sync.Mutex
	msgs []string
}

func (f *fakeBroadcaster) Broadcast(msg string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.msgs = append(f.msgs, msg)
}

func newTestConsumer(t *testing.T, repo *fakeRepo) (*Consumer, *fakeCounter, *fakeNotifier, *fakeBroadcaster) {
	t.Helper()

	c, err := campaign.Default()
	require.NoError(t, err)
	engine, err := c.Engine()
	require.NoError(t, err)

	counter := &fakeCounter{counts: map[string]int64{}}
	n := &fakeNotifier{}
	b := &fakeBroadcaster{}

	w := NewConsumer(ConsumerDeps{
		Repo:        repo,
		Classifier:  classifier.NewRuleBased("bon-yurt", engine),
		Notifier:    n,
		Counter:     counter,
		Broadcaster: b,
		AlertTopics: []string{string(classifier.TopicQualityCriticism)},
	})
	w.now = func() time.Time { return time.Date(2025, 11, 20, 12, 0, 0, 0, time.UTC) }

	return w, counter, n, b
}

func TestConsumer_HandleComment(t *testing.T) {
	repo := &fakeRepo{}
	w, counter, n, b := newTestConsumer(t, repo)
	ctx := context.Background()

	require.NoError(t, w.handleComment(ctx, domain.Comment{ID: "1", Username: "ana", Content: "Delicioso como siempre"}))
	require.NoError(t, w.handleComment(ctx, domain.Comment{ID: "2", Username: "luis", Content: "El kumis es pura agua"}))

	require.Len(t, repo.saved, 2)
	assert.Equal(t, "Positive Product Opinion", repo.saved[0].Topic)
	assert.Equal(t, "positive", repo.saved[0].Rule)
	assert.Equal(t, "bon-yurt", repo.saved[0].Campaign)
	assert.Equal(t, 2025, repo.saved[0].ClassifiedAt.Year())
	assert.Equal(t, "Product Quality Criticism", repo.saved[1].Topic)

	assert.Equal(t, int64(1), counter.counts["bon-yurt/Positive Product Opinion"])
	assert.Equal(t, int64(1), counter.counts["bon-yurt/Product Quality Criticism"])

	require.Len(t, n.sent, 1, "only alert topics notify")
	assert.Equal(t, "2", n.sent[0].Comment.ID)

	require.Len(t, b.msgs, 2)
	assert.Contains(t, b.msgs[0], "@ana")
	assert.Contains(t, b.msgs[0], "Positive Product Opinion")
}

func TestConsumer_HandleComment_SaveError(t *testing.T) {
	repo := &fakeRepo{saveErr: errors.New("db down")}
	w, counter, n, b := newTestConsumer(t, repo)

	err := w.handleComment(context.Background(), domain.Comment{ID: "1", Content: "El kumis es pura agua"})
	require.Error(t, err)

	assert.Empty(t, counter.counts)
	assert.Empty(t, n.sent)
	assert.Empty(t, b.msgs)
}
