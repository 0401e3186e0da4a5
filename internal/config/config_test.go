package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.Server.Port)
	assert.Equal(t, 30*time.Second, cfg.Scraper.Interval)
	assert.Equal(t, 72*time.Hour, cfg.Scraper.SeenTTL)
	assert.Equal(t, "comments", cfg.Queue.Topic)
	assert.Equal(t, "campaignpulse", cfg.Queue.GroupID)
	assert.Equal(t, "localhost:6379", cfg.Redis.Addr)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Empty(t, cfg.Classifier.CampaignFile)
}

func TestLoad_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
server:
  port: ":9000"
scraper:
  instance: nitter.net
  queries: ["bon yurt", "morenitas"]
  interval: 45s
queue:
  brokers: ["kafka:9092"]
classifier:
  campaign_file: campaigns/kefir.yaml
notifier:
  alert_topics: ["Product Quality Criticism"]
log:
  level: debug
  development: true
`), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, ":9000", cfg.Server.Port)
	assert.Equal(t, "nitter.net", cfg.Scraper.Instance)
	assert.Equal(t, []string{"bon yurt", "morenitas"}, cfg.Scraper.Queries)
	assert.Equal(t, 45*time.Second, cfg.Scraper.Interval)
	assert.Equal(t, 72*time.Hour, cfg.Scraper.SeenTTL, "unset keys keep defaults")
	assert.Equal(t, []string{"kafka:9092"}, cfg.Queue.Brokers)
	assert.Equal(t, "campaigns/kefir.yaml", cfg.Classifier.CampaignFile)
	assert.Equal(t, []string{"Product Quality Criticism"}, cfg.Notifier.AlertTopics)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.True(t, cfg.Log.Development)
}

func TestLoad_EnvOverrides(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("server:\n  port: \":9000\"\n"), 0o600))

	t.Setenv("CAMPAIGNPULSE_SERVER__PORT", ":9090")
	t.Setenv("CAMPAIGNPULSE_REDIS__ADDR", "redis:6379")
	t.Setenv("CAMPAIGNPULSE_QUEUE__BROKERS", "k1:9092,k2:9092")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, ":9090", cfg.Server.Port)
	assert.Equal(t, "redis:6379", cfg.Redis.Addr)
	assert.Equal(t, []string{"k1:9092", "k2:9092"}, cfg.Queue.Brokers)
}

func TestLoad_EnvLists(t *testing.T) {
	t.Setenv("CAMPAIGNPULSE_SCRAPER__QUERIES", "bon yurt, morenitas")
	t.Setenv("CAMPAIGNPULSE_NOTIFIER__TELEGRAM_CHAT_IDS", "123,456")
	t.Setenv("CAMPAIGNPULSE_NOTIFIER__ALERT_TOPICS", "Price Complaints,,Product Quality Criticism")
	t.Setenv("CAMPAIGNPULSE_QUEUE__BROKERS", "kafka:9092")

	cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.NoError(t, err)

	assert.Equal(t, []string{"bon yurt", "morenitas"}, cfg.Scraper.Queries)
	assert.Equal(t, []string{"123", "456"}, cfg.Notifier.TelegramChatIDs)
	assert.Equal(t, []string{"Price Complaints", "Product Quality Criticism"}, cfg.Notifier.AlertTopics)
	assert.Equal(t, []string{"kafka:9092"}, cfg.Queue.Brokers)
}

func TestEnvKeyValue(t *testing.T) {
	k, v := envKeyValue("CAMPAIGNPULSE_QUEUE__BROKERS", "a:1, b:2")
	assert.Equal(t, "queue.brokers", k)
	assert.Equal(t, []string{"a:1", "b:2"}, v)

	k, v = envKeyValue("CAMPAIGNPULSE_SERVER__PORT", ":9090")
	assert.Equal(t, "server.port", k)
	assert.Equal(t, ":9090", v)
}

func TestLoad_BadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("server: [unclosed"), 0o600))

	_, err := Load(path)
	require.Error(t, err)
}

func TestEnvKey(t *testing.T) {
	assert.Equal(t, "server.port", envKey("CAMPAIGNPULSE_SERVER__PORT"))
	assert.Equal(t, "scraper.seen_ttl", envKey("CAMPAIGNPULSE_SCRAPER__SEEN_TTL"))
}
