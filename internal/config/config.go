package config

import (
	"errors"
	"io/fs"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// EnvPrefix marks environment overrides. A double underscore separates
// levels: CAMPAIGNPULSE_SERVER__PORT sets server.port.
const EnvPrefix = "CAMPAIGNPULSE_"

const DefaultPath = "config.yaml"

const (
	DefaultScrapeInterval = 30 * time.Second
	DefaultSeenTTL        = 72 * time.Hour
)

type Config struct {
	Server     ServerConfig     `koanf:"server"`
	Scraper    ScraperConfig    `koanf:"scraper"`
	Queue      QueueConfig      `koanf:"queue"`
	Storage    StorageConfig    `koanf:"storage"`
	Redis      RedisConfig      `koanf:"redis"`
	Classifier ClassifierConfig `koanf:"classifier"`
	Notifier   NotifierConfig   `koanf:"notifier"`
	Log        LogConfig        `koanf:"log"`
}

type ServerConfig struct {
	Port string `koanf:"port"`
}

type ScraperConfig struct {
	Instance string        `koanf:"instance"`
	Queries  []string      `koanf:"queries"`
	Interval time.Duration `koanf:"interval"`
	SeenTTL  time.Duration `koanf:"seen_ttl"`
}

type QueueConfig struct {
	Brokers []string `koanf:"brokers"`
	Topic   string   `koanf:"topic"`
	GroupID string   `koanf:"group_id"`
}

type StorageConfig struct {
	DSN string `koanf:"dsn"`
}

type RedisConfig struct {
	Addr string `koanf:"addr"`
}

type ClassifierConfig struct {
	// CampaignFile is a campaign YAML file. Empty selects the embedded campaign.
	CampaignFile string `koanf:"campaign_file"`
}

type NotifierConfig struct {
	TelegramToken   string   `koanf:"telegram_token"`
	TelegramChatIDs []string `koanf:"telegram_chat_ids"`
	AlertTopics     []string `koanf:"alert_topics"`
}

type LogConfig struct {
	Level       string `koanf:"level"`
	Development bool   `koanf:"development"`
}

func defaults() *Config {
	return &Config{
		Server:  ServerConfig{Port: ":8080"},
		Scraper: ScraperConfig{Interval: DefaultScrapeInterval, SeenTTL: DefaultSeenTTL},
		Queue:   QueueConfig{Topic: "comments", GroupID: "campaignpulse"},
		Redis:   RedisConfig{Addr: "localhost:6379"},
		Log:     LogConfig{Level: "info"},
	}
}

// Load reads path (DefaultPath when empty) and applies environment
// overrides. A missing file is not an error; everything can come from the
// environment.
func Load(path string) (*Config, error) {
	if path == "" {
		path = DefaultPath
	}

	k := koanf.New(".")

	if err := k.Load(file.Provider(path), yaml.Parser()); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, err
	}

	if err := k.Load(env.ProviderWithValue(EnvPrefix, ".", envKeyValue), nil); err != nil {
		return nil, err
	}

	cfg := defaults()
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

// listKeys are the settings whose environment values are comma separated.
var listKeys = map[string]bool{
	"scraper.queries":            true,
	"queue.brokers":              true,
	"notifier.telegram_chat_ids": true,
	"notifier.alert_topics":      true,
}

func envKeyValue(key, value string) (string, any) {
	k := envKey(key)
	if !listKeys[k] {
		return k, value
	}

	items := []string{}
	for _, v := range strings.Split(value, ",") {
		if v = strings.TrimSpace(v); v != "" {
			items = append(items, v)
		}
	}
	return k, items
}

func envKey(s string) string {
	s = strings.TrimPrefix(s, EnvPrefix)
	return strings.ReplaceAll(strings.ToLower(s), "__", ".")
}
