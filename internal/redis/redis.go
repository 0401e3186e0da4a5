package redis

import (
	"context"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	queriesKey   = "queries"
	seenPrefix   = "seen:"
	topicsPrefix = "topics:"
)

type Client struct {
	rdb *redis.Client
}

func New(addr string) (*Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr: addr,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, err
	}

	return &Client{rdb: rdb}, nil
}

func (c *Client) Close() error {
	return c.rdb.Close()
}

// Tracked search queries
func (c *Client) AddQuery(ctx context.Context, query string) error {
	return c.rdb.SAdd(ctx, queriesKey, query).Err()
}

func (c *Client) RemoveQuery(ctx context.Context, query string) error {
	return c.rdb.SRem(ctx, queriesKey, query).Err()
}

func (c *Client) GetQueries(ctx context.Context) ([]string, error) {
	return c.rdb.SMembers(ctx, queriesKey).Result()
}

func (c *Client) QueryExists(ctx context.Context, query string) (bool, error) {
	return c.rdb.SIsMember(ctx, queriesKey, query).Result()
}

// MarkSeen records a comment ID and reports whether it was new.
func (c *Client) MarkSeen(ctx context.Context, id string, ttl time.Duration) (bool, error) {
	return c.rdb.SetNX(ctx, seenPrefix+id, 1, ttl).Result()
}

// Per-campaign topic counters
func (c *Client) IncrTopic(ctx context.Context, campaign, topic string) (int64, error) {
	return c.rdb.HIncrBy(ctx, topicsPrefix+campaign, topic, 1).Result()
}

func (c *Client) TopicCounts(ctx context.Context, campaign string) (map[string]int64, error) {
	raw, err := c.rdb.HGetAll(ctx, topicsPrefix+campaign).Result()
	if err != nil {
		return nil, err
	}

	counts := make(map[string]int64, len(raw))
	for topic, v := range raw {
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return nil, err
		}
		counts[topic] = n
	}
	return counts, nil
}
