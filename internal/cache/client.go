package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// Client caches rendered wallet responses (stats, feed, history) so the read
// path stays cheap while the simulator churns in the background. Entirely
// optional: the service runs fine without redis, it just recomputes.
type Client struct {
	rdb *redis.Client
}

const defaultTTL = 5 * time.Second

func New(dsn string) (*Client, error) {
	opts, err := redis.ParseURL(dsn)
	if err != nil {
		return nil, err
	}

	opts.PoolSize = 10
	opts.MinIdleConns = 5
	opts.ConnMaxIdleTime = 5 * time.Minute
	opts.ConnMaxLifetime = 30 * time.Minute

	rdb := redis.NewClient(opts)

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

func StatsKey(accountID string) string   { return fmt.Sprintf("wallet:stats:%s", accountID) }
func FeedKey(accountID string) string    { return fmt.Sprintf("wallet:feed:%s", accountID) }
func HistoryKey(accountID string) string { return fmt.Sprintf("wallet:history:%s", accountID) }

func (c *Client) Get(ctx context.Context, key string) (string, error) {
	return c.rdb.Get(ctx, key).Result()
}

func (c *Client) Set(ctx context.Context, key string, value interface{}) error {
	return c.rdb.Set(ctx, key, value, defaultTTL).Err()
}

// Invalidate drops every cached projection of one account. Called after any
// mutation so readers never see a stale balance longer than one round trip.
func (c *Client) Invalidate(ctx context.Context, accountID string) error {
	return c.rdb.Del(ctx, StatsKey(accountID), FeedKey(accountID), HistoryKey(accountID)).Err()
}

// InvalidateAll drops cached projections for a set of accounts; the
// engagement simulator uses it after each tick.
func (c *Client) InvalidateAll(ctx context.Context, accountIDs []string) error {
	keys := make([]string, 0, len(accountIDs)*3)
	for _, id := range accountIDs {
		keys = append(keys, StatsKey(id), FeedKey(id), HistoryKey(id))
	}
	if len(keys) == 0 {
		return nil
	}
	return c.rdb.Del(ctx, keys...).Err()
}
