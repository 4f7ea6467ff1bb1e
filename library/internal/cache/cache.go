package cache

import (
	"context"
	"encoding/json"
	"time"

	"github.com/Astemirdum/digital-library/library/internal/model"
	"github.com/pkg/errors"
	"github.com/redis/go-redis/v9"
)

const bookStatsKey = "library:stats:overview"

// StatsCache keeps the catalog overview in redis for a short ttl.
type StatsCache struct {
	client redis.Cmdable
	ttl    time.Duration
}

func NewStatsCache(client redis.Cmdable, ttl time.Duration) *StatsCache {
	return &StatsCache{client: client, ttl: ttl}
}

func (c *StatsCache) GetBookStats(ctx context.Context) (model.BookStats, bool, error) {
	data, err := c.client.Get(ctx, bookStatsKey).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return model.BookStats{}, false, nil
		}
		return model.BookStats{}, false, errors.Wrap(err, "redis get")
	}
	var stats model.BookStats
	if err := json.Unmarshal(data, &stats); err != nil {
		return model.BookStats{}, false, errors.Wrap(err, "json.Unmarshal")
	}
	return stats, true, nil
}

func (c *StatsCache) SetBookStats(ctx context.Context, stats model.BookStats) error {
	data, err := json.Marshal(stats)
	if err != nil {
		return errors.Wrap(err, "json.Marshal")
	}
	return c.client.Set(ctx, bookStatsKey, data, c.ttl).Err()
}

func (c *StatsCache) Invalidate(ctx context.Context) error {
	return c.client.Del(ctx, bookStatsKey).Err()
}
