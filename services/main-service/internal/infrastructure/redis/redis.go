package redis

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

type Cache struct {
	Client *redis.Client
}

func New(addr, pass string, db int) *Cache {
	rdb := redis.NewClient(&redis.Options{
		Addr: addr, Password: pass, DB: db,
	})
	return &Cache{Client: rdb}
}

func viewsKey(eventID int64) string {
	return "event:views:" + strconv.FormatInt(eventID, 10)
}

// GetViews returns the cached counts for the ids that have one; misses are
// simply absent from the map.
func (c *Cache) GetViews(ctx context.Context, eventIDs []int64) (map[int64]int64, error) {
	out := make(map[int64]int64, len(eventIDs))
	if len(eventIDs) == 0 {
		return out, nil
	}
	keys := make([]string, len(eventIDs))
	for i, id := range eventIDs {
		keys[i] = viewsKey(id)
	}
	vals, err := c.Client.MGet(ctx, keys...).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return out, nil
		}
		return out, err
	}
	for i, v := range vals {
		s, ok := v.(string)
		if !ok {
			continue
		}
		n, err := strconv.ParseInt(s, 10, 64)
		if err != nil {
			continue
		}
		out[eventIDs[i]] = n
	}
	return out, nil
}

func (c *Cache) SetViews(ctx context.Context, views map[int64]int64, ttl time.Duration) error {
	if len(views) == 0 {
		return nil
	}
	_, err := c.Client.Pipelined(ctx, func(p redis.Pipeliner) error {
		for id, n := range views {
			p.Set(ctx, viewsKey(id), n, ttl)
		}
		return nil
	})
	return err
}

// AllowRequest: Simple Fixed Window Rate Limit
func (c *Cache) AllowRequest(ctx context.Context, ip string, limit int, window time.Duration) (bool, error) {
	key := "ratelimit:" + ip
	count, err := c.Client.Incr(ctx, key).Result()
	if err != nil {
		return true, nil // fail open
	}
	if count == 1 {
		_ = c.Client.Expire(ctx, key, window).Err()
	}
	return count <= int64(limit), nil
}

func (c *Cache) Ping(ctx context.Context) error {
	return c.Client.Ping(ctx).Err()
}

func (c *Cache) Close() error {
	return c.Client.Close()
}
