package cache

import (
	"context"
	"encoding/json"
	"log"
	"time"

	"github.com/go-redis/redis/v8"
)

// Client is a read-through cache over redis for the static reference
// payloads (races, worlds, dungeons, roles). When no redis address is
// configured the client degrades to calling the loader directly, so the
// API runs fine without redis in front of it.
type Client struct {
	rdb *redis.Client
}

// Default is the process-wide cache client, set by Init in main.
var Default = &Client{}

// Init connects the default client. An empty addr leaves caching disabled.
func Init(addr, password string) {
	if addr == "" {
		log.Println("REDIS_URL not set, reference-data caching disabled")
		return
	}
	Default.rdb = redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
	})
}

// Fetch returns the cached JSON value under key, or runs load, stores its
// result and returns it. Cache failures fall back to the loader.
func (c *Client) Fetch(ctx context.Context, key string, ttl time.Duration, dest interface{}, load func() (interface{}, error)) error {
	if c.rdb != nil {
		raw, err := c.rdb.Get(ctx, key).Bytes()
		if err == nil {
			return json.Unmarshal(raw, dest)
		}
		if err != redis.Nil {
			log.Println("cache read failed:", err)
		}
	}

	value, err := load()
	if err != nil {
		return err
	}
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	if c.rdb != nil {
		if err := c.rdb.Set(ctx, key, raw, ttl).Err(); err != nil {
			log.Println("cache write failed:", err)
		}
	}
	return json.Unmarshal(raw, dest)
}

// Invalidate drops cached keys after reference data changes.
func (c *Client) Invalidate(ctx context.Context, keys ...string) error {
	if c.rdb == nil || len(keys) == 0 {
		return nil
	}
	return c.rdb.Del(ctx, keys...).Err()
}
