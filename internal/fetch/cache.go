package fetch

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/singleflight"
)

const cacheKeyPrefix = "tesoreria:csv:"

// Cache keeps successfully downloaded CSV bodies in Redis for a fixed TTL.
// Entries are invalidated only by expiry or by a refresh load, which skips the
// read and overwrites the entry.
type Cache struct {
	client *redis.Client
	ttl    time.Duration
	group  singleflight.Group
	logger *slog.Logger
}

// NewCache returns nil when client is nil or ttl is not positive, which turns
// caching off for the Fetcher.
func NewCache(client *redis.Client, ttl time.Duration, logger *slog.Logger) *Cache {
	if client == nil || ttl <= 0 {
		return nil
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Cache{client: client, ttl: ttl, logger: logger}
}

// Load returns the cached body for rawURL or populates it with loader.
// Concurrent loads of the same URL share one download. Redis errors degrade to
// a direct download.
func (c *Cache) Load(ctx context.Context, rawURL string, refresh bool, loader func(context.Context) (string, error)) (string, bool, error) {
	if c == nil || c.client == nil {
		body, err := loader(ctx)
		return body, false, err
	}
	key := cacheKey(rawURL)
	if !refresh {
		body, err := c.client.Get(ctx, key).Result()
		switch {
		case err == nil:
			return body, true, nil
		case !errors.Is(err, redis.Nil):
			c.logger.Warn("csv cache read", slog.String("url", rawURL), slog.Any("error", err))
		}
	}

	// The flight is shared with other requests, so it must outlive the caller
	// that started it. The loader applies its own per-URL timeout.
	flightCtx := context.WithoutCancel(ctx)
	ch := c.group.DoChan(key, func() (interface{}, error) {
		body, err := loader(flightCtx)
		if err != nil {
			return "", err
		}
		if err := c.client.Set(flightCtx, key, body, c.ttl).Err(); err != nil {
			c.logger.Warn("csv cache write", slog.String("url", rawURL), slog.Any("error", err))
		}
		return body, nil
	})
	select {
	case <-ctx.Done():
		return "", false, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return "", false, res.Err
		}
		return res.Val.(string), false, nil
	}
}

func cacheKey(rawURL string) string {
	sum := sha256.Sum256([]byte(rawURL))
	return cacheKeyPrefix + hex.EncodeToString(sum[:])
}
