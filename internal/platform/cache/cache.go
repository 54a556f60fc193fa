// Package cache connects to the Dragonfly/Redis instance that holds the
// seeder's run lock, so two seed processes never write the same database.
package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// Cache holds the client shared by the run lock and the /readyz check.
type Cache struct {
	Client *redis.Client
}

// ParseURL turns LEARN_CACHE_URL into client options.
func ParseURL(url string) (*redis.Options, error) {
	if url == "" {
		return nil, fmt.Errorf("cache URL is empty")
	}
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("invalid cache URL: %w", err)
	}
	return opts, nil
}

// New dials with short timeouts, names the connection pai-curriculum and
// fails unless the first ping succeeds.
func New(ctx context.Context, url string) (*Cache, error) {
	opts, err := ParseURL(url)
	if err != nil {
		return nil, err
	}

	opts.DialTimeout = 5 * time.Second
	opts.ReadTimeout = 3 * time.Second
	opts.WriteTimeout = 3 * time.Second
	opts.ClientName = "pai-curriculum"

	client := redis.NewClient(opts)

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("pinging cache: %w", err)
	}

	return &Cache{Client: client}, nil
}

// Close releases the connection pool.
func (c *Cache) Close() error {
	return c.Client.Close()
}

// HealthCheck pings the cache for /readyz.
func (c *Cache) HealthCheck(ctx context.Context) error {
	return c.Client.Ping(ctx).Err()
}
