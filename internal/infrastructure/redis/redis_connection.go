// Package redis provides Redis connection management for the service.
// All rate-limit counters, cache entries, traffic buckets and alert
// cooldowns live in this store; it is the sole synchronization point.
package redis

import (
	"context"

	goredis "github.com/redis/go-redis/v9"

	"github.com/printstarter/printstarter/internal/config"
	"github.com/printstarter/printstarter/pkg/logger"
)

// Connection manages the Redis client lifecycle.
type Connection struct {
	Client goredis.UniversalClient
	log    logger.Logger
}

// NewConnection creates a Redis connection and verifies it with a ping.
// A UniversalClient is used so a cluster address list works unchanged.
func NewConnection(ctx context.Context, cfg *config.RedisConfig, log logger.Logger) (*Connection, error) {
	client := goredis.NewUniversalClient(&goredis.UniversalOptions{
		Addrs:        cfg.Addresses,
		Password:     cfg.Password,
		DB:           cfg.DB,
		PoolSize:     cfg.PoolSize,
		MinIdleConns: cfg.MinIdleConns,
	})

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, err
	}

	log.Info(ctx, "redis connection established",
		logger.Any("addresses", cfg.Addresses),
		logger.Int("db", cfg.DB),
	)

	return &Connection{Client: client, log: log}, nil
}

// Ping checks store reachability for health probes.
func (c *Connection) Ping(ctx context.Context) error {
	return c.Client.Ping(ctx).Err()
}

// Close releases the underlying client.
func (c *Connection) Close() error {
	return c.Client.Close()
}
