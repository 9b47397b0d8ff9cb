package redisx

import (
	"context"
	"time"

	"github.com/bsm/redislock"
	"github.com/redis/go-redis/v9"

	"github.com/Shilpe266/dp-jewellers-sub000/pkg/config"
)

// Client bundles the redis connection with a lock factory. Both are nil when
// REDIS_ADDR is not configured; callers must treat that as "no locking".
type Client struct {
	RDB    *redis.Client
	Locker *redislock.Client
}

func Open(ctx context.Context, cfg config.Config) (*Client, error) {
	if cfg.RedisAddr == "" {
		return nil, nil
	}

	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := rdb.Ping(pingCtx).Err(); err != nil {
		_ = rdb.Close()
		return nil, err
	}

	return &Client{
		RDB:    rdb,
		Locker: redislock.New(rdb),
	}, nil
}

func (c *Client) Close() {
	if c == nil || c.RDB == nil {
		return
	}
	_ = c.RDB.Close()
}
