package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/playmatatu/gravityputt/internal/observability"
	"github.com/redis/go-redis/v9"
)

// Connect establishes a connection to Redis
func Connect(redisURL string) (*redis.Client, error) {
	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}

	client := redis.NewClient(opt)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}

	logger := observability.Component("redis")
	logger.Info().Str("addr", opt.Addr).Int("db", opt.DB).Msg("redis connected")
	return client, nil
}
