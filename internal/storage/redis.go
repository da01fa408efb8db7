package storage

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// pingTimeout bounds the one-off startup health check of the cache
// service. A failed ping marks the tier unavailable for the process
// lifetime; it is never retried per request.
const pingTimeout = 3 * time.Second

// dialRedis establishes and health-checks the cache-service connection.
func dialRedis(addr, password string, db int) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	ctx, cancel := context.WithTimeout(context.Background(), pingTimeout)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("redis ping failed: %w", err)
	}
	return client, nil
}

// redisTransport executes command batches over the persistent
// cache-service connection.
type redisTransport struct {
	client *redis.Client
}

func (t *redisTransport) Pipeline(ctx context.Context, cmds []Command) ([]any, error) {
	ctx, cancel := context.WithTimeout(ctx, writeTimeout)
	defer cancel()

	pipe := t.client.Pipeline()
	queued := make([]*redis.Cmd, len(cmds))
	for i, cmd := range cmds {
		args := make([]any, len(cmd))
		for j, a := range cmd {
			args[j] = a
		}
		queued[i] = pipe.Do(ctx, args...)
	}

	if _, err := pipe.Exec(ctx); err != nil && err != redis.Nil {
		return nil, err
	}

	results := make([]any, len(queued))
	for i, cmd := range queued {
		v, err := cmd.Result()
		if err == redis.Nil {
			v = nil
		} else if err != nil {
			return nil, err
		}
		results[i] = v
	}
	return results, nil
}

func (t *redisTransport) Read(ctx context.Context, cmd Command) (any, error) {
	ctx, cancel := context.WithTimeout(ctx, readTimeout)
	defer cancel()

	args := make([]any, len(cmd))
	for i, a := range cmd {
		args[i] = a
	}
	v, err := t.client.Do(ctx, args...).Result()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return v, nil
}
