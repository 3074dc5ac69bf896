// Package rediskv is a storage.KV on Redis, used to share habit
// completion records between machines while the catalog stays local.
package rediskv

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/julianstephens/cadence/internal/constants"
	"github.com/julianstephens/cadence/internal/storage"
)

type KV struct {
	client  *redis.Client
	prefix  string
	timeout time.Duration
}

var _ storage.KV = (*KV)(nil)

// New connects to redisURL (redis://[user:pass@]host:port/db) and checks
// the connection with a PING.
func New(redisURL string) (*KV, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse Redis URL: %w", err)
	}

	kv := NewWithClient(redis.NewClient(opts))

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := kv.Ping(ctx); err != nil {
		kv.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return kv, nil
}

// NewWithClient wraps an existing client. Keys are namespaced under
// "cadence:".
func NewWithClient(client *redis.Client) *KV {
	return &KV{
		client:  client,
		prefix:  constants.RedisKeyPrefix,
		timeout: constants.RedisOpTimeout,
	}
}

func (k *KV) Get(key string) (string, bool, error) {
	ctx, cancel := context.WithTimeout(context.Background(), k.timeout)
	defer cancel()

	value, err := k.client.Get(ctx, k.prefix+key).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("failed to read key %s: %w", key, err)
	}
	return value, true, nil
}

func (k *KV) Set(key, value string) error {
	ctx, cancel := context.WithTimeout(context.Background(), k.timeout)
	defer cancel()

	if err := k.client.Set(ctx, k.prefix+key, value, 0).Err(); err != nil {
		return fmt.Errorf("failed to write key %s: %w", key, err)
	}
	return nil
}

// Ping checks if Redis is reachable
func (k *KV) Ping(ctx context.Context) error {
	return k.client.Ping(ctx).Err()
}

// Close closes the Redis connection
func (k *KV) Close() error {
	return k.client.Close()
}
