package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/snigenigmatic/QuadChat/internal/config"
	"github.com/snigenigmatic/QuadChat/internal/domain"
)

// RedisHistoryCache implements HistoryCache using Redis.
type RedisHistoryCache struct {
	client *redis.Client
	prefix string
}

// NewRedisHistoryCache creates a new Redis-backed history cache.
func NewRedisHistoryCache(cfg config.RedisConfig) (*RedisHistoryCache, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Address,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	prefix := cfg.Prefix
	if prefix == "" {
		prefix = "quadchat:history"
	}

	return &RedisHistoryCache{client: client, prefix: prefix}, nil
}

func (c *RedisHistoryCache) key(roomID string, limit int) string {
	return fmt.Sprintf("%s:%s:%d", c.prefix, roomID, limit)
}

// invalidateSetKey tracks all cached keys per room so Invalidate can drop
// every limit variant at once.
func (c *RedisHistoryCache) keySetKey(roomID string) string {
	return fmt.Sprintf("%s:%s:keys", c.prefix, roomID)
}

func (c *RedisHistoryCache) Get(ctx context.Context, roomID string, limit int) ([]domain.Message, error) {
	data, err := c.client.Get(ctx, c.key(roomID, limit)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrCacheMiss
		}
		return nil, fmt.Errorf("failed to get from redis: %w", err)
	}

	var messages []domain.Message
	if err := json.Unmarshal(data, &messages); err != nil {
		return nil, fmt.Errorf("failed to unmarshal cached history: %w", err)
	}
	return messages, nil
}

func (c *RedisHistoryCache) Set(ctx context.Context, roomID string, limit int, messages []domain.Message, ttl time.Duration) error {
	data, err := json.Marshal(messages)
	if err != nil {
		return fmt.Errorf("failed to marshal history: %w", err)
	}

	key := c.key(roomID, limit)
	pipe := c.client.TxPipeline()
	pipe.Set(ctx, key, data, ttl)
	pipe.SAdd(ctx, c.keySetKey(roomID), key)
	pipe.Expire(ctx, c.keySetKey(roomID), ttl)
	_, err = pipe.Exec(ctx)
	return err
}

func (c *RedisHistoryCache) Invalidate(ctx context.Context, roomID string) error {
	setKey := c.keySetKey(roomID)
	keys, err := c.client.SMembers(ctx, setKey).Result()
	if err != nil {
		return err
	}
	if len(keys) == 0 {
		return nil
	}

	pipe := c.client.TxPipeline()
	pipe.Del(ctx, keys...)
	pipe.Del(ctx, setKey)
	_, err = pipe.Exec(ctx)
	return err
}

func (c *RedisHistoryCache) Close() error {
	return c.client.Close()
}
