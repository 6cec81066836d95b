package labels

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// ArtifactCache stores rendered label artifacts by fingerprint
type ArtifactCache interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, artifact []byte) error
}

// Fingerprint identifies a rendered artifact by format and resolved sheet content
func Fingerprint(format string, sheet *Sheet) (string, error) {
	encoded, err := json.Marshal(sheet)
	if err != nil {
		return "", fmt.Errorf("failed to encode sheet: %w", err)
	}
	sum := sha256.Sum256(append([]byte(format+"\n"), encoded...))
	return format + ":" + hex.EncodeToString(sum[:]), nil
}

// RedisKV is the part of the go-redis client the cache uses
type RedisKV interface {
	Get(ctx context.Context, key string) *redis.StringCmd
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd
}

// RedisCache keeps artifacts in Redis with a fixed time to live
type RedisCache struct {
	client RedisKV
	prefix string
	ttl    time.Duration
}

// NewRedisCache wraps a go-redis client
func NewRedisCache(client RedisKV, ttl time.Duration) *RedisCache {
	return &RedisCache{client: client, prefix: "inventory:labels:", ttl: ttl}
}

func (c *RedisCache) Get(ctx context.Context, key string) ([]byte, bool, error) {
	artifact, err := c.client.Get(ctx, c.prefix+key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("failed to read label cache: %w", err)
	}
	return artifact, true, nil
}

func (c *RedisCache) Set(ctx context.Context, key string, artifact []byte) error {
	if err := c.client.Set(ctx, c.prefix+key, artifact, c.ttl).Err(); err != nil {
		return fmt.Errorf("failed to write label cache: %w", err)
	}
	return nil
}
