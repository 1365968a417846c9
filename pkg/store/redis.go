package store

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisConfig holds Redis connection settings.
type RedisConfig struct {
	// URL is the Redis connection URL (e.g., redis://localhost:6379/0).
	URL string `yaml:"url"`

	// Key is the hash holding the store cells.
	Key string `yaml:"key"`

	// Capacity in bytes (default: DefaultCapacity).
	Capacity int `yaml:"-"`
}

// DefaultRedisConfig returns defaults for a local Redis.
func DefaultRedisConfig() RedisConfig {
	return RedisConfig{
		URL: "redis://localhost:6379/0",
		Key: "doorlock:eeprom",
	}
}

// Redis is a store kept in a Redis hash, one field per written address.
type Redis struct {
	client   *redis.Client
	key      string
	capacity int
}

// NewRedis connects to Redis and verifies the connection.
func NewRedis(ctx context.Context, cfg RedisConfig) (*Redis, error) {
	opts, err := redis.ParseURL(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("invalid redis url: %w", err)
	}
	client := redis.NewClient(opts)

	pctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("redis ping failed: %w", err)
	}
	return NewRedisWithClient(client, cfg), nil
}

// NewRedisWithClient creates a store on an existing client.
func NewRedisWithClient(client *redis.Client, cfg RedisConfig) *Redis {
	if cfg.Key == "" {
		cfg.Key = DefaultRedisConfig().Key
	}
	if cfg.Capacity <= 0 {
		cfg.Capacity = DefaultCapacity
	}
	return &Redis{client: client, key: cfg.Key, capacity: cfg.Capacity}
}

func field(addr uint16) string {
	return strconv.FormatUint(uint64(addr), 10)
}

// Read returns the byte at addr.
func (r *Redis) Read(ctx context.Context, addr uint16) (byte, error) {
	if err := checkAddress(addr, r.capacity); err != nil {
		return 0, err
	}
	v, err := r.client.HGet(ctx, r.key, field(addr)).Result()
	if errors.Is(err, redis.Nil) {
		return Erased, nil
	}
	if err != nil {
		return 0, err
	}
	n, err := strconv.ParseUint(v, 10, 8)
	if err != nil {
		return 0, fmt.Errorf("corrupt cell 0x%04X: %w", addr, err)
	}
	return byte(n), nil
}

// Write stores b at addr.
func (r *Redis) Write(ctx context.Context, addr uint16, b byte) error {
	if err := checkAddress(addr, r.capacity); err != nil {
		return err
	}
	return r.client.HSet(ctx, r.key, field(addr), strconv.Itoa(int(b))).Err()
}

// Erase removes every cell.
func (r *Redis) Erase(ctx context.Context) error {
	return r.client.Del(ctx, r.key).Err()
}

// Close closes the Redis connection.
func (r *Redis) Close() error {
	return r.client.Close()
}

// Compile-time interface satisfaction check.
var _ Store = (*Redis)(nil)
