package rediskv

import (
	"context"
	"fmt"
	"time"

	"github.com/ecom-auth-api/internal/config"
	"github.com/redis/go-redis/v9"
)

// Store is the expiring key-value store backing all OTP and rate-limit state.
// Expiry is enforced server-side by Redis TTLs; callers never sweep keys.
type Store struct {
	client *redis.Client
}

func NewClient(cfg *config.Config) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})
}

func NewStore(client *redis.Client) *Store {
	return &Store{client: client}
}

// Get returns the value for key, or "" when the key is absent or expired.
// Absence is not an error: every caller treats a missing key as default state.
func (s *Store) Get(ctx context.Context, key string) (string, error) {
	v, err := s.client.Get(ctx, key).Result()
	if err == redis.Nil {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("kv get %s: %w", key, err)
	}
	return v, nil
}

// Set writes value under key with the given TTL, overwriting any previous value.
func (s *Store) Set(ctx context.Context, key, value string, ttl time.Duration) error {
	if err := s.client.Set(ctx, key, value, ttl).Err(); err != nil {
		return fmt.Errorf("kv set %s: %w", key, err)
	}
	return nil
}

// Delete removes key. Deleting an absent key is not an error.
func (s *Store) Delete(ctx context.Context, key string) error {
	if err := s.client.Del(ctx, key).Err(); err != nil {
		return fmt.Errorf("kv delete %s: %w", key, err)
	}
	return nil
}

// Ping reports whether the store is reachable.
func (s *Store) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}
