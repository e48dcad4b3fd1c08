package auth

import (
	"context"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
)

const revokedKeyPrefix = "barangay:revoked:"

// RedisRevocationStore shares the logout deny-list between server instances.
// Keys expire with the token, so Redis does the sweeping.
type RedisRevocationStore struct {
	client redis.Cmdable
	now    func() time.Time
}

func NewRedisRevocationStore(client redis.Cmdable) *RedisRevocationStore {
	return &RedisRevocationStore{client: client, now: time.Now}
}

// NewRedisClient parses a redis:// URL and verifies the server answers.
func NewRedisClient(ctx context.Context, url string) (*redis.Client, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}
	return client, nil
}

func revokedKey(jti string) string { return revokedKeyPrefix + jti }

// revocationTTL is how long a revocation must be kept. Already-expired tokens
// still get a short TTL so a racing request cannot slip through.
func revocationTTL(now, expiresAt time.Time) time.Duration {
	ttl := expiresAt.Sub(now)
	if ttl < time.Minute {
		return time.Minute
	}
	return ttl
}

func (s *RedisRevocationStore) Revoke(ctx context.Context, jti string, expiresAt time.Time) error {
	ttl := revocationTTL(s.now(), expiresAt)
	if err := s.client.Set(ctx, revokedKey(jti), "1", ttl).Err(); err != nil {
		return fmt.Errorf("revoke token: %w", err)
	}
	return nil
}

func (s *RedisRevocationStore) IsRevoked(ctx context.Context, jti string) (bool, error) {
	n, err := s.client.Exists(ctx, revokedKey(jti)).Result()
	if err != nil {
		return false, fmt.Errorf("check revoked token: %w", err)
	}
	return n > 0, nil
}
