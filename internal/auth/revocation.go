package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"ibms/internal/cache"
)

// RevocationStore remembers logged-out token ids until the token would have
// expired anyway.
type RevocationStore interface {
	Revoke(ctx context.Context, jti string, ttl time.Duration) error
	IsRevoked(ctx context.Context, jti string) (bool, error)
}

const revokedKeyPrefix = "ibms:revoked:"

func revokedKey(jti string) string {
	return revokedKeyPrefix + jti
}

// RedisRevocations shares revocations between server instances.
type RedisRevocations struct {
	client *redis.Client
}

func NewRedisRevocations(client *redis.Client) *RedisRevocations {
	return &RedisRevocations{client: client}
}

// DialRedis connects and pings before returning the client.
func DialRedis(ctx context.Context, addr, password string, db int) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("ping redis %s: %w", addr, err)
	}
	return client, nil
}

func (r *RedisRevocations) Revoke(ctx context.Context, jti string, ttl time.Duration) error {
	if ttl <= 0 {
		return nil
	}
	if err := r.client.Set(ctx, revokedKey(jti), "1", ttl).Err(); err != nil {
		return fmt.Errorf("revoke token: %w", err)
	}
	return nil
}

func (r *RedisRevocations) IsRevoked(ctx context.Context, jti string) (bool, error) {
	err := r.client.Get(ctx, revokedKey(jti)).Err()
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, redis.Nil):
		return false, nil
	default:
		return false, fmt.Errorf("check revocation: %w", err)
	}
}

// memoryRevocationCap bounds the in-process set. Tokens are short lived, so
// the cap is only reached under abuse.
const memoryRevocationCap = 100_000

// MemoryRevocations keeps revocations in process. They are lost on restart.
type MemoryRevocations struct {
	cache *cache.LRUCache[struct{}]
}

func NewMemoryRevocations() *MemoryRevocations {
	return &MemoryRevocations{cache: cache.NewLRUCache[struct{}](memoryRevocationCap, 0)}
}

// Cache exposes the backing cache so a cache.Manager can purge expired ids.
func (m *MemoryRevocations) Cache() *cache.LRUCache[struct{}] {
	return m.cache
}

func (m *MemoryRevocations) Revoke(_ context.Context, jti string, ttl time.Duration) error {
	if ttl <= 0 {
		return nil
	}
	m.cache.SetWithTTL(jti, struct{}{}, ttl)
	return nil
}

func (m *MemoryRevocations) IsRevoked(_ context.Context, jti string) (bool, error) {
	_, ok := m.cache.Get(jti)
	return ok, nil
}
