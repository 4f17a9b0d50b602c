package service

import (
	"context"
	"fmt"
	"time"

	"github.com/Triltsch/DiWeiWei-Nano-Market/pkg/database"
	"github.com/redis/go-redis/v9"
)

const (
	refreshKeyPrefix  = "refresh_token:"
	denylistKeyPrefix = "denylist:"
)

// RedisTokenStore implements TokenStore on Redis. All operations are
// point lookups and writes with TTL; Redis enforces expiry itself.
type RedisTokenStore struct {
	redis *database.Redis
}

// NewRedisTokenStore creates a Redis-backed token store
func NewRedisTokenStore(redis *database.Redis) *RedisTokenStore {
	return &RedisTokenStore{redis: redis}
}

// StoreRefresh records token as the single currently-valid refresh
// token for the user, overwriting any previous one.
func (s *RedisTokenStore) StoreRefresh(ctx context.Context, userID, token string, ttl time.Duration) error {
	key := refreshKeyPrefix + userID
	if err := s.redis.Client.Set(ctx, key, token, ttl).Err(); err != nil {
		return fmt.Errorf("failed to store refresh token: %w", err)
	}
	return nil
}

// swapRefreshScript compares and replaces the current refresh token in
// one Redis round trip. GET on a missing key yields false, which never
// equals the expected token, so "not stored" loses the swap too.
var swapRefreshScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	redis.call("SET", KEYS[1], ARGV[2], "PX", ARGV[3])
	return 1
end
return 0
`)

// SwapRefresh atomically replaces the user's current refresh token with
// next, but only while it still equals expected. It reports whether the
// swap happened; concurrent callers presenting the same expected token
// see exactly one true.
func (s *RedisTokenStore) SwapRefresh(ctx context.Context, userID, expected, next string, ttl time.Duration) (bool, error) {
	key := refreshKeyPrefix + userID
	res, err := swapRefreshScript.Run(ctx, s.redis.Client, []string{key}, expected, next, ttl.Milliseconds()).Int()
	if err != nil {
		return false, fmt.Errorf("failed to swap refresh token: %w", err)
	}
	return res == 1, nil
}

// DeleteRefresh removes the current refresh token record for the user
func (s *RedisTokenStore) DeleteRefresh(ctx context.Context, userID string) error {
	key := refreshKeyPrefix + userID
	if err := s.redis.Client.Del(ctx, key).Err(); err != nil {
		return fmt.Errorf("failed to delete refresh token: %w", err)
	}
	return nil
}

// Denylist marks a token as revoked until its natural expiry
func (s *RedisTokenStore) Denylist(ctx context.Context, token string, ttl time.Duration) error {
	if ttl <= 0 {
		// Already expired, signature verification rejects it anyway
		return nil
	}
	key := denylistKeyPrefix + token
	if err := s.redis.Client.Set(ctx, key, "1", ttl).Err(); err != nil {
		return fmt.Errorf("failed to denylist token: %w", err)
	}
	return nil
}

// IsDenylisted checks whether a token has been revoked
func (s *RedisTokenStore) IsDenylisted(ctx context.Context, token string) (bool, error) {
	key := denylistKeyPrefix + token
	exists, err := s.redis.Client.Exists(ctx, key).Result()
	if err != nil {
		return false, fmt.Errorf("failed to check denylist: %w", err)
	}
	return exists > 0, nil
}
