package redis

import (
	"context"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"
)

// Commands is the subset of the redis client used for revocations.
type Commands interface {
	Set(ctx context.Context, key string, value any, expiration time.Duration) *goredis.StatusCmd
	Exists(ctx context.Context, keys ...string) *goredis.IntCmd
}

// Revocations stores signed-out token ids with a TTL equal to the token's
// remaining lifetime, so every replica sees a sign-out.
type Revocations struct {
	rdb    Commands
	prefix string
	now    func() time.Time
}

func NewRevocations(rdb Commands, prefix string) *Revocations {
	return &Revocations{rdb: rdb, prefix: prefix, now: time.Now}
}

// NewClient parses a redis URL and checks the connection.
func NewClient(ctx context.Context, url string) (*goredis.Client, error) {
	opts, err := goredis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}

	rdb := goredis.NewClient(opts)
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}
	return rdb, nil
}

func (r *Revocations) Revoke(ctx context.Context, tokenID string, expiresAt time.Time) error {
	ttl := expiresAt.Sub(r.now())
	if ttl <= 0 {
		return nil
	}
	if err := r.rdb.Set(ctx, r.key(tokenID), 1, ttl).Err(); err != nil {
		return fmt.Errorf("set revocation: %w", err)
	}
	return nil
}

func (r *Revocations) IsRevoked(ctx context.Context, tokenID string) (bool, error) {
	n, err := r.rdb.Exists(ctx, r.key(tokenID)).Result()
	if err != nil {
		return false, fmt.Errorf("check revocation: %w", err)
	}
	return n > 0, nil
}

// Prune is a no-op: keys expire on their own.
func (r *Revocations) Prune(time.Time) int {
	return 0
}

func (r *Revocations) key(tokenID string) string {
	return r.prefix + "revoked:" + tokenID
}
