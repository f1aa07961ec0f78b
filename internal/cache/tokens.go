package cache

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

// Revocations tracks revoked token ids until they would have expired anyway.
// A nil client makes every operation a no-op.
type Revocations struct {
	rdb *redis.Client
}

// NewRevocations returns a revocation list backed by rdb.
func NewRevocations(rdb *redis.Client) *Revocations {
	return &Revocations{rdb: rdb}
}

// Revoke marks jti as revoked for ttl. Non-positive ttls are ignored since the
// token is already expired.
func (r *Revocations) Revoke(ctx context.Context, jti string, ttl time.Duration) error {
	if r == nil || r.rdb == nil || jti == "" || ttl <= 0 {
		return nil
	}
	return r.rdb.Set(ctx, RevokedTokenKey(jti), "1", ttl).Err()
}

// IsRevoked reports whether jti has been revoked.
func (r *Revocations) IsRevoked(ctx context.Context, jti string) (bool, error) {
	if r == nil || r.rdb == nil || jti == "" {
		return false, nil
	}
	n, err := r.rdb.Exists(ctx, RevokedTokenKey(jti)).Result()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}
