package cache

import "fmt"

// Key layouts for everything the service stores in Redis.
const (
	RevokedTokenKeyPrefix = "blacklist:%s"
	RateLimitKeyPrefix    = "rl:%s:%s"
)

// RevokedTokenKey is the marker key for a revoked token id.
func RevokedTokenKey(jti string) string {
	return fmt.Sprintf(RevokedTokenKeyPrefix, jti)
}

// RateLimitKey is the fixed-window counter for one rule and caller.
func RateLimitKey(rule, caller string) string {
	return fmt.Sprintf(RateLimitKeyPrefix, rule, caller)
}
