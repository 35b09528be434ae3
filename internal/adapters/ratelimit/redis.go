package ratelimit

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// windowScript increments the counter and gives it a TTL in the same step. A key found
// without a TTL gets one too, so a counter can never outlive its window.
var windowScript = redis.NewScript(`
local n = redis.call('INCR', KEYS[1])
if redis.call('PTTL', KEYS[1]) < 0 then
	redis.call('PEXPIRE', KEYS[1], ARGV[1])
end
return n
`)

// RedisLimiter is a fixed window shared by every instance that points at the same Redis.
type RedisLimiter struct {
	client redis.Scripter
	prefix string
	window Window
}

var _ Limiter = (*RedisLimiter)(nil)

// NewRedisLimiter counts under keys "<prefix>:<key>".
func NewRedisLimiter(client redis.Scripter, prefix string, w Window) *RedisLimiter {
	return &RedisLimiter{client: client, prefix: prefix, window: w}
}

// Allow increments the window counter.
func (r *RedisLimiter) Allow(ctx context.Context, key string) (bool, error) {
	k := r.prefix + ":" + key
	n, err := windowScript.Run(ctx, r.client, []string{k}, r.window.Period.Milliseconds()).Int64()
	if err != nil {
		return false, fmt.Errorf("rate limit incr: %w", err)
	}
	return n <= int64(r.window.Limit), nil
}
