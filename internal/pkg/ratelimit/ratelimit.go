package ratelimit

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

// hitScript increments the counter and starts the window in one step.
// A counter left without a ttl gets one, so it can never stick forever.
var hitScript = redis.NewScript(`
local n = redis.call('INCR', KEYS[1])
if n == 1 or redis.call('PTTL', KEYS[1]) < 0 then
	redis.call('PEXPIRE', KEYS[1], ARGV[1])
end
return {n, redis.call('PTTL', KEYS[1])}
`)

// Limiter counts attempts per key inside a fixed window
type Limiter struct {
	rdb         *redis.Client
	maxAttempts int64
	window      time.Duration
	prefix      string
}

// New creates a limiter. A nil client disables limiting.
func New(rdb *redis.Client, prefix string, maxAttempts int, window time.Duration) *Limiter {
	return &Limiter{
		rdb:         rdb,
		maxAttempts: int64(maxAttempts),
		window:      window,
		prefix:      prefix,
	}
}

// Enabled reports whether attempts are being counted
func (l *Limiter) Enabled() bool {
	return l != nil && l.rdb != nil && l.maxAttempts > 0
}

// Subject joins the parts identifying a counter, e.g. client IP and email.
// Parts are trimmed and lower-cased.
func Subject(parts ...string) string {
	norm := make([]string, len(parts))
	for i, p := range parts {
		norm[i] = strings.ToLower(strings.TrimSpace(p))
	}
	return strings.Join(norm, "|")
}

func (l *Limiter) key(subject string) string {
	return fmt.Sprintf("rate_limit:%s:%s", l.prefix, subject)
}

// Allow records an attempt for subject and reports whether it is within the limit.
// When the limit is exceeded the remaining window is returned.
func (l *Limiter) Allow(ctx context.Context, subject string) (bool, time.Duration, error) {
	if !l.Enabled() {
		return true, 0, nil
	}

	res, err := hitScript.Run(ctx, l.rdb, []string{l.key(subject)}, l.window.Milliseconds()).Int64Slice()
	if err != nil {
		return false, 0, fmt.Errorf("failed to check rate limit in redis: %w", err)
	}
	if len(res) != 2 {
		return false, 0, fmt.Errorf("unexpected rate limit reply %v", res)
	}

	if res[0] <= l.maxAttempts {
		return true, 0, nil
	}
	return false, l.remaining(res[1]), nil
}

// Blocked reports whether subject has already used up its window, without
// counting an attempt.
func (l *Limiter) Blocked(ctx context.Context, subject string) (bool, time.Duration, error) {
	if !l.Enabled() {
		return false, 0, nil
	}

	key := l.key(subject)
	count, err := l.rdb.Get(ctx, key).Int64()
	if errors.Is(err, redis.Nil) {
		return false, 0, nil
	}
	if err != nil {
		return false, 0, fmt.Errorf("failed to read rate limit counter: %w", err)
	}
	if count < l.maxAttempts {
		return false, 0, nil
	}

	ttl, err := l.rdb.PTTL(ctx, key).Result()
	if err != nil {
		return false, 0, fmt.Errorf("failed to read rate limit ttl: %w", err)
	}
	return true, l.remaining(ttl.Milliseconds()), nil
}

func (l *Limiter) remaining(ms int64) time.Duration {
	if ms <= 0 {
		return l.window
	}
	return time.Duration(ms) * time.Millisecond
}

// Reset clears the counter for subject
func (l *Limiter) Reset(ctx context.Context, subject string) error {
	if !l.Enabled() {
		return nil
	}
	return l.rdb.Del(ctx, l.key(subject)).Err()
}
