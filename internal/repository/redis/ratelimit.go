package redis

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// Sliding window over a sorted set: one member per hit, scored by
// millisecond timestamp. The script prunes, records the hit and counts in a
// single round trip so concurrent reservation attempts see a consistent
// window.
//
// KEYS[1] = window key, ARGV = now_ms, window_ms, limit, member.
// Returns {allowed, count, retry_after_ms}.
const luaSlidingWindow = `
local key = KEYS[1]
local now = tonumber(ARGV[1])
local window = tonumber(ARGV[2])
local limit = tonumber(ARGV[3])
local member = ARGV[4]

redis.call('ZREMRANGEBYSCORE', key, 0, now - window)
redis.call('ZADD', key, 'NX', now, member)
local count = redis.call('ZCARD', key)
redis.call('PEXPIRE', key, window)

if count > limit then
  local earliest = redis.call('ZRANGE', key, 0, 0, 'WITHSCORES')
  local earliestScore = tonumber(earliest[2]) or (now - window)
  local retry_ms = window - (now - earliestScore)
  if retry_ms < 0 then retry_ms = 0 end
  return {0, count, retry_ms}
end
return {1, count, 0}
`

// SlidingWindowLimiter throttles reservation creation per caller. The seat
// lock and capacity CAS stay correct without it; the limiter only keeps one
// buyer from burning the retry budget for everyone else.
type SlidingWindowLimiter struct {
	rdb    *redis.Client
	prefix string
	limit  int
	window time.Duration
	script *redis.Script
}

func NewSlidingWindowLimiter(rdb *redis.Client, prefix string, limit int, window time.Duration) *SlidingWindowLimiter {
	return &SlidingWindowLimiter{
		rdb:    rdb,
		prefix: prefix,
		limit:  limit,
		window: window,
		script: redis.NewScript(luaSlidingWindow),
	}
}

// Allow records one hit for the subject and reports whether it stays within
// the limit, along with the current count and, when refused, how long until
// the earliest hit leaves the window.
func (l *SlidingWindowLimiter) Allow(ctx context.Context, subject string) (bool, int64, time.Duration, error) {
	key := fmt.Sprintf("%s:%s", l.prefix, subject)
	member := randomHex(12)

	res, err := l.script.Run(ctx, l.rdb,
		[]string{key},
		time.Now().UnixMilli(), l.window.Milliseconds(), l.limit, member,
	).Int64Slice()
	if err != nil {
		return false, 0, 0, err
	}
	if len(res) != 3 {
		return false, 0, 0, fmt.Errorf("rate limit script returned %d values", len(res))
	}

	allowed := res[0] == 1
	retryAfter := time.Duration(res[2]) * time.Millisecond

	return allowed, res[1], retryAfter, nil
}

func randomHex(n int) string {
	b := make([]byte, n)
	_, _ = rand.Read(b)
	return hex.EncodeToString(b)
}
