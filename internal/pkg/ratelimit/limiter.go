// Package ratelimit counts units (requests, rows) per key in fixed Redis
// windows. The check and the increment happen in one Lua script, so
// concurrent callers cannot overshoot a limit.
package ratelimit

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// Script layout: KEYS are the window counters, ARGV[1] the increment, then
// limit and TTL per key. Returns {1, 0} when allowed or {0, i} when window
// i (1-based) would overflow. Nothing is incremented on denial.
var windowScript = redis.NewScript(`
local n = tonumber(ARGV[1])
for i, key in ipairs(KEYS) do
	local limit = tonumber(ARGV[2*i])
	local current = tonumber(redis.call("GET", key) or "0")
	if current + n > limit then
		return {0, i}
	end
end
for i, key in ipairs(KEYS) do
	local v = redis.call("INCRBY", key, n)
	if v == n then
		redis.call("EXPIRE", key, tonumber(ARGV[2*i+1]))
	end
end
return {1, 0}
`)

// Window is one limit: at most Limit units per Period.
type Window struct {
	Period time.Duration
	Limit  int64
}

// Limiter applies all of its windows to every key.
type Limiter struct {
	rdb     redis.Cmdable
	prefix  string
	windows []Window
	now     func() time.Time
}

// New creates a limiter. Windows with a zero limit or period are ignored.
func New(rdb redis.Cmdable, prefix string, windows ...Window) *Limiter {
	l := &Limiter{rdb: rdb, prefix: prefix, now: time.Now}
	for _, w := range windows {
		if w.Limit > 0 && w.Period > 0 {
			l.windows = append(l.windows, w)
		}
	}
	return l
}

// Allow records n units for key if every window has room. When denied,
// retryAfter is the time until the full window resets.
func (l *Limiter) Allow(ctx context.Context, key string, n int) (allowed bool, retryAfter time.Duration, err error) {
	if len(l.windows) == 0 {
		return true, 0, nil
	}
	now := l.now()
	keys := make([]string, len(l.windows))
	args := make([]any, 0, 1+2*len(l.windows))
	args = append(args, n)
	for i, w := range l.windows {
		bucket := now.UnixNano() / int64(w.Period)
		keys[i] = fmt.Sprintf("ratelimit:%s:%s:%d:%d", l.prefix, key, int64(w.Period/time.Second), bucket)
		ttl := int64(w.Period/time.Second) + 1
		args = append(args, w.Limit, ttl)
	}

	res, err := windowScript.Run(ctx, l.rdb, keys, args...).Int64Slice()
	if err != nil {
		return false, 0, fmt.Errorf("rate limit check: %w", err)
	}
	if res[0] == 1 {
		return true, 0, nil
	}
	w := l.windows[res[1]-1]
	next := time.Unix(0, (now.UnixNano()/int64(w.Period)+1)*int64(w.Period))
	return false, next.Sub(now), nil
}
