package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"math"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"golang.org/x/time/rate"
)

const (
	// rateLimitIPPrefix is the Redis key prefix for IP rate limits.
	rateLimitIPPrefix = "ratelimit:ip:"
	// rateLimitIPTTL is the TTL for IP rate limit keys.
	rateLimitIPTTL = 10 * time.Second
	// localLimiterIdle is how long an idle per-IP bucket is kept in memory.
	localLimiterIdle = 10 * time.Minute
)

// RateLimitResult contains the result of a rate limit check.
type RateLimitResult struct {
	Allowed    bool
	Remaining  int64
	ResetAt    time.Time
	RetryAfter time.Duration
}

// IPRateLimiter checks per-client request budgets.
type IPRateLimiter interface {
	CheckIPRateLimit(ctx context.Context, ip string, ratePerSecond, burst int) (*RateLimitResult, error)
}

// tokenBucketScript is a Lua script implementing the token bucket algorithm.
// It's atomic and handles token refill and consumption in a single operation.
var tokenBucketScript = redis.NewScript(`
	local key = KEYS[1]
	local rate = tonumber(ARGV[1])      -- tokens per second
	local burst = tonumber(ARGV[2])     -- max tokens (bucket capacity)
	local now = tonumber(ARGV[3])       -- current time in seconds
	local ttl = tonumber(ARGV[4])       -- TTL in seconds

	local data = redis.call('HMGET', key, 'tokens', 'last_update')
	local tokens = tonumber(data[1]) or burst
	local last_update = tonumber(data[2]) or now

	local elapsed = now - last_update
	tokens = math.min(burst, tokens + (elapsed * rate))

	local allowed = 0
	local retry_after = 0

	if tokens >= 1 then
		tokens = tokens - 1
		allowed = 1
	else
		retry_after = math.ceil((1 - tokens) / rate)
	end

	redis.call('HMSET', key, 'tokens', tokens, 'last_update', now)
	redis.call('EXPIRE', key, ttl)

	return {allowed, retry_after, math.floor(tokens)}
`)

// CheckIPRateLimit checks and updates the shared token bucket of an IP
// address. IP is hashed to avoid storing raw IP addresses.
func (c *Redis) CheckIPRateLimit(ctx context.Context, ip string, ratePerSecond, burst int) (*RateLimitResult, error) {
	key := rateLimitIPPrefix + hashIP(ip)
	now := time.Now().Unix()

	result, err := tokenBucketScript.Run(ctx, c.client,
		[]string{key},
		ratePerSecond, burst, now, int(rateLimitIPTTL.Seconds()),
	).Int64Slice()
	if err != nil {
		// Fail open on Redis errors - allow the request
		return &RateLimitResult{
			Allowed:   true,
			Remaining: int64(burst),
			ResetAt:   time.Now().Add(time.Second),
		}, nil
	}

	return &RateLimitResult{
		Allowed:    result[0] == 1,
		Remaining:  result[2],
		ResetAt:    time.Now().Add(time.Duration(float64(time.Second) / float64(ratePerSecond))),
		RetryAfter: time.Duration(result[1]) * time.Second,
	}, nil
}

// LocalRateLimiter keeps one token bucket per IP in process memory. It is
// used when no Redis is configured.
type LocalRateLimiter struct {
	mu        sync.Mutex
	buckets   map[string]*localBucket
	lastSweep time.Time
	now       func() time.Time
}

type localBucket struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// NewLocalRateLimiter creates an in-process IP limiter.
func NewLocalRateLimiter() *LocalRateLimiter {
	return &LocalRateLimiter{
		buckets: make(map[string]*localBucket),
		now:     time.Now,
	}
}

// CheckIPRateLimit consumes one token from the IP's bucket.
func (l *LocalRateLimiter) CheckIPRateLimit(_ context.Context, ip string, ratePerSecond, burst int) (*RateLimitResult, error) {
	now := l.now()
	key := hashIP(ip)

	l.mu.Lock()
	b, ok := l.buckets[key]
	if !ok {
		b = &localBucket{limiter: rate.NewLimiter(rate.Limit(ratePerSecond), burst)}
		l.buckets[key] = b
	}
	b.lastSeen = now
	l.evictIdle(now)
	l.mu.Unlock()

	res := &RateLimitResult{
		ResetAt: now.Add(time.Duration(float64(time.Second) / float64(ratePerSecond))),
	}

	r := b.limiter.ReserveN(now, 1)
	if !r.OK() {
		res.RetryAfter = time.Second
		return res, nil
	}
	if delay := r.DelayFrom(now); delay > 0 {
		r.CancelAt(now)
		res.RetryAfter = time.Duration(math.Ceil(delay.Seconds())) * time.Second
		return res, nil
	}

	res.Allowed = true
	res.Remaining = int64(math.Floor(b.limiter.TokensAt(now)))
	return res, nil
}

// evictIdle drops buckets unused for localLimiterIdle, at most once per
// minute. Callers hold l.mu.
func (l *LocalRateLimiter) evictIdle(now time.Time) {
	if now.Sub(l.lastSweep) < time.Minute {
		return
	}
	l.lastSweep = now
	for key, b := range l.buckets {
		if now.Sub(b.lastSeen) > localLimiterIdle {
			delete(l.buckets, key)
		}
	}
}

// hashIP creates a truncated SHA256 hash of an IP address.
// This provides privacy while maintaining uniqueness.
func hashIP(ip string) string {
	hash := sha256.Sum256([]byte(ip))
	return hex.EncodeToString(hash[:8]) // 16 hex chars
}
