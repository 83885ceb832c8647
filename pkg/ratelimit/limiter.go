package ratelimit

import (
	"context"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// KeyPrefix namespaces bucket keys in Redis.
const KeyPrefix = "ratelimit:tb:"

// bucketTTLSeconds is how long an idle bucket survives in Redis.
const bucketTTLSeconds = 60

// Token bucket state is {last_refill, tokens}; the script refills by elapsed
// time, then tries to take one token. Returns 1 when allowed, 0 otherwise.
var tokenBucket = redis.NewScript(`
	local key = KEYS[1]
	local rate = tonumber(ARGV[1])
	local capacity = tonumber(ARGV[2])
	local now = tonumber(ARGV[3])
	local ttl = tonumber(ARGV[4])

	local bucket = redis.call('HMGET', key, 'last_refill', 'tokens')
	local last_refill = tonumber(bucket[1]) or now
	local tokens = tonumber(bucket[2]) or capacity

	local elapsed = math.max(0, now - last_refill)
	tokens = math.min(capacity, tokens + elapsed * rate)

	local allowed = 0
	if tokens >= 1 then
		tokens = tokens - 1
		allowed = 1
	end

	redis.call('HSET', key, 'last_refill', tostring(now), 'tokens', tostring(tokens))
	redis.call('EXPIRE', key, ttl)
	return allowed
`)

// Config holds token bucket parameters.
type Config struct {
	Enabled           bool
	RequestsPerSecond float64
	BurstCapacity     int
}

// localBucket is an in-process token bucket and the last time it was used.
type localBucket struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// Limiter is a token bucket rate limiter keyed by caller. Buckets live in
// Redis when a client is configured, otherwise in process memory.
// Redis failures let the request through.
type Limiter struct {
	client *redis.Client
	config Config
	log    *zap.Logger
	now    func() time.Time

	mu        sync.Mutex
	local     map[string]*localBucket
	idleTTL   time.Duration
	nextSweep time.Time
}

// New creates a Limiter. client may be nil.
func New(client *redis.Client, config Config, log *zap.Logger) *Limiter {
	return &Limiter{
		client:  client,
		config:  config,
		log:     log,
		now:     time.Now,
		local:   make(map[string]*localBucket),
		idleTTL: localIdleTTL(config),
	}
}

// localIdleTTL is how long an unused in-process bucket is kept. It is never
// shorter than the time a bucket needs to refill completely, so dropping it
// cannot hand a caller more tokens than waiting would.
func localIdleTTL(cfg Config) time.Duration {
	ttl := time.Duration(bucketTTLSeconds) * time.Second
	if cfg.RequestsPerSecond > 0 {
		refill := time.Duration(float64(cfg.BurstCapacity) / cfg.RequestsPerSecond * float64(time.Second))
		if refill > ttl {
			ttl = refill
		}
	}
	return ttl
}

// Config returns the limiter's parameters.
func (l *Limiter) Config() Config {
	return l.config
}

// Allow reports whether one more request for key may proceed.
func (l *Limiter) Allow(ctx context.Context, key string) bool {
	if l == nil || !l.config.Enabled {
		return true
	}
	if l.client == nil {
		return l.localLimiter(key).AllowN(l.now(), 1)
	}

	now := float64(l.now().UnixMicro()) / 1e6
	allowed, err := tokenBucket.Run(ctx, l.client, []string{KeyPrefix + key},
		l.config.RequestsPerSecond,
		l.config.BurstCapacity,
		now,
		bucketTTLSeconds,
	).Int64()
	if err != nil {
		l.log.Warn("rate limiter redis error, allowing request",
			zap.String("key", key),
			zap.Error(err),
		)
		return true
	}
	return allowed == 1
}

func (l *Limiter) localLimiter(key string) *rate.Limiter {
	now := l.now()

	l.mu.Lock()
	defer l.mu.Unlock()

	if !now.Before(l.nextSweep) {
		l.sweep(now)
	}

	b, ok := l.local[key]
	if !ok {
		b = &localBucket{limiter: rate.NewLimiter(rate.Limit(l.config.RequestsPerSecond), l.config.BurstCapacity)}
		l.local[key] = b
	}
	b.lastSeen = now
	return b.limiter
}

// sweep drops buckets idle for longer than idleTTL. Callers hold l.mu.
func (l *Limiter) sweep(now time.Time) {
	for key, b := range l.local {
		if now.Sub(b.lastSeen) > l.idleTTL {
			delete(l.local, key)
		}
	}
	l.nextSweep = now.Add(l.idleTTL)
}
