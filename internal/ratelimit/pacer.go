package ratelimit

import (
	"context"
	"fmt"
	"math"
	"math/rand/v2"
	"sync/atomic"
	"time"

	"github.com/go-redis/redis_rate/v10"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/buxdao/nft-ownership-sync/internal/adapter"
	"github.com/buxdao/nft-ownership-sync/internal/logger"
)

const (
	// DEFAULT_KEY_PREFIX namespaces the distributed limiter keys
	DEFAULT_KEY_PREFIX = "nft-sync:limiter:"

	// redisProbeInterval is how often an unavailable Redis is probed again
	redisProbeInterval = 10 * time.Second
)

// Pacer blocks until the caller may issue its next outbound request
//
//go:generate mockgen -source=pacer.go -destination=../mocks/pacer.go -package=mocks -mock_names=Pacer=MockPacer
type Pacer interface {
	// Wait blocks until a request slot is available or ctx is done
	Wait(ctx context.Context) error
}

// Config describes the pace of one outbound provider
type Config struct {
	// Name identifies the provider, used in the distributed key
	Name              string
	RequestsPerSecond float64
	Burst             int
	RedisKeyPrefix    string
}

func (c Config) withDefaults() Config {
	if c.RequestsPerSecond <= 0 {
		c.RequestsPerSecond = 1
	}
	if c.Burst <= 0 {
		c.Burst = 1
	}
	if c.RedisKeyPrefix == "" {
		c.RedisKeyPrefix = DEFAULT_KEY_PREFIX
	}
	return c
}

// redisLimit converts a fractional rate into a redis_rate limit
func (c Config) redisLimit() redis_rate.Limit {
	if c.RequestsPerSecond >= 1 {
		return redis_rate.Limit{
			Rate:   int(math.Floor(c.RequestsPerSecond)),
			Burst:  c.Burst,
			Period: time.Second,
		}
	}
	return redis_rate.Limit{
		Rate:   1,
		Burst:  c.Burst,
		Period: time.Duration(float64(time.Second) / c.RequestsPerSecond),
	}
}

type noopPacer struct{}

// NoopPacer returns a pacer that never waits
func NoopPacer() Pacer {
	return noopPacer{}
}

func (noopPacer) Wait(ctx context.Context) error {
	return ctx.Err()
}

// localPacer paces requests within this process only
type localPacer struct {
	limiter *rate.Limiter
}

// NewLocalPacer creates a process local token bucket pacer
func NewLocalPacer(cfg Config) Pacer {
	cfg = cfg.withDefaults()
	return &localPacer{limiter: rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), cfg.Burst)}
}

func (p *localPacer) Wait(ctx context.Context) error {
	return p.limiter.Wait(ctx)
}

// distributedPacer shares the request budget across processes through Redis and
// falls back to a local token bucket while Redis is unreachable
type distributedPacer struct {
	cfg            Config
	key            string
	limit          redis_rate.Limit
	redis          adapter.RedisClient
	limiter        adapter.RedisRateLimiter
	local          *rate.Limiter
	clock          adapter.Clock
	redisAvailable atomic.Bool
	lastProbe      atomic.Int64
}

// NewPacer creates a pacer for cfg. With a nil Redis client the pacer is local only.
func NewPacer(cfg Config, rc adapter.RedisClient, clock adapter.Clock) Pacer {
	cfg = cfg.withDefaults()
	if rc == nil {
		return NewLocalPacer(cfg)
	}

	p := &distributedPacer{
		cfg:     cfg,
		key:     fmt.Sprintf("%s%s", cfg.RedisKeyPrefix, cfg.Name),
		limit:   cfg.redisLimit(),
		redis:   rc,
		limiter: rc.NewRateLimiter(),
		local:   rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), cfg.Burst),
		clock:   clock,
	}
	p.redisAvailable.Store(true)
	return p
}

// Wait acquires a token from the distributed limiter, retrying after the hinted delay
func (p *distributedPacer) Wait(ctx context.Context) error {
	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		if !p.redisAvailable.Load() && !p.probe(ctx) {
			return p.local.Wait(ctx)
		}

		res, err := p.limiter.Allow(ctx, p.key, p.limit)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			p.redisAvailable.Store(false)
			p.lastProbe.Store(p.clock.Now().UnixNano())
			logger.WarnCtx(ctx, "Redis rate limiter error, falling back to local",
				zap.String("provider", p.cfg.Name),
				zap.Error(err),
			)
			return p.local.Wait(ctx)
		}

		if res.Allowed > 0 {
			return nil
		}

		// Spread retries over 50-150% of the hinted delay
		wait := time.Duration(float64(res.RetryAfter) * (0.5 + rand.Float64())) //nolint:gosec,G404
		logger.DebugCtx(ctx, "Rate limit token unavailable, waiting",
			zap.String("provider", p.cfg.Name),
			zap.Duration("retry_after", wait),
		)
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-p.clock.After(wait):
		}
	}
}

// probe pings Redis at most once per redisProbeInterval and reports availability
func (p *distributedPacer) probe(ctx context.Context) bool {
	now := p.clock.Now()
	last := time.Unix(0, p.lastProbe.Load())
	if now.Sub(last) < redisProbeInterval {
		return false
	}
	p.lastProbe.Store(now.UnixNano())

	pingCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	if err := p.redis.Ping(pingCtx).Err(); err != nil {
		return false
	}

	p.redisAvailable.Store(true)
	logger.InfoCtx(ctx, "Redis connection restored", zap.String("provider", p.cfg.Name))
	return true
}
