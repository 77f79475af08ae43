package rate

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

// Config holds login-initiation throttle parameters.
type Config struct {
	Prefix           string
	EnableIPThrottle bool
	MaxLoginAttempts int
	LoginWindow      time.Duration
}

// Limiter caps magic-link sends per email address and per client IP using
// fixed-window Redis counters.
type Limiter struct {
	redis  redis.UniversalClient
	config Config
}

// New creates a rate [Limiter] backed by the given Redis client.
func New(redisClient redis.UniversalClient, cfg Config) *Limiter {
	if cfg.Prefix == "" {
		cfg.Prefix = "ag"
	}
	return &Limiter{
		redis:  redisClient,
		config: cfg,
	}
}

// AllowLogin records one login initiation for email (and ip, when the IP
// throttle is on) and reports whether both counters still fit the window
// budget. Every initiation counts, successful or not, since each one may
// trigger an outbound email.
func (l *Limiter) AllowLogin(ctx context.Context, email, ip string) error {
	if l == nil || l.config.MaxLoginAttempts <= 0 {
		return nil
	}

	keys := []string{l.emailKey(email)}
	if l.config.EnableIPThrottle && ip != "" {
		keys = append(keys, l.ipKey(ip))
	}

	counts, err := l.hit(ctx, keys)
	if err != nil {
		return err
	}
	for _, n := range counts {
		if n > int64(l.config.MaxLoginAttempts) {
			return ErrRateLimited
		}
	}
	return nil
}

// hit increments every key in one transaction. EXPIRE NX starts the window
// on the first hit and leaves it alone afterwards.
func (l *Limiter) hit(ctx context.Context, keys []string) ([]int64, error) {
	incrs := make([]*redis.IntCmd, len(keys))
	_, err := l.redis.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		for i, key := range keys {
			incrs[i] = pipe.Incr(ctx, key)
			pipe.ExpireNX(ctx, key, l.config.LoginWindow)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
	}

	counts := make([]int64, len(keys))
	for i, cmd := range incrs {
		counts[i] = cmd.Val()
	}
	return counts, nil
}

func (l *Limiter) emailKey(email string) string {
	return l.config.Prefix + ":" + loginEmailPrefix + strings.ToLower(strings.TrimSpace(email))
}

func (l *Limiter) ipKey(ip string) string {
	return l.config.Prefix + ":" + loginIPPrefix + ip
}
