// Package ratelimit provides distributed per-identity rate limiting on
// Redis. The strategy is a fixed window anchored to the first request:
// an atomic INCR followed by an EXPIRE that only the first increment sets.
package ratelimit

import (
	"context"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/printstarter/printstarter/pkg/constants"
	"github.com/printstarter/printstarter/pkg/errors"
	"github.com/printstarter/printstarter/pkg/logger"
)

// Result carries the rate-limit decision plus the metadata exposed as
// response headers on every governed endpoint.
type Result struct {
	// Allowed is false once the window's budget is spent.
	Allowed bool
	// Limit is the configured budget for the window.
	Limit int64
	// Remaining is the unspent budget, clamped at zero.
	Remaining int64
	// Window is the fixed window length.
	Window time.Duration
	// Count is the post-increment counter value, for logging.
	Count int64
}

// FixedWindowLimiter counts requests per (scope, identity) in Redis.
type FixedWindowLimiter struct {
	client goredis.UniversalClient
	log    logger.Logger
}

// NewFixedWindowLimiter creates a limiter on the shared Redis client.
func NewFixedWindowLimiter(client goredis.UniversalClient, log logger.Logger) *FixedWindowLimiter {
	return &FixedWindowLimiter{
		client: client,
		log:    log.WithComponent("ratelimit"),
	}
}

// Check atomically consumes one request from the (scope, identity) window
// and reports whether it fit inside the budget.
//
// The expiry is set only when the post-increment count is 1, anchoring the
// window boundary to the first request. Two concurrent first requests may
// both observe count==1 and both set the expiry; that is idempotent and
// harmless because INCR itself is atomic.
//
// Store unavailability propagates as ErrStoreUnavailable: the limiter
// fails closed rather than silently admitting unlimited traffic.
func (l *FixedWindowLimiter) Check(
	ctx context.Context,
	scope constants.RateLimitScope,
	identity string,
	limit int64,
	window time.Duration,
) (*Result, error) {
	key := fmt.Sprintf(constants.KeyRateLimitFormat, scope, identity)

	count, err := l.client.Incr(ctx, key).Result()
	if err != nil {
		l.log.Error(ctx, "rate limit increment failed", err,
			logger.String("scope", string(scope)),
			logger.String("identity", identity),
		)
		return nil, errors.ErrStoreUnavailable(err)
	}

	if count == 1 {
		if err := l.client.Expire(ctx, key, window).Err(); err != nil {
			l.log.Error(ctx, "rate limit expire failed", err,
				logger.String("key", key),
			)
			return nil, errors.ErrStoreUnavailable(err)
		}
	}

	remaining := limit - count
	if remaining < 0 {
		remaining = 0
	}

	return &Result{
		Allowed:   count <= limit,
		Limit:     limit,
		Remaining: remaining,
		Window:    window,
		Count:     count,
	}, nil
}
