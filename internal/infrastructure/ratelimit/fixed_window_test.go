package ratelimit_test

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/printstarter/printstarter/internal/infrastructure/ratelimit"
	"github.com/printstarter/printstarter/pkg/constants"
	"github.com/printstarter/printstarter/pkg/errors"
	"github.com/printstarter/printstarter/pkg/logger"
)

func newLimiter(t *testing.T) (*ratelimit.FixedWindowLimiter, *miniredis.Miniredis) {
	t.Helper()

	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)

	client := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	return ratelimit.NewFixedWindowLimiter(client, logger.NewNoopLogger()), mr
}

func TestFixedWindowLimiter_Check(t *testing.T) {
	limiter, _ := newLimiter(t)
	ctx := context.Background()

	const limit = 20
	window := 600 * time.Second

	for i := 1; i <= limit; i++ {
		res, err := limiter.Check(ctx, constants.ScopePrompts, "203.0.113.7", limit, window)
		require.NoError(t, err)
		assert.True(t, res.Allowed, "request %d should be allowed", i)
		assert.Equal(t, int64(limit-i), res.Remaining)
		assert.Equal(t, int64(limit), res.Limit)
	}

	// The 21st request in the same window is denied with zero remaining.
	res, err := limiter.Check(ctx, constants.ScopePrompts, "203.0.113.7", limit, window)
	require.NoError(t, err)
	assert.False(t, res.Allowed)
	assert.Equal(t, int64(0), res.Remaining)
}

func TestFixedWindowLimiter_WindowExpiryResets(t *testing.T) {
	limiter, mr := newLimiter(t)
	ctx := context.Background()

	window := 600 * time.Second
	for i := 0; i < 3; i++ {
		_, err := limiter.Check(ctx, constants.ScopePrompts, "198.51.100.1", 2, window)
		require.NoError(t, err)
	}

	mr.FastForward(window + time.Second)

	res, err := limiter.Check(ctx, constants.ScopePrompts, "198.51.100.1", 2, window)
	require.NoError(t, err)
	assert.True(t, res.Allowed)
	assert.Equal(t, int64(1), res.Count)
	assert.Equal(t, int64(1), res.Remaining)
}

func TestFixedWindowLimiter_ScopesAndIdentitiesAreIsolated(t *testing.T) {
	limiter, _ := newLimiter(t)
	ctx := context.Background()

	_, err := limiter.Check(ctx, constants.ScopePrompts, "a", 1, time.Minute)
	require.NoError(t, err)

	// Same identity, different scope: fresh window.
	res, err := limiter.Check(ctx, constants.ScopeGenerate, "a", 1, time.Minute)
	require.NoError(t, err)
	assert.True(t, res.Allowed)

	// Same scope, different identity: fresh window.
	res, err = limiter.Check(ctx, constants.ScopePrompts, "b", 1, time.Minute)
	require.NoError(t, err)
	assert.True(t, res.Allowed)
}

func TestFixedWindowLimiter_FailsClosedWhenStoreDown(t *testing.T) {
	limiter, mr := newLimiter(t)
	mr.Close()

	res, err := limiter.Check(context.Background(), constants.ScopePrompts, "a", 20, time.Minute)
	assert.Nil(t, res)
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.CodeStoreUnavailable))
}
