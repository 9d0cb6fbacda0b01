package ratelimit

import (
	"context"
	"errors"
	"testing"
	"time"

	redis "github.com/redis/go-redis/v9"
	"github.com/smallbiznis/paws/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDisabledLimiterAllowsEverything(t *testing.T) {
	l, err := NewRedeemLimiter(nil, config.Config{}, nil)
	require.NoError(t, err)
	require.False(t, l.Enabled())

	ctx := context.Background()
	res, err := l.AllowCaller(ctx, "uid1")
	require.NoError(t, err)
	assert.True(t, res.Allowed)

	res, err = l.AllowIP(ctx, "10.0.0.1")
	require.NoError(t, err)
	assert.True(t, res.Allowed)

	token, ok, err := l.TryLockCaller(ctx, "uid1")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.NoError(t, l.ReleaseCaller(ctx, "uid1", token))
}

func TestNewRedeemLimiterValidatesConfig(t *testing.T) {
	cfg := config.Config{RateLimit: config.RateLimitConfig{Enabled: true, RedisAddr: " "}}
	_, err := NewRedeemLimiter(nil, cfg, nil)
	assert.Error(t, err)

	cfg.RateLimit.RedisAddr = "localhost:6379"
	cfg.RateLimit.RedeemRate = 0
	_, err = NewRedeemLimiter(nil, cfg, nil)
	assert.Error(t, err)

	cfg.RateLimit.RedeemRate, cfg.RateLimit.RedeemBurst = 1, 5
	_, err = NewRedeemLimiter(nil, cfg, nil)
	assert.Error(t, err, "ip limits are required too")
}

func TestTokenBucketRejectsInvalidArguments(t *testing.T) {
	var bucket *TokenBucket
	_, err := bucket.Allow(context.Background(), "k", 1, 1)
	assert.Error(t, err)
	assert.Nil(t, NewTokenBucket(nil))
}

func TestParseBucketReply(t *testing.T) {
	res, err := parseBucketReply([]interface{}{int64(0), "0.25", int64(1_700_000_000_000)}, 0.5, 5)
	require.NoError(t, err)
	assert.False(t, res.Allowed)
	assert.Equal(t, 5, res.Limit)
	assert.Equal(t, 1500*time.Millisecond, res.RetryAfter)
	assert.Equal(t, time.UnixMilli(1_700_000_000_000).Add(1500*time.Millisecond), res.ResetTime)

	res, err = parseBucketReply([]interface{}{int64(1), "3.9", int64(0)}, 1, 5)
	require.NoError(t, err)
	assert.True(t, res.Allowed)
	assert.Equal(t, 3, res.Remaining)
	assert.Zero(t, res.RetryAfter)

	_, err = parseBucketReply([]interface{}{int64(1)}, 1, 5)
	assert.Error(t, err)
}

func TestDefaultBucketTTL(t *testing.T) {
	assert.Equal(t, time.Second, defaultBucketTTL(0, 1))
	assert.Equal(t, 20*time.Second, defaultBucketTTL(0.5, 5))
	assert.Equal(t, time.Second, defaultBucketTTL(100, 1))
}

type setNXClient struct {
	redis.Scripter
	held map[string]string
	ttl  time.Duration
	err  error
}

func (c *setNXClient) SetNX(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.BoolCmd {
	if c.err != nil {
		return redis.NewBoolResult(false, c.err)
	}
	c.ttl = expiration
	if _, ok := c.held[key]; ok {
		return redis.NewBoolResult(false, nil)
	}
	c.held[key] = value.(string)
	return redis.NewBoolResult(true, nil)
}

func TestCallerLockAllowsOneHolder(t *testing.T) {
	client := &setNXClient{held: map[string]string{}}
	lock := newCallerLock(client, 0)
	ctx := context.Background()

	token, ok, err := lock.acquire(ctx, " uid1 ")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, token, client.held["paws:redeem:lock:uid1"])
	assert.Equal(t, defaultCallerLockTTL, client.ttl)

	_, ok, err = lock.acquire(ctx, "uid1")
	require.NoError(t, err)
	assert.False(t, ok)

	_, ok, err = lock.acquire(ctx, "uid2")
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestCallerLockErrors(t *testing.T) {
	var unset *callerLock
	_, _, err := unset.acquire(context.Background(), "uid1")
	assert.ErrorIs(t, err, errLockNotConfigured)
	assert.NoError(t, unset.release(context.Background(), "uid1", "token"))
	assert.Nil(t, newCallerLock(nil, time.Second))

	lock := newCallerLock(&setNXClient{held: map[string]string{}}, time.Second)
	_, _, err = lock.acquire(context.Background(), "  ")
	assert.ErrorIs(t, err, errLockNoSubject)
	assert.NoError(t, lock.release(context.Background(), "uid1", ""))

	lock = newCallerLock(&setNXClient{err: errors.New("connection refused")}, time.Second)
	_, ok, err := lock.acquire(context.Background(), "uid1")
	assert.Error(t, err)
	assert.False(t, ok)
}
