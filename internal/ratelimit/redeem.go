package ratelimit

import (
	"context"
	"errors"
	"fmt"
	"strings"

	redis "github.com/redis/go-redis/v9"
	"github.com/smallbiznis/paws/internal/config"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

const (
	keyRedeemCaller = "paws:redeem:caller:%s"
	keyRedeemIP     = "paws:redeem:ip:%s"
	keyRedeemLock   = "paws:redeem:lock:%s"

	ReasonCallerRate        = "caller-rate"
	ReasonIPRate            = "ip-rate"
	ReasonCallerConcurrency = "caller-concurrency"
)

// Limiter guards invitation code redemption attempts.
type Limiter interface {
	Enabled() bool
	AllowCaller(ctx context.Context, subjectID string) (*RateLimitResult, error)
	AllowIP(ctx context.Context, clientIP string) (*RateLimitResult, error)
	TryLockCaller(ctx context.Context, subjectID string) (string, bool, error)
	ReleaseCaller(ctx context.Context, subjectID, token string) error
}

type RedeemLimiter struct {
	enabled bool

	bucket *TokenBucket
	lock   *callerLock

	callerRate  float64
	callerBurst int
	ipRate      float64
	ipBurst     int
}

func NewRedeemLimiter(lc fx.Lifecycle, cfg config.Config, log *zap.Logger) (*RedeemLimiter, error) {
	limitCfg := cfg.RateLimit
	if !limitCfg.Enabled {
		return &RedeemLimiter{}, nil
	}

	addr := strings.TrimSpace(limitCfg.RedisAddr)
	if addr == "" {
		return nil, errors.New("rate limit redis addr is required")
	}
	if limitCfg.RedeemRate <= 0 || limitCfg.RedeemBurst <= 0 {
		return nil, errors.New("redeem caller rate limit must be positive")
	}
	if limitCfg.RedeemIPRate <= 0 || limitCfg.RedeemIPBurst <= 0 {
		return nil, errors.New("redeem ip rate limit must be positive")
	}

	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: strings.TrimSpace(limitCfg.RedisPassword),
		DB:       limitCfg.RedisDB,
	})
	if lc != nil {
		lc.Append(fx.Hook{
			OnStop: func(context.Context) error {
				return client.Close()
			},
		})
	}
	if log != nil {
		log.Info("redeem rate limiting enabled",
			zap.String("redis_addr", addr),
			zap.Float64("caller_rate", limitCfg.RedeemRate),
			zap.Int("caller_burst", limitCfg.RedeemBurst),
		)
	}

	return newRedeemLimiter(client, limitCfg), nil
}

func newRedeemLimiter(client *redis.Client, limitCfg config.RateLimitConfig) *RedeemLimiter {
	return &RedeemLimiter{
		enabled:     true,
		bucket:      NewTokenBucket(client),
		lock:        newCallerLock(client, limitCfg.RedeemLockTTL),
		callerRate:  limitCfg.RedeemRate,
		callerBurst: limitCfg.RedeemBurst,
		ipRate:      limitCfg.RedeemIPRate,
		ipBurst:     limitCfg.RedeemIPBurst,
	}
}

func (l *RedeemLimiter) Enabled() bool {
	return l != nil && l.enabled
}

func (l *RedeemLimiter) AllowCaller(ctx context.Context, subjectID string) (*RateLimitResult, error) {
	if !l.Enabled() {
		return &RateLimitResult{Allowed: true}, nil
	}
	return l.bucket.Allow(ctx, fmt.Sprintf(keyRedeemCaller, strings.TrimSpace(subjectID)), l.callerRate, l.callerBurst)
}

func (l *RedeemLimiter) AllowIP(ctx context.Context, clientIP string) (*RateLimitResult, error) {
	clientIP = strings.TrimSpace(clientIP)
	if !l.Enabled() || clientIP == "" {
		return &RateLimitResult{Allowed: true}, nil
	}
	return l.bucket.Allow(ctx, fmt.Sprintf(keyRedeemIP, clientIP), l.ipRate, l.ipBurst)
}

// TryLockCaller allows one in-flight redemption per caller.
func (l *RedeemLimiter) TryLockCaller(ctx context.Context, subjectID string) (string, bool, error) {
	if !l.Enabled() {
		return "", true, nil
	}
	return l.lock.acquire(ctx, subjectID)
}

func (l *RedeemLimiter) ReleaseCaller(ctx context.Context, subjectID, token string) error {
	if !l.Enabled() {
		return nil
	}
	return l.lock.release(ctx, subjectID, token)
}
