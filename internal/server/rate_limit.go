package server

import (
	"context"
	"math"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/smallbiznis/paws/internal/invitation/domain"
	"github.com/smallbiznis/paws/internal/observability/logger"
	obsmetrics "github.com/smallbiznis/paws/internal/observability/metrics"
	"github.com/smallbiznis/paws/internal/ratelimit"
	"go.uber.org/zap"
)

// RedeemRateLimit throttles redemption attempts per client IP and per caller,
// and allows one in-flight redemption per caller. Limiter failures close the
// route rather than let attempts through unmetered.
func (s *Server) RedeemRateLimit() gin.HandlerFunc {
	return func(c *gin.Context) {
		if s.limiter == nil || !s.limiter.Enabled() {
			c.Next()
			return
		}

		caller, ok := callerFromContext(c)
		if !ok {
			AbortWithError(c, ErrUnauthorized)
			return
		}
		ctx := c.Request.Context()

		res, err := s.limiter.AllowIP(ctx, c.ClientIP())
		if err != nil {
			logger.FromContext(ctx).Warn("redeem ip rate limit check failed", zap.Error(err))
			AbortWithError(c, ErrServiceUnavailable)
			return
		}
		if !res.Allowed {
			denyRedeem(c, ratelimit.ReasonIPRate, res.RetryAfter, s.obsMetrics)
			return
		}

		res, err = s.limiter.AllowCaller(ctx, caller.SubjectID)
		if err != nil {
			logger.FromContext(ctx).Warn("redeem caller rate limit check failed", zap.Error(err))
			AbortWithError(c, ErrServiceUnavailable)
			return
		}
		if !res.Allowed {
			denyRedeem(c, ratelimit.ReasonCallerRate, res.RetryAfter, s.obsMetrics)
			return
		}

		lockToken, acquired, err := s.limiter.TryLockCaller(ctx, caller.SubjectID)
		if err != nil {
			logger.FromContext(ctx).Warn("redeem concurrency lock failed", zap.Error(err))
			AbortWithError(c, ErrServiceUnavailable)
			return
		}
		if !acquired {
			denyRedeem(c, ratelimit.ReasonCallerConcurrency, time.Second, s.obsMetrics)
			return
		}
		defer func() {
			if err := s.limiter.ReleaseCaller(context.WithoutCancel(ctx), caller.SubjectID, lockToken); err != nil {
				logger.FromContext(ctx).Warn("redeem concurrency unlock failed", zap.Error(err))
			}
		}()

		c.Next()
	}
}

func denyRedeem(c *gin.Context, reason string, retryAfter time.Duration, metrics *obsmetrics.Metrics) {
	ctx := c.Request.Context()
	logger.FromContext(ctx).Warn("redeem rate limit exceeded", zap.String("reason", reason))
	if metrics != nil {
		metrics.RecordRedemption(ctx, domain.KindResourceExhausted.String())
	}

	c.Header("Retry-After", retryAfterSeconds(retryAfter))
	c.Header("X-Rate-Limited-Reason", reason)
	AbortWithError(c, ErrRateLimited)
}

func retryAfterSeconds(d time.Duration) string {
	seconds := int(math.Ceil(d.Seconds()))
	if seconds < 1 {
		seconds = 1
	}
	return strconv.Itoa(seconds)
}
