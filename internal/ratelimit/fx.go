package ratelimit

import "go.uber.org/fx"

var Module = fx.Module("rate.limit",
	fx.Provide(
		NewRedeemLimiter,
		func(l *RedeemLimiter) Limiter { return l },
	),
)
