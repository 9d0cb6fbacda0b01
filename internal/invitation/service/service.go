package service

import (
	"errors"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/paws/internal/clock"
	"github.com/smallbiznis/paws/internal/config"
	"github.com/smallbiznis/paws/internal/invitation/domain"
	"github.com/smallbiznis/paws/internal/observability/metrics"
	"github.com/smallbiznis/paws/internal/observability/tracing"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	otelcodes "go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const outcomeOK = "ok"

var tracer = otel.Tracer("github.com/smallbiznis/paws/internal/invitation")

type Params struct {
	fx.In

	DB      *gorm.DB
	Log     *zap.Logger
	Clock   clock.Clock
	GenID   *snowflake.Node
	Repo    domain.Repository
	Policy  config.EnrollmentPolicySource
	Config  config.Config
	Metrics *metrics.Metrics `optional:"true"`
}

func outcomeOf(err error) string {
	if err == nil {
		return outcomeOK
	}
	return domain.KindOf(err).String()
}

func endSpan(span trace.Span, err error) {
	span.SetAttributes(tracing.SafeAttributes(attribute.String("outcome", outcomeOf(err)))...)
	if err != nil && domain.KindOf(err) == domain.KindInternal {
		span.RecordError(tracing.SafeError(err))
		span.SetStatus(otelcodes.Error, domain.MsgInternal)
	}
	span.End()
}

// internalError logs cause and returns the opaque error shown to callers.
func internalError(log *zap.Logger, op string, cause error) error {
	log.Error(op+" failed", zap.Error(cause))
	return domain.NewError(domain.KindInternal, domain.MsgInternal)
}

func asDomainError(err error) (*domain.Error, bool) {
	var derr *domain.Error
	if errors.As(err, &derr) {
		return derr, true
	}
	return nil, false
}
