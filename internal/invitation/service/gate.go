package service

import (
	"context"
	"strings"

	"github.com/smallbiznis/paws/internal/invitation/domain"
	"github.com/smallbiznis/paws/internal/observability/logger"
	"github.com/smallbiznis/paws/internal/observability/metrics"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Gate re-derives the enrollment invariant from stored records before the
// identity provider finalizes an account. It never writes.
type Gate struct {
	db      *gorm.DB
	log     *zap.Logger
	repo    domain.Repository
	metrics *metrics.Metrics
}

func NewSignupGate(p Params) domain.SignupGate {
	return &Gate{
		db:      p.DB,
		log:     p.Log.Named("invitation.signup_gate"),
		repo:    p.Repo,
		metrics: p.Metrics,
	}
}

func (g *Gate) BeforeUserCreated(ctx context.Context, subjectID string) (err error) {
	ctx, span := tracer.Start(ctx, "invitation.before_user_created")
	defer func() {
		g.metrics.RecordSignupCheck(ctx, outcomeOf(err))
		endSpan(span, err)
	}()

	subjectID = strings.TrimSpace(subjectID)
	log := logger.WithContext(ctx, g.log).With(zap.String("subject_id", subjectID))
	if subjectID == "" {
		return domain.NewError(domain.KindNotFound, domain.MsgNoInvitation)
	}

	code, err := g.repo.FindCodeUsedBy(ctx, g.db, subjectID)
	if err != nil {
		return internalError(log, "find invitation code by subject", err)
	}
	if code == nil {
		log.Info("signup blocked: no invitation code linked")
		return domain.NewError(domain.KindNotFound, domain.MsgNoInvitation)
	}

	user, err := g.repo.FindUser(ctx, g.db, subjectID)
	if err != nil {
		return internalError(log, "find user record", err)
	}
	if user == nil || user.InvitationCode != code.Code {
		log.Warn("signup blocked: user record does not match invitation code")
		return domain.NewError(domain.KindFailedPrecondition, domain.MsgRecordMismatch)
	}

	return nil
}
