package service

import (
	"context"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/paws/internal/clock"
	"github.com/smallbiznis/paws/internal/config"
	"github.com/smallbiznis/paws/internal/invitation/domain"
	"github.com/smallbiznis/paws/internal/observability/logger"
	"github.com/smallbiznis/paws/internal/observability/metrics"
	pkgdb "github.com/smallbiznis/paws/pkg/db"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type Validator struct {
	db      *gorm.DB
	log     *zap.Logger
	clock   clock.Clock
	genID   *snowflake.Node
	repo    domain.Repository
	policy  config.EnrollmentPolicySource
	metrics *metrics.Metrics
}

func NewValidator(p Params) domain.Validator {
	return &Validator{
		db:      p.DB,
		log:     p.Log.Named("invitation.validator"),
		clock:   p.Clock,
		genID:   p.GenID,
		repo:    p.Repo,
		policy:  p.Policy,
		metrics: p.Metrics,
	}
}

func (s *Validator) CheckInvitationCode(ctx context.Context, req domain.RedeemRequest) (err error) {
	ctx, span := tracer.Start(ctx, "invitation.check_invitation_code")
	defer func() {
		s.metrics.RecordRedemption(ctx, outcomeOf(err))
		endSpan(span, err)
	}()

	subjectID := strings.TrimSpace(req.SubjectID)
	if subjectID == "" {
		return domain.NewError(domain.KindUnauthenticated, domain.MsgUnauthenticated)
	}
	log := logger.WithContext(ctx, s.log).With(zap.String("subject_id", subjectID))

	policy := s.policy.Get()
	if !policy.Open {
		return domain.NewError(domain.KindUnavailable, domain.MsgEnrollmentClosed)
	}

	// Length rules apply when codes are issued; any stored code redeems.
	code := req.InvitationCode
	if code == "" {
		return domain.NewError(domain.KindNotFound, domain.MsgCodeNotFound)
	}

	existing, err := s.repo.FindCode(ctx, s.db, code)
	if err != nil {
		return internalError(log, "find invitation code", err)
	}
	if existing == nil || existing.Used {
		return domain.NewError(domain.KindNotFound, domain.MsgCodeNotFound)
	}

	user, err := s.repo.FindUser(ctx, s.db, subjectID)
	if err != nil {
		return internalError(log, "find user record", err)
	}
	if user != nil {
		return domain.NewError(domain.KindAlreadyExists, domain.MsgAlreadyEnrolled)
	}

	now := s.clock.Now()
	err = pkgdb.RunInTx(ctx, s.db, pkgdb.DefaultTxAttempts, func(tx *gorm.DB) error {
		return s.redeem(ctx, tx, code, subjectID, now)
	})
	if err != nil {
		if derr, ok := asDomainError(err); ok && derr.Kind != domain.KindInternal {
			log.Info("invitation code rejected in transaction", zap.String("kind", derr.Kind.String()))
			return derr
		}
		return internalError(log, "redeem invitation code", err)
	}

	log.Info("participant enrolled", zap.String("batch_id", existing.BatchID))
	return nil
}

// redeem claims the code, creates the user record and appends the outbox
// event. A lost race on the code surfaces as NotFound.
func (s *Validator) redeem(ctx context.Context, tx *gorm.DB, code, subjectID string, now time.Time) error {
	claimed, err := s.repo.ClaimCode(ctx, tx, code, subjectID, now)
	if err != nil {
		if pkgdb.IsDuplicateKeyErr(err) {
			return domain.NewError(domain.KindAlreadyExists, domain.MsgAlreadyEnrolled)
		}
		return err
	}
	if !claimed {
		return domain.NewError(domain.KindNotFound, domain.MsgCodeNotFound)
	}

	user := &domain.UserRecord{
		SubjectID:        subjectID,
		InvitationCode:   code,
		DateOfEnrollment: now,
	}
	if err := s.repo.InsertUser(ctx, tx, user); err != nil {
		if pkgdb.IsDuplicateKeyErr(err) {
			return domain.NewError(domain.KindAlreadyExists, domain.MsgAlreadyEnrolled)
		}
		return err
	}

	event := &domain.EnrollmentEvent{
		ID:        s.genID.Generate(),
		Type:      domain.EventParticipantEnrolled,
		SubjectID: subjectID,
		Payload: datatypes.JSONMap{
			"subject_id":      subjectID,
			"invitation_code": code,
		},
		OccurredAt: now,
	}
	return s.repo.InsertEvent(ctx, tx, event)
}
