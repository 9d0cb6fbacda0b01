package service

import (
	"context"
	"crypto/rand"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/oklog/ulid/v2"
	"github.com/smallbiznis/paws/internal/clock"
	"github.com/smallbiznis/paws/internal/config"
	"github.com/smallbiznis/paws/internal/invitation/domain"
	"github.com/smallbiznis/paws/internal/observability/logger"
	"github.com/smallbiznis/paws/internal/observability/metrics"
	pkgdb "github.com/smallbiznis/paws/pkg/db"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const (
	// maxCollisionsPerCode bounds regeneration when a candidate is already taken.
	maxCollisionsPerCode = 10
	maxGenerateCount     = 10000

	SourceAdmin = "admin"
	SourceCLI   = "cli"
	SourceSeed  = "seed"
)

type Provisioner struct {
	db         *gorm.DB
	log        *zap.Logger
	clock      clock.Clock
	repo       domain.Repository
	policy     config.EnrollmentPolicySource
	production bool
	metrics    *metrics.Metrics
}

func NewProvisioner(p Params) domain.Provisioner {
	return &Provisioner{
		db:         p.DB,
		log:        p.Log.Named("invitation.provisioner"),
		clock:      p.Clock,
		repo:       p.Repo,
		policy:     p.Policy,
		production: p.Config.IsProduction(),
		metrics:    p.Metrics,
	}
}

// Generate creates req.Count fresh unused codes under one batch id. With
// DryRun the codes are returned without being stored.
func (p *Provisioner) Generate(ctx context.Context, req domain.GenerateRequest) (domain.GenerateResult, error) {
	log := logger.WithContext(ctx, p.log)
	policy := p.policy.Get()

	length := req.Length
	if length == 0 {
		length = policy.CodeLength
	}
	if req.Count <= 0 || req.Count > maxGenerateCount || length <= 0 {
		return domain.GenerateResult{}, domain.NewError(domain.KindInvalidArgument, domain.MsgInvalidCodeRequest)
	}
	if length < policy.MinCodeLength {
		return domain.GenerateResult{}, domain.NewError(domain.KindInvalidArgument,
			fmt.Sprintf("Codes shorter than %d characters cannot be issued.", policy.MinCodeLength))
	}

	gen, err := newCodeGenerator(policy.CodeAlphabet, rand.Reader)
	if err != nil {
		return domain.GenerateResult{}, domain.NewError(domain.KindInvalidArgument, err.Error())
	}

	now := p.clock.Now()
	batchID := ulid.MustNew(ulid.Timestamp(now), rand.Reader).String()
	result := domain.GenerateResult{BatchID: batchID, DryRun: req.DryRun}

	if req.DryRun {
		codes, err := p.draw(gen, req.Count, length, func(string) (bool, error) { return true, nil })
		if err != nil {
			return domain.GenerateResult{}, internalError(log, "generate invitation codes", err)
		}
		result.Codes = codes
		return result, nil
	}

	var codes []string
	err = pkgdb.RunInTx(ctx, p.db, pkgdb.DefaultTxAttempts, func(tx *gorm.DB) error {
		var drawErr error
		codes, drawErr = p.draw(gen, req.Count, length, func(candidate string) (bool, error) {
			return p.repo.InsertCode(ctx, tx, &domain.InvitationCode{
				Code:      candidate,
				BatchID:   batchID,
				CreatedAt: now,
			})
		})
		return drawErr
	})
	if err != nil {
		return domain.GenerateResult{}, internalError(log, "store invitation codes", err)
	}

	p.metrics.RecordCodesIssued(ctx, sourceOrDefault(req.Source), len(codes))
	log.Info("invitation codes generated",
		zap.String("batch_id", batchID),
		zap.Int("count", len(codes)),
		zap.Int("length", length),
	)

	result.Codes = codes
	return result, nil
}

// draw produces count distinct codes, offering each to accept and retrying
// candidates that accept turns down.
func (p *Provisioner) draw(gen *codeGenerator, count, length int, accept func(string) (bool, error)) ([]string, error) {
	seen := make(map[string]struct{}, count)
	codes := make([]string, 0, count)
	collisions := 0
	for len(codes) < count {
		candidate, err := gen.Next(length)
		if err != nil {
			return nil, err
		}
		if _, dup := seen[candidate]; !dup {
			ok, err := accept(candidate)
			if err != nil {
				return nil, err
			}
			if ok {
				seen[candidate] = struct{}{}
				codes = append(codes, candidate)
				continue
			}
		}
		collisions++
		if collisions > maxCollisionsPerCode*count {
			return nil, fmt.Errorf("code space exhausted after %d collisions", collisions)
		}
	}
	return codes, nil
}

// ResetAll marks every code unused again. It refuses to run in production
// unless forced.
func (p *Provisioner) ResetAll(ctx context.Context, req domain.ResetRequest) (int64, error) {
	log := logger.WithContext(ctx, p.log)
	if p.production && !req.Force {
		return 0, domain.NewError(domain.KindFailedPrecondition, domain.MsgProductionReset)
	}

	var affected int64
	err := pkgdb.RunInTx(ctx, p.db, pkgdb.DefaultTxAttempts, func(tx *gorm.DB) error {
		n, err := p.repo.ResetCodes(ctx, tx)
		affected = n
		return err
	})
	if err != nil {
		return 0, internalError(log, "reset invitation codes", err)
	}

	log.Warn("invitation codes reset", zap.Int64("count", affected), zap.Bool("forced", req.Force))
	return affected, nil
}

func (p *Provisioner) List(ctx context.Context, req domain.ListCodesRequest) ([]domain.CodeView, error) {
	items, err := p.repo.ListCodes(ctx, p.db, domain.ListCodeFilter{
		BatchID: strings.TrimSpace(req.BatchID),
		Used:    req.Used,
		Limit:   req.Limit,
	})
	if err != nil {
		return nil, internalError(logger.WithContext(ctx, p.log), "list invitation codes", err)
	}

	views := make([]domain.CodeView, 0, len(items))
	for _, item := range items {
		if item == nil {
			continue
		}
		view := domain.CodeView{
			Code:      item.Code,
			Used:      item.Used,
			BatchID:   item.BatchID,
			CreatedAt: item.CreatedAt,
			UsedAt:    item.UsedAt,
		}
		if item.UsedBy != nil {
			view.UsedBy = *item.UsedBy
		}
		views = append(views, view)
	}
	return views, nil
}

func (p *Provisioner) Ensure(ctx context.Context, codes []string, source string) (int, error) {
	log := logger.WithContext(ctx, p.log)
	policy := p.policy.Get()
	now := p.clock.Now()

	inserted := 0
	for _, code := range codes {
		code = strings.TrimSpace(code)
		if code == "" {
			continue
		}
		if utf8.RuneCountInString(code) < policy.MinCodeLength {
			return inserted, domain.NewError(domain.KindInvalidArgument,
				fmt.Sprintf("Code %q is shorter than %d characters.", code, policy.MinCodeLength))
		}
		ok, err := p.repo.InsertCode(ctx, p.db, &domain.InvitationCode{
			Code:      code,
			BatchID:   sourceOrDefault(source),
			CreatedAt: now,
		})
		if err != nil {
			return inserted, internalError(log, "ensure invitation code", err)
		}
		if ok {
			inserted++
		}
	}

	p.metrics.RecordCodesIssued(ctx, sourceOrDefault(source), inserted)
	return inserted, nil
}

func sourceOrDefault(source string) string {
	source = strings.TrimSpace(source)
	if source == "" {
		return SourceAdmin
	}
	return source
}
