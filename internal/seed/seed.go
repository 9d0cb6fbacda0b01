package seed

import (
	"context"
	"errors"

	"github.com/smallbiznis/paws/internal/config"
	"github.com/smallbiznis/paws/internal/invitation/domain"
	"github.com/smallbiznis/paws/internal/invitation/service"
	"go.uber.org/zap"
)

// EnsureDevInvitationCodes makes the configured development codes available
// so a local client can enroll without provisioning a batch first. Codes that
// already exist are left as they are, redeemed or not.
func EnsureDevInvitationCodes(ctx context.Context, cfg config.Config, provisioner domain.Provisioner, log *zap.Logger) error {
	if !cfg.IsDevelopment() || len(cfg.DevInvitationCodes) == 0 {
		return nil
	}
	if provisioner == nil {
		return errors.New("seed provisioner is required")
	}

	inserted, err := provisioner.Ensure(ctx, cfg.DevInvitationCodes, service.SourceSeed)
	if err != nil {
		return err
	}
	if log != nil {
		log.Info("development invitation codes ensured",
			zap.Int("configured", len(cfg.DevInvitationCodes)),
			zap.Int("inserted", inserted),
		)
	}
	return nil
}
