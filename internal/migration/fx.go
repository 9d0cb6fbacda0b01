package migration

import (
	"context"

	"github.com/smallbiznis/paws/internal/config"
	"github.com/smallbiznis/paws/internal/invitation/domain"
	"github.com/smallbiznis/paws/internal/seed"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var Module = fx.Module("migrations",
	fx.Invoke(func(conn *gorm.DB, cfg config.Config, provisioner domain.Provisioner, log *zap.Logger) error {
		if err := Migrate(conn); err != nil {
			return err
		}
		return seed.EnsureDevInvitationCodes(context.Background(), cfg, provisioner, log.Named("seed"))
	}),
)
