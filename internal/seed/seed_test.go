package seed

import (
	"context"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/paws/internal/clock"
	"github.com/smallbiznis/paws/internal/config"
	"github.com/smallbiznis/paws/internal/invitation/domain"
	"github.com/smallbiznis/paws/internal/invitation/repository"
	"github.com/smallbiznis/paws/internal/invitation/service"
	pkgdb "github.com/smallbiznis/paws/pkg/db"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func newProvisioner(t *testing.T, cfg config.Config) (domain.Provisioner, *gorm.DB) {
	t.Helper()
	conn, err := pkgdb.NewTest(t.Name())
	require.NoError(t, err)
	require.NoError(t, conn.AutoMigrate(&domain.InvitationCode{}))
	t.Cleanup(func() {
		if sqlDB, err := conn.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	node, err := snowflake.NewNode(1)
	require.NoError(t, err)

	return service.NewProvisioner(service.Params{
		DB:     conn,
		Log:    zap.NewNop(),
		Clock:  clock.NewFakeClock(time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)),
		GenID:  node,
		Repo:   repository.Provide(),
		Policy: config.NewStaticEnrollmentPolicy(config.DefaultEnrollmentPolicy()),
		Config: cfg,
	}), conn
}

func TestEnsureDevInvitationCodesInDevelopment(t *testing.T) {
	cfg := config.Config{Environment: config.EnvDevelopment, DevInvitationCodes: []string{"VASCTRAC"}}
	prov, conn := newProvisioner(t, cfg)

	require.NoError(t, EnsureDevInvitationCodes(context.Background(), cfg, prov, zap.NewNop()))

	var code domain.InvitationCode
	require.NoError(t, conn.Where("code = ?", "VASCTRAC").Take(&code).Error)
	assert.False(t, code.Used)
	assert.Equal(t, service.SourceSeed, code.BatchID)
}

func TestEnsureDevInvitationCodesSkippedOutsideDevelopment(t *testing.T) {
	cfg := config.Config{Environment: config.EnvProduction, DevInvitationCodes: []string{"VASCTRAC"}}
	prov, conn := newProvisioner(t, cfg)

	require.NoError(t, EnsureDevInvitationCodes(context.Background(), cfg, prov, zap.NewNop()))

	var n int64
	require.NoError(t, conn.Model(&domain.InvitationCode{}).Count(&n).Error)
	assert.Zero(t, n)
}
