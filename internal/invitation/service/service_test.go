package service

import (
	"context"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/paws/internal/clock"
	"github.com/smallbiznis/paws/internal/config"
	"github.com/smallbiznis/paws/internal/invitation/domain"
	"github.com/smallbiznis/paws/internal/invitation/repository"
	pkgdb "github.com/smallbiznis/paws/pkg/db"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var testNow = time.Date(2026, 5, 4, 10, 30, 0, 0, time.UTC)

type fixture struct {
	db          *gorm.DB
	clock       *clock.FakeClock
	repo        domain.Repository
	validator   domain.Validator
	gate        domain.SignupGate
	provisioner domain.Provisioner
}

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	conn, err := pkgdb.NewTest(t.Name())
	require.NoError(t, err)
	require.NoError(t, conn.AutoMigrate(
		&domain.InvitationCode{},
		&domain.UserRecord{},
		&domain.EnrollmentEvent{},
	))
	t.Cleanup(func() {
		if sqlDB, err := conn.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	return conn
}

func newParams(t *testing.T, conn *gorm.DB, repo domain.Repository, policy config.EnrollmentPolicy, cfg config.Config) (Params, *clock.FakeClock) {
	t.Helper()
	node, err := snowflake.NewNode(1)
	require.NoError(t, err)
	clk := clock.NewFakeClock(testNow)
	return Params{
		DB:     conn,
		Log:    zap.NewNop(),
		Clock:  clk,
		GenID:  node,
		Repo:   repo,
		Policy: config.NewStaticEnrollmentPolicy(policy),
		Config: cfg,
	}, clk
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	conn := newTestDB(t)
	repo := repository.Provide()
	p, clk := newParams(t, conn, repo, config.DefaultEnrollmentPolicy(), config.Config{Environment: "test"})
	return &fixture{
		db:          conn,
		clock:       clk,
		repo:        repo,
		validator:   NewValidator(p),
		gate:        NewSignupGate(p),
		provisioner: NewProvisioner(p),
	}
}

func (f *fixture) seedCodes(t *testing.T, codes ...string) {
	t.Helper()
	for _, code := range codes {
		require.NoError(t, f.db.Create(&domain.InvitationCode{Code: code, CreatedAt: testNow}).Error)
	}
}

func (f *fixture) code(t *testing.T, code string) domain.InvitationCode {
	t.Helper()
	var row domain.InvitationCode
	require.NoError(t, f.db.Where("code = ?", code).Take(&row).Error)
	return row
}

func (f *fixture) user(t *testing.T, subjectID string) *domain.UserRecord {
	t.Helper()
	row, err := f.repo.FindUser(context.Background(), f.db, subjectID)
	require.NoError(t, err)
	return row
}

func (f *fixture) count(t *testing.T, model any) int64 {
	t.Helper()
	var n int64
	require.NoError(t, f.db.Model(model).Count(&n).Error)
	return n
}

func requireKind(t *testing.T, err error, kind domain.Kind) {
	t.Helper()
	require.Error(t, err)
	require.Equal(t, kind, domain.KindOf(err), "unexpected error: %v", err)
}

func repositoryForTest() domain.Repository {
	return repository.Provide()
}
