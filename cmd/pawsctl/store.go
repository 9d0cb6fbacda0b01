package main

import (
	"fmt"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/paws/internal/clock"
	"github.com/smallbiznis/paws/internal/config"
	"github.com/smallbiznis/paws/internal/invitation/domain"
	"github.com/smallbiznis/paws/internal/invitation/repository"
	"github.com/smallbiznis/paws/internal/invitation/service"
	"github.com/smallbiznis/paws/internal/migration"
	pkgdb "github.com/smallbiznis/paws/pkg/db"
	"gorm.io/gorm"
)

// openStore connects to the configured database and brings the schema up to
// date before any command touches it.
func openStore() (*gorm.DB, func(), error) {
	conn, err := pkgdb.Open(nil, cfg, log)
	if err != nil {
		return nil, nil, err
	}
	closeFn := func() {
		if sqlDB, err := conn.DB(); err == nil {
			_ = sqlDB.Close()
		}
	}
	if err := migration.Migrate(conn); err != nil {
		closeFn()
		return nil, nil, fmt.Errorf("migrate: %w", err)
	}
	return conn, closeFn, nil
}

func newProvisioner(conn *gorm.DB) (domain.Provisioner, error) {
	policy, err := config.NewEnrollmentPolicyHolder()
	if err != nil {
		return nil, fmt.Errorf("load enrollment policy: %w", err)
	}
	node, err := snowflake.NewNode(2)
	if err != nil {
		return nil, err
	}
	return service.NewProvisioner(service.Params{
		DB:     conn,
		Log:    log,
		Clock:  clock.NewSystemClock(),
		GenID:  node,
		Repo:   repository.Provide(),
		Policy: policy,
		Config: cfg,
	}), nil
}
