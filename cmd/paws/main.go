package main

import (
	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/paws/internal/clock"
	"github.com/smallbiznis/paws/internal/config"
	"github.com/smallbiznis/paws/internal/migration"
	"github.com/smallbiznis/paws/internal/observability"
	"github.com/smallbiznis/paws/internal/server"
	"github.com/smallbiznis/paws/pkg/db"
	"go.uber.org/fx"
)

func main() {
	app := fx.New(
		config.Module,
		observability.Module,
		fx.Provide(RegisterSnowflake),
		db.Module,
		clock.Module,
		server.Module,
		migration.Module,
	)
	app.Run()
}

func RegisterSnowflake() *snowflake.Node {
	node, err := snowflake.NewNode(1)
	if err != nil {
		panic(err)
	}
	return node
}
