package main

import (
	"github.com/bwmarrin/snowflake"
	"github.com/forthandvale/backoffice/internal/config"
	"github.com/forthandvale/backoffice/internal/migration"
	"github.com/forthandvale/backoffice/internal/server"
	"github.com/forthandvale/backoffice/pkg/db"
	"github.com/forthandvale/backoffice/pkg/log"
	"go.uber.org/fx"
)

func main() {
	app := fx.New(
		config.Module,
		log.Module,
		fx.Provide(registerSnowflake),
		db.Module,
		migration.Module,
		server.Module,
	)
	app.Run()
}

func registerSnowflake() *snowflake.Node {
	node, err := snowflake.NewNode(1)
	if err != nil {
		panic(err)
	}
	return node
}
