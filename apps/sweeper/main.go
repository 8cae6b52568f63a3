package main

import (
	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/rentledger/internal/autopay"
	"github.com/smallbiznis/rentledger/internal/billing"
	"github.com/smallbiznis/rentledger/internal/charge"
	"github.com/smallbiznis/rentledger/internal/clock"
	"github.com/smallbiznis/rentledger/internal/config"
	"github.com/smallbiznis/rentledger/internal/lease"
	"github.com/smallbiznis/rentledger/internal/ledger"
	"github.com/smallbiznis/rentledger/internal/logger"
	"github.com/smallbiznis/rentledger/internal/migration"
	"github.com/smallbiznis/rentledger/internal/notification"
	"github.com/smallbiznis/rentledger/internal/payment"
	"github.com/smallbiznis/rentledger/internal/providers"
	"github.com/smallbiznis/rentledger/internal/reconcile"
	"github.com/smallbiznis/rentledger/internal/scheduler"
	"github.com/smallbiznis/rentledger/pkg/db"
	"go.uber.org/fx"
)

func main() {
	app := fx.New(
		config.Module,
		logger.Module,
		fx.Provide(RegisterSnowflake),
		db.Module,
		clock.Module,
		migration.Module,
		providers.Module,

		// Domain services required by the sweep
		lease.Module,
		ledger.Module,
		charge.Module,
		reconcile.Module,
		billing.Module,
		payment.Module,
		notification.Module,
		autopay.Module,

		// No server module
		scheduler.Module,
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
