package main

import (
	"github.com/nutrilog/nutrilog/internal/clock"
	"github.com/nutrilog/nutrilog/internal/config"
	"github.com/nutrilog/nutrilog/internal/conversation"
	"github.com/nutrilog/nutrilog/internal/ledger"
	"github.com/nutrilog/nutrilog/internal/logger"
	"github.com/nutrilog/nutrilog/internal/observability/metrics"
	"github.com/nutrilog/nutrilog/internal/recognition"
	"github.com/nutrilog/nutrilog/internal/server"
	"github.com/nutrilog/nutrilog/internal/session"
	"github.com/nutrilog/nutrilog/internal/telegram"
	"go.uber.org/fx"
)

func main() {
	app := fx.New(
		// Core infrastructure
		config.Module,
		logger.Module,
		clock.Module,
		metrics.Module,
		server.Module,

		// Functional domains
		ledger.Module,
		recognition.Module,
		session.Module,
		conversation.Module,
		telegram.Module,
	)
	app.Run()
}
