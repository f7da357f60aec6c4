// File: cmd/ubot/main.go
package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"

	"ubot-platform/internal/application"
	"ubot-platform/internal/cli"
	"ubot-platform/internal/config"
	"ubot-platform/internal/infra/db"
	"ubot-platform/internal/infra/logging"
	"ubot-platform/internal/infra/security"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	out := cli.NewPrinter(os.Stdout)

	cfg, err := config.LoadConfig()
	if err != nil {
		out.Error(err)
		os.Exit(1)
	}
	// stdout carries command output; logs go to stderr.
	if !cfg.Runtime.Dev {
		cfg.Log.Level = "warn"
	}
	cfg.Log.Format = "console"
	logger := logging.NewTo(os.Stderr, cfg.Log, cfg.Runtime.Dev)

	store, err := db.Open(ctx, cfg.Database, logger)
	if err != nil {
		out.Error(err)
		os.Exit(1)
	}

	cipher, err := security.FromConfig(cfg.Security)
	if err != nil {
		store.Close()
		out.Error(err)
		os.Exit(1)
	}

	app := application.Build(cfg, store, nil, cipher, logger)
	if _, err := app.EnsureOwner(ctx, "admin", "Administrator"); err != nil {
		logger.Warn().Err(err).Msg("register default owner")
	}

	runner := &cli.Runner{App: app, Out: out, DefaultDays: cfg.Vouchers.DefaultValidityDays}
	err = runner.Run(ctx, flag.Args())
	store.Close()
	if err != nil {
		os.Exit(1)
	}
}
