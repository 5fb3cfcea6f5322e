package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"

	"branch-ledger/internal/config"
	"branch-ledger/internal/console"
	"branch-ledger/internal/server"
)

func main() {
	// Logs go to stderr so they do not interleave with the menu.
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn}))
	slog.SetDefault(logger)

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		slog.Error("Invalid configuration", "error", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	ledger, err := server.OpenLedger(ctx, cfg, logger)
	if err != nil {
		slog.Error("Failed to open ledger", "error", err)
		os.Exit(1)
	}
	defer ledger.Close()

	if err := console.New(ledger.Services, os.Stdin, os.Stdout).Run(ctx); err != nil {
		slog.Error("Console stopped", "error", err)
	}
}
