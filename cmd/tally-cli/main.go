package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"tally/internal/cli"
	applog "tally/internal/log"
	"tally/internal/menu"
)

func main() {
	logger := cli.SetupLogger(applog.ComponentMenu)
	cli.LoadEnvFile()
	cfg := cli.LoadAndValidateConfig(logger)

	repo := cli.InitSQLite(logger, cfg.SQLiteDBPath)
	defer repo.Close()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	owner, err := repo.GetOrCreateUser(ctx, cfg.CLIUsername)
	if err != nil {
		logger.Error("Failed to resolve local user", "error", err, "username", cfg.CLIUsername)
		os.Exit(1)
	}

	if err := menu.New(os.Stdin, os.Stdout, repo, owner).Run(ctx); err != nil {
		logger.Error("Session ended with error", "error", err)
		os.Exit(1)
	}
}
