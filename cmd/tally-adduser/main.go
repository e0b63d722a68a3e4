// Command tally-adduser registers an API principal and prints its
// bearer token.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"

	"tally/internal/cli"
	"tally/internal/core"
	applog "tally/internal/log"
)

func main() {
	username := flag.String("username", "", "username for the new API principal")
	flag.Parse()

	logger := cli.SetupLogger(applog.ComponentApp)
	cli.LoadEnvFile()
	cfg := cli.LoadAndValidateConfig(logger)

	if *username == "" {
		fmt.Fprintln(os.Stderr, "usage: tally-adduser -username <name>")
		os.Exit(2)
	}

	repo := cli.InitSQLite(logger, cfg.SQLiteDBPath)
	defer repo.Close()

	user, err := repo.CreateUser(context.Background(), *username)
	if err != nil {
		if errors.Is(err, core.ErrConflict) {
			fmt.Fprintf(os.Stderr, "user %q already exists\n", *username)
			os.Exit(1)
		}
		logger.Error("Failed to create user", "error", err, "username", *username)
		os.Exit(1)
	}

	fmt.Printf("user: %s\ntoken: %s\n", user.Username, user.Token)
}
