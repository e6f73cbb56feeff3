package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/congo-pay/walletd/internal/config"
	"github.com/congo-pay/walletd/internal/infra"
	"github.com/congo-pay/walletd/internal/logging"
)

func usage() {
	fmt.Fprintln(os.Stderr, "usage: migrate <command>")
	fmt.Fprintln(os.Stderr, "commands: up, down, status, redo")
}

func main() {
	flag.Usage = usage
	flag.Parse()

	if flag.NArg() < 1 {
		usage()
		os.Exit(2)
	}
	command := flag.Arg(0)
	switch command {
	case "up", "down", "status", "redo":
	default:
		fmt.Fprintf(os.Stderr, "unknown command %q\n", command)
		usage()
		os.Exit(2)
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "load config: %v\n", err)
		os.Exit(1)
	}
	logger := logging.New(cfg.LogLevel)

	if cfg.DatabaseURL == "" {
		logger.Error("DATABASE_URL is required for migrations")
		os.Exit(1)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
	defer cancel()

	logger.Info("running migration", "command", command)
	if err := infra.RunMigrations(ctx, cfg.DatabaseURL, command); err != nil {
		logger.Error("migration failed", "command", command, "error", err)
		os.Exit(1)
	}
	logger.Info("migration finished", "command", command)
}
