package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"proedualt/internal/cli"
	"proedualt/internal/config"
	"proedualt/internal/errors"
)

func main() {
	// Create a context that is canceled on interrupt signals
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Load configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	// Initialize logging
	logger, err := errors.New(cfg.App.LogLevel)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}

	if err := config.ApplyVaultSecrets(cfg, logger); err != nil {
		logger.LogError(err, "Failed to load secrets from Vault")
		os.Exit(1)
	}

	logger.Debug("Starting proedualt",
		"version", cli.Version,
		"log_level", cfg.App.LogLevel,
		"backend", cfg.Backend.BaseURL)

	if err := cli.Execute(ctx, cfg, logger); err != nil {
		logger.LogError(err, "Command failed")
		fmt.Fprintf(os.Stderr, "Error: %s\n", errors.UserMessage(err))
		os.Exit(1)
	}
}
