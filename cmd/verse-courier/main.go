package main

import (
	"fmt"
	"os"

	"github.com/taiwoajasa245/verse-courier/internal/cli"
	"github.com/taiwoajasa245/verse-courier/pkg/config"
	"github.com/taiwoajasa245/verse-courier/pkg/logger"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg := config.LoadConfig()

	log := logger.New(logger.Options{
		FilePath: cfg.LogFile,
		Level:    cfg.LogLevel,
		IsProd:   cfg.IsProduction(),
	})
	defer func() { _ = log.Sync() }()

	return cli.NewRootCmd(&cli.App{Config: cfg, Logger: log}).Execute()
}
