package main

import (
	"os"

	"minex-clearing/internal/cli"
	"minex-clearing/internal/config"
	"minex-clearing/internal/logging"
)

func main() {
	cfg, err := config.Load("")
	if err != nil {
		logger := logging.NewLogger()
		logger.Fatal().Err(err).Msg("Failed to load configuration")
	}

	logger := logging.NewLoggerWithConfig(logging.LogConfig{
		Level:      cfg.Logging.Level,
		Console:    cfg.Logging.Console,
		File:       cfg.Logging.File,
		FilePath:   cfg.Logging.FilePath,
		MaxSize:    cfg.Logging.MaxSize,
		MaxBackups: cfg.Logging.MaxBackups,
		MaxAge:     cfg.Logging.MaxAge,
	})

	rootCmd := cli.NewRootCmd(cfg, logger)
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
