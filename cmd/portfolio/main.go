// Package main provides the portfolio back-office command line: the HTTP
// API server, schema migrations and offline tailoring runs.
package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/jonathan/portfolio-backoffice/internal/config"
	"github.com/jonathan/portfolio-backoffice/internal/logging"
)

var configPath string

var rootCmd = &cobra.Command{
	Use:          "portfolio",
	Short:        "Portfolio back-office server and tools",
	Long:         "Portfolio back-office serves the admin and public APIs of a personal portfolio site and tailors résumé content to job postings.",
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "config.yaml", "Path to YAML configuration file (optional)")
}

// loadConfig reads the configuration and builds the logger it describes.
func loadConfig() (*config.Config, *zap.Logger, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, nil, err
	}
	logger, err := logging.New(cfg.Log.Level, cfg.Log.Development)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create logger: %w", err)
	}
	return cfg, logger, nil
}

func main() {
	// Load .env file if it exists
	_ = godotenv.Load()

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
