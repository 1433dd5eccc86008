package main

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/jonathan/portfolio-backoffice/internal/db"
	"github.com/jonathan/portfolio-backoffice/internal/portfolio"
)

var snapshotOut string

var snapshotCmd = &cobra.Command{
	Use:   "snapshot",
	Short: "Build the public portfolio snapshot",
	Long:  "Read the public portfolio data from the database, report missing content and write the snapshot as JSON.",
	RunE:  runSnapshot,
}

func init() {
	snapshotCmd.Flags().StringVarP(&snapshotOut, "out", "o", "", "Output file (defaults to stdout)")
	rootCmd.AddCommand(snapshotCmd)
}

func runSnapshot(cmd *cobra.Command, _ []string) error {
	cfg, logger, err := loadConfig()
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	if cfg.Database.URL == "" {
		return fmt.Errorf("DATABASE_URL is required")
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	store, err := db.Connect(ctx, cfg.Database.URL, cfg.Database.MaxConns, logger)
	if err != nil {
		return err
	}
	defer store.Close()

	snap, err := portfolio.Build(ctx, store, time.Now())
	if err != nil {
		return err
	}
	for _, p := range snap.Problems() {
		fmt.Fprintf(cmd.ErrOrStderr(), "warning: %s\n", p)
	}
	return writeJSON(snapshotOut, cmd.OutOrStdout(), snap)
}
