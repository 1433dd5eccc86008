package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/jonathan/portfolio-backoffice/internal/cache"
	"github.com/jonathan/portfolio-backoffice/internal/db"
	"github.com/jonathan/portfolio-backoffice/internal/llm"
	"github.com/jonathan/portfolio-backoffice/internal/logging"
	"github.com/jonathan/portfolio-backoffice/internal/media"
	"github.com/jonathan/portfolio-backoffice/internal/portfolio"
	"github.com/jonathan/portfolio-backoffice/internal/server"
	"github.com/jonathan/portfolio-backoffice/internal/storage"
	"github.com/jonathan/portfolio-backoffice/internal/tailoring"
)

var (
	servePort    int
	serveMigrate bool
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the REST API server",
	Long:  `Start an HTTP server that exposes the admin, tailoring and public portfolio endpoints.`,
	RunE:  runServe,
}

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 0, "Port to listen on (overrides configuration)")
	serveCmd.Flags().BoolVar(&serveMigrate, "migrate", true, "Apply pending migrations before serving")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfg, logger, err := loadConfig()
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	if err := cfg.RequireServe(); err != nil {
		return err
	}
	if cmd.Flags().Changed("port") {
		cfg.Server.Port = servePort
	}

	ctx := context.Background()

	if serveMigrate {
		if err := db.RunMigrations(cfg.Database.URL, db.Up, logger); err != nil {
			return err
		}
	}

	store, err := db.Connect(ctx, cfg.Database.URL, cfg.Database.MaxConns, logger)
	if err != nil {
		return err
	}
	defer store.Close()

	client, err := llm.NewClient(ctx, llm.FromSettings(cfg.LLM))
	if err != nil {
		return fmt.Errorf("failed to create LLM client: %w", err)
	}
	defer func() { _ = client.Close() }()

	blobs, err := storage.NewS3Store(ctx, cfg.Storage)
	if err != nil {
		return err
	}

	snapshotCache, closeCache, err := cache.New(cfg.Cache, logger)
	if err != nil {
		return err
	}
	defer func() {
		if err := closeCache(); err != nil {
			logger.Warn("Failed to close cache", logging.SafeError(err))
		}
	}()

	deps := server.Deps{
		Store:     store,
		Tailoring: tailoring.NewService(client, store, store.Patterns(), tailoringOptions(cfg.LLM.Timeout, cfg.Tailoring), logger.Named("tailoring")),
		Media:     media.NewService(store, blobs, cfg.Storage.MaxUploadBytes, logger),
		Portfolio: portfolio.NewService(store, snapshotCache, logger),
	}

	srv, err := server.New(cfg, deps, logger)
	if err != nil {
		return fmt.Errorf("failed to create server: %w", err)
	}

	logger.Info("Serving portfolio back-office",
		zap.Int("port", cfg.Server.Port),
		zap.String("llm_provider", cfg.LLM.Provider),
		zap.String("llm_model", client.Model()),
		zap.String("cache_backend", cfg.Cache.Backend))
	return srv.Start()
}
