package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/jonathan/portfolio-backoffice/internal/config"
	"github.com/jonathan/portfolio-backoffice/internal/db"
	"github.com/jonathan/portfolio-backoffice/internal/ingestion"
	"github.com/jonathan/portfolio-backoffice/internal/llm"
	"github.com/jonathan/portfolio-backoffice/internal/schemas"
	"github.com/jonathan/portfolio-backoffice/internal/tailoring"
	"github.com/jonathan/portfolio-backoffice/internal/types"
	embedded "github.com/jonathan/portfolio-backoffice/schemas"
)

var tailorCmd = &cobra.Command{
	Use:   "tailor",
	Short: "Tailor résumé content to a job posting",
	Long: `Analyze a job posting and generate tailored résumé content from a set of experiences.

The posting comes from a text file (--job) or a URL (--job-url). Experiences come from a
JSON file (--experiences) or, when DATABASE_URL is set, from the database, which also
receives the archived pattern.`,
	RunE: runTailor,
}

var (
	tailorJobFile     string
	tailorJobURL      string
	tailorExperiences string
	tailorCompany     string
	tailorRole        string
	tailorNotes       string
	tailorOut         string
)

func init() {
	tailorCmd.Flags().StringVar(&tailorJobFile, "job", "", "Path to a text file containing the job posting")
	tailorCmd.Flags().StringVar(&tailorJobURL, "job-url", "", "URL to fetch the job posting from")
	tailorCmd.Flags().StringVar(&tailorExperiences, "experiences", "", "Path to a JSON array of experience records")
	tailorCmd.Flags().StringVar(&tailorCompany, "company", "", "Target company")
	tailorCmd.Flags().StringVar(&tailorRole, "role", "", "Target role")
	tailorCmd.Flags().StringVar(&tailorNotes, "notes", "", "Additional notes for the generator")
	tailorCmd.Flags().StringVarP(&tailorOut, "out", "o", "", "Output file (defaults to stdout)")

	tailorCmd.MarkFlagsMutuallyExclusive("job", "job-url")
	tailorCmd.MarkFlagsOneRequired("job", "job-url")

	rootCmd.AddCommand(tailorCmd)
}

func runTailor(cmd *cobra.Command, _ []string) error {
	cfg, logger, err := loadConfig()
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	description, err := readPosting(ctx, tailorJobFile, tailorJobURL, logger)
	if err != nil {
		return err
	}

	var (
		source  tailoring.ExperienceSource
		archive tailoring.PatternArchive = tailoring.NewMemoryArchive()
	)
	if tailorExperiences != "" {
		records, err := loadExperiences(tailorExperiences)
		if err != nil {
			return err
		}
		source = tailoring.StaticExperiences(records)
	}
	if cfg.Database.URL != "" {
		store, err := db.Connect(ctx, cfg.Database.URL, cfg.Database.MaxConns, logger)
		if err != nil {
			return err
		}
		defer store.Close()
		archive = store.Patterns()
		if source == nil {
			source = store
		}
	}
	if source == nil {
		return fmt.Errorf("--experiences is required when DATABASE_URL is not set")
	}

	client, err := llm.NewClient(ctx, llm.FromSettings(cfg.LLM))
	if err != nil {
		return fmt.Errorf("failed to create LLM client: %w", err)
	}
	defer func() { _ = client.Close() }()

	svc := tailoring.NewService(client, source, archive, tailoringOptions(cfg.LLM.Timeout, cfg.Tailoring), logger.Named("tailoring"))
	result, err := svc.Tailor(ctx, tailoring.Request{
		JobDescription:  description,
		TargetCompany:   tailorCompany,
		TargetRole:      tailorRole,
		AdditionalNotes: tailorNotes,
	})
	if err != nil {
		return err
	}
	for _, w := range result.Warnings {
		logger.Warn("Tailoring warning", zap.String("warning", w))
	}

	return writeJSON(tailorOut, cmd.OutOrStdout(), result)
}

// tailoringOptions maps the configuration onto the pipeline options.
func tailoringOptions(timeout time.Duration, t config.TailoringConfig) tailoring.Options {
	opts := tailoring.DefaultOptions()
	if timeout > 0 {
		opts.Timeout = timeout
	}
	opts.PriorPatternLimit = t.PriorPatternLimit
	opts.PriorPatternMinRating = t.PriorPatternMinRating
	return opts
}

// readPosting loads the job posting from file or rawURL. The posting text
// itself is never logged, only its digest and size.
func readPosting(ctx context.Context, file, rawURL string, logger *zap.Logger) (string, error) {
	var (
		text string
		meta *ingestion.Metadata
		err  error
	)
	if file != "" {
		if text, meta, err = ingestion.IngestFromFile(file); err != nil {
			return "", fmt.Errorf("failed to read job posting: %w", err)
		}
	} else if text, meta, err = ingestion.NewFetcher().FetchPosting(ctx, rawURL); err != nil {
		return "", fmt.Errorf("failed to fetch job posting: %w", err)
	}

	logger.Debug("Job posting loaded",
		zap.String("source", postingSource(file, meta)),
		zap.String("platform", string(meta.Platform)),
		zap.String("hash", meta.Hash),
		zap.Int("length", meta.Length),
		zap.String("ingested_at", meta.Timestamp))
	return text, nil
}

func postingSource(file string, meta *ingestion.Metadata) string {
	if file != "" {
		return file
	}
	return meta.URL
}

// loadExperiences reads a JSON array of experience records. Each entry is
// checked against the experience schema; entries without an id get one.
func loadExperiences(path string) ([]types.ExperienceRecord, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read experiences: %w", err)
	}
	var entries []json.RawMessage
	if err := json.Unmarshal(raw, &entries); err != nil {
		return nil, fmt.Errorf("experiences file must hold a JSON array: %w", err)
	}

	records := make([]types.ExperienceRecord, 0, len(entries))
	for i, entry := range entries {
		in, err := schemas.Decode[types.ExperienceInput](embedded.ExperienceRecord, entry)
		if err != nil {
			return nil, fmt.Errorf("experience %d: %w", i, err)
		}
		rec := types.NewExperienceRecord(*in)

		var ident struct {
			ID string `json:"id"`
		}
		_ = json.Unmarshal(entry, &ident)
		if ident.ID != "" {
			if rec.ID, err = uuid.Parse(ident.ID); err != nil {
				return nil, fmt.Errorf("experience %d: invalid id %q", i, ident.ID)
			}
		} else {
			rec.ID = uuid.New()
		}

		if err := rec.Validate(); err != nil {
			return nil, fmt.Errorf("experience %d: %w", i, err)
		}
		records = append(records, rec)
	}
	return records, nil
}

// writeJSON writes v as indented JSON to path, or to fallback when path is empty.
func writeJSON(path string, fallback io.Writer, v any) error {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("failed to encode output: %w", err)
	}
	if path == "" {
		_, err := fallback.Write(buf.Bytes())
		return err
	}
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}
