// Package tailoring implements the résumé tailoring pipeline: job analysis,
// content generation against the stored experiences, and the archive of
// past results with their feedback.
package tailoring

import (
	"context"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/jonathan/portfolio-backoffice/internal/apperrors"
	"github.com/jonathan/portfolio-backoffice/internal/ingestion"
	"github.com/jonathan/portfolio-backoffice/internal/llm"
	"github.com/jonathan/portfolio-backoffice/internal/logging"
	"github.com/jonathan/portfolio-backoffice/internal/types"
)

// ExperienceSource supplies the experiences eligible for a résumé, ordered
// by priority, highest first.
type ExperienceSource interface {
	ListResumeEligible(ctx context.Context) ([]types.ExperienceRecord, error)
}

// Options tunes the service.
type Options struct {
	// Timeout bounds each completion call.
	Timeout time.Duration
	// PriorPatternLimit caps the prior patterns given to the generator.
	PriorPatternLimit int
	// PriorPatternMinRating is the lowest feedback rating counted as successful.
	PriorPatternMinRating int
}

// DefaultOptions matches the shipped configuration defaults.
func DefaultOptions() Options {
	return Options{Timeout: 60 * time.Second, PriorPatternLimit: 5, PriorPatternMinRating: 7}
}

// Request is one tailoring request.
type Request struct {
	JobDescription  string `json:"jobDescription" validate:"required,min=10"`
	TargetCompany   string `json:"targetCompany,omitempty" validate:"max=200"`
	TargetRole      string `json:"targetRole,omitempty" validate:"max=200"`
	AdditionalNotes string `json:"additionalNotes,omitempty" validate:"max=2000"`
}

// Result is the outcome of a successful tailoring.
type Result struct {
	TailoredContent *types.TailoredContent `json:"tailoredContent"`
	Analysis        *types.JobAnalysis     `json:"jobAnalysis"`
	PatternID       *uuid.UUID             `json:"patternId,omitempty"`
	Warnings        []string               `json:"warnings,omitempty"`
}

// FeedbackRequest reports the outcome of an application.
type FeedbackRequest struct {
	PatternID          uuid.UUID `json:"patternId" validate:"required"`
	SuccessRating      int       `json:"successRating" validate:"min=1,max=10"`
	UserFeedback       string    `json:"userFeedback" validate:"max=5000"`
	WasHired           *bool     `json:"wasHired,omitempty"`
	InterviewsReceived *int      `json:"interviewsReceived,omitempty" validate:"omitempty,min=0"`
}

// Service wires the analyzer, generator, experience source and archive.
type Service struct {
	analyzer    *Analyzer
	generator   *Generator
	experiences ExperienceSource
	archive     PatternArchive
	opts        Options
	validate    *validator.Validate
	logger      *zap.Logger
}

// NewService creates a Service.
func NewService(client llm.Client, experiences ExperienceSource, archive PatternArchive, opts Options, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		analyzer:    NewAnalyzer(client, opts.Timeout, logger.Named("analyzer")),
		generator:   NewGenerator(client, archive, opts.Timeout, logger.Named("generator")),
		experiences: experiences,
		archive:     archive,
		opts:        opts,
		validate:    apperrors.NewValidator(),
		logger:      logger,
	}
}

// Tailor analyzes the job description and generates tailored content from
// the resume-eligible experiences.
func (s *Service) Tailor(ctx context.Context, req Request) (*Result, error) {
	if err := s.validate.Struct(req); err != nil {
		return nil, apperrors.FromValidator(err)
	}

	description := ingestion.NormalizeDescription(req.JobDescription)

	s.logger.Info("tailoring requested",
		zap.Int("description_length", len(description)),
		zap.Bool("has_company", req.TargetCompany != ""),
		zap.Bool("has_role", req.TargetRole != ""))

	exps, err := s.experiences.ListResumeEligible(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load experiences: %w", err)
	}

	var warnings []string
	priors, err := s.priorPatterns(ctx)
	if err != nil {
		s.logger.Warn("failed to load prior patterns", logging.SafeError(err))
		warnings = append(warnings, "prior patterns unavailable: generated without archive context")
	}

	analysis, err := s.analyzer.Analyze(ctx, AnalyzeInput{
		JobDescription: description,
		TargetCompany:  req.TargetCompany,
		TargetRole:     req.TargetRole,
	})
	if err != nil {
		return nil, err
	}

	gen, err := s.generator.Generate(ctx, GenerateInput{
		Analysis:         analysis,
		Experiences:      exps,
		PriorPatterns:    priors,
		TargetCompany:    req.TargetCompany,
		TargetRole:       req.TargetRole,
		AdditionalNotes:  req.AdditionalNotes,
		MaxPriorPatterns: s.opts.PriorPatternLimit,
	})
	if err != nil {
		return nil, err
	}

	return &Result{
		TailoredContent: gen.Content,
		Analysis:        analysis,
		PatternID:       gen.PatternID,
		Warnings:        append(warnings, gen.Warnings...),
	}, nil
}

func (s *Service) priorPatterns(ctx context.Context) ([]types.PatternRecord, error) {
	if s.archive == nil || s.opts.PriorPatternLimit <= 0 {
		return nil, nil
	}
	return s.archive.Query(ctx, types.PatternFilter{
		MinRating: s.opts.PriorPatternMinRating,
		Limit:     s.opts.PriorPatternLimit,
	})
}

// RecordFeedback validates and stores feedback for an archived pattern.
func (s *Service) RecordFeedback(ctx context.Context, req FeedbackRequest) error {
	if err := s.validate.Struct(req); err != nil {
		return apperrors.FromValidator(err)
	}
	if s.archive == nil {
		return fmt.Errorf("pattern %s: %w", req.PatternID, apperrors.ErrNotFound)
	}

	err := s.archive.RecordFeedback(ctx, req.PatternID, types.Feedback{
		SuccessRating:      req.SuccessRating,
		UserFeedback:       req.UserFeedback,
		WasHired:           req.WasHired,
		InterviewsReceived: req.InterviewsReceived,
	})
	if err != nil {
		return err
	}

	s.logger.Info("pattern feedback recorded",
		zap.String("pattern_id", req.PatternID.String()),
		zap.Int("success_rating", req.SuccessRating))
	return nil
}

// Patterns queries the archive.
func (s *Service) Patterns(ctx context.Context, filter types.PatternFilter) ([]types.PatternRecord, error) {
	if s.archive == nil {
		return []types.PatternRecord{}, nil
	}
	return s.archive.Query(ctx, filter)
}

// Pattern fetches one archived pattern.
func (s *Service) Pattern(ctx context.Context, id uuid.UUID) (*types.PatternRecord, error) {
	if s.archive == nil {
		return nil, fmt.Errorf("pattern %s: %w", id, apperrors.ErrNotFound)
	}
	return s.archive.Get(ctx, id)
}

// StaticExperiences is an ExperienceSource over a fixed slice. Records that
// are not resume eligible are dropped; the rest are sorted by priority.
type StaticExperiences []types.ExperienceRecord

// ListResumeEligible implements ExperienceSource.
func (s StaticExperiences) ListResumeEligible(ctx context.Context) ([]types.ExperienceRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return types.ResumeEligible(s), nil
}
