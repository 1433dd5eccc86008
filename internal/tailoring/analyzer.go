package tailoring

import (
	"context"
	"fmt"
	"time"
	"unicode/utf8"

	"go.uber.org/zap"

	"github.com/jonathan/portfolio-backoffice/internal/apperrors"
	"github.com/jonathan/portfolio-backoffice/internal/llm"
	"github.com/jonathan/portfolio-backoffice/internal/logging"
	"github.com/jonathan/portfolio-backoffice/internal/prompts"
	"github.com/jonathan/portfolio-backoffice/internal/types"
	embedded "github.com/jonathan/portfolio-backoffice/schemas"
)

// MinJobDescriptionLength is the shortest job description, in characters,
// accepted for analysis.
const MinJobDescriptionLength = 10

// AnalyzeInput is the job posting to be analyzed.
type AnalyzeInput struct {
	JobDescription string
	TargetCompany  string
	TargetRole     string
}

// Analyzer turns a free-text job description into a JobAnalysis.
type Analyzer struct {
	client  llm.Client
	timeout time.Duration
	logger  *zap.Logger
}

// NewAnalyzer creates an Analyzer. A non-positive timeout leaves the call
// bounded only by the caller's context.
func NewAnalyzer(client llm.Client, timeout time.Duration, logger *zap.Logger) *Analyzer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Analyzer{client: client, timeout: timeout, logger: logger}
}

// Analyze requests a structured analysis of the job description. It makes a
// single completion call and never retries.
func (a *Analyzer) Analyze(ctx context.Context, in AnalyzeInput) (*types.JobAnalysis, error) {
	if n := utf8.RuneCountInString(in.JobDescription); n < MinJobDescriptionLength {
		return nil, apperrors.NewInvalidInput("jobDescription",
			fmt.Sprintf("must be at least %d characters", MinJobDescriptionLength))
	}

	prompt, err := prompts.Render(prompts.TailoringFile, prompts.AnalyzeJobKey, map[string]string{
		"JobDescription": in.JobDescription,
		"TargetCompany":  in.TargetCompany,
		"TargetRole":     in.TargetRole,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to build analysis prompt: %w", err)
	}

	start := time.Now()
	reply, err := complete(ctx, a.client, a.timeout, StageAnalyze, prompt)
	if err != nil {
		a.logger.Warn("job analysis completion failed",
			zap.String("model", a.client.Model()),
			zap.Duration("elapsed", time.Since(start)),
			logging.SafeError(err))
		return nil, err
	}

	a.logger.Debug("job analysis completion received",
		zap.String("model", a.client.Model()),
		zap.Int("prompt_length", len(prompt)),
		zap.Int("reply_length", len(reply)),
		zap.Duration("elapsed", time.Since(start)))

	return decode[types.JobAnalysis](StageAnalyze, embedded.JobAnalysis, reply)
}
