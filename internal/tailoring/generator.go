package tailoring

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/jonathan/portfolio-backoffice/internal/apperrors"
	"github.com/jonathan/portfolio-backoffice/internal/llm"
	"github.com/jonathan/portfolio-backoffice/internal/logging"
	"github.com/jonathan/portfolio-backoffice/internal/prompts"
	"github.com/jonathan/portfolio-backoffice/internal/schemas"
	"github.com/jonathan/portfolio-backoffice/internal/types"
	embedded "github.com/jonathan/portfolio-backoffice/schemas"
)

// Selection bounds given to the model.
const (
	MinSelectedExperiences = 3
	MaxSelectedExperiences = 5
)

// GenerateInput carries everything one generation call needs.
type GenerateInput struct {
	Analysis        *types.JobAnalysis
	Experiences     []types.ExperienceRecord
	PriorPatterns   []types.PatternRecord
	TargetCompany   string
	TargetRole      string
	AdditionalNotes string
	// MaxPriorPatterns truncates PriorPatterns. Zero or less sends none.
	MaxPriorPatterns int
}

// GenerateResult is a validated tailoring plus the archive outcome.
type GenerateResult struct {
	Content   *types.TailoredContent
	PatternID *uuid.UUID
	Warnings  []string
}

// Generator produces TailoredContent and archives each success.
type Generator struct {
	client  llm.Client
	archive PatternArchive
	timeout time.Duration
	logger  *zap.Logger
}

// NewGenerator creates a Generator. archive may be nil, in which case every
// success carries an "archive unavailable" warning.
func NewGenerator(client llm.Client, archive PatternArchive, timeout time.Duration, logger *zap.Logger) *Generator {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Generator{client: client, archive: archive, timeout: timeout, logger: logger}
}

// promptExperience is the projection of an experience shown to the model.
type promptExperience struct {
	ID             string   `json:"id"`
	Category       string   `json:"category"`
	Title          string   `json:"title"`
	Organization   string   `json:"organization,omitempty"`
	StartDate      string   `json:"start_date,omitempty"`
	EndDate        string   `json:"end_date,omitempty"`
	IsCurrent      bool     `json:"is_current"`
	Description    string   `json:"description,omitempty"`
	Skills         []string `json:"skills"`
	Technologies   []string `json:"technologies"`
	Achievements   []string `json:"achievements"`
	ResumePriority int      `json:"resume_priority"`
}

type promptPattern struct {
	TargetCompany   string                `json:"targetCompany,omitempty"`
	TargetRole      string                `json:"targetRole,omitempty"`
	JobAnalysis     types.JobAnalysis     `json:"jobAnalysis"`
	TailoredContent types.TailoredContent `json:"tailoredContent"`
	SuccessRating   int                   `json:"successRating,omitempty"`
}

// Generate renders the tailoring prompt, makes one completion call and checks
// that the reply only references experiences that were supplied.
func (g *Generator) Generate(ctx context.Context, in GenerateInput) (*GenerateResult, error) {
	if in.Analysis == nil {
		return nil, apperrors.NewInvalidInput("jobAnalysis", "is required")
	}

	ids, err := checkExperiences(in.Experiences)
	if err != nil {
		return nil, err
	}

	prompt, err := g.buildPrompt(in)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	reply, err := complete(ctx, g.client, g.timeout, StageGenerate, prompt)
	if err != nil {
		g.logger.Warn("tailoring completion failed",
			zap.String("model", g.client.Model()),
			zap.Duration("elapsed", time.Since(start)),
			logging.SafeError(err))
		return nil, err
	}

	content, err := decode[types.TailoredContent](StageGenerate, embedded.TailoredContent, reply)
	if err != nil {
		return nil, err
	}
	if err := checkSelection(content, ids); err != nil {
		return nil, err
	}

	// A caller that went away must not leave an archived pattern behind.
	if err := ctx.Err(); err != nil {
		return nil, &UpstreamUnavailableError{Stage: StageGenerate, Cause: err}
	}

	g.logger.Info("tailored content generated",
		zap.Int("experiences", len(in.Experiences)),
		zap.Int("selected", len(content.SelectedExperiences)),
		zap.Duration("elapsed", time.Since(start)))

	result := &GenerateResult{Content: content}
	g.archiveResult(ctx, in, content, result)
	return result, nil
}

func (g *Generator) archiveResult(ctx context.Context, in GenerateInput, content *types.TailoredContent, result *GenerateResult) {
	if g.archive == nil {
		result.Warnings = append(result.Warnings, "pattern archive unavailable: result was not archived")
		return
	}

	id, err := g.archive.Append(ctx, types.NewPattern{
		JobAnalysis:     *in.Analysis,
		TailoredContent: *content,
		TargetCompany:   in.TargetCompany,
		TargetRole:      in.TargetRole,
	})
	if err != nil {
		g.logger.Warn("failed to archive tailoring pattern", logging.SafeError(err))
		result.Warnings = append(result.Warnings, "pattern archive unavailable: result was not archived")
		return
	}
	result.PatternID = &id
}

func (g *Generator) buildPrompt(in GenerateInput) (string, error) {
	analysisJSON, err := json.MarshalIndent(in.Analysis, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to serialize job analysis: %w", err)
	}

	exps := make([]promptExperience, 0, len(in.Experiences))
	for _, e := range in.Experiences {
		exps = append(exps, promptExperience{
			ID:             e.ID.String(),
			Category:       string(e.Category),
			Title:          e.Title,
			Organization:   e.Organization,
			StartDate:      e.StartDate,
			EndDate:        e.EndDate,
			IsCurrent:      e.IsCurrent,
			Description:    e.Description,
			Skills:         nonNil(e.Skills),
			Technologies:   nonNil(e.Technologies),
			Achievements:   nonNil(e.Achievements),
			ResumePriority: e.ResumePriority,
		})
	}
	expJSON, err := json.MarshalIndent(exps, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to serialize experiences: %w", err)
	}

	priors := in.PriorPatterns
	if in.MaxPriorPatterns <= 0 {
		priors = nil
	} else if len(priors) > in.MaxPriorPatterns {
		priors = priors[:in.MaxPriorPatterns]
	}
	patterns := make([]promptPattern, 0, len(priors))
	for _, p := range priors {
		pp := promptPattern{
			TargetCompany:   p.TargetCompany,
			TargetRole:      p.TargetRole,
			JobAnalysis:     p.JobAnalysis,
			TailoredContent: p.TailoredContent,
		}
		if p.Feedback != nil {
			pp.SuccessRating = p.Feedback.SuccessRating
		}
		patterns = append(patterns, pp)
	}
	patternJSON, err := json.MarshalIndent(patterns, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to serialize prior patterns: %w", err)
	}

	prompt, err := prompts.Render(prompts.TailoringFile, prompts.GenerateTailoredKey, map[string]any{
		"JobAnalysis":        string(analysisJSON),
		"Experiences":        string(expJSON),
		"SuccessfulPatterns": string(patternJSON),
		"TargetCompany":      in.TargetCompany,
		"TargetRole":         in.TargetRole,
		"AdditionalNotes":    in.AdditionalNotes,
		"MinSelected":        MinSelectedExperiences,
		"MaxSelected":        MaxSelectedExperiences,
	})
	if err != nil {
		return "", fmt.Errorf("failed to build tailoring prompt: %w", err)
	}
	return prompt, nil
}

// checkExperiences rejects records the prompt could not reference reliably
// and returns the set of supplied identifiers.
func checkExperiences(exps []types.ExperienceRecord) (map[string]bool, error) {
	ids := make(map[string]bool, len(exps))
	var problems []schemas.FieldError

	for i, e := range exps {
		if e.ID == uuid.Nil {
			problems = append(problems, schemas.FieldError{
				Field:   fmt.Sprintf("experiences.%d.id", i),
				Message: "identifier is required",
			})
		} else if ids[e.ID.String()] {
			problems = append(problems, schemas.FieldError{
				Field:   fmt.Sprintf("experiences.%d.id", i),
				Message: "duplicate identifier " + e.ID.String(),
			})
		}
		if e.ResumePriority < types.MinResumePriority || e.ResumePriority > types.MaxResumePriority {
			problems = append(problems, schemas.FieldError{
				Field:   fmt.Sprintf("experiences.%d.resume_priority", i),
				Message: fmt.Sprintf("must be between %d and %d", types.MinResumePriority, types.MaxResumePriority),
			})
		}
		if e.ID != uuid.Nil {
			ids[e.ID.String()] = true
		}
	}

	if len(problems) > 0 {
		return nil, &schemas.ValidationError{Errors: problems}
	}
	return ids, nil
}

// checkSelection enforces that the reply only names supplied experiences and
// selects each one at most once.
func checkSelection(content *types.TailoredContent, ids map[string]bool) error {
	var problems []schemas.FieldError

	seen := make(map[string]bool, len(content.SelectedExperiences))
	for i, id := range content.SelectedExperiences {
		field := fmt.Sprintf("selectedExperiences.%d", i)
		switch {
		case !ids[id]:
			problems = append(problems, schemas.FieldError{Field: field, Message: fmt.Sprintf("unknown experience id %q", id)})
		case seen[id]:
			problems = append(problems, schemas.FieldError{Field: field, Message: fmt.Sprintf("experience id %q selected more than once", id)})
		}
		seen[id] = true
	}

	described := make([]string, 0, len(content.TailoredDescriptions))
	for id := range content.TailoredDescriptions {
		described = append(described, id)
	}
	sort.Strings(described)
	for _, id := range described {
		if !ids[id] {
			problems = append(problems, schemas.FieldError{
				Field:   "tailoredDescriptions." + id,
				Message: fmt.Sprintf("unknown experience id %q", id),
			})
		}
	}

	if len(problems) > 0 {
		return &schemas.ValidationError{Errors: problems}
	}
	return nil
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
