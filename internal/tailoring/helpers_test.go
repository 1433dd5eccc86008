package tailoring

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/portfolio-backoffice/internal/llm"
	"github.com/jonathan/portfolio-backoffice/internal/schemas"
	"github.com/jonathan/portfolio-backoffice/internal/types"
)

const analysisReply = `{
	"requiredSkills": ["Go", "PostgreSQL"],
	"preferredSkills": ["Kubernetes"],
	"seniorityLevel": "senior",
	"companyValues": ["ownership"],
	"roleType": "Backend Engineer",
	"industry": "Developer Tools",
	"keyResponsibilities": ["Own services end to end"],
	"qualifications": ["5+ years building backends"]
}`

func sampleAnalysis() *types.JobAnalysis {
	var a types.JobAnalysis
	if err := json.Unmarshal([]byte(analysisReply), &a); err != nil {
		panic(err)
	}
	return &a
}

func contentReply(selected []string, described ...string) string {
	desc := make(map[string]string, len(described))
	for _, id := range described {
		desc[id] = "Tailored: " + id
	}
	doc := map[string]any{
		"selectedExperiences":         selected,
		"tailoredDescriptions":        desc,
		"suggestedSkillsOrder":        []string{"Go", "PostgreSQL"},
		"personalStatementSuggestion": "Backend engineer focused on reliable systems.",
		"coverLetterTips":             []string{"Mention on-call ownership"},
	}
	b, err := json.Marshal(doc)
	if err != nil {
		panic(err)
	}
	return string(b)
}

func experience(title string, cat types.Category, prio int) types.ExperienceRecord {
	return types.ExperienceRecord{
		ID:             uuid.New(),
		Category:       cat,
		Title:          title,
		Organization:   "Org " + title,
		StartDate:      "2020-01-01",
		ResumePriority: prio,
		Visibility:     types.VisibilityPublic,
		Skills:         []string{"Go"},
		Technologies:   []string{},
		Achievements:   []string{},
	}
}

func acmeExperiences() []types.ExperienceRecord {
	return []types.ExperienceRecord{
		experience("Staff Engineer", types.CategoryWork, 9),
		experience("Senior Engineer", types.CategoryWork, 7),
		experience("Support Engineer", types.CategoryWork, 3),
		experience("MSc Computer Science", types.CategoryEducation, 5),
		experience("BSc Mathematics", types.CategoryEducation, 4),
	}
}

// scriptedClient answers the analysis prompt and the tailoring prompt with
// the given replies.
func scriptedClient(analysis, content string) *llm.MockClient {
	return &llm.MockClient{
		CompleteFunc: func(ctx context.Context, prompt string) (string, error) {
			if strings.Contains(prompt, "Analyze the following job description") {
				return analysis, nil
			}
			return content, nil
		},
	}
}

type failingArchive struct {
	*MemoryArchive
	appendErr error
	queryErr  error
}

func (f *failingArchive) Append(ctx context.Context, p types.NewPattern) (uuid.UUID, error) {
	if f.appendErr != nil {
		return uuid.Nil, f.appendErr
	}
	return f.MemoryArchive.Append(ctx, p)
}

func (f *failingArchive) Query(ctx context.Context, filter types.PatternFilter) ([]types.PatternRecord, error) {
	if f.queryErr != nil {
		return nil, f.queryErr
	}
	return f.MemoryArchive.Query(ctx, filter)
}

type staticSourceErr struct{}

func (staticSourceErr) ListResumeEligible(context.Context) ([]types.ExperienceRecord, error) {
	return nil, errors.New("connection refused")
}

func requireValidation(t *testing.T, err error) *schemas.ValidationError {
	t.Helper()
	var ve *schemas.ValidationError
	require.ErrorAs(t, err, &ve, "want ValidationError, got %T: %v", err, err)
	return ve
}

func ids(exps []types.ExperienceRecord, idx ...int) []string {
	out := make([]string, 0, len(idx))
	for _, i := range idx {
		out = append(out, exps[i].ID.String())
	}
	return out
}
