package tailoring

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/portfolio-backoffice/internal/apperrors"
	"github.com/jonathan/portfolio-backoffice/internal/llm"
	"github.com/jonathan/portfolio-backoffice/internal/types"
)

func TestAnalyze_Success(t *testing.T) {
	client := &llm.MockClient{CompleteFunc: func(ctx context.Context, prompt string) (string, error) {
		return "```json\n" + analysisReply + "\n```", nil
	}}
	a := NewAnalyzer(client, time.Second, nil)

	got, err := a.Analyze(context.Background(), AnalyzeInput{
		JobDescription: "Senior Go engineer to own our billing services.",
		TargetCompany:  "Acme",
		TargetRole:     "Backend Engineer",
	})
	require.NoError(t, err)
	assert.Equal(t, types.SenioritySenior, got.SeniorityLevel)
	assert.Equal(t, []string{"Go", "PostgreSQL"}, got.RequiredSkills)

	require.Equal(t, 1, client.Calls())
	prompt := client.Prompts()[0]
	assert.Contains(t, prompt, "Senior Go engineer to own our billing services.")
	assert.Contains(t, prompt, "Company: Acme")
	assert.Contains(t, prompt, "Role: Backend Engineer")
}

func TestAnalyze_DescriptionLengthBoundary(t *testing.T) {
	client := &llm.MockClient{CompleteFunc: func(ctx context.Context, prompt string) (string, error) {
		return analysisReply, nil
	}}
	a := NewAnalyzer(client, time.Second, nil)

	_, err := a.Analyze(context.Background(), AnalyzeInput{JobDescription: "abcdefghi"})
	var ie *apperrors.InvalidInputError
	require.ErrorAs(t, err, &ie)
	assert.Equal(t, "jobDescription", ie.Fields[0].Field)
	assert.Equal(t, 0, client.Calls(), "no completion call for invalid input")

	_, err = a.Analyze(context.Background(), AnalyzeInput{JobDescription: "abcdefghij"})
	require.NoError(t, err)
	assert.Equal(t, 1, client.Calls())

	// Length counts characters, not bytes.
	_, err = a.Analyze(context.Background(), AnalyzeInput{JobDescription: "ééééééééé"})
	require.ErrorAs(t, err, &ie)
}

func TestAnalyze_SeniorityOutsideEnumIsRejected(t *testing.T) {
	reply := strings.Replace(analysisReply, `"senior"`, `"staff"`, 1)
	client := &llm.MockClient{CompleteFunc: func(ctx context.Context, prompt string) (string, error) {
		return reply, nil
	}}

	_, err := NewAnalyzer(client, time.Second, nil).Analyze(context.Background(), AnalyzeInput{JobDescription: "Staff engineer wanted."})
	ve := requireValidation(t, err)
	assert.Contains(t, ve.Fields(), "seniorityLevel")
}

func TestAnalyze_UpstreamFailures(t *testing.T) {
	desc := AnalyzeInput{JobDescription: "Backend engineer, Go and SQL."}

	t.Run("call error", func(t *testing.T) {
		client := &llm.MockClient{CompleteFunc: func(ctx context.Context, prompt string) (string, error) {
			return "", errors.New("connection reset")
		}}
		_, err := NewAnalyzer(client, time.Second, nil).Analyze(context.Background(), desc)
		var ue *UpstreamUnavailableError
		require.ErrorAs(t, err, &ue)
		assert.Equal(t, StageAnalyze, ue.Stage)
		assert.Equal(t, 1, client.Calls(), "no retry")
	})

	t.Run("timeout", func(t *testing.T) {
		client := &llm.MockClient{CompleteFunc: func(ctx context.Context, prompt string) (string, error) {
			<-ctx.Done()
			return "", ctx.Err()
		}}
		_, err := NewAnalyzer(client, 20*time.Millisecond, nil).Analyze(context.Background(), desc)
		var ue *UpstreamUnavailableError
		require.ErrorAs(t, err, &ue)
		assert.ErrorIs(t, err, context.DeadlineExceeded)
	})

	t.Run("late reply ignoring the deadline", func(t *testing.T) {
		client := &llm.MockClient{CompleteFunc: func(ctx context.Context, prompt string) (string, error) {
			time.Sleep(40 * time.Millisecond)
			return analysisReply, nil
		}}
		_, err := NewAnalyzer(client, 10*time.Millisecond, nil).Analyze(context.Background(), desc)
		var ue *UpstreamUnavailableError
		require.ErrorAs(t, err, &ue)
	})

	t.Run("not json", func(t *testing.T) {
		client := &llm.MockClient{CompleteFunc: func(ctx context.Context, prompt string) (string, error) {
			return "Sure! Here is the analysis you asked for.", nil
		}}
		_, err := NewAnalyzer(client, time.Second, nil).Analyze(context.Background(), desc)
		var fe *UpstreamFormatError
		require.ErrorAs(t, err, &fe)
		assert.Equal(t, StageAnalyze, fe.Stage)
	})

	t.Run("json of the wrong shape", func(t *testing.T) {
		client := &llm.MockClient{CompleteFunc: func(ctx context.Context, prompt string) (string, error) {
			return `["Go"]`, nil
		}}
		_, err := NewAnalyzer(client, time.Second, nil).Analyze(context.Background(), desc)
		requireValidation(t, err)
	})
}
