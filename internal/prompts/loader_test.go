package prompts

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGet_ValidPrompt(t *testing.T) {
	prompt, err := Get(TailoringFile, AnalyzeJobKey)
	require.NoError(t, err)
	assert.Contains(t, prompt, "Analyze the following job description")
	assert.Contains(t, prompt, "{{.JobDescription}}")
}

func TestGet_InvalidFile(t *testing.T) {
	_, err := Get("nonexistent.json", "some-key")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read prompt file")
}

func TestGet_InvalidKey(t *testing.T) {
	_, err := Get(TailoringFile, "nonexistent-key")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not found")
}

func TestMustGet(t *testing.T) {
	assert.Panics(t, func() { MustGet("nonexistent.json", "some-key") })
	assert.NotPanics(t, func() { assert.NotEmpty(t, MustGet(TailoringFile, GenerateTailoredKey)) })
}

func TestList(t *testing.T) {
	keys, err := List(TailoringFile)
	require.NoError(t, err)
	assert.Equal(t, []string{AnalyzeJobKey, GenerateTailoredKey}, keys)
}

func TestRender_AnalyzePrompt(t *testing.T) {
	out, err := Render(TailoringFile, AnalyzeJobKey, map[string]string{
		"JobDescription": "Senior Go engineer for payments",
		"TargetCompany":  "Acme",
		"TargetRole":     "Backend Engineer",
	})
	require.NoError(t, err)

	assert.Contains(t, out, "Senior Go engineer for payments")
	assert.Contains(t, out, "Company: Acme")
	assert.Contains(t, out, "Role: Backend Engineer")
	assert.Contains(t, out, "entry, mid, senior, lead, executive")
	assert.NotContains(t, out, "{{")
}

func TestRender_GeneratePrompt(t *testing.T) {
	data := struct {
		JobAnalysis        string
		Experiences        string
		SuccessfulPatterns string
		TargetCompany      string
		TargetRole         string
		AdditionalNotes    string
		MinSelected        int
		MaxSelected        int
	}{
		JobAnalysis:        `{"requiredSkills":["Go"]}`,
		Experiences:        `[{"id":"e1"}]`,
		SuccessfulPatterns: `[]`,
		TargetCompany:      "Acme",
		MinSelected:        3,
		MaxSelected:        5,
	}

	out, err := Render(TailoringFile, GenerateTailoredKey, data)
	require.NoError(t, err)
	assert.Contains(t, out, `[{"id":"e1"}]`)
	assert.Contains(t, out, "Select 3-5")
	assert.NotContains(t, out, "Additional Notes")

	data.AdditionalNotes = "Emphasize leadership"
	out, err = Render(TailoringFile, GenerateTailoredKey, data)
	require.NoError(t, err)
	assert.Contains(t, out, "Emphasize leadership")
}

func TestRender_MissingField(t *testing.T) {
	_, err := Render(TailoringFile, AnalyzeJobKey, map[string]string{"JobDescription": "x"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to render prompt")
}
