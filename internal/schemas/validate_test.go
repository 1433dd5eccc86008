package schemas

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/portfolio-backoffice/internal/types"
	embedded "github.com/jonathan/portfolio-backoffice/schemas"
)

const validAnalysis = `{
	"requiredSkills": ["Go", "PostgreSQL"],
	"preferredSkills": ["Kubernetes"],
	"seniorityLevel": "senior",
	"companyValues": ["ownership"],
	"roleType": "Backend Engineer",
	"industry": "Fintech",
	"keyResponsibilities": ["Design services"],
	"qualifications": ["5+ years"]
}`

func analysisWithSeniority(level string) string {
	return fmt.Sprintf(`{
		"requiredSkills": [], "preferredSkills": [], "seniorityLevel": %q,
		"companyValues": [], "roleType": "", "industry": "",
		"keyResponsibilities": [], "qualifications": []
	}`, level)
}

func requireValidationError(t *testing.T, err error) *ValidationError {
	t.Helper()
	require.Error(t, err)
	var ve *ValidationError
	require.True(t, errors.As(err, &ve), "error should be ValidationError type, got %T", err)
	return ve
}

func TestDecode_JobAnalysis_Valid(t *testing.T) {
	got, err := Decode[types.JobAnalysis](embedded.JobAnalysis, []byte(validAnalysis))
	require.NoError(t, err)
	assert.Equal(t, types.SenioritySenior, got.SeniorityLevel)
	assert.Equal(t, []string{"Go", "PostgreSQL"}, got.RequiredSkills)
	assert.Equal(t, "Fintech", got.Industry)
}

func TestDecode_JobAnalysis_EverySeniorityAccepted(t *testing.T) {
	for _, level := range types.SeniorityLevels {
		t.Run(string(level), func(t *testing.T) {
			got, err := Decode[types.JobAnalysis](embedded.JobAnalysis, []byte(analysisWithSeniority(string(level))))
			require.NoError(t, err)
			assert.True(t, got.SeniorityLevel.Valid())
		})
	}
}

func TestDecode_JobAnalysis_SeniorityOutsideEnum(t *testing.T) {
	for _, level := range []string{"staff", "Senior", "", "principal"} {
		t.Run(level, func(t *testing.T) {
			_, err := Decode[types.JobAnalysis](embedded.JobAnalysis, []byte(analysisWithSeniority(level)))
			ve := requireValidationError(t, err)
			assert.Contains(t, ve.Fields(), "seniorityLevel")
		})
	}
}

func TestDecode_JobAnalysis_ReportsEveryMissingField(t *testing.T) {
	_, err := Decode[types.JobAnalysis](embedded.JobAnalysis, []byte(`{"requiredSkills": [], "seniorityLevel": "mid"}`))
	ve := requireValidationError(t, err)

	fields := ve.Fields()
	for _, want := range []string{"preferredSkills", "companyValues", "roleType", "industry", "keyResponsibilities", "qualifications"} {
		assert.Contains(t, fields, want)
	}
	assert.NotContains(t, fields, "requiredSkills")
}

func TestDecode_JobAnalysis_WrongTypes(t *testing.T) {
	doc := `{
		"requiredSkills": ["Go", 7],
		"preferredSkills": "Kubernetes",
		"seniorityLevel": "mid",
		"companyValues": [],
		"roleType": 5,
		"industry": "",
		"keyResponsibilities": [],
		"qualifications": []
	}`
	_, err := Decode[types.JobAnalysis](embedded.JobAnalysis, []byte(doc))
	ve := requireValidationError(t, err)

	fields := ve.Fields()
	assert.Contains(t, fields, "requiredSkills.1")
	assert.Contains(t, fields, "preferredSkills")
	assert.Contains(t, fields, "roleType")
}

func TestDecode_InvalidJSON(t *testing.T) {
	_, err := Decode[types.JobAnalysis](embedded.JobAnalysis, []byte(`{"requiredSkills": [`))
	ve := requireValidationError(t, err)
	assert.Equal(t, []string{"(root)"}, ve.Fields())
}

func TestDecode_TailoredContent(t *testing.T) {
	t.Run("valid", func(t *testing.T) {
		doc := `{
			"selectedExperiences": ["a", "b"],
			"tailoredDescriptions": {"a": "Built the thing"},
			"suggestedSkillsOrder": ["Go"],
			"personalStatementSuggestion": "Engineer who ships.",
			"coverLetterTips": ["Mention scale"]
		}`
		got, err := Decode[types.TailoredContent](embedded.TailoredContent, []byte(doc))
		require.NoError(t, err)
		assert.Equal(t, []string{"a", "b"}, got.SelectedExperiences)
		assert.Equal(t, "Built the thing", got.TailoredDescriptions["a"])
	})

	t.Run("non-string description", func(t *testing.T) {
		doc := `{
			"selectedExperiences": ["a"],
			"tailoredDescriptions": {"a": 3},
			"suggestedSkillsOrder": [],
			"personalStatementSuggestion": "",
			"coverLetterTips": []
		}`
		_, err := Decode[types.TailoredContent](embedded.TailoredContent, []byte(doc))
		ve := requireValidationError(t, err)
		assert.Contains(t, ve.Fields(), "tailoredDescriptions.a")
	})

	t.Run("missing statement", func(t *testing.T) {
		doc := `{"selectedExperiences": [], "tailoredDescriptions": {}, "suggestedSkillsOrder": [], "coverLetterTips": []}`
		_, err := Decode[types.TailoredContent](embedded.TailoredContent, []byte(doc))
		ve := requireValidationError(t, err)
		assert.Equal(t, []string{"personalStatementSuggestion"}, ve.Fields())
	})
}

func TestDecode_ExperienceRecord(t *testing.T) {
	tests := []struct {
		name       string
		doc        string
		wantFields []string
	}{
		{name: "minimal", doc: `{"title": "Engineer"}`},
		{name: "full", doc: `{"title": "Engineer", "category": "work", "start_date": "2020-01-01", "resume_priority": 9, "visibility": "resume_only", "skills": ["Go"]}`},
		{name: "missing title", doc: `{"organization": "Acme"}`, wantFields: []string{"title"}},
		{name: "priority above range", doc: `{"title": "x", "resume_priority": 11}`, wantFields: []string{"resume_priority"}},
		{name: "bad date", doc: `{"title": "x", "start_date": "Jan 2020"}`, wantFields: []string{"start_date"}},
		{name: "unknown visibility", doc: `{"title": "x", "visibility": "friends"}`, wantFields: []string{"visibility"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Decode[types.ExperienceInput](embedded.ExperienceRecord, []byte(tt.doc))
			if tt.wantFields == nil {
				require.NoError(t, err)
				require.NotNil(t, got.Title)
				return
			}
			ve := requireValidationError(t, err)
			assert.Equal(t, tt.wantFields, ve.Fields())
		})
	}
}

func TestDecode_ContentEntity(t *testing.T) {
	tests := []struct {
		name       string
		doc        string
		wantFields []string
	}{
		{name: "minimal", doc: `{"entity_type": "award", "title": "Best paper"}`},
		{name: "with metadata", doc: `{"entity_type": "publication", "title": "x", "date_start": "2022-05-01", "metadata": {"venue": "OSDI"}}`},
		{name: "missing type", doc: `{"title": "x"}`, wantFields: []string{"entity_type"}},
		{name: "unknown type", doc: `{"entity_type": "hobby", "title": "x"}`, wantFields: []string{"entity_type"}},
		{name: "empty title", doc: `{"entity_type": "course", "title": ""}`, wantFields: []string{"title"}},
		{name: "negative order", doc: `{"entity_type": "course", "title": "x", "display_order": -1}`, wantFields: []string{"display_order"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Decode[types.ContentEntityInput](embedded.ContentEntity, []byte(tt.doc))
			if tt.wantFields == nil {
				require.NoError(t, err)
				require.NotNil(t, got.EntityType)
				return
			}
			ve := requireValidationError(t, err)
			assert.Equal(t, tt.wantFields, ve.Fields())
		})
	}
}

func TestValidate_UnknownSchema(t *testing.T) {
	err := Validate("missing.schema.json", []byte(`{}`))
	require.Error(t, err)
	var loadErr *SchemaLoadError
	assert.True(t, errors.As(err, &loadErr))
}

func TestValidateJSONString(t *testing.T) {
	schema := `{"type": "object", "required": ["name"], "properties": {"name": {"type": "string"}}}`

	assert.NoError(t, ValidateJSONString(schema, `{"name": "ok"}`))

	err := ValidateJSONString(schema, `{}`)
	ve := requireValidationError(t, err)
	assert.Equal(t, "name", ve.Errors[0].Field)

	err = ValidateJSONString(`{"type": `, `{}`)
	var loadErr *SchemaLoadError
	assert.True(t, errors.As(err, &loadErr))
}

func TestValidationError_Error(t *testing.T) {
	ve := &ValidationError{Errors: []FieldError{{Field: "a", Message: "bad"}, {Field: "b", Message: "worse"}}}
	assert.Contains(t, ve.Error(), "1. a: bad")
	assert.Contains(t, ve.Error(), "2. b: worse")
}
