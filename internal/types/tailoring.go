package types

import (
	"time"

	"github.com/google/uuid"
)

// SeniorityLevel is the closed set of seniority values a job analysis may carry.
type SeniorityLevel string

// Seniority levels
const (
	SeniorityEntry     SeniorityLevel = "entry"
	SeniorityMid       SeniorityLevel = "mid"
	SenioritySenior    SeniorityLevel = "senior"
	SeniorityLead      SeniorityLevel = "lead"
	SeniorityExecutive SeniorityLevel = "executive"
)

// SeniorityLevels lists every accepted seniority value.
var SeniorityLevels = []SeniorityLevel{
	SeniorityEntry, SeniorityMid, SenioritySenior, SeniorityLead, SeniorityExecutive,
}

// Valid reports whether s is a known seniority level.
func (s SeniorityLevel) Valid() bool {
	for _, known := range SeniorityLevels {
		if s == known {
			return true
		}
	}
	return false
}

// JobAnalysis is the structured reading of a job description.
type JobAnalysis struct {
	RequiredSkills      []string       `json:"requiredSkills"`
	PreferredSkills     []string       `json:"preferredSkills"`
	SeniorityLevel      SeniorityLevel `json:"seniorityLevel"`
	CompanyValues       []string       `json:"companyValues"`
	RoleType            string         `json:"roleType"`
	Industry            string         `json:"industry"`
	KeyResponsibilities []string       `json:"keyResponsibilities"`
	Qualifications      []string       `json:"qualifications"`
}

// TailoredContent is the generated résumé tailoring for one job.
type TailoredContent struct {
	SelectedExperiences         []string          `json:"selectedExperiences"`
	TailoredDescriptions        map[string]string `json:"tailoredDescriptions"`
	SuggestedSkillsOrder        []string          `json:"suggestedSkillsOrder"`
	PersonalStatementSuggestion string            `json:"personalStatementSuggestion"`
	CoverLetterTips             []string          `json:"coverLetterTips"`
}

// Feedback is the outcome the administrator reports for a pattern.
type Feedback struct {
	SuccessRating      int        `json:"successRating"`
	UserFeedback       string     `json:"userFeedback"`
	WasHired           *bool      `json:"wasHired,omitempty"`
	InterviewsReceived *int       `json:"interviewsReceived,omitempty"`
	FeedbackAt         *time.Time `json:"feedbackAt,omitempty"`
}

// PatternRecord is one archived tailoring result.
type PatternRecord struct {
	ID              uuid.UUID       `json:"id"`
	JobAnalysis     JobAnalysis     `json:"jobAnalysis"`
	TailoredContent TailoredContent `json:"tailoredContent"`
	TargetCompany   string          `json:"targetCompany,omitempty"`
	TargetRole      string          `json:"targetRole,omitempty"`
	CreatedAt       time.Time       `json:"createdAt"`
	Feedback        *Feedback       `json:"feedback,omitempty"`
}

// HasFeedback reports whether feedback has been recorded for the pattern.
func (p *PatternRecord) HasFeedback() bool {
	return p.Feedback != nil
}

// NewPattern carries the fields written by a pattern append.
type NewPattern struct {
	JobAnalysis     JobAnalysis
	TailoredContent TailoredContent
	TargetCompany   string
	TargetRole      string
}

// Pattern query limits
const (
	DefaultPatternQueryLimit = 20
	MaxPatternQueryLimit     = 100
)

// PatternFilter narrows pattern queries. Company and Role match
// case-insensitively as substrings. MinRating of zero disables the rating
// filter; a positive MinRating excludes patterns without feedback.
type PatternFilter struct {
	Company   string
	Role      string
	MinRating int
	Limit     int
}

// EffectiveLimit resolves Limit against MaxPatternQueryLimit.
func (f PatternFilter) EffectiveLimit() int {
	if f.Limit <= 0 || f.Limit > MaxPatternQueryLimit {
		return MaxPatternQueryLimit
	}
	return f.Limit
}
