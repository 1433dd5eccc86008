// Package schemas embeds the JSON Schema documents describing the records
// exchanged with the completion service and the back-office API.
package schemas

import "embed"

// FS holds every *.schema.json document in this directory.
//
//go:embed *.schema.json
var FS embed.FS

// Schema file names
const (
	JobAnalysis      = "job_analysis.schema.json"
	TailoredContent  = "tailored_content.schema.json"
	ExperienceRecord = "experience_record.schema.json"
	ContentEntity    = "content_entity.schema.json"
)

// Names lists every embedded schema.
var Names = []string{JobAnalysis, TailoredContent, ExperienceRecord, ContentEntity}
