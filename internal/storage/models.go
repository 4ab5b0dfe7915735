package storage

import "time"

// ResumeFileInfo represents metadata about an uploaded resume file.
type ResumeFileInfo struct {
	ID         int64
	Filename   string
	FileType   string
	FileSize   int64
	UploadedAt time.Time
}

// SkillAnalysis is one aggregation run over an uploaded resume.
type SkillAnalysis struct {
	ID           string // uuid
	ResumeFileID int64
	TotalSkills  int
	AnalyzedAt   time.Time
}

// SkillExperienceRow is one aggregated skill persisted for an
// analysis run. Contexts and Companies are stored comma-joined.
type SkillExperienceRow struct {
	AnalysisID  string
	Skill       string
	TotalMonths int
	Contexts    []string
	Companies   []string
}

// AnalysisJob represents an async resume processing job.
type AnalysisJob struct {
	ID           string // uuid
	ResumeFileID int64
	Status       string // pending, processing, completed, failed
	ErrorMessage string
	CreatedAt    time.Time
	CompletedAt  *time.Time
}
