package storage

import (
	"context"
	"database/sql"
	"log"
	"strings"
	"time"

	_ "github.com/lib/pq" // PostgreSQL driver
)

type DB struct {
	connection *sql.DB
}

func NewDB(dataSourceName string) (*DB, error) {
	db, err := sql.Open("postgres", dataSourceName)
	if err != nil {
		return nil, err
	}

	// Connection pool tuning
	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(10)
	db.SetConnMaxLifetime(5 * time.Minute)

	if err := db.Ping(); err != nil {
		return nil, err
	}

	return &DB{connection: db}, nil
}

func (db *DB) Close() {
	if err := db.connection.Close(); err != nil {
		log.Println("Error closing the database connection:", err)
	}
}

func (db *DB) Ping(ctx context.Context) error {
	return db.connection.PingContext(ctx)
}

// SaveResumeFile stores upload metadata plus the extracted text and
// returns the new row id.
func (db *DB) SaveResumeFile(ctx context.Context, filename, fileType, fullText string, fileSize int64) (int64, error) {
	query := `INSERT INTO resume_files (filename, file_type, file_size, full_text, uploaded_at)
              VALUES ($1, $2, $3, $4, NOW())
              RETURNING id`
	var id int64
	err := db.connection.QueryRowContext(ctx, query, filename, fileType, fileSize, fullText).Scan(&id)
	return id, err
}

// GetResumeFile loads upload metadata for one stored resume.
func (db *DB) GetResumeFile(ctx context.Context, id int64) (*ResumeFileInfo, error) {
	var info ResumeFileInfo
	err := db.connection.QueryRowContext(ctx,
		`SELECT id, filename, file_type, file_size, uploaded_at
         FROM resume_files WHERE id = $1`,
		id).Scan(&info.ID, &info.Filename, &info.FileType, &info.FileSize, &info.UploadedAt)
	if err != nil {
		return nil, err
	}
	return &info, nil
}

// SaveSkillAnalysis records one aggregation run and its per-skill
// rows. Re-analyzing the same upload replaces the previous rows.
func (db *DB) SaveSkillAnalysis(ctx context.Context, analysis *SkillAnalysis, rows []SkillExperienceRow) error {
	tx, err := db.connection.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx,
		`DELETE FROM skill_analyses WHERE resume_file_id = $1`,
		analysis.ResumeFileID)
	if err != nil {
		return err
	}

	_, err = tx.ExecContext(ctx,
		`INSERT INTO skill_analyses (id, resume_file_id, total_skills, analyzed_at)
         VALUES ($1, $2, $3, $4)`,
		analysis.ID, analysis.ResumeFileID, analysis.TotalSkills, analysis.AnalyzedAt)
	if err != nil {
		return err
	}

	for _, row := range rows {
		_, err = tx.ExecContext(ctx,
			`INSERT INTO skill_experience (analysis_id, skill, total_months, contexts, companies)
             VALUES ($1, $2, $3, $4, $5)`,
			analysis.ID, row.Skill, row.TotalMonths,
			strings.Join(row.Contexts, ","), strings.Join(row.Companies, ","))
		if err != nil {
			return err
		}
	}

	return tx.Commit()
}

// GetSkillAnalysis loads the latest analysis for an upload together
// with its per-skill rows, ordered by total months descending.
func (db *DB) GetSkillAnalysis(ctx context.Context, resumeFileID int64) (*SkillAnalysis, []SkillExperienceRow, error) {
	var analysis SkillAnalysis
	err := db.connection.QueryRowContext(ctx,
		`SELECT id, resume_file_id, total_skills, analyzed_at
         FROM skill_analyses WHERE resume_file_id = $1`,
		resumeFileID).Scan(&analysis.ID, &analysis.ResumeFileID, &analysis.TotalSkills, &analysis.AnalyzedAt)
	if err != nil {
		return nil, nil, err
	}

	rows, err := db.connection.QueryContext(ctx,
		`SELECT skill, total_months, contexts, companies
         FROM skill_experience
         WHERE analysis_id = $1
         ORDER BY total_months DESC`,
		analysis.ID)
	if err != nil {
		return nil, nil, err
	}
	defer rows.Close()

	var skillRows []SkillExperienceRow
	for rows.Next() {
		var row SkillExperienceRow
		var contexts, companies string
		if err := rows.Scan(&row.Skill, &row.TotalMonths, &contexts, &companies); err != nil {
			return nil, nil, err
		}
		row.AnalysisID = analysis.ID
		row.Contexts = splitJoined(contexts)
		row.Companies = splitJoined(companies)
		skillRows = append(skillRows, row)
	}

	return &analysis, skillRows, rows.Err()
}

// SaveAnalysisJob inserts a pending async job.
func (db *DB) SaveAnalysisJob(ctx context.Context, job *AnalysisJob) error {
	_, err := db.connection.ExecContext(ctx,
		`INSERT INTO analysis_jobs (id, resume_file_id, status, created_at)
         VALUES ($1, $2, $3, $4)`,
		job.ID, job.ResumeFileID, job.Status, job.CreatedAt)
	return err
}

// UpdateAnalysisJob moves a job to a new status; completed and failed
// states also record the completion time.
func (db *DB) UpdateAnalysisJob(ctx context.Context, jobID, status, errorMessage string) error {
	query := `UPDATE analysis_jobs
              SET status = $2,
                  error_message = NULLIF($3, ''),
                  completed_at = CASE WHEN $2 IN ('completed', 'failed') THEN NOW() ELSE completed_at END
              WHERE id = $1`
	_, err := db.connection.ExecContext(ctx, query, jobID, status, errorMessage)
	return err
}

// GetAnalysisJob looks up one async job by id.
func (db *DB) GetAnalysisJob(ctx context.Context, jobID string) (*AnalysisJob, error) {
	var job AnalysisJob
	var errorMessage sql.NullString
	var completedAt sql.NullTime
	err := db.connection.QueryRowContext(ctx,
		`SELECT id, resume_file_id, status, error_message, created_at, completed_at
         FROM analysis_jobs WHERE id = $1`,
		jobID).Scan(&job.ID, &job.ResumeFileID, &job.Status, &errorMessage, &job.CreatedAt, &completedAt)
	if err != nil {
		return nil, err
	}
	if errorMessage.Valid {
		job.ErrorMessage = errorMessage.String
	}
	if completedAt.Valid {
		t := completedAt.Time
		job.CompletedAt = &t
	}
	return &job, nil
}

func splitJoined(joined string) []string {
	if joined == "" {
		return []string{}
	}
	return strings.Split(joined, ",")
}
