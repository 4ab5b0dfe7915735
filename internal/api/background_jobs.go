package api

import (
	"context"
	"log"
	"time"
)

// analysisJob is one queued async resume analysis.
type analysisJob struct {
	JobID    string
	ResumeID int64
	FullText string
	Queued   time.Time
}

// StartBackgroundWorkers launches the resume processing worker.
func (a *API) StartBackgroundWorkers() {
	go a.analysisWorker()

	log.Println("[BackgroundJobs] Worker started (resume analysis)")
}

// analysisWorker drains the job queue, running the same LLM + skills
// pipeline as the synchronous endpoint and recording job status.
func (a *API) analysisWorker() {
	log.Println("[AnalysisWorker] Started")

	for job := range a.jobQueue {
		log.Printf("[AnalysisWorker] Processing job %s (resume %d)", job.JobID, job.ResumeID)

		ctx := context.Background()

		if a.db != nil {
			if err := a.db.UpdateAnalysisJob(ctx, job.JobID, "processing", ""); err != nil {
				log.Printf("[AnalysisWorker] Failed to mark job %s processing: %v", job.JobID, err)
			}
		}

		_, enhanced, method := a.analyze(ctx, job.ResumeID, job.FullText, time.Now())

		status := "completed"
		errMessage := ""
		if method == "failed" {
			status = "failed"
			errMessage = "LLM extraction failed"
		} else if method == "none" {
			status = "failed"
			errMessage = "LLM provider not configured"
		}

		if a.db != nil {
			if err := a.db.UpdateAnalysisJob(ctx, job.JobID, status, errMessage); err != nil {
				log.Printf("[AnalysisWorker] Failed to update job %s: %v", job.JobID, err)
			}
		}

		totalSkills := 0
		if enhanced != nil {
			totalSkills = enhanced.TotalSkills
		}
		log.Printf("[AnalysisWorker] Job %s %s: %d skills (waited %v)",
			job.JobID, status, totalSkills, time.Since(job.Queued))
	}
}
