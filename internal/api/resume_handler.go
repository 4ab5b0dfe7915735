package api

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"mime/multipart"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"resume-parser/internal/llm"
	"resume-parser/internal/resume"
	"resume-parser/internal/skills"
	"resume-parser/internal/storage"
	"resume-parser/internal/vision"
)

const maxUploadBytes = 10 << 20 // 10MB

// ExtractHandler handles resume uploads and runs the full pipeline
// @Summary Upload and analyze resume
// @Description Upload a resume (PDF/DOCX/TXT), extract fields with the LLM, label embedded images, and aggregate per-skill experience
// @Tags resume
// @Accept multipart/form-data
// @Produce json
// @Param file formData file true "Resume file (PDF, DOCX or TXT)"
// @Success 200 {object} map[string]interface{}
// @Failure 400 {object} map[string]string
// @Failure 500 {object} map[string]string
// @Router /resume/extract [post]
func (a *API) ExtractHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	startTime := time.Now()

	doc, file, ok := a.readUpload(w, r)
	if !ok {
		return
	}
	defer file.Close()

	log.Printf("Resume parsed: %s (%d bytes text)", doc.Filename, len(doc.FullText))

	var resumeID int64
	if a.db != nil {
		var err error
		resumeID, err = a.db.SaveResumeFile(r.Context(), doc.Filename, doc.FileType, doc.FullText, doc.FileSize)
		if err != nil {
			log.Printf("Failed to save resume: %v", err)
			http.Error(w, "failed to save resume", http.StatusInternalServerError)
			return
		}
		log.Printf("Resume saved to database with ID: %d", resumeID)
	}

	// Image labeling runs off a fresh handle on the buffered upload;
	// failures are logged, never fatal to the request.
	var labels []vision.Label
	if a.visionClient.Configured() {
		if imageFile, _, err := r.FormFile("file"); err == nil {
			labels, err = a.visionClient.LabelDocument(doc.Filename, imageFile)
			imageFile.Close()
			if err != nil {
				log.Printf("Vision labeling failed: %v", err)
				labels = nil
			}
		}
	}

	extraction, enhanced, extractionMethod := a.analyze(r.Context(), resumeID, doc.FullText, time.Now())

	processingTime := time.Since(startTime).Milliseconds()

	response := map[string]interface{}{
		"filename":           doc.Filename,
		"file_type":          doc.FileType,
		"file_size":          doc.FileSize,
		"text_length":        len(doc.FullText),
		"extraction_method":  extractionMethod,
		"images_analyzed":    len(labels),
		"processing_time_ms": processingTime,
	}
	if resumeID != 0 {
		response["resume_id"] = resumeID
	}
	if extraction != nil {
		response["resume_data"] = extraction
	}
	if enhanced != nil {
		response["enhanced_skills"] = enhanced
	}
	if len(labels) > 0 {
		response["image_labels"] = labels
	}

	log.Printf("Sending response for %s (processing time: %dms)", doc.Filename, processingTime)

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)

	if err := json.NewEncoder(w).Encode(response); err != nil {
		log.Printf("ERROR: Failed to encode JSON response: %v", err)
	}
}

// ExtractAsyncHandler queues the uploaded resume for background processing
// @Summary Upload a resume for async analysis
// @Description Upload a resume and get a job id back; poll /resume/jobs/{id} for status
// @Tags resume
// @Accept multipart/form-data
// @Produce json
// @Param file formData file true "Resume file (PDF, DOCX or TXT)"
// @Success 202 {object} map[string]interface{}
// @Failure 400 {object} map[string]string
// @Failure 503 {object} map[string]string
// @Router /resume/extract/async [post]
func (a *API) ExtractAsyncHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	if a.db == nil {
		http.Error(w, "async processing requires database persistence", http.StatusServiceUnavailable)
		return
	}

	doc, file, ok := a.readUpload(w, r)
	if !ok {
		return
	}
	file.Close()

	resumeID, err := a.db.SaveResumeFile(r.Context(), doc.Filename, doc.FileType, doc.FullText, doc.FileSize)
	if err != nil {
		log.Printf("Failed to save resume: %v", err)
		http.Error(w, "failed to save resume", http.StatusInternalServerError)
		return
	}

	job := analysisJob{
		JobID:    uuid.NewString(),
		ResumeID: resumeID,
		FullText: doc.FullText,
		Queued:   time.Now(),
	}
	if err := a.db.SaveAnalysisJob(r.Context(), &storage.AnalysisJob{
		ID:           job.JobID,
		ResumeFileID: resumeID,
		Status:       "pending",
		CreatedAt:    job.Queued,
	}); err != nil {
		log.Printf("Failed to save analysis job: %v", err)
		http.Error(w, "failed to queue analysis", http.StatusInternalServerError)
		return
	}

	select {
	case a.jobQueue <- job:
	default:
		_ = a.db.UpdateAnalysisJob(r.Context(), job.JobID, "failed", "processing queue full")
		http.Error(w, "processing queue full, try again later", http.StatusServiceUnavailable)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusAccepted)
	json.NewEncoder(w).Encode(map[string]interface{}{
		"job_id":    job.JobID,
		"resume_id": resumeID,
		"status":    "pending",
	})
}

// JobStatusHandler reports the status of an async job
// @Summary Get analysis job status
// @Tags resume
// @Produce json
// @Param id path string true "Job ID"
// @Success 200 {object} map[string]interface{}
// @Failure 404 {object} map[string]string
// @Router /resume/jobs/{id} [get]
func (a *API) JobStatusHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	if a.db == nil {
		http.Error(w, "async processing requires database persistence", http.StatusServiceUnavailable)
		return
	}

	jobID := strings.TrimPrefix(r.URL.Path, "/api/resume/jobs/")
	if jobID == "" || strings.Contains(jobID, "/") {
		http.Error(w, "invalid job id", http.StatusBadRequest)
		return
	}

	job, err := a.db.GetAnalysisJob(r.Context(), jobID)
	if err != nil {
		http.Error(w, "job not found", http.StatusNotFound)
		return
	}

	response := map[string]interface{}{
		"job_id":     job.ID,
		"resume_id":  job.ResumeFileID,
		"status":     job.Status,
		"created_at": job.CreatedAt,
	}
	if info, err := a.db.GetResumeFile(r.Context(), job.ResumeFileID); err == nil {
		response["filename"] = info.Filename
	}
	if job.ErrorMessage != "" {
		response["error"] = job.ErrorMessage
	}
	if job.CompletedAt != nil {
		response["completed_at"] = job.CompletedAt
	}
	if job.Status == "completed" {
		if analysis, rows, err := a.db.GetSkillAnalysis(r.Context(), job.ResumeFileID); err == nil {
			response["analysis_id"] = analysis.ID
			response["total_skills"] = analysis.TotalSkills
			response["skills"] = rows
		}
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(response)
}

// readUpload validates and parses the multipart upload. On failure it
// writes the error response and returns ok = false.
func (a *API) readUpload(w http.ResponseWriter, r *http.Request) (*resume.Document, multipart.File, bool) {
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		http.Error(w, "file too large or invalid (max 10MB)", http.StatusBadRequest)
		return nil, nil, false
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		http.Error(w, "no file uploaded", http.StatusBadRequest)
		return nil, nil, false
	}

	ext := filepath.Ext(header.Filename)
	switch strings.ToLower(ext) {
	case ".pdf", ".docx", ".doc", ".txt":
	default:
		file.Close()
		http.Error(w, "invalid file type (supported: PDF, DOCX, TXT)", http.StatusBadRequest)
		return nil, nil, false
	}

	doc, err := a.parser.ParseFile(header.Filename, file)
	if err != nil {
		file.Close()
		http.Error(w, fmt.Sprintf("failed to parse resume: %v", err), http.StatusInternalServerError)
		return nil, nil, false
	}

	return doc, file, true
}

// analyze runs LLM extraction plus skills aggregation and persists
// the result when a database is attached. LLM failures degrade to an
// empty extraction rather than failing the whole request.
func (a *API) analyze(ctx context.Context, resumeID int64, fullText string, now time.Time) (*llm.ResumeExtraction, *skills.EnhancedSkillsResult, string) {
	if !a.llmService.Configured() {
		return nil, nil, "none"
	}

	extraction, err := a.llmService.ExtractResume(fullText)
	if err != nil {
		log.Printf("LLM extraction failed: %v", err)
		return nil, nil, "failed"
	}

	log.Printf("LLM extracted: %d experience entries, %d skill groups",
		len(extraction.Experience), len(extraction.Skills))

	agg := a.newAggregator(now)
	enhanced := agg.Enhance(experienceEntries(extraction))

	if a.db != nil && resumeID != 0 {
		analysis := &storage.SkillAnalysis{
			ID:           uuid.NewString(),
			ResumeFileID: resumeID,
			TotalSkills:  enhanced.TotalSkills,
			AnalyzedAt:   now,
		}
		rows := make([]storage.SkillExperienceRow, 0, len(enhanced.SkillsWithExperience))
		for _, s := range enhanced.SkillsWithExperience {
			rows = append(rows, storage.SkillExperienceRow{
				AnalysisID:  analysis.ID,
				Skill:       s.Skill,
				TotalMonths: s.TotalMonths,
				Contexts:    s.Contexts,
				Companies:   s.Companies,
			})
		}
		if err := a.db.SaveSkillAnalysis(ctx, analysis, rows); err != nil {
			log.Printf("Failed to persist skill analysis: %v", err)
		}
	}

	return extraction, &enhanced, "llm"
}
