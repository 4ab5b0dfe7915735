package api

import (
	"encoding/json"
	"log"
	"net/http"
	"time"

	"resume-parser/internal/config"
	"resume-parser/internal/llm"
	"resume-parser/internal/resume"
	"resume-parser/internal/skills"
	"resume-parser/internal/storage"
	"resume-parser/internal/vision"
)

type API struct {
	db           *storage.DB
	parser       *resume.Parser
	llmService   *llm.Service
	visionClient *vision.Client

	minimumMonths   float64
	adjacencyMonths int

	jobQueue chan analysisJob // background queue for async resume processing
}

func NewAPI(db *storage.DB, cfg *config.Config) *API {
	parser := resume.NewParser(cfg.UploadsDir)

	var llmSvc *llm.Service
	if cfg.LLMProvider != "" && cfg.LLMProvider != "none" {
		llmSvc = llm.NewService(cfg.LLMProvider, cfg.LLMAPIKey, cfg.LLMModel)
	}

	var visionClient *vision.Client
	if cfg.VisionURL != "" {
		visionClient = vision.NewClient(cfg.VisionURL, 60*time.Second)
	}

	api := &API{
		db:              db,
		parser:          parser,
		llmService:      llmSvc,
		visionClient:    visionClient,
		minimumMonths:   cfg.SkillsMinimumMonths,
		adjacencyMonths: cfg.SkillsAdjacencyMonths,
		jobQueue:        make(chan analysisJob, 50), // buffer for 50 pending resumes
	}

	api.StartBackgroundWorkers()

	return api
}

// newAggregator builds a per-request aggregator with the configured
// policy; the engine itself keeps no state between runs.
func (a *API) newAggregator(now time.Time) *skills.Aggregator {
	agg := skills.NewAggregator(now)
	agg.MinimumMonths = a.minimumMonths
	agg.AdjacencyMonths = a.adjacencyMonths
	return agg
}

// experienceEntries converts the LLM extraction into the aggregation
// engine's input shape.
func experienceEntries(extraction *llm.ResumeExtraction) []skills.ExperienceEntry {
	if extraction == nil {
		return nil
	}
	entries := make([]skills.ExperienceEntry, 0, len(extraction.Experience))
	for _, exp := range extraction.Experience {
		entries = append(entries, skills.ExperienceEntry{
			Title:    exp.Title,
			Company:  exp.Company,
			Duration: exp.Duration,
			Skills:   exp.Skills,
		})
	}
	return entries
}

// HealthHandler reports per-collaborator health
// @Summary Service health
// @Description Per-collaborator health: database, LLM, vision labeling, skills engine self-test
// @Tags resume
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Router /resume/health [get]
func (a *API) HealthHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	services := map[string]interface{}{
		"llm_service":    a.llmService.Configured(),
		"vision_service": a.visionClient.Configured(),
		"skills_engine":  a.skillsEngineSelfTest(),
	}

	dbHealthy := false
	if a.db != nil {
		if err := a.db.Ping(r.Context()); err != nil {
			log.Printf("Health check: database ping failed: %v", err)
		} else {
			dbHealthy = true
		}
	}
	services["database"] = dbHealthy

	w.Header().Set("Content-Type", "application/json")
	status := "healthy"
	if !services["skills_engine"].(bool) {
		status = "unhealthy"
		w.WriteHeader(http.StatusInternalServerError)
	}

	json.NewEncoder(w).Encode(map[string]interface{}{
		"status":   status,
		"services": services,
	})
}

// skillsEngineSelfTest runs the aggregation engine on a known fixture
// and checks the merged total.
func (a *API) skillsEngineSelfTest() bool {
	now := time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC)
	agg := skills.NewAggregator(now)
	result := agg.Enhance([]skills.ExperienceEntry{
		{Title: "A", Company: "X", Duration: "Jan 2020 - Dec 2020", Skills: []string{"Go"}},
		{Title: "B", Company: "Y", Duration: "Jun 2020 - Jun 2021", Skills: []string{"Go"}},
	})
	return result.TotalSkills == 1 &&
		result.SkillsWithExperience[0].TotalMonths == 18
}
