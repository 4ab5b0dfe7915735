package llm

import (
	"bytes"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"time"
)

type Provider string

const (
	ProviderOpenAI Provider = "openai"
	ProviderOllama Provider = "ollama"
	ProviderGroq   Provider = "groq"
	ProviderNone   Provider = "none"
)

const (
	defaultOpenAIURL = "https://api.openai.com/v1/chat/completions"
	defaultGroqURL   = "https://api.groq.com/openai/v1/chat/completions"
	defaultOllamaURL = "http://localhost:11434/api/generate"
)

type Service struct {
	provider Provider
	apiKey   string
	model    string
	timeout  time.Duration

	// Endpoint overrides, primarily for tests pointing at fakes.
	openAIURL string
	groqURL   string
	ollamaURL string
}

// ResumeExtraction is the structured resume produced by the model.
type ResumeExtraction struct {
	PersonalInfo   PersonalInfo `json:"personal_info"`
	Summary        string       `json:"summary"`
	Experience     []Experience `json:"experience"`
	Education      []Education  `json:"education"`
	Skills         []SkillGroup `json:"skills"`
	Certifications []string     `json:"certifications"`
	Languages      []string     `json:"languages"`
	Projects       []Project    `json:"projects"`
}

type PersonalInfo struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Phone    string `json:"phone"`
	Location string `json:"location"`
	LinkedIn string `json:"linkedin,omitempty"`
}

type Experience struct {
	Title       string   `json:"title"`
	Company     string   `json:"company"`
	Duration    string   `json:"duration"`
	Description string   `json:"description,omitempty"`
	Skills      []string `json:"skills"`
}

type Education struct {
	Degree      string `json:"degree"`
	Institution string `json:"institution"`
	Year        string `json:"year,omitempty"`
}

type SkillGroup struct {
	Category string   `json:"category"`
	Skills   []string `json:"skills"`
}

type Project struct {
	Name         string   `json:"name"`
	Description  string   `json:"description,omitempty"`
	Technologies []string `json:"technologies,omitempty"`
	URL          string   `json:"url,omitempty"`
}

func NewService(provider, apiKey, model string) *Service {
	return &Service{
		provider:  Provider(provider),
		apiKey:    apiKey,
		model:     model,
		timeout:   600 * time.Second, // slower models need headroom on long resumes
		openAIURL: defaultOpenAIURL,
		groqURL:   defaultGroqURL,
		ollamaURL: defaultOllamaURL,
	}
}

// SetEndpoints overrides the provider base URLs. Empty strings keep
// the defaults.
func (s *Service) SetEndpoints(openAIURL, groqURL, ollamaURL string) {
	if openAIURL != "" {
		s.openAIURL = openAIURL
	}
	if groqURL != "" {
		s.groqURL = groqURL
	}
	if ollamaURL != "" {
		s.ollamaURL = ollamaURL
	}
}

func (s *Service) Configured() bool {
	return s != nil && s.provider != ProviderNone && s.provider != ""
}

// ExtractResume asks the model for the structured resume fields.
func (s *Service) ExtractResume(resumeText string) (*ResumeExtraction, error) {
	if !s.Configured() {
		return nil, fmt.Errorf("LLM provider not configured")
	}

	prompt := s.buildPrompt(resumeText)

	var response string
	var err error

	switch s.provider {
	case ProviderOpenAI:
		response, err = s.callChatCompletions(s.openAIURL, "OpenAI", prompt)
	case ProviderGroq:
		response, err = s.callChatCompletions(s.groqURL, "Groq", prompt)
	case ProviderOllama:
		response, err = s.callOllama(prompt)
	default:
		return nil, fmt.Errorf("unknown provider: %s", s.provider)
	}

	if err != nil {
		return nil, err
	}

	var extraction ResumeExtraction
	if err := json.Unmarshal([]byte(response), &extraction); err != nil {
		return nil, fmt.Errorf("failed to parse LLM response: %w", err)
	}

	return &extraction, nil
}

func (s *Service) buildPrompt(resumeText string) string {
	return fmt.Sprintf(`You are an expert resume parser. Extract structured information from this resume.

Resume Text:
"""
%s
"""

Extract and return ONLY valid JSON (no markdown, no explanation) with this exact structure:
{
  "personal_info": {
    "name": "Full name",
    "email": "Email address",
    "phone": "Phone number",
    "location": "City, Country",
    "linkedin": "LinkedIn URL if available"
  },
  "summary": "Professional summary or objective",
  "experience": [
    {
      "title": "Job title",
      "company": "Company name",
      "duration": "Duration exactly as written (e.g. 'Jan 2020 - Present')",
      "description": "Responsibilities and achievements",
      "skills": ["Skills and technologies used in this role"]
    }
  ],
  "education": [
    {"degree": "Degree name", "institution": "Institution name", "year": "Graduation year"}
  ],
  "skills": [
    {"category": "Programming Languages|Frameworks|Databases|Cloud Platforms|Tools|Methodologies|Languages", "skills": ["Skill names"]}
  ],
  "certifications": ["Certification names"],
  "languages": ["Spoken language names"],
  "projects": [
    {"name": "Project name", "description": "Short description", "technologies": ["Technologies used"], "url": "Project URL if available"}
  ]
}

Important:
- Copy duration strings verbatim, do not reformat or compute dates
- Normalize skill names (e.g. "K8s" -> "Kubernetes", "JS" -> "JavaScript")
- List per-role skills from the role description, including implicit ones (e.g. "built microservices" -> "Microservices")
- Return empty arrays for categories with no data
- If the resume is not in English, translate the extracted values to English`, resumeText)
}

// callChatCompletions covers both OpenAI and Groq, which share the
// chat-completions wire format.
func (s *Service) callChatCompletions(url, label, prompt string) (string, error) {
	reqBody := map[string]interface{}{
		"model": s.model,
		"messages": []map[string]string{
			{
				"role":    "system",
				"content": "You are a resume parser. Return only valid JSON.",
			},
			{
				"role":    "user",
				"content": prompt,
			},
		},
		"temperature": 0.1,
		"response_format": map[string]string{
			"type": "json_object",
		},
	}

	jsonData, _ := json.Marshal(reqBody)

	req, err := http.NewRequest("POST", url, bytes.NewBuffer(jsonData))
	if err != nil {
		return "", err
	}

	req.Header.Set("Authorization", "Bearer "+s.apiKey)
	req.Header.Set("Content-Type", "application/json")

	client := &http.Client{Timeout: s.timeout}
	resp, err := client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("%s API error: %d", label, resp.StatusCode)
	}

	var result struct {
		Choices []struct {
			Message struct {
				Content string `json:"content"`
			} `json:"message"`
		} `json:"choices"`
		Error struct {
			Message string `json:"message"`
		} `json:"error"`
	}

	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return "", err
	}

	if result.Error.Message != "" {
		return "", fmt.Errorf("%s error: %s", label, result.Error.Message)
	}

	if len(result.Choices) == 0 {
		return "", fmt.Errorf("no response from %s", label)
	}

	return result.Choices[0].Message.Content, nil
}

func (s *Service) callOllama(prompt string) (string, error) {
	reqBody := map[string]interface{}{
		"model":  s.model,
		"prompt": prompt,
		"stream": false,
		"format": "json",
	}

	jsonData, _ := json.Marshal(reqBody)

	req, err := http.NewRequest("POST", s.ollamaURL, bytes.NewBuffer(jsonData))
	if err != nil {
		return "", err
	}

	req.Header.Set("Content-Type", "application/json")

	startTime := time.Now()

	client := &http.Client{Timeout: s.timeout}
	resp, err := client.Do(req)
	if err != nil {
		return "", fmt.Errorf("Ollama connection failed (is Ollama running?): %w", err)
	}
	defer resp.Body.Close()

	log.Printf("Ollama request took %v", time.Since(startTime))

	var result struct {
		Response string `json:"response"`
		Error    string `json:"error"`
	}

	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return "", err
	}

	if result.Error != "" {
		return "", fmt.Errorf("Ollama error: %s", result.Error)
	}

	return result.Response, nil
}
