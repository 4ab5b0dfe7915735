package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLoadConfig_Defaults(t *testing.T) {
	t.Setenv("PORT", "")
	t.Setenv("LLM_PROVIDER", "")
	t.Setenv("SKILLS_MIN_MONTHS", "")
	t.Setenv("SKILLS_ADJACENCY_MONTHS", "")

	cfg := LoadConfig()
	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, "groq", cfg.LLMProvider)
	assert.Equal(t, 0.8, cfg.SkillsMinimumMonths)
	assert.Equal(t, 1, cfg.SkillsAdjacencyMonths)
	assert.Equal(t, "./uploads", cfg.UploadsDir)
}

func TestLoadConfig_PolicyOverrides(t *testing.T) {
	t.Setenv("SKILLS_MIN_MONTHS", "3.5")
	t.Setenv("SKILLS_ADJACENCY_MONTHS", "0")
	t.Setenv("LLM_PROVIDER", "openai")
	t.Setenv("OPENAI_API_KEY", "sk-test")
	t.Setenv("LLM_MODEL", "gpt-4o")

	cfg := LoadConfig()
	assert.Equal(t, 3.5, cfg.SkillsMinimumMonths)
	assert.Equal(t, 0, cfg.SkillsAdjacencyMonths)
	assert.Equal(t, "openai", cfg.LLMProvider)
	assert.Equal(t, "sk-test", cfg.LLMAPIKey)
	assert.Equal(t, "gpt-4o", cfg.LLMModel)
}

func TestLoadConfig_InvalidPolicyFallsBack(t *testing.T) {
	t.Setenv("SKILLS_MIN_MONTHS", "lots")
	t.Setenv("SKILLS_ADJACENCY_MONTHS", "-2")

	cfg := LoadConfig()
	assert.Equal(t, 0.8, cfg.SkillsMinimumMonths)
	assert.Equal(t, 1, cfg.SkillsAdjacencyMonths)
}
