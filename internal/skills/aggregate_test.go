package skills

import (
	"math/rand"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractRecords_DeduplicatesWithinEntry(t *testing.T) {
	entries := []ExperienceEntry{
		{
			Title:    "Backend Engineer",
			Company:  "Acme",
			Duration: "Jan 2020 - Dec 2020",
			Skills:   []string{"Go", "go", " Go ", "Postgres"},
		},
	}
	records := ExtractRecords(entries, fixedNow)
	require.Len(t, records, 2)
	assert.Equal(t, "Go", records[0].Skill)
	assert.Equal(t, "Postgres", records[1].Skill)
}

func TestExtractRecords_ContextDefaultsToTitle(t *testing.T) {
	entries := []ExperienceEntry{
		{Title: "Data Analyst", Company: "Initech", Duration: "2019 - 2020", Skills: []string{"SQL"}},
		{Title: "Engineer", Context: "Payments platform", Company: "Acme", Duration: "2020 - 2021", Skills: []string{"SQL"}},
	}
	records := ExtractRecords(entries, fixedNow)
	require.Len(t, records, 2)
	assert.Equal(t, "Data Analyst", records[0].Context)
	assert.Equal(t, "Payments platform", records[1].Context)
}

// One bad duration string must never prevent other entries from
// being aggregated.
func TestExtractRecords_UnparseableEntrySkipped(t *testing.T) {
	entries := []ExperienceEntry{
		{Title: "Intern", Company: "Hooli", Duration: "a few months", Skills: []string{"Python", "Excel"}},
		{Title: "Engineer", Company: "Acme", Duration: "Jan 2020 - Dec 2020", Skills: []string{"Python"}},
	}
	records := ExtractRecords(entries, fixedNow)
	require.Len(t, records, 1)
	assert.Equal(t, "Acme", records[0].Company)
}

func TestAggregate_FullyOverlappingPeriods(t *testing.T) {
	agg := NewAggregator(fixedNow)
	result := agg.Enhance([]ExperienceEntry{
		{Title: "Engineer", Company: "Acme", Duration: "Jan 2020 - Dec 2020", Skills: []string{"Python"}},
		{Title: "Consultant", Company: "Globex", Duration: "Mar 2020 - Jun 2020", Skills: []string{"Python"}},
	})
	require.Len(t, result.SkillsWithExperience, 1)
	// Elapsed calendar time, not summed job-time: 12, never 12+4.
	assert.Equal(t, 12, result.SkillsWithExperience[0].TotalMonths)
}

func TestAggregate_AdjacentPeriodsMerge(t *testing.T) {
	agg := NewAggregator(fixedNow)
	result := agg.Enhance([]ExperienceEntry{
		{Title: "Engineer", Company: "Acme", Duration: "Jan 2020 - Jun 2020", Skills: []string{"Go"}},
		{Title: "Engineer", Company: "Globex", Duration: "Jul 2020 - Dec 2020", Skills: []string{"Go"}},
	})
	require.Len(t, result.SkillsWithExperience, 1)
	assert.Equal(t, 12, result.SkillsWithExperience[0].TotalMonths)
}

func TestAggregate_GapSplitsIntervals(t *testing.T) {
	agg := NewAggregator(fixedNow)
	result := agg.Enhance([]ExperienceEntry{
		{Title: "Engineer", Company: "Acme", Duration: "Jan 2020 - Mar 2020", Skills: []string{"Go"}},
		{Title: "Engineer", Company: "Globex", Duration: "Jun 2020 - Aug 2020", Skills: []string{"Go"}},
	})
	require.Len(t, result.SkillsWithExperience, 1)
	assert.Equal(t, 6, result.SkillsWithExperience[0].TotalMonths)
}

func TestAggregate_AdjacencyConfigurable(t *testing.T) {
	// One-month gap (April) between the two roles.
	entries := []ExperienceEntry{
		{Title: "Engineer", Company: "Acme", Duration: "Jan 2020 - Mar 2020", Skills: []string{"Go"}},
		{Title: "Engineer", Company: "Globex", Duration: "May 2020 - Aug 2020", Skills: []string{"Go"}},
	}

	agg := NewAggregator(fixedNow)
	result := agg.Enhance(entries)
	require.Len(t, result.SkillsWithExperience, 1)
	assert.Equal(t, 7, result.SkillsWithExperience[0].TotalMonths)

	relaxed := NewAggregator(fixedNow)
	relaxed.AdjacencyMonths = 2
	result = relaxed.Enhance(entries)
	require.Len(t, result.SkillsWithExperience, 1)
	// April bridged: Jan through Aug counts as one interval.
	assert.Equal(t, 8, result.SkillsWithExperience[0].TotalMonths)
}

func TestAggregate_OverlappingWithOpenEnd(t *testing.T) {
	agg := NewAggregator(fixedNow) // Jan 2024 reference
	result := agg.Enhance([]ExperienceEntry{
		{Title: "Engineer", Company: "Acme", Duration: "Jan 2018 - Dec 2019", Skills: []string{"Python"}},
		{Title: "Engineer", Company: "Globex", Duration: "Jun 2019 - Present", Skills: []string{"Python"}},
	})
	require.Len(t, result.SkillsWithExperience, 1)
	python := result.SkillsWithExperience[0]
	// Merged interval Jan 2018 - Jan 2024.
	assert.Equal(t, 73, python.TotalMonths)
	assert.Equal(t, []string{"Acme", "Globex"}, python.Companies)
}

func TestAggregate_OrderIndependent(t *testing.T) {
	entries := []ExperienceEntry{
		{Title: "A", Company: "C1", Duration: "Jan 2018 - Dec 2019", Skills: []string{"Python", "Go"}},
		{Title: "B", Company: "C2", Duration: "Jun 2019 - Present", Skills: []string{"Python"}},
		{Title: "C", Company: "C3", Duration: "2015 - 2016", Skills: []string{"Go"}},
		{Title: "D", Company: "C4", Duration: "Mar 2020 - Jun 2020", Skills: []string{"SQL", "Python"}},
	}

	agg := NewAggregator(fixedNow)
	baseline := map[string]int{}
	for _, s := range agg.Enhance(entries).SkillsWithExperience {
		baseline[s.Skill] = s.TotalMonths
	}

	rng := rand.New(rand.NewSource(42))
	for i := 0; i < 10; i++ {
		shuffled := make([]ExperienceEntry, len(entries))
		copy(shuffled, entries)
		rng.Shuffle(len(shuffled), func(a, b int) { shuffled[a], shuffled[b] = shuffled[b], shuffled[a] })

		for _, s := range agg.Enhance(shuffled).SkillsWithExperience {
			assert.Equal(t, baseline[s.Skill], s.TotalMonths, s.Skill)
		}
	}
}

func TestAggregate_ResultOrdering(t *testing.T) {
	agg := NewAggregator(fixedNow)
	result := agg.Enhance([]ExperienceEntry{
		{Title: "A", Company: "C1", Duration: "Jan 2016 - Dec 2019", Skills: []string{"Java"}},   // 48
		{Title: "B", Company: "C2", Duration: "Jan 2020 - Dec 2020", Skills: []string{"SQL"}},   // 12
		{Title: "C", Company: "C3", Duration: "Jan 2016 - Dec 2019", Skills: []string{"Python"}}, // 48
	})
	require.Len(t, result.SkillsWithExperience, 3)
	// Strictly descending by total, first-seen order among equals.
	assert.Equal(t, "Java", result.SkillsWithExperience[0].Skill)
	assert.Equal(t, "Python", result.SkillsWithExperience[1].Skill)
	assert.Equal(t, "SQL", result.SkillsWithExperience[2].Skill)
}

func TestAggregate_CaseFoldedGroupingKeepsDisplayCasing(t *testing.T) {
	agg := NewAggregator(fixedNow)
	result := agg.Enhance([]ExperienceEntry{
		{Title: "A", Company: "C1", Duration: "Jan 2020 - Jun 2020", Skills: []string{"PostgreSQL"}},
		{Title: "B", Company: "C2", Duration: "Jul 2020 - Dec 2020", Skills: []string{"postgresql"}},
	})
	require.Len(t, result.SkillsWithExperience, 1)
	assert.Equal(t, "PostgreSQL", result.SkillsWithExperience[0].Skill)
	assert.Equal(t, 12, result.SkillsWithExperience[0].TotalMonths)
	assert.Equal(t, 2, result.SkillsWithExperience[0].Support)
}

// A skill mentioned only in an entry whose duration cannot be
// expressed at month granularity (a two-week internship) never
// reaches the result.
func TestAggregate_SubMonthInternshipExcluded(t *testing.T) {
	agg := NewAggregator(fixedNow)
	result := agg.Enhance([]ExperienceEntry{
		{Title: "Intern", Company: "Hooli", Duration: "2 weeks", Skills: []string{"Fortran"}},
		{Title: "Engineer", Company: "Acme", Duration: "Jan 2020 - Dec 2020", Skills: []string{"Go"}},
	})
	require.Len(t, result.SkillsWithExperience, 1)
	assert.Equal(t, "Go", result.SkillsWithExperience[0].Skill)
	assert.Equal(t, 1, result.TotalSkills)
}

func TestAggregate_ThresholdFilter(t *testing.T) {
	agg := NewAggregator(fixedNow)
	agg.MinimumMonths = 6
	result := agg.Enhance([]ExperienceEntry{
		{Title: "A", Company: "C1", Duration: "Jan 2020 - Dec 2020", Skills: []string{"Go"}},
		{Title: "B", Company: "C2", Duration: "Jan 2020 - Mar 2020", Skills: []string{"Perl"}},
	})
	require.Len(t, result.SkillsWithExperience, 1)
	assert.Equal(t, "Go", result.SkillsWithExperience[0].Skill)
}

func TestAggregate_ContextsAndCompaniesDistinctFirstEncounter(t *testing.T) {
	agg := NewAggregator(fixedNow)
	result := agg.Enhance([]ExperienceEntry{
		{Title: "Engineer", Company: "Acme", Duration: "Jan 2018 - Dec 2018", Skills: []string{"Go"}},
		{Title: "Engineer", Company: "Acme", Duration: "Jan 2019 - Dec 2019", Skills: []string{"Go"}},
		{Title: "Lead Engineer", Company: "Globex", Duration: "Jan 2020 - Dec 2020", Skills: []string{"Go"}},
	})
	require.Len(t, result.SkillsWithExperience, 1)
	skill := result.SkillsWithExperience[0]
	assert.Equal(t, []string{"Engineer", "Lead Engineer"}, skill.Contexts)
	assert.Equal(t, []string{"Acme", "Globex"}, skill.Companies)
	assert.Equal(t, 3, skill.Support)
}

func TestAggregate_TimestampUsesInjectedReference(t *testing.T) {
	agg := NewAggregator(fixedNow)
	result := agg.Enhance(nil)
	ts, err := time.Parse(time.RFC3339, result.AnalysisTimestamp)
	require.NoError(t, err)
	assert.True(t, ts.Equal(fixedNow))
	assert.Equal(t, 0, result.TotalSkills)
	assert.NotNil(t, result.SkillsWithExperience)
}
