// Package skills computes per-skill experience totals from resume
// experience entries. Overlapping employment periods are merged into
// disjoint intervals before summing, so a skill used at two
// concurrent jobs is credited for elapsed calendar time instead of
// summed job-time.
package skills

import (
	"sort"
	"strings"
	"time"
)

// ExperienceEntry is one job/education entry as delivered by the
// upstream extraction. Duration is the raw free-form string.
type ExperienceEntry struct {
	Title    string   `json:"title"`
	Company  string   `json:"company"`
	Duration string   `json:"duration"`
	Context  string   `json:"context,omitempty"`
	Skills   []string `json:"skills"`
}

// SkillPeriodRecord pairs one skill mention with the resolved period
// of the entry it came from. Records are ephemeral: produced per
// entry x skill pair and consumed immediately by aggregation.
type SkillPeriodRecord struct {
	Skill   string
	Period  Period
	Company string
	Context string
}

// AggregatedSkill is the per-skill result of the disjoint-interval
// merge. Contexts and Companies keep first-encounter order.
type AggregatedSkill struct {
	Skill       string   `json:"skill"`
	TotalMonths int      `json:"total_months"`
	Contexts    []string `json:"contexts"`
	Companies   []string `json:"companies"`
	Support     int      `json:"-"` // entries contributing
}

// EnhancedSkillsResult is the final enriched structure handed back to
// the orchestration layer.
type EnhancedSkillsResult struct {
	SkillsWithExperience []AggregatedSkill `json:"skills_with_experience"`
	TotalSkills          int               `json:"total_skills"`
	AnalysisTimestamp    string            `json:"analysis_timestamp"`
}

const (
	// DefaultMinimumMonths drops skills whose aggregated total is
	// below this many months of use.
	DefaultMinimumMonths = 0.8

	// DefaultAdjacencyMonths treats a period starting within this
	// many months of another's end as continuous, so a role ending
	// the month before the next begins produces no gap.
	DefaultAdjacencyMonths = 1
)

// Aggregator holds the aggregation policy for one processing run. It
// keeps no state between runs and is safe to use from concurrent
// requests as long as each call gets its own input.
type Aggregator struct {
	MinimumMonths   float64
	AdjacencyMonths int
	Now             time.Time
}

// NewAggregator returns an Aggregator with the default policy,
// resolving open-ended periods against now.
func NewAggregator(now time.Time) *Aggregator {
	return &Aggregator{
		MinimumMonths:   DefaultMinimumMonths,
		AdjacencyMonths: DefaultAdjacencyMonths,
		Now:             now,
	}
}

// ExtractRecords walks the experience entries and produces one record
// per (skill, entry) pair. Entries whose duration cannot be parsed
// contribute nothing; skills repeated within a single entry count
// once; context falls back to the entry title.
func ExtractRecords(entries []ExperienceEntry, now time.Time) []SkillPeriodRecord {
	var records []SkillPeriodRecord
	for _, entry := range entries {
		period, ok := ParsePeriod(entry.Duration, now)
		if !ok {
			continue
		}
		context := strings.TrimSpace(entry.Context)
		if context == "" {
			context = strings.TrimSpace(entry.Title)
		}
		seen := make(map[string]bool, len(entry.Skills))
		for _, skill := range entry.Skills {
			name := strings.TrimSpace(skill)
			if name == "" {
				continue
			}
			key := strings.ToLower(name)
			if seen[key] {
				continue
			}
			seen[key] = true
			records = append(records, SkillPeriodRecord{
				Skill:   name,
				Period:  period,
				Company: strings.TrimSpace(entry.Company),
				Context: context,
			})
		}
	}
	return records
}

type skillGroup struct {
	display   string
	firstSeen int
	records   []SkillPeriodRecord
}

// Enhance runs the full pipeline: extract records, merge overlapping
// periods per skill, apply the significance threshold, and wrap the
// result with a fresh timestamp. Shuffling the input entries does not
// change any skill's total.
func (a *Aggregator) Enhance(entries []ExperienceEntry) EnhancedSkillsResult {
	records := ExtractRecords(entries, a.Now)
	return a.Aggregate(records)
}

// Aggregate groups records by normalized skill name and merges each
// group's periods into disjoint intervals.
func (a *Aggregator) Aggregate(records []SkillPeriodRecord) EnhancedSkillsResult {
	groups := make(map[string]*skillGroup)
	var order []string
	for _, rec := range records {
		key := strings.ToLower(rec.Skill)
		group, found := groups[key]
		if !found {
			group = &skillGroup{display: rec.Skill, firstSeen: len(order)}
			groups[key] = group
			order = append(order, key)
		}
		group.records = append(group.records, rec)
	}

	skills := make([]AggregatedSkill, 0, len(order))
	for _, key := range order {
		group := groups[key]
		agg := a.aggregateGroup(group)
		if float64(agg.TotalMonths) < a.MinimumMonths {
			continue
		}
		skills = append(skills, agg)
	}

	// Descending by total, first-seen order among equal totals.
	sort.SliceStable(skills, func(i, j int) bool {
		return skills[i].TotalMonths > skills[j].TotalMonths
	})

	return EnhancedSkillsResult{
		SkillsWithExperience: skills,
		TotalSkills:          len(skills),
		AnalysisTimestamp:    a.Now.Format(time.RFC3339),
	}
}

// aggregateGroup performs the disjoint-interval sweep for one skill:
// sort periods by start, merge any period starting within
// AdjacencyMonths of the running interval's end, and sum the
// inclusive lengths of the resulting intervals.
func (a *Aggregator) aggregateGroup(group *skillGroup) AggregatedSkill {
	recs := make([]SkillPeriodRecord, len(group.records))
	copy(recs, group.records)
	sort.SliceStable(recs, func(i, j int) bool {
		pi, pj := recs[i].Period, recs[j].Period
		if pi.Start.Index() != pj.Start.Index() {
			return pi.Start.Index() < pj.Start.Index()
		}
		return pi.End.Index() < pj.End.Index()
	})

	total := 0
	var curStart, curEnd int
	open := false
	for _, rec := range recs {
		start, end := rec.Period.Start.Index(), rec.Period.End.Index()
		if !open {
			curStart, curEnd = start, end
			open = true
			continue
		}
		if start <= curEnd+a.AdjacencyMonths {
			if end > curEnd {
				curEnd = end
			}
			continue
		}
		total += curEnd - curStart + 1
		curStart, curEnd = start, end
	}
	if open {
		total += curEnd - curStart + 1
	}

	contexts := appendDistinct(recs, func(r SkillPeriodRecord) string { return r.Context })
	companies := appendDistinct(recs, func(r SkillPeriodRecord) string { return r.Company })

	return AggregatedSkill{
		Skill:       group.display,
		TotalMonths: total,
		Contexts:    contexts,
		Companies:   companies,
		Support:     len(recs),
	}
}

func appendDistinct(recs []SkillPeriodRecord, field func(SkillPeriodRecord) string) []string {
	out := []string{}
	seen := make(map[string]bool)
	for _, rec := range recs {
		v := field(rec)
		if v == "" || seen[strings.ToLower(v)] {
			continue
		}
		seen[strings.ToLower(v)] = true
		out = append(out, v)
	}
	return out
}
