package match

import (
	"fmt"
	"sort"
	"strings"
)

// WeightConfig holds the group weights of the composite score. Weights are
// serializable configuration, never hard-coded constants, so different jobs
// or experiments can score with different emphasis.
type WeightConfig struct {
	SkillsExperience      float64 `json:"skills_experience"`
	EducationAchievements float64 `json:"education_achievements"`
	QualityRisk           float64 `json:"quality_risk"`
}

// DefaultWeights returns the standard 40/30/30 group weighting.
func DefaultWeights() WeightConfig {
	return WeightConfig{
		SkillsExperience:      0.40,
		EducationAchievements: 0.30,
		QualityRisk:           0.30,
	}
}

// Valid reports whether all weights are non-negative and at least one is set.
func (w WeightConfig) Valid() bool {
	if w.SkillsExperience < 0 || w.EducationAchievements < 0 || w.QualityRisk < 0 {
		return false
	}
	return w.SkillsExperience+w.EducationAchievements+w.QualityRisk > 0
}

// CompositeScore combines the eight metrics into one 0-100 score.
//
// Metrics are grouped two-level: skills+experience, education+achievements,
// and quality/risk (density, gaps, readability, confidence). Each group is
// normalized to 0-100 before the group weights apply, and the result is
// clamped to [0,100].
func CompositeScore(ms MetricSet, weights WeightConfig) float64 {
	skillsExperience := ms.SkillsMatch*0.5 + ms.ExperienceRelevance/10*100*0.5

	educationAchievements := ms.EducationFit/10*100*0.5 + ms.AchievementImpact/10*100*0.5

	qualityRisk := ms.KeywordDensity*0.3 +
		ms.EmploymentGap/10*100*0.2 +
		ms.Readability/10*100*0.2 +
		ms.AIConfidence*0.3

	composite := skillsExperience*weights.SkillsExperience +
		educationAchievements*weights.EducationAchievements +
		qualityRisk*weights.QualityRisk

	return clamp(composite, 0, 100)
}

// metric contribution to the weighted sum, used to pick the rationale's
// most influential metrics.
type contribution struct {
	name       string
	normalized float64 // metric on a 0-100 scale
	weighted   float64 // contribution to the composite
}

const lowScoreThreshold = 30.0 // on the normalized 0-100 scale

// Rationale renders a one-paragraph deterministic explanation of a result
// from the metric set and constraint report alone. No model call is
// involved, so re-running with identical inputs reproduces the same text.
func Rationale(ms MetricSet, report ConstraintReport, weights WeightConfig) string {
	var parts []string

	// Skills and experience always lead: they are what a recruiter reads first.
	required := len(report.MatchedSkills) + len(report.MissingSkills)
	switch {
	case required == 0:
		parts = append(parts, "No required skills were specified.")
	case len(report.MissingSkills) == 0:
		parts = append(parts, fmt.Sprintf("Matches all required skills (%d/%d).", required, required))
	default:
		parts = append(parts, fmt.Sprintf("Matches %d/%d required skills (missing: %s).",
			len(report.MatchedSkills), required, strings.Join(capList(report.MissingSkills, 3), ", ")))
	}

	if report.RequiredYears > 0 {
		parts = append(parts, fmt.Sprintf("%s years experience (requires %d+).",
			trimFloat(report.CandidateYears), report.RequiredYears))
	} else if report.CandidateYears > 0 {
		parts = append(parts, fmt.Sprintf("%s years experience.", trimFloat(report.CandidateYears)))
	}

	contributions := []contribution{
		{"education fit", ms.EducationFit / 10 * 100, ms.EducationFit / 10 * 100 * 0.5 * weights.EducationAchievements},
		{"achievement record", ms.AchievementImpact / 10 * 100, ms.AchievementImpact / 10 * 100 * 0.5 * weights.EducationAchievements},
		{"keyword alignment", ms.KeywordDensity, ms.KeywordDensity * 0.3 * weights.QualityRisk},
		{"employment continuity", ms.EmploymentGap / 10 * 100, ms.EmploymentGap / 10 * 100 * 0.2 * weights.QualityRisk},
		{"CV readability", ms.Readability / 10 * 100, ms.Readability / 10 * 100 * 0.2 * weights.QualityRisk},
		{"extraction confidence", ms.AIConfidence, ms.AIConfidence * 0.3 * weights.QualityRisk},
	}
	sort.SliceStable(contributions, func(i, j int) bool {
		return contributions[i].weighted > contributions[j].weighted
	})

	var strengths, weaknesses []string
	for i, c := range contributions {
		if i < 2 && c.normalized >= 70 {
			strengths = append(strengths, c.name)
		}
		if c.normalized < lowScoreThreshold {
			weaknesses = append(weaknesses, c.name)
		}
	}
	if len(strengths) > 0 {
		parts = append(parts, fmt.Sprintf("Strong %s.", strings.Join(strengths, " and ")))
	}
	if len(weaknesses) > 0 {
		parts = append(parts, fmt.Sprintf("Weak %s.", strings.Join(capList(weaknesses, 3), ", ")))
	}

	if report.SeniorityMatch != "" && report.SeniorityMatch != "unknown" {
		parts = append(parts, fmt.Sprintf("Seniority: %s.", report.SeniorityMatch))
	}

	return strings.Join(parts, " ")
}

func capList(items []string, n int) []string {
	if len(items) <= n {
		return items
	}
	return items[:n]
}

func trimFloat(v float64) string {
	s := fmt.Sprintf("%.1f", v)
	return strings.TrimSuffix(s, ".0")
}
