package match

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestWeightConfig(t *testing.T) {
	t.Run("Default weights", func(t *testing.T) {
		w := DefaultWeights()
		assert.Equal(t, 0.40, w.SkillsExperience)
		assert.Equal(t, 0.30, w.EducationAchievements)
		assert.Equal(t, 0.30, w.QualityRisk)
		assert.True(t, w.Valid())
	})

	t.Run("Negative weight is invalid", func(t *testing.T) {
		assert.False(t, WeightConfig{SkillsExperience: -0.1, EducationAchievements: 0.6, QualityRisk: 0.5}.Valid())
	})

	t.Run("All zero is invalid", func(t *testing.T) {
		assert.False(t, WeightConfig{}.Valid())
	})
}

func TestCompositeScore(t *testing.T) {
	t.Run("Perfect metrics score 100", func(t *testing.T) {
		ms := MetricSet{
			SkillsMatch:         100,
			ExperienceRelevance: 10,
			EducationFit:        10,
			AchievementImpact:   10,
			KeywordDensity:      100,
			EmploymentGap:       10,
			Readability:         10,
			AIConfidence:        100,
		}
		assert.InDelta(t, 100.0, CompositeScore(ms, DefaultWeights()), 0.001)
	})

	t.Run("Zero metrics score 0", func(t *testing.T) {
		assert.Equal(t, 0.0, CompositeScore(MetricSet{}, DefaultWeights()))
	})

	t.Run("Weighted group combination", func(t *testing.T) {
		ms := MetricSet{
			SkillsMatch:         80,
			ExperienceRelevance: 6,
			EducationFit:        4,
			AchievementImpact:   2,
			KeywordDensity:      50,
			EmploymentGap:       10,
			Readability:         8,
			AIConfidence:        70,
		}
		// groups: (40+30)=70, (20+10)=30, (15+20+16+21)=72
		// 0.4*70 + 0.3*30 + 0.3*72 = 58.6
		assert.InDelta(t, 58.6, CompositeScore(ms, DefaultWeights()), 0.001)
	})

	t.Run("Each metric contributes monotonically", func(t *testing.T) {
		base := MetricSet{
			SkillsMatch:         50,
			ExperienceRelevance: 5,
			EducationFit:        5,
			AchievementImpact:   5,
			KeywordDensity:      50,
			EmploymentGap:       5,
			Readability:         5,
			AIConfidence:        50,
		}
		baseScore := CompositeScore(base, DefaultWeights())

		bumps := []func(ms *MetricSet){
			func(ms *MetricSet) { ms.SkillsMatch = 90 },
			func(ms *MetricSet) { ms.ExperienceRelevance = 9 },
			func(ms *MetricSet) { ms.EducationFit = 9 },
			func(ms *MetricSet) { ms.AchievementImpact = 9 },
			func(ms *MetricSet) { ms.KeywordDensity = 90 },
			func(ms *MetricSet) { ms.EmploymentGap = 9 },
			func(ms *MetricSet) { ms.Readability = 9 },
			func(ms *MetricSet) { ms.AIConfidence = 90 },
		}
		for i, bump := range bumps {
			ms := base
			bump(&ms)
			assert.Greater(t, CompositeScore(ms, DefaultWeights()), baseScore, "bump %d", i)
		}
	})

	t.Run("Oversized weights clamp to 100", func(t *testing.T) {
		ms := MetricSet{SkillsMatch: 100, ExperienceRelevance: 10, EducationFit: 10,
			AchievementImpact: 10, KeywordDensity: 100, EmploymentGap: 10, Readability: 10, AIConfidence: 100}
		heavy := WeightConfig{SkillsExperience: 2, EducationAchievements: 2, QualityRisk: 2}
		assert.Equal(t, 100.0, CompositeScore(ms, heavy))
	})

	t.Run("Custom weights shift emphasis", func(t *testing.T) {
		skillsOnly := MetricSet{SkillsMatch: 100, ExperienceRelevance: 10}
		allSkills := WeightConfig{SkillsExperience: 1.0}
		assert.InDelta(t, 100.0, CompositeScore(skillsOnly, allSkills), 0.001)
		assert.InDelta(t, 40.0, CompositeScore(skillsOnly, DefaultWeights()), 0.001)
	})
}

func TestRationale(t *testing.T) {
	strong := MetricSet{
		SkillsMatch:         100,
		ExperienceRelevance: 9,
		EducationFit:        8,
		AchievementImpact:   8,
		KeywordDensity:      70,
		EmploymentGap:       10,
		Readability:         9,
		AIConfidence:        95,
	}

	t.Run("Full skills match", func(t *testing.T) {
		report := ConstraintReport{
			MatchedSkills:  []string{"FastAPI", "PostgreSQL", "Python"},
			CandidateYears: 8,
			RequiredYears:  5,
			SeniorityMatch: "exact",
		}
		text := Rationale(strong, report, DefaultWeights())
		assert.Contains(t, text, "Matches all required skills (3/3).")
		assert.Contains(t, text, "8 years experience (requires 5+).")
		assert.Contains(t, text, "Seniority: exact.")
	})

	t.Run("Missing skills are named", func(t *testing.T) {
		report := ConstraintReport{
			MatchedSkills: []string{"Python"},
			MissingSkills: []string{"Kubernetes", "Rust"},
		}
		text := Rationale(strong, report, DefaultWeights())
		assert.Contains(t, text, "Matches 1/3 required skills")
		assert.Contains(t, text, "Kubernetes, Rust")
	})

	t.Run("Low metrics are called out", func(t *testing.T) {
		weak := MetricSet{KeywordDensity: 10, EmploymentGap: 2, Readability: 1, AIConfidence: 20}
		text := Rationale(weak, ConstraintReport{SeniorityMatch: "unknown"}, DefaultWeights())
		assert.Contains(t, text, "Weak ")
		assert.NotContains(t, text, "Seniority:")
	})

	t.Run("Deterministic for identical inputs", func(t *testing.T) {
		report := ConstraintReport{MatchedSkills: []string{"Go"}, CandidateYears: 3.5}
		assert.Equal(t,
			Rationale(strong, report, DefaultWeights()),
			Rationale(strong, report, DefaultWeights()))
	})

	t.Run("Fractional years keep one decimal", func(t *testing.T) {
		report := ConstraintReport{CandidateYears: 3.5, RequiredYears: 3}
		text := Rationale(strong, report, DefaultWeights())
		assert.Contains(t, text, "3.5 years experience (requires 3+).")
	})
}
