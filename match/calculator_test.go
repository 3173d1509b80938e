package match

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testNow = time.Date(2026, time.June, 1, 0, 0, 0, 0, time.UTC)

func TestSkillsMatchScore(t *testing.T) {
	t.Run("Empty requirement list scores 100", func(t *testing.T) {
		assert.Equal(t, 100.0, SkillsMatchScore([]string{"Go", "Python"}, nil))
		assert.Equal(t, 100.0, SkillsMatchScore(nil, nil))
	})

	t.Run("Full match scores 100", func(t *testing.T) {
		score := SkillsMatchScore(
			[]string{"Python", "FastAPI", "PostgreSQL", "Docker"},
			[]string{"Python", "FastAPI", "PostgreSQL"},
		)
		assert.Equal(t, 100.0, score)
	})

	t.Run("Matching is case-insensitive", func(t *testing.T) {
		score := SkillsMatchScore([]string{"python", " POSTGRESQL "}, []string{"Python", "PostgreSQL"})
		assert.Equal(t, 100.0, score)
	})

	t.Run("Substring overlap counts half", func(t *testing.T) {
		// "postgres" vs "postgresql" is a partial match worth 0.5.
		score := SkillsMatchScore([]string{"Postgres"}, []string{"PostgreSQL"})
		assert.Equal(t, 50.0, score)
	})

	t.Run("No overlap scores 0", func(t *testing.T) {
		assert.Equal(t, 0.0, SkillsMatchScore([]string{"Excel"}, []string{"Rust", "Kubernetes"}))
	})

	t.Run("Partial overlap", func(t *testing.T) {
		score := SkillsMatchScore([]string{"Python"}, []string{"Python", "Rust"})
		assert.Equal(t, 50.0, score)
	})
}

func TestExperienceRelevanceScore(t *testing.T) {
	t.Run("No requirement grants full years credit", func(t *testing.T) {
		profile := &CandidateProfile{TotalExperienceYears: 5}
		score := ExperienceRelevanceScore(profile, nil, nil, testNow)
		// base 2.5 (saturated) + years 2.5 (no requirement); no history components.
		assert.InDelta(t, 5.0, score, 0.001)
	})

	t.Run("Years below requirement scale linearly", func(t *testing.T) {
		minYears := 10
		profile := &CandidateProfile{TotalExperienceYears: 5}
		score := ExperienceRelevanceScore(profile, &minYears, nil, testNow)
		// base 2.5 + ratio 5/10 * 2.5 = 1.25.
		assert.InDelta(t, 3.75, score, 0.001)
	})

	t.Run("Recent role plus full stack alignment maxes out", func(t *testing.T) {
		minYears := 5
		profile := &CandidateProfile{
			TotalExperienceYears: 8,
			WorkHistory: []WorkEntry{
				{StartDate: "2020-01", Title: "Backend Engineer", Company: "Acme",
					Description: "Built services with Python, FastAPI and PostgreSQL"},
			},
		}
		score := ExperienceRelevanceScore(profile, &minYears, []string{"Python", "FastAPI", "PostgreSQL"}, testNow)
		assert.InDelta(t, 10.0, score, 0.001)
	})

	t.Run("Idle years fade the recency component", func(t *testing.T) {
		profile := &CandidateProfile{
			TotalExperienceYears: 8,
			WorkHistory:          []WorkEntry{{StartDate: "2018-01", EndDate: "2022-06", Title: "Engineer", Company: "Acme"}},
		}
		score := ExperienceRelevanceScore(profile, nil, nil, testNow)
		// base 2.5 + years 2.5 + recency clamp(2.5 - 4*0.5) = 0.5.
		assert.InDelta(t, 5.5, score, 0.001)
	})

	t.Run("Zero experience stays in range", func(t *testing.T) {
		score := ExperienceRelevanceScore(&CandidateProfile{}, nil, nil, testNow)
		assert.GreaterOrEqual(t, score, 0.0)
		assert.LessOrEqual(t, score, 10.0)
	})
}

func TestEducationFitScore(t *testing.T) {
	bachelor := EducationBachelor
	master := EducationMaster
	unknown := EducationLevel("bootcamp")

	t.Run("Degree base plus requirement bonus", func(t *testing.T) {
		// master base 5.0 + meets bachelor requirement 2.0.
		assert.InDelta(t, 7.0, EducationFitScore(&master, nil, &bachelor), 0.001)
	})

	t.Run("Certifications add capped bonus", func(t *testing.T) {
		certs := []string{"AWS SA", "CKA", "CKAD", "PMP", "CISSP"}
		// bachelor base 4.0 + cert bonus capped at 2.0.
		assert.InDelta(t, 6.0, EducationFitScore(&bachelor, certs, nil), 0.001)
	})

	t.Run("Unknown degree contributes zero base", func(t *testing.T) {
		assert.InDelta(t, 0.5, EducationFitScore(&unknown, []string{"CKA"}, nil), 0.001)
	})

	t.Run("Nil level with certifications", func(t *testing.T) {
		assert.InDelta(t, 1.0, EducationFitScore(nil, []string{"CKA", "CKAD"}, &bachelor), 0.001)
	})

	t.Run("Below requirement gets no bonus", func(t *testing.T) {
		assert.InDelta(t, 4.0, EducationFitScore(&bachelor, nil, &master), 0.001)
	})
}

func TestAchievementImpactScore(t *testing.T) {
	t.Run("Empty text and achievements scores 0", func(t *testing.T) {
		assert.Equal(t, 0.0, AchievementImpactScore("", nil))
	})

	t.Run("Quantified accomplishments score high", func(t *testing.T) {
		text := "Led 12 engineers. Increased revenue by 40% and reduced infra costs by 30%. " +
			"Launched a platform serving 50000 users. Delivered $2m in savings."
		score := AchievementImpactScore(text, []string{"Revenue growth", "Cost reduction"})
		assert.Greater(t, score, 5.0)
		assert.LessOrEqual(t, score, 10.0)
	})

	t.Run("Plain prose scores low", func(t *testing.T) {
		score := AchievementImpactScore("Responsible for maintenance of internal tools.", nil)
		assert.Less(t, score, 2.0)
	})
}

func TestKeywordDensityScore(t *testing.T) {
	// filler builds a text of n words that contains no keywords.
	filler := func(n int) string {
		return strings.TrimSpace(strings.Repeat("lorem ", n))
	}

	t.Run("No keywords is neutral", func(t *testing.T) {
		assert.Equal(t, 50.0, KeywordDensityScore("some cv text", nil))
	})

	t.Run("Empty text scores 0", func(t *testing.T) {
		assert.Equal(t, 0.0, KeywordDensityScore("", []string{"python"}))
		assert.Equal(t, 0.0, KeywordDensityScore("   ", []string{"python"}))
	})

	t.Run("Sparse keywords score below 50", func(t *testing.T) {
		// 1 occurrence in 100 words: density 1 -> 25.
		text := filler(99) + " python"
		assert.InDelta(t, 25.0, KeywordDensityScore(text, []string{"python"}), 0.001)
	})

	t.Run("Sweet spot scales 50 to 100", func(t *testing.T) {
		// 5 occurrences in 100 words: density 5 -> 75.
		text := filler(95) + strings.Repeat(" python", 5)
		assert.InDelta(t, 75.0, KeywordDensityScore(text, []string{"python"}), 0.001)
	})

	t.Run("Keyword stuffing is penalized to the floor", func(t *testing.T) {
		// 20 occurrences in 100 words: density 20 -> 100 - 120, clamped to 0.
		text := filler(80) + strings.Repeat(" python", 20)
		assert.Equal(t, 0.0, KeywordDensityScore(text, []string{"python"}))
	})
}

func TestEmploymentGapScore(t *testing.T) {
	t.Run("No history scores 10", func(t *testing.T) {
		assert.Equal(t, 10.0, EmploymentGapScore(nil, testNow))
	})

	t.Run("Single role scores 10", func(t *testing.T) {
		history := []WorkEntry{{StartDate: "2020-01", Title: "Engineer", Company: "Acme"}}
		assert.Equal(t, 10.0, EmploymentGapScore(history, testNow))
	})

	t.Run("Contiguous roles score 10", func(t *testing.T) {
		history := []WorkEntry{
			{StartDate: "2018-01", EndDate: "2020-01"},
			{StartDate: "2020-02", EndDate: "2023-06"},
			{StartDate: "2023-06"},
		}
		assert.Equal(t, 10.0, EmploymentGapScore(history, testNow))
	})

	t.Run("Twelve month gap scores 7", func(t *testing.T) {
		history := []WorkEntry{
			{StartDate: "2018-01", EndDate: "2019-01"},
			{StartDate: "2020-01", EndDate: "2024-01"},
		}
		assert.InDelta(t, 7.0, EmploymentGapScore(history, testNow), 0.001)
	})

	t.Run("Penalty is capped per gap", func(t *testing.T) {
		history := []WorkEntry{
			{StartDate: "2010-01", EndDate: "2012-01"},
			{StartDate: "2020-01", EndDate: "2024-01"},
		}
		// An eight year gap still costs at most 3 points.
		assert.InDelta(t, 7.0, EmploymentGapScore(history, testNow), 0.001)
	})

	t.Run("Entry order does not matter", func(t *testing.T) {
		history := []WorkEntry{
			{StartDate: "2020-01", EndDate: "2024-01"},
			{StartDate: "2018-01", EndDate: "2019-01"},
		}
		assert.InDelta(t, 7.0, EmploymentGapScore(history, testNow), 0.001)
	})

	t.Run("Unparsable dates are excluded", func(t *testing.T) {
		history := []WorkEntry{
			{StartDate: "unknown", EndDate: "n/a"},
			{StartDate: "2020-01"},
		}
		assert.Equal(t, 10.0, EmploymentGapScore(history, testNow))
	})
}

func TestReadabilityScore(t *testing.T) {
	t.Run("Empty text scores 0", func(t *testing.T) {
		assert.Equal(t, 0.0, ReadabilityScore(""))
		assert.Equal(t, 0.0, ReadabilityScore("  \n "))
	})

	t.Run("Well structured cv scores high", func(t *testing.T) {
		sentence := "Designed and shipped backend services for payments. "
		text := "Summary\n" + strings.Repeat(sentence, 10) +
			"\nExperience\n" + strings.Repeat(sentence, 10) +
			"\nSkills\n" + strings.Repeat(sentence, 10) +
			"\nEducation\n" + strings.Repeat(sentence, 5)
		score := ReadabilityScore(text)
		assert.GreaterOrEqual(t, score, 8.0)
	})

	t.Run("Short unstructured text is penalized", func(t *testing.T) {
		score := ReadabilityScore("worked at a company doing things")
		assert.Less(t, score, 7.0)
		assert.GreaterOrEqual(t, score, 0.0)
	})

	t.Run("Shouting caps are penalized", func(t *testing.T) {
		calm := "experience skills summary " + strings.Repeat("built reliable systems. ", 60)
		loud := "EXPERIENCE SKILLS SUMMARY " + strings.Repeat("BUILT RELIABLE SYSTEMS. ", 60)
		assert.Less(t, ReadabilityScore(loud), ReadabilityScore(calm))
	})
}

func TestAIConfidenceScore(t *testing.T) {
	complete := &CandidateProfile{
		Name:                 "Jordan Smith",
		Skills:               []string{"Go"},
		TotalExperienceYears: 6,
		WorkHistory:          []WorkEntry{{Title: "Engineer", Company: "Acme"}},
	}

	t.Run("Complete profile with high similarity", func(t *testing.T) {
		score := AIConfidenceScore(complete, 0.9)
		assert.InDelta(t, 97.0, score, 0.001)
	})

	t.Run("Missing critical fields are penalized", func(t *testing.T) {
		score := AIConfidenceScore(&CandidateProfile{}, 0.0)
		// 100 - 3*15 = 55, blended 70/30 with zero similarity.
		assert.InDelta(t, 38.5, score, 0.001)
	})

	t.Run("Incomplete work entries cost 5 each", func(t *testing.T) {
		profile := *complete
		profile.WorkHistory = []WorkEntry{{Title: "Engineer"}, {Company: "Acme"}}
		withComplete := AIConfidenceScore(complete, 0.8)
		withIncomplete := AIConfidenceScore(&profile, 0.8)
		assert.InDelta(t, withComplete-10, withIncomplete, 0.001)
	})
}

func TestComputeMetrics_Bounds(t *testing.T) {
	minYears := 5
	bachelor := EducationBachelor
	job := &JobRequirements{
		JobID:              1,
		RequiredSkills:     []string{"Python", "FastAPI"},
		PreferredSkills:    []string{"Docker"},
		MinExperienceYears: &minYears,
		RequiredEducation:  &bachelor,
	}

	profiles := []*CandidateProfile{
		{CandidateID: 1},
		{CandidateID: 2, Name: "A", Skills: []string{"Python"}, TotalExperienceYears: 100},
		{CandidateID: 3, Name: "B", Skills: []string{"Python", "FastAPI", "Docker"},
			TotalExperienceYears: 7, EducationLevel: &bachelor,
			WorkHistory: []WorkEntry{{StartDate: "garbage", EndDate: "also garbage", Title: "X", Company: "Y"}}},
	}
	docs := []*CandidateDocument{
		{CandidateID: 1},
		{CandidateID: 2, Text: strings.Repeat("PYTHON ", 500), SemanticSimilarity: 1.0},
		{CandidateID: 3, Text: "short", SemanticSimilarity: 0.5, ExtractionConfidence: 0.9},
	}

	for i, profile := range profiles {
		ms := ComputeMetrics(job, profile, docs[i])

		assert.GreaterOrEqual(t, ms.SkillsMatch, 0.0)
		assert.LessOrEqual(t, ms.SkillsMatch, 100.0)
		assert.GreaterOrEqual(t, ms.ExperienceRelevance, 0.0)
		assert.LessOrEqual(t, ms.ExperienceRelevance, 10.0)
		assert.GreaterOrEqual(t, ms.EducationFit, 0.0)
		assert.LessOrEqual(t, ms.EducationFit, 10.0)
		assert.GreaterOrEqual(t, ms.AchievementImpact, 0.0)
		assert.LessOrEqual(t, ms.AchievementImpact, 10.0)
		assert.GreaterOrEqual(t, ms.KeywordDensity, 0.0)
		assert.LessOrEqual(t, ms.KeywordDensity, 100.0)
		assert.GreaterOrEqual(t, ms.EmploymentGap, 0.0)
		assert.LessOrEqual(t, ms.EmploymentGap, 10.0)
		assert.GreaterOrEqual(t, ms.Readability, 0.0)
		assert.LessOrEqual(t, ms.Readability, 10.0)
		assert.GreaterOrEqual(t, ms.AIConfidence, 0.0)
		assert.LessOrEqual(t, ms.AIConfidence, 100.0)
	}
}

func TestParseWorkDate(t *testing.T) {
	tests := []struct {
		raw       string
		wantYear  int
		wantMonth time.Month
		ok        bool
	}{
		{"2021-03", 2021, time.March, true},
		{"03/2021", 2021, time.March, true},
		{"March 2021", 2021, time.March, true},
		{"Sep 2019", 2019, time.September, true},
		{"2021", 2021, time.January, true},
		{"", 0, 0, false},
		{"present", 0, 0, false},
		{"n/a", 0, 0, false},
		{"0042", 0, 0, false},
	}

	for _, tt := range tests {
		d, ok := parseWorkDate(tt.raw)
		require.Equal(t, tt.ok, ok, "input %q", tt.raw)
		if ok {
			assert.Equal(t, tt.wantYear, d.Year(), "input %q", tt.raw)
			assert.Equal(t, tt.wantMonth, d.Month(), "input %q", tt.raw)
		}
	}
}
