package match

import (
	"regexp"
	"sort"
	"strconv"
	"strings"
	"time"
	"unicode"
)

// The eight metric functions below are pure: no I/O, no shared state, and a
// defined in-range score for every degenerate input (empty skills, zero
// experience, empty text). They never return errors; malformed fields are
// clamped or skipped per metric policy. Because no metric reads another's
// output, they can be computed concurrently per candidate.

// ComputeMetrics computes the full metric set for one (candidate, job) pair.
func ComputeMetrics(job *JobRequirements, profile *CandidateProfile, doc *CandidateDocument) MetricSet {
	now := time.Now()
	keywords := append(append([]string{}, job.RequiredSkills...), job.PreferredSkills...)

	ms := MetricSet{
		SkillsMatch:         SkillsMatchScore(profile.Skills, job.RequiredSkills),
		ExperienceRelevance: ExperienceRelevanceScore(profile, job.MinExperienceYears, job.RequiredSkills, now),
		EducationFit:        EducationFitScore(profile.EducationLevel, profile.Certifications, job.RequiredEducation),
		AchievementImpact:   AchievementImpactScore(doc.Text, profile.Achievements),
		KeywordDensity:      KeywordDensityScore(doc.Text, keywords),
		EmploymentGap:       EmploymentGapScore(profile.WorkHistory, now),
		Readability:         ReadabilityScore(doc.Text),
		AIConfidence:        AIConfidenceScore(profile, doc.SemanticSimilarity),
	}
	ms.Details = map[string]any{
		"semantic_similarity":   doc.SemanticSimilarity,
		"extraction_confidence": doc.ExtractionConfidence,
	}
	return ms
}

// SkillsMatchScore returns the required-skills match percentage (0-100).
// Exact matches count full, substring overlaps count half. An empty
// requirement list means there is nothing to fail: 100.
func SkillsMatchScore(candidateSkills, requiredSkills []string) float64 {
	if len(requiredSkills) == 0 {
		return 100.0
	}

	candidate := normalizeSkillSet(candidateSkills)
	required := normalizeSkillSet(requiredSkills)

	matched := 0
	partial := 0.0
	for req := range required {
		if _, ok := candidate[req]; ok {
			matched++
			continue
		}
		for skill := range candidate {
			if strings.Contains(skill, req) || strings.Contains(req, skill) {
				partial += 0.5
				break
			}
		}
	}

	score := (float64(matched) + partial) / float64(max(1, len(required))) * 100
	return clamp(score, 0, 100)
}

// ExperienceRelevanceScore scores experience relevance 0-10 from four capped
// components: base experience credit, years-vs-requirement ratio, recency of
// the latest role, and the fraction of required tech mentioned in work
// history descriptions.
func ExperienceRelevanceScore(profile *CandidateProfile, minRequiredYears *int, requiredTech []string, now time.Time) float64 {
	score := 0.0

	// Base compatibility credit for accumulated experience regardless of the
	// job's bar. Saturates at five years.
	score += min(profile.TotalExperienceYears/5.0, 1.0) * 2.5

	// Years vs. requirement. A missing requirement defaults to full credit.
	if minRequiredYears != nil && *minRequiredYears > 0 {
		score += min(profile.TotalExperienceYears/float64(*minRequiredYears), 1.0) * 2.5
	} else {
		score += 2.5
	}

	// Recency: a role ending this year earns the full 2.5, fading by half a
	// point per idle year.
	if len(profile.WorkHistory) > 0 {
		mostRecent := 0
		for _, entry := range profile.WorkHistory {
			end := entry.EndDate
			if end == "" {
				end = strconv.Itoa(now.Year())
			}
			if d, ok := parseWorkDate(end); ok && d.Year() > mostRecent {
				mostRecent = d.Year()
			}
		}
		if mostRecent > 0 {
			score += clamp(2.5-float64(now.Year()-mostRecent)*0.5, 0, 2.5)
		} else {
			score += 1.0 // no parsable end date
		}
	}

	// Tech stack alignment: fraction of required tech named anywhere in the
	// work history.
	if len(requiredTech) > 0 && len(profile.WorkHistory) > 0 {
		var history strings.Builder
		for _, entry := range profile.WorkHistory {
			history.WriteString(strings.ToLower(entry.Title))
			history.WriteString(" ")
			history.WriteString(strings.ToLower(entry.Description))
			history.WriteString(" ")
		}
		haystack := history.String()

		mentioned := 0
		for _, tech := range requiredTech {
			if strings.Contains(haystack, strings.ToLower(strings.TrimSpace(tech))) {
				mentioned++
			}
		}
		score += float64(mentioned) / float64(len(requiredTech)) * 2.5
	}

	return clamp(score, 0, 10)
}

// EducationFitScore scores education fit 0-10: degree-level base, a small
// certification bonus, and a bonus when the candidate meets the job's stated
// education requirement. An unknown degree contributes a zero base but
// certifications still count.
func EducationFitScore(level *EducationLevel, certifications []string, required *EducationLevel) float64 {
	score := 0.0

	if level != nil {
		score += level.BaseScore()
	}

	score += min(float64(len(certifications))*0.5, 2.0)

	if required != nil && level != nil && level.Rank() >= required.Rank() && required.Rank() > 0 {
		score += 2.0
	}

	return clamp(score, 0, 10)
}

var impactPatterns = []*regexp.Regexp{
	regexp.MustCompile(`\d+%`),
	regexp.MustCompile(`\$\d+[kmb]?`),
	regexp.MustCompile(`\d+\s*(?:users|customers|clients)`),
	regexp.MustCompile(`(?:led|managed|directed)\s+\d+`),
	regexp.MustCompile(`(?:reduced|increased|improved|optimized)\D{0,40}\d+`),
}

var actionVerbs = []string{
	"achieved", "led", "managed", "developed", "implemented",
	"optimized", "increased", "reduced", "launched", "delivered",
}

// AchievementImpactScore scores quantifiable accomplishments 0-10 from
// numeric impact patterns, action verbs, and structured achievement entries.
// Empty text scores 0.
func AchievementImpactScore(text string, achievements []string) float64 {
	score := 0.0
	lower := strings.ToLower(text)

	for _, pattern := range impactPatterns {
		score += min(float64(len(pattern.FindAllString(lower, -1)))*0.5, 2.0)
	}

	verbHits := 0
	for _, verb := range actionVerbs {
		if strings.Contains(lower, verb) {
			verbHits++
		}
	}
	score += min(float64(verbHits)*0.2, 2.0)

	score += min(float64(len(achievements))*0.5, 2.0)

	return clamp(score, 0, 10)
}

// KeywordDensityScore scores keyword density 0-100. The sweet spot is 2-8
// keyword occurrences per 100 words; lower reads as a poor match and higher
// as keyword stuffing. Zero-length text scores 0; an empty keyword list is
// neutral (50).
func KeywordDensityScore(text string, keywords []string) float64 {
	if len(keywords) == 0 {
		return 50.0
	}

	lower := strings.ToLower(text)
	wordCount := len(strings.Fields(lower))
	if wordCount == 0 {
		return 0.0
	}

	occurrences := 0
	for _, keyword := range keywords {
		k := strings.ToLower(strings.TrimSpace(keyword))
		if k == "" {
			continue
		}
		occurrences += strings.Count(lower, k)
	}

	density := float64(occurrences) / float64(wordCount) * 100

	var score float64
	switch {
	case density < 2:
		score = density / 2 * 50
	case density <= 8:
		score = 50 + (density-2)/6*50
	default:
		score = 100 - (density-8)*10
	}

	return clamp(score, 0, 100)
}

// EmploymentGapScore scores employment continuity 0-10, 10 meaning no gaps.
// Entries are sorted by parsed start date; each gap over six months between
// consecutive roles costs min(3, 0.5 x months over six). Entries with
// unparsable dates are excluded from gap analysis rather than failing the
// metric.
func EmploymentGapScore(history []WorkEntry, now time.Time) float64 {
	type span struct {
		start time.Time
		end   time.Time
	}

	spans := make([]span, 0, len(history))
	for _, entry := range history {
		start, ok := parseWorkDate(entry.StartDate)
		if !ok {
			continue
		}
		end := now
		if entry.EndDate != "" {
			if parsed, ok := parseWorkDate(entry.EndDate); ok {
				end = parsed
			}
		}
		spans = append(spans, span{start: start, end: end})
	}

	if len(spans) < 2 {
		return 10.0
	}

	sort.Slice(spans, func(i, j int) bool { return spans[i].start.Before(spans[j].start) })

	score := 10.0
	for i := 0; i < len(spans)-1; i++ {
		next := spans[i+1]
		gapMonths := monthsBetween(spans[i].end, next.start)
		if gapMonths > 6 {
			score -= min(float64(gapMonths-6)*0.5, 3.0)
		}
	}

	return clamp(score, 0, 10)
}

var recognizedSections = []string{
	"experience", "education", "skills", "summary",
	"objective", "projects", "certifications",
}

var sentenceSplit = regexp.MustCompile(`[.!?]+`)

// ReadabilityScore scores CV readability and structure 0-10: length band
// (ideal 200-3000 words), recognized section count, average sentence length
// (ideal 5-30 words), and a penalty for shouting-caps formatting. Empty
// text scores 0.
func ReadabilityScore(text string) float64 {
	if strings.TrimSpace(text) == "" {
		return 0.0
	}

	score := 10.0
	lower := strings.ToLower(text)

	wordCount := len(strings.Fields(text))
	if wordCount < 200 {
		score -= 2.0
	} else if wordCount > 3000 {
		score -= 1.5
	}

	sectionCount := 0
	for _, section := range recognizedSections {
		if strings.Contains(lower, section) {
			sectionCount++
		}
	}
	if sectionCount < 3 {
		score -= 2.0
	}

	sentences := sentenceSplit.Split(text, -1)
	if len(sentences) > 0 {
		total := 0
		for _, s := range sentences {
			total += len(strings.Fields(s))
		}
		avg := float64(total) / float64(len(sentences))
		if avg > 30 {
			score -= 1.0
		} else if avg < 5 {
			score -= 0.5
		}
	}

	upper := 0
	for _, r := range text {
		if unicode.IsUpper(r) {
			upper++
		}
	}
	if float64(upper)/float64(max(len(text), 1)) > 0.3 {
		score -= 1.0
	}

	return clamp(score, 0, 10)
}

// AIConfidenceScore estimates extraction reliability 0-100. Starts at 100,
// loses 15 points per missing critical field (name, skills, experience),
// is blended 70/30 with semantic similarity, then loses 5 points per
// incomplete work history entry.
func AIConfidenceScore(profile *CandidateProfile, semanticSimilarity float64) float64 {
	confidence := 100.0

	missing := 0
	if strings.TrimSpace(profile.Name) == "" {
		missing++
	}
	if len(profile.Skills) == 0 {
		missing++
	}
	if profile.TotalExperienceYears <= 0 {
		missing++
	}
	confidence -= float64(missing) * 15

	confidence = confidence*0.7 + semanticSimilarity*100*0.3

	for _, entry := range profile.WorkHistory {
		if strings.TrimSpace(entry.Title) == "" || strings.TrimSpace(entry.Company) == "" {
			confidence -= 5
		}
	}

	return clamp(confidence, 0, 100)
}

var yearPattern = regexp.MustCompile(`\d{4}`)

// parseWorkDate extracts a year-month date from a free-form date string.
// Upstream extraction produces formats like "2021-03", "03/2021", "March 2021"
// or bare years; anything without a four-digit year is unparsable.
func parseWorkDate(raw string) (time.Time, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Time{}, false
	}

	yearStr := yearPattern.FindString(raw)
	if yearStr == "" {
		return time.Time{}, false
	}
	year, err := strconv.Atoi(yearStr)
	if err != nil || year < 1900 || year > 2200 {
		return time.Time{}, false
	}

	month := 1
	for _, token := range regexp.MustCompile(`\d{1,2}`).FindAllString(strings.Replace(raw, yearStr, "", 1), -1) {
		if m, err := strconv.Atoi(token); err == nil && m >= 1 && m <= 12 {
			month = m
			break
		}
	}
	if m, ok := monthByName(raw); ok {
		month = m
	}

	return time.Date(year, time.Month(month), 1, 0, 0, 0, 0, time.UTC), true
}

var monthNames = map[string]int{
	"jan": 1, "feb": 2, "mar": 3, "apr": 4, "may": 5, "jun": 6,
	"jul": 7, "aug": 8, "sep": 9, "oct": 10, "nov": 11, "dec": 12,
}

func monthByName(raw string) (int, bool) {
	lower := strings.ToLower(raw)
	for name, m := range monthNames {
		if strings.Contains(lower, name) {
			return m, true
		}
	}
	return 0, false
}

func monthsBetween(from, to time.Time) int {
	return (to.Year()-from.Year())*12 + int(to.Month()) - int(from.Month())
}

func normalizeSkillSet(skills []string) map[string]struct{} {
	set := make(map[string]struct{}, len(skills))
	for _, s := range skills {
		s = strings.ToLower(strings.TrimSpace(s))
		if s != "" {
			set[s] = struct{}{}
		}
	}
	return set
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
