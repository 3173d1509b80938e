// Package match implements the candidate-job matching and scoring engine:
// constraint evaluation, the eight per-candidate metrics, composite scoring,
// and the retrieval-to-ranking pipeline.
package match

import (
	"time"
)

// Seniority is an ordinal seniority level.
type Seniority string

const (
	SeniorityIntern    Seniority = "intern"
	SeniorityJunior    Seniority = "junior"
	SeniorityMid       Seniority = "mid"
	SenioritySenior    Seniority = "senior"
	SeniorityLead      Seniority = "lead"
	SeniorityPrincipal Seniority = "principal"
)

var seniorityRank = map[Seniority]int{
	SeniorityIntern:    0,
	SeniorityJunior:    1,
	SeniorityMid:       2,
	SenioritySenior:    3,
	SeniorityLead:      4,
	SeniorityPrincipal: 5,
}

// Rank returns the ordinal position of the seniority level, or -1 when unknown.
func (s Seniority) Rank() int {
	if r, ok := seniorityRank[s]; ok {
		return r
	}
	return -1
}

// EducationLevel is a degree level extracted from a CV.
type EducationLevel string

const (
	EducationPhD       EducationLevel = "phd"
	EducationMaster    EducationLevel = "master"
	EducationBachelor  EducationLevel = "bachelor"
	EducationAssociate EducationLevel = "associate"
	EducationDiploma   EducationLevel = "diploma"
)

var educationBaseScore = map[EducationLevel]float64{
	EducationPhD:       6.0,
	EducationMaster:    5.0,
	EducationBachelor:  4.0,
	EducationAssociate: 3.0,
	EducationDiploma:   2.0,
}

// BaseScore returns the degree-level component of the education fit metric.
// Unknown levels score 0.
func (e EducationLevel) BaseScore() float64 {
	return educationBaseScore[e]
}

var educationRank = map[EducationLevel]int{
	EducationDiploma:   1,
	EducationAssociate: 2,
	EducationBachelor:  3,
	EducationMaster:    4,
	EducationPhD:       5,
}

// Rank returns the ordinal position of the education level, or 0 when unknown.
func (e EducationLevel) Rank() int {
	return educationRank[e]
}

// RemoteType is a work location arrangement.
type RemoteType string

const (
	RemoteTypeRemote RemoteType = "remote"
	RemoteTypeHybrid RemoteType = "hybrid"
	RemoteTypeOnsite RemoteType = "onsite"
)

// JobRequirements holds the structured requirements of a job posting.
// It is owned by the caller and read-only to the pipeline.
type JobRequirements struct {
	JobID              int32           `json:"job_id"`
	Title              string          `json:"title"`
	RequiredSkills     []string        `json:"required_skills"`
	PreferredSkills    []string        `json:"preferred_skills"`
	MinExperienceYears *int            `json:"min_experience_years,omitempty"`
	MaxExperienceYears *int            `json:"max_experience_years,omitempty"`
	RequiredEducation  *EducationLevel `json:"required_education,omitempty"`
	SeniorityFloor     *Seniority      `json:"seniority_floor,omitempty"`
	RemoteType         *RemoteType     `json:"remote_type,omitempty"`
	Locations          []string        `json:"locations,omitempty"`
	RequiredLanguages  []string        `json:"required_languages,omitempty"`
}

// WorkEntry is one position in a candidate's work history.
// Dates are free-form strings as extracted upstream; unparsable dates are
// tolerated and excluded from gap analysis.
type WorkEntry struct {
	StartDate   string `json:"start_date"`
	EndDate     string `json:"end_date,omitempty"` // empty means present
	Title       string `json:"title"`
	Company     string `json:"company"`
	Description string `json:"description,omitempty"`
}

// CandidateProfile holds the structured facts extracted upstream from a CV.
// It is produced by an external extraction step and never mutated here.
type CandidateProfile struct {
	CandidateID             int32           `json:"candidate_id"`
	Name                    string          `json:"name"`
	Skills                  []string        `json:"skills"`
	TotalExperienceYears    float64         `json:"total_experience_years"`
	RelevantExperienceYears float64         `json:"relevant_experience_years"`
	SeniorityLevel          *Seniority      `json:"seniority_level,omitempty"`
	EducationLevel          *EducationLevel `json:"education_level,omitempty"`
	Certifications          []string        `json:"certifications,omitempty"`
	Languages               []string        `json:"languages,omitempty"`
	Location                string          `json:"location,omitempty"`
	LocationTypePreference  *RemoteType     `json:"location_type_preference,omitempty"`
	WorkHistory             []WorkEntry     `json:"work_history,omitempty"`
	Achievements            []string        `json:"achievements,omitempty"`
}

// CandidateDocument is the free-text CV content plus the pre-computed
// semantic similarity to the job embedding, one per candidate per run.
type CandidateDocument struct {
	CandidateID          int32   `json:"candidate_id"`
	Text                 string  `json:"text"`
	SemanticSimilarity   float64 `json:"semantic_similarity"`   // cosine similarity to the job embedding, [0,1]
	ExtractionConfidence float64 `json:"extraction_confidence"` // upstream extraction confidence, [0,1]
}

// MetricSet holds the eight computed scores for one (candidate, job) pair.
// Never mutated after creation.
type MetricSet struct {
	SkillsMatch         float64 `json:"skills_match"`         // 0-100
	ExperienceRelevance float64 `json:"experience_relevance"` // 0-10
	EducationFit        float64 `json:"education_fit"`        // 0-10
	AchievementImpact   float64 `json:"achievement_impact"`   // 0-10
	KeywordDensity      float64 `json:"keyword_density"`      // 0-100
	EmploymentGap       float64 `json:"employment_gap"`       // 0-10, 10 = no gaps
	Readability         float64 `json:"readability"`          // 0-10
	AIConfidence        float64 `json:"ai_confidence"`        // 0-100

	Details map[string]any `json:"details,omitempty"`
}

// ConstraintReport holds the per-rule outcome of hard constraint evaluation.
// It is advisory: it annotates results and disqualifies only when hard
// filtering is explicitly enabled.
type ConstraintReport struct {
	Passed bool `json:"passed"`

	MatchedSkills []string `json:"matched_skills"`
	MissingSkills []string `json:"missing_skills"`

	ExperienceOK   bool    `json:"experience_ok"`
	CandidateYears float64 `json:"candidate_years"`
	RequiredYears  int     `json:"required_years,omitempty"`

	SeniorityOK    bool   `json:"seniority_ok"`
	SeniorityMatch string `json:"seniority_match"` // "exact", "above floor", "below floor", "unknown"

	LanguageOK bool `json:"language_ok"`
	LocationOK bool `json:"location_ok"`

	Notes []string `json:"notes,omitempty"`
}

// MatchResult is one ranked output row for a (candidate, job) pair.
type MatchResult struct {
	CandidateID        int32            `json:"candidate_id"`
	Name               string           `json:"name"`
	CompositeScore     float64          `json:"composite_score"` // [0,100]
	SemanticSimilarity float64          `json:"semantic_similarity"`
	Metrics            MetricSet        `json:"metrics"`
	Constraints        ConstraintReport `json:"constraints"`
	Rationale          string           `json:"rationale"`
}

// Summary describes a match run at the job level. It is produced for every
// successful run, including runs that matched nothing.
type Summary struct {
	RoleTitle          string   `json:"role_title"`
	KeyRequiredSkills  []string `json:"key_required_skills"`
	NiceToHaveSkills   []string `json:"nice_to_have_skills"`
	ConstraintsApplied []string `json:"constraints_applied"`
	Retrieved          int      `json:"retrieved"`
	Scored             int      `json:"scored"`
	Returned           int      `json:"returned"`
	Message            string   `json:"message,omitempty"`
}

// Report is the final output of a match run.
type Report struct {
	RunID       string        `json:"run_id"`
	JobID       int32         `json:"job_id"`
	Results     []MatchResult `json:"results"`
	Summary     Summary       `json:"summary"`
	StartedAt   time.Time     `json:"started_at"`
	CompletedAt time.Time     `json:"completed_at"`
}
