package match

import (
	"fmt"
	"sort"
	"strings"
)

// EvaluateConstraints checks a candidate against the job's hard constraints
// and returns per-rule detail. The report is advisory: the pipeline attaches
// it to every result and only excludes candidates when hard filtering is
// explicitly enabled. Strict upfront filtering has a history of emptying the
// pool when requirements are narrow, so retrieve-wide-filter-soft is the
// default and must stay the default.
func EvaluateConstraints(job *JobRequirements, profile *CandidateProfile) ConstraintReport {
	report := ConstraintReport{
		ExperienceOK:   true,
		SeniorityOK:    true,
		LanguageOK:     true,
		LocationOK:     true,
		SeniorityMatch: "unknown",
		CandidateYears: profile.TotalExperienceYears,
	}

	// Required skills: ALL must be present, missing ones listed.
	candidateSkills := normalizeSkillSet(profile.Skills)
	for _, skill := range job.RequiredSkills {
		if _, ok := candidateSkills[strings.ToLower(strings.TrimSpace(skill))]; ok {
			report.MatchedSkills = append(report.MatchedSkills, skill)
		} else {
			report.MissingSkills = append(report.MissingSkills, skill)
		}
	}
	sort.Strings(report.MatchedSkills)
	sort.Strings(report.MissingSkills)

	// Minimum experience.
	if job.MinExperienceYears != nil {
		report.RequiredYears = *job.MinExperienceYears
		report.ExperienceOK = profile.TotalExperienceYears >= float64(*job.MinExperienceYears)
	}

	// Seniority floor on the fixed ordinal scale.
	if job.SeniorityFloor != nil {
		floor := job.SeniorityFloor.Rank()
		if profile.SeniorityLevel == nil || profile.SeniorityLevel.Rank() < 0 {
			report.SeniorityOK = false
			report.SeniorityMatch = "unknown"
			report.Notes = append(report.Notes, fmt.Sprintf("seniority floor is %s but candidate level is unknown", *job.SeniorityFloor))
		} else {
			rank := profile.SeniorityLevel.Rank()
			switch {
			case rank == floor:
				report.SeniorityMatch = "exact"
			case rank > floor:
				report.SeniorityMatch = "above floor"
			default:
				report.SeniorityOK = false
				report.SeniorityMatch = "below floor"
			}
		}
	}

	// Languages: at least one required language present.
	if len(job.RequiredLanguages) > 0 {
		report.LanguageOK = false
		for _, required := range job.RequiredLanguages {
			for _, lang := range profile.Languages {
				if strings.Contains(strings.ToLower(lang), strings.ToLower(strings.TrimSpace(required))) {
					report.LanguageOK = true
					break
				}
			}
			if report.LanguageOK {
				break
			}
		}
	}

	// Location/remote compatibility. A remote job accepts anyone. An onsite
	// or hybrid job requires a candidate who is not strictly remote-only, or
	// whose location matches one of the job's locations.
	if job.RemoteType != nil && *job.RemoteType != RemoteTypeRemote {
		locationMatches := false
		for _, loc := range job.Locations {
			if loc != "" && strings.Contains(strings.ToLower(profile.Location), strings.ToLower(loc)) {
				locationMatches = true
				break
			}
		}
		remoteOnly := profile.LocationTypePreference != nil && *profile.LocationTypePreference == RemoteTypeRemote
		report.LocationOK = !remoteOnly || locationMatches
		if !report.LocationOK {
			report.Notes = append(report.Notes, fmt.Sprintf("job is %s but candidate prefers remote only", *job.RemoteType))
		}
	}

	report.Passed = len(report.MissingSkills) == 0 &&
		report.ExperienceOK &&
		report.SeniorityOK &&
		report.LanguageOK &&
		report.LocationOK

	return report
}

// FormatConstraints renders the job's hard constraints as human-readable
// lines for the run summary.
func FormatConstraints(job *JobRequirements) []string {
	var constraints []string

	if len(job.RequiredSkills) > 0 {
		constraints = append(constraints, "Skills: "+strings.Join(capList(job.RequiredSkills, 3), ", "))
	}
	if job.MinExperienceYears != nil {
		constraints = append(constraints, fmt.Sprintf("Min experience: %d+ years", *job.MinExperienceYears))
	}
	if job.SeniorityFloor != nil {
		constraints = append(constraints, fmt.Sprintf("Seniority: %s or above", *job.SeniorityFloor))
	}
	if len(job.RequiredLanguages) > 0 {
		constraints = append(constraints, "Languages: "+strings.Join(job.RequiredLanguages, ", "))
	}
	if job.RemoteType != nil {
		constraints = append(constraints, fmt.Sprintf("Location type: %s", *job.RemoteType))
	}
	if len(job.Locations) > 0 {
		constraints = append(constraints, "Locations: "+strings.Join(job.Locations, ", "))
	}

	if len(constraints) == 0 {
		return []string{"No hard constraints applied"}
	}
	return constraints
}
