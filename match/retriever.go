package match

import (
	"context"

	"github.com/pkg/errors"
)

// RetrievedCandidate is one candidate returned by similarity retrieval:
// the structured profile plus the CV document carrying the per-candidate
// semantic similarity.
//
// When a candidate's CV is stored as multiple embedded chunks, the retriever
// aggregates chunk similarities with the MEAN, and the same aggregation is
// used when re-scoring. Mean was chosen over max because a candidate whose
// whole CV sits near the job reads better than one with a single hot chunk.
type RetrievedCandidate struct {
	Profile  CandidateProfile
	Document CandidateDocument
}

// Retriever is the external vector-store boundary. Implementations query
// the store for the top-N nearest candidate documents by cosine distance,
// aggregated per candidate, at or above the similarity floor.
type Retriever interface {
	Retrieve(ctx context.Context, queryVector []float32, limit int, minSimilarity float64) ([]RetrievedCandidate, error)
}

// RetrieverFunc adapts a function to the Retriever interface.
type RetrieverFunc func(ctx context.Context, queryVector []float32, limit int, minSimilarity float64) ([]RetrievedCandidate, error)

func (f RetrieverFunc) Retrieve(ctx context.Context, queryVector []float32, limit int, minSimilarity float64) ([]RetrievedCandidate, error) {
	return f(ctx, queryVector, limit, minSimilarity)
}

// ResultSink persists match results keyed by (candidate_id, job_id).
// Persistence is a derived cache: concurrent runs for the same job may race
// and last-write-wins is acceptable.
type ResultSink interface {
	SaveResults(ctx context.Context, jobID int32, runID string, results []MatchResult) error
}

func validateProfile(profile *CandidateProfile) error {
	if profile.CandidateID <= 0 {
		return errors.New("candidate id missing")
	}
	if profile.TotalExperienceYears < 0 {
		return errors.Errorf("negative experience years: %f", profile.TotalExperienceYears)
	}
	return nil
}
