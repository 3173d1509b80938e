package store

import (
	"context"
	"time"

	"github.com/pkg/errors"

	"github.com/hrygo/talentsense/match"
)

// CandidateRetriever adapts the store's vector search to the pipeline's
// Retriever contract. Per-chunk similarities are aggregated with the mean in
// SQL, so the similarity the pipeline sees is the candidate-level score.
func (s *Store) CandidateRetriever() match.Retriever {
	return match.RetrieverFunc(func(ctx context.Context, queryVector []float32, limit int, minSimilarity float64) ([]match.RetrievedCandidate, error) {
		results, err := s.SearchCandidates(ctx, &CandidateSearchOptions{
			Vector:        queryVector,
			Limit:         limit,
			MinSimilarity: minSimilarity,
			Model:         s.profile.AIEmbeddingModel,
		})
		if err != nil {
			return nil, errors.Wrap(err, "candidate similarity search")
		}

		retrieved := make([]match.RetrievedCandidate, 0, len(results))
		for _, r := range results {
			profile := r.Candidate.Profile
			profile.CandidateID = r.Candidate.ID
			if profile.Name == "" {
				profile.Name = r.Candidate.Name
			}
			retrieved = append(retrieved, match.RetrievedCandidate{
				Profile: profile,
				Document: match.CandidateDocument{
					CandidateID:          r.Candidate.ID,
					Text:                 r.Candidate.CVText,
					SemanticSimilarity:   r.Score,
					ExtractionConfidence: r.Candidate.ExtractionConfidence,
				},
			})
		}
		return retrieved, nil
	})
}

// SaveResults implements match.ResultSink: one upsert per scored candidate,
// keyed by (candidate_id, job_id).
func (s *Store) SaveResults(ctx context.Context, jobID int32, runID string, results []match.MatchResult) error {
	now := time.Now().Unix()
	for i := range results {
		r := &results[i]
		if _, err := s.UpsertMatchRecord(ctx, &MatchRecord{
			JobID:              jobID,
			CandidateID:        r.CandidateID,
			RunID:              runID,
			CompositeScore:     r.CompositeScore,
			SemanticSimilarity: r.SemanticSimilarity,
			Metrics:            r.Metrics,
			Constraints:        r.Constraints,
			Rationale:          r.Rationale,
			CreatedTs:          now,
			UpdatedTs:          now,
		}); err != nil {
			return errors.Wrapf(err, "failed to upsert match record for candidate %d", r.CandidateID)
		}
	}
	return nil
}
