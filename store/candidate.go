package store

import (
	"github.com/pkg/errors"

	"github.com/hrygo/talentsense/match"
)

// Candidate is a stored candidate: the structured profile extracted upstream
// plus the full CV text the profile was extracted from.
type Candidate struct {
	ID int32

	Name                 string
	CVText               string
	Profile              match.CandidateProfile // stored as JSONB
	ExtractionConfidence float64

	CreatedTs int64
	UpdatedTs int64
}

// CandidateEmbedding is one embedded chunk of a candidate's CV.
type CandidateEmbedding struct {
	ID          int32
	CandidateID int32
	ChunkIndex  int32
	Embedding   []float32
	Model       string
	CreatedTs   int64
}

// CandidateSearchOptions configures a candidate similarity search.
type CandidateSearchOptions struct {
	Vector        []float32
	Limit         int     // 0 means default
	MinSimilarity float64 // similarity floor, [0,1]
	Model         string  // embedding model filter, empty means default
}

const (
	defaultSearchLimit = 50
	maxSearchLimit     = 1000
	defaultModel       = "BAAI/bge-m3"
)

// Validate checks the options and applies defaults.
func (o *CandidateSearchOptions) Validate() error {
	if len(o.Vector) == 0 {
		return errors.New("vector cannot be empty")
	}
	if o.Limit < 0 {
		return errors.New("limit cannot be negative")
	}
	if o.Limit == 0 {
		o.Limit = defaultSearchLimit
	}
	if o.Limit > maxSearchLimit {
		return errors.Errorf("limit too large: %d > %d", o.Limit, maxSearchLimit)
	}
	if o.MinSimilarity < 0 || o.MinSimilarity > 1 {
		return errors.Errorf("invalid similarity floor: %f", o.MinSimilarity)
	}
	if o.Model == "" {
		o.Model = defaultModel
	}
	return nil
}

// CandidateWithScore is a candidate search result with its aggregated
// similarity score.
type CandidateWithScore struct {
	Candidate *Candidate
	Score     float64
}
