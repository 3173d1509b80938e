package store

import (
	"github.com/hrygo/talentsense/match"
)

// MatchRecord is one persisted match result for a (candidate, job) pair.
// Records are a derived cache keyed by that pair: re-running a match for the
// same job upserts, and last-write-wins between concurrent runs is fine.
type MatchRecord struct {
	ID int32

	JobID       int32
	CandidateID int32
	RunID       string

	CompositeScore     float64
	SemanticSimilarity float64
	Metrics            match.MetricSet        // stored as JSONB
	Constraints        match.ConstraintReport // stored as JSONB
	Rationale          string

	CreatedTs int64
	UpdatedTs int64
}

// FindMatchRecord filters the match record read path.
type FindMatchRecord struct {
	JobID       *int32
	CandidateID *int32
	MinScore    *float64 // optional composite score floor
	Limit       int      // 0 means no limit
}
