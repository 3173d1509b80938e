// Package store provides database access to candidates, their embeddings,
// and persisted match results.
package store

import (
	"context"

	"github.com/hrygo/talentsense/internal/profile"
)

// Driver is an interface for database drivers.
type Driver interface {
	Close() error
	Migrate(ctx context.Context) error

	// Candidate corpus
	CreateCandidate(ctx context.Context, create *Candidate) (*Candidate, error)
	GetCandidate(ctx context.Context, id int32) (*Candidate, error)
	UpsertCandidateEmbedding(ctx context.Context, embedding *CandidateEmbedding) (*CandidateEmbedding, error)

	// SearchCandidates performs cosine similarity search over candidate
	// document chunks, aggregated to one mean similarity per candidate.
	SearchCandidates(ctx context.Context, opts *CandidateSearchOptions) ([]*CandidateWithScore, error)

	// Match result cache, keyed by (candidate_id, job_id)
	UpsertMatchRecord(ctx context.Context, record *MatchRecord) (*MatchRecord, error)
	ListMatchRecords(ctx context.Context, find *FindMatchRecord) ([]*MatchRecord, error)
}

// Store provides database access to all raw objects.
type Store struct {
	profile *profile.Profile
	driver  Driver
}

// New creates a new instance of Store.
func New(driver Driver, profile *profile.Profile) *Store {
	return &Store{
		driver:  driver,
		profile: profile,
	}
}

func (s *Store) GetDriver() Driver {
	return s.driver
}

func (s *Store) Close() error {
	return s.driver.Close()
}

func (s *Store) Migrate(ctx context.Context) error {
	return s.driver.Migrate(ctx)
}

func (s *Store) CreateCandidate(ctx context.Context, create *Candidate) (*Candidate, error) {
	return s.driver.CreateCandidate(ctx, create)
}

func (s *Store) GetCandidate(ctx context.Context, id int32) (*Candidate, error) {
	return s.driver.GetCandidate(ctx, id)
}

func (s *Store) UpsertCandidateEmbedding(ctx context.Context, embedding *CandidateEmbedding) (*CandidateEmbedding, error) {
	return s.driver.UpsertCandidateEmbedding(ctx, embedding)
}

func (s *Store) SearchCandidates(ctx context.Context, opts *CandidateSearchOptions) ([]*CandidateWithScore, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	return s.driver.SearchCandidates(ctx, opts)
}

func (s *Store) UpsertMatchRecord(ctx context.Context, record *MatchRecord) (*MatchRecord, error) {
	return s.driver.UpsertMatchRecord(ctx, record)
}

func (s *Store) ListMatchRecords(ctx context.Context, find *FindMatchRecord) ([]*MatchRecord, error) {
	return s.driver.ListMatchRecords(ctx, find)
}
