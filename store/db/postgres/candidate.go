package postgres

import (
	"context"
	"database/sql"
	"encoding/json"

	"github.com/pgvector/pgvector-go"
	"github.com/pkg/errors"

	"github.com/hrygo/talentsense/match"
	"github.com/hrygo/talentsense/store"
)

// CreateCandidate inserts a candidate with its structured profile.
func (d *DB) CreateCandidate(ctx context.Context, create *store.Candidate) (*store.Candidate, error) {
	profileJSON, err := json.Marshal(create.Profile)
	if err != nil {
		return nil, errors.Wrap(err, "failed to marshal candidate profile")
	}

	stmt := `
		INSERT INTO candidate (name, cv_text, profile, extraction_confidence, created_ts, updated_ts)
		VALUES (` + placeholders(6) + `)
		RETURNING id
	`
	err = d.db.QueryRowContext(ctx, stmt,
		create.Name,
		create.CVText,
		profileJSON,
		create.ExtractionConfidence,
		create.CreatedTs,
		create.UpdatedTs,
	).Scan(&create.ID)
	if err != nil {
		return nil, errors.Wrap(err, "failed to create candidate")
	}

	return create, nil
}

// GetCandidate fetches one candidate by id.
func (d *DB) GetCandidate(ctx context.Context, id int32) (*store.Candidate, error) {
	stmt := `
		SELECT id, name, cv_text, profile, extraction_confidence, created_ts, updated_ts
		FROM candidate
		WHERE id = ` + placeholder(1)

	candidate, err := scanCandidate(d.db.QueryRowContext(ctx, stmt, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, errors.Errorf("candidate %d not found", id)
		}
		return nil, errors.Wrap(err, "failed to get candidate")
	}
	return candidate, nil
}

// UpsertCandidateEmbedding inserts or updates one embedded CV chunk.
func (d *DB) UpsertCandidateEmbedding(ctx context.Context, embedding *store.CandidateEmbedding) (*store.CandidateEmbedding, error) {
	stmt := `
		INSERT INTO candidate_embedding (candidate_id, chunk_index, embedding, model, created_ts)
		VALUES (` + placeholders(5) + `)
		ON CONFLICT (candidate_id, chunk_index, model)
		DO UPDATE SET
			embedding = EXCLUDED.embedding,
			created_ts = EXCLUDED.created_ts
		RETURNING id
	`

	vector := pgvector.NewVector(embedding.Embedding)
	err := d.db.QueryRowContext(ctx, stmt,
		embedding.CandidateID,
		embedding.ChunkIndex,
		vector,
		embedding.Model,
		embedding.CreatedTs,
	).Scan(&embedding.ID)
	if err != nil {
		return nil, errors.Wrap(err, "failed to upsert candidate embedding")
	}

	return embedding, nil
}

// SearchCandidates performs vector similarity search using pgvector.
//
// The <=> operator computes cosine distance (1 - cosine_similarity), so
// similarity is 1 - distance. Per-chunk similarities are averaged per
// candidate and the floor applies to the aggregate, matching the contract
// documented on match.RetrievedCandidate.
func (d *DB) SearchCandidates(ctx context.Context, opts *store.CandidateSearchOptions) ([]*store.CandidateWithScore, error) {
	vector := pgvector.NewVector(opts.Vector)

	query := `
		SELECT
			c.id, c.name, c.cv_text, c.profile, c.extraction_confidence, c.created_ts, c.updated_ts,
			AVG(1 - (e.embedding <=> ` + placeholder(1) + `)) AS score
		FROM candidate c
		INNER JOIN candidate_embedding e ON c.id = e.candidate_id
		WHERE e.model = ` + placeholder(2) + `
		GROUP BY c.id
		HAVING AVG(1 - (e.embedding <=> ` + placeholder(3) + `)) >= ` + placeholder(4) + `
		ORDER BY score DESC
		LIMIT ` + placeholder(5)

	rows, err := d.db.QueryContext(ctx, query, vector, opts.Model, vector, opts.MinSimilarity, opts.Limit)
	if err != nil {
		return nil, errors.Wrap(err, "failed to search candidates")
	}
	defer rows.Close()

	results := []*store.CandidateWithScore{}
	for rows.Next() {
		var candidate store.Candidate
		var profileJSON []byte
		var score float64

		err := rows.Scan(
			&candidate.ID,
			&candidate.Name,
			&candidate.CVText,
			&profileJSON,
			&candidate.ExtractionConfidence,
			&candidate.CreatedTs,
			&candidate.UpdatedTs,
			&score,
		)
		if err != nil {
			return nil, errors.Wrap(err, "failed to scan candidate search result")
		}

		if err := json.Unmarshal(profileJSON, &candidate.Profile); err != nil {
			return nil, errors.Wrapf(err, "failed to unmarshal profile for candidate %d", candidate.ID)
		}

		results = append(results, &store.CandidateWithScore{
			Candidate: &candidate,
			Score:     score,
		})
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return results, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanCandidate(row rowScanner) (*store.Candidate, error) {
	var candidate store.Candidate
	var profileJSON []byte

	err := row.Scan(
		&candidate.ID,
		&candidate.Name,
		&candidate.CVText,
		&profileJSON,
		&candidate.ExtractionConfidence,
		&candidate.CreatedTs,
		&candidate.UpdatedTs,
	)
	if err != nil {
		return nil, err
	}

	candidate.Profile = match.CandidateProfile{}
	if err := json.Unmarshal(profileJSON, &candidate.Profile); err != nil {
		return nil, errors.Wrap(err, "failed to unmarshal candidate profile")
	}

	return &candidate, nil
}
