package postgres

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/pkg/errors"

	"github.com/hrygo/talentsense/store"
)

// UpsertMatchRecord inserts or updates a match record keyed by
// (candidate_id, job_id).
func (d *DB) UpsertMatchRecord(ctx context.Context, record *store.MatchRecord) (*store.MatchRecord, error) {
	metricsJSON, err := json.Marshal(record.Metrics)
	if err != nil {
		return nil, errors.Wrap(err, "failed to marshal metrics")
	}
	constraintsJSON, err := json.Marshal(record.Constraints)
	if err != nil {
		return nil, errors.Wrap(err, "failed to marshal constraints")
	}

	stmt := `
		INSERT INTO match_record (
			job_id, candidate_id, run_id,
			composite_score, semantic_similarity, metrics, constraints, rationale,
			created_ts, updated_ts
		) VALUES (` + placeholders(10) + `)
		ON CONFLICT (candidate_id, job_id)
		DO UPDATE SET
			run_id = EXCLUDED.run_id,
			composite_score = EXCLUDED.composite_score,
			semantic_similarity = EXCLUDED.semantic_similarity,
			metrics = EXCLUDED.metrics,
			constraints = EXCLUDED.constraints,
			rationale = EXCLUDED.rationale,
			updated_ts = EXCLUDED.updated_ts
		RETURNING id, created_ts, updated_ts
	`

	err = d.db.QueryRowContext(ctx, stmt,
		record.JobID,
		record.CandidateID,
		record.RunID,
		record.CompositeScore,
		record.SemanticSimilarity,
		metricsJSON,
		constraintsJSON,
		record.Rationale,
		record.CreatedTs,
		record.UpdatedTs,
	).Scan(&record.ID, &record.CreatedTs, &record.UpdatedTs)
	if err != nil {
		return nil, errors.Wrap(err, "failed to upsert match record")
	}

	return record, nil
}

// ListMatchRecords lists match records, best score first.
func (d *DB) ListMatchRecords(ctx context.Context, find *store.FindMatchRecord) ([]*store.MatchRecord, error) {
	where, args := []string{"1 = 1"}, []any{}

	if find.JobID != nil {
		where, args = append(where, "job_id = "+placeholder(len(args)+1)), append(args, *find.JobID)
	}
	if find.CandidateID != nil {
		where, args = append(where, "candidate_id = "+placeholder(len(args)+1)), append(args, *find.CandidateID)
	}
	if find.MinScore != nil {
		where, args = append(where, "composite_score >= "+placeholder(len(args)+1)), append(args, *find.MinScore)
	}

	query := `
		SELECT id, job_id, candidate_id, run_id,
			composite_score, semantic_similarity, metrics, constraints, rationale,
			created_ts, updated_ts
		FROM match_record
		WHERE ` + strings.Join(where, " AND ") + `
		ORDER BY composite_score DESC, candidate_id ASC
	`
	if find.Limit > 0 {
		query += " LIMIT " + placeholder(len(args)+1)
		args = append(args, find.Limit)
	}

	rows, err := d.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, errors.Wrap(err, "failed to list match records")
	}
	defer rows.Close()

	list := []*store.MatchRecord{}
	for rows.Next() {
		var record store.MatchRecord
		var metricsJSON, constraintsJSON []byte

		err := rows.Scan(
			&record.ID,
			&record.JobID,
			&record.CandidateID,
			&record.RunID,
			&record.CompositeScore,
			&record.SemanticSimilarity,
			&metricsJSON,
			&constraintsJSON,
			&record.Rationale,
			&record.CreatedTs,
			&record.UpdatedTs,
		)
		if err != nil {
			return nil, errors.Wrap(err, "failed to scan match record")
		}

		if err := json.Unmarshal(metricsJSON, &record.Metrics); err != nil {
			return nil, errors.Wrap(err, "failed to unmarshal metrics")
		}
		if err := json.Unmarshal(constraintsJSON, &record.Constraints); err != nil {
			return nil, errors.Wrap(err, "failed to unmarshal constraints")
		}

		list = append(list, &record)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return list, nil
}
