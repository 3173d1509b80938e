// Package sqlite implements the store driver on SQLite.
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	"github.com/pkg/errors"

	// Import the SQLite driver.
	_ "modernc.org/sqlite"

	"github.com/hrygo/talentsense/internal/profile"
	"github.com/hrygo/talentsense/internal/version"
	"github.com/hrygo/talentsense/store"
)

// ============================================================================
// SQLITE SUPPORT POLICY
// ============================================================================
// SQLite is supported on a BEST-EFFORT basis for development and testing only.
//
// Supported:
// - Candidate and embedding CRUD
// - Match record persistence and the read path
//
// NOT supported:
// - Vector similarity search: the retrieval contract requires a cosine
//   distance operator, which needs the postgres driver with pgvector.
//   SearchCandidates returns a clear error instead of a partial result.
// ============================================================================

type DB struct {
	db      *sql.DB
	profile *profile.Profile
}

// NewDB opens the SQLite database at the DSN path with WAL journaling.
func NewDB(profile *profile.Profile) (store.Driver, error) {
	if profile.DSN == "" {
		return nil, errors.New("dsn required")
	}

	sqliteDB, err := sql.Open("sqlite", profile.DSN+"?_pragma=foreign_keys(1)&_pragma=busy_timeout(10000)&_pragma=journal_mode(WAL)")
	if err != nil {
		return nil, errors.Wrapf(err, "failed to open db with dsn: %s", profile.DSN)
	}

	// Single connection is optimal for SQLite with WAL.
	sqliteDB.SetMaxOpenConns(1)
	sqliteDB.SetMaxIdleConns(1)

	return &DB{db: sqliteDB, profile: profile}, nil
}

func (d *DB) Close() error {
	return d.db.Close()
}

// Migrate applies the latest schema. Embeddings are stored as JSON text so a
// future export to postgres keeps the data, but they are not searchable here.
func (d *DB) Migrate(ctx context.Context) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS candidate (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			name TEXT NOT NULL DEFAULT '',
			cv_text TEXT NOT NULL DEFAULT '',
			profile TEXT NOT NULL DEFAULT '{}',
			extraction_confidence REAL NOT NULL DEFAULT 0,
			created_ts BIGINT NOT NULL,
			updated_ts BIGINT NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS candidate_embedding (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			candidate_id INTEGER NOT NULL REFERENCES candidate(id) ON DELETE CASCADE,
			chunk_index INTEGER NOT NULL DEFAULT 0,
			embedding TEXT NOT NULL,
			model TEXT NOT NULL,
			created_ts BIGINT NOT NULL,
			UNIQUE (candidate_id, chunk_index, model)
		)`,
		`CREATE TABLE IF NOT EXISTS match_record (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			job_id INTEGER NOT NULL,
			candidate_id INTEGER NOT NULL REFERENCES candidate(id) ON DELETE CASCADE,
			run_id TEXT NOT NULL DEFAULT '',
			composite_score REAL NOT NULL,
			semantic_similarity REAL NOT NULL DEFAULT 0,
			metrics TEXT NOT NULL DEFAULT '{}',
			constraints TEXT NOT NULL DEFAULT '{}',
			rationale TEXT NOT NULL DEFAULT '',
			created_ts BIGINT NOT NULL,
			updated_ts BIGINT NOT NULL,
			UNIQUE (candidate_id, job_id)
		)`,
		`CREATE TABLE IF NOT EXISTS migration_history (
			version TEXT PRIMARY KEY,
			created_ts BIGINT NOT NULL
		)`,
	}

	for _, stmt := range stmts {
		if _, err := d.db.ExecContext(ctx, stmt); err != nil {
			return errors.Wrap(err, "migration failed")
		}
	}
	return d.recordSchemaVersion(ctx)
}

// recordSchemaVersion appends the running version to migration_history, so a
// schema downgrade is visible in the data. Rerunning the same build is a no-op.
func (d *DB) recordSchemaVersion(ctx context.Context) error {
	current := version.GetCurrentVersion(d.profile.Mode)

	var latest sql.NullString
	err := d.db.QueryRowContext(ctx,
		`SELECT version FROM migration_history ORDER BY created_ts DESC LIMIT 1`,
	).Scan(&latest)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return errors.Wrap(err, "failed to read migration history")
	}
	if latest.Valid && !version.IsVersionGreaterThan(current, latest.String) {
		return nil
	}

	if _, err := d.db.ExecContext(ctx,
		`INSERT INTO migration_history (version, created_ts) VALUES (?, ?) ON CONFLICT (version) DO NOTHING`,
		current, time.Now().Unix(),
	); err != nil {
		return errors.Wrap(err, "failed to record schema version")
	}
	return nil
}

// CreateCandidate inserts a candidate with its structured profile.
func (d *DB) CreateCandidate(ctx context.Context, create *store.Candidate) (*store.Candidate, error) {
	profileJSON, err := json.Marshal(create.Profile)
	if err != nil {
		return nil, errors.Wrap(err, "failed to marshal candidate profile")
	}

	stmt := `
		INSERT INTO candidate (name, cv_text, profile, extraction_confidence, created_ts, updated_ts)
		VALUES (?, ?, ?, ?, ?, ?)
		RETURNING id
	`
	err = d.db.QueryRowContext(ctx, stmt,
		create.Name,
		create.CVText,
		string(profileJSON),
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
		WHERE id = ?
	`

	var candidate store.Candidate
	var profileJSON string
	err := d.db.QueryRowContext(ctx, stmt, id).Scan(
		&candidate.ID,
		&candidate.Name,
		&candidate.CVText,
		&profileJSON,
		&candidate.ExtractionConfidence,
		&candidate.CreatedTs,
		&candidate.UpdatedTs,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, errors.Errorf("candidate %d not found", id)
		}
		return nil, errors.Wrap(err, "failed to get candidate")
	}

	if err := json.Unmarshal([]byte(profileJSON), &candidate.Profile); err != nil {
		return nil, errors.Wrap(err, "failed to unmarshal candidate profile")
	}

	return &candidate, nil
}

// UpsertCandidateEmbedding stores one embedded CV chunk as JSON text.
func (d *DB) UpsertCandidateEmbedding(ctx context.Context, embedding *store.CandidateEmbedding) (*store.CandidateEmbedding, error) {
	vectorJSON, err := json.Marshal(embedding.Embedding)
	if err != nil {
		return nil, errors.Wrap(err, "failed to marshal embedding")
	}

	stmt := `
		INSERT INTO candidate_embedding (candidate_id, chunk_index, embedding, model, created_ts)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT (candidate_id, chunk_index, model)
		DO UPDATE SET
			embedding = excluded.embedding,
			created_ts = excluded.created_ts
		RETURNING id
	`
	err = d.db.QueryRowContext(ctx, stmt,
		embedding.CandidateID,
		embedding.ChunkIndex,
		string(vectorJSON),
		embedding.Model,
		embedding.CreatedTs,
	).Scan(&embedding.ID)
	if err != nil {
		return nil, errors.Wrap(err, "failed to upsert candidate embedding")
	}

	return embedding, nil
}

// SearchCandidates is not supported on SQLite; use the postgres driver.
func (d *DB) SearchCandidates(_ context.Context, _ *store.CandidateSearchOptions) ([]*store.CandidateWithScore, error) {
	return nil, errors.New("vector similarity search requires the postgres driver")
}
