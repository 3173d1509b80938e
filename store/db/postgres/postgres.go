// Package postgres implements the store driver on PostgreSQL with pgvector.
package postgres

import (
	"context"
	"database/sql"
	"strconv"
	"strings"
	"time"

	// Import the PostgreSQL driver.
	_ "github.com/lib/pq"
	"github.com/pkg/errors"

	"github.com/hrygo/talentsense/internal/profile"
	"github.com/hrygo/talentsense/internal/version"
	"github.com/hrygo/talentsense/store"
)

type DB struct {
	db      *sql.DB
	profile *profile.Profile
}

// NewDB opens a database specified by its database driver name and a
// driver-specific data source name.
func NewDB(profile *profile.Profile) (store.Driver, error) {
	if profile.DSN == "" {
		return nil, errors.New("dsn required")
	}

	pgDB, err := sql.Open("postgres", profile.DSN)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to open db with dsn: %s", profile.DSN)
	}

	pgDB.SetMaxOpenConns(25)
	pgDB.SetMaxIdleConns(5)

	return &DB{db: pgDB, profile: profile}, nil
}

func (d *DB) Close() error {
	return d.db.Close()
}

// Migrate applies the latest schema. Vector similarity relies on the
// pgvector extension being installable in the target database.
func (d *DB) Migrate(ctx context.Context) error {
	for _, stmt := range migrationStmts(d.profile.AIEmbeddingDimensions) {
		if _, err := d.db.ExecContext(ctx, stmt); err != nil {
			return errors.Wrapf(err, "migration failed: %s", firstLine(stmt))
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
		`INSERT INTO migration_history (version, created_ts) VALUES ($1, $2) ON CONFLICT (version) DO NOTHING`,
		current, time.Now().Unix(),
	); err != nil {
		return errors.Wrap(err, "failed to record schema version")
	}
	return nil
}

func migrationStmts(dimensions int) []string {
	if dimensions <= 0 {
		dimensions = 1024
	}
	dim := strconv.Itoa(dimensions)
	return []string{
		`CREATE EXTENSION IF NOT EXISTS vector`,
		`CREATE TABLE IF NOT EXISTS candidate (
			id SERIAL PRIMARY KEY,
			name TEXT NOT NULL DEFAULT '',
			cv_text TEXT NOT NULL DEFAULT '',
			profile JSONB NOT NULL DEFAULT '{}',
			extraction_confidence REAL NOT NULL DEFAULT 0,
			created_ts BIGINT NOT NULL,
			updated_ts BIGINT NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS candidate_embedding (
			id SERIAL PRIMARY KEY,
			candidate_id INTEGER NOT NULL REFERENCES candidate(id) ON DELETE CASCADE,
			chunk_index INTEGER NOT NULL DEFAULT 0,
			embedding vector(` + dim + `) NOT NULL,
			model TEXT NOT NULL,
			created_ts BIGINT NOT NULL,
			UNIQUE (candidate_id, chunk_index, model)
		)`,
		`CREATE TABLE IF NOT EXISTS match_record (
			id SERIAL PRIMARY KEY,
			job_id INTEGER NOT NULL,
			candidate_id INTEGER NOT NULL REFERENCES candidate(id) ON DELETE CASCADE,
			run_id TEXT NOT NULL DEFAULT '',
			composite_score REAL NOT NULL,
			semantic_similarity REAL NOT NULL DEFAULT 0,
			metrics JSONB NOT NULL DEFAULT '{}',
			constraints JSONB NOT NULL DEFAULT '{}',
			rationale TEXT NOT NULL DEFAULT '',
			created_ts BIGINT NOT NULL,
			updated_ts BIGINT NOT NULL,
			UNIQUE (candidate_id, job_id)
		)`,
		`CREATE INDEX IF NOT EXISTS idx_match_record_job_score ON match_record (job_id, composite_score DESC)`,
		`CREATE TABLE IF NOT EXISTS migration_history (
			version TEXT PRIMARY KEY,
			created_ts BIGINT NOT NULL
		)`,
	}
}

func firstLine(s string) string {
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return strings.TrimSpace(s[:i])
	}
	return s
}

func placeholder(n int) string {
	return "$" + strconv.Itoa(n)
}

func placeholders(n int) string {
	list := make([]string, n)
	for i := range list {
		list[i] = placeholder(i + 1)
	}
	return strings.Join(list, ", ")
}
