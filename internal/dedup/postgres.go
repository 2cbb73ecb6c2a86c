package dedup

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rotisserie/eris"
)

// pgPool is the minimal pool surface the postgres backend needs; pgxpool.Pool
// and pgxmock both satisfy it.
type pgPool interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Ping(ctx context.Context) error
	Close()
}

// PostgresSet implements ProcessedSet using pgxpool.
type PostgresSet struct {
	pool pgPool
}

// NewPostgres connects to the given database and pings it.
func NewPostgres(ctx context.Context, connString string) (*PostgresSet, error) {
	pool, err := pgxpool.New(ctx, connString)
	if err != nil {
		return nil, eris.Wrap(err, "dedup: connect postgres")
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, eris.Wrap(err, "dedup: ping postgres")
	}
	return &PostgresSet{pool: pool}, nil
}

// NewPostgresFromPool wraps an existing pool, for tests.
func NewPostgresFromPool(pool pgPool) *PostgresSet {
	return &PostgresSet{pool: pool}
}

const postgresMigration = `
CREATE TABLE IF NOT EXISTS schema_info (
	version INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS processed_documents (
	document_id TEXT PRIMARY KEY,
	source      TEXT NOT NULL DEFAULT '',
	marked_at   TIMESTAMPTZ NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_processed_documents_marked_at ON processed_documents(marked_at);
`

func (s *PostgresSet) Migrate(ctx context.Context) error {
	if _, err := s.pool.Exec(ctx, postgresMigration); err != nil {
		return eris.Wrap(err, "dedup: migrate postgres")
	}

	var version int
	err := s.pool.QueryRow(ctx, `SELECT version FROM schema_info LIMIT 1`).Scan(&version)
	switch {
	case errors.Is(err, pgx.ErrNoRows):
		_, err = s.pool.Exec(ctx, `INSERT INTO schema_info (version) VALUES ($1)`, SchemaVersion)
		return eris.Wrap(err, "dedup: write schema version")
	case err != nil:
		return eris.Wrap(err, "dedup: read schema version")
	case version != SchemaVersion:
		return eris.Errorf("dedup: processed set schema version %d, want %d", version, SchemaVersion)
	}
	return nil
}

func (s *PostgresSet) Contains(ctx context.Context, documentID string) (bool, error) {
	var one int
	err := s.pool.QueryRow(ctx,
		`SELECT 1 FROM processed_documents WHERE document_id = $1`, documentID,
	).Scan(&one)
	if errors.Is(err, pgx.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, eris.Wrapf(err, "dedup: lookup %s", documentID)
	}
	return true, nil
}

func (s *PostgresSet) Mark(ctx context.Context, documentID, source string) error {
	_, err := s.pool.Exec(ctx,
		`INSERT INTO processed_documents (document_id, source, marked_at) VALUES ($1, $2, $3)
		 ON CONFLICT (document_id) DO NOTHING`,
		documentID, source, time.Now().UTC(),
	)
	return eris.Wrapf(err, "dedup: mark %s", documentID)
}

func (s *PostgresSet) Close() error {
	s.pool.Close()
	return nil
}
