package dedup

import (
	"context"
	"database/sql"
	"time"

	"github.com/rotisserie/eris"
	_ "modernc.org/sqlite"
)

// SQLiteSet implements ProcessedSet using modernc.org/sqlite.
type SQLiteSet struct {
	db *sql.DB
}

// NewSQLite opens a SQLite database at the given path and configures WAL mode.
func NewSQLite(dsn string) (*SQLiteSet, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, eris.Wrap(err, "dedup: open sqlite")
	}
	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA synchronous=NORMAL",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, eris.Wrapf(err, "dedup: exec %s", pragma)
		}
	}
	return &SQLiteSet{db: db}, nil
}

const sqliteMigration = `
CREATE TABLE IF NOT EXISTS schema_info (
	version INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS processed_documents (
	document_id TEXT PRIMARY KEY,
	source      TEXT NOT NULL DEFAULT '',
	marked_at   DATETIME NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_processed_documents_marked_at ON processed_documents(marked_at);
`

// Migrate creates the schema and validates the stored version.
func (s *SQLiteSet) Migrate(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, sqliteMigration); err != nil {
		return eris.Wrap(err, "dedup: migrate sqlite")
	}

	var version int
	err := s.db.QueryRowContext(ctx, `SELECT version FROM schema_info LIMIT 1`).Scan(&version)
	switch {
	case err == sql.ErrNoRows:
		_, err = s.db.ExecContext(ctx, `INSERT INTO schema_info (version) VALUES (?)`, SchemaVersion)
		return eris.Wrap(err, "dedup: write schema version")
	case err != nil:
		return eris.Wrap(err, "dedup: read schema version")
	case version != SchemaVersion:
		return eris.Errorf("dedup: processed set schema version %d, want %d", version, SchemaVersion)
	}
	return nil
}

func (s *SQLiteSet) Contains(ctx context.Context, documentID string) (bool, error) {
	var one int
	err := s.db.QueryRowContext(ctx,
		`SELECT 1 FROM processed_documents WHERE document_id = ?`, documentID,
	).Scan(&one)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, eris.Wrapf(err, "dedup: lookup %s", documentID)
	}
	return true, nil
}

func (s *SQLiteSet) Mark(ctx context.Context, documentID, source string) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO processed_documents (document_id, source, marked_at) VALUES (?, ?, ?)
		 ON CONFLICT (document_id) DO NOTHING`,
		documentID, source, time.Now().UTC(),
	)
	return eris.Wrapf(err, "dedup: mark %s", documentID)
}

func (s *SQLiteSet) Close() error {
	return s.db.Close()
}
