package dedup

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestSQLite(t *testing.T) *SQLiteSet {
	t.Helper()
	set, err := NewSQLite(filepath.Join(t.TempDir(), "processed.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = set.Close() })
	require.NoError(t, set.Migrate(context.Background()))
	return set
}

func TestSQLite_MarkAndContains(t *testing.T) {
	ctx := context.Background()
	set := newTestSQLite(t)

	seen, err := set.Contains(ctx, "doc-1.pdf")
	require.NoError(t, err)
	assert.False(t, seen)

	require.NoError(t, set.Mark(ctx, "doc-1.pdf", "dir"))

	seen, err = set.Contains(ctx, "doc-1.pdf")
	require.NoError(t, err)
	assert.True(t, seen)

	seen, err = set.Contains(ctx, "doc-2.pdf")
	require.NoError(t, err)
	assert.False(t, seen)
}

func TestSQLite_MarkIdempotent(t *testing.T) {
	ctx := context.Background()
	set := newTestSQLite(t)

	require.NoError(t, set.Mark(ctx, "doc-1.pdf", "dir"))
	require.NoError(t, set.Mark(ctx, "doc-1.pdf", "ftp"))

	seen, err := set.Contains(ctx, "doc-1.pdf")
	require.NoError(t, err)
	assert.True(t, seen)
}

func TestSQLite_MigrateTwice(t *testing.T) {
	ctx := context.Background()
	set := newTestSQLite(t)

	// Re-running against an up-to-date schema is a no-op.
	require.NoError(t, set.Migrate(ctx))
}

func TestSQLite_MigrateRejectsUnknownVersion(t *testing.T) {
	ctx := context.Background()
	set := newTestSQLite(t)

	_, err := set.db.ExecContext(ctx, `UPDATE schema_info SET version = 99`)
	require.NoError(t, err)

	assert.Error(t, set.Migrate(ctx))
}

func TestSQLite_SurvivesReopen(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "processed.db")

	set, err := NewSQLite(path)
	require.NoError(t, err)
	require.NoError(t, set.Migrate(ctx))
	require.NoError(t, set.Mark(ctx, "doc-1.pdf", "dir"))
	require.NoError(t, set.Close())

	set, err = NewSQLite(path)
	require.NoError(t, err)
	defer set.Close()
	require.NoError(t, set.Migrate(ctx))

	seen, err := set.Contains(ctx, "doc-1.pdf")
	require.NoError(t, err)
	assert.True(t, seen)
}
