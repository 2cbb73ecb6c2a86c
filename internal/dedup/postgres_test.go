package dedup

import (
	"context"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPostgres_MigrateFresh(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectExec("CREATE TABLE IF NOT EXISTS schema_info").
		WillReturnResult(pgxmock.NewResult("CREATE", 0))
	mock.ExpectQuery("SELECT version FROM schema_info").
		WillReturnError(pgx.ErrNoRows)
	mock.ExpectExec("INSERT INTO schema_info").
		WithArgs(SchemaVersion).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	set := NewPostgresFromPool(mock)
	require.NoError(t, set.Migrate(context.Background()))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgres_MigrateVersionMismatch(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectExec("CREATE TABLE IF NOT EXISTS schema_info").
		WillReturnResult(pgxmock.NewResult("CREATE", 0))
	mock.ExpectQuery("SELECT version FROM schema_info").
		WillReturnRows(pgxmock.NewRows([]string{"version"}).AddRow(99))

	set := NewPostgresFromPool(mock)
	assert.Error(t, set.Migrate(context.Background()))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgres_Contains(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectQuery("SELECT 1 FROM processed_documents").
		WithArgs("doc-1.pdf").
		WillReturnRows(pgxmock.NewRows([]string{"?column?"}).AddRow(1))
	mock.ExpectQuery("SELECT 1 FROM processed_documents").
		WithArgs("doc-2.pdf").
		WillReturnError(pgx.ErrNoRows)

	set := NewPostgresFromPool(mock)

	seen, err := set.Contains(context.Background(), "doc-1.pdf")
	require.NoError(t, err)
	assert.True(t, seen)

	seen, err = set.Contains(context.Background(), "doc-2.pdf")
	require.NoError(t, err)
	assert.False(t, seen)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgres_Mark(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectExec("INSERT INTO processed_documents").
		WithArgs("doc-1.pdf", "ftp", pgxmock.AnyArg()).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	set := NewPostgresFromPool(mock)
	require.NoError(t, set.Mark(context.Background(), "doc-1.pdf", "ftp"))
	assert.NoError(t, mock.ExpectationsWereMet())
}
