package source

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDirSource_ListsOnlyPDFsSorted(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"b.pdf", "a.PDF", "notes.txt", "c.pdf"} {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte("x"), 0o644))
	}
	require.NoError(t, os.Mkdir(filepath.Join(dir, "sub.pdf"), 0o755))

	src := NewDir(dir)
	docs, err := src.List(context.Background())
	require.NoError(t, err)

	var ids []string
	for _, d := range docs {
		ids = append(ids, d.ID)
	}
	assert.Equal(t, []string{"a.PDF", "b.pdf", "c.pdf"}, ids)
}

func TestDirSource_Localize(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "doc.pdf")
	require.NoError(t, os.WriteFile(path, []byte("pdf bytes"), 0o644))

	src := NewDir(dir)
	docs, err := src.List(context.Background())
	require.NoError(t, err)
	require.Len(t, docs, 1)

	local, cleanup, err := src.Localize(context.Background(), docs[0])
	require.NoError(t, err)
	defer cleanup()

	assert.Equal(t, path, local)
	// Cleanup must not remove the original file.
	cleanup()
	_, err = os.Stat(path)
	assert.NoError(t, err)
}

func TestDirSource_MissingDir(t *testing.T) {
	src := NewDir(filepath.Join(t.TempDir(), "missing"))
	_, err := src.List(context.Background())
	assert.Error(t, err)
}

func TestNewTextProvider(t *testing.T) {
	p, err := NewTextProvider("native", "")
	require.NoError(t, err)
	assert.IsType(t, &NativeText{}, p)

	p, err = NewTextProvider("pdftotext", "/usr/bin/pdftotext")
	require.NoError(t, err)
	assert.IsType(t, &PdfToText{}, p)

	_, err = NewTextProvider("bogus", "")
	assert.Error(t, err)
}
