package source

import (
	"context"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/rotisserie/eris"

	"github.com/sells-group/contract-intake/internal/model"
)

// DirSource enumerates PDF files in a local drop directory. The document ID
// is the file name, which stays stable across cycles.
type DirSource struct {
	dir string
}

// NewDir creates a DirSource for the given directory.
func NewDir(dir string) *DirSource {
	return &DirSource{dir: dir}
}

func (s *DirSource) List(ctx context.Context) ([]model.Document, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, eris.Wrapf(err, "source: read dir %s", s.dir)
	}

	var docs []model.Document
	for _, e := range entries {
		if e.IsDir() || !strings.EqualFold(filepath.Ext(e.Name()), ".pdf") {
			continue
		}
		docs = append(docs, model.Document{
			ID:   e.Name(),
			Name: e.Name(),
			Link: "file://" + filepath.Join(s.dir, e.Name()),
		})
	}
	sort.Slice(docs, func(i, j int) bool { return docs[i].ID < docs[j].ID })
	return docs, nil
}

func (s *DirSource) Localize(_ context.Context, doc model.Document) (string, func(), error) {
	path := filepath.Join(s.dir, doc.Name)
	if _, err := os.Stat(path); err != nil {
		return "", nil, eris.Wrapf(err, "source: stat %s", path)
	}
	return path, func() {}, nil
}
