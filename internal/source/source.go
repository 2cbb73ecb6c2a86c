// Package source enumerates contract documents at a configured location and
// turns them into text. Sources are restartable: the same document may
// reappear across polling cycles and is filtered by the dedup ledger, never
// assumed absent.
package source

import (
	"context"

	"github.com/sells-group/contract-intake/internal/model"
)

// Source lists the documents visible in one polling cycle and materializes
// them locally for text extraction.
type Source interface {
	// List returns the documents currently present at the source. The
	// listing is finite per cycle.
	List(ctx context.Context) ([]model.Document, error)

	// Localize makes the document available as a local file and returns its
	// path plus a cleanup function (a no-op for already-local documents).
	Localize(ctx context.Context, doc model.Document) (path string, cleanup func(), err error)
}

// TextProvider extracts plain text from a PDF file.
type TextProvider interface {
	ExtractText(ctx context.Context, pdfPath string) (string, error)
}

// Text localizes a document and extracts its text in one step.
func Text(ctx context.Context, src Source, provider TextProvider, doc model.Document) (string, error) {
	path, cleanup, err := src.Localize(ctx, doc)
	if err != nil {
		return "", err
	}
	defer cleanup()
	return provider.ExtractText(ctx, path)
}
