// Package dedup tracks which source documents have already been fully
// processed. The processed set is the sole idempotency guard: a document is
// marked only after every downstream write for it has succeeded.
package dedup

import (
	"context"
	"sync"
)

// SchemaVersion identifies the processed-set storage layout. Bump on any
// incompatible table change so older state is detected instead of misread.
const SchemaVersion = 1

// ProcessedSet is the durable set of document identifiers whose effects have
// been fully applied.
type ProcessedSet interface {
	// Contains reports whether the document has already been processed.
	Contains(ctx context.Context, documentID string) (bool, error)

	// Mark records the document as fully processed. Marking the same
	// document twice is a no-op, not an error.
	Mark(ctx context.Context, documentID, source string) error

	Migrate(ctx context.Context) error
	Close() error
}

// Gate serializes the check-then-act sequence per document identifier so two
// concurrent passes over the same document cannot both reach the write path.
type Gate struct {
	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

// NewGate creates an empty Gate.
func NewGate() *Gate {
	return &Gate{locks: make(map[string]*sync.Mutex)}
}

// Acquire locks the gate for a document identifier and returns the unlock
// function. Locks are per-identifier; distinct documents do not contend.
func (g *Gate) Acquire(documentID string) func() {
	g.mu.Lock()
	l, ok := g.locks[documentID]
	if !ok {
		l = &sync.Mutex{}
		g.locks[documentID] = l
	}
	g.mu.Unlock()

	l.Lock()
	return l.Unlock
}
