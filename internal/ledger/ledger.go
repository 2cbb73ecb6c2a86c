// Package ledger applies extracted contract records to destination ledgers:
// the matched representative's individual sheet, the shared master sheet, and
// the backup sheet for unmatched representatives.
package ledger

import (
	"context"
	"fmt"
)

// Target names a destination ledger class.
type Target string

const (
	TargetRep    Target = "rep"
	TargetMaster Target = "master"
	TargetBackup Target = "backup"
)

// Ledger appends rows to one destination. Appends are append-only; a row is
// never updated in place.
type Ledger interface {
	// Append adds one row of ordered field values.
	Append(ctx context.Context, ref string, row []string) error
}

// WriteError is a per-target append failure. The document stays unmarked so
// the next cycle retries it in full.
type WriteError struct {
	Target Target
	Ref    string
	Err    error
}

func (e *WriteError) Error() string {
	return fmt.Sprintf("ledger: %s write to %s failed: %v", e.Target, e.Ref, e.Err)
}

func (e *WriteError) Unwrap() error { return e.Err }
