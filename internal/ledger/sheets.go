package ledger

import (
	"context"

	"github.com/sells-group/contract-intake/pkg/sheets"
)

// SheetsLedger appends rows to Google spreadsheets. The ref passed to Append
// is the spreadsheet ID.
type SheetsLedger struct {
	client sheets.Client
}

// NewSheets wraps a sheets client as a Ledger.
func NewSheets(client sheets.Client) *SheetsLedger {
	return &SheetsLedger{client: client}
}

func (l *SheetsLedger) Append(ctx context.Context, ref string, row []string) error {
	return l.client.AppendRow(ctx, ref, row)
}
