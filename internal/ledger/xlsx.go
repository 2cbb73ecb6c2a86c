package ledger

import (
	"context"
	"os"
	"sync"

	"github.com/rotisserie/eris"
	"github.com/tealeg/xlsx/v2"
)

// XLSXLedger appends rows to local XLSX workbooks, one workbook per
// destination ref (a file path). Used for dry runs and as an offline mirror
// of the sheet schemas; each workbook gets its header row on creation.
type XLSXLedger struct {
	mu      sync.Mutex
	headers map[string][]string // ref -> header row for new workbooks
}

// NewXLSX creates an XLSXLedger. headers maps each known ref to the header
// row written when its workbook is first created; refs without an entry start
// headerless.
func NewXLSX(headers map[string][]string) *XLSXLedger {
	if headers == nil {
		headers = map[string][]string{}
	}
	return &XLSXLedger{headers: headers}
}

// Append adds one row to the first sheet of the workbook at ref, creating
// the workbook if needed. Serialized: the xlsx file format cannot take
// concurrent writers.
func (l *XLSXLedger) Append(_ context.Context, ref string, row []string) error {
	if ref == "" {
		return eris.New("ledger: empty xlsx path")
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	file, sheet, err := l.openOrCreate(ref)
	if err != nil {
		return err
	}

	r := sheet.AddRow()
	for _, v := range row {
		r.AddCell().SetString(v)
	}

	if err := file.Save(ref); err != nil {
		return eris.Wrapf(err, "ledger: save workbook %s", ref)
	}
	return nil
}

func (l *XLSXLedger) openOrCreate(ref string) (*xlsx.File, *xlsx.Sheet, error) {
	if _, err := os.Stat(ref); err == nil {
		file, err := xlsx.OpenFile(ref)
		if err != nil {
			return nil, nil, eris.Wrapf(err, "ledger: open workbook %s", ref)
		}
		if len(file.Sheets) == 0 {
			return nil, nil, eris.Errorf("ledger: workbook %s has no sheets", ref)
		}
		return file, file.Sheets[0], nil
	}

	file := xlsx.NewFile()
	sheet, err := file.AddSheet("Sheet1")
	if err != nil {
		return nil, nil, eris.Wrapf(err, "ledger: create sheet in %s", ref)
	}
	if headers := l.headers[ref]; len(headers) > 0 {
		r := sheet.AddRow()
		for _, h := range headers {
			r.AddCell().SetString(h)
		}
	}
	return file, sheet, nil
}
