package ledger

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/sells-group/contract-intake/internal/match"
	"github.com/sells-group/contract-intake/internal/model"
)

func init() {
	zap.ReplaceGlobals(zap.NewNop())
}

// memLedger records appends in memory and can fail selected refs.
type memLedger struct {
	mu      sync.Mutex
	rows    map[string][][]string
	failRef map[string]error
}

func newMemLedger() *memLedger {
	return &memLedger{
		rows:    make(map[string][][]string),
		failRef: make(map[string]error),
	}
}

func (m *memLedger) Append(ctx context.Context, ref string, row []string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.failRef[ref]; err != nil {
		return err
	}
	m.rows[ref] = append(m.rows[ref], row)
	return nil
}

func testRecord() *model.ContractRecord {
	return &model.ContractRecord{
		Date:           "04/12/2026",
		CustomerName:   "Maria Gonzalez",
		Phone:          "5551234567",
		Address:        "742 Evergreen Terrace",
		Equipment:      "EC5 RO",
		SalePriceCents: 429900,
		FinancedBy:     "Financed",
		LeadPO:         "F54933529",
		SalesRep:       "John Smith",
		DocumentID:     "contract-1.pdf",
		DocumentLink:   "file:///in/contract-1.pdf",
	}
}

func testWriter(l Ledger) *Writer {
	reg := match.NewRegistry([]match.Representative{
		{Name: "John Smith", Ledger: "sheet-john"},
		{Name: "No Sheet Rep"},
	})
	return NewWriter(l, reg, "sheet-master", "sheet-backup", nil, time.Second)
}

func TestWrite_MatchedGoesToRepAndMaster(t *testing.T) {
	mem := newMemLedger()
	w := testWriter(mem)

	res := model.MatchResult{Matched: true, Identity: "John Smith", Score: 1, Input: "John Smith"}
	report := w.Write(context.Background(), testRecord(), res)

	require.True(t, report.Succeeded())
	require.NoError(t, report.Err())
	assert.Len(t, mem.rows["sheet-john"], 1)
	assert.Len(t, mem.rows["sheet-master"], 1)
	assert.Empty(t, mem.rows["sheet-backup"])

	repRow := mem.rows["sheet-john"][0]
	require.Len(t, repRow, len(RepHeaders))
	assert.Equal(t, "Maria Gonzalez", repRow[1])
	assert.Equal(t, "4299.00", repRow[5])
	assert.Equal(t, "pending", repRow[8])

	masterRow := mem.rows["sheet-master"][0]
	require.Len(t, masterRow, len(MasterHeaders))
	assert.Equal(t, "John Smith", masterRow[1])
	assert.Equal(t, "F54933529", masterRow[8])
}

func TestWrite_UnmatchedGoesToBackupOnly(t *testing.T) {
	mem := newMemLedger()
	w := testWriter(mem)

	res := model.MatchResult{Matched: false, Identity: "John Smith", Score: 0.42, Input: "XYZ Randomname"}
	report := w.Write(context.Background(), testRecord(), res)

	require.True(t, report.Succeeded())
	assert.Empty(t, mem.rows["sheet-john"])
	assert.Empty(t, mem.rows["sheet-master"])
	require.Len(t, mem.rows["sheet-backup"], 1)

	row := mem.rows["sheet-backup"][0]
	require.Len(t, row, len(BackupHeaders))
	assert.Contains(t, row[len(row)-1], "XYZ Randomname")
	assert.Contains(t, row[len(row)-1], "John Smith")
}

func TestWrite_MasterFailureStillWritesRep(t *testing.T) {
	mem := newMemLedger()
	mem.failRef["sheet-master"] = errors.New("quota exceeded")
	w := testWriter(mem)

	res := model.MatchResult{Matched: true, Identity: "John Smith", Score: 1, Input: "John Smith"}
	report := w.Write(context.Background(), testRecord(), res)

	assert.False(t, report.Succeeded())
	require.Error(t, report.Err())

	// The rep write still happened; only the master target failed.
	assert.Len(t, mem.rows["sheet-john"], 1)

	var we *WriteError
	require.ErrorAs(t, report.Err(), &we)
	assert.Equal(t, TargetMaster, we.Target)
	assert.Equal(t, "sheet-master", we.Ref)
}

func TestWrite_MissingRepLedgerRef(t *testing.T) {
	mem := newMemLedger()
	w := testWriter(mem)

	res := model.MatchResult{Matched: true, Identity: "No Sheet Rep", Score: 1, Input: "No Sheet Rep"}
	report := w.Write(context.Background(), testRecord(), res)

	assert.False(t, report.Succeeded())
	// The master write is still attempted.
	assert.Len(t, mem.rows["sheet-master"], 1)
}

func TestReport_EmptyNotSucceeded(t *testing.T) {
	var r Report
	assert.False(t, r.Succeeded())
	assert.NoError(t, r.Err())
}
