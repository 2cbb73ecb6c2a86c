package ledger

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/sells-group/contract-intake/internal/match"
	"github.com/sells-group/contract-intake/internal/model"
	"github.com/sells-group/contract-intake/internal/resilience"
)

// Result is the outcome of one destination append.
type Result struct {
	Target Target
	Ref    string
	Err    error
}

// Report collects per-destination results for one record. The document is
// eligible for dedup marking only when every attempted write succeeded.
type Report struct {
	Results []Result
}

// Succeeded reports whether every attempted write succeeded.
func (r *Report) Succeeded() bool {
	for _, res := range r.Results {
		if res.Err != nil {
			return false
		}
	}
	return len(r.Results) > 0
}

// Err joins the per-target failures, or returns nil when all succeeded.
func (r *Report) Err() error {
	var errs []error
	for _, res := range r.Results {
		if res.Err != nil {
			errs = append(errs, res.Err)
		}
	}
	return errors.Join(errs...)
}

// Writer fans one record out to its destination ledgers.
type Writer struct {
	ledger    Ledger
	registry  *match.Registry
	masterRef string
	backupRef string
	costs     *CostTable
	retry     resilience.RetryConfig
	timeout   time.Duration
}

// NewWriter creates a Writer. A nil cost table selects the default catalog;
// a zero timeout defaults to 30s per append.
func NewWriter(l Ledger, registry *match.Registry, masterRef, backupRef string, costs *CostTable, timeout time.Duration) *Writer {
	if costs == nil {
		costs = DefaultCostTable()
	}
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Writer{
		ledger:    l,
		registry:  registry,
		masterRef: masterRef,
		backupRef: backupRef,
		costs:     costs,
		retry:     resilience.DefaultRetryConfig(),
		timeout:   timeout,
	}
}

// Write applies the record to the applicable destinations. Matched records go
// to the representative's sheet and the master sheet; both are attempted even
// if one fails. Unmatched records go to the backup sheet only.
func (w *Writer) Write(ctx context.Context, rec *model.ContractRecord, res model.MatchResult) *Report {
	report := &Report{}

	if res.Matched {
		repRef, ok := w.registry.Ledger(res.Identity)
		if !ok || repRef == "" {
			report.add(TargetRep, repRef, &WriteError{
				Target: TargetRep, Ref: repRef,
				Err: errors.New("no ledger reference configured for " + res.Identity),
			})
		} else {
			report.add(TargetRep, repRef, w.append(ctx, TargetRep, repRef, RepRow(rec)))
		}
		report.add(TargetMaster, w.masterRef,
			w.append(ctx, TargetMaster, w.masterRef, MasterRow(rec, res.Identity, w.costs)))
		return report
	}

	report.add(TargetBackup, w.backupRef,
		w.append(ctx, TargetBackup, w.backupRef, BackupRow(rec, res)))
	return report
}

func (w *Writer) append(ctx context.Context, target Target, ref string, row []string) error {
	err := resilience.Do(ctx, w.retry, func(ctx context.Context) error {
		callCtx, cancel := context.WithTimeout(ctx, w.timeout)
		defer cancel()
		return w.ledger.Append(callCtx, ref, row)
	})
	if err != nil {
		zap.L().Error("ledger: append failed",
			zap.String("target", string(target)),
			zap.String("ref", ref),
			zap.Error(err),
		)
		return &WriteError{Target: target, Ref: ref, Err: err}
	}
	return nil
}

func (r *Report) add(target Target, ref string, err error) {
	r.Results = append(r.Results, Result{Target: target, Ref: ref, Err: err})
}
