package ledger

import (
	"fmt"

	"github.com/sells-group/contract-intake/internal/model"
)

// Column headers per target. Order is fixed; every row builder emits values
// in exactly this order.
var (
	RepHeaders = []string{
		"Date", "Customer Name", "Phone Number", "Customer Address",
		"Equipment", "Sold Price", "Installed", "Fin By", "Fin Status",
		"Comments", "Commission", "Date", "Contract",
	}

	MasterHeaders = []string{
		"Date", "Sales Rep", "Customer Name", "Equipment", "Sale Price",
		"Equipment Cost", "Marketing Fee (10%)", "Profit", "Lead/PO#",
		"Contract Link",
	}

	BackupHeaders = append(append([]string{}, RepHeaders...), "Sales Rep Name")
)

// RepRow builds an individual-rep sheet row. Installed, comments, and the
// commission columns start empty; financing status defaults to pending.
func RepRow(rec *model.ContractRecord) []string {
	return []string{
		rec.Date,
		rec.CustomerName,
		rec.Phone,
		rec.Address,
		rec.Equipment,
		rec.SalePrice(),
		"", // Installed
		rec.FinancedBy,
		"pending", // Fin Status
		"", // Comments
		"", // Commission
		"", // Commission date
		rec.DocumentLink,
	}
}

// MasterRow builds a master sheet row, including the equipment cost,
// marketing fee, and profit columns derived from the cost table.
func MasterRow(rec *model.ContractRecord, repName string, costs *CostTable) []string {
	cost, fee, profit := costs.Profit(rec.SalePriceCents, rec.Equipment)
	return []string{
		rec.Date,
		repName,
		rec.CustomerName,
		rec.Equipment,
		rec.SalePrice(),
		formatCents(cost),
		formatCents(fee),
		formatCents(profit),
		rec.LeadPO,
		rec.DocumentLink,
	}
}

// BackupRow builds an unmatched-rep row: the rep schema plus the raw
// representative name and the resolver's best score for manual triage.
func BackupRow(rec *model.ContractRecord, result model.MatchResult) []string {
	row := RepRow(rec)
	raw := result.Input
	if raw == "" {
		raw = "UNKNOWN"
	}
	if result.Identity != "" {
		raw = fmt.Sprintf("%s (best: %s %.2f)", raw, result.Identity, result.Score)
	}
	return append(row, raw)
}

func formatCents(c int64) string {
	if c < 0 {
		return fmt.Sprintf("-$%d.%02d", -c/100, (-c)%100)
	}
	return fmt.Sprintf("$%d.%02d", c/100, c%100)
}
