package ledger

import "strings"

// CostTable maps canonical equipment codes to unit cost in cents and carries
// the marketing-fee fraction applied to the sale price. Values come from
// configuration; DefaultCostTable holds the standard catalog.
type CostTable struct {
	Costs            map[string]int64
	MarketingPercent float64
}

// DefaultCostTable returns the standard equipment catalog.
func DefaultCostTable() *CostTable {
	return &CostTable{
		MarketingPercent: 0.10,
		Costs: map[string]int64{
			"EC5":           92721,
			"TCM":           72155,
			"BCM":           72155,
			"QRS":           27595,
			"AM":            35889,
			"CS":            47236,
			"UV":            50500,
			"ALK":           12583,
			"HYD":           23500,
			"OXY":           206640,
			"RO":            41226,
			"PFAS":          19074,
			"Cage":          50000,
			"Base":          10000,
			"Cooler":        34800,
			"Pump":          120000,
			"Pressure Tank": 50000,
			"RO Pump":       25000,
		},
	}
}

// EquipmentCost sums unit costs for the space-separated canonical codes in
// equipment. Codes with no catalog entry contribute zero.
func (t *CostTable) EquipmentCost(equipment string) int64 {
	var total int64
	for _, code := range splitCodes(equipment) {
		total += t.Costs[code]
	}
	return total
}

// Profit returns (equipment cost, marketing fee, profit) in cents for a sale.
func (t *CostTable) Profit(salePriceCents int64, equipment string) (cost, fee, profit int64) {
	cost = t.EquipmentCost(equipment)
	fee = int64(float64(salePriceCents) * t.MarketingPercent)
	profit = salePriceCents - cost - fee
	return cost, fee, profit
}

// splitCodes splits an equipment string into codes, keeping multi-word codes
// ("RO Pump", "Pressure Tank") intact.
func splitCodes(equipment string) []string {
	fields := strings.Fields(equipment)
	var codes []string
	for i := 0; i < len(fields); i++ {
		if i+1 < len(fields) {
			two := fields[i] + " " + fields[i+1]
			if two == "RO Pump" || two == "Pressure Tank" {
				codes = append(codes, two)
				i++
				continue
			}
		}
		codes = append(codes, fields[i])
	}
	return codes
}
