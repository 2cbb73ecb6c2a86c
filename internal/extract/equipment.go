package extract

import "strings"

// equipmentVariants maps canonical equipment codes to the phrase variants
// that appear in contracts. Ordered longest-phrase-first at match time so
// "RO Pump" is not swallowed by "RO".
var equipmentVariants = map[string][]string{
	"EC5":           {"EC5", "ECS", "E.C.5", "System 5", "ES5", "ES-5"},
	"TCM":           {"TCM", "T.C.", "TC Series", "TC Conditioner", "TC"},
	"BCM":           {"BCM", "BCM Series", "BCM Conditioner"},
	"HYD":           {"Hydro System", "Hydro Refiner", "Hydro", "HYD"},
	"QRS":           {"QRS", "Q.R.S", "Quad", "Carbon Filter"},
	"AM":            {"Airmaster", "Air Purifier", "AM"},
	"CS":            {"Clean Start", "Laundry System", "CS"},
	"UV":            {"UV Light", "Ultraviolet", "Lamp", "UV"},
	"ALK":           {"Alkaline", "Filtro Alcalino", "Alka", "Alk", "ALK"},
	"OXY":           {"Oxygen", "Iron Filter", "Oxy System", "OXY"},
	"RO Pump":       {"RO Pump", "Booster Pump", "Permeate Pump"},
	"RO":            {"Reverse Osmosis", "Osmosis", "R.O.", "RO"},
	"PFAS":          {"PFAS", "PFOS", "Forever Chemical Filter"},
	"Cage":          {"Security Cage", "Cage", "Reja"},
	"Base":          {"Stand", "Base"},
	"Cooler":        {"Water Cooler", "Dispenser", "Cooler"},
	"Pump":          {"Well Pump", "Jet Pump", "Bomba", "Pump"},
	"Pressure Tank": {"Pressure Tank", "Tanque", "Tank"},
}

// canonicalEquipment maps a raw equipment capture onto canonical codes.
// Unknown text is returned verbatim so nothing extracted is lost.
func canonicalEquipment(raw string) string {
	raw = collapseSpaces(raw)
	if raw == "" {
		return ""
	}

	upper := strings.ToUpper(raw)
	var codes []string
	seen := make(map[string]bool)
	for _, code := range equipmentOrder {
		for _, variant := range equipmentVariants[code] {
			if containsWord(upper, strings.ToUpper(variant)) {
				if !seen[code] {
					seen[code] = true
					codes = append(codes, code)
				}
				break
			}
		}
	}
	if len(codes) == 0 {
		return raw
	}
	// EC5 and TCM are both softeners; EC5 is the premium line and wins.
	if seen["EC5"] && seen["TCM"] {
		filtered := codes[:0]
		for _, c := range codes {
			if c != "TCM" {
				filtered = append(filtered, c)
			}
		}
		codes = filtered
	}
	return strings.Join(codes, " ")
}

// equipmentOrder fixes the code emission order so identical input always
// yields identical output. Longer/premium systems first.
var equipmentOrder = []string{
	"EC5", "TCM", "BCM", "HYD", "QRS", "AM", "CS", "UV", "ALK", "OXY",
	"RO Pump", "RO", "PFAS", "Cage", "Base", "Cooler", "Pump", "Pressure Tank",
}

// containsWord reports whether phrase occurs in s on word boundaries.
func containsWord(s, phrase string) bool {
	for start := 0; ; {
		i := strings.Index(s[start:], phrase)
		if i < 0 {
			return false
		}
		i += start
		end := i + len(phrase)
		beforeOK := i == 0 || !isWordChar(s[i-1])
		afterOK := end == len(s) || !isWordChar(s[end])
		if beforeOK && afterOK {
			return true
		}
		start = i + 1
	}
}

func isWordChar(b byte) bool {
	return b >= 'A' && b <= 'Z' || b >= 'a' && b <= 'z' || b >= '0' && b <= '9'
}
