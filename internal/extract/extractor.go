// Package extract turns raw contract text into structured records by
// applying an ordered, per-field table of pattern candidates.
package extract

import (
	"fmt"
	"strings"

	"github.com/sells-group/contract-intake/internal/model"
)

// ExtractionError reports that one or more required fields could not be
// located in the document text. The document is skipped, not partially
// processed.
type ExtractionError struct {
	DocumentID    string
	MissingFields []string
}

func (e *ExtractionError) Error() string {
	return fmt.Sprintf("extract: document %s missing required fields: %s",
		e.DocumentID, strings.Join(e.MissingFields, ", "))
}

// Extractor applies a rule table to document text. It holds no mutable
// state: identical input always yields an identical record.
type Extractor struct {
	rules *RuleTable
}

// New creates an Extractor. A nil table selects the built-in rules.
func New(rules *RuleTable) *Extractor {
	if rules == nil {
		rules = DefaultRules()
	}
	return &Extractor{rules: rules}
}

// Extract produces a ContractRecord from raw text, or an *ExtractionError
// when a required field is absent. Missing optional fields are recorded as
// empty without failing the document.
func (x *Extractor) Extract(doc model.Document, text string) (*model.ContractRecord, error) {
	raw := make(map[string]string, len(x.rules.Rules))
	for i := range x.rules.Rules {
		r := &x.rules.Rules[i]
		if v := r.apply(text); v != "" {
			raw[r.Field] = collapseSpaces(v)
		}
	}

	rec := &model.ContractRecord{
		Date:           raw[FieldDate],
		ContractNumber: raw[FieldContractNumber],
		SalesRep:       raw[FieldSalesRep],
		CustomerName:   normalizeName(raw[FieldCustomerName]),
		Phone:          normalizePhone(raw[FieldPhone]),
		Address:        raw[FieldAddress],
		Email:          strings.ToLower(raw[FieldEmail]),
		Equipment:      canonicalEquipment(raw[FieldEquipment]),
		FinancedBy:     raw[FieldFinancedBy],
		LeadPO:         raw[FieldLeadPO],
		DocumentID:     doc.ID,
		DocumentLink:   doc.Link,
	}

	if v := raw[FieldSalePrice]; v != "" {
		cents, err := parsePriceCents(v)
		if err == nil {
			rec.SalePriceCents = cents
		}
	}

	var missing []string
	if rec.CustomerName == "" {
		missing = append(missing, FieldCustomerName)
	}
	if !rec.HasContact() {
		missing = append(missing, "contact (phone or address)")
	}
	if len(missing) > 0 {
		return nil, &ExtractionError{DocumentID: doc.ID, MissingFields: missing}
	}

	return rec, nil
}
