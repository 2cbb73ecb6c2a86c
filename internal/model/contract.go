package model

import "fmt"

// ContractRecord holds the structured fields extracted from a single
// contract document. Date, customer name, and address keep their display
// form; phone is reduced to a canonical digit sequence and the sale price
// is held in cents.
type ContractRecord struct {
	Date           string `json:"date,omitempty"`
	ContractNumber string `json:"contract_number,omitempty"`
	SalesRep       string `json:"sales_rep,omitempty"`
	CustomerName   string `json:"customer_name"`
	Phone          string `json:"phone,omitempty"`
	Address        string `json:"address,omitempty"`
	Email          string `json:"email,omitempty"`
	Equipment      string `json:"equipment,omitempty"`
	SalePriceCents int64  `json:"sale_price_cents,omitempty"`
	FinancedBy     string `json:"financed_by,omitempty"`
	LeadPO         string `json:"lead_po,omitempty"`

	// Source document reference.
	DocumentID   string `json:"document_id"`
	DocumentLink string `json:"document_link,omitempty"`
}

// HasContact reports whether the record carries at least one contact channel.
func (r *ContractRecord) HasContact() bool {
	return r.Phone != "" || r.Address != ""
}

// SalePrice formats the sale price with two fraction digits.
func (r *ContractRecord) SalePrice() string {
	if r.SalePriceCents == 0 {
		return ""
	}
	return fmt.Sprintf("%d.%02d", r.SalePriceCents/100, r.SalePriceCents%100)
}
