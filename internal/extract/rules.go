package extract

import (
	"os"
	"regexp"

	"github.com/rotisserie/eris"
	"gopkg.in/yaml.v3"
)

// Field keys produced by the extractor. Required fields are customer_name
// plus at least one contact field (phone or address).
const (
	FieldDate           = "date"
	FieldContractNumber = "contract_number"
	FieldSalesRep       = "sales_rep"
	FieldCustomerName   = "customer_name"
	FieldPhone          = "phone"
	FieldAddress        = "address"
	FieldEmail          = "email"
	FieldEquipment      = "equipment"
	FieldSalePrice      = "sale_price"
	FieldFinancedBy     = "financed_by"
	FieldLeadPO         = "lead_po"
)

// Rule maps a field key to an ordered list of pattern candidates. Candidates
// are tried in declaration order; the first pattern with a non-empty capture
// wins for that field.
type Rule struct {
	Field    string   `yaml:"field"`
	Patterns []string `yaml:"patterns"`

	compiled []*regexp.Regexp
}

// RuleTable is an ordered set of extraction rules, one per field.
type RuleTable struct {
	Rules []Rule `yaml:"rules"`
}

// Compile pre-compiles every pattern. Patterns are matched case-insensitively
// in multiline mode, mirroring how contracts interleave labels and values.
func (t *RuleTable) Compile() error {
	for i := range t.Rules {
		r := &t.Rules[i]
		if r.Field == "" {
			return eris.Errorf("extract: rule %d has no field", i)
		}
		r.compiled = r.compiled[:0]
		for _, p := range r.Patterns {
			re, err := regexp.Compile(`(?im)` + p)
			if err != nil {
				return eris.Wrapf(err, "extract: compile pattern for %s", r.Field)
			}
			r.compiled = append(r.compiled, re)
		}
	}
	return nil
}

// LoadRules reads a rule table from a YAML file and compiles it.
func LoadRules(path string) (*RuleTable, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, eris.Wrap(err, "extract: read rules file")
	}
	var t RuleTable
	if err := yaml.Unmarshal(data, &t); err != nil {
		return nil, eris.Wrap(err, "extract: parse rules file")
	}
	if err := t.Compile(); err != nil {
		return nil, err
	}
	return &t, nil
}

// DefaultRules returns the built-in rule table for the standard contract
// layout. Deployments with a different layout override it with a rules file.
func DefaultRules() *RuleTable {
	t := &RuleTable{Rules: []Rule{
		{Field: FieldContractNumber, Patterns: []string{
			`Contract\s*#?\s*:?\s*([A-Z0-9\-]{4,})`,
			`Contract\s+Number\s*:?\s*([A-Z0-9\-]{4,})`,
		}},
		// Name values never span lines, so intra-value whitespace is
		// [ \t] rather than \s.
		{Field: FieldSalesRep, Patterns: []string{
			`Sales[ \t]*(?:Rep(?:resentative)?|person)(?:[ \t]+Name)?[ \t]*:?[ \t]*([A-Z][a-zA-Z\.]+(?:[ \t]+[A-Z][a-zA-Z\.]+){1,3})`,
			`Nombre[ \t]+del[ \t]+vendedor[ \t]*:?[ \t]*([A-Z][a-zA-Z\.]+(?:[ \t]+[A-Z][a-zA-Z\.]+){1,3})`,
			`Agent[ \t]*:?[ \t]*([A-Z][a-zA-Z\.]+(?:[ \t]+[A-Z][a-zA-Z\.]+){1,3})`,
		}},
		{Field: FieldCustomerName, Patterns: []string{
			`Customer[ \t]*Name[ \t]*:?[ \t]*([A-Z][a-zA-Z'\-]+(?:[ \t]+[A-Z][a-zA-Z'\-]+){0,3})`,
			`Apellido[ \t]+del[ \t]+Cliente[ \t]*:?[ \t]*([A-Z][a-zA-Z'\-]+(?:[ \t]+[A-Z][a-zA-Z'\-]+){0,3})`,
			`\bName[ \t]*:?[ \t]*([A-Z][a-zA-Z'\-]+(?:[ \t]+[A-Z][a-zA-Z'\-]+){0,3})`,
		}},
		{Field: FieldPhone, Patterns: []string{
			`Phone\s*(?:Number)?\s*:?\s*(\(?\d{3}\)?[-.\s]?\d{3}[-.\s]?\d{4})`,
			`Contact\s*:?\s*(\(?\d{3}\)?[-.\s]?\d{3}[-.\s]?\d{4})`,
			`(\d{3}[-.\s]\d{3}[-.\s]\d{4})`,
		}},
		{Field: FieldAddress, Patterns: []string{
			`(?:Service\s+|Customer\s+)?Address\s*:?[ \t]*(.+)$`,
			`(\d+\s+[A-Z]{1,2}\s+\d+(?:st|nd|rd|th)?\s+[A-Z][a-zA-Z]*(?:\s+[A-Z][a-zA-Z]*)*)`,
		}},
		{Field: FieldEmail, Patterns: []string{
			`([a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,})`,
		}},
		{Field: FieldEquipment, Patterns: []string{
			`Equipment\s*:?[ \t]*(.+)$`,
			`\b(EC5|ECS|E\.C\.5|ES5|TCM|T\.C\.|BCM|QRS|Q\.R\.S|R\.O\.|ALKALINE|ALK|AIRMASTER|CLEAN START|ULTRAVIOLET|UV|PFAS|HYDRO|HYD|OXY|OXYGEN|COOLER|RO)\b`,
		}},
		{Field: FieldSalePrice, Patterns: []string{
			`Contract\s+Price\s*:?\s*\$?\s*([\d,]+(?:\.\d{1,2})?)`,
			`Precio\s+del\s+Contrato\s*:?\s*\$?\s*([\d,]+(?:\.\d{1,2})?)`,
			`Total\s*:?\s*\$?\s*([\d,]+(?:\.\d{1,2})?)`,
		}},
		{Field: FieldFinancedBy, Patterns: []string{
			`Payment\s+Method\s*:?\s*([A-Za-z]+)`,
			`Meta\s+de\s+Pago\s*:?\s*([A-Za-z]+)`,
			`Financed?\s+By\s*:?\s*([A-Za-z]+)`,
		}},
		{Field: FieldLeadPO, Patterns: []string{
			`Lead/PO#?\s*:?\s*([A-Z0-9]+)`,
			`\b(F\d{8,})\b`,
		}},
		{Field: FieldDate, Patterns: []string{
			`(?:Contract\s+)?Date\s*:?\s*(\d{1,2}[/\-]\d{1,2}[/\-]\d{2,4})`,
			`(\d{1,2}/\d{1,2}/\d{4})`,
		}},
	}}
	// Built-in patterns are constants; a compile failure here is a programming error.
	if err := t.Compile(); err != nil {
		panic(err)
	}
	return t
}

// apply runs the rule's candidates in order against text and returns the
// first non-empty capture.
func (r *Rule) apply(text string) string {
	for _, re := range r.compiled {
		m := re.FindStringSubmatch(text)
		if len(m) > 1 && m[1] != "" {
			return m[1]
		}
		if len(m) == 1 && m[0] != "" {
			return m[0]
		}
	}
	return ""
}
