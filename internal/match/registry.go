// Package match resolves free-form representative names against the
// configured registry using fuzzy string similarity.
package match

import (
	"os"
	"sort"

	"github.com/rotisserie/eris"
	"gopkg.in/yaml.v3"
)

// Representative is one canonical identity in the registry: the authoritative
// name, the destination ledger reference for that rep, and the alias strings
// their name appears under in contracts.
type Representative struct {
	Name    string   `yaml:"name"`
	Ledger  string   `yaml:"ledger"`
	Aliases []string `yaml:"aliases,omitempty"`
}

// Registry holds the known representatives. It is loaded once at startup and
// read-only for the duration of a run.
type Registry struct {
	Reps []Representative `yaml:"representatives"`

	byName map[string]*Representative
}

// LoadRegistry reads a registry from a YAML file.
func LoadRegistry(path string) (*Registry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, eris.Wrap(err, "match: read registry file")
	}
	var reg Registry
	if err := yaml.Unmarshal(data, &reg); err != nil {
		return nil, eris.Wrap(err, "match: parse registry file")
	}
	if len(reg.Reps) == 0 {
		return nil, eris.Errorf("match: registry %s has no representatives", path)
	}
	reg.index()
	return &reg, nil
}

// NewRegistry builds a registry from explicit entries, for tests and
// programmatic construction.
func NewRegistry(reps []Representative) *Registry {
	reg := &Registry{Reps: reps}
	reg.index()
	return reg
}

func (r *Registry) index() {
	// Sorted canonical order makes the resolver's tie-break deterministic.
	sort.Slice(r.Reps, func(i, j int) bool { return r.Reps[i].Name < r.Reps[j].Name })
	r.byName = make(map[string]*Representative, len(r.Reps))
	for i := range r.Reps {
		r.byName[r.Reps[i].Name] = &r.Reps[i]
	}
}

// Ledger returns the destination ledger reference for a canonical name.
func (r *Registry) Ledger(name string) (string, bool) {
	rep, ok := r.byName[name]
	if !ok {
		return "", false
	}
	return rep.Ledger, true
}

// Names returns the canonical names in lexicographic order.
func (r *Registry) Names() []string {
	names := make([]string, len(r.Reps))
	for i := range r.Reps {
		names[i] = r.Reps[i].Name
	}
	return names
}
