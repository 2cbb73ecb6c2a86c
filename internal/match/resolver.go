package match

import (
	"github.com/sells-group/contract-intake/internal/model"
)

// DefaultThreshold is the acceptance threshold on the [0,1] similarity scale.
const DefaultThreshold = 0.80

// Resolver maps raw representative names onto canonical registry identities.
// It performs no I/O and is deterministic for a fixed registry.
type Resolver struct {
	registry  *Registry
	threshold float64
}

// NewResolver creates a Resolver. A non-positive threshold selects
// DefaultThreshold.
func NewResolver(registry *Registry, threshold float64) *Resolver {
	if threshold <= 0 {
		threshold = DefaultThreshold
	}
	return &Resolver{registry: registry, threshold: threshold}
}

// Resolve scores the input against every identity's canonical name and
// aliases, taking each identity's best alias score. The top identity wins if
// its score meets the threshold; ties on the top score go to the
// lexicographically first canonical name, which the sorted registry order
// guarantees because only a strictly greater score replaces the leader.
func (r *Resolver) Resolve(raw string) model.MatchResult {
	result := model.MatchResult{Input: raw}
	normInput := normalizeName(raw)
	if normInput == "" {
		return result
	}

	for i := range r.registry.Reps {
		rep := &r.registry.Reps[i]
		score := similarity(normInput, normalizeName(rep.Name))
		for _, alias := range rep.Aliases {
			if s := similarity(normInput, normalizeName(alias)); s > score {
				score = s
			}
		}
		if score > result.Score {
			result.Score = score
			result.Identity = rep.Name
		}
	}

	result.Matched = result.Identity != "" && result.Score >= r.threshold
	return result
}
