package model

// MatchResult is the outcome of resolving a raw representative name against
// the registry. When Matched is false, Identity holds the best-scoring
// candidate for triage and Score its similarity.
type MatchResult struct {
	Matched  bool    `json:"matched"`
	Identity string  `json:"identity"`
	Score    float64 `json:"score"`

	// Input is the raw name as it appeared in the document.
	Input string `json:"input"`
}
