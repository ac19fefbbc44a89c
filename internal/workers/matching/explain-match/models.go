// internal/workers/matching/explain-match/models.go
package explainmatch

import "pawmatch-workers/internal/matching"

// Input carries a Match produced by rank-candidates or score-candidate. When
// the match has no rationale text and a profile is supplied, the rationale is
// regenerated from the scores.
type Input struct {
	Match   *matching.Match          `json:"match"`
	Profile *matching.AdopterProfile `json:"profile,omitempty"`
}

type Output struct {
	matching.MatchExplanation
	Rank int `json:"rank,omitempty"`
}
