// internal/workers/matching/rank-candidates/models.go
package rankcandidates

import "pawmatch-workers/internal/matching"

// Input is the job payload. Candidates left out (or null) are fetched from the
// candidate index; an explicit empty list ranks nothing.
type Input struct {
	RequestID  string                     `json:"requestId,omitempty"`
	Profile    matching.AdopterProfile    `json:"profile"`
	Candidates []matching.CandidateRecord `json:"candidates"`
	TopK       *int                       `json:"topK,omitempty"`
	MinScore   *float64                   `json:"minScore,omitempty"`
}

type Output struct {
	RequestID       string           `json:"requestId"`
	Matches         []matching.Match `json:"matches"`
	TotalCandidates int              `json:"totalCandidates"`
	Returned        int              `json:"returned"`
	Cached          bool             `json:"cached"`
	Source          string           `json:"source"`
	ModelVersion    string           `json:"modelVersion"`
}

const (
	SourceRequest = "request"
	SourceSearch  = "search"
)
