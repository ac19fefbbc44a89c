// internal/workers/matching/score-candidate/models.go
package scorecandidate

import "pawmatch-workers/internal/matching"

type Input struct {
	Profile   matching.AdopterProfile   `json:"profile"`
	Candidate *matching.CandidateRecord `json:"candidate"`
}

type Output struct {
	CandidateID       string                  `json:"candidateId"`
	Scores            matching.ScoreBreakdown `json:"scores"`
	Explanation       string                  `json:"explanation"`
	KeyFactors        []string                `json:"keyFactors"`
	PotentialConcerns []string                `json:"potentialConcerns"`
	Tier              string                  `json:"tier"`
	Recommendation    string                  `json:"recommendation"`
	ModelVersion      string                  `json:"modelVersion"`
}
