// internal/matching/explain.go
package matching

import (
	"fmt"
	"strings"
)

const maxSummarizedFactors = 3

// Explain builds the rationale for one scored pair. Key factors and concerns
// come from the same sub-checks the scorers evaluated, so a statement is only
// made when the matching score reflects it.
func Explain(candidate CandidateRecord, profile AdopterProfile, scores ScoreBreakdown) (string, []string, []string) {
	u := ExtractUserFeatures(profile)
	p := ExtractPetFeatures(candidate)

	factors := newStatementList()
	concerns := newStatementList()

	for _, c := range lifestyleChecks(u, p) {
		factors.add(c.factor)
		concerns.add(c.concern)
	}
	for _, c := range personalityChecks(u, p) {
		factors.add(c.factor)
		concerns.add(c.concern)
	}
	for _, pen := range practicalChecks(u, p) {
		factors.add(pen.factor)
		concerns.add(pen.concern)
	}

	name := candidate.DisplayName()
	parts := []string{introSentence(name, scores.Overall)}

	if len(factors.items) > 0 {
		top := factors.items
		if len(top) > maxSummarizedFactors {
			top = top[:maxSummarizedFactors]
		}
		parts = append(parts, "Key strengths: "+strings.Join(top, ", ")+".")
	}

	if candidate.Urgent {
		parts = append(parts, fmt.Sprintf("%s needs a home urgently and would benefit from quick placement.", name))
	}

	return strings.Join(parts, " "), factors.items, concerns.items
}

func introSentence(name string, overall float64) string {
	switch {
	case overall >= 0.8:
		return fmt.Sprintf("%s is an excellent match for you!", name)
	case overall >= 0.6:
		return fmt.Sprintf("%s is a good match for you.", name)
	default:
		return fmt.Sprintf("%s could be a potential match.", name)
	}
}

// statementList keeps insertion order and drops empty or repeated entries.
type statementList struct {
	items []string
	seen  map[string]struct{}
}

func newStatementList() *statementList {
	return &statementList{items: []string{}, seen: make(map[string]struct{})}
}

func (l *statementList) add(s string) {
	if s == "" {
		return
	}
	if _, ok := l.seen[s]; ok {
		return
	}
	l.seen[s] = struct{}{}
	l.items = append(l.items, s)
}

// Tier labels for presentation.
const (
	TierExcellent = "Excellent Match"
	TierGreat     = "Great Match"
	TierGood      = "Good Match"
	TierFair      = "Fair Match"
	TierPoor      = "Poor Match"
)

// ComponentExplanation labels one weighted score component.
type ComponentExplanation struct {
	Name        string  `json:"name"`
	Score       float64 `json:"score"`
	Weight      float64 `json:"weight"`
	WeightLabel string  `json:"weightLabel"`
	Description string  `json:"description"`
}

// MatchExplanation is the presentation-ready expansion of a Match.
type MatchExplanation struct {
	CandidateID    string                 `json:"candidateId"`
	CandidateName  string                 `json:"candidateName"`
	OverallScore   float64                `json:"overallScore"`
	Breakdown      []ComponentExplanation `json:"breakdown"`
	Explanation    string                 `json:"explanation"`
	Strengths      []string               `json:"strengths"`
	Considerations []string               `json:"considerations"`
	Tier           string                 `json:"tier"`
	Recommendation string                 `json:"recommendation"`
	ModelVersion   string                 `json:"modelVersion,omitempty"`
}

// ExplainMatch expands a Match into labelled components, rationale and a tier.
func ExplainMatch(m Match) MatchExplanation {
	tier, recommendation := TierFor(m.Scores.Overall)
	return MatchExplanation{
		CandidateID:   m.Candidate.ID,
		CandidateName: m.Candidate.DisplayName(),
		OverallScore:  m.Scores.Overall,
		Breakdown: []ComponentExplanation{
			{
				Name:        "lifestyle_compatibility",
				Score:       m.Scores.Lifestyle,
				Weight:      WeightLifestyle,
				WeightLabel: "40%",
				Description: "How well the pet fits your lifestyle and home environment",
			},
			{
				Name:        "personality_match",
				Score:       m.Scores.Personality,
				Weight:      WeightPersonality,
				WeightLabel: "30%",
				Description: "Compatibility of pet's personality with your preferences",
			},
			{
				Name:        "practical_factors",
				Score:       m.Scores.Practical,
				Weight:      WeightPractical,
				WeightLabel: "20%",
				Description: "Meeting practical requirements and constraints",
			},
			{
				Name:        "urgency",
				Score:       m.Scores.UrgencyBoost,
				Weight:      WeightUrgency,
				WeightLabel: "10%",
				Description: "Priority boost for pets needing urgent placement",
			},
		},
		Explanation:    m.Explanation,
		Strengths:      nonNil(m.KeyFactors),
		Considerations: nonNil(m.PotentialConcerns),
		Tier:           tier,
		Recommendation: recommendation,
		ModelVersion:   m.ModelVersion,
	}
}

// TierFor maps an overall score to its tier and recommendation text.
func TierFor(overall float64) (string, string) {
	switch {
	case overall >= 0.85:
		return TierExcellent, "Excellent Match - Highly Recommended"
	case overall >= 0.70:
		return TierGreat, "Great Match - Strongly Recommended"
	case overall >= 0.60:
		return TierGood, "Good Match - Recommended"
	case overall >= 0.50:
		return TierFair, "Fair Match - Consider with Caution"
	default:
		return TierPoor, "Poor Match - Not Recommended"
	}
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
