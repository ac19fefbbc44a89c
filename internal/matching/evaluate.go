// internal/matching/evaluate.go
package matching

import "math"

// EvaluationCase is one labelled ranking scenario.
type EvaluationCase struct {
	Name        string            `json:"name"`
	Profile     AdopterProfile    `json:"profile"`
	Candidates  []CandidateRecord `json:"candidates"`
	RelevantIDs []string          `json:"relevantIds"`
}

// EvaluationMetrics are averaged over every evaluated case.
type EvaluationMetrics struct {
	Cases        int     `json:"cases"`
	PrecisionAt5 float64 `json:"precisionAt5"`
	RecallAt10   float64 `json:"recallAt10"`
	MRR          float64 `json:"mrr"`
	NDCGAt10     float64 `json:"ndcgAt10"`
}

// Evaluate ranks every case with a top 10 cutoff and averages the offline
// ranking metrics.
func (e *Engine) Evaluate(cases []EvaluationCase, minScore float64) EvaluationMetrics {
	metrics := EvaluationMetrics{Cases: len(cases)}
	if len(cases) == 0 {
		return metrics
	}

	for _, c := range cases {
		matches := e.Rank(c.Profile, c.Candidates, 10, minScore)
		recommended := make([]string, len(matches))
		for i, m := range matches {
			recommended[i] = m.Candidate.ID
		}
		relevant := idSet(c.RelevantIDs)

		metrics.PrecisionAt5 += PrecisionAtK(recommended, relevant, 5)
		metrics.RecallAt10 += RecallAtK(recommended, relevant, 10)
		metrics.MRR += ReciprocalRank(recommended, relevant)
		metrics.NDCGAt10 += NDCGAtK(recommended, relevant, 10)
	}

	n := float64(len(cases))
	metrics.PrecisionAt5 /= n
	metrics.RecallAt10 /= n
	metrics.MRR /= n
	metrics.NDCGAt10 /= n
	return metrics
}

// PrecisionAtK is the share of the first k recommendations that are relevant.
// The denominator is the number of recommendations actually returned.
func PrecisionAtK(recommended []string, relevant map[string]struct{}, k int) float64 {
	top := head(recommended, k)
	if len(top) == 0 {
		return 0.0
	}
	return float64(countRelevant(top, relevant)) / float64(len(top))
}

// RecallAtK is the share of relevant items found in the first k recommendations.
func RecallAtK(recommended []string, relevant map[string]struct{}, k int) float64 {
	if len(relevant) == 0 {
		return 0.0
	}
	return float64(countRelevant(head(recommended, k), relevant)) / float64(len(relevant))
}

// ReciprocalRank is 1/rank of the first relevant recommendation.
func ReciprocalRank(recommended []string, relevant map[string]struct{}) float64 {
	for i, id := range recommended {
		if _, ok := relevant[id]; ok {
			return 1.0 / float64(i+1)
		}
	}
	return 0.0
}

// NDCGAtK uses binary relevance and a log2(position+1) discount.
func NDCGAtK(recommended []string, relevant map[string]struct{}, k int) float64 {
	dcg := 0.0
	for i, id := range head(recommended, k) {
		if _, ok := relevant[id]; ok {
			dcg += 1.0 / math.Log2(float64(i+2))
		}
	}

	ideal := len(relevant)
	if ideal > k {
		ideal = k
	}
	idcg := 0.0
	for i := 0; i < ideal; i++ {
		idcg += 1.0 / math.Log2(float64(i+2))
	}

	if idcg == 0 {
		return 0.0
	}
	return dcg / idcg
}

func idSet(ids []string) map[string]struct{} {
	set := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		set[id] = struct{}{}
	}
	return set
}

func head(ids []string, k int) []string {
	if k >= 0 && len(ids) > k {
		return ids[:k]
	}
	return ids
}

func countRelevant(ids []string, relevant map[string]struct{}) int {
	n := 0
	for _, id := range ids {
		if _, ok := relevant[id]; ok {
			n++
		}
	}
	return n
}
