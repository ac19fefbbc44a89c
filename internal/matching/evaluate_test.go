// internal/matching/evaluate_test.go
package matching

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRankingMetrics(t *testing.T) {
	recommended := []string{"a", "b", "c", "d", "e", "f"}
	relevant := idSet([]string{"a", "c", "x"})

	assert.InDelta(t, 0.4, PrecisionAtK(recommended, relevant, 5), 1e-9)
	assert.InDelta(t, 2.0/3.0, RecallAtK(recommended, relevant, 10), 1e-9)
	assert.InDelta(t, 1.0, ReciprocalRank(recommended, relevant), 1e-9)

	dcg := 1.0 + 1.0/math.Log2(4)
	idcg := 1.0 + 1.0/math.Log2(3) + 1.0/math.Log2(4)
	assert.InDelta(t, dcg/idcg, NDCGAtK(recommended, relevant, 10), 1e-9)
}

func TestRankingMetrics_EdgeCases(t *testing.T) {
	none := idSet(nil)

	assert.Equal(t, 0.0, PrecisionAtK(nil, idSet([]string{"a"}), 5))
	assert.Equal(t, 0.0, RecallAtK([]string{"a"}, none, 10))
	assert.Equal(t, 0.0, ReciprocalRank([]string{"a", "b"}, idSet([]string{"z"})))
	assert.Equal(t, 0.0, NDCGAtK([]string{"a"}, none, 10))
	assert.InDelta(t, 0.5, ReciprocalRank([]string{"a", "b"}, idSet([]string{"b"})), 1e-9)
	assert.InDelta(t, 1.0, NDCGAtK([]string{"a", "b"}, idSet([]string{"a", "b"}), 10), 1e-9)
}

func TestEvaluate(t *testing.T) {
	engine := NewEngine(WithStrategy(fixedStrategy{"good": 0.9, "okay": 0.7, "poor": 0.3}))

	cases := []EvaluationCase{
		{
			Name:        "relevant first",
			Candidates:  []CandidateRecord{{ID: "okay"}, {ID: "good"}, {ID: "poor"}},
			RelevantIDs: []string{"good"},
		},
		{
			Name:        "relevant filtered out",
			Candidates:  []CandidateRecord{{ID: "good"}, {ID: "poor"}},
			RelevantIDs: []string{"poor"},
		},
	}

	metrics := engine.Evaluate(cases, 0.5)

	assert.Equal(t, 2, metrics.Cases)
	assert.InDelta(t, 0.25, metrics.PrecisionAt5, 1e-9)
	assert.InDelta(t, 0.5, metrics.RecallAt10, 1e-9)
	assert.InDelta(t, 0.5, metrics.MRR, 1e-9)
	assert.InDelta(t, 0.5, metrics.NDCGAt10, 1e-9)
}

func TestEvaluate_NoCases(t *testing.T) {
	metrics := NewEngine().Evaluate(nil, 0.5)
	assert.Equal(t, EvaluationMetrics{}, metrics)
}
