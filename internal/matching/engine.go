// internal/matching/engine.go

// Package matching scores, ranks and explains adoptable animals against an
// adopter's preference profile. Everything in it is pure and performs no I/O.
package matching

import (
	"runtime"
	"sort"
)

// Engine ranks candidates with a Strategy. It holds no mutable state and is
// safe for concurrent use.
type Engine struct {
	strategy    Strategy
	parallelism int
}

type Option func(*Engine)

// WithStrategy replaces the default weighted-sum strategy.
func WithStrategy(s Strategy) Option {
	return func(e *Engine) {
		if s != nil {
			e.strategy = s
		}
	}
}

// WithParallelism bounds how many candidates are scored concurrently.
func WithParallelism(n int) Option {
	return func(e *Engine) {
		if n > 0 {
			e.parallelism = n
		}
	}
}

func NewEngine(opts ...Option) *Engine {
	e := &Engine{
		strategy:    WeightedStrategy{},
		parallelism: runtime.NumCPU(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

func (e *Engine) Strategy() Strategy { return e.strategy }

// ModelVersion identifies the strategy stamped on every Match.
func (e *Engine) ModelVersion() string { return ModelVersion(e.strategy) }

// Score scores a single pair.
func (e *Engine) Score(profile AdopterProfile, candidate CandidateRecord) ScoreBreakdown {
	return e.strategy.Score(profile, candidate)
}

// Match scores and explains a single pair without ranking it.
func (e *Engine) Match(profile AdopterProfile, candidate CandidateRecord) Match {
	scores := e.Score(profile, candidate)
	explanation, factors, concerns := Explain(candidate, profile, scores)
	return Match{
		Candidate:         candidate,
		Scores:            scores,
		Explanation:       explanation,
		KeyFactors:        factors,
		PotentialConcerns: concerns,
		ModelVersion:      e.ModelVersion(),
	}
}

// Rank scores every candidate, drops those below minScore, orders the rest
// by overall score descending with ties kept in input order, assigns ranks
// starting at 1 and returns the first min(topK, kept) matches, so a
// non-positive topK yields no matches. Callers resolve an unset topK to
// their configured default before calling.
func (e *Engine) Rank(profile AdopterProfile, candidates []CandidateRecord, topK int, minScore float64) []Match {
	if len(candidates) == 0 {
		return []Match{}
	}

	scored := make([]ScoreBreakdown, len(candidates))
	pool := newWorkerPool(e.parallelism)
	for i := range candidates {
		pool.Submit(func() {
			scored[i] = e.strategy.Score(profile, candidates[i])
		})
	}
	pool.Wait()

	kept := make([]int, 0, len(candidates))
	for i, s := range scored {
		if s.Overall >= minScore {
			kept = append(kept, i)
		}
	}

	sort.SliceStable(kept, func(a, b int) bool {
		return scored[kept[a]].Overall > scored[kept[b]].Overall
	})

	kept = kept[:min(max(topK, 0), len(kept))]

	version := e.ModelVersion()
	matches := make([]Match, len(kept))
	for pos, idx := range kept {
		explanation, factors, concerns := Explain(candidates[idx], profile, scored[idx])
		matches[pos] = Match{
			Candidate:         candidates[idx],
			Scores:            scored[idx],
			Explanation:       explanation,
			KeyFactors:        factors,
			PotentialConcerns: concerns,
			Rank:              pos + 1,
			ModelVersion:      version,
		}
	}
	return matches
}

// ExplainMatch expands a Match for presentation.
func (e *Engine) ExplainMatch(m Match) MatchExplanation {
	return ExplainMatch(m)
}
