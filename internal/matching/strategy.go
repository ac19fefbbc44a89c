// internal/matching/strategy.go
package matching

const (
	WeightedStrategyName    = "weighted-sum"
	WeightedStrategyVersion = "1.0"
)

// Strategy turns one (profile, candidate) pair into a ScoreBreakdown.
// Implementations must be pure and safe for concurrent use.
type Strategy interface {
	Name() string
	Version() string
	Score(profile AdopterProfile, candidate CandidateRecord) ScoreBreakdown
}

// WeightedStrategy is the rule-based weighted-sum model.
type WeightedStrategy struct{}

func (WeightedStrategy) Name() string    { return WeightedStrategyName }
func (WeightedStrategy) Version() string { return WeightedStrategyVersion }

func (WeightedStrategy) Score(profile AdopterProfile, candidate CandidateRecord) ScoreBreakdown {
	u := ExtractUserFeatures(profile)
	p := ExtractPetFeatures(candidate)
	return Combine(
		LifestyleScore(u, p),
		PersonalityScore(u, p),
		PracticalScore(u, p),
		UrgencyBoost(p),
	)
}

// ModelVersion formats a strategy identity as "name/version".
func ModelVersion(s Strategy) string {
	return s.Name() + "/" + s.Version()
}
