// internal/matching/combiner.go
package matching

// Component weights. Lifestyle, personality and practical sum to 0.9 and the
// urgency boost, bounded by MaxUrgencyBoost, adds at most 0.01.
const (
	WeightLifestyle   = 0.40
	WeightPersonality = 0.30
	WeightPractical   = 0.20
	WeightUrgency     = 0.10
)

// Combine fills in Overall from the four rounded components.
func Combine(lifestyle, personality, practical, urgency float64) ScoreBreakdown {
	return ScoreBreakdown{
		Lifestyle:    lifestyle,
		Personality:  personality,
		Practical:    practical,
		UrgencyBoost: urgency,
		Overall: round3(lifestyle*WeightLifestyle +
			personality*WeightPersonality +
			practical*WeightPractical +
			urgency*WeightUrgency),
	}
}
