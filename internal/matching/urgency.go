// internal/matching/urgency.go
package matching

import "math"

// MaxUrgencyBoost bounds the additive urgency bonus.
const MaxUrgencyBoost = 0.1

// UrgencyBoost computes the placement-urgency bonus for a candidate. It does
// not depend on the adopter. Days-in-shelter tiers are mutually exclusive and
// only the highest applicable tier counts.
func UrgencyBoost(p PetFeatures) float64 {
	boost := 0.0

	if p.IsUrgent {
		boost += 0.05
	}

	if p.HasDaysInShelter {
		switch {
		case p.DaysInShelter > 180:
			boost += 0.05
		case p.DaysInShelter > 90:
			boost += 0.03
		case p.DaysInShelter > 30:
			boost += 0.01
		}
	}

	if p.Age == ageSenior {
		boost += 0.02
	}

	return round3(math.Min(boost, MaxUrgencyBoost))
}
