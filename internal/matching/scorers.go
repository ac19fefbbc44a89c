// internal/matching/scorers.go
package matching

import (
	"fmt"
	"math"
)

// neutralScore is returned by a scorer when none of its sub-checks apply.
const neutralScore = 0.5

// Practical penalty amounts.
const (
	penaltyNotGoodWith    = 0.5
	penaltyUnknownWith    = 0.2
	penaltyHouseTrained   = 0.3
	penaltyHypoallergenic = 0.3
	penaltySpecialNeeds   = 0.4
	penaltySeniorNovice   = 0.2
)

// Concern and factor texts. The practical penalties each own a concern text
// that nothing else emits.
const (
	factorApartmentSize   = "Size is well suited to apartment living"
	concernApartmentSize  = "Large size may be challenging in an apartment"
	factorFencedYard      = "Your fenced yard is ideal for a larger pet"
	factorYard            = "Your yard gives a larger pet room to roam"
	concernNoYard         = "Larger pets usually do best with yard space"
	factorSchedule        = "Your daily schedule suits its energy level"
	factorExercise        = "Your exercise routine matches its energy level"
	concernExercise       = "Needs more daily exercise than you plan to provide"
	concernHighEnergy     = "Much more energetic than your preferred activity level"
	concernLowEnergy      = "Much calmer than your preferred activity level"
	factorExperienceFit   = "Your experience suits its special needs"
	factorFirstTimeOwner  = "Good fit for a first-time owner"
	concernNeedsExpertise = "Special needs care can be demanding without prior experience"
	concernEnergyNovice   = "High energy can be demanding for a first-time owner"
	factorHouseTrained    = "Already house trained"
	concernHouseTrained   = "Not yet house trained"
	factorHypoallergenic  = "Hypoallergenic"
	concernHypoallergenic = "Not hypoallergenic"
	factorSpecialNeedsOK  = "You're open to its special needs"
	concernSpecialNeeds   = "Has special needs that require extra care"
	concernSeniorNovice   = "Senior pets can need more care than a first-time owner expects"
)

func goodWithFactor(subject string) string    { return "Good with " + subject }
func notGoodWithConcern(subject string) string { return "May not be good with " + subject }
func unknownWithConcern(subject string) string { return "Unknown how it does with " + subject }

// householdConcern is the personality-only counterpart of notGoodWithConcern,
// used when the adopter lives with the subject but did not require the flag.
func householdConcern(subject string) string {
	return "May not do well with the " + subject + " in your home"
}

// check is one evaluated sub-check of an averaging scorer together with the
// statements it supports.
type check struct {
	score   float64
	factor  string
	concern string
}

// penalty is one violated or satisfied hard requirement.
type penalty struct {
	amount  float64
	factor  string
	concern string
}

// compatibility is a behavioral flag the adopter cares about.
type compatibility struct {
	subject  string
	flag     float64
	required bool
}

// LifestyleScore rates how the candidate fits the adopter's home and routine.
func LifestyleScore(u UserFeatures, p PetFeatures) float64 {
	return average(lifestyleChecks(u, p))
}

// PersonalityScore rates behavioral and temperament compatibility.
func PersonalityScore(u UserFeatures, p PetFeatures) float64 {
	return average(personalityChecks(u, p))
}

// PracticalScore starts at 1.0 and subtracts a penalty per unmet hard requirement.
func PracticalScore(u UserFeatures, p PetFeatures) float64 {
	score := 1.0
	for _, pen := range practicalChecks(u, p) {
		score -= pen.amount
	}
	return round3(math.Max(score, 0.0))
}

func lifestyleChecks(u UserFeatures, p PetFeatures) []check {
	var checks []check

	if u.HomeIsApartment {
		if p.Size <= sizeMedium {
			checks = append(checks, check{score: 1.0, factor: factorApartmentSize})
		} else {
			checks = append(checks, check{score: 0.3, concern: concernApartmentSize})
		}
	}

	if p.Size >= sizeLarge {
		switch {
		case u.YardFenced:
			checks = append(checks, check{score: 1.0, factor: factorFencedYard})
		case u.HasYard:
			checks = append(checks, check{score: 1.0, factor: factorYard})
		default:
			checks = append(checks, check{score: 0.5, concern: concernNoYard})
		}
	}

	if u.HasHoursAlone {
		c := check{score: hoursAloneScore(u.HoursAlone, p.Energy)}
		if c.score >= 0.9 {
			c.factor = factorSchedule
		} else if c.score <= 0.5 {
			c.concern = fmt.Sprintf("May struggle being alone %d hours a day", u.HoursAlone)
		}
		checks = append(checks, c)
	}

	if u.HasExercise {
		m := u.ExerciseMinutes
		switch {
		case m >= 60 && p.Energy >= energyModerate,
			m <= 30 && p.Energy == energyLow,
			absInt(m-30) < 15 && p.Energy == energyModerate:
			checks = append(checks, check{score: 1.0, factor: factorExercise})
		case p.Energy == energyHigh && m < 30:
			checks = append(checks, check{score: 0.6, concern: concernExercise})
		default:
			checks = append(checks, check{score: 0.6})
		}
	}

	return checks
}

// hoursAloneScore looks up the (hours alone bracket, energy) table.
func hoursAloneScore(hours, energy int) float64 {
	switch {
	case hours <= 4:
		if energy >= energyModerate {
			return 0.9
		}
		return 0.7
	case hours <= 8:
		switch energy {
		case energyModerate:
			return 1.0
		case energyLow:
			return 0.8
		default:
			return 0.5
		}
	default:
		if energy == energyLow {
			return 1.0
		}
		return 0.4
	}
}

// compatibilities lists the behavioral flags the adopter's household makes relevant.
func compatibilities(u UserFeatures, p PetFeatures) []compatibility {
	var out []compatibility
	if u.HasChildren || u.RequiresGoodWithChildren {
		out = append(out, compatibility{subject: "children", flag: p.GoodWithChildren, required: u.RequiresGoodWithChildren})
	}
	if u.OwnsDog || u.RequiresGoodWithDogs {
		out = append(out, compatibility{subject: "dogs", flag: p.GoodWithDogs, required: u.RequiresGoodWithDogs})
	}
	if u.OwnsCat || u.RequiresGoodWithCats {
		out = append(out, compatibility{subject: "cats", flag: p.GoodWithCats, required: u.RequiresGoodWithCats})
	}
	return out
}

func personalityChecks(u UserFeatures, p PetFeatures) []check {
	var checks []check

	for _, c := range compatibilities(u, p) {
		ch := check{score: 0.5 + c.flag*0.5}
		switch {
		case c.flag > 0:
			ch.factor = goodWithFactor(c.subject)
		case c.flag < 0 && c.required:
			ch.concern = notGoodWithConcern(c.subject)
		case c.flag < 0:
			ch.concern = householdConcern(c.subject)
		}
		checks = append(checks, ch)
	}

	// Activity and experience always run; unset levels were encoded as
	// moderate and some-experience.
	switch absInt(u.Activity - p.Energy) {
	case 0:
		checks = append(checks, check{score: 1.0, factor: activityFactor(p.Energy)})
	case 1:
		checks = append(checks, check{score: 0.6})
	default:
		ch := check{score: 0.3, concern: concernLowEnergy}
		if p.Energy > u.Activity {
			ch.concern = concernHighEnergy
		}
		checks = append(checks, ch)
	}

	switch {
	case p.SpecialNeeds:
		switch {
		case u.Experience >= experienceSkilled:
			checks = append(checks, check{score: 1.0, factor: factorExperienceFit})
		case u.Experience == experienceSome:
			checks = append(checks, check{score: 0.5})
		default:
			checks = append(checks, check{score: 0.2, concern: concernNeedsExpertise})
		}
	case p.Energy == energyHigh:
		if u.Experience >= experienceSome {
			checks = append(checks, check{score: 1.0})
		} else {
			checks = append(checks, check{score: 0.6, concern: concernEnergyNovice})
		}
	default:
		ch := check{score: 1.0}
		if u.Experience == experienceFirstTime && p.Energy == energyLow {
			ch.factor = factorFirstTimeOwner
		}
		checks = append(checks, ch)
	}

	return checks
}

func activityFactor(energy int) string {
	switch energy {
	case energyLow:
		return "Low energy level matches your lifestyle"
	case energyHigh:
		return "High energy level matches your active lifestyle"
	default:
		return "Moderate energy level fits your routine"
	}
}

func practicalChecks(u UserFeatures, p PetFeatures) []penalty {
	var out []penalty

	for _, c := range compatibilities(u, p) {
		if !c.required {
			continue
		}
		switch {
		case c.flag < 0:
			out = append(out, penalty{amount: penaltyNotGoodWith, concern: notGoodWithConcern(c.subject)})
		case c.flag == 0:
			out = append(out, penalty{amount: penaltyUnknownWith, concern: unknownWithConcern(c.subject)})
		default:
			out = append(out, penalty{factor: goodWithFactor(c.subject)})
		}
	}

	if u.RequiresHouseTrained {
		if p.HouseTrained {
			out = append(out, penalty{factor: factorHouseTrained})
		} else {
			out = append(out, penalty{amount: penaltyHouseTrained, concern: concernHouseTrained})
		}
	}

	if u.RequiresHypoallergenic {
		switch {
		case p.Hypoallergenic > 0:
			out = append(out, penalty{factor: factorHypoallergenic})
		case p.Hypoallergenic < 0:
			out = append(out, penalty{amount: penaltyHypoallergenic, concern: concernHypoallergenic})
		}
	}

	if p.SpecialNeeds {
		if u.SpecialNeedsOK {
			out = append(out, penalty{factor: factorSpecialNeedsOK})
		} else {
			out = append(out, penalty{amount: penaltySpecialNeeds, concern: concernSpecialNeeds})
		}
	}

	if p.Age == ageSenior && u.Experience == experienceFirstTime {
		out = append(out, penalty{amount: penaltySeniorNovice, concern: concernSeniorNovice})
	}

	return out
}

func average(checks []check) float64 {
	if len(checks) == 0 {
		return neutralScore
	}
	total := 0.0
	for _, c := range checks {
		total += c.score
	}
	return round3(total / float64(len(checks)))
}

func round3(v float64) float64 {
	return math.Round(v*1000) / 1000
}

func absInt(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
