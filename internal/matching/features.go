// internal/matching/features.go
package matching

// Ordinal encodings shared by every scorer.
const (
	experienceFirstTime = 0
	experienceSome      = 1
	experienceSkilled   = 2
	experienceExpert    = 3

	energyLow      = 0
	energyModerate = 1
	energyHigh     = 2

	sizeSmall      = 0
	sizeMedium     = 1
	sizeLarge      = 2
	sizeExtraLarge = 3

	ageBaby   = 0
	ageYoung  = 1
	ageAdult  = 2
	ageSenior = 3
)

// UserFeatures is the flat projection of an AdopterProfile. Every field is
// defined regardless of which profile fields were supplied.
type UserFeatures struct {
	HomeIsApartment bool
	HomeIsHouse     bool
	HasYard         bool
	YardFenced      bool

	HasChildren  bool
	HasOtherPets bool
	OwnsDog      bool
	OwnsCat      bool

	Experience int
	Activity   int

	HoursAlone      int
	HasHoursAlone   bool
	ExerciseMinutes int
	HasExercise     bool

	RequiresGoodWithChildren bool
	RequiresGoodWithDogs     bool
	RequiresGoodWithCats     bool
	RequiresHouseTrained     bool
	RequiresHypoallergenic   bool
	SpecialNeedsOK           bool
}

// PetFeatures is the flat projection of a CandidateRecord.
type PetFeatures struct {
	Size   int
	Age    int
	Energy int

	GoodWithChildren float64
	GoodWithDogs     float64
	GoodWithCats     float64
	Hypoallergenic   float64

	HouseTrained   bool
	SpecialNeeds   bool
	SpayedNeutered bool

	IsUrgent         bool
	DaysInShelter    int
	HasDaysInShelter bool
}

// ExtractUserFeatures projects a profile onto UserFeatures.
func ExtractUserFeatures(profile AdopterProfile) UserFeatures {
	f := UserFeatures{
		HomeIsApartment: profile.HomeType == HomeApartment,
		HomeIsHouse:     profile.HomeType == HomeHouse,
		HasYard:         profile.HasYard,
		YardFenced:      profile.HasYard && profile.YardFenced,
		HasChildren:     profile.HasChildren,
		HasOtherPets:    profile.HasOtherPets || len(profile.OtherPets) > 0,
		Experience:      encodeExperience(profile.Experience),
		Activity:        encodeActivity(profile.ActivityLevel),

		RequiresGoodWithChildren: profile.Requirements.GoodWithChildren,
		RequiresGoodWithDogs:     profile.Requirements.GoodWithDogs,
		RequiresGoodWithCats:     profile.Requirements.GoodWithCats,
		RequiresHouseTrained:     profile.Requirements.HouseTrained,
		RequiresHypoallergenic:   profile.Requirements.Hypoallergenic,
		SpecialNeedsOK:           profile.Requirements.SpecialNeedsOK,
	}

	// An adopter who reports other pets without naming them is checked
	// against both dogs and cats.
	if f.HasOtherPets {
		if len(profile.OtherPets) == 0 {
			f.OwnsDog = true
			f.OwnsCat = true
		}
		for _, s := range profile.OtherPets {
			switch s {
			case SpeciesDog:
				f.OwnsDog = true
			case SpeciesCat:
				f.OwnsCat = true
			}
		}
	}

	// Unreported hours and exercise skip their lifestyle checks instead of
	// assuming a default, so a silent profile leaves lifestyle at the neutral
	// score.
	if profile.HoursAlone != nil {
		f.HoursAlone = *profile.HoursAlone
		f.HasHoursAlone = true
	}
	if profile.ExerciseMinutes != nil {
		f.ExerciseMinutes = *profile.ExerciseMinutes
		f.HasExercise = true
	}

	return f
}

// ExtractPetFeatures projects a candidate onto PetFeatures.
func ExtractPetFeatures(candidate CandidateRecord) PetFeatures {
	f := PetFeatures{
		Size:             encodeSize(candidate.Size),
		Age:              encodeAge(candidate.Age),
		Energy:           encodeActivity(candidate.Energy),
		GoodWithChildren: encodeTriState(candidate.GoodWithChildren),
		GoodWithDogs:     encodeTriState(candidate.GoodWithDogs),
		GoodWithCats:     encodeTriState(candidate.GoodWithCats),
		Hypoallergenic:   encodeTriState(candidate.Hypoallergenic),
		HouseTrained:     candidate.HouseTrained,
		SpecialNeeds:     candidate.SpecialNeeds,
		SpayedNeutered:   candidate.SpayedNeutered,
		IsUrgent:         candidate.Urgent,
	}

	if candidate.DaysInShelter != nil && *candidate.DaysInShelter >= 0 {
		f.DaysInShelter = *candidate.DaysInShelter
		f.HasDaysInShelter = true
	}

	return f
}

func encodeExperience(level ExperienceLevel) int {
	switch level {
	case ExperienceFirstTime:
		return experienceFirstTime
	case ExperienceSkilled:
		return experienceSkilled
	case ExperienceExpert:
		return experienceExpert
	default:
		return experienceSome
	}
}

func encodeActivity(level ActivityLevel) int {
	switch level {
	case ActivityLow:
		return energyLow
	case ActivityHigh:
		return energyHigh
	default:
		return energyModerate
	}
}

func encodeSize(size Size) int {
	switch size {
	case SizeSmall:
		return sizeSmall
	case SizeLarge:
		return sizeLarge
	case SizeExtraLarge:
		return sizeExtraLarge
	default:
		return sizeMedium
	}
}

func encodeAge(age AgeGroup) int {
	switch age {
	case AgeBaby:
		return ageBaby
	case AgeYoung:
		return ageYoung
	case AgeSenior:
		return ageSenior
	default:
		return ageAdult
	}
}

func encodeTriState(t TriState) float64 {
	switch t {
	case Yes:
		return 1.0
	case No:
		return -1.0
	default:
		return 0.0
	}
}
