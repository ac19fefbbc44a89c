// internal/matching/types.go
package matching

import (
	"bytes"
	"fmt"
)

type HomeType string

const (
	HomeHouse     HomeType = "house"
	HomeApartment HomeType = "apartment"
	HomeCondo     HomeType = "condo"
	HomeTownhouse HomeType = "townhouse"
	HomeFarm      HomeType = "farm"
	HomeOther     HomeType = "other"
)

type ExperienceLevel string

const (
	ExperienceFirstTime ExperienceLevel = "first_time"
	ExperienceSome      ExperienceLevel = "some_experience"
	ExperienceSkilled   ExperienceLevel = "experienced"
	ExperienceExpert    ExperienceLevel = "expert"
)

// ActivityLevel is shared by the adopter's declared activity preference and
// the candidate's energy level.
type ActivityLevel string

const (
	ActivityLow      ActivityLevel = "low"
	ActivityModerate ActivityLevel = "moderate"
	ActivityHigh     ActivityLevel = "high"
)

type Size string

const (
	SizeSmall      Size = "small"
	SizeMedium     Size = "medium"
	SizeLarge      Size = "large"
	SizeExtraLarge Size = "extra_large"
)

type AgeGroup string

const (
	AgeBaby   AgeGroup = "baby"
	AgeYoung  AgeGroup = "young"
	AgeAdult  AgeGroup = "adult"
	AgeSenior AgeGroup = "senior"
)

type Species string

const (
	SpeciesDog        Species = "dog"
	SpeciesCat        Species = "cat"
	SpeciesRabbit     Species = "rabbit"
	SpeciesBird       Species = "bird"
	SpeciesSmallFurry Species = "small_furry"
	SpeciesOther      Species = "scales_fins_other"
)

// TriState is a behavioral flag reported by a shelter. Unknown is the zero
// value and is never treated as No.
type TriState int8

const (
	Unknown TriState = iota
	Yes
	No
)

// Bool converts an optional boolean into a TriState.
func Bool(v *bool) TriState {
	if v == nil {
		return Unknown
	}
	if *v {
		return Yes
	}
	return No
}

func (t TriState) String() string {
	switch t {
	case Yes:
		return "yes"
	case No:
		return "no"
	default:
		return "unknown"
	}
}

// MarshalJSON encodes Yes/No as booleans and Unknown as null.
func (t TriState) MarshalJSON() ([]byte, error) {
	switch t {
	case Yes:
		return []byte("true"), nil
	case No:
		return []byte("false"), nil
	default:
		return []byte("null"), nil
	}
}

// UnmarshalJSON accepts true, false, null and the strings "yes", "no", "unknown".
func (t *TriState) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	switch string(data) {
	case "true", `"yes"`, `"true"`:
		*t = Yes
	case "false", `"no"`, `"false"`:
		*t = No
	case "null", `"unknown"`, `""`:
		*t = Unknown
	default:
		return fmt.Errorf("invalid tri-state value %s", data)
	}
	return nil
}

// Requirements are the adopter's hard constraints.
type Requirements struct {
	GoodWithChildren bool `json:"goodWithChildren,omitempty"`
	GoodWithDogs     bool `json:"goodWithDogs,omitempty"`
	GoodWithCats     bool `json:"goodWithCats,omitempty"`
	HouseTrained     bool `json:"houseTrained,omitempty"`
	Hypoallergenic   bool `json:"hypoallergenic,omitempty"`
	SpecialNeedsOK   bool `json:"specialNeedsOk,omitempty"`
}

// Preferences narrow the candidate pool before scoring. Empty lists accept everything.
type Preferences struct {
	Species []Species  `json:"species,omitempty"`
	Sizes   []Size     `json:"sizes,omitempty"`
	Ages    []AgeGroup `json:"ages,omitempty"`
}

type Location struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	ZipCode   string  `json:"zipCode,omitempty"`
}

// AdopterProfile is a validated preference profile. The engine never mutates it.
type AdopterProfile struct {
	UserID    string `json:"userId"`
	Email     string `json:"email,omitempty"`
	FirstName string `json:"firstName,omitempty"`

	HomeType   HomeType `json:"homeType,omitempty"`
	HasYard    bool     `json:"hasYard,omitempty"`
	YardFenced bool     `json:"yardFenced,omitempty"`

	HasChildren  bool      `json:"hasChildren,omitempty"`
	HasOtherPets bool      `json:"hasOtherPets,omitempty"`
	OtherPets    []Species `json:"otherPets,omitempty"`

	HoursAlone      *int `json:"hoursAlone,omitempty"`
	ExerciseMinutes *int `json:"exerciseMinutes,omitempty"`

	Experience    ExperienceLevel `json:"experienceLevel,omitempty"`
	ActivityLevel ActivityLevel   `json:"activityLevel,omitempty"`

	Requirements Requirements `json:"requirements"`
	Preferences  Preferences  `json:"preferences"`
	Location     *Location    `json:"location,omitempty"`
}

type Shelter struct {
	ID    string `json:"id,omitempty"`
	Name  string `json:"name,omitempty"`
	City  string `json:"city,omitempty"`
	State string `json:"state,omitempty"`
	Email string `json:"email,omitempty"`
}

// CandidateRecord is one adoptable animal as returned by the listing provider.
type CandidateRecord struct {
	ID      string  `json:"id"`
	Name    string  `json:"name,omitempty"`
	Species Species `json:"species,omitempty"`
	Breed   string  `json:"breed,omitempty"`

	Size   Size          `json:"size,omitempty"`
	Age    AgeGroup      `json:"age,omitempty"`
	Energy ActivityLevel `json:"energyLevel,omitempty"`

	GoodWithChildren TriState `json:"goodWithChildren"`
	GoodWithDogs     TriState `json:"goodWithDogs"`
	GoodWithCats     TriState `json:"goodWithCats"`
	Hypoallergenic   TriState `json:"hypoallergenic"`

	HouseTrained   bool `json:"houseTrained,omitempty"`
	SpecialNeeds   bool `json:"specialNeeds,omitempty"`
	SpayedNeutered bool `json:"spayedNeutered,omitempty"`

	Urgent        bool   `json:"urgent,omitempty"`
	UrgencyReason string `json:"urgencyReason,omitempty"`
	DaysInShelter *int   `json:"daysInShelter,omitempty"`

	Shelter       Shelter  `json:"shelter"`
	DistanceMiles *float64 `json:"distanceMiles,omitempty"`
}

// DisplayName returns the candidate's name, or a generic label when the
// listing has none.
func (c CandidateRecord) DisplayName() string {
	if c.Name == "" {
		return "This pet"
	}
	return c.Name
}

// ScoreBreakdown holds every component of a compatibility score. Overall is
// derived from the other four and is never set on its own.
type ScoreBreakdown struct {
	Lifestyle    float64 `json:"lifestyle"`
	Personality  float64 `json:"personality"`
	Practical    float64 `json:"practical"`
	UrgencyBoost float64 `json:"urgencyBoost"`
	Overall      float64 `json:"overall"`
}

// Match is a scored, explained and ranked candidate.
type Match struct {
	Candidate         CandidateRecord `json:"candidate"`
	Scores            ScoreBreakdown  `json:"scores"`
	Explanation       string          `json:"explanation"`
	KeyFactors        []string        `json:"keyFactors"`
	PotentialConcerns []string        `json:"potentialConcerns"`
	Rank              int             `json:"rank"`
	ModelVersion      string          `json:"modelVersion"`
}
