// internal/matching/features_test.go
package matching

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ==========================
// Test Helper Functions
// ==========================

func intPtr(v int) *int { return &v }

func TestOrdinalEncodings(t *testing.T) {
	t.Run("experience", func(t *testing.T) {
		assert.Equal(t, 0, encodeExperience(ExperienceFirstTime))
		assert.Equal(t, 1, encodeExperience(ExperienceSome))
		assert.Equal(t, 2, encodeExperience(ExperienceSkilled))
		assert.Equal(t, 3, encodeExperience(ExperienceExpert))
		assert.Equal(t, 1, encodeExperience(""))
	})

	t.Run("activity", func(t *testing.T) {
		assert.Equal(t, 0, encodeActivity(ActivityLow))
		assert.Equal(t, 1, encodeActivity(ActivityModerate))
		assert.Equal(t, 2, encodeActivity(ActivityHigh))
		assert.Equal(t, 1, encodeActivity(""))
	})

	t.Run("size", func(t *testing.T) {
		assert.Equal(t, 0, encodeSize(SizeSmall))
		assert.Equal(t, 1, encodeSize(SizeMedium))
		assert.Equal(t, 2, encodeSize(SizeLarge))
		assert.Equal(t, 3, encodeSize(SizeExtraLarge))
		assert.Equal(t, 1, encodeSize(""))
	})

	t.Run("age", func(t *testing.T) {
		assert.Equal(t, 0, encodeAge(AgeBaby))
		assert.Equal(t, 1, encodeAge(AgeYoung))
		assert.Equal(t, 2, encodeAge(AgeAdult))
		assert.Equal(t, 3, encodeAge(AgeSenior))
		assert.Equal(t, 2, encodeAge(""))
	})

	t.Run("tri-state", func(t *testing.T) {
		assert.Equal(t, 1.0, encodeTriState(Yes))
		assert.Equal(t, 0.0, encodeTriState(Unknown))
		assert.Equal(t, -1.0, encodeTriState(No))
	})
}

func TestExtractUserFeatures_Defaults(t *testing.T) {
	f := ExtractUserFeatures(AdopterProfile{})

	assert.False(t, f.HomeIsApartment)
	assert.False(t, f.HasOtherPets)
	assert.Equal(t, experienceSome, f.Experience)
	assert.Equal(t, energyModerate, f.Activity)
	assert.False(t, f.HasHoursAlone)
	assert.False(t, f.HasExercise)
}

func TestExtractUserFeatures_OtherPets(t *testing.T) {
	tests := []struct {
		name    string
		profile AdopterProfile
		wantDog bool
		wantCat bool
	}{
		{
			name:    "no other pets",
			profile: AdopterProfile{},
		},
		{
			name:    "other pets without species",
			profile: AdopterProfile{HasOtherPets: true},
			wantDog: true,
			wantCat: true,
		},
		{
			name:    "dog only",
			profile: AdopterProfile{HasOtherPets: true, OtherPets: []Species{SpeciesDog}},
			wantDog: true,
		},
		{
			name:    "species listed implies other pets",
			profile: AdopterProfile{OtherPets: []Species{SpeciesCat, SpeciesRabbit}},
			wantCat: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := ExtractUserFeatures(tt.profile)
			assert.Equal(t, tt.wantDog, f.OwnsDog)
			assert.Equal(t, tt.wantCat, f.OwnsCat)
		})
	}
}

func TestExtractUserFeatures_OptionalNumbers(t *testing.T) {
	f := ExtractUserFeatures(AdopterProfile{HoursAlone: intPtr(0), ExerciseMinutes: intPtr(45)})

	assert.True(t, f.HasHoursAlone)
	assert.Equal(t, 0, f.HoursAlone)
	assert.True(t, f.HasExercise)
	assert.Equal(t, 45, f.ExerciseMinutes)
}

func TestExtractPetFeatures(t *testing.T) {
	c := CandidateRecord{
		ID:               "pet-1",
		Size:             SizeLarge,
		Age:              AgeSenior,
		Energy:           ActivityHigh,
		GoodWithChildren: Yes,
		GoodWithDogs:     No,
		HouseTrained:     true,
		Urgent:           true,
		DaysInShelter:    intPtr(120),
	}

	f := ExtractPetFeatures(c)

	assert.Equal(t, sizeLarge, f.Size)
	assert.Equal(t, ageSenior, f.Age)
	assert.Equal(t, energyHigh, f.Energy)
	assert.Equal(t, 1.0, f.GoodWithChildren)
	assert.Equal(t, -1.0, f.GoodWithDogs)
	assert.Equal(t, 0.0, f.GoodWithCats)
	assert.True(t, f.HouseTrained)
	assert.True(t, f.IsUrgent)
	assert.True(t, f.HasDaysInShelter)
	assert.Equal(t, 120, f.DaysInShelter)
}

func TestExtractPetFeatures_NegativeDaysIgnored(t *testing.T) {
	f := ExtractPetFeatures(CandidateRecord{DaysInShelter: intPtr(-3)})
	assert.False(t, f.HasDaysInShelter)
	assert.Equal(t, 0, f.DaysInShelter)
}

func TestTriStateJSON(t *testing.T) {
	raw := `{"id":"pet-9","goodWithChildren":true,"goodWithDogs":false,"goodWithCats":null}`

	var c CandidateRecord
	require.NoError(t, json.Unmarshal([]byte(raw), &c))

	assert.Equal(t, Yes, c.GoodWithChildren)
	assert.Equal(t, No, c.GoodWithDogs)
	assert.Equal(t, Unknown, c.GoodWithCats)
	assert.Equal(t, Unknown, c.Hypoallergenic)

	out, err := json.Marshal(c)
	require.NoError(t, err)
	assert.Contains(t, string(out), `"goodWithChildren":true`)
	assert.Contains(t, string(out), `"goodWithCats":null`)

	var bad TriState
	assert.Error(t, json.Unmarshal([]byte(`"maybe"`), &bad))
}

func TestBool(t *testing.T) {
	yes, no := true, false
	assert.Equal(t, Yes, Bool(&yes))
	assert.Equal(t, No, Bool(&no))
	assert.Equal(t, Unknown, Bool(nil))
}
