// internal/matching/preferences_test.go
package matching

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFilterByPreferences(t *testing.T) {
	candidates := []CandidateRecord{
		{ID: "small-dog", Species: SpeciesDog, Size: SizeSmall, Age: AgeYoung},
		{ID: "large-dog", Species: SpeciesDog, Size: SizeLarge, Age: AgeAdult},
		{ID: "senior-cat", Species: SpeciesCat, Size: SizeSmall, Age: AgeSenior},
		{ID: "rabbit", Species: SpeciesRabbit, Size: SizeSmall, Age: AgeBaby},
		{ID: "unlabelled"},
	}

	tests := []struct {
		name  string
		prefs Preferences
		want  []string
	}{
		{
			name: "no preferences keeps everything",
			want: []string{"small-dog", "large-dog", "senior-cat", "rabbit", "unlabelled"},
		},
		{
			name:  "species",
			prefs: Preferences{Species: []Species{SpeciesDog}},
			want:  []string{"small-dog", "large-dog", "unlabelled"},
		},
		{
			name:  "size and age",
			prefs: Preferences{Sizes: []Size{SizeSmall}, Ages: []AgeGroup{AgeYoung, AgeSenior}},
			want:  []string{"small-dog", "senior-cat", "unlabelled"},
		},
		{
			name:  "nothing matches",
			prefs: Preferences{Species: []Species{SpeciesBird}, Sizes: []Size{SizeExtraLarge}},
			want:  []string{"unlabelled"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := FilterByPreferences(AdopterProfile{Preferences: tt.prefs}, candidates)
			ids := make([]string, len(got))
			for i, c := range got {
				ids[i] = c.ID
			}
			assert.Equal(t, tt.want, ids)
		})
	}

	assert.Len(t, candidates, 5)
}
