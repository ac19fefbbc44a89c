// internal/matching/preferences.go
package matching

// FilterByPreferences drops candidates whose species, size or age falls
// outside the adopter's preferred lists. An empty list accepts any value, and
// a candidate with an unset attribute is kept. The input slice is not modified.
func FilterByPreferences(profile AdopterProfile, candidates []CandidateRecord) []CandidateRecord {
	prefs := profile.Preferences
	out := make([]CandidateRecord, 0, len(candidates))
	for _, c := range candidates {
		if !accepts(prefs.Species, c.Species) {
			continue
		}
		if !accepts(prefs.Sizes, c.Size) {
			continue
		}
		if !accepts(prefs.Ages, c.Age) {
			continue
		}
		out = append(out, c)
	}
	return out
}

func accepts[T comparable](allowed []T, v T) bool {
	var zero T
	if len(allowed) == 0 || v == zero {
		return true
	}
	for _, a := range allowed {
		if a == v {
			return true
		}
	}
	return false
}
