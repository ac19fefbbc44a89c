// internal/cli/cli_test.go
package cli

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"pawmatch-workers/internal/matching"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ==========================
// Test Helper Functions
// ==========================

const profileJSON = `{
  "userId": "user-1",
  "homeType": "apartment",
  "activityLevel": "low",
  "hoursAlone": 8,
  "experienceLevel": "first_time"
}`

const candidatesJSON = `[
  {"id": "pet-cat", "name": "Miso", "species": "cat", "size": "small", "age": "adult", "energyLevel": "low", "houseTrained": true},
  {"id": "pet-dog", "name": "Tank", "species": "dog", "size": "extra_large", "age": "young", "energyLevel": "high"}
]`

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	root := NewRootCmd()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(args)
	err := root.Execute()
	return out.String(), err
}

// ==========================
// rank
// ==========================

func TestRank_Table(t *testing.T) {
	dir := t.TempDir()
	profile := writeFile(t, dir, "profile.json", profileJSON)
	candidates := writeFile(t, dir, "pets.json", candidatesJSON)

	out, err := run(t, "rank", "--profile", profile, "--candidates", candidates, "--min-score", "0")
	require.NoError(t, err)

	assert.Contains(t, out, "pet-cat")
	assert.Contains(t, out, "pet-dog")
	assert.Contains(t, out, "Miso")
}

func TestRank_JSON(t *testing.T) {
	dir := t.TempDir()
	profile := writeFile(t, dir, "profile.json", profileJSON)
	candidates := writeFile(t, dir, "pets.json", candidatesJSON)

	out, err := run(t, "rank", "--profile", profile, "--candidates", candidates,
		"--min-score", "0", "--top-k", "1", "-o", "json")
	require.NoError(t, err)

	var matches []matching.Match
	require.NoError(t, json.Unmarshal([]byte(out), &matches))
	require.Len(t, matches, 1)
	assert.Equal(t, "pet-cat", matches[0].Candidate.ID)
	assert.Equal(t, 1, matches[0].Rank)
	assert.Equal(t, "weighted-sum/1.0", matches[0].ModelVersion)
}

func TestRank_ZeroTopKUsesConfiguredDefault(t *testing.T) {
	dir := t.TempDir()
	profile := writeFile(t, dir, "profile.json", profileJSON)
	candidates := writeFile(t, dir, "pets.json", candidatesJSON)

	out, err := run(t, "rank", "--profile", profile, "--candidates", candidates,
		"--min-score", "0", "--top-k", "0", "-o", "json")
	require.NoError(t, err)

	var matches []matching.Match
	require.NoError(t, json.Unmarshal([]byte(out), &matches))
	assert.Len(t, matches, 2)
}

func TestRank_NoMatches(t *testing.T) {
	dir := t.TempDir()
	profile := writeFile(t, dir, "profile.json", profileJSON)
	candidates := writeFile(t, dir, "pets.json", `[]`)

	out, err := run(t, "rank", "--profile", profile, "--candidates", candidates)
	require.NoError(t, err)
	assert.Contains(t, out, "No matches above the minimum score.")
}

func TestRank_Errors(t *testing.T) {
	dir := t.TempDir()
	profile := writeFile(t, dir, "profile.json", profileJSON)
	badProfile := writeFile(t, dir, "bad-profile.json", `{"userId": "u", "homeType": "castle"}`)
	candidates := writeFile(t, dir, "pets.json", candidatesJSON)
	dupes := writeFile(t, dir, "dupes.json", `[{"id": "a"}, {"id": "a"}]`)
	broken := writeFile(t, dir, "broken.json", `[{"id": `)

	tests := []struct {
		name    string
		args    []string
		wantErr string
	}{
		{
			name:    "missing flag",
			args:    []string{"rank", "--profile", profile},
			wantErr: `required flag(s) "candidates" not set`,
		},
		{
			name:    "invalid profile",
			args:    []string{"rank", "--profile", badProfile, "--candidates", candidates},
			wantErr: "INVALID_ADOPTER_PROFILE",
		},
		{
			name:    "duplicate candidates",
			args:    []string{"rank", "--profile", profile, "--candidates", dupes},
			wantErr: "INVALID_CANDIDATE",
		},
		{
			name:    "malformed candidates",
			args:    []string{"rank", "--profile", profile, "--candidates", broken},
			wantErr: "failed to parse",
		},
		{
			name:    "missing file",
			args:    []string{"rank", "--profile", filepath.Join(dir, "nope.json"), "--candidates", candidates},
			wantErr: "failed to read",
		},
		{
			name:    "min score out of range",
			args:    []string{"rank", "--profile", profile, "--candidates", candidates, "--min-score", "2"},
			wantErr: "--min-score must be between 0 and 1",
		},
		{
			name:    "unknown output format",
			args:    []string{"rank", "--profile", profile, "--candidates", candidates, "--min-score", "0", "-o", "xml"},
			wantErr: "unknown output format: xml",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := run(t, tt.args...)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

// ==========================
// score / explain
// ==========================

func TestScore(t *testing.T) {
	dir := t.TempDir()
	profile := writeFile(t, dir, "profile.json", profileJSON)
	candidate := writeFile(t, dir, "pet.json", `{"id": "pet-cat", "name": "Miso", "species": "cat", "energyLevel": "low"}`)

	out, err := run(t, "score", "--profile", profile, "--candidate", candidate, "-o", "json")
	require.NoError(t, err)

	var exp matching.MatchExplanation
	require.NoError(t, json.Unmarshal([]byte(out), &exp))
	assert.Equal(t, "pet-cat", exp.CandidateID)
	assert.Equal(t, "Miso", exp.CandidateName)
	assert.Len(t, exp.Breakdown, 4)
	assert.NotEmpty(t, exp.Explanation)
}

func TestScore_Table(t *testing.T) {
	dir := t.TempDir()
	profile := writeFile(t, dir, "profile.json", profileJSON)
	candidate := writeFile(t, dir, "pet.json", `{"id": "pet-cat", "name": "Miso", "species": "cat"}`)

	out, err := run(t, "score", "--profile", profile, "--candidate", candidate)
	require.NoError(t, err)
	assert.Contains(t, out, "Miso (pet-cat)")
	assert.Contains(t, out, "lifestyle_compatibility")
}

func TestExplain_RegeneratesRationale(t *testing.T) {
	dir := t.TempDir()
	profile := writeFile(t, dir, "profile.json", profileJSON)
	match := writeFile(t, dir, "match.json", `{
	  "candidate": {"id": "pet-cat", "name": "Miso", "species": "cat", "energyLevel": "low"},
	  "scores": {"lifestyle": 0.9, "personality": 0.9, "practical": 0.8, "urgencyBoost": 0, "overall": 0.79},
	  "rank": 1
	}`)

	out, err := run(t, "explain", "--match", match, "-o", "json")
	require.NoError(t, err)
	var bare matching.MatchExplanation
	require.NoError(t, json.Unmarshal([]byte(out), &bare))
	assert.Empty(t, bare.Explanation)
	assert.Equal(t, matching.TierGreat, bare.Tier)

	out, err = run(t, "explain", "--match", match, "--profile", profile, "-o", "json")
	require.NoError(t, err)
	var full matching.MatchExplanation
	require.NoError(t, json.Unmarshal([]byte(out), &full))
	assert.Contains(t, full.Explanation, "Miso")
}

func TestExplain_MissingCandidateID(t *testing.T) {
	dir := t.TempDir()
	match := writeFile(t, dir, "match.json", `{"scores": {"overall": 0.5}}`)

	_, err := run(t, "explain", "--match", match)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no candidate id")
}

// ==========================
// evaluate / version
// ==========================

func TestEvaluate(t *testing.T) {
	dir := t.TempDir()
	cases := writeFile(t, dir, "cases.json", `[{
	  "name": "apartment first-timer",
	  "profile": `+profileJSON+`,
	  "candidates": `+candidatesJSON+`,
	  "relevantIds": ["pet-cat", "pet-dog"]
	}]`)

	out, err := run(t, "evaluate", cases, "--min-score", "0", "-o", "json")
	require.NoError(t, err)

	var metrics matching.EvaluationMetrics
	require.NoError(t, json.Unmarshal([]byte(out), &metrics))
	assert.Equal(t, 1, metrics.Cases)
	assert.InDelta(t, 1.0, metrics.PrecisionAt5, 1e-9)
	assert.InDelta(t, 1.0, metrics.RecallAt10, 1e-9)
	assert.InDelta(t, 1.0, metrics.MRR, 1e-9)
	assert.InDelta(t, 1.0, metrics.NDCGAt10, 1e-9)

	out, err = run(t, "evaluate", cases, "--min-score", "0")
	require.NoError(t, err)
	assert.Contains(t, out, "ndcg@10")
}

func TestEvaluate_NoCases(t *testing.T) {
	dir := t.TempDir()
	cases := writeFile(t, dir, "cases.json", `[]`)

	_, err := run(t, "evaluate", cases)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "contains no cases")
}

func TestVersion(t *testing.T) {
	SetVersionInfo("1.2.3", "abc123", "2026-01-01")
	t.Cleanup(func() { SetVersionInfo("dev", "unknown", "unknown") })

	out, err := run(t, "version")
	require.NoError(t, err)
	assert.Contains(t, out, "pawmatch 1.2.3")
	assert.Contains(t, out, "model:  weighted-sum/1.0")
}
