// internal/workers/matching/explain-match/handler_test.go
package explainmatch

import (
	"context"
	"errors"
	"testing"
	"time"

	apperrors "pawmatch-workers/internal/common/errors"
	"pawmatch-workers/internal/common/logger"
	"pawmatch-workers/internal/matching"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ==========================
// Test Helper Functions
// ==========================

func createTestConfig() *Config {
	return &Config{
		Timeout: 3 * time.Second,
	}
}

type testLogger struct {
	t *testing.T
}

func (tl *testLogger) Debug(msg string, fields map[string]interface{}) {
	tl.t.Logf("DEBUG: %s %v", msg, fields)
}

func (tl *testLogger) Info(msg string, fields map[string]interface{}) {
	tl.t.Logf("INFO: %s %v", msg, fields)
}

func (tl *testLogger) Warn(msg string, fields map[string]interface{}) {
	tl.t.Logf("WARN: %s %v", msg, fields)
}

func (tl *testLogger) Error(msg string, fields map[string]interface{}) {
	tl.t.Logf("ERROR: %s %v", msg, fields)
}

func (tl *testLogger) WithFields(fields map[string]interface{}) logger.Logger {
	return tl
}

func (tl *testLogger) WithError(err error) logger.Logger {
	return tl.WithFields(map[string]interface{}{"error": err})
}

func (tl *testLogger) With(fields map[string]interface{}) logger.Logger {
	return tl
}

func newTestHandler(t *testing.T) *Handler {
	return NewHandler(createTestConfig(), &testLogger{t: t})
}

func createTestProfile() matching.AdopterProfile {
	return matching.AdopterProfile{
		UserID:        "user-3",
		HomeType:      matching.HomeApartment,
		HasChildren:   true,
		Experience:    matching.ExperienceFirstTime,
		ActivityLevel: matching.ActivityLow,
	}
}

func createTestMatch() matching.Match {
	candidate := matching.CandidateRecord{
		ID:               "pet-12",
		Name:             "Clementine",
		Species:          matching.SpeciesCat,
		Size:             matching.SizeSmall,
		Age:              matching.AgeAdult,
		Energy:           matching.ActivityLow,
		GoodWithChildren: matching.Yes,
		HouseTrained:     true,
	}
	m := matching.NewEngine().Match(createTestProfile(), candidate)
	m.Rank = 2
	return m
}

// ==========================
// Execute
// ==========================

func TestHandler_Execute_ExpandsEngineMatch(t *testing.T) {
	h := newTestHandler(t)
	m := createTestMatch()

	output, err := h.Execute(context.Background(), &Input{Match: &m})
	require.NoError(t, err)

	assert.Equal(t, "pet-12", output.CandidateID)
	assert.Equal(t, "Clementine", output.CandidateName)
	assert.Equal(t, 2, output.Rank)
	assert.Equal(t, m.Scores.Overall, output.OverallScore)
	assert.Equal(t, m.Explanation, output.Explanation)
	assert.Equal(t, "weighted-sum/1.0", output.ModelVersion)

	require.Len(t, output.Breakdown, 4)
	names := make([]string, 0, 4)
	weights := 0.0
	for _, c := range output.Breakdown {
		names = append(names, c.Name)
		weights += c.Weight
	}
	assert.Equal(t, []string{"lifestyle_compatibility", "personality_match", "practical_factors", "urgency"}, names)
	assert.InDelta(t, 1.0, weights, 1e-9)

	tier, recommendation := matching.TierFor(m.Scores.Overall)
	assert.Equal(t, tier, output.Tier)
	assert.Equal(t, recommendation, output.Recommendation)
	assert.NotNil(t, output.Strengths)
	assert.NotNil(t, output.Considerations)
}

func TestHandler_Execute_RegeneratesMissingRationale(t *testing.T) {
	h := newTestHandler(t)
	m := createTestMatch()
	want := m.Explanation

	m.Explanation, m.KeyFactors, m.PotentialConcerns = "", nil, nil
	profile := createTestProfile()

	output, err := h.Execute(context.Background(), &Input{Match: &m, Profile: &profile})
	require.NoError(t, err)
	assert.Equal(t, want, output.Explanation)

	output, err = h.Execute(context.Background(), &Input{Match: &m})
	require.NoError(t, err)
	assert.Empty(t, output.Explanation)
	assert.Empty(t, output.Strengths)
}

func TestHandler_Execute_UnnamedCandidate(t *testing.T) {
	h := newTestHandler(t)
	m := createTestMatch()
	m.Candidate.Name = ""

	output, err := h.Execute(context.Background(), &Input{Match: &m})
	require.NoError(t, err)
	assert.Equal(t, "This pet", output.CandidateName)
}

func TestHandler_Execute_InvalidMatch(t *testing.T) {
	tests := []struct {
		name        string
		input       *Input
		wantErr     error
		wantMessage string
	}{
		{
			name:    "nil input",
			input:   nil,
			wantErr: ErrNilInput,
		},
		{
			name:    "missing match",
			input:   &Input{},
			wantErr: ErrMissingMatch,
		},
		{
			name: "candidate without id",
			input: func() *Input {
				m := createTestMatch()
				m.Candidate.ID = ""
				return &Input{Match: &m}
			}(),
			wantErr:     ErrInvalidMatch,
			wantMessage: "candidate.id is required",
		},
		{
			name: "overall above one",
			input: func() *Input {
				m := createTestMatch()
				m.Scores.Overall = 1.2
				return &Input{Match: &m}
			}(),
			wantErr:     ErrInvalidMatch,
			wantMessage: "scores.overall must be within [0, 1]",
		},
		{
			name: "negative component",
			input: func() *Input {
				m := createTestMatch()
				m.Scores.Practical = -0.1
				return &Input{Match: &m}
			}(),
			wantErr:     ErrInvalidMatch,
			wantMessage: "scores.practical",
		},
		{
			name: "negative rank",
			input: func() *Input {
				m := createTestMatch()
				m.Rank = -1
				return &Input{Match: &m}
			}(),
			wantErr:     ErrInvalidMatch,
			wantMessage: "rank must not be negative",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newTestHandler(t)

			output, err := h.Execute(context.Background(), tt.input)
			require.Error(t, err)
			assert.Nil(t, output)
			assert.True(t, errors.Is(err, tt.wantErr))
			if tt.wantMessage != "" {
				assert.Contains(t, err.Error(), tt.wantMessage)
			}

			stdErr := ToStandardError(err)
			assert.Equal(t, apperrors.ErrCodeInvalidMatch, stdErr.Code)
			assert.False(t, stdErr.Retryable)
		})
	}
}
