// internal/workers/matching/rank-candidates/handler_test.go
package rankcandidates

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"pawmatch-workers/internal/candidates"
	"pawmatch-workers/internal/common/config"
	apperrors "pawmatch-workers/internal/common/errors"
	"pawmatch-workers/internal/common/logger"
	"pawmatch-workers/internal/common/observability"
	"pawmatch-workers/internal/matching"
	"pawmatch-workers/internal/rankcache"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	promclient "github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

// ==========================
// Test Helper Functions
// ==========================

func createTestConfig() *Config {
	return &Config{
		Timeout:           3 * time.Second,
		TopK:              10,
		MinScore:          0,
		SearchRadiusMiles: 25,
		SearchLimit:       40,
		PreferenceFilter:  true,
		PersistMatches:    true,
	}
}

func createTestProfile() matching.AdopterProfile {
	hours := 3
	return matching.AdopterProfile{
		UserID:        "user-7",
		HomeType:      matching.HomeHouse,
		HasYard:       true,
		YardFenced:    true,
		HoursAlone:    &hours,
		Experience:    matching.ExperienceSome,
		ActivityLevel: matching.ActivityModerate,
		Location:      &matching.Location{Latitude: 45.52, Longitude: -122.68},
	}
}

func createTestCandidates() []matching.CandidateRecord {
	days := 120
	return []matching.CandidateRecord{
		{ID: "pet-1", Name: "Rex", Species: matching.SpeciesDog, Size: matching.SizeLarge, Energy: matching.ActivityHigh},
		{ID: "pet-2", Name: "Mochi", Species: matching.SpeciesCat, Size: matching.SizeSmall, Energy: matching.ActivityModerate, HouseTrained: true},
		{ID: "pet-3", Name: "Pip", Species: matching.SpeciesRabbit, Size: matching.SizeSmall, Urgent: true, DaysInShelter: &days},
	}
}

type fakeSource struct {
	mu      sync.Mutex
	queries []candidates.Query
	result  []matching.CandidateRecord
}

func (f *fakeSource) Fetch(_ context.Context, q candidates.Query) []matching.CandidateRecord {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.queries = append(f.queries, q)
	return f.result
}

type fakeRecorder struct {
	mu        sync.Mutex
	requestID string
	userID    string
	matches   []matching.Match
	calls     int
	err       error
}

func (f *fakeRecorder) RecordShown(_ context.Context, requestID, userID string, matches []matching.Match) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	f.requestID, f.userID, f.matches = requestID, userID, matches
	if f.err != nil {
		return 0, f.err
	}
	return len(matches), nil
}

func newTestHandler(t *testing.T, opts HandlerOptions) *Handler {
	t.Helper()
	if opts.Config == nil {
		opts.Config = createTestConfig()
	}
	opts.Logger = logger.NewTestLogger(t)
	h, err := NewHandler(opts)
	require.NoError(t, err)
	return h
}

func matchIDs(matches []matching.Match) []string {
	ids := make([]string, len(matches))
	for i, m := range matches {
		ids[i] = m.Candidate.ID
	}
	return ids
}

// ==========================
// Execute
// ==========================

func TestHandler_Execute_RequestCandidates(t *testing.T) {
	recorder := &fakeRecorder{}
	source := &fakeSource{}
	h := newTestHandler(t, HandlerOptions{Candidates: source, Recorder: recorder})

	input := &Input{RequestID: "req-1", Profile: createTestProfile(), Candidates: createTestCandidates()}
	output, err := h.Execute(context.Background(), input)
	require.NoError(t, err)

	assert.Equal(t, "req-1", output.RequestID)
	assert.Equal(t, SourceRequest, output.Source)
	assert.Equal(t, 3, output.TotalCandidates)
	assert.Equal(t, 3, output.Returned)
	assert.False(t, output.Cached)
	assert.Equal(t, "weighted-sum/1.0", output.ModelVersion)
	assert.Empty(t, source.queries, "candidate index must not be queried when candidates are supplied")

	want := matching.NewEngine().Rank(input.Profile, input.Candidates, 10, 0)
	assert.Equal(t, matchIDs(want), matchIDs(output.Matches))
	for i, m := range output.Matches {
		assert.Equal(t, i+1, m.Rank)
		if i > 0 {
			assert.GreaterOrEqual(t, output.Matches[i-1].Scores.Overall, m.Scores.Overall)
		}
	}

	assert.Equal(t, 1, recorder.calls)
	assert.Equal(t, "req-1", recorder.requestID)
	assert.Equal(t, "user-7", recorder.userID)
	assert.Len(t, recorder.matches, 3)
}

func TestHandler_Execute_FetchesWhenCandidatesAbsent(t *testing.T) {
	source := &fakeSource{result: createTestCandidates()}
	h := newTestHandler(t, HandlerOptions{Candidates: source})

	profile := createTestProfile()
	profile.Preferences.Species = []matching.Species{matching.SpeciesCat, matching.SpeciesRabbit}

	output, err := h.Execute(context.Background(), &Input{Profile: profile})
	require.NoError(t, err)

	require.Len(t, source.queries, 1)
	q := source.queries[0]
	assert.Equal(t, []matching.Species{matching.SpeciesCat, matching.SpeciesRabbit}, q.Species)
	assert.Equal(t, 25, q.RadiusMiles)
	assert.Equal(t, 40, q.Limit)
	require.NotNil(t, q.Location)

	assert.Equal(t, SourceSearch, output.Source)
	assert.Equal(t, 3, output.TotalCandidates)
	assert.ElementsMatch(t, []string{"pet-2", "pet-3"}, matchIDs(output.Matches))
}

func TestHandler_Execute_EmptyListIsNotFetched(t *testing.T) {
	source := &fakeSource{result: createTestCandidates()}
	recorder := &fakeRecorder{}
	h := newTestHandler(t, HandlerOptions{Candidates: source, Recorder: recorder})

	output, err := h.Execute(context.Background(), &Input{Profile: createTestProfile(), Candidates: []matching.CandidateRecord{}})
	require.NoError(t, err)

	assert.Empty(t, source.queries)
	assert.NotNil(t, output.Matches)
	assert.Empty(t, output.Matches)
	assert.Zero(t, recorder.calls)
}

func TestHandler_Execute_NoSourceConfigured(t *testing.T) {
	h := newTestHandler(t, HandlerOptions{})

	output, err := h.Execute(context.Background(), &Input{Profile: createTestProfile()})
	require.NoError(t, err)

	assert.Equal(t, SourceSearch, output.Source)
	assert.Empty(t, output.Matches)
	assert.Zero(t, output.TotalCandidates)
}

func TestHandler_Execute_GeneratesRequestID(t *testing.T) {
	h := newTestHandler(t, HandlerOptions{})

	output, err := h.Execute(context.Background(), &Input{Profile: createTestProfile(), Candidates: createTestCandidates()})
	require.NoError(t, err)

	_, err = uuid.Parse(output.RequestID)
	assert.NoError(t, err)
}

func TestHandler_Execute_Overrides(t *testing.T) {
	tests := []struct {
		name         string
		topK         *int
		minScore     *float64
		wantReturned int
	}{
		{name: "configured defaults", wantReturned: 3},
		{name: "top k of one", topK: intPtr(1), wantReturned: 1},
		{name: "zero top k falls back to configured", topK: intPtr(0), wantReturned: 3},
		{name: "negative top k falls back to configured", topK: intPtr(-2), wantReturned: 3},
		{name: "unreachable minimum score", minScore: floatPtr(1.5), wantReturned: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newTestHandler(t, HandlerOptions{})

			output, err := h.Execute(context.Background(), &Input{
				Profile:    createTestProfile(),
				Candidates: createTestCandidates(),
				TopK:       tt.topK,
				MinScore:   tt.minScore,
			})
			require.NoError(t, err)
			assert.Equal(t, tt.wantReturned, output.Returned)
			assert.Len(t, output.Matches, tt.wantReturned)
		})
	}
}

func TestHandler_Execute_PreferenceFilterDisabled(t *testing.T) {
	cfg := createTestConfig()
	cfg.PreferenceFilter = false
	h := newTestHandler(t, HandlerOptions{Config: cfg})

	profile := createTestProfile()
	profile.Preferences.Species = []matching.Species{matching.SpeciesCat}

	output, err := h.Execute(context.Background(), &Input{Profile: profile, Candidates: createTestCandidates()})
	require.NoError(t, err)
	assert.Equal(t, 3, output.Returned)
}

func TestHandler_Execute_RecorderFailureDoesNotFailJob(t *testing.T) {
	recorder := &fakeRecorder{err: apperrors.NewMatchPersistFailedError("req-9", errors.New("deadlock"))}
	h := newTestHandler(t, HandlerOptions{Recorder: recorder})

	output, err := h.Execute(context.Background(), &Input{RequestID: "req-9", Profile: createTestProfile(), Candidates: createTestCandidates()})
	require.NoError(t, err)

	assert.Equal(t, 1, recorder.calls)
	assert.Equal(t, 3, output.Returned)
}

func TestHandler_Execute_PersistDisabled(t *testing.T) {
	cfg := createTestConfig()
	cfg.PersistMatches = false
	recorder := &fakeRecorder{}
	h := newTestHandler(t, HandlerOptions{Config: cfg, Recorder: recorder})

	_, err := h.Execute(context.Background(), &Input{Profile: createTestProfile(), Candidates: createTestCandidates()})
	require.NoError(t, err)
	assert.Zero(t, recorder.calls)
}

func TestHandler_Execute_ValidationErrors(t *testing.T) {
	tests := []struct {
		name     string
		input    *Input
		wantCode apperrors.ErrorCode
	}{
		{
			name:     "profile without user id",
			input:    &Input{Profile: matching.AdopterProfile{HomeType: matching.HomeHouse}, Candidates: createTestCandidates()},
			wantCode: apperrors.ErrCodeInvalidAdopterProfile,
		},
		{
			name: "duplicate candidate ids",
			input: &Input{Profile: createTestProfile(), Candidates: []matching.CandidateRecord{
				{ID: "pet-1"}, {ID: "pet-1"},
			}},
			wantCode: apperrors.ErrCodeInvalidCandidate,
		},
		{
			name: "unknown candidate age",
			input: &Input{Profile: createTestProfile(), Candidates: []matching.CandidateRecord{
				{ID: "pet-1", Age: "ancient"},
			}},
			wantCode: apperrors.ErrCodeInvalidCandidate,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			recorder := &fakeRecorder{}
			h := newTestHandler(t, HandlerOptions{Recorder: recorder})

			output, err := h.Execute(context.Background(), tt.input)
			require.Error(t, err)
			assert.Nil(t, output)
			assert.Equal(t, tt.wantCode, ToStandardError(err).Code)
			assert.Zero(t, recorder.calls)
		})
	}
}

func TestHandler_Execute_NilInput(t *testing.T) {
	h := newTestHandler(t, HandlerOptions{})

	_, err := h.Execute(context.Background(), nil)
	assert.True(t, errors.Is(err, ErrNilInput))
	assert.Equal(t, apperrors.ErrCodeInvalidAdopterProfile, ToStandardError(err).Code)
}

// ==========================
// Cache and tracing
// ==========================

func TestHandler_Execute_ServesRepeatRequestsFromCache(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })

	cache := rankcache.New(client, time.Hour, logger.NewTestLogger(t))
	h := newTestHandler(t, HandlerOptions{Cache: cache})

	input := &Input{RequestID: "req-c", Profile: createTestProfile(), Candidates: createTestCandidates()}

	first, err := h.Execute(context.Background(), input)
	require.NoError(t, err)
	assert.False(t, first.Cached)

	second, err := h.Execute(context.Background(), input)
	require.NoError(t, err)
	assert.True(t, second.Cached)
	assert.Equal(t, first.Matches, second.Matches)
}

func TestHandler_Execute_CacheDownStillRanks(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr(), MaxRetries: -1})
	t.Cleanup(func() { client.Close() })
	mr.Close()

	cache := rankcache.New(client, time.Hour, logger.NewTestLogger(t))
	h := newTestHandler(t, HandlerOptions{Cache: cache})

	output, err := h.Execute(context.Background(), &Input{Profile: createTestProfile(), Candidates: createTestCandidates()})
	require.NoError(t, err)
	assert.False(t, output.Cached)
	assert.Equal(t, 3, output.Returned)
}

func TestHandler_Execute_RecordsSpan(t *testing.T) {
	spans := tracetest.NewSpanRecorder()
	obs := observability.New("rank-test",
		observability.WithRegisterer(promclient.NewRegistry()),
		observability.WithSpanProcessor(spans),
	)
	t.Cleanup(obs.Shutdown)

	h := newTestHandler(t, HandlerOptions{Observability: obs})

	_, err := h.Execute(context.Background(), &Input{RequestID: "req-s", Profile: createTestProfile(), Candidates: createTestCandidates()})
	require.NoError(t, err)

	ended := spans.Ended()
	require.Len(t, ended, 1)
	assert.Equal(t, "matching.rank", ended[0].Name())
	assert.Contains(t, ended[0].Attributes(), attribute.String("request.id", "req-s"))
	assert.Contains(t, ended[0].Attributes(), attribute.Int("matches.returned", 3))
}

// ==========================
// Config
// ==========================

func TestConfigFrom(t *testing.T) {
	cfg := &config.Config{
		Matching: config.MatchingConfig{
			TopK:              5,
			MinScore:          0.6,
			SearchRadiusMiles: 80,
			PreferenceFilter:  true,
		},
		Workers: map[string]config.WorkerConfig{
			TaskType: {Enabled: true, Timeout: 2500},
		},
	}

	c := ConfigFrom(cfg)
	assert.Equal(t, 2500*time.Millisecond, c.Timeout)
	assert.Equal(t, 5, c.TopK)
	assert.Equal(t, 0.6, c.MinScore)
	assert.Equal(t, 80, c.SearchRadiusMiles)
	assert.Equal(t, 100, c.SearchLimit)
	assert.True(t, c.PreferenceFilter)
	assert.False(t, c.PersistMatches)

	assert.Equal(t, DefaultConfig(), ConfigFrom(nil))
}

func TestConfigFrom_UnsetTopKKeepsDefault(t *testing.T) {
	c := ConfigFrom(&config.Config{Matching: config.MatchingConfig{MinScore: 0.4}})

	assert.Equal(t, 10, c.TopK)
	assert.NoError(t, c.Validate())
}

func TestNewHandler_InvalidConfig(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(c *Config)
	}{
		{name: "zero timeout", mutate: func(c *Config) { c.Timeout = 0 }},
		{name: "negative top k", mutate: func(c *Config) { c.TopK = -1 }},
		{name: "zero top k", mutate: func(c *Config) { c.TopK = 0 }},
		{name: "min score above one", mutate: func(c *Config) { c.MinScore = 1.2 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := createTestConfig()
			tt.mutate(cfg)

			_, err := NewHandler(HandlerOptions{Config: cfg, Logger: logger.NewNoOpLogger()})
			assert.Error(t, err)
		})
	}
}

func intPtr(v int) *int           { return &v }
func floatPtr(v float64) *float64 { return &v }
