// internal/workers/matching/rank-candidates/handler.go
package rankcandidates

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"pawmatch-workers/internal/candidates"
	apperrors "pawmatch-workers/internal/common/errors"
	"pawmatch-workers/internal/common/logger"
	"pawmatch-workers/internal/common/metrics"
	"pawmatch-workers/internal/common/observability"
	"pawmatch-workers/internal/common/validation"
	"pawmatch-workers/internal/matching"
	"pawmatch-workers/internal/rankcache"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
)

const (
	TaskType = "rank-candidates"
)

var (
	ErrNilInput = errors.New("input cannot be nil")
)

// CandidateSource supplies candidates when the job carries none. It never
// fails: retrieval errors resolve to an empty list.
type CandidateSource interface {
	Fetch(ctx context.Context, q candidates.Query) []matching.CandidateRecord
}

// RankCache serves memoized shortlists, falling back to the ranker.
type RankCache interface {
	Rank(ctx context.Context, ranker rankcache.Ranker, profile matching.AdopterProfile, pool []matching.CandidateRecord, topK int, minScore float64) ([]matching.Match, bool)
}

// MatchRecorder logs which matches were shown to an adopter.
type MatchRecorder interface {
	RecordShown(ctx context.Context, requestID, userID string, matches []matching.Match) (int, error)
}

type Handler struct {
	config       *Config
	engine       *matching.Engine
	source       CandidateSource
	cache        RankCache
	recorder     MatchRecorder
	obs          *observability.Observability
	errorHandler *apperrors.ErrorHandler
	logger       logger.Logger
}

// HandlerOptions wires the handler. Only Config is required; a nil source,
// cache or recorder disables that step.
type HandlerOptions struct {
	Config        *Config
	Engine        *matching.Engine
	Candidates    CandidateSource
	Cache         RankCache
	Recorder      MatchRecorder
	Observability *observability.Observability
	Logger        logger.Logger
}

func NewHandler(opts HandlerOptions) (*Handler, error) {
	cfg := opts.Config
	if cfg == nil {
		cfg = DefaultConfig()
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration for %s: %w", TaskType, err)
	}

	engine := opts.Engine
	if engine == nil {
		engine = matching.NewEngine()
	}

	log := opts.Logger
	if log == nil {
		log = logger.NewStructured("info", "json")
	}
	log = log.WithFields(map[string]interface{}{"taskType": TaskType})

	return &Handler{
		config:       cfg,
		engine:       engine,
		source:       opts.Candidates,
		cache:        opts.Cache,
		recorder:     opts.Recorder,
		obs:          opts.Observability,
		errorHandler: apperrors.NewErrorHandler(log),
		logger:       log,
	}, nil
}

func (h *Handler) Handle(client worker.JobClient, job entities.Job) {
	started := time.Now()
	metrics.WorkerJobsActive.WithLabelValues(TaskType).Inc()
	defer metrics.WorkerJobsActive.WithLabelValues(TaskType).Dec()

	h.logger.Info("processing job", map[string]interface{}{
		"jobKey":      job.Key,
		"workflowKey": job.ProcessInstanceKey,
	})

	var input Input
	if err := json.Unmarshal([]byte(job.Variables), &input); err != nil {
		metrics.ObserveJob(TaskType, started, "PARSE_ERROR")
		h.obs.RecordJobProcessed(context.Background(), "parse_error")
		h.failJob(client, job, "PARSE_ERROR", fmt.Sprintf("parse input: %v", err))
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), h.config.Timeout)
	defer cancel()

	output, err := h.execute(ctx, &input)
	if err != nil {
		stdErr := ToStandardError(err)
		metrics.ObserveJob(TaskType, started, string(stdErr.Code))
		h.obs.RecordJobProcessed(ctx, "failed")
		h.obs.RecordJobDuration(ctx, time.Since(started), "failed")
		h.errorHandler.HandleJobError(ctx, client, job, stdErr)
		return
	}

	metrics.ObserveJob(TaskType, started, "")
	h.obs.RecordJobProcessed(ctx, "completed")
	h.obs.RecordJobDuration(ctx, time.Since(started), "completed")
	h.completeJob(client, job, output)
}

func (h *Handler) execute(ctx context.Context, input *Input) (*Output, error) {
	if input == nil {
		return nil, ErrNilInput
	}
	if err := validation.ProfileError(input.Profile); err != nil {
		return nil, err
	}

	requestID := input.RequestID
	if requestID == "" {
		requestID = uuid.NewString()
	}
	topK, minScore := h.limits(input)

	pool, source := input.Candidates, SourceRequest
	if pool == nil {
		source = SourceSearch
		pool = h.fetch(ctx, input.Profile)
	} else if err := validation.CandidatesError(pool); err != nil {
		return nil, err
	}
	total := len(pool)

	if h.config.PreferenceFilter {
		pool = matching.FilterByPreferences(input.Profile, pool)
	}

	ctx, span := h.obs.StartSpan(ctx, "matching.rank",
		attribute.String("request.id", requestID),
		attribute.String("candidates.source", source),
		attribute.Int("candidates.count", len(pool)),
	)
	defer span.End()

	start := time.Now()
	var (
		matches []matching.Match
		cached  bool
	)
	if h.cache != nil {
		matches, cached = h.cache.Rank(ctx, h.engine, input.Profile, pool, topK, minScore)
	} else {
		matches = h.engine.Rank(input.Profile, pool, topK, minScore)
	}
	elapsed := time.Since(start)

	scored := len(pool)
	if cached {
		scored = 0
	}
	metrics.ObserveRanking(source, scored, len(matches))
	h.obs.RecordRanking(ctx, len(pool), elapsed, cached)
	span.SetAttributes(
		attribute.Int("matches.returned", len(matches)),
		attribute.Bool("cache.hit", cached),
	)

	h.logger.Info("ranking completed", map[string]interface{}{
		"requestId":  requestID,
		"userId":     input.Profile.UserID,
		"source":     source,
		"candidates": total,
		"considered": len(pool),
		"returned":   len(matches),
		"cached":     cached,
		"durationMs": elapsed.Milliseconds(),
		"topK":       topK,
		"minScore":   minScore,
	})

	h.record(ctx, requestID, input.Profile.UserID, matches)

	return &Output{
		RequestID:       requestID,
		Matches:         matches,
		TotalCandidates: total,
		Returned:        len(matches),
		Cached:          cached,
		Source:          source,
		ModelVersion:    h.engine.ModelVersion(),
	}, nil
}

// limits applies per-request overrides on top of the configured defaults.
// A topK of zero or less falls back to the configured value.
func (h *Handler) limits(input *Input) (int, float64) {
	topK, minScore := h.config.TopK, h.config.MinScore
	if input.TopK != nil && *input.TopK > 0 {
		topK = *input.TopK
	}
	if input.MinScore != nil {
		minScore = *input.MinScore
	}
	return topK, minScore
}

func (h *Handler) fetch(ctx context.Context, profile matching.AdopterProfile) []matching.CandidateRecord {
	if h.source == nil {
		h.logger.Warn("no candidates supplied and no candidate source configured", map[string]interface{}{
			"userId": profile.UserID,
		})
		return []matching.CandidateRecord{}
	}
	return h.source.Fetch(ctx, candidates.QueryFor(profile, h.config.SearchRadiusMiles, h.config.SearchLimit))
}

// record persists the shortlist. Failures are logged and never fail the job.
func (h *Handler) record(ctx context.Context, requestID, userID string, matches []matching.Match) {
	if !h.config.PersistMatches || h.recorder == nil || len(matches) == 0 {
		return
	}
	n, err := h.recorder.RecordShown(ctx, requestID, userID, matches)
	if err != nil {
		h.logger.Warn("failed to record shown matches", map[string]interface{}{
			"requestId": requestID,
			"error":     err,
		})
		return
	}
	h.logger.Debug("shown matches recorded", map[string]interface{}{
		"requestId": requestID,
		"inserted":  n,
	})
}

// ToStandardError maps a handler error onto the shared error codes.
func ToStandardError(err error) *apperrors.StandardError {
	if stdErr, ok := apperrors.AsStandardError(err); ok {
		return stdErr
	}
	if errors.Is(err, ErrNilInput) {
		return apperrors.NewInvalidAdopterProfileError(err.Error())
	}
	return apperrors.NewInternalError(err)
}

func (h *Handler) completeJob(client worker.JobClient, job entities.Job, output *Output) {
	cmd, err := client.NewCompleteJobCommand().
		JobKey(job.Key).
		VariablesFromObject(output)
	if err != nil {
		h.logger.Error("failed to create complete job command", map[string]interface{}{
			"error": err,
		})
		return
	}
	_, err = cmd.Send(context.Background())
	if err != nil {
		h.logger.Error("failed to send complete job command", map[string]interface{}{
			"error": err,
		})
	}
}

func (h *Handler) failJob(client worker.JobClient, job entities.Job, errorCode, errorMessage string) {
	h.logger.Error("job failed", map[string]interface{}{
		"jobKey":       job.Key,
		"errorCode":    errorCode,
		"errorMessage": errorMessage,
	})

	_, err := client.NewThrowErrorCommand().
		JobKey(job.Key).
		ErrorCode(errorCode).
		ErrorMessage(errorMessage).
		Send(context.Background())
	if err != nil {
		h.logger.Error("failed to throw error", map[string]interface{}{
			"error": err,
		})
	}
}

func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	return h.execute(ctx, input)
}
