// internal/workers/matching/explain-match/handler.go
package explainmatch

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"sort"
	"strings"
	"time"

	apperrors "pawmatch-workers/internal/common/errors"
	"pawmatch-workers/internal/common/logger"
	"pawmatch-workers/internal/common/metrics"
	"pawmatch-workers/internal/matching"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
)

const (
	TaskType = "explain-match"
)

var (
	ErrNilInput     = errors.New("input cannot be nil")
	ErrMissingMatch = errors.New("MISSING_MATCH")
	ErrInvalidMatch = errors.New("INVALID_MATCH")
)

type Handler struct {
	config       *Config
	errorHandler *apperrors.ErrorHandler
	logger       logger.Logger
}

func NewHandler(config *Config, log logger.Logger) *Handler {
	l := log.WithFields(map[string]interface{}{"taskType": TaskType})
	return &Handler{
		config:       config,
		errorHandler: apperrors.NewErrorHandler(l),
		logger:       l,
	}
}

func (h *Handler) Handle(client worker.JobClient, job entities.Job) {
	started := time.Now()
	h.logger.Info("processing job", map[string]interface{}{
		"jobKey":      job.Key,
		"workflowKey": job.ProcessInstanceKey,
	})

	var input Input
	if err := json.Unmarshal([]byte(job.Variables), &input); err != nil {
		metrics.ObserveJob(TaskType, started, "PARSE_ERROR")
		h.failJob(client, job, "PARSE_ERROR", fmt.Sprintf("parse input: %v", err))
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), h.config.Timeout)
	defer cancel()

	output, err := h.execute(ctx, &input)
	if err != nil {
		stdErr := ToStandardError(err)
		metrics.ObserveJob(TaskType, started, string(stdErr.Code))
		h.errorHandler.HandleJobError(ctx, client, job, stdErr)
		return
	}

	metrics.ObserveJob(TaskType, started, "")
	h.completeJob(client, job, output)
}

func (h *Handler) execute(_ context.Context, input *Input) (*Output, error) {
	if input == nil {
		return nil, ErrNilInput
	}
	if input.Match == nil {
		return nil, ErrMissingMatch
	}
	if err := checkMatch(input.Match); err != nil {
		return nil, err
	}

	m := *input.Match
	if m.Explanation == "" && input.Profile != nil {
		m.Explanation, m.KeyFactors, m.PotentialConcerns = matching.Explain(m.Candidate, *input.Profile, m.Scores)
	}

	out := &Output{
		MatchExplanation: matching.ExplainMatch(m),
		Rank:             m.Rank,
	}

	h.logger.Debug("match explained", map[string]interface{}{
		"candidateId": out.CandidateID,
		"tier":        out.Tier,
	})
	return out, nil
}

// checkMatch rejects matches whose identity or scores could not have come
// from the engine.
func checkMatch(m *matching.Match) error {
	var problems []string
	if m.Candidate.ID == "" {
		problems = append(problems, "candidate.id is required")
	}
	for name, v := range map[string]float64{
		"lifestyle":    m.Scores.Lifestyle,
		"personality":  m.Scores.Personality,
		"practical":    m.Scores.Practical,
		"urgencyBoost": m.Scores.UrgencyBoost,
		"overall":      m.Scores.Overall,
	} {
		if math.IsNaN(v) || v < 0 || v > 1 {
			problems = append(problems, fmt.Sprintf("scores.%s must be within [0, 1]", name))
		}
	}
	if m.Rank < 0 {
		problems = append(problems, "rank must not be negative")
	}
	if len(problems) == 0 {
		return nil
	}
	sort.Strings(problems)
	return fmt.Errorf("%w: %s", ErrInvalidMatch, strings.Join(problems, "; "))
}

// ToStandardError maps a handler error onto the shared error codes.
func ToStandardError(err error) *apperrors.StandardError {
	if stdErr, ok := apperrors.AsStandardError(err); ok {
		return stdErr
	}
	switch {
	case errors.Is(err, ErrNilInput), errors.Is(err, ErrMissingMatch), errors.Is(err, ErrInvalidMatch):
		return apperrors.NewInvalidMatchError(err.Error())
	default:
		return apperrors.NewInternalError(err)
	}
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
