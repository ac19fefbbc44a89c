// internal/workers/matching/score-candidate/handler.go
package scorecandidate

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	apperrors "pawmatch-workers/internal/common/errors"
	"pawmatch-workers/internal/common/logger"
	"pawmatch-workers/internal/common/metrics"
	"pawmatch-workers/internal/common/validation"
	"pawmatch-workers/internal/matching"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
)

const (
	TaskType = "score-candidate"
)

var (
	ErrNilInput         = errors.New("input cannot be nil")
	ErrMissingCandidate = errors.New("MISSING_CANDIDATE")
)

type Handler struct {
	config       *Config
	engine       *matching.Engine
	errorHandler *apperrors.ErrorHandler
	logger       logger.Logger
}

func NewHandler(config *Config, engine *matching.Engine, log logger.Logger) *Handler {
	l := log.WithFields(map[string]interface{}{"taskType": TaskType})
	return &Handler{
		config:       config,
		engine:       engine,
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
	if input.Candidate == nil {
		return nil, ErrMissingCandidate
	}
	if err := validation.ProfileError(input.Profile); err != nil {
		return nil, err
	}
	if err := validation.CandidatesError([]matching.CandidateRecord{*input.Candidate}); err != nil {
		return nil, err
	}

	m := h.engine.Match(input.Profile, *input.Candidate)
	tier, recommendation := matching.TierFor(m.Scores.Overall)

	h.logger.Debug("candidate scored", map[string]interface{}{
		"userId":      input.Profile.UserID,
		"candidateId": m.Candidate.ID,
		"overall":     m.Scores.Overall,
	})

	return &Output{
		CandidateID:       m.Candidate.ID,
		Scores:            m.Scores,
		Explanation:       m.Explanation,
		KeyFactors:        m.KeyFactors,
		PotentialConcerns: m.PotentialConcerns,
		Tier:              tier,
		Recommendation:    recommendation,
		ModelVersion:      m.ModelVersion,
	}, nil
}

// ToStandardError maps a handler error onto the shared error codes.
func ToStandardError(err error) *apperrors.StandardError {
	if stdErr, ok := apperrors.AsStandardError(err); ok {
		return stdErr
	}
	if errors.Is(err, ErrNilInput) || errors.Is(err, ErrMissingCandidate) {
		return apperrors.NewInvalidCandidateError(err.Error())
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
