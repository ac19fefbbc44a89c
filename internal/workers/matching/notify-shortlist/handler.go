// internal/workers/matching/notify-shortlist/handler.go
package notifyshortlist

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"pawmatch-workers/internal/common/aws"
	apperrors "pawmatch-workers/internal/common/errors"
	"pawmatch-workers/internal/common/logger"
	"pawmatch-workers/internal/common/metrics"
	"pawmatch-workers/internal/common/validation"
	"pawmatch-workers/internal/matching"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
	"github.com/google/uuid"
)

const (
	TaskType = "notify-shortlist"
)

var (
	ErrNilInput         = errors.New("input cannot be nil")
	ErrMissingRequestID = errors.New("MISSING_REQUEST_ID")
)

type Handler struct {
	config       *Config
	ses          aws.SESService
	sns          aws.SNSService
	errorHandler *apperrors.ErrorHandler
	logger       logger.Logger
	now          func() time.Time
}

// HandlerOptions wires the handler. SES and SNS may be nil when the matching
// channel is disabled.
type HandlerOptions struct {
	Config *Config
	SES    aws.SESService
	SNS    aws.SNSService
	Logger logger.Logger
}

func NewHandler(opts HandlerOptions) (*Handler, error) {
	cfg := opts.Config
	if cfg == nil {
		cfg = DefaultConfig()
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration for %s: %w", TaskType, err)
	}
	if cfg.EmailEnabled && opts.SES == nil {
		return nil, fmt.Errorf("invalid configuration for %s: email enabled without an SES client", TaskType)
	}
	if cfg.EventsEnabled && opts.SNS == nil {
		return nil, fmt.Errorf("invalid configuration for %s: events enabled without an SNS client", TaskType)
	}

	log := opts.Logger
	if log == nil {
		log = logger.NewStructured("info", "json")
	}
	log = log.WithFields(map[string]interface{}{"taskType": TaskType})

	return &Handler{
		config:       cfg,
		ses:          opts.SES,
		sns:          opts.SNS,
		errorHandler: apperrors.NewErrorHandler(log),
		logger:       log,
		now:          time.Now,
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

func (h *Handler) execute(ctx context.Context, input *Input) (*Output, error) {
	if input == nil {
		return nil, ErrNilInput
	}
	if input.RequestID == "" {
		return nil, ErrMissingRequestID
	}
	if err := validation.ProfileError(input.Profile); err != nil {
		return nil, err
	}

	out := &Output{NotificationID: uuid.NewString()}
	if len(input.Matches) == 0 {
		out.SkippedReason = "no matches to send"
		h.logger.Info("shortlist empty, nothing sent", map[string]interface{}{
			"requestId": input.RequestID,
		})
		return out, nil
	}

	matches := input.Matches
	if len(matches) > h.config.MaxMatches {
		matches = matches[:h.config.MaxMatches]
	}

	switch {
	case !h.config.EmailEnabled:
		out.SkippedReason = "email disabled"
	case input.Profile.Email == "":
		out.SkippedReason = "adopter has no email address"
	default:
		id, err := h.sendEmail(ctx, input.Profile, matches)
		if err != nil {
			return nil, apperrors.NewNotificationSendFailedError("email", err).
				WithMetadata("requestId", input.RequestID)
		}
		out.EmailSent, out.EmailMessageID = true, id
	}

	if h.config.EventsEnabled {
		id, err := h.publish(ctx, out, input.RequestID, input.Profile.UserID, matches)
		if err != nil {
			h.logger.Warn("failed to publish matches event", map[string]interface{}{
				"requestId": input.RequestID,
				"error":     apperrors.NewEventPublishFailedError(err),
			})
		} else {
			out.EventPublished, out.EventMessageID = true, id
		}
	}

	h.logger.Info("shortlist notification processed", map[string]interface{}{
		"requestId":      input.RequestID,
		"notificationId": out.NotificationID,
		"emailSent":      out.EmailSent,
		"eventPublished": out.EventPublished,
		"matches":        len(matches),
	})
	return out, nil
}

func (h *Handler) sendEmail(ctx context.Context, profile matching.AdopterProfile, matches []matching.Match) (string, error) {
	text, html, err := renderEmail(newShortlistView(profile, matches))
	if err != nil {
		return "", fmt.Errorf("render shortlist: %w", err)
	}
	return aws.SendEmail(ctx, h.ses, aws.Email{
		From:     h.config.FromEmail,
		To:       profile.Email,
		Subject:  h.config.Subject,
		TextBody: text,
		HTMLBody: html,
	})
}

func (h *Handler) publish(ctx context.Context, out *Output, requestID, userID string, matches []matching.Match) (string, error) {
	ids := make([]string, len(matches))
	for i, m := range matches {
		ids[i] = m.Candidate.ID
	}
	event := MatchesShownEvent{
		EventType:      EventTypeMatchesShown,
		NotificationID: out.NotificationID,
		RequestID:      requestID,
		UserID:         userID,
		CandidateIDs:   ids,
		ModelVersion:   matches[0].ModelVersion,
		EmailSent:      out.EmailSent,
		OccurredAt:     h.now().UTC().Format(time.RFC3339),
	}
	return aws.PublishEvent(ctx, h.sns, h.config.TopicARN, event, map[string]string{
		"eventType": EventTypeMatchesShown,
	})
}

// ToStandardError maps a handler error onto the shared error codes.
func ToStandardError(err error) *apperrors.StandardError {
	if stdErr, ok := apperrors.AsStandardError(err); ok {
		return stdErr
	}
	if errors.Is(err, ErrNilInput) || errors.Is(err, ErrMissingRequestID) {
		return apperrors.NewInvalidMatchError(err.Error())
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
